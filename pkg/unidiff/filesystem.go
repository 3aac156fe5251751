package unidiff

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Filesystem is the view of the target tree the engine reads and mutates.
// The engine assumes it is the sole writer for the duration of an apply.
type Filesystem interface {
	// Exists reports whether path names an existing regular file.
	Exists(path string) (bool, error)
	ReadFile(path string) (string, error)
	// WriteFile replaces the file content, creating parent directories as
	// needed. Implementations should make the replacement atomic.
	WriteFile(path, content string) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
}

type osFilesystem struct{}

// OSFilesystem returns the Filesystem backed by the operating system.
func OSFilesystem() Filesystem {
	return osFilesystem{}
}

func (osFilesystem) Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (osFilesystem) ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteFile stages the content in a temporary file next to the destination
// and renames it into place, so a crash cannot leave a partially written
// file. The permissions of an existing destination are preserved.
func (osFilesystem) WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		if mode := info.Mode() & fs.ModePerm; mode != 0 {
			perm = mode
		}
	}

	tmp, err := os.CreateTemp(dir, ".cleanpatch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (osFilesystem) Remove(path string) error {
	return os.Remove(path)
}

func (osFilesystem) Rename(oldPath, newPath string) error {
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}
