package unidiff

import (
	"io/fs"
	"path/filepath"
)

// MemoryFilesystem is a map-backed Filesystem for dry runs, embedding and
// tests. Keys are cleaned paths; directories do not exist as entries.
type MemoryFilesystem struct {
	files map[string]string
}

// NewMemoryFilesystem copies the provided files into a fresh in-memory view.
// The input map is never mutated.
func NewMemoryFilesystem(files map[string]string) *MemoryFilesystem {
	snapshot := make(map[string]string, len(files))
	for path, content := range files {
		snapshot[filepath.Clean(path)] = content
	}
	return &MemoryFilesystem{files: snapshot}
}

// Files returns a copy of the current contents.
func (m *MemoryFilesystem) Files() map[string]string {
	out := make(map[string]string, len(m.files))
	for path, content := range m.files {
		out[path] = content
	}
	return out
}

// Exists implements Filesystem.
func (m *MemoryFilesystem) Exists(path string) (bool, error) {
	_, ok := m.files[filepath.Clean(path)]
	return ok, nil
}

// ReadFile implements Filesystem.
func (m *MemoryFilesystem) ReadFile(path string) (string, error) {
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return content, nil
}

// WriteFile implements Filesystem.
func (m *MemoryFilesystem) WriteFile(path, content string) error {
	m.files[filepath.Clean(path)] = content
	return nil
}

// Remove implements Filesystem.
func (m *MemoryFilesystem) Remove(path string) error {
	cleaned := filepath.Clean(path)
	if _, ok := m.files[cleaned]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(m.files, cleaned)
	return nil
}

// Rename implements Filesystem.
func (m *MemoryFilesystem) Rename(oldPath, newPath string) error {
	oldCleaned := filepath.Clean(oldPath)
	content, ok := m.files[oldCleaned]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldCleaned)
	m.files[filepath.Clean(newPath)] = content
	return nil
}
