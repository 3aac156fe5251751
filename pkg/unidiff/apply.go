package unidiff

import (
	"context"
	"fmt"
	"strings"
)

// MatchMode selects how hunk context is matched against file content.
type MatchMode int

// MatchExact requires context and deleted lines to equal the source byte for
// byte. It is the only mode; a fuzzy variant would be an additive option.
const MatchExact MatchMode = iota

// Options configure patch application.
type Options struct {
	Mode MatchMode
}

// Apply applies every patch in the set to files under baseDir, resolving
// declared paths with stripCount leading segments removed. It is the
// equivalent of `patch -pN -d baseDir` restricted to clean application.
//
// Patches are applied strictly in declaration order and the first failure
// aborts the run. Files written by earlier patches are not rolled back;
// callers that need all-or-nothing semantics across the whole set must
// snapshot and restore the tree themselves.
func (ps *PatchSet) Apply(ctx context.Context, baseDir string, stripCount int) error {
	return ps.ApplyTo(ctx, OSFilesystem(), baseDir, stripCount, Options{})
}

// ApplyTo is Apply with an explicit filesystem view and options.
func (ps *PatchSet) ApplyTo(ctx context.Context, fsys Filesystem, baseDir string, stripCount int, opts Options) error {
	if opts.Mode != MatchExact {
		return fmt.Errorf("unsupported match mode %d", opts.Mode)
	}
	for _, patch := range ps.patches {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := ResolveDestination(baseDir, patch.NewPath, stripCount)
		precheck := dest
		if patch.Kind == FileRenamed {
			// The post-change path does not exist yet for a rename.
			precheck = ResolveDestination(baseDir, patch.OldPath, stripCount)
		}
		if patch.Kind != FileCreated {
			exists, err := fsys.Exists(precheck)
			if err != nil {
				return ioError(precheck, err)
			}
			if !exists {
				return &Error{
					Code:    CodeDestinationMissing,
					Path:    precheck,
					Message: fmt.Sprintf("expected destination file %s does not exist", precheck),
				}
			}
		}
		if err := applyPatch(fsys, patch, baseDir, stripCount, dest); err != nil {
			return err
		}
	}
	return nil
}

func applyPatch(fsys Filesystem, patch Patch, baseDir string, stripCount int, dest string) *Error {
	switch patch.Kind {
	case FileCreated:
		return applyCreate(fsys, patch, dest)
	case FileDeleted:
		return applyDelete(fsys, patch, dest)
	case FileModified:
		return applyModify(fsys, patch, dest)
	case FileRenamed:
		oldDest := ResolveDestination(baseDir, patch.OldPath, stripCount)
		return applyRename(fsys, patch, oldDest, dest)
	default:
		return &Error{Path: dest, Message: fmt.Sprintf("%s: unsupported change kind %q", dest, patch.Kind)}
	}
}

func applyCreate(fsys Filesystem, patch Patch, dest string) *Error {
	exists, err := fsys.Exists(dest)
	if err != nil {
		return ioError(dest, err)
	}
	if exists {
		return &Error{
			Code:    CodeDestinationExists,
			Path:    dest,
			Message: fmt.Sprintf("destination file %s already exists", dest),
		}
	}
	content, herr := transform(dest, patch, "")
	if herr != nil {
		return herr
	}
	if err := fsys.WriteFile(dest, content); err != nil {
		return ioError(dest, err)
	}
	return nil
}

func applyDelete(fsys Filesystem, patch Patch, dest string) *Error {
	content, err := fsys.ReadFile(dest)
	if err != nil {
		return ioError(dest, err)
	}
	source, _ := splitFileLines(content)
	cursor := 0
	for _, hunk := range patch.Hunks {
		output, next, herr := applyHunk(dest, hunk, source, cursor)
		if herr != nil {
			return herr
		}
		if len(output) > 0 {
			return &Error{
				Code:       CodeContextMismatch,
				Path:       dest,
				HunkHeader: hunk.Header(),
				Message:    fmt.Sprintf("%s: delete patch produces content", dest),
			}
		}
		cursor = next
	}
	if len(patch.Hunks) > 0 && cursor < len(source) {
		return &Error{
			Code:     CodeContextMismatch,
			Path:     dest,
			Line:     cursor + 1,
			Expected: "",
			Actual:   source[cursor],
			Message:  fmt.Sprintf("%s: content beyond line %d is not covered by the delete patch", dest, cursor),
		}
	}
	if err := fsys.Remove(dest); err != nil {
		return ioError(dest, err)
	}
	return nil
}

func applyModify(fsys Filesystem, patch Patch, dest string) *Error {
	content, err := fsys.ReadFile(dest)
	if err != nil {
		return ioError(dest, err)
	}
	updated, herr := transform(dest, patch, content)
	if herr != nil {
		return herr
	}
	if err := fsys.WriteFile(dest, updated); err != nil {
		return ioError(dest, err)
	}
	return nil
}

func applyRename(fsys Filesystem, patch Patch, oldDest, dest string) *Error {
	if len(patch.Hunks) == 0 {
		if oldDest == dest {
			return nil
		}
		if err := fsys.Rename(oldDest, dest); err != nil {
			return ioError(dest, err)
		}
		return nil
	}
	content, err := fsys.ReadFile(oldDest)
	if err != nil {
		return ioError(oldDest, err)
	}
	updated, herr := transform(oldDest, patch, content)
	if herr != nil {
		return herr
	}
	if err := fsys.WriteFile(dest, updated); err != nil {
		return ioError(dest, err)
	}
	if oldDest != dest {
		if err := fsys.Remove(oldDest); err != nil {
			return ioError(oldDest, err)
		}
	}
	return nil
}

// transform folds the patch's hunks over the file content, copying unconsumed
// leading, intermediate and trailing context through unchanged. The cursor is
// threaded explicitly so the offset bookkeeping stays a pure computation.
func transform(path string, patch Patch, content string) (string, *Error) {
	source, endsWithNewline := splitFileLines(content)
	output := make([]string, 0, len(source))
	cursor := 0
	for _, hunk := range patch.Hunks {
		gap := hunk.OldStart - 1
		if hunk.OldCount == 0 {
			gap = hunk.OldStart
		}
		if gap >= cursor && gap <= len(source) {
			output = append(output, source[cursor:gap]...)
			cursor = gap
		}
		lines, next, herr := applyHunk(path, hunk, source, cursor)
		if herr != nil {
			return "", herr
		}
		output = append(output, lines...)
		cursor = next
	}
	trailing := endsWithNewline
	if len(patch.Hunks) > 0 && cursor >= len(source) {
		// The hunks rewrote the end of the file; the patch decides whether a
		// trailing newline remains.
		trailing = !lastLineNoNewline(patch)
	}
	output = append(output, source[cursor:]...)
	return joinFileLines(output, trailing), nil
}

func lastLineNoNewline(patch Patch) bool {
	if len(patch.Hunks) == 0 {
		return false
	}
	lines := patch.Hunks[len(patch.Hunks)-1].Lines
	if len(lines) == 0 {
		return false
	}
	return lines[len(lines)-1].NoNewlineAtEOF
}

// splitFileLines splits content into lines without terminators and reports
// whether the content ended with a newline. An empty file has zero lines.
func splitFileLines(content string) ([]string, bool) {
	if content == "" {
		return nil, true
	}
	endsWithNewline := strings.HasSuffix(content, "\n")
	body := strings.TrimSuffix(content, "\n")
	if body == "" {
		return []string{""}, endsWithNewline
	}
	return strings.Split(body, "\n"), endsWithNewline
}

func joinFileLines(lines []string, trailingNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	content := strings.Join(lines, "\n")
	if trailingNewline {
		content += "\n"
	}
	return content
}
