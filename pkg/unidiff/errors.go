package unidiff

import (
	"fmt"
	"strings"
)

// Code classifies an application failure.
type Code string

const (
	// CodeDestinationMissing reports a non-creation patch whose target file
	// does not exist.
	CodeDestinationMissing Code = "DESTINATION_MISSING"
	// CodeDestinationExists reports a creation patch whose target file
	// already exists.
	CodeDestinationExists Code = "DESTINATION_ALREADY_EXISTS"
	// CodeContextMismatch reports a context or deleted line that does not
	// match the source exactly.
	CodeContextMismatch Code = "CONTEXT_MISMATCH"
	// CodeHunkOffsetMismatch reports a hunk whose declared start does not
	// align with the running cursor.
	CodeHunkOffsetMismatch Code = "HUNK_OFFSET_MISMATCH"
	// CodeIOFailure wraps an underlying read, write, rename or delete error.
	CodeIOFailure Code = "IO_FAILURE"
)

// Error represents a structured failure while applying a patch set. It
// carries enough context (file, hunk header, expected vs actual line) to
// diagnose a failed application by hand.
type Error struct {
	Code       Code
	Path       string
	HunkHeader string
	// Line is the 1-based source line a mismatch refers to.
	Line     int
	Expected string
	Actual   string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return string(e.Code)
	}
	return "patch apply error"
}

// Unwrap exposes the underlying cause for IO failures.
func (e *Error) Unwrap() error {
	return e.Err
}

func ioError(path string, err error) *Error {
	return &Error{
		Code:    CodeIOFailure,
		Path:    path,
		Message: fmt.Sprintf("%s: %v", path, err),
		Err:     err,
	}
}

// FormatError renders an Error into a human readable multi-line message
// suitable for surfacing to end users.
func FormatError(err *Error) string {
	if err == nil {
		return "Unknown error occurred."
	}
	message := err.Message
	if message == "" {
		message = string(err.Code)
	}
	parts := []string{message}
	if err.HunkHeader != "" {
		parts = append(parts, "", "Offending hunk: "+err.HunkHeader)
	}
	if err.Code == CodeContextMismatch && err.Line > 0 {
		parts = append(parts,
			"",
			fmt.Sprintf("Expected line %d: %q", err.Line, err.Expected),
			fmt.Sprintf("Actual line %d:   %q", err.Line, err.Actual),
		)
	}
	return strings.Join(parts, "\n")
}
