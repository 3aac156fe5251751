package unidiff

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessageIncludesCodeAndPath(t *testing.T) {
	t.Parallel()

	err := &Error{
		Code:    CodeContextMismatch,
		Path:    "base/b/file.txt",
		Message: "line 2 does not match",
	}
	msg := err.Error()
	if !strings.Contains(msg, string(CodeContextMismatch)) {
		t.Fatalf("message should carry the code: %q", msg)
	}
	if !strings.Contains(msg, "base/b/file.txt") {
		t.Fatalf("message should carry the path: %q", msg)
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk on fire")
	err := ioError("base/file.txt", cause)
	if err.Code != CodeIOFailure {
		t.Fatalf("unexpected code: %s", err.Code)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause should survive errors.Is")
	}
}

func TestFormatErrorRendersMismatchDetail(t *testing.T) {
	t.Parallel()

	err := &Error{
		Code:       CodeContextMismatch,
		Path:       "base/b/file.txt",
		HunkHeader: "@@ -1,3 +1,3 @@",
		Line:       2,
		Expected:   "old",
		Actual:     "different",
		Message:    "line 2 does not match",
	}
	rendered := FormatError(err)
	for _, want := range []string{
		"@@ -1,3 +1,3 @@",
		`Expected line 2: "old"`,
		`"different"`,
		"base/b/file.txt",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered error missing %q:\n%s", want, rendered)
		}
	}
}

func TestFormatErrorNil(t *testing.T) {
	t.Parallel()

	if got := FormatError(nil); got != "Unknown error occurred." {
		t.Fatalf("unexpected nil rendering: %q", got)
	}
}
