package unidiff

import (
	"path/filepath"
	"testing"
)

func TestResolveDestination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		declared string
		strip    int
		want     string
	}{
		{name: "zero strip keeps the whole path", declared: "a/b/file.txt", strip: 0, want: "base/a/b/file.txt"},
		{name: "strip one segment", declared: "a/b/file.txt", strip: 1, want: "base/b/file.txt"},
		{name: "strip two segments", declared: "a/b/file.txt", strip: 2, want: "base/file.txt"},
		{name: "strip beyond depth keeps the last segment", declared: "a/b/file.txt", strip: 9, want: "base/file.txt"},
		{name: "strip on a bare name is a no-op", declared: "file.txt", strip: 3, want: "base/file.txt"},
		{name: "backslash separators are normalized", declared: `a\b\file.txt`, strip: 1, want: "base/b/file.txt"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveDestination("base", tc.declared, tc.strip)
			if got != filepath.FromSlash(tc.want) {
				t.Fatalf("ResolveDestination(%q, %d) = %q, want %q", tc.declared, tc.strip, got, tc.want)
			}
		})
	}
}

func TestResolveDestinationStripIsMonotonic(t *testing.T) {
	t.Parallel()

	declared := "one/two/three/file.txt"
	previous := ResolveDestination("base", declared, 0)
	stable := 0
	for strip := 1; strip < 8; strip++ {
		got := ResolveDestination("base", declared, strip)
		if len(got) > len(previous) {
			t.Fatalf("strip %d lengthened the path: %q -> %q", strip, previous, got)
		}
		if got == previous {
			stable++
		}
		previous = got
	}
	if stable == 0 {
		t.Fatalf("expected over-stripping to stabilize, last result %q", previous)
	}
	if previous != filepath.FromSlash("base/file.txt") {
		t.Fatalf("unexpected fully stripped path: %q", previous)
	}
}
