package unidiff

import "fmt"

// LineKind identifies how a single line participates in a hunk.
type LineKind int

const (
	// LineContext is an unchanged line included for positional verification.
	LineContext LineKind = iota
	// LineAdded is a line present only in the new file.
	LineAdded
	// LineDeleted is a line present only in the old file.
	LineDeleted
)

// Line is one line of a hunk body. Text carries the exact content without a
// trailing newline; NoNewlineAtEOF is set when the line was followed by the
// "\ No newline at end of file" marker.
type Line struct {
	Kind           LineKind
	Text           string
	NoNewlineAtEOF bool
}

// ChangeKind identifies the file-level change described by a Patch.
type ChangeKind string

const (
	// FileCreated adds a file that must not exist yet.
	FileCreated ChangeKind = "created"
	// FileDeleted removes an existing file after validating its content.
	FileDeleted ChangeKind = "deleted"
	// FileModified rewrites regions of an existing file.
	FileModified ChangeKind = "modified"
	// FileRenamed moves a file, optionally modifying it on the way.
	FileRenamed ChangeKind = "renamed"
)

// Hunk is a contiguous edit region. Start and count values are the 1-based
// numbers from the unified-diff header; Lines hold the body in order.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Header renders the unified-diff header for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Patch describes the changes to a single file. Paths use forward slashes as
// written in the diff; hunks are ordered by ascending OldStart and do not
// overlap in old-file line space.
type Patch struct {
	OldPath string
	NewPath string
	Kind    ChangeKind
	Hunks   []Hunk
}

// PatchSet holds the patches of one patch file in declaration order, which is
// also the application order, plus any extended header lines (a commit
// message, for example). The engine never mutates a constructed set.
type PatchSet struct {
	patches      []Patch
	extendedInfo []string
}

// NewPatchSet builds a set from patches in application order.
func NewPatchSet(patches []Patch) *PatchSet {
	return &PatchSet{patches: append([]Patch(nil), patches...)}
}

// AddPatch appends a patch to the set.
func (ps *PatchSet) AddPatch(patch Patch) {
	ps.patches = append(ps.patches, patch)
}

// Patches returns the patches in application order. Callers must treat the
// returned slice as read-only.
func (ps *PatchSet) Patches() []Patch {
	return ps.patches
}

// SetExtendedInfo replaces the extended header lines as a whole.
func (ps *PatchSet) SetExtendedInfo(lines []string) {
	ps.extendedInfo = append([]string(nil), lines...)
}

// ExtendedInfo returns the extended header lines verbatim. The engine stores
// them opaquely and never interprets their content.
func (ps *PatchSet) ExtendedInfo() []string {
	return ps.extendedInfo
}
