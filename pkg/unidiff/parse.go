package unidiff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads unified-diff text, including the git extensions for file
// creation, deletion and renames, and returns the structured patch set.
//
// Lines preceding the first file header are stored verbatim as the set's
// extended info (a commit message from format-patch, for example). Metadata
// lines between files (index, mode, similarity) are skipped.
func Parse(r io.Reader) (*PatchSet, error) {
	set := &PatchSet{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		extended       []string
		current        *Patch
		hunk           *Hunk
		remainingOld   int
		remainingNew   int
		sawHeader      bool
		pendingOld     string
		pendingNew     string
		pendingNewFile bool
		pendingDeleted bool
		pendingRenamed bool
		lineNumber     int
	)

	resetPending := func() {
		pendingOld = ""
		pendingNew = ""
		pendingNewFile = false
		pendingDeleted = false
		pendingRenamed = false
	}

	flushHunk := func() error {
		if hunk == nil {
			return nil
		}
		if remainingOld > 0 || remainingNew > 0 {
			return fmt.Errorf("hunk %s is shorter than its header declares", hunk.Header())
		}
		current.Hunks = append(current.Hunks, *hunk)
		hunk = nil
		return nil
	}

	flushPatch := func() error {
		if current == nil {
			return nil
		}
		if err := flushHunk(); err != nil {
			return err
		}
		set.AddPatch(*current)
		current = nil
		return nil
	}

	materialize := func() {
		kind := FileModified
		oldPath, newPath := pendingOld, pendingNew
		switch {
		case pendingRenamed:
			kind = FileRenamed
		case pendingNewFile || oldPath == "/dev/null":
			kind = FileCreated
		case pendingDeleted || newPath == "/dev/null":
			kind = FileDeleted
			if oldPath != "" {
				newPath = oldPath
			}
		}
		current = &Patch{OldPath: oldPath, NewPath: newPath, Kind: kind}
	}

	// finalize closes the file section that started at the previous boundary.
	// A rename without hunks has no ---/+++ header pair, so it materializes
	// here from the rename from/to lines alone.
	finalize := func() error {
		if current == nil && pendingRenamed && pendingOld != "" && pendingNew != "" {
			materialize()
		}
		if err := flushPatch(); err != nil {
			return err
		}
		resetPending()
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNumber++

		if hunk != nil && (remainingOld > 0 || remainingNew > 0) {
			switch {
			case strings.HasPrefix(line, " "):
				if remainingOld == 0 || remainingNew == 0 {
					return nil, fmt.Errorf("line %d: hunk %s is longer than its header declares", lineNumber, hunk.Header())
				}
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: line[1:]})
				remainingOld--
				remainingNew--
			case strings.HasPrefix(line, "+"):
				if remainingNew == 0 {
					return nil, fmt.Errorf("line %d: hunk %s is longer than its header declares", lineNumber, hunk.Header())
				}
				hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Text: line[1:]})
				remainingNew--
			case strings.HasPrefix(line, "-"):
				if remainingOld == 0 {
					return nil, fmt.Errorf("line %d: hunk %s is longer than its header declares", lineNumber, hunk.Header())
				}
				hunk.Lines = append(hunk.Lines, Line{Kind: LineDeleted, Text: line[1:]})
				remainingOld--
			case line == "":
				// Some tools emit empty context lines without the leading space.
				if remainingOld == 0 || remainingNew == 0 {
					return nil, fmt.Errorf("line %d: hunk %s is longer than its header declares", lineNumber, hunk.Header())
				}
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: ""})
				remainingOld--
				remainingNew--
			case strings.HasPrefix(line, `\`):
				if len(hunk.Lines) > 0 {
					hunk.Lines[len(hunk.Lines)-1].NoNewlineAtEOF = true
				}
			default:
				return nil, fmt.Errorf("line %d: unexpected line in hunk %s: %q", lineNumber, hunk.Header(), line)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git ") || strings.HasPrefix(line, "Index: "):
			if err := finalize(); err != nil {
				return nil, err
			}
			sawHeader = true
		case strings.HasPrefix(line, "rename from "):
			pendingRenamed = true
			pendingOld = strings.TrimPrefix(line, "rename from ")
		case strings.HasPrefix(line, "rename to "):
			pendingRenamed = true
			pendingNew = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "new file mode"):
			pendingNewFile = true
		case strings.HasPrefix(line, "deleted file mode"):
			pendingDeleted = true
		case strings.HasPrefix(line, "--- "):
			if err := flushPatch(); err != nil {
				return nil, err
			}
			pendingOld = headerPath(line[4:])
			sawHeader = true
		case strings.HasPrefix(line, "+++ "):
			pendingNew = headerPath(line[4:])
			materialize()
			resetPending()
		case strings.HasPrefix(line, "@@"):
			if current == nil {
				return nil, fmt.Errorf("line %d: hunk header before any file header", lineNumber)
			}
			if err := flushHunk(); err != nil {
				return nil, err
			}
			match := hunkHeaderPattern.FindStringSubmatch(line)
			if match == nil {
				return nil, fmt.Errorf("line %d: malformed hunk header: %q", lineNumber, line)
			}
			hunk = &Hunk{
				OldStart: mustAtoi(match[1]),
				OldCount: countOrOne(match[2]),
				NewStart: mustAtoi(match[3]),
				NewCount: countOrOne(match[4]),
			}
			remainingOld = hunk.OldCount
			remainingNew = hunk.NewCount
		case strings.HasPrefix(line, `\`):
			if hunk != nil && len(hunk.Lines) > 0 {
				hunk.Lines[len(hunk.Lines)-1].NoNewlineAtEOF = true
			}
		default:
			if !sawHeader && current == nil {
				extended = append(extended, line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read diff: %w", err)
	}
	if err := finalize(); err != nil {
		return nil, err
	}
	if len(set.patches) == 0 {
		return nil, errors.New("no patches found in input")
	}
	if len(extended) > 0 {
		set.SetExtendedInfo(extended)
	}
	return set, nil
}

// headerPath extracts the path from a ---/+++ header, dropping the timestamp
// some tools append after a tab.
func headerPath(rest string) string {
	rest = strings.TrimSpace(rest)
	if idx := strings.IndexByte(rest, '\t'); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

func mustAtoi(value string) int {
	parsed, _ := strconv.Atoi(value)
	return parsed
}

func countOrOne(value string) int {
	if value == "" {
		return 1
	}
	return mustAtoi(value)
}
