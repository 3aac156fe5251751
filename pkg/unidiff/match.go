package unidiff

import "fmt"

// applyHunk verifies a hunk against source starting at cursor and returns the
// lines the hunk contributes to the output together with the advanced cursor.
//
// cursor is the 0-based index of the next unconsumed source line, carried
// across hunks within one file so that cumulative insert/delete imbalance
// stays accounted for. The hunk's declared start must point exactly at the
// cursor; matching is byte-exact with no resynchronization on mismatch.
func applyHunk(path string, hunk Hunk, source []string, cursor int) ([]string, int, *Error) {
	start := hunk.OldStart
	if hunk.OldCount == 0 {
		// A zero-length old range names the line before the insertion point.
		start++
	}
	if start != cursor+1 {
		return nil, cursor, &Error{
			Code:       CodeHunkOffsetMismatch,
			Path:       path,
			HunkHeader: hunk.Header(),
			Line:       cursor + 1,
			Message:    fmt.Sprintf("%s: hunk %s does not align with line %d", path, hunk.Header(), cursor+1),
		}
	}

	output := make([]string, 0, hunk.NewCount)
	for _, line := range hunk.Lines {
		switch line.Kind {
		case LineContext, LineDeleted:
			actual := ""
			if cursor < len(source) {
				actual = source[cursor]
			}
			if cursor >= len(source) || actual != line.Text {
				return nil, cursor, &Error{
					Code:       CodeContextMismatch,
					Path:       path,
					HunkHeader: hunk.Header(),
					Line:       cursor + 1,
					Expected:   line.Text,
					Actual:     actual,
					Message:    fmt.Sprintf("%s: line %d does not match hunk %s", path, cursor+1, hunk.Header()),
				}
			}
			if line.Kind == LineContext {
				output = append(output, line.Text)
			}
			cursor++
		case LineAdded:
			output = append(output, line.Text)
		}
	}
	return output, cursor, nil
}
