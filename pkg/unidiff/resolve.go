package unidiff

import (
	"path/filepath"
	"strings"
)

// ResolveDestination maps a declared patch path onto baseDir after removing
// stripCount leading path segments, the way the -p option of patch does.
//
// The declared path is normalized to forward slashes first, so diffs produced
// on either path-separator convention resolve the same way. Stripping walks
// separator by separator and stops early once no separator remains, so a
// strip count larger than the path depth degrades to stripping whatever
// prefix was found. The retained fragment starts at the last separator found
// (filepath.Join discards the leading separator when joining); with a strip
// count of zero the declared path is used whole.
//
// ResolveDestination never fails and performs no existence check. The result
// is taken literally: paths containing ".." are not sandboxed to baseDir,
// callers that need containment must validate the resolved path themselves.
func ResolveDestination(baseDir, declaredPath string, stripCount int) string {
	normalized := strings.ReplaceAll(declaredPath, "\\", "/")
	offset := 0
	last := 0
	for n := stripCount; n > 0; n-- {
		idx := strings.Index(normalized[offset:], "/")
		if idx < 0 {
			break
		}
		last = offset + idx
		offset = last + 1
		if offset >= len(normalized) {
			break
		}
	}
	return filepath.Join(baseDir, filepath.FromSlash(normalized[last:]))
}
