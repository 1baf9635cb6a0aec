package ragindex

import "strings"

// Ignored reports whether path is excluded by any of the configured ignore
// prefixes. The match is textual (not path-segment aware): an ignore prefix
// "vendor" matches both "vendor/foo.go" and "vendoring/bar.go".
func Ignored(path string, ignoreDirs []string) bool {
	for _, prefix := range ignoreDirs {
		if path == prefix || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
