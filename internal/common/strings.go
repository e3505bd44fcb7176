package common

import "strings"

// ParentPath returns everything before the last dot of a dotted path, and false
// when the path is not nested.
func ParentPath(path string) (string, bool) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "", false
	}

	return path[:idx], true
}

// LastSegment returns the text after the last dot of a dotted path.
func LastSegment(path string) string {
	return path[strings.LastIndex(path, ".")+1:]
}
