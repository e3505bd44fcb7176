package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Path is a dotted field path such as "collectingEvent.collectors.displayName".
// Array membership is implied by the schema, so segments carry no "[]".
type Path struct {
	Segments []string
}

// ParsePath splits a dotted path and rejects empty segments.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return Path{}, errors.New("empty path")
	}

	var segments []string

	for part := range strings.SplitSeq(path, ".") {
		if strings.TrimSpace(part) == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		segments = append(segments, part)
	}

	return Path{Segments: segments}, nil
}

// String joins the segments back with dots.
func (p Path) String() string {
	return strings.Join(p.Segments, ".")
}

// IsEmpty returns true if the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p.Segments) <= 1 {
		return Path{}
	}

	return Path{Segments: p.Segments[:len(p.Segments)-1]}
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if p.IsEmpty() {
		return ""
	}

	return p.Segments[len(p.Segments)-1]
}

// Prefixes returns every proper ancestor path, shortest first:
// "a.b.c" gives ["a", "a.b"].
func (p Path) Prefixes() []string {
	out := make([]string, 0, len(p.Segments))

	for i := 1; i < len(p.Segments); i++ {
		out = append(out, strings.Join(p.Segments[:i], "."))
	}

	return out
}
