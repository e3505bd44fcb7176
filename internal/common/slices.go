package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle returns true if the slice has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// IsMultiple returns true if the slice has more than one element.
func IsMultiple[S ~[]E, E any](s S) bool {
	return len(s) > 1
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Filter returns the elements of s for which keep returns true.
func Filter[S ~[]E, E any](s S, keep func(E) bool) S {
	var out S

	for _, e := range s {
		if keep(e) {
			out = append(out, e)
		}
	}

	return out
}

// Map applies fn to every element of s.
func Map[S ~[]E, E, R any](s S, fn func(E) R) []R {
	out := make([]R, 0, len(s))
	for _, e := range s {
		out = append(out, fn(e))
	}

	return out
}
