package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// Error is a backend error response.
type Error struct {
	StatusCode int
	Path       string
	Details    []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api '%s' (HTTP Status: %d)", e.Path, e.StatusCode)
	}

	return fmt.Sprintf("api '%s' (HTTP Status: %d)- %s", e.Path, e.StatusCode, strings.Join(e.Details, "; "))
}
