package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

//go:generate go tool stringer -type=Status -linecomment -output=status_string.go

// Status is the state of a save session.
type Status int

// Session statuses. Ready is the zero value.
const (
	Ready    Status = iota // READY
	Saving                 // SAVING
	Paused                 // PAUSED
	Finished               // FINISHED
	Failed                 // FAILED
	Canceled               // CANCELED
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current status.
var ErrInvalidTransition = errors.New("invalid session transition")

var transitions = map[Status][]Status{
	Ready:    {Saving},
	Saving:   {Paused, Failed, Finished, Canceled},
	Paused:   {Saving, Canceled},
	Finished: {Ready},
	Failed:   {Ready},
	Canceled: {Saving},
}

// CanTransition reports whether s may change to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Active reports whether the session holds resources still to be saved.
func (s Status) Active() bool {
	return s == Saving || s == Paused
}

func (s Status) transition(next Status) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s, next)
	}

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	raw := strings.ToUpper(strings.TrimSpace(string(text)))

	for st := Ready; st <= Canceled; st++ {
		if st.String() == raw {
			*s = st
			return nil
		}
	}

	return fmt.Errorf("invalid session status %q", string(text))
}
