package session

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrUnknownScreen = errors.New("unknown screen")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrSuperseded    = errors.New("search superseded by a newer search")
	ErrClosed        = errors.New("session closed")
)

// ValidationError rejects a request before any state changes.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %v", e.Field, e.Err) }

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError means the analysis backend could not produce a payload.
type FetchError struct {
	Mode Mode
	Err  error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s analysis: %v", e.Mode, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// MissingDataError is returned for a screen with no slice in the payload.
type MissingDataError struct {
	Screen ScreenID
}

func (e *MissingDataError) Error() string { return fmt.Sprintf("no data for screen %s", e.Screen) }
