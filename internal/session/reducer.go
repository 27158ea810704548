package session

import (
	"context"
	"errors"
	"fmt"
)

// Action is a state transition request handled by Reduce.
type Action interface {
	action()
}

// StartSearch resets the session for a new search.
type StartSearch struct {
	SearchID string
	Request  SearchRequest
}

// AppendLog adds one progress line.
type AppendLog struct {
	Line string
}

// SearchSuccess installs the result and routes to the mode's screen.
type SearchSuccess struct {
	Mode   Mode
	Result ResultPayload
}

// SearchFailure ends the search without a result and without navigating.
type SearchFailure struct {
	Err error
}

// Navigate switches the active screen.
type Navigate struct {
	Screen ScreenID
}

func (StartSearch) action()   {}
func (AppendLog) action()     {}
func (SearchSuccess) action() {}
func (SearchFailure) action() {}
func (Navigate) action()      {}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	next := s
	switch a := a.(type) {
	case StartSearch:
		next.Loading = true
		next.Logs = []string{}
		next.Result = nil
		next.Err = nil
		next.SearchID = a.SearchID
		next.Query = a.Request.Query
		next.Mode = a.Request.Mode
	case AppendLog:
		next.Logs = appendLine(s.Logs, a.Line)
	case SearchSuccess:
		next.Result = a.Result
		next.Loading = false
		next.ActiveScreen = a.Mode.TargetScreen()
	case SearchFailure:
		next.Logs = appendLine(s.Logs, FailureLine(a.Err))
		next.Loading = false
		next.Err = a.Err
	case Navigate:
		next.ActiveScreen = a.Screen
	}
	return next
}

func appendLine(logs []string, line string) []string {
	out := make([]string, len(logs), len(logs)+1)
	copy(out, logs)
	return append(out, line)
}

// FailureLine is the terminal log line for a failed or cancelled search.
func FailureLine(err error) string {
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("Analysis failed: %v", fe.Err)
	case errors.Is(err, context.Canceled), errors.Is(err, ErrClosed):
		return "Scan cancelled."
	case err == nil:
		return "Scan aborted."
	default:
		return fmt.Sprintf("Scan aborted: %v", err)
	}
}
