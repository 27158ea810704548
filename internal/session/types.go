// Package session owns the dashboard's navigation and search state.
//
// State changes go through Reduce, a pure function over the actions in
// reducer.go. The Controller serialises those actions, runs the timed scan
// workflow and drops actions from searches that have been superseded.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ScreenID identifies one dashboard panel.
type ScreenID string

const (
	ScreenPortal       ScreenID = "portal"
	ScreenArbitrage    ScreenID = "arbitrage"
	ScreenIntelligence ScreenID = "intelligence"
	ScreenStress       ScreenID = "stress"
	ScreenCrypto       ScreenID = "crypto"
)

// Screens returns every screen in sidebar order.
func Screens() []ScreenID {
	return []ScreenID{ScreenPortal, ScreenArbitrage, ScreenIntelligence, ScreenStress, ScreenCrypto}
}

// Valid reports whether s is one of the known screens.
func (s ScreenID) Valid() bool {
	switch s {
	case ScreenPortal, ScreenArbitrage, ScreenIntelligence, ScreenStress, ScreenCrypto:
		return true
	}
	return false
}

// PayloadKey is the key the analysis backend uses for this screen's slice.
func (s ScreenID) PayloadKey() string { return "screen_" + string(s) }

// ParseScreen accepts a screen name in any case.
func ParseScreen(name string) (ScreenID, error) {
	s := ScreenID(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, name)
	}
	return s, nil
}

// Mode selects which analysis pipeline a search runs.
type Mode string

const (
	ModeMacro  Mode = "MACRO"
	ModeCrypto Mode = "CRYPTO"
)

// ParseMode accepts "macro"/"crypto" in any case.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(name))); m {
	case ModeMacro, ModeCrypto:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeMacro || m == ModeCrypto }

// Toggle flips between the two modes.
func (m Mode) Toggle() Mode {
	if m == ModeCrypto {
		return ModeMacro
	}
	return ModeCrypto
}

// TargetScreen is where a finished search of this mode lands.
func (m Mode) TargetScreen() ScreenID {
	if m == ModeCrypto {
		return ScreenCrypto
	}
	return ScreenArbitrage
}

// SearchRequest is built on form submission and consumed by one search.
type SearchRequest struct {
	Query string
	Mode  Mode
}

// Validate rejects blank queries and unknown modes.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Err: ErrEmptyQuery}
	}
	if !r.Mode.Valid() {
		return &ValidationError{Field: "mode", Err: fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)}
	}
	return nil
}

// ResultPayload holds the per-screen JSON slices of one completed search.
// Each screen interprets its own slice; the session never looks inside.
type ResultPayload map[ScreenID]json.RawMessage

// ParsePayload reads a `{"screen_<id>": {...}}` document. Unknown keys are ignored.
func ParsePayload(raw []byte) (ResultPayload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("parse payload: invalid json")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("parse payload: expected object, got %s", doc.Type)
	}
	out := make(ResultPayload)
	for _, s := range Screens() {
		v := doc.Get(s.PayloadKey())
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		out[s] = json.RawMessage(v.Raw)
	}
	return out, nil
}

// Slice returns the raw data for screen or a *MissingDataError.
func (p ResultPayload) Slice(screen ScreenID) (json.RawMessage, error) {
	raw, ok := p[screen]
	if !ok || len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &MissingDataError{Screen: screen}
	}
	return raw, nil
}

// Clone deep-copies the payload so callers cannot mutate installed results.
func (p ResultPayload) Clone() ResultPayload {
	if p == nil {
		return nil
	}
	out := make(ResultPayload, len(p))
	for k, v := range p {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// MarshalJSON writes the payload back in backend form.
func (p ResultPayload) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(p))
	for k, v := range p {
		m[k.PayloadKey()] = v
	}
	return json.Marshal(m)
}

// State is the whole session. The zero value is not valid; use InitialState.
type State struct {
	ActiveScreen ScreenID
	Loading      bool
	Logs         []string
	Result       ResultPayload // nil until a search succeeds
	SearchID     string
	Query        string
	Mode         Mode
	Err          error // last search failure, cleared by the next search
}

// InitialState is the session at application start.
func InitialState() State {
	return State{ActiveScreen: ScreenPortal}
}

// HasResult reports whether a result payload is installed.
func (s State) HasResult() bool { return s.Result != nil }

// Clone returns a copy that shares no slices or maps with s.
func (s State) Clone() State {
	out := s
	if s.Logs != nil {
		out.Logs = append([]string(nil), s.Logs...)
	}
	out.Result = s.Result.Clone()
	return out
}

// UnmarshalJSON reads the backend form written by MarshalJSON.
func (p *ResultPayload) UnmarshalJSON(raw []byte) error {
	parsed, err := ParsePayload(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
