package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	base := InitialState()
	base = Reduce(base, StartSearch{SearchID: "a", Request: SearchRequest{Query: "Oil", Mode: ModeMacro}})
	base = Reduce(base, AppendLog{Line: "one"})

	logs := make([]string, 1, 8)
	logs[0] = "one"
	base.Logs = logs

	next := Reduce(base, AppendLog{Line: "two"})
	require.Equal(t, []string{"one"}, base.Logs)
	require.Equal(t, []string{"one", "two"}, next.Logs)

	// appending to the original backing array must not leak into next
	_ = append(base.Logs, "three")
	require.Equal(t, []string{"one", "two"}, next.Logs)
}

func TestReduceTransitions(t *testing.T) {
	payload := ResultPayload{ScreenCrypto: json.RawMessage(`{}`)}
	tests := []struct {
		name   string
		start  State
		action Action
		check  func(t *testing.T, s State)
	}{
		{
			name: "start resets",
			start: State{
				ActiveScreen: ScreenStress,
				Logs:         []string{"old"},
				Result:       payload,
				Err:          errors.New("old"),
			},
			action: StartSearch{SearchID: "x", Request: SearchRequest{Query: "SOL", Mode: ModeCrypto}},
			check: func(t *testing.T, s State) {
				require.True(t, s.Loading)
				require.Empty(t, s.Logs)
				require.Nil(t, s.Result)
				require.NoError(t, s.Err)
				require.Equal(t, "x", s.SearchID)
				require.Equal(t, ModeCrypto, s.Mode)
				require.Equal(t, ScreenStress, s.ActiveScreen)
			},
		},
		{
			name:   "success routes crypto",
			start:  State{ActiveScreen: ScreenPortal, Loading: true},
			action: SearchSuccess{Mode: ModeCrypto, Result: payload},
			check: func(t *testing.T, s State) {
				require.False(t, s.Loading)
				require.Equal(t, ScreenCrypto, s.ActiveScreen)
				require.True(t, s.HasResult())
			},
		},
		{
			name:   "success routes macro",
			start:  State{ActiveScreen: ScreenPortal, Loading: true},
			action: SearchSuccess{Mode: ModeMacro, Result: payload},
			check: func(t *testing.T, s State) {
				require.Equal(t, ScreenArbitrage, s.ActiveScreen)
			},
		},
		{
			name:   "failure keeps screen and result",
			start:  State{ActiveScreen: ScreenPortal, Loading: true, Logs: []string{"a"}},
			action: SearchFailure{Err: &FetchError{Mode: ModeMacro, Err: errors.New("timeout")}},
			check: func(t *testing.T, s State) {
				require.False(t, s.Loading)
				require.Nil(t, s.Result)
				require.Equal(t, ScreenPortal, s.ActiveScreen)
				require.Equal(t, []string{"a", "Analysis failed: timeout"}, s.Logs)
			},
		},
		{
			name:   "navigate",
			start:  InitialState(),
			action: Navigate{Screen: ScreenIntelligence},
			check: func(t *testing.T, s State) {
				require.Equal(t, ScreenIntelligence, s.ActiveScreen)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(tt.start, tt.action))
		})
	}
}

func TestFailureLine(t *testing.T) {
	require.Equal(t, "Scan cancelled.", FailureLine(context.Canceled))
	require.Equal(t, "Scan cancelled.", FailureLine(ErrClosed))
	require.Equal(t, "Scan aborted: boom", FailureLine(errors.New("boom")))
	require.Equal(t, "Analysis failed: 502", FailureLine(&FetchError{Mode: ModeCrypto, Err: errors.New("502")}))
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(`{
		"screen_crypto": {"asset": "SOLANA"},
		"screen_stress": null,
		"screen_unknown": {"x": 1}
	}`))
	require.NoError(t, err)
	require.Len(t, p, 1)
	raw, err := p.Slice(ScreenCrypto)
	require.NoError(t, err)
	require.JSONEq(t, `{"asset":"SOLANA"}`, string(raw))

	_, err = p.Slice(ScreenStress)
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)

	_, err = ParsePayload([]byte(`[1,2]`))
	require.Error(t, err)
	_, err = ParsePayload([]byte(`{nope`))
	require.Error(t, err)
}

func TestPayloadJSONRoundTrip(t *testing.T) {
	p := ResultPayload{ScreenStress: json.RawMessage(`{"mood":"Fear"}`)}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{"screen_stress":{"mood":"Fear"}}`, string(raw))

	var back ResultPayload
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, p, back)
}

func TestParseModeAndScreen(t *testing.T) {
	m, err := ParseMode(" crypto ")
	require.NoError(t, err)
	require.Equal(t, ModeCrypto, m)
	require.Equal(t, ModeMacro, m.Toggle())
	_, err = ParseMode("forex")
	require.ErrorIs(t, err, ErrUnknownMode)

	s, err := ParseScreen("Stress")
	require.NoError(t, err)
	require.Equal(t, ScreenStress, s)
	_, err = ParseScreen("settings")
	require.ErrorIs(t, err, ErrUnknownScreen)
}
