package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jask/horaculo/internal/session"
)

func TestHTTPClientCrypto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze/crypto", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body queryBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "SOL", body.Q)
		require.True(t, body.UseOpenAI)
		_, _ = w.Write([]byte(`{"status":"success","asset":"SOL","action_signal":{"code":"STRONG BUY","color":"#22C55E","icon":"rocket"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", WithToken(" tok "), WithOpenAI(true))
	p, err := c.FetchAnalysis(context.Background(), "SOL", session.ModeCrypto)
	require.NoError(t, err)
	raw, err := p.Slice(session.ScreenCrypto)
	require.NoError(t, err)
	require.Equal(t, "rocket", gjson.GetBytes(raw, "action_signal.icon").String())

	_, err = p.Slice(session.ScreenArbitrage)
	require.Error(t, err)
}

func TestHTTPClientMacroPollsUntilSuccess(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/submit", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"task_id":"t-42","status":"processing"}`))
	})
	mux.HandleFunc("/analyze/status/t-42", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"state":"PENDING"}`))
			return
		}
		_, _ = w.Write([]byte(`{"state":"SUCCESS","ui":{"screen_stress":{"mood":"Greed","entropy":0.4},"screen_arbitrage":{"intensity_score":0.3}},"full_data":{}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithPollInterval(time.Millisecond))
	p, err := c.FetchAnalysis(context.Background(), "Oil", session.ModeMacro)
	require.NoError(t, err)
	require.EqualValues(t, 3, polls.Load())
	require.Len(t, p, 2)
	raw, err := p.Slice(session.ScreenStress)
	require.NoError(t, err)
	require.Equal(t, "Greed", gjson.GetBytes(raw, "mood").String())
}

func TestHTTPClientMacroTaskFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"t-1"}`))
	})
	mux.HandleFunc("/analyze/status/t-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":"FAILURE","error":"NO_DATA"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).FetchAnalysis(context.Background(), "Oil", session.ModeMacro)
	require.ErrorIs(t, err, ErrTaskFailed)
	require.Contains(t, err.Error(), "NO_DATA")
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"satellite offline"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).FetchAnalysis(context.Background(), "ETH", session.ModeCrypto)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusInternalServerError, se.StatusCode)
	require.Equal(t, "satellite offline", se.Detail)
	require.Contains(t, err.Error(), "500 Internal Server Error: satellite offline")
}

func TestHTTPClientTimeoutWhilePolling(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task_id":"slow"}`))
	})
	mux.HandleFunc("/analyze/status/slow", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":"STARTED"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithTimeout(30*time.Millisecond), WithPollInterval(5*time.Millisecond))
	_, err := c.FetchAnalysis(context.Background(), "Oil", session.ModeMacro)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClientRejectsBadResponses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	})
	mux.HandleFunc("/analyze/crypto", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.FetchAnalysis(context.Background(), "Oil", session.ModeMacro)
	require.ErrorContains(t, err, "missing task_id")
	_, err = c.FetchAnalysis(context.Background(), "SOL", session.ModeCrypto)
	require.ErrorContains(t, err, "expected json object")
	_, err = c.FetchAnalysis(context.Background(), "SOL", session.Mode("FX"))
	require.ErrorIs(t, err, session.ErrUnknownMode)
}
