package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jask/horaculo/internal/session"
)

// Task states reported by the status endpoint.
const (
	stateSuccess = "SUCCESS"
	stateFailure = "FAILURE"
)

// maxErrorBody caps how much of an error response ends up in messages.
const maxErrorBody = 512

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("analysis backend: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("analysis backend: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
}

// ErrTaskFailed is wrapped when the backend marks a queued analysis as failed.
var ErrTaskFailed = errors.New("analysis task failed")

// HTTPClient talks to the analysis API. Macro searches are queued and polled;
// crypto searches answer synchronously.
type HTTPClient struct {
	baseURL      string
	token        string
	useOpenAI    bool
	timeout      time.Duration
	pollInterval time.Duration
	http         *http.Client
	logger       *zap.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) { c.token = strings.TrimSpace(token) }
}

func WithOpenAI(enabled bool) HTTPOption {
	return func(c *HTTPClient) { c.useOpenAI = enabled }
}

// WithTimeout bounds a whole FetchAnalysis call, polling included.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithPollInterval(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithHTTPClient(h *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if h != nil {
			c.http = h
		}
	}
}

func WithHTTPLogger(l *zap.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout:      90 * time.Second,
		pollInterval: 2 * time.Second,
		http:         &http.Client{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAnalysis runs one analysis against the backend.
func (c *HTTPClient) FetchAnalysis(ctx context.Context, query string, mode session.Mode) (session.ResultPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	switch mode {
	case session.ModeCrypto:
		return c.fetchCrypto(ctx, query)
	case session.ModeMacro:
		return c.fetchMacro(ctx, query)
	default:
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownMode, mode)
	}
}

func (c *HTTPClient) fetchCrypto(ctx context.Context, query string) (session.ResultPayload, error) {
	body, err := c.do(ctx, http.MethodPost, pathCrypto, queryBody{Q: query, UseOpenAI: c.useOpenAI})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, fmt.Errorf("crypto response: expected json object")
	}
	c.logger.Debug("crypto analysis received",
		zap.String("asset", gjson.GetBytes(body, "asset").String()),
		zap.String("status", gjson.GetBytes(body, "status").String()))
	return session.ResultPayload{session.ScreenCrypto: json.RawMessage(body)}, nil
}

func (c *HTTPClient) fetchMacro(ctx context.Context, query string) (session.ResultPayload, error) {
	body, err := c.do(ctx, http.MethodPost, pathSubmit, queryBody{Q: query, UseOpenAI: c.useOpenAI})
	if err != nil {
		return nil, err
	}
	taskID := gjson.GetBytes(body, "task_id").String()
	if taskID == "" {
		return nil, fmt.Errorf("submit response: missing task_id")
	}
	c.logger.Info("analysis queued", zap.String("task_id", taskID))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for polls := 1; ; polls++ {
		status, err := c.do(ctx, http.MethodGet, pathStatus+url.PathEscape(taskID), nil)
		if err != nil {
			return nil, err
		}
		state := gjson.GetBytes(status, "state").String()
		c.logger.Debug("analysis poll", zap.String("task_id", taskID), zap.String("state", state), zap.Int("poll", polls))
		switch state {
		case stateSuccess:
			ui := gjson.GetBytes(status, "ui")
			if !ui.IsObject() {
				return nil, fmt.Errorf("status response: missing ui payload")
			}
			return session.ParsePayload([]byte(ui.Raw))
		case stateFailure:
			return nil, fmt.Errorf("%w: %s", ErrTaskFailed, gjson.GetBytes(status, "error").String())
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.logger.Debug("analysis request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}
	return raw, nil
}

// errorDetail prefers FastAPI's {"detail": ...} and falls back to the raw body.
func errorDetail(raw []byte) string {
	if d := gjson.GetBytes(raw, "detail"); d.Exists() {
		return d.String()
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
