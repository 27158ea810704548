package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher produces the result payload for a query. Implementations live in
// internal/analysis.
type Fetcher interface {
	FetchAnalysis(ctx context.Context, query string, mode Mode) (ResultPayload, error)
}

// Search outcomes passed to Recorder.RecordFinish.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Recorder is notified when searches start and finish. Errors are logged, not
// surfaced to the user.
type Recorder interface {
	RecordStart(ctx context.Context, searchID string, req SearchRequest) error
	RecordFinish(ctx context.Context, searchID, status string, cause error) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDelays overrides the two pauses of the scan sequence.
func WithDelays(first, second time.Duration) Option {
	return func(c *Controller) {
		c.firstDelay = first
		c.secondDelay = second
	}
}

// WithSleep replaces the timer used between steps. Tests use it to run the
// sequence without waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithRecorder attaches a search history recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithIDs replaces the search id generator.
func WithIDs(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Controller owns the session state and the search workflow.
type Controller struct {
	fetcher     Fetcher
	recorder    Recorder
	logger      *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
	newID       func() string
	firstDelay  time.Duration
	secondDelay time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	subs   map[chan struct{}]struct{}
	closed bool
}

// NewController returns a controller in the initial state.
func NewController(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:     f,
		logger:      zap.NewNop(),
		sleep:       sleepCtx,
		newID:       uuid.NewString,
		firstDelay:  500 * time.Millisecond,
		secondDelay: 1000 * time.Millisecond,
		state:       InitialState(),
		subs:        make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe returns a channel that receives a value after every state change.
// Notifications coalesce, so readers should re-read State. The channel closes
// when the controller does; call the returned func to stop early.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
		})
	}
}

// Navigate switches the active screen. It is allowed while a search is loading.
func (c *Controller) Navigate(screen ScreenID) error {
	if !screen.Valid() {
		return ErrUnknownScreen
	}
	c.mu.Lock()
	if c.state.ActiveScreen == screen {
		c.mu.Unlock()
		return nil
	}
	c.state = Reduce(c.state, Navigate{Screen: screen})
	c.notifyLocked()
	c.mu.Unlock()
	c.logger.Debug("navigate", zap.String("screen", string(screen)))
	return nil
}

// InitiateSearch runs the scan sequence and blocks until it ends. A blank query
// returns a *ValidationError and leaves the state untouched, as does an already
// cancelled ctx. Starting a search
// cancels any search still in flight; the older call returns ErrSuperseded.
func (c *Controller) InitiateSearch(ctx context.Context, req SearchRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if err := req.Validate(); err != nil {
		return err
	}
	// a dead caller must not wipe the installed result
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	id := c.newID()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancel != nil {
		c.logger.Info("search superseded", zap.String("search_id", c.state.SearchID))
		c.cancel()
	}
	c.cancel = cancel
	c.state = Reduce(c.state, StartSearch{SearchID: id, Request: req})
	c.notifyLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.state.SearchID == id {
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	log := c.logger.With(zap.String("search_id", id), zap.String("mode", string(req.Mode)), zap.String("query", req.Query))
	log.Info("search started")
	c.record(func(r Recorder) error { return r.RecordStart(context.WithoutCancel(ctx), id, req) }, log)

	err := c.run(runCtx, id, req)
	switch {
	case err == nil:
		log.Info("search finished")
		c.record(func(r Recorder) error {
			return r.RecordFinish(context.WithoutCancel(ctx), id, StatusSuccess, nil)
		}, log)
		return nil
	case errors.Is(err, ErrSuperseded):
		c.record(func(r Recorder) error {
			return r.RecordFinish(context.WithoutCancel(ctx), id, StatusCancelled, err)
		}, log)
		return err
	default:
		status := StatusFailed
		var fe *FetchError
		if !errors.As(err, &fe) {
			status = StatusCancelled
		}
		// still the current search: close it out so the UI stops loading
		if !c.apply(id, SearchFailure{Err: err}) {
			err = ErrSuperseded
			status = StatusCancelled
		}
		log.Warn("search ended early", zap.String("status", status), zap.Error(err))
		c.record(func(r Recorder) error {
			return r.RecordFinish(context.WithoutCancel(ctx), id, status, err)
		}, log)
		return err
	}
}

func (c *Controller) run(ctx context.Context, id string, req SearchRequest) error {
	if err := c.step(ctx, id, AppendLog{Line: startLine(req.Mode)}); err != nil {
		return err
	}
	if err := c.sleep(ctx, c.firstDelay); err != nil {
		return err
	}
	for _, line := range stageLines(req.Mode) {
		if err := c.step(ctx, id, AppendLog{Line: line}); err != nil {
			return err
		}
	}
	if err := c.sleep(ctx, c.secondDelay); err != nil {
		return err
	}
	if err := c.step(ctx, id, AppendLog{Line: finalLine}); err != nil {
		return err
	}

	payload, err := c.fetcher.FetchAnalysis(ctx, req.Query, req.Mode)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &FetchError{Mode: req.Mode, Err: err}
	}
	if payload == nil {
		payload = ResultPayload{}
	}
	return c.step(ctx, id, SearchSuccess{Mode: req.Mode, Result: payload.Clone()})
}

// step applies a for search id unless that search was cancelled or replaced.
func (c *Controller) step(ctx context.Context, id string, a Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.apply(id, a) {
		return ErrSuperseded
	}
	return nil
}

func (c *Controller) apply(id string, a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SearchID != id {
		return false
	}
	c.state = Reduce(c.state, a)
	c.notifyLocked()
	return true
}

func (c *Controller) notifyLocked() {
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *Controller) record(fn func(Recorder) error, log *zap.Logger) {
	if c.recorder == nil {
		return
	}
	if err := fn(c.recorder); err != nil {
		log.Warn("record search history", zap.Error(err))
	}
}

// Cancel aborts the search in flight, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Close cancels any running search and closes all subscriptions. Further
// searches fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	for ch := range c.subs {
		close(ch)
		delete(c.subs, ch)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
