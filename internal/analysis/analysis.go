// Package analysis implements the fetch boundary between the dashboard and
// the analysis backend.
package analysis

import (
	"time"

	"go.uber.org/zap"

	"github.com/jask/horaculo/internal/config"
	"github.com/jask/horaculo/internal/session"
)

var (
	_ session.Fetcher = (*MockFetcher)(nil)
	_ session.Fetcher = (*HTTPClient)(nil)
	_ session.Fetcher = (*CachedFetcher)(nil)
)

// Backend endpoints.
const (
	pathSubmit = "/analyze/submit"
	pathStatus = "/analyze/status/"
	pathCrypto = "/analyze/crypto"
)

type queryBody struct {
	Q         string `json:"q"`
	UseOpenAI bool   `json:"use_openai"`
}

// Options selects and configures the fetcher built by New.
type Options struct {
	API      config.APIConfig
	Token    string
	CacheTTL time.Duration
	Cache    ResultCache // nil disables caching
	Logger   *zap.Logger
}

// New returns the mock fetcher when the API is in mock mode, otherwise the
// HTTP client. Backend results go through the cache when one is given.
func New(opts Options) (session.Fetcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.API.Mock {
		m, err := NewMockFetcher()
		if err != nil {
			return nil, err
		}
		// the demo payload is constant, never cached
		return m, nil
	}
	var f session.Fetcher = NewHTTPClient(opts.API.BaseURL,
		WithToken(opts.Token),
		WithOpenAI(opts.API.UseOpenAI),
		WithTimeout(opts.API.Timeout),
		WithPollInterval(opts.API.PollInterval),
		WithHTTPLogger(logger.Named("api")),
	)
	if opts.Cache != nil && opts.CacheTTL > 0 {
		f = NewCachedFetcher(f, opts.Cache, opts.CacheTTL, logger.Named("cache"))
	}
	return f, nil
}
