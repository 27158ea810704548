package analysis

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jask/horaculo/internal/session"
)

//go:embed mock_payload.json
var mockPayload []byte

// MockFetcher serves the bundled demo payload for every query and mode.
type MockFetcher struct {
	payload session.ResultPayload
}

// NewMockFetcher parses the bundled payload.
func NewMockFetcher() (*MockFetcher, error) {
	p, err := session.ParsePayload(mockPayload)
	if err != nil {
		return nil, fmt.Errorf("mock payload: %w", err)
	}
	return &MockFetcher{payload: p}, nil
}

// FetchAnalysis returns a copy of the demo payload.
func (m *MockFetcher) FetchAnalysis(ctx context.Context, _ string, _ session.Mode) (session.ResultPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.payload.Clone(), nil
}
