package repository

import "time"

// Search statuses stored in the searches table.
const (
	StatusRunning = "running"
)

// SearchRecord represents a searches row.
type SearchRecord struct {
	ID         string
	Query      string
	Mode       string
	Status     string
	Error      *string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration is how long the search ran, zero while it is still running.
func (s SearchRecord) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// CachedResult represents a result_cache row. Payload is the backend JSON.
type CachedResult struct {
	Key       string
	Mode      string
	Query     string
	Payload   []byte
	CreatedAt time.Time
}

// WatchItem represents a watchlist row.
type WatchItem struct {
	ID        string
	Symbol    string
	Mode      string
	SortOrder int
}
