package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/horaculo/internal/database"
	"github.com/jask/horaculo/internal/database/repository"
	"github.com/jask/horaculo/internal/session"
)

var _ session.Recorder = (*HistoryService)(nil)

// maxSuggestDistance is the largest edit distance still offered as "did you mean".
const maxSuggestDistance = 2

// HistoryService records searches and derives suggestions from them.
type HistoryService struct {
	Searches  *repository.SearchRepo
	Watchlist *repository.WatchlistRepo
}

// RecordStart implements session.Recorder.
func (s *HistoryService) RecordStart(ctx context.Context, searchID string, req session.SearchRequest) error {
	return s.Searches.Insert(ctx, repository.SearchRecord{
		ID:        searchID,
		Query:     req.Query,
		Mode:      string(req.Mode),
		Status:    repository.StatusRunning,
		StartedAt: database.Now(),
	})
}

// RecordFinish implements session.Recorder.
func (s *HistoryService) RecordFinish(ctx context.Context, searchID, status string, cause error) error {
	var errText *string
	if cause != nil {
		msg := cause.Error()
		errText = &msg
	}
	if err := s.Searches.Finish(ctx, searchID, status, errText, database.Now()); err != nil {
		return fmt.Errorf("finish search %s: %w", searchID, err)
	}
	return nil
}

// Recent returns the newest searches first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]repository.SearchRecord, error) {
	return s.Searches.Recent(ctx, limit)
}

// Suggest returns known symbols and past queries close to query for mode,
// nearest first. Exact matches (ignoring case) are not suggested.
func (s *HistoryService) Suggest(ctx context.Context, query string, mode session.Mode) ([]string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var candidates []string
	if s.Watchlist != nil {
		items, err := s.Watchlist.List(ctx, string(mode))
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			candidates = append(candidates, it.Symbol)
		}
	}
	if s.Searches != nil {
		past, err := s.Searches.Queries(ctx, string(mode), 50)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, past...)
	}

	type scored struct {
		text string
		dist int
		rank int
	}
	seen := map[string]struct{}{}
	var hits []scored
	for i, c := range candidates {
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok || key == q {
			seen[key] = struct{}{}
			continue
		}
		seen[key] = struct{}{}
		if d := levenshtein.ComputeDistance(q, key); d <= maxSuggestDistance {
			hits = append(hits, scored{text: c, dist: d, rank: i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].rank < hits[j].rank
	})
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.text)
	}
	return out, nil
}
