package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/horaculo/internal/database"
	"github.com/jask/horaculo/internal/database/repository"
	"github.com/jask/horaculo/internal/session"
)

func setup(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	db, err := database.Setup(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))
	return db, ctx
}

func newHistory(db *sql.DB) *HistoryService {
	return &HistoryService{
		Searches:  repository.NewSearchRepo(db),
		Watchlist: repository.NewWatchlistRepo(db),
	}
}

func TestHistoryRecordsLifecycle(t *testing.T) {
	db, ctx := setup(t)
	h := newHistory(db)

	req := session.SearchRequest{Query: "Oil", Mode: session.ModeMacro}
	require.NoError(t, h.RecordStart(ctx, "s1", req))
	rec, err := h.Searches.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, repository.StatusRunning, rec.Status)
	require.Nil(t, rec.FinishedAt)

	cause := &session.FetchError{Mode: session.ModeMacro, Err: errors.New("timeout")}
	require.NoError(t, h.RecordFinish(ctx, "s1", session.StatusFailed, cause))
	rec, err = h.Searches.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, session.StatusFailed, rec.Status)
	require.NotNil(t, rec.Error)
	require.Contains(t, *rec.Error, "timeout")
	require.NotNil(t, rec.FinishedAt)

	recent, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestHistoryAsControllerRecorder(t *testing.T) {
	db, ctx := setup(t)
	h := newHistory(db)

	fetch := fetcherFunc(func(context.Context, string, session.Mode) (session.ResultPayload, error) {
		return session.ResultPayload{}, nil
	})
	c := session.NewController(fetch,
		session.WithRecorder(h),
		session.WithIDs(func() string { return "fixed" }),
		session.WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
	defer c.Close()

	require.NoError(t, c.InitiateSearch(ctx, session.SearchRequest{Query: "BTC", Mode: session.ModeCrypto}))
	rec, err := h.Searches.Get(ctx, "fixed")
	require.NoError(t, err)
	require.Equal(t, session.StatusSuccess, rec.Status)
	require.Equal(t, "CRYPTO", rec.Mode)
	require.Nil(t, rec.Error)
}

type fetcherFunc func(context.Context, string, session.Mode) (session.ResultPayload, error)

func (f fetcherFunc) FetchAnalysis(ctx context.Context, q string, m session.Mode) (session.ResultPayload, error) {
	return f(ctx, q, m)
}

func TestSuggest(t *testing.T) {
	db, ctx := setup(t)
	h := newHistory(db)

	got, err := h.Suggest(ctx, "Oill", session.ModeMacro)
	require.NoError(t, err)
	require.Equal(t, []string{"Oil"}, got)

	got, err = h.Suggest(ctx, "oil", session.ModeMacro)
	require.NoError(t, err)
	require.Empty(t, got)

	// symbols of the other mode are not offered
	got, err = h.Suggest(ctx, "BTX", session.ModeMacro)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = h.Suggest(ctx, "BTX", session.ModeCrypto)
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "ETH"}, got)

	require.NoError(t, h.RecordStart(ctx, "s1", session.SearchRequest{Query: "Copper", Mode: session.ModeMacro}))
	got, err = h.Suggest(ctx, "coper", session.ModeMacro)
	require.NoError(t, err)
	require.Equal(t, []string{"Copper"}, got)

	got, err = h.Suggest(ctx, "   ", session.ModeMacro)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMaintenanceReset(t *testing.T) {
	db, ctx := setup(t)
	h := newHistory(db)
	require.NoError(t, h.RecordStart(ctx, "s1", session.SearchRequest{Query: "Gold", Mode: session.ModeMacro}))
	require.NoError(t, repository.NewCacheRepo(db).Put(ctx, repository.CachedResult{
		Key: "k", Mode: "MACRO", Query: "gold", Payload: []byte(`{}`), CreatedAt: database.Now(),
	}))

	m := &MaintenanceService{DB: db}
	require.NoError(t, m.Reset(ctx))

	for _, table := range []string{"searches", "result_cache"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}
	var watch int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM watchlist").Scan(&watch))
	require.Equal(t, 6, watch)

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}

func TestMaintenancePurgeCache(t *testing.T) {
	db, ctx := setup(t)
	cache := repository.NewCacheRepo(db)
	now := database.Now()
	require.NoError(t, cache.Put(ctx, repository.CachedResult{Key: "old", Mode: "MACRO", Query: "oil", Payload: []byte(`{}`), CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, cache.Put(ctx, repository.CachedResult{Key: "new", Mode: "MACRO", Query: "gold", Payload: []byte(`{}`), CreatedAt: now}))

	m := &MaintenanceService{DB: db}
	n, err := m.PurgeCache(ctx, 10*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := cache.Get(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, got)

	n, err = m.PurgeCache(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, n)
}
