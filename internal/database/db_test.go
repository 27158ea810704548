package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/horaculo/internal/database/repository"
)

func setupDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Setup(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func TestMigrationsAreRepeatable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "twice.db")
	require.NoError(t, RunMigrations(dbPath))
	require.NoError(t, RunMigrations(dbPath))

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"searches", "result_cache", "watchlist"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db, ctx := setupDB(t)
	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	repo := repository.NewWatchlistRepo(db)
	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 6)

	crypto, err := repo.List(ctx, "CRYPTO")
	require.NoError(t, err)
	require.Equal(t, []string{"SOL", "BTC", "ETH"}, symbols(crypto))
}

func symbols(items []repository.WatchItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Symbol)
	}
	return out
}

func TestSearchRepoLifecycle(t *testing.T) {
	db, ctx := setupDB(t)
	repo := repository.NewSearchRepo(db)

	start := Now().Add(-time.Minute)
	require.NoError(t, repo.Insert(ctx, repository.SearchRecord{ID: "a", Query: "Oil", Mode: "MACRO", StartedAt: start}))
	require.NoError(t, repo.Insert(ctx, repository.SearchRecord{ID: "b", Query: "SOL", Mode: "CRYPTO", StartedAt: start.Add(10 * time.Second)}))
	require.NoError(t, repo.Insert(ctx, repository.SearchRecord{ID: "c", Query: "oil", Mode: "MACRO", StartedAt: start.Add(20 * time.Second)}))

	msg := "backend unreachable"
	require.NoError(t, repo.Finish(ctx, "a", "failed", &msg, start.Add(2*time.Second)))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "failed", got.Status)
	require.Equal(t, msg, *got.Error)
	require.Equal(t, 2*time.Second, got.Duration())

	missing, err := repo.Get(ctx, "zzz")
	require.NoError(t, err)
	require.Nil(t, missing)

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "c", recent[0].ID)
	require.Equal(t, repository.StatusRunning, recent[0].Status)
	require.Zero(t, recent[0].Duration())

	queries, err := repo.Queries(ctx, "MACRO", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"oil"}, queries)
}

func TestCacheRepoPutGetPurge(t *testing.T) {
	db, ctx := setupDB(t)
	repo := repository.NewCacheRepo(db)

	old := Now().Add(-time.Hour)
	require.NoError(t, repo.Put(ctx, repository.CachedResult{Key: "k1", Mode: "MACRO", Query: "oil", Payload: []byte(`{"a":1}`), CreatedAt: old}))
	require.NoError(t, repo.Put(ctx, repository.CachedResult{Key: "k1", Mode: "MACRO", Query: "oil", Payload: []byte(`{"a":2}`), CreatedAt: Now()}))
	require.NoError(t, repo.Put(ctx, repository.CachedResult{Key: "k2", Mode: "CRYPTO", Query: "sol", Payload: []byte(`{}`), CreatedAt: old}))

	got, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2}`, string(got.Payload))

	n, err := repo.PurgeOlderThan(ctx, Now().Add(-time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	gone, err := repo.Get(ctx, "k2")
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestSetupCreatesDataDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "horaculo.db")
	db, err := Setup(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.FileExists(t, dbPath)
}

func TestSeedDefaultsReportsListFailure(t *testing.T) {
	db, ctx := setupDB(t)
	require.NoError(t, db.Close())

	err := SeedDefaults(ctx, db)
	require.Error(t, err)
	require.Contains(t, err.Error(), "list watchlist")
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, ctx := setupDB(t)
	repo := repository.NewSearchRepo(db)

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO searches (id, query, mode, status, started_at) VALUES ('x', 'Oil', 'MACRO', 'running', ?)`, Now()); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	got, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, got)
}
