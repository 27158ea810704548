package repository

import (
	"context"
	"database/sql"
	"time"
)

// CacheRepo handles cached analysis payloads.
type CacheRepo struct {
	db *sql.DB
}

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{db: db} }

// Get returns nil when the key is not cached.
func (r *CacheRepo) Get(ctx context.Context, key string) (*CachedResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT cache_key, mode, query, payload, created_at FROM result_cache WHERE cache_key = ?`, key)
	var c CachedResult
	var payload string
	if err := row.Scan(&c.Key, &c.Mode, &c.Query, &payload, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.Payload = []byte(payload)
	return &c, nil
}

func (r *CacheRepo) Put(ctx context.Context, c CachedResult) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO result_cache(cache_key, mode, query, payload, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
	 mode=excluded.mode,
	 query=excluded.query,
	 payload=excluded.payload,
	 created_at=excluded.created_at;
	`, c.Key, c.Mode, c.Query, string(c.Payload), c.CreatedAt)
	return err
}

// PurgeOlderThan drops entries created before cutoff.
func (r *CacheRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM result_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
