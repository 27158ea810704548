package repository

import (
	"context"
	"database/sql"
	"time"
)

// SearchRepo handles search history.
type SearchRepo struct {
	db *sql.DB
}

func NewSearchRepo(db *sql.DB) *SearchRepo { return &SearchRepo{db: db} }

func (r *SearchRepo) Insert(ctx context.Context, s SearchRecord) error {
	if s.Status == "" {
		s.Status = StatusRunning
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO searches(id, query, mode, status, error, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, s.ID, s.Query, s.Mode, s.Status, s.Error, s.StartedAt, s.FinishedAt)
	return err
}

// Finish closes a search with its final status.
func (r *SearchRepo) Finish(ctx context.Context, id, status string, errText *string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE searches SET status = ?, error = ?, finished_at = ? WHERE id = ?`, status, errText, at, id)
	return err
}

func (r *SearchRepo) Get(ctx context.Context, id string) (*SearchRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, query, mode, status, error, started_at, finished_at FROM searches WHERE id = ?`, id)
	var s SearchRecord
	if err := row.Scan(&s.ID, &s.Query, &s.Mode, &s.Status, &s.Error, &s.StartedAt, &s.FinishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Recent lists the newest searches first.
func (r *SearchRepo) Recent(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, query, mode, status, error, started_at, finished_at
	FROM searches ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SearchRecord
	for rows.Next() {
		var s SearchRecord
		if err := rows.Scan(&s.ID, &s.Query, &s.Mode, &s.Status, &s.Error, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Queries returns distinct past queries for a mode, most recent first.
func (r *SearchRepo) Queries(ctx context.Context, mode string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT query FROM searches WHERE mode = ?
	GROUP BY query COLLATE NOCASE ORDER BY MAX(started_at) DESC LIMIT ?`, mode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
