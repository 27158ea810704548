package repository

import (
	"context"
	"database/sql"
)

// WatchlistRepo handles the symbols offered as search suggestions.
type WatchlistRepo struct {
	db *sql.DB
}

func NewWatchlistRepo(db *sql.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

func (r *WatchlistRepo) Upsert(ctx context.Context, w WatchItem) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO watchlist(id, symbol, mode, sort_order) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 symbol=excluded.symbol,
	 mode=excluded.mode,
	 sort_order=excluded.sort_order;
	`, w.ID, w.Symbol, w.Mode, w.SortOrder)
	return err
}

// List returns the watchlist for mode, or every entry when mode is empty.
func (r *WatchlistRepo) List(ctx context.Context, mode string) ([]WatchItem, error) {
	query := `SELECT id, symbol, mode, sort_order FROM watchlist`
	var args []interface{}
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY mode, sort_order, symbol`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WatchItem
	for rows.Next() {
		var w WatchItem
		if err := rows.Scan(&w.ID, &w.Symbol, &w.Mode, &w.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
