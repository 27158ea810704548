package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/horaculo/internal/database/repository"
)

// DefaultWatchlist mirrors the portal's example queries per mode.
var DefaultWatchlist = map[string][]string{
	"MACRO":  {"Oil", "Gold", "FED"},
	"CRYPTO": {"SOL", "BTC", "ETH"},
}

// SeedDefaults ensures the baseline watchlist exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewWatchlistRepo(db)
	existing, err := repo.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, mode := range []string{"MACRO", "CRYPTO"} {
		for idx, symbol := range DefaultWatchlist[mode] {
			id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("watch:"+mode+":"+symbol)).String()
			item := repository.WatchItem{ID: id, Symbol: symbol, Mode: mode, SortOrder: idx}
			if err := repo.Upsert(ctx, item); err != nil {
				return fmt.Errorf("seed %s: %w", symbol, err)
			}
		}
	}
	return nil
}
