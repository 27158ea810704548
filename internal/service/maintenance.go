package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/horaculo/internal/database"
	"github.com/jask/horaculo/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes search history and cached results. The watchlist and schema stay.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"result_cache", "searches"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// PurgeCache drops cached results older than ttl and reports how many went.
func (s *MaintenanceService) PurgeCache(ctx context.Context, ttl time.Duration) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	if ttl <= 0 {
		return 0, nil
	}
	return repository.NewCacheRepo(s.DB).PurgeOlderThan(ctx, database.Now().Add(-ttl))
}
