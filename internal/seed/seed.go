package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/shadequote/internal/priceconfig"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
// The shipped price configuration is written only until a configuration has been
// saved, so an administrator's configuration is never overwritten, even an empty one.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensurePriceOptions(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePriceOptions(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	saved, err := priceconfig.Saved(ctx, tx)
	if err != nil {
		return err
	}
	if saved {
		return nil
	}

	inserted, err := priceconfig.Replace(ctx, tx, priceconfig.Default())
	if err != nil {
		return fmt.Errorf("seed default price options: %w", err)
	}
	stats.Inserts += inserted
	return nil
}
