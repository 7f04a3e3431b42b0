package priceconfig

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/shadequote/internal/pricing"
)

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists the price configuration in the price_options key/value table.
// price_config_meta holds a single row once any configuration has been saved,
// so a saved configuration with no options is told apart from an unconfigured store.
// Nothing is cached: every read goes to the database.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the stored configuration, or Default when nothing has been saved yet.
func (s *Store) Load(ctx context.Context) (Config, error) {
	cfg, found, err := s.read(ctx)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Default(), nil
	}
	return cfg, nil
}

// Save validates cfg and replaces the stored configuration atomically.
func (s *Store) Save(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin price config transaction: %w", err)
	}
	if _, err := Replace(ctx, tx, cfg); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit price config: %w", err)
	}
	return nil
}

// PricingSnapshot implements pricing.ConfigProvider. It returns nil when nothing is stored.
func (s *Store) PricingSnapshot(ctx context.Context) (*pricing.Snapshot, error) {
	cfg, found, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	snap := cfg.Snapshot()
	return &snap, nil
}

// Options returns the option names of the current configuration.
func (s *Store) Options(ctx context.Context) (Options, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return Options{}, err
	}
	return cfg.Options(), nil
}

// Saved reports whether a configuration has ever been written through Replace.
func Saved(ctx context.Context, q rowQuerier) (bool, error) {
	var saved bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM price_config_meta WHERE id = 1)`).Scan(&saved); err != nil {
		return false, fmt.Errorf("check saved price config: %w", err)
	}
	return saved, nil
}

// Replace rewrites every row of the configuration inside tx, marks the
// configuration as saved and reports how many option rows were written.
func Replace(ctx context.Context, tx *sql.Tx, cfg Config) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM price_options`); err != nil {
		return 0, fmt.Errorf("clear price options: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO price_config_meta (id, saved_at) VALUES (1, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at
	`); err != nil {
		return 0, fmt.Errorf("mark price config saved: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_options (section, name, price, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare price option insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, section := range Sections {
		for position, entry := range *cfg.section(section) {
			if _, err := stmt.ExecContext(ctx, section, entry.Name, entry.Price, position); err != nil {
				return written, fmt.Errorf("insert price option %s/%s: %w", section, entry.Name, err)
			}
			written++
		}
	}
	return written, nil
}

// read loads all rows. found is false until a configuration has been saved.
func (s *Store) read(ctx context.Context) (cfg Config, found bool, err error) {
	found, err = Saved(ctx, s.db)
	if err != nil {
		return Config{}, false, err
	}
	if !found {
		return Config{}, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT section, name, price
		FROM price_options
		ORDER BY section, position, name
	`)
	if err != nil {
		return Config{}, false, fmt.Errorf("query price options: %w", err)
	}
	defer rows.Close()

	// A saved configuration always has every section, even when some are empty objects.
	for _, section := range Sections {
		*cfg.section(section) = Table{}
	}

	for rows.Next() {
		var section string
		var entry Entry
		if err := rows.Scan(&section, &entry.Name, &entry.Price); err != nil {
			return Config{}, false, fmt.Errorf("scan price option: %w", err)
		}
		table := cfg.section(section)
		if table == nil {
			continue
		}
		*table = append(*table, entry)
	}
	if err := rows.Err(); err != nil {
		return Config{}, false, fmt.Errorf("iterate price options: %w", err)
	}

	return cfg, found, nil
}
