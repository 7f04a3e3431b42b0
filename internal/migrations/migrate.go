package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

const (
	sqliteDialect = "sqlite3"
	dir           = "sql"
)

//go:embed sql/*.sql
var files embed.FS

func prepare() error {
	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Up runs all pending SQL migrations embedded in the binary.
func Up(ctx context.Context, db *sql.DB) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// Run executes an arbitrary goose command (up, down, status, redo, version, ...).
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Version reports the currently applied migration version.
func Version(db *sql.DB) (int64, error) {
	if err := prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}
