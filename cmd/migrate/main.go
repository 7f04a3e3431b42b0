package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Simplici0/shadequote/internal/config"
	"github.com/Simplici0/shadequote/internal/db"
	"github.com/Simplici0/shadequote/internal/logger"
	"github.com/Simplici0/shadequote/internal/migrations"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.AppEnv,
		"cmd": *cmd,
		"db":  cfg.DBPath,
	})

	database, err := db.Open(ctx, cfg.DBPath)
	requireResource(ctx, logg, "database", err)
	defer database.Close()

	switch *cmd {
	case "up", "down", "status", "version", "redo":
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}

	logg.Info(ctx, "migrate ready")
	if err := migrations.Run(ctx, database, *cmd, flag.Args()...); err != nil {
		fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
		os.Exit(1)
	}

	version, err := migrations.Version(database)
	requireResource(ctx, logg, "migration version", err)
	logg.Info(logg.WithField(ctx, "version", version), "migrate complete")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
