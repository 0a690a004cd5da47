package main

import (
	"fmt"
	"log/slog"
	"os"

	"marginbook/internal/config"
	"marginbook/internal/jsonfile"
	"marginbook/internal/repository"
	"marginbook/internal/sqlite"
)

// app bundles the pieces every command needs.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	repo   repository.DocumentStore
}

// newApp loads configuration, builds the logger and opens the
// configured storage backend. Writing commands back up the live
// document first, once per launch.
func newApp(backup bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare storage dir: %w", err)
	}

	repo, err := openDocumentStore(cfg, logger, backup)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, repo: repo}, nil
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Error("close storage", "error", err)
	}
}

func openDocumentStore(cfg config.Config, logger *slog.Logger, backup bool) (repository.DocumentStore, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		store, err := sqlite.NewStore(db)
		if err != nil {
			return nil, fmt.Errorf("prepare database: %w", err)
		}
		return store, nil
	default:
		store := jsonfile.New(cfg.DocumentPath())
		if backup {
			name, err := store.Backup(cfg.BackupsDir())
			if err != nil {
				// the live document stays usable without a backup
				logger.Warn("document backup failed", "error", err)
			} else if name != "" {
				logger.Info("document backed up", "file", name)
			}
		}
		return store, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
