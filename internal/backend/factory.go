// Package backend selects the entry store implementation from
// configuration. Both the server and the dispatch worker open their store
// through it so the selection logic lives in one place.
package backend

import (
	"fmt"
	"log/slog"

	"chitieu/internal/config"
	"chitieu/internal/memory"
	"chitieu/internal/services"
	"chitieu/internal/storage"
)

// CleanupFunc releases the store's resources.
type CleanupFunc func() error

// NewStore opens the configured entry store. The returned cleanup must be
// called on shutdown.
func NewStore(cfg *config.Config) (services.EntryStore, CleanupFunc, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		slog.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, repo.Close, nil
	case "memory":
		store := memory.NewFromFile(cfg.MemoryStorePath)
		slog.Info("Initialized memory backend", "path", cfg.MemoryStorePath)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
