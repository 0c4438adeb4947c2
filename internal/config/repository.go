package config

import (
	"fmt"
	"log/slog"

	"worktimer/internal/repository/sqlite"
)

// CreateRepository opens the configured database and runs pending migrations
func CreateRepository(config *Config, logger *slog.Logger) (sqlite.Repository, error) {
	repo, err := sqlite.Open(sqlite.Options{
		Path:           config.GetDatabasePath(),
		DirPermissions: config.Database.DirPermissions,
		Verbose:        config.Application.Verbose,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}
