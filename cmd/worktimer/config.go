package main

import (
	"fmt"
	"log/slog"
	"os"

	"worktimer/internal/config"
	"worktimer/internal/repository/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// RepositoryFactory creates repository instances based on environment
type RepositoryFactory struct {
	env Environment
}

// NewRepositoryFactory creates a new repository factory for the given environment
func NewRepositoryFactory(env Environment) *RepositoryFactory {
	return &RepositoryFactory{env: env}
}

// CreateRepository creates a repository instance based on the current environment
func (rf *RepositoryFactory) CreateRepository(cfg *config.Config, logger *slog.Logger) (sqlite.Repository, error) {
	switch rf.env {
	case Development:
		// Local database in the working directory
		local := *cfg
		local.Database.Dir = "."
		local.Database.Filename = "worktimer.db"
		return config.CreateRepository(&local, logger)
	case Testing:
		repo, err := config.CreateTestRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize testing database: %w", err)
		}
		return repo, nil
	default:
		return config.CreateRepository(cfg, logger)
	}
}

// getEnvironment determines the current environment from WT_ENV
func getEnvironment() Environment {
	switch os.Getenv("WT_ENV") {
	case "development":
		return Development
	case "testing":
		return Testing
	default:
		// Default to production for safety
		return Production
	}
}
