package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"worktimer/internal/api"
	"worktimer/internal/config"
	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/services"
	"worktimer/internal/validation"
)

// App holds what every command shares once configuration is final
type App struct {
	config   *config.Config
	repo     sqlite.Repository
	services *services.ServiceContainer
	api      api.API
	business api.BusinessAPI
	log      *slog.Logger
	out      io.Writer
	errs     *ErrorHandler
}

// NewApp wires services and APIs over repo. opts.Config and opts.Logger are
// replaced by cfg and logger.
func NewApp(cfg *config.Config, repo sqlite.Repository, logger *slog.Logger, opts services.Options, out io.Writer) *App {
	opts.Config = cfg
	opts.Logger = logger

	container := services.NewServiceContainer(repo, opts)
	validator := validation.NewValidatorWithConfig(cfg)

	return &App{
		config:   cfg,
		repo:     repo,
		services: container,
		api:      api.New(container, validator),
		business: api.NewBusinessAPI(container, validator),
		log:      logger,
		out:      out,
		errs:     NewErrorHandler(),
	}
}

// resolveUser finds the account named by --user
func (a *App) resolveUser(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.NewInvalidInputError("user", email, "--user is required")
	}
	return a.services.AccountService.GetUserByEmail(ctx, email)
}

// Close releases the repository
func (a *App) Close() error {
	return a.repo.Close()
}
