package services

import (
	"log/slog"

	"worktimer/internal/config"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// Options carries the shared collaborators of every service. Zero values
// fall back to defaults: built-in config, the system clock, a discarding
// logger and bcrypt at its default cost.
type Options struct {
	Config *config.Config
	Clock  Clock
	Logger *slog.Logger
	Hasher PasswordHasher
}

func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = config.NewConfig()
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	o.Logger = logging.OrDiscard(o.Logger)
	if o.Hasher == nil {
		o.Hasher = NewBcryptHasher(0)
	}
	return o
}

// NewServiceContainer wires every service over one repository
func NewServiceContainer(repo sqlite.Repository, opts Options) *ServiceContainer {
	opts = opts.withDefaults()
	validator := validation.NewValidatorWithConfig(opts.Config)

	timeService := NewTimeService(repo, validator, opts.Clock, opts.Logger)
	projectService := NewProjectService(repo, validator)

	return &ServiceContainer{
		TimeService:      timeService,
		ProjectService:   projectService,
		SearchService:    NewSearchService(repo, opts.Clock, opts.Config.Location()),
		ReportingService: NewReportingService(repo, timeService, validator, opts),
		TransferService:  NewTransferService(repo, validator, opts.Clock, opts.Logger),
		AccountService:   NewAccountService(repo, validator, opts),
	}
}
