package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"worktimer/internal/config"
	"worktimer/internal/logging"
)

// Scheduler runs maintenance jobs on cron specs
type Scheduler struct {
	cron       *cron.Cron
	log        *slog.Logger
	jobTimeout time.Duration
}

// NewScheduler creates a scheduler evaluating specs in loc. Each run gets
// its own context bounded by jobTimeout.
func NewScheduler(loc *time.Location, jobTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		log:        logging.OrDiscard(logger),
		jobTimeout: jobTimeout,
	}
}

// Schedule registers job under a standard five-field spec or a descriptor
// such as @hourly. An empty spec leaves the job disabled.
func (s *Scheduler) Schedule(name, spec string, job func(ctx context.Context) error) (bool, error) {
	if spec == "" {
		s.log.Debug("scheduled job disabled", slog.String("job", name))
		return false, nil
	}

	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return false, fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.log.Info("scheduled job", slog.String("job", name), slog.String("spec", spec))
	return true, nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	started := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("scheduled job failed", slog.String("job", name), slog.Any("error", err))
		return
	}
	s.log.Debug("scheduled job finished", slog.String("job", name), slog.Duration("took", time.Since(started)))
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// BackfillAllUsers fills missing cached durations for every user and
// returns the total number of rows updated.
func BackfillAllUsers(ctx context.Context, accounts AccountService, timeService TimeService) (int, error) {
	userIDs, err := accounts.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, userID := range userIDs {
		updated, err := timeService.BackfillDurations(ctx, userID)
		if err != nil {
			return total, err
		}
		total += updated
	}
	return total, nil
}

// ScheduleMaintenance registers the backfill and session purge jobs whose
// specs are configured.
func ScheduleMaintenance(s *Scheduler, cfg config.SchedulerConfig, services *ServiceContainer) error {
	_, err := s.Schedule("backfill", cfg.BackfillSpec, func(ctx context.Context) error {
		updated, err := BackfillAllUsers(ctx, services.AccountService, services.TimeService)
		if updated > 0 {
			s.log.Info("backfilled durations", slog.Int("updated", updated))
		}
		return err
	})
	if err != nil {
		return err
	}

	_, err = s.Schedule("session-purge", cfg.SessionPurgeSpec, func(ctx context.Context) error {
		_, err := services.AccountService.PurgeExpiredSessions(ctx)
		return err
	})
	return err
}
