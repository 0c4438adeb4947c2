package services

import (
	"context"
	"log/slog"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	repo               sqlite.Repository
	mapper             *domain.Mapper
	timeEntryValidator *validation.TimeEntryValidator
	clock              Clock
	log                *slog.Logger
}

// NewTimeService creates a new TimeService instance
func NewTimeService(repo sqlite.Repository, validator *validation.Validator, clock Clock, logger *slog.Logger) TimeService {
	if clock == nil {
		clock = SystemClock
	}
	return &timeServiceImpl{
		repo:               repo,
		mapper:             domain.NewMapper(),
		timeEntryValidator: validation.NewTimeEntryValidator(validator),
		clock:              clock,
		log:                logging.OrDiscard(logger),
	}
}

// LiveDurationMs returns the entry's elapsed milliseconds right now
func (t *timeServiceImpl) LiveDurationMs(entry domain.TimeEntry) int64 {
	return entry.ElapsedMs(t.clock())
}

// FormatDuration formats milliseconds as H:MM:SS
func (t *timeServiceImpl) FormatDuration(ms int64) string {
	return domain.FormatDuration(ms)
}

// BackfillDurations fills the cached duration of every closed entry of the
// user that lacks one and returns how many rows it wrote. A second run
// finds nothing to do.
func (t *timeServiceImpl) BackfillDurations(ctx context.Context, userID int64) (int, error) {
	return backfill(ctx, t.repo, userID, t.log)
}

func backfill(ctx context.Context, repo sqlite.Repository, userID int64, log *slog.Logger) (int, error) {
	missing, err := repo.ListEntriesMissingDuration(ctx, userID)
	if err != nil {
		return 0, err
	}

	mapper := domain.NewMapper()
	for _, row := range missing {
		entry := mapper.TimeEntry.FromDatabase(*row).WithComputedDuration()
		if err := repo.SetTimeEntryDuration(ctx, entry.ID, *entry.Duration); err != nil {
			return 0, err
		}
	}

	if len(missing) > 0 {
		log.Debug("backfilled time entry durations", slog.Int64("user_id", userID), slog.Int("updated", len(missing)))
	}
	return len(missing), nil
}

// StartNewEntry closes every running entry of the user and creates the new
// one. Closing and creating share one transaction, so no reader ever sees
// two running entries.
func (t *timeServiceImpl) StartNewEntry(ctx context.Context, userID int64, attrs domain.EntryAttrs) (*domain.TimeEntry, error) {
	// 1. Validate input
	if err := t.timeEntryValidator.ValidateAttrs(attrs); err != nil {
		return nil, err
	}

	// 2. The project must belong to the user
	if _, err := t.repo.GetProject(ctx, userID, attrs.ProjectID); err != nil {
		return nil, err
	}

	// 3. Make sure existing closed entries carry their duration
	if _, err := t.BackfillDurations(ctx, userID); err != nil {
		return nil, err
	}

	// 4. Close running entries and create the new one atomically
	now := t.clock()
	var created domain.TimeEntry
	err := t.repo.WithinTransaction(ctx, func(tx sqlite.Repository) error {
		if _, err := closeRunningEntries(ctx, tx, userID, now); err != nil {
			return err
		}

		entry := domain.NewTimeEntry(userID, attrs.ProjectID, attrs.Description, attrs.StartTime)
		entry.EndTime = attrs.EndTime
		entry = entry.WithComputedDuration()

		dbEntry := t.mapper.TimeEntry.ToDatabase(entry)
		if err := tx.CreateTimeEntry(ctx, &dbEntry); err != nil {
			return err
		}
		created = t.mapper.TimeEntry.FromDatabase(dbEntry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// closeRunningEntries stops every running entry of the user at now. An
// entry that starts after now is closed at its own start.
func closeRunningEntries(ctx context.Context, repo sqlite.Repository, userID int64, now time.Time) (int, error) {
	mapper := domain.NewMapper()
	open, err := repo.SearchTimeEntries(ctx, sqlite.SearchOptions{UserID: userID, OpenOnly: true})
	if err != nil {
		return 0, err
	}

	for _, row := range open {
		stopped := mapper.TimeEntry.FromDatabase(*row).Stop(now)
		dbEntry := mapper.TimeEntry.ToDatabase(stopped)
		if err := repo.UpdateTimeEntry(ctx, &dbEntry); err != nil {
			return 0, err
		}
	}
	return len(open), nil
}

// StopEntry closes one running entry at now
func (t *timeServiceImpl) StopEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error) {
	entry, err := t.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.IsRunning() {
		return nil, errors.NewValidationError("time entry is already stopped", nil).
			WithContext("id", entryID)
	}

	stopped := entry.Stop(t.clock())
	dbEntry := t.mapper.TimeEntry.ToDatabase(stopped)
	if err := t.repo.UpdateTimeEntry(ctx, &dbEntry); err != nil {
		return nil, err
	}

	result := t.mapper.TimeEntry.FromDatabase(dbEntry)
	result.Project = entry.Project
	return &result, nil
}

// GetEntry returns one of the user's entries with its project
func (t *timeServiceImpl) GetEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error) {
	row, err := t.repo.GetTimeEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	entry := t.mapper.TimeEntry.FromDatabase(*row)
	return &entry, nil
}

// GetRunningEntry returns the user's running entry, or nil when none runs
func (t *timeServiceImpl) GetRunningEntry(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	rows, err := t.repo.SearchTimeEntries(ctx, sqlite.SearchOptions{
		UserID:      userID,
		OpenOnly:    true,
		Descending:  true,
		Limit:       1,
		WithProject: true,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	entry := t.mapper.TimeEntry.FromDatabase(*rows[0])
	return &entry, nil
}

// UpdateEntry replaces the editable fields of an entry and recomputes its
// cached duration. Reopening an entry (nil end) is subject to the same
// single-active rule as starting one.
func (t *timeServiceImpl) UpdateEntry(ctx context.Context, userID, entryID int64, attrs domain.EntryAttrs) (*domain.TimeEntry, error) {
	// 1. Validate input
	if err := t.timeEntryValidator.ValidateAttrs(attrs); err != nil {
		return nil, err
	}

	// 2. Entry and target project must belong to the user
	existing, err := t.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	project, err := t.repo.GetProject(ctx, userID, attrs.ProjectID)
	if err != nil {
		return nil, err
	}

	// 3. Apply and persist
	updated := *existing
	updated.Description = attrs.Description
	updated.ProjectID = attrs.ProjectID
	updated.StartTime = attrs.StartTime
	updated.EndTime = attrs.EndTime
	updated = updated.WithComputedDuration()

	now := t.clock()
	err = t.repo.WithinTransaction(ctx, func(tx sqlite.Repository) error {
		if updated.IsRunning() && !existing.IsRunning() {
			if _, err := closeRunningEntries(ctx, tx, userID, now); err != nil {
				return err
			}
		}
		dbEntry := t.mapper.TimeEntry.ToDatabase(updated)
		if err := tx.UpdateTimeEntry(ctx, &dbEntry); err != nil {
			return err
		}
		updated = t.mapper.TimeEntry.FromDatabase(dbEntry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	p := t.mapper.Project.FromDatabase(*project)
	updated.Project = &p
	return &updated, nil
}

// DeleteEntry removes one of the user's entries
func (t *timeServiceImpl) DeleteEntry(ctx context.Context, userID, entryID int64) error {
	return t.repo.DeleteTimeEntry(ctx, userID, entryID)
}
