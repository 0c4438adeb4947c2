package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"
)

var orderColumns = map[string]string{
	"":           "start_time",
	"start_time": "start_time",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CreateTimeEntry inserts a time entry and fills in its ID
func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	entry.StartTime = StorageTime(entry.StartTime)
	entry.EndTime = StorageTimePtr(entry.EndTime)
	if err := r.db.WithContext(ctx).Omit("Project").Create(entry).Error; err != nil {
		return HandleDatabaseError("create time entry", err)
	}
	return nil
}

// GetTimeEntry retrieves a time entry owned by userID, with its project
func (r *SQLiteRepository) GetTimeEntry(ctx context.Context, userID, id int64) (*TimeEntry, error) {
	var entry TimeEntry
	err := r.db.WithContext(ctx).Preload("Project").
		Where("user_id = ? AND id = ?", userID, id).First(&entry).Error
	if err != nil {
		return nil, HandleLookupError(err, "time entry", idString(id))
	}
	return &entry, nil
}

// SearchTimeEntries returns the user's entries matching opts
func (r *SQLiteRepository) SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error) {
	query := r.filtered(ctx, opts)

	column, ok := orderColumns[opts.OrderBy]
	if !ok {
		column = "start_time"
	}
	direction := " ASC"
	if opts.Descending {
		direction = " DESC"
	}
	query = query.Order(column + direction).Order("id" + direction)

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	if opts.WithProject {
		query = query.Preload("Project")
	}

	var entries []*TimeEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, HandleDatabaseError("search time entries", err)
	}
	return entries, nil
}

// CountTimeEntries counts the user's entries matching opts, ignoring paging
func (r *SQLiteRepository) CountTimeEntries(ctx context.Context, opts SearchOptions) (int64, error) {
	var count int64
	if err := r.filtered(ctx, opts).Count(&count).Error; err != nil {
		return 0, HandleDatabaseError("count time entries", err)
	}
	return count, nil
}

func (r *SQLiteRepository) filtered(ctx context.Context, opts SearchOptions) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&TimeEntry{}).Where("user_id = ?", opts.UserID)
	if opts.ProjectID != nil {
		query = query.Where("project_id = ?", *opts.ProjectID)
	}
	if opts.StartFrom != nil {
		query = query.Where("start_time >= ?", StorageTime(*opts.StartFrom))
	}
	if opts.StartTo != nil {
		query = query.Where("start_time <= ?", StorageTime(*opts.StartTo))
	}
	if opts.OpenOnly {
		query = query.Where("end_time IS NULL")
	}
	return query
}

// UpdateTimeEntry writes every mutable column of an entry owned by entry.UserID
func (r *SQLiteRepository) UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	entry.StartTime = StorageTime(entry.StartTime)
	entry.EndTime = StorageTimePtr(entry.EndTime)
	entry.UpdatedAt = storageNow()

	result := r.db.WithContext(ctx).Model(&TimeEntry{}).
		Where("user_id = ? AND id = ?", entry.UserID, entry.ID).
		Updates(map[string]any{
			"project_id":  entry.ProjectID,
			"description": entry.Description,
			"start_time":  entry.StartTime,
			"end_time":    entry.EndTime,
			"duration":    entry.Duration,
			"updated_at":  entry.UpdatedAt,
		})
	return ValidateRowsAffected(result, "update time entry", "time entry", idString(entry.ID))
}

// DeleteTimeEntry removes an entry owned by userID
func (r *SQLiteRepository) DeleteTimeEntry(ctx context.Context, userID, id int64) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&TimeEntry{})
	return ValidateRowsAffected(result, "delete time entry", "time entry", idString(id))
}

// ListEntriesMissingDuration returns closed entries whose cached duration is empty
func (r *SQLiteRepository) ListEntriesMissingDuration(ctx context.Context, userID int64) ([]*TimeEntry, error) {
	var entries []*TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND end_time IS NOT NULL AND duration IS NULL", userID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, HandleDatabaseError("list entries missing duration", err)
	}
	return entries, nil
}

// SetTimeEntryDuration stores the cached duration of one entry without
// touching updated_at.
func (r *SQLiteRepository) SetTimeEntryDuration(ctx context.Context, id int64, duration int64) error {
	result := r.db.WithContext(ctx).Model(&TimeEntry{}).Where("id = ?", id).UpdateColumn("duration", duration)
	return ValidateRowsAffected(result, "set time entry duration", "time entry", idString(id))
}

// SumDurationByProject totals cached durations per project for entries whose
// start falls inside [from, to]. Entries without a cached duration are left out.
func (r *SQLiteRepository) SumDurationByProject(ctx context.Context, userID int64, from, to time.Time) ([]ProjectDuration, error) {
	var rows []ProjectDuration
	err := r.db.WithContext(ctx).Model(&TimeEntry{}).
		Select("project_id, COALESCE(SUM(duration), 0) AS total_duration").
		Where("user_id = ? AND start_time >= ? AND start_time <= ? AND duration IS NOT NULL",
			userID, StorageTime(from), StorageTime(to)).
		Group("project_id").
		Order("project_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, HandleDatabaseError("sum duration by project", err)
	}
	return rows, nil
}

// SumClosedDuration totals cached durations of entries that started at or
// after startFrom and ended at or before endBefore. Running entries never match.
func (r *SQLiteRepository) SumClosedDuration(ctx context.Context, userID int64, startFrom, endBefore time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&TimeEntry{}).
		Select("COALESCE(SUM(duration), 0)").
		Where("user_id = ? AND start_time >= ? AND end_time <= ?",
			userID, StorageTime(startFrom), StorageTime(endBefore)).
		Row().Scan(&total)
	if err != nil {
		return 0, HandleDatabaseError("sum closed duration", err)
	}
	return total, nil
}
