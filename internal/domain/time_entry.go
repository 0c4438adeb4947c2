package domain

import (
	"time"
)

// TimeEntry represents one interval of work owned by a user and a project.
// Duration caches EndTime-StartTime in milliseconds once the entry is closed.
type TimeEntry struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	ProjectID   int64      `json:"projectId"`
	Project     *Project   `json:"project,omitempty"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int64     `json:"duration"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTimeEntry creates an open entry.
func NewTimeEntry(userID, projectID int64, description string, startTime time.Time) TimeEntry {
	return TimeEntry{
		UserID:      userID,
		ProjectID:   projectID,
		Description: description,
		StartTime:   startTime,
	}
}

// IsRunning returns true if the time entry has no end time.
func (te TimeEntry) IsRunning() bool {
	return te.EndTime == nil
}

// Stop closes the entry at endTime and caches its duration. An end before
// the start is moved up to the start so the cached duration is never negative.
func (te TimeEntry) Stop(endTime time.Time) TimeEntry {
	if endTime.Before(te.StartTime) {
		endTime = te.StartTime
	}
	te.EndTime = &endTime
	return te.WithComputedDuration()
}

// WithComputedDuration truncates the bounds to the stored millisecond
// precision and refreshes the cached duration from them. Running entries get
// a nil cache.
func (te TimeEntry) WithComputedDuration() TimeEntry {
	te.StartTime = te.StartTime.Truncate(time.Millisecond)
	if te.EndTime != nil {
		end := te.EndTime.Truncate(time.Millisecond)
		te.EndTime = &end
	}
	if te.EndTime == nil {
		te.Duration = nil
		return te
	}
	ms := te.EndTime.Sub(te.StartTime).Milliseconds()
	te.Duration = &ms
	return te
}

// ElapsedMs returns the entry's duration at now; running entries are measured live.
func (te TimeEntry) ElapsedMs(now time.Time) int64 {
	return ElapsedMs(te.StartTime, te.EndTime, now)
}

// NeedsBackfill reports a closed entry without a cached duration.
func (te TimeEntry) NeedsBackfill() bool {
	return te.EndTime != nil && te.Duration == nil
}

// ProjectName returns the loaded project's name, or "" when not loaded.
func (te TimeEntry) ProjectName() string {
	if te.Project == nil {
		return ""
	}
	return te.Project.Name
}

// EntryAttrs are the caller-supplied fields of a new or edited time entry.
type EntryAttrs struct {
	Description string
	ProjectID   int64
	StartTime   time.Time
	EndTime     *time.Time
}
