package domain

import "time"

// EntryOrder names the column entry listings can be sorted by.
type EntryOrder string

const (
	OrderByStartTime EntryOrder = "startTime"
	OrderByCreatedAt EntryOrder = "createdAt"
	OrderByUpdatedAt EntryOrder = "updatedAt"
)

// SearchOptions represents search criteria for a user's time entries.
type SearchOptions struct {
	UserID      int64
	ProjectID   *int64
	StartFrom   *time.Time
	StartTo     *time.Time
	OpenOnly    bool
	OrderBy     EntryOrder
	Descending  bool
	Limit       int
	Offset      int
	WithProject bool
}
