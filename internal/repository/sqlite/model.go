package sqlite

import (
	"time"

	"gorm.io/gorm"
)

// User is an account row. Email is unique across the installation.
type User struct {
	ID                int64 `gorm:"primaryKey"`
	Email             string
	PasswordHash      string
	Admin             bool
	DefaultHourlyRate *float64
	Currency          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Session maps an opaque cookie token to a user until ExpiresAt.
type Session struct {
	ID        string `gorm:"primaryKey"`
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Setting is an installation-wide key/value pair. Value holds the encoded form.
type Setting struct {
	ID        string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// Project groups time entries; (UserID, Name) is unique.
type Project struct {
	ID          int64 `gorm:"primaryKey"`
	UserID      int64
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeEntry is one interval of work. EndTime nil means the entry is running.
// Duration caches EndTime-StartTime in milliseconds and is nil while running
// or for rows written before the column existed.
type TimeEntry struct {
	ID          int64 `gorm:"primaryKey"`
	UserID      int64
	ProjectID   int64
	Project     *Project `gorm:"foreignKey:ProjectID"`
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectDuration is one row of the per-project group-by-sum.
type ProjectDuration struct {
	ProjectID     int64
	TotalDuration int64
}

// The driver hands DATETIME columns back in whatever zone the text carried;
// rows leave the repository in UTC.

func (u *User) AfterFind(*gorm.DB) error {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return nil
}

func (s *Session) AfterFind(*gorm.DB) error {
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return nil
}

func (p *Project) AfterFind(*gorm.DB) error {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return nil
}

func (e *TimeEntry) AfterFind(*gorm.DB) error {
	e.StartTime = e.StartTime.UTC()
	e.EndTime = utcPtr(e.EndTime)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return nil
}
