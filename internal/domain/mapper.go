package domain

import (
	"worktimer/internal/repository/sqlite"
)

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(u User) sqlite.User {
	return sqlite.User{
		ID:                u.ID,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Admin:             u.Admin,
		DefaultHourlyRate: u.DefaultHourlyRate,
		Currency:          u.Currency,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(u sqlite.User) User {
	return User{
		ID:                u.ID,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Admin:             u.Admin,
		DefaultHourlyRate: u.DefaultHourlyRate,
		Currency:          u.Currency,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// FromDatabaseSlice converts database Users to domain Users.
func (m *UserMapper) FromDatabaseSlice(users []*sqlite.User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = m.FromDatabase(*u)
	}
	return out
}

// SessionMapper handles conversion between domain and database Session models.
type SessionMapper struct{}

// ToDatabase converts a domain Session to a database Session.
func (m *SessionMapper) ToDatabase(s Session) sqlite.Session {
	return sqlite.Session{ID: s.Token, UserID: s.UserID, ExpiresAt: s.ExpiresAt}
}

// FromDatabase converts a database Session to a domain Session.
func (m *SessionMapper) FromDatabase(s sqlite.Session) Session {
	return Session{Token: s.ID, UserID: s.UserID, ExpiresAt: s.ExpiresAt}
}

// SettingMapper converts settings between the tagged value and its stored text.
type SettingMapper struct{}

// ToDatabase converts a domain Setting to a database Setting.
func (m *SettingMapper) ToDatabase(s Setting) sqlite.Setting {
	return sqlite.Setting{ID: s.ID, Value: s.Value.String()}
}

// FromDatabase converts a database Setting to a domain Setting.
func (m *SettingMapper) FromDatabase(s sqlite.Setting) Setting {
	return Setting{ID: s.ID, Value: ParseSettingValue(s.Value)}
}

// ProjectMapper handles conversion between domain and database Project models.
type ProjectMapper struct{}

// ToDatabase converts a domain Project to a database Project.
func (m *ProjectMapper) ToDatabase(p Project) sqlite.Project {
	return sqlite.Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromDatabase converts a database Project to a domain Project.
func (m *ProjectMapper) FromDatabase(p sqlite.Project) Project {
	return Project{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromDatabaseSlice converts database Projects to domain Projects.
func (m *ProjectMapper) FromDatabaseSlice(projects []*sqlite.Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = m.FromDatabase(*p)
	}
	return out
}

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct {
	projects *ProjectMapper
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry. The
// project association is not carried over; ProjectID is authoritative.
func (m *TimeEntryMapper) ToDatabase(e TimeEntry) sqlite.TimeEntry {
	return sqlite.TimeEntry{
		ID:          e.ID,
		UserID:      e.UserID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Duration:    e.Duration,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(e sqlite.TimeEntry) TimeEntry {
	entry := TimeEntry{
		ID:          e.ID,
		UserID:      e.UserID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Duration:    e.Duration,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Project != nil {
		p := m.projects.FromDatabase(*e.Project)
		entry.Project = &p
	}
	return entry
}

// FromDatabaseSlice converts database TimeEntries to domain TimeEntries.
func (m *TimeEntryMapper) FromDatabaseSlice(entries []*sqlite.TimeEntry) []TimeEntry {
	out := make([]TimeEntry, len(entries))
	for i, e := range entries {
		out[i] = m.FromDatabase(*e)
	}
	return out
}

// SearchOptionsMapper handles conversion between domain and database SearchOptions.
type SearchOptionsMapper struct{}

var orderColumns = map[EntryOrder]string{
	OrderByStartTime: "start_time",
	OrderByCreatedAt: "created_at",
	OrderByUpdatedAt: "updated_at",
}

// ToDatabase converts domain SearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(o SearchOptions) sqlite.SearchOptions {
	return sqlite.SearchOptions{
		UserID:      o.UserID,
		ProjectID:   o.ProjectID,
		StartFrom:   o.StartFrom,
		StartTo:     o.StartTo,
		OpenOnly:    o.OpenOnly,
		OrderBy:     orderColumns[o.OrderBy],
		Descending:  o.Descending,
		Limit:       o.Limit,
		Offset:      o.Offset,
		WithProject: o.WithProject,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	User          *UserMapper
	Session       *SessionMapper
	Setting       *SettingMapper
	Project       *ProjectMapper
	TimeEntry     *TimeEntryMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	projects := &ProjectMapper{}
	return &Mapper{
		User:          &UserMapper{},
		Session:       &SessionMapper{},
		Setting:       &SettingMapper{},
		Project:       projects,
		TimeEntry:     &TimeEntryMapper{projects: projects},
		SearchOptions: &SearchOptionsMapper{},
	}
}
