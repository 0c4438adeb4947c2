package services

import (
	"context"
	"io"
	"time"

	"worktimer/internal/domain"
)

// Clock supplies "now". Services never read the wall clock directly.
type Clock func() time.Time

// SystemClock returns the current time in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// ListQuery pages through a user's entries.
type ListQuery struct {
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	OrderBy    domain.EntryOrder `json:"orderBy"`
	Descending bool              `json:"descending"`
}

// EntryPage is one page of entries plus their per-day grouping.
type EntryPage struct {
	Entries []domain.TimeEntry `json:"entries"`
	Groups  []domain.DayGroup  `json:"groups"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Size    int                `json:"size"`
	Pages   int                `json:"pages"`
}

// Rollups are rolling totals over closed entries only.
type Rollups struct {
	TodayMs int64 `json:"todayMs"`
	WeekMs  int64 `json:"weekMs"`
	MonthMs int64 `json:"monthMs"`
}

// ProjectTotal is the summed cached duration of one project in a window.
type ProjectTotal struct {
	ProjectID int64    `json:"projectId"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	TotalMs   int64    `json:"totalMs"`
	Billing   *float64 `json:"billing,omitempty"`
}

// Hours returns TotalMs in hours, unrounded.
func (p ProjectTotal) Hours() float64 {
	return domain.MsToHours(p.TotalMs)
}

// ReportQuery selects the window and rate of a billing report. Nil bounds
// default to the current month and a nil rate to the user's default rate.
type ReportQuery struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	HourlyRate *float64
}

// Report is a per-project billing summary for an inclusive day window.
type Report struct {
	DateFrom     time.Time      `json:"dateFrom"`
	DateTo       time.Time      `json:"dateTo"`
	PerProject   []ProjectTotal `json:"perProject"`
	TotalMs      int64          `json:"totalMs"`
	HourlyRate   *float64       `json:"hourlyRate,omitempty"`
	Currency     string         `json:"currency"`
	TotalBilling *float64       `json:"totalBilling,omitempty"`
}

// TotalHours returns TotalMs in hours, unrounded.
func (r Report) TotalHours() float64 {
	return domain.MsToHours(r.TotalMs)
}

// ImportResult reports what an import created.
type ImportResult struct {
	Imported        int `json:"imported"`
	ProjectsCreated int `json:"projectsCreated"`
	ClosedOpen      int `json:"closedOpen"`
}

// TimeService owns the duration calculator, the backfill and the
// single-active-entry rule.
type TimeService interface {
	// Duration calculation
	LiveDurationMs(entry domain.TimeEntry) int64
	FormatDuration(ms int64) string

	// Backfill
	BackfillDurations(ctx context.Context, userID int64) (int, error)

	// Entry lifecycle
	StartNewEntry(ctx context.Context, userID int64, attrs domain.EntryAttrs) (*domain.TimeEntry, error)
	StopEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error)
	GetEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error)
	GetRunningEntry(ctx context.Context, userID int64) (*domain.TimeEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID int64, attrs domain.EntryAttrs) (*domain.TimeEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID int64) error
}

// ProjectService handles project CRUD
type ProjectService interface {
	CreateProject(ctx context.Context, userID int64, name, description, color string) (*domain.Project, error)
	GetProject(ctx context.Context, userID, projectID int64) (*domain.Project, error)
	ListProjects(ctx context.Context, userID int64) ([]domain.Project, error)
	UpdateProject(ctx context.Context, userID, projectID int64, name, description, color string) (*domain.Project, error)
	DeleteProject(ctx context.Context, userID, projectID int64) error
}

// SearchService handles paged entry listings
type SearchService interface {
	ListEntries(ctx context.Context, userID int64, query ListQuery) (*EntryPage, error)
	SearchEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.TimeEntry, error)
}

// ReportingService handles aggregation and reports
type ReportingService interface {
	DayTotals(entries []domain.TimeEntry) map[string]domain.DayGroup
	ProjectTotals(ctx context.Context, userID int64, dateFrom, dateTo time.Time) ([]ProjectTotal, error)
	Rollups(ctx context.Context, userID int64) (*Rollups, error)
	BuildReport(ctx context.Context, userID int64, query ReportQuery) (*Report, error)
}

// TransferService handles CSV export and import
type TransferService interface {
	ExportCSV(ctx context.Context, userID int64, w io.Writer) (int, error)
	ExportFilename() string
	ImportCSV(ctx context.Context, userID int64, r io.Reader) (*ImportResult, error)
}

// AccountService handles users, sessions and installation settings
type AccountService interface {
	// Sessions
	Signup(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)

	// Own account
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ChangeEmail(ctx context.Context, userID int64, email string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	UpdatePreferences(ctx context.Context, userID int64, hourlyRate *float64, currency string) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID int64, password string) error

	// Administration
	CreateUser(ctx context.Context, email, password string, admin bool) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListSettings(ctx context.Context) ([]domain.Setting, error)
	UpdateSetting(ctx context.Context, id string, value domain.SettingValue) (*domain.Setting, error)
	SignupAllowed(ctx context.Context) (bool, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimeService      TimeService
	ProjectService   ProjectService
	SearchService    SearchService
	ReportingService ReportingService
	TransferService  TransferService
	AccountService   AccountService
}
