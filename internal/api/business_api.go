package api

import (
	"context"
	"io"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/report"
	"worktimer/internal/services"
	"worktimer/internal/validation"
)

// Business domain types
type EntrySession struct {
	Entry     *domain.TimeEntry `json:"entry"`
	ElapsedMs int64             `json:"elapsedMs"`
	Elapsed   string            `json:"elapsed"` // H:MM:SS at the time of the call
}

type TimeEntryListing struct {
	*services.EntryPage
	Rollups services.Rollups `json:"rollups"`
	Running *EntrySession    `json:"running"`
}

// BusinessAPI defines the tracking, reporting and session workflows
type BusinessAPI interface {
	// ========== Tracking Workflows ==========

	// StartEntry parses the form, closes any running entry and starts the new one
	StartEntry(ctx context.Context, userID int64, form validation.TimeEntryForm) (*EntrySession, error)

	// StopEntry closes one running entry at the current time
	StopEntry(ctx context.Context, userID, entryID int64) (*EntrySession, error)

	// GetCurrentSession returns the running entry, or nil when none runs
	GetCurrentSession(ctx context.Context, userID int64) (*EntrySession, error)

	// ListTimeEntries returns a page of entries with day groups and rollups
	ListTimeEntries(ctx context.Context, userID int64, form ListForm) (*TimeEntryListing, error)

	// BackfillDurations fills missing cached durations
	BackfillDurations(ctx context.Context, userID int64) (int, error)

	// ========== Reports and Transfer ==========

	BuildReport(ctx context.Context, userID int64, form ReportForm) (*services.Report, error)
	WriteReportPDF(ctx context.Context, userID int64, form ReportForm, w io.Writer) error
	ExportCSV(ctx context.Context, userID int64, w io.Writer) (int, error)
	ExportFilename() string
	ImportCSV(ctx context.Context, userID int64, r io.Reader) (*services.ImportResult, error)

	// ========== Sessions ==========

	Signup(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services           *services.ServiceContainer
	timeEntryValidator *validation.TimeEntryValidator
	location           *time.Location
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(container *services.ServiceContainer, validator *validation.Validator) BusinessAPI {
	if validator == nil {
		validator = validation.NewValidator()
	}
	return &businessAPIImpl{
		services:           container,
		timeEntryValidator: validation.NewTimeEntryValidator(validator),
		location:           validator.Location(),
	}
}

func (b *businessAPIImpl) session(entry *domain.TimeEntry) *EntrySession {
	if entry == nil {
		return nil
	}
	elapsed := b.services.TimeService.LiveDurationMs(*entry)
	return &EntrySession{
		Entry:     entry,
		ElapsedMs: elapsed,
		Elapsed:   b.services.TimeService.FormatDuration(elapsed),
	}
}

// ========== Tracking Workflows ==========

func (b *businessAPIImpl) StartEntry(ctx context.Context, userID int64, form validation.TimeEntryForm) (*EntrySession, error) {
	// 1. Parse and validate the form
	attrs, err := b.timeEntryValidator.ParseForm(form)
	if err != nil {
		return nil, err
	}

	// 2. Close running entries and create
	entry, err := b.services.TimeService.StartNewEntry(ctx, userID, attrs)
	if err != nil {
		return nil, err
	}
	return b.session(entry), nil
}

func (b *businessAPIImpl) StopEntry(ctx context.Context, userID, entryID int64) (*EntrySession, error) {
	entry, err := b.services.TimeService.StopEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	return b.session(entry), nil
}

func (b *businessAPIImpl) GetCurrentSession(ctx context.Context, userID int64) (*EntrySession, error) {
	entry, err := b.services.TimeService.GetRunningEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	return b.session(entry), nil
}

func (b *businessAPIImpl) ListTimeEntries(ctx context.Context, userID int64, form ListForm) (*TimeEntryListing, error) {
	// 1. Parse paging
	query, err := form.ToQuery()
	if err != nil {
		return nil, err
	}

	// 2. Rollups backfill first, so the page shows cached durations
	rollups, err := b.services.ReportingService.Rollups(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Page and running entry
	page, err := b.services.SearchService.ListEntries(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	running, err := b.GetCurrentSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TimeEntryListing{EntryPage: page, Rollups: *rollups, Running: running}, nil
}

func (b *businessAPIImpl) BackfillDurations(ctx context.Context, userID int64) (int, error) {
	return b.services.TimeService.BackfillDurations(ctx, userID)
}

// ========== Reports and Transfer ==========

func (b *businessAPIImpl) BuildReport(ctx context.Context, userID int64, form ReportForm) (*services.Report, error) {
	query, err := form.ToQuery(b.location)
	if err != nil {
		return nil, err
	}
	return b.services.ReportingService.BuildReport(ctx, userID, query)
}

func (b *businessAPIImpl) WriteReportPDF(ctx context.Context, userID int64, form ReportForm, w io.Writer) error {
	r, err := b.BuildReport(ctx, userID, form)
	if err != nil {
		return err
	}
	return report.WritePDF(w, r)
}

func (b *businessAPIImpl) ExportCSV(ctx context.Context, userID int64, w io.Writer) (int, error) {
	return b.services.TransferService.ExportCSV(ctx, userID, w)
}

func (b *businessAPIImpl) ExportFilename() string {
	return b.services.TransferService.ExportFilename()
}

func (b *businessAPIImpl) ImportCSV(ctx context.Context, userID int64, r io.Reader) (*services.ImportResult, error) {
	return b.services.TransferService.ImportCSV(ctx, userID, r)
}

// ========== Sessions ==========

func (b *businessAPIImpl) Signup(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	return b.services.AccountService.Signup(ctx, email, password)
}

func (b *businessAPIImpl) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	return b.services.AccountService.Login(ctx, email, password)
}

func (b *businessAPIImpl) Logout(ctx context.Context, token string) error {
	return b.services.AccountService.Logout(ctx, token)
}

func (b *businessAPIImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return b.services.AccountService.Authenticate(ctx, token)
}
