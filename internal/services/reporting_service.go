package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"worktimer/internal/domain"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo            sqlite.Repository
	timeService     TimeService
	validator       *validation.Validator
	mapper          *domain.Mapper
	clock           Clock
	location        *time.Location
	defaultCurrency string
	log             *slog.Logger
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlite.Repository, timeService TimeService, validator *validation.Validator, opts Options) ReportingService {
	opts = opts.withDefaults()
	return &reportingServiceImpl{
		repo:            repo,
		timeService:     timeService,
		validator:       validator,
		mapper:          domain.NewMapper(),
		clock:           opts.Clock,
		location:        opts.Config.Location(),
		defaultCurrency: opts.Config.Reports.DefaultCurrency,
		log:             logging.OrDiscard(opts.Logger),
	}
}

// DayTotals groups entries by the day they started; running entries count
// with their live duration.
func (r *reportingServiceImpl) DayTotals(entries []domain.TimeEntry) map[string]domain.DayGroup {
	return domain.DayTotals(entries, r.clock(), r.location)
}

// ProjectTotals sums cached durations per project for entries starting in
// the inclusive day window [dateFrom, dateTo]. Durations are backfilled first.
func (r *reportingServiceImpl) ProjectTotals(ctx context.Context, userID int64, dateFrom, dateTo time.Time) ([]ProjectTotal, error) {
	// 1. Validate window
	if err := r.validator.ValidateDateWindow(dateFrom, dateTo); err != nil {
		return nil, err
	}

	// 2. Backfill
	if _, err := r.timeService.BackfillDurations(ctx, userID); err != nil {
		return nil, err
	}

	// 3. Aggregate
	from := domain.StartOfDay(dateFrom, r.location)
	to := domain.EndOfDay(dateTo, r.location)
	sums, err := r.repo.SumDurationByProject(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if len(sums) == 0 {
		return []ProjectTotal{}, nil
	}

	// 4. Attach project names
	dbProjects, err := r.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects := make(map[int64]domain.Project, len(dbProjects))
	for _, p := range r.mapper.Project.FromDatabaseSlice(dbProjects) {
		projects[p.ID] = p
	}

	totals := make([]ProjectTotal, 0, len(sums))
	for _, sum := range sums {
		project := projects[sum.ProjectID]
		totals = append(totals, ProjectTotal{
			ProjectID: sum.ProjectID,
			Name:      project.Name,
			Color:     project.Color,
			TotalMs:   sum.TotalDuration,
		})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Name < totals[j].Name
	})
	return totals, nil
}

// Rollups totals closed entries that ended by now and started today, within
// the last seven days or this month.
func (r *reportingServiceImpl) Rollups(ctx context.Context, userID int64) (*Rollups, error) {
	if _, err := r.timeService.BackfillDurations(ctx, userID); err != nil {
		return nil, err
	}

	now := r.clock()
	rollups := &Rollups{}
	windows := []struct {
		target *int64
		from   time.Time
	}{
		{&rollups.TodayMs, domain.StartOfDay(now, r.location)},
		{&rollups.WeekMs, domain.StartOfDay(now.AddDate(0, 0, -7), r.location)},
		{&rollups.MonthMs, domain.StartOfMonth(now, r.location)},
	}

	for _, window := range windows {
		total, err := r.repo.SumClosedDuration(ctx, userID, window.from, now)
		if err != nil {
			return nil, err
		}
		*window.target = total
	}
	return rollups, nil
}

// BuildReport totals the window per project and, when a rate is known,
// bills every project and the grand total.
func (r *reportingServiceImpl) BuildReport(ctx context.Context, userID int64, query ReportQuery) (*Report, error) {
	// 1. Apply defaults
	now := r.clock()
	dateFrom := domain.StartOfMonth(now, r.location)
	if query.DateFrom != nil {
		dateFrom = *query.DateFrom
	}
	dateTo := domain.EndOfMonth(now, r.location)
	if query.DateTo != nil {
		dateTo = *query.DateTo
	}

	user, err := r.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rate := query.HourlyRate
	if rate == nil {
		rate = user.DefaultHourlyRate
	}
	currency := user.Currency
	if currency == "" {
		currency = r.defaultCurrency
	}

	// 2. Validate
	if err := r.validator.ValidateHourlyRate(rate); err != nil {
		return nil, err
	}

	// 3. Aggregate
	perProject, err := r.ProjectTotals(ctx, userID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DateFrom:   domain.StartOfDay(dateFrom, r.location),
		DateTo:     domain.StartOfDay(dateTo, r.location),
		PerProject: perProject,
		HourlyRate: rate,
		Currency:   currency,
	}
	for i := range perProject {
		report.TotalMs += perProject[i].TotalMs
		if rate != nil {
			amount := domain.Billing(perProject[i].TotalMs, *rate)
			perProject[i].Billing = &amount
		}
	}
	if rate != nil {
		total := domain.Billing(report.TotalMs, *rate)
		report.TotalBilling = &total
	}

	r.log.Debug("built report",
		slog.Int64("user_id", userID),
		slog.String("from", report.DateFrom.Format(domain.DayKeyLayout)),
		slog.String("to", report.DateTo.Format(domain.DayKeyLayout)),
		slog.Int("projects", len(perProject)))
	return report, nil
}
