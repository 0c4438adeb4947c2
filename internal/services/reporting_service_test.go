package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
)

func TestReportingService_BuildReport_Scenario(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	beta := env.createProject(t, env.user.ID, "Beta")
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 5, 9), timePtr(day(time.January, 5, 10)))
	env.createEntry(t, env.user.ID, beta.ID, day(time.January, 20, 9), timePtr(day(time.January, 20, 11)))
	env.createEntry(t, env.user.ID, beta.ID, day(time.February, 1, 9), timePtr(day(time.February, 1, 11)))
	env.createEntry(t, env.user.ID, beta.ID, time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC), timePtr(time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)))

	// Act
	report, err := env.services.ReportingService.BuildReport(context.Background(), env.user.ID, ReportQuery{
		DateFrom: timePtr(day(time.January, 1, 0)),
		DateTo:   timePtr(day(time.January, 31, 0)),
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, report.PerProject, 2)
	assert.Equal(t, env.project.ID, report.PerProject[0].ProjectID)
	assert.Equal(t, int64(3_600_000), report.PerProject[0].TotalMs)
	assert.Equal(t, beta.ID, report.PerProject[1].ProjectID)
	assert.Equal(t, int64(7_200_000), report.PerProject[1].TotalMs)
	assert.Equal(t, int64(10_800_000), report.TotalMs)
	assert.Equal(t, "3.00", domain.FormatHours(report.TotalMs))
	assert.Nil(t, report.TotalBilling)
	assert.Equal(t, "€", report.Currency)
}

func TestReportingService_ProjectTotalsMatchReportTotal(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	ctx := context.Background()
	beta := env.createProject(t, env.user.ID, "Beta")
	gamma := env.createProject(t, env.user.ID, "Gamma")
	projects := []int64{env.project.ID, beta.ID, gamma.ID}
	for i := 0; i < 30; i++ {
		start := day(time.January, 1+i, 8).Add(time.Duration(i*7) * time.Minute)
		end := start.Add(time.Duration(15+i*11) * time.Minute)
		env.createEntry(t, env.user.ID, projects[i%len(projects)], start, &end)
	}
	env.createEntry(t, env.user.ID, beta.ID, day(time.January, 31, 9), nil)

	ranges := []struct {
		name string
		from time.Time
		to   time.Time
	}{
		{"whole month", day(time.January, 1, 0), day(time.January, 31, 0)},
		{"single day", day(time.January, 10, 0), day(time.January, 10, 0)},
		{"middle", day(time.January, 7, 0), day(time.January, 19, 0)},
		{"empty", day(time.March, 1, 0), day(time.March, 5, 0)},
	}

	for _, r := range ranges {
		t.Run(r.name, func(t *testing.T) {
			// Act
			totals, err := env.services.ReportingService.ProjectTotals(ctx, env.user.ID, r.from, r.to)
			require.NoError(t, err)
			report, err := env.services.ReportingService.BuildReport(ctx, env.user.ID, ReportQuery{DateFrom: &r.from, DateTo: &r.to})
			require.NoError(t, err)

			// Assert
			var sum int64
			for _, total := range totals {
				sum += total.TotalMs
			}
			assert.Equal(t, report.TotalMs, sum)
			assert.Equal(t, totals, report.PerProject)
		})
	}
}

func TestReportingService_ProjectTotals_DateToIsInclusive(t *testing.T) {
	env := setupTestEnv(t)
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 31, 23), timePtr(day(time.January, 31, 23).Add(30*time.Minute)))

	totals, err := env.services.ReportingService.ProjectTotals(context.Background(), env.user.ID, day(time.January, 31, 0), day(time.January, 31, 0))

	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1_800_000), totals[0].TotalMs)
	assert.Equal(t, "Alpha", totals[0].Name)
}

func TestReportingService_BuildReport_Errors(t *testing.T) {
	tests := []struct {
		name           string
		query          ReportQuery
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:  "should reject inverted window",
			query: ReportQuery{DateFrom: timePtr(day(time.January, 10, 0)), DateTo: timePtr(day(time.January, 1, 0))},
			errorAssertion: func(t *testing.T, err error) {
				assertErrorType(errors.ErrorTypeValidation)(t, err)
				assert.Contains(t, err.Error(), "dateFrom must not be after dateTo")
			},
		},
		{
			name:           "should reject negative rate",
			query:          ReportQuery{HourlyRate: float64Ptr(-1)},
			errorAssertion: assertErrorType(errors.ErrorTypeValidation),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			report, err := env.services.ReportingService.BuildReport(context.Background(), env.user.ID, tt.query)

			tt.errorAssertion(t, err)
			assert.Nil(t, report)
		})
	}
}

func TestReportingService_BuildReport_Billing(t *testing.T) {
	// Arrange
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 3, 9), timePtr(day(time.January, 3, 9).Add(90*time.Minute)))

	// Act
	withRate, err := env.services.ReportingService.BuildReport(ctx, env.user.ID, ReportQuery{HourlyRate: float64Ptr(80)})
	require.NoError(t, err)

	_, err = env.services.AccountService.UpdatePreferences(ctx, env.user.ID, float64Ptr(100), "USD")
	require.NoError(t, err)
	withDefault, err := env.services.ReportingService.BuildReport(ctx, env.user.ID, ReportQuery{})
	require.NoError(t, err)

	// Assert
	require.NotNil(t, withRate.TotalBilling)
	assert.InDelta(t, 120.0, *withRate.TotalBilling, 1e-9)
	assert.InDelta(t, 120.0, *withRate.PerProject[0].Billing, 1e-9)

	require.NotNil(t, withDefault.TotalBilling)
	assert.InDelta(t, 150.0, *withDefault.TotalBilling, 1e-9)
	assert.Equal(t, "USD", withDefault.Currency)
	assert.True(t, withDefault.DateFrom.Equal(day(time.January, 1, 0)))
	assert.True(t, withDefault.DateTo.Equal(day(time.January, 31, 0)))
}

func TestReportingService_BuildReport_EmptyRange(t *testing.T) {
	env := setupTestEnv(t)

	report, err := env.services.ReportingService.BuildReport(context.Background(), env.user.ID, ReportQuery{
		DateFrom:   timePtr(day(time.June, 1, 0)),
		DateTo:     timePtr(day(time.June, 30, 0)),
		HourlyRate: float64Ptr(50),
	})

	require.NoError(t, err)
	assert.Empty(t, report.PerProject)
	assert.Equal(t, int64(0), report.TotalMs)
	require.NotNil(t, report.TotalBilling)
	assert.Zero(t, *report.TotalBilling)
}

func TestReportingService_Rollups(t *testing.T) {
	// Arrange: now is Wednesday 2024-01-17 12:00 UTC
	env := setupTestEnv(t)
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 17, 8), timePtr(day(time.January, 17, 9)))
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 12, 8), timePtr(day(time.January, 12, 9)))
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 2, 8), timePtr(day(time.January, 2, 10)))
	env.createEntry(t, env.user.ID, env.project.ID, time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC), timePtr(time.Date(2023, 12, 31, 11, 0, 0, 0, time.UTC)))
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 17, 11), timePtr(day(time.January, 17, 13)))
	env.createEntry(t, env.user.ID, env.project.ID, day(time.January, 17, 10), nil)

	// Act
	rollups, err := env.services.ReportingService.Rollups(context.Background(), env.user.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), rollups.TodayMs)
	assert.Equal(t, int64(2*3_600_000), rollups.WeekMs)
	assert.Equal(t, int64(4*3_600_000), rollups.MonthMs)
}

func TestReportingService_DayTotals(t *testing.T) {
	env := setupTestEnv(t)
	env.now = day(time.January, 2, 10)
	entries := []domain.TimeEntry{
		domain.NewTimeEntry(env.user.ID, env.project.ID, "a", day(time.January, 2, 9)),
		domain.NewTimeEntry(env.user.ID, env.project.ID, "b", day(time.January, 1, 9)).Stop(day(time.January, 1, 11)),
		domain.NewTimeEntry(env.user.ID, env.project.ID, "c", day(time.January, 1, 13)).Stop(day(time.January, 1, 14)),
	}

	totals := env.services.ReportingService.DayTotals(entries)

	require.Len(t, totals, 2)
	assert.Equal(t, int64(3_600_000), totals["2024-01-02"].TotalMs)
	assert.Equal(t, int64(3*3_600_000), totals["2024-01-01"].TotalMs)
	assert.Len(t, totals["2024-01-01"].Entries, 2)
}
