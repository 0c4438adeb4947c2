package api

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/validation"
)

func TestStartEntry_StopsRunningEntry(t *testing.T) {
	// Arrange
	env := setupTestAPIs(t)
	ctx := context.Background()
	project := env.project(t, "Alpha")
	projectID := strconv.FormatInt(project.ID, 10)

	env.now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	first, err := env.business.StartEntry(ctx, env.user.ID, validation.TimeEntryForm{
		Description: "first", ProjectID: projectID, StartTime: "2024-01-01T09:00:00Z",
	})
	require.NoError(t, err)

	// Act
	env.now = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	current, err := env.business.GetCurrentSession(ctx, env.user.ID)
	require.NoError(t, err)
	second, err := env.business.StartEntry(ctx, env.user.ID, validation.TimeEntryForm{
		Description: "second", ProjectID: projectID, StartTime: "2024-01-01T09:30:00Z",
	})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.Entry.ID, current.Entry.ID)
	assert.Equal(t, "0:30:00", current.Elapsed)
	assert.Equal(t, "0:00:00", second.Elapsed)

	closed, err := env.api.GetTimeEntry(ctx, env.user.ID, first.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_800_000), *closed.Duration)

	running, err := env.business.GetCurrentSession(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Entry.ID, running.Entry.ID)
}

func TestStartEntry_FormErrors(t *testing.T) {
	tests := []struct {
		name       string
		form       validation.TimeEntryForm
		wantFields map[string]string
	}{
		{
			name: "should report every missing field",
			form: validation.TimeEntryForm{},
			wantFields: map[string]string{
				"description": "Description is required",
				"projectId":   "projectId is required",
				"startTime":   "startTime is required",
			},
		},
		{
			name: "should report malformed values",
			form: validation.TimeEntryForm{Description: "x", ProjectID: "abc", StartTime: "2024-13-45", EndTime: "later"},
			wantFields: map[string]string{
				"projectId": "projectId is invalid",
				"startTime": "startTime is invalid",
				"endTime":   "endTime is invalid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestAPIs(t)

			session, err := env.business.StartEntry(context.Background(), env.user.ID, tt.form)

			assertErrorType(errors.ErrorTypeValidation)(t, err)
			assert.Nil(t, session)
			assert.Equal(t, tt.wantFields, validation.FieldMessagesOf(err))
		})
	}
}

func TestStopEntry(t *testing.T) {
	env := setupTestAPIs(t)
	ctx := context.Background()
	project := env.project(t, "Alpha")
	started, err := env.business.StartEntry(ctx, env.user.ID, validation.TimeEntryForm{
		Description: "work", ProjectID: strconv.FormatInt(project.ID, 10), StartTime: "2024-01-01T09:00:00Z",
	})
	require.NoError(t, err)

	_, err = env.business.StopEntry(ctx, env.admin.ID, started.Entry.ID)
	assertErrorType(errors.ErrorTypeNotFound)(t, err)

	stopped, err := env.business.StopEntry(ctx, env.user.ID, started.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "0:30:00", stopped.Elapsed)

	_, err = env.business.StopEntry(ctx, env.user.ID, started.Entry.ID)
	assertErrorType(errors.ErrorTypeValidation)(t, err)

	current, err := env.business.GetCurrentSession(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestListTimeEntries(t *testing.T) {
	// Arrange
	env := setupTestAPIs(t)
	ctx := context.Background()
	project := env.project(t, "Alpha")
	projectID := strconv.FormatInt(project.ID, 10)
	for _, form := range []validation.TimeEntryForm{
		{Description: "a", ProjectID: projectID, StartTime: "2024-01-01T07:00:00Z", EndTime: "2024-01-01T08:00:00Z"},
		{Description: "b", ProjectID: projectID, StartTime: "2024-01-01T08:00:00Z", EndTime: "2024-01-01T08:30:00Z"},
		{Description: "c", ProjectID: projectID, StartTime: "2024-01-01T09:00:00Z"},
	} {
		_, err := env.business.StartEntry(ctx, env.user.ID, form)
		require.NoError(t, err)
	}

	// Act
	listing, err := env.business.ListTimeEntries(ctx, env.user.ID, ListForm{OrderBy: "startTime", Order: "asc"})

	// Assert
	require.NoError(t, err)
	require.Len(t, listing.Entries, 3)
	assert.Equal(t, "a", listing.Entries[0].Description)
	require.Len(t, listing.Groups, 1)
	assert.Equal(t, int64(2*3_600_000), listing.Groups[0].TotalMs)
	assert.Equal(t, int64(90*60*1000), listing.Rollups.TodayMs)
	assert.Equal(t, int64(90*60*1000), listing.Rollups.MonthMs)
	require.NotNil(t, listing.Running)
	assert.Equal(t, "c", listing.Running.Entry.Description)
	assert.Equal(t, 25, listing.Size)
}

func TestListForm_ToQuery(t *testing.T) {
	query, err := ListForm{Page: "2", Size: "50", OrderBy: "updatedAt", Order: "ASC"}.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, 2, query.Page)
	assert.Equal(t, 50, query.Size)
	assert.Equal(t, domain.OrderByUpdatedAt, query.OrderBy)
	assert.False(t, query.Descending)

	query, err = ListForm{}.ToQuery()
	require.NoError(t, err)
	assert.Equal(t, domain.OrderByCreatedAt, query.OrderBy)
	assert.True(t, query.Descending)

	_, err = ListForm{Page: "two"}.ToQuery()
	assertErrorType(errors.ErrorTypeInvalidInput)(t, err)
}

func TestBuildReport_Forms(t *testing.T) {
	tests := []struct {
		name           string
		form           ReportForm
		errorAssertion func(t *testing.T, err error)
		wantBilling    *float64
	}{
		{name: "should default to the current month", form: ReportForm{}},
		{name: "should bill with given rate", form: ReportForm{DateFrom: "2024-01-01", DateTo: "2024-01-31", HourlyRate: "100"}, wantBilling: func() *float64 { v := 150.0; return &v }()},
		{name: "should reject malformed date", form: ReportForm{DateFrom: "first of january"}, errorAssertion: assertErrorType(errors.ErrorTypeInvalidInput)},
		{name: "should reject malformed rate", form: ReportForm{HourlyRate: "a lot"}, errorAssertion: assertErrorType(errors.ErrorTypeInvalidInput)},
		{name: "should reject inverted range", form: ReportForm{DateFrom: "2024-02-01", DateTo: "2024-01-01"}, errorAssertion: assertErrorType(errors.ErrorTypeValidation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := setupTestAPIs(t)
			ctx := context.Background()
			project := env.project(t, "Alpha")
			_, err := env.business.StartEntry(ctx, env.user.ID, validation.TimeEntryForm{
				Description: "work", ProjectID: strconv.FormatInt(project.ID, 10),
				StartTime: "2024-01-01T06:00:00Z", EndTime: "2024-01-01T07:30:00Z",
			})
			require.NoError(t, err)

			// Act
			report, err := env.business.BuildReport(ctx, env.user.ID, tt.form)

			// Assert
			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(90*60*1000), report.TotalMs)
			if tt.wantBilling != nil {
				require.NotNil(t, report.TotalBilling)
				assert.InDelta(t, *tt.wantBilling, *report.TotalBilling, 1e-9)
			}
		})
	}
}

func TestWriteReportPDF(t *testing.T) {
	env := setupTestAPIs(t)
	var buf bytes.Buffer

	err := env.business.WriteReportPDF(context.Background(), env.user.ID, ReportForm{HourlyRate: "10"}, &buf)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportImport(t *testing.T) {
	env := setupTestAPIs(t)
	ctx := context.Background()
	project := env.project(t, "Alpha")
	_, err := env.business.StartEntry(ctx, env.user.ID, validation.TimeEntryForm{
		Description: "work", ProjectID: strconv.FormatInt(project.ID, 10),
		StartTime: "2024-01-01T06:00:00Z", EndTime: "2024-01-01T07:30:00Z",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	count, err := env.business.ExportCSV(ctx, env.user.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, strings.HasPrefix(env.business.ExportFilename(), "work-timer-export-20240101"))

	result, err := env.business.ImportCSV(ctx, env.admin.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	projects, err := env.api.ListProjects(ctx, env.admin.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Alpha", projects[0].Name)
}

func TestSessions(t *testing.T) {
	env := setupTestAPIs(t)
	ctx := context.Background()

	_, session, err := env.business.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	user, err := env.business.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, env.user.ID, user.ID)

	require.NoError(t, env.business.Logout(ctx, session.Token))
	_, err = env.business.Authenticate(ctx, session.Token)
	assertErrorType(errors.ErrorTypeUnauthenticated)(t, err)

	_, _, err = env.business.Signup(ctx, "new@example.com", "correct horse")
	assertErrorType(errors.ErrorTypePermission)(t, err)
}
