package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/config"
	"worktimer/internal/domain"
	"worktimer/internal/errors"
)

func requireValidationError(t *testing.T, err error) *errors.AppError {
	t.Helper()
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	require.True(t, appErr.IsType(errors.ErrorTypeValidation), "got %v", err)
	return appErr
}

func TestParseTimestamp(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		loc  *time.Location
		want time.Time
	}{
		{"should parse RFC3339 with milliseconds", "2024-01-01T09:00:00.250Z", nil, time.Date(2024, 1, 1, 9, 0, 0, 250000000, time.UTC)},
		{"should parse RFC3339 with offset", "2024-01-01T10:00:00+01:00", nil, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"should parse datetime-local in location", "2024-01-01T10:00", berlin, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"should parse space separated seconds", "2024-01-01 09:00:30", time.UTC, time.Date(2024, 1, 1, 9, 0, 30, 0, time.UTC)},
		{"should parse a bare date as midnight", "2024-01-31", time.UTC, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw, tt.loc)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01", "01/02/2024"} {
		_, err := ParseTimestamp(bad, time.UTC)
		assert.Error(t, err, bad)
	}

	none, err := ParseOptionalTimestamp("  ", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTimeEntryValidator_ParseForm(t *testing.T) {
	v := NewTimeEntryValidator(nil)

	tests := []struct {
		name       string
		form       TimeEntryForm
		wantFields map[string]string
		assertOK   func(t *testing.T, attrs domain.EntryAttrs)
	}{
		{
			name: "should accept an open entry",
			form: TimeEntryForm{Description: " Coding ", ProjectID: "3", StartTime: "2024-01-01T09:00:00Z"},
			assertOK: func(t *testing.T, attrs domain.EntryAttrs) {
				assert.Equal(t, "Coding", attrs.Description)
				assert.Equal(t, int64(3), attrs.ProjectID)
				assert.Nil(t, attrs.EndTime)
			},
		},
		{
			name: "should accept equal start and end",
			form: TimeEntryForm{Description: "x", ProjectID: "1", StartTime: "2024-01-01T09:00", EndTime: "2024-01-01T09:00"},
			assertOK: func(t *testing.T, attrs domain.EntryAttrs) {
				require.NotNil(t, attrs.EndTime)
				assert.True(t, attrs.EndTime.Equal(attrs.StartTime))
			},
		},
		{
			name: "should report every missing field",
			form: TimeEntryForm{},
			wantFields: map[string]string{
				"description": "Description is required",
				"projectId":   "projectId is required",
				"startTime":   "startTime is required",
			},
		},
		{
			name: "should report malformed values",
			form: TimeEntryForm{Description: "x", ProjectID: "abc", StartTime: "soon", EndTime: "later"},
			wantFields: map[string]string{
				"projectId": "projectId is invalid",
				"startTime": "startTime is invalid",
				"endTime":   "endTime is invalid",
			},
		},
		{
			name: "should reject end before start",
			form: TimeEntryForm{Description: "x", ProjectID: "1", StartTime: "2024-01-01T10:00", EndTime: "2024-01-01T09:00"},
			wantFields: map[string]string{
				"endTime": "startTime must be before endTime",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			attrs, err := v.ParseForm(tt.form)

			// Assert
			if tt.wantFields == nil {
				require.NoError(t, err)
				tt.assertOK(t, attrs)
				return
			}
			requireValidationError(t, err)
			assert.Equal(t, tt.wantFields, FieldMessagesOf(err))
		})
	}
}

func TestTimeEntryValidator_DescriptionLength(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.DescriptionMaxLength = 5
	v := NewTimeEntryValidator(NewValidatorWithConfig(cfg))

	err := v.ValidateAttrs(domain.EntryAttrs{Description: "too long", ProjectID: 1, StartTime: time.Now()})

	appErr := requireValidationError(t, err)
	assert.Equal(t, "description must be at most 5 characters long", appErr.Message)
}

func TestProjectValidator(t *testing.T) {
	v := NewProjectValidator(nil)

	assert.NoError(t, v.ValidateProject("Client", ""))
	assert.NoError(t, v.ValidateProject("Client", "#A0b1C2"))

	err := v.ValidateProject(" ", "red")
	requireValidationError(t, err)
	assert.Equal(t, map[string]string{
		"name":  "Name is required",
		"color": "color must look like #1a2b3c",
	}, FieldMessagesOf(err))
}

func TestUserValidator(t *testing.T) {
	v := NewUserValidator(nil)

	assert.NoError(t, v.ValidateCredentials("ada@example.com", "correct horse"))

	err := v.ValidateCredentials("Ada <ada@example.com>", "short")
	requireValidationError(t, err)
	assert.Equal(t, map[string]string{
		"email":    "Email is invalid",
		"password": "Password must be at least 8 characters long",
	}, FieldMessagesOf(err))

	assert.Error(t, v.ValidateEmail(""))
	assert.Error(t, v.ValidateNewPassword(""))
}

func TestValidator_Windows(t *testing.T) {
	v := NewValidator()
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, v.ValidateDateWindow(jan1, jan1))
	requireValidationError(t, v.ValidateDateWindow(jan1.AddDate(0, 0, 1), jan1))

	rate := -1.0
	requireValidationError(t, v.ValidateHourlyRate(&rate))
	assert.NoError(t, v.ValidateHourlyRate(nil))
}

func TestValidationError_Messages(t *testing.T) {
	ve := NewValidationError()
	assert.Nil(t, ve.AsAppError())
	assert.Equal(t, "Input validation failed", ve.GetUserFriendlyMessage())

	ve.AddRequiredError("a", "A is required")
	ve.AddInvalidValueError("a", 1, "A is odd")
	ve.AddRequiredError("b", "B is required")

	assert.Len(t, ve.GetFieldErrors("a"), 2)
	assert.Equal(t, "A is required; A is odd; B is required", ve.GetUserFriendlyMessage())
	assert.Equal(t, map[string]string{"a": "A is required", "b": "B is required"}, ve.FieldMessages())
	assert.Contains(t, ve.Error(), "multiple validation errors")
}
