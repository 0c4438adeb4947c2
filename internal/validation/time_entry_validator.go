package validation

import (
	"strconv"
	"strings"
	"time"

	"worktimer/internal/domain"
)

// TimeEntryForm is a time entry as submitted by a form, flag set or CSV row.
type TimeEntryForm struct {
	Description string
	ProjectID   string
	StartTime   string
	EndTime     string
}

// TimeEntryValidator provides validation for TimeEntry-related operations
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator(v *Validator) *TimeEntryValidator {
	if v == nil {
		v = NewValidator()
	}
	return &TimeEntryValidator{validator: v}
}

// ParseForm converts raw form input into entry attributes, reporting every
// problem at once. Zone-less timestamps are read in the configured timezone.
func (tev *TimeEntryValidator) ParseForm(form TimeEntryForm) (domain.EntryAttrs, error) {
	return tev.parse(form, true)
}

// ParseNamedProjectRow parses an imported row. The row names its project
// instead of referencing it, so ProjectID is left zero and not checked.
func (tev *TimeEntryValidator) ParseNamedProjectRow(form TimeEntryForm) (domain.EntryAttrs, error) {
	form.ProjectID = ""
	return tev.parse(form, false)
}

func (tev *TimeEntryValidator) parse(form TimeEntryForm, requireProject bool) (domain.EntryAttrs, error) {
	validationError := NewValidationError()
	attrs := domain.EntryAttrs{Description: strings.TrimSpace(form.Description)}
	loc := tev.validator.Location()

	if id := strings.TrimSpace(form.ProjectID); id != "" {
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil || parsed <= 0 {
			validationError.AddInvalidValueError("projectId", form.ProjectID, "projectId is invalid")
		} else {
			attrs.ProjectID = parsed
		}
	}

	if strings.TrimSpace(form.StartTime) != "" {
		start, err := ParseTimestamp(form.StartTime, loc)
		if err != nil {
			validationError.AddInvalidFormatError("startTime", form.StartTime, "startTime is invalid")
		} else {
			attrs.StartTime = start
		}
	}

	end, err := ParseOptionalTimestamp(form.EndTime, loc)
	if err != nil {
		validationError.AddInvalidFormatError("endTime", form.EndTime, "endTime is invalid")
	} else {
		attrs.EndTime = end
	}

	tev.collect(validationError, attrs, requireProject)
	return attrs, validationError.AsAppError()
}

// ValidateAttrs validates already-typed entry attributes
func (tev *TimeEntryValidator) ValidateAttrs(attrs domain.EntryAttrs) error {
	validationError := NewValidationError()
	tev.collect(validationError, attrs, true)
	return validationError.AsAppError()
}

// collect adds the checks shared by typed and raw input. Fields that already
// failed to parse are not reported twice.
func (tev *TimeEntryValidator) collect(ve *ValidationError, attrs domain.EntryAttrs, requireProject bool) {
	if !tev.validator.IsNonEmptyString(attrs.Description) {
		ve.AddRequiredError("description", "Description is required")
	} else if maxLen := tev.validator.getDescriptionMaxLength(); !tev.validator.IsValidStringLength(attrs.Description, 1, maxLen) {
		ve.AddInvalidLengthError("description", attrs.Description, 0, maxLen)
	}

	if requireProject && len(ve.GetFieldErrors("projectId")) == 0 && !tev.validator.IsValidID(attrs.ProjectID) {
		ve.AddRequiredError("projectId", "projectId is required")
	}

	startFailed := len(ve.GetFieldErrors("startTime")) > 0
	if !startFailed && attrs.StartTime.IsZero() {
		ve.AddRequiredError("startTime", "startTime is required")
		startFailed = true
	}

	if !startFailed && len(ve.GetFieldErrors("endTime")) == 0 && !tev.validator.IsValidTimeRange(attrs.StartTime, attrs.EndTime) {
		ve.AddInvalidRangeError("endTime", map[string]time.Time{
			"start": attrs.StartTime,
			"end":   *attrs.EndTime,
		}, "startTime must be before endTime")
	}
}
