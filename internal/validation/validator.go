package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"worktimer/internal/config"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validator provides common validation utilities and the configured limits
type Validator struct {
	config *config.Config
}

// NewValidator creates a validator that uses built-in defaults
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a trimmed string length is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len([]rune(strings.TrimSpace(s)))
	return length >= min && length <= max
}

// IsValidTimeRange allows open entries and end == start; only end < start is rejected.
func (v *Validator) IsValidTimeRange(startTime time.Time, endTime *time.Time) bool {
	if endTime == nil {
		return true
	}
	return !endTime.Before(startTime)
}

// IsValidID checks if an ID is positive
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidColor accepts #rrggbb
func (v *Validator) IsValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// IsValidEmail accepts a bare address such as ada@example.com
func (v *Validator) IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidateHourlyRate rejects negative rates
func (v *Validator) ValidateHourlyRate(rate *float64) error {
	validationError := NewValidationError()
	if rate != nil && *rate < 0 {
		validationError.AddInvalidValueError("hourlyRate", *rate, "hourlyRate must not be negative")
	}
	return validationError.AsAppError()
}

// ValidateDateWindow rejects a window whose start is after its end
func (v *Validator) ValidateDateWindow(from, to time.Time) error {
	validationError := NewValidationError()
	if from.After(to) {
		validationError.AddInvalidRangeError("dateFrom", from, "dateFrom must not be after dateTo")
	}
	return validationError.AsAppError()
}

// Location returns the configured calendar timezone
func (v *Validator) Location() *time.Location {
	if v.config == nil {
		return time.UTC
	}
	return v.config.Location()
}

func (v *Validator) getDescriptionMaxLength() int {
	if v.config != nil && v.config.Validation.DescriptionMaxLength > 0 {
		return v.config.Validation.DescriptionMaxLength
	}
	return 1000
}

func (v *Validator) getProjectNameMaxLength() int {
	if v.config != nil && v.config.Validation.ProjectNameMaxLength > 0 {
		return v.config.Validation.ProjectNameMaxLength
	}
	return 255
}

func (v *Validator) getPasswordMinLength() int {
	if v.config != nil && v.config.Validation.PasswordMinLength > 0 {
		return v.config.Validation.PasswordMinLength
	}
	return 8
}
