package validation

import (
	"strings"
)

// ProjectValidator provides validation for project input
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a new project validator
func NewProjectValidator(v *Validator) *ProjectValidator {
	if v == nil {
		v = NewValidator()
	}
	return &ProjectValidator{validator: v}
}

// ValidateProject checks name and color. An empty color is allowed and
// replaced by a random one by the caller.
func (pv *ProjectValidator) ValidateProject(name, color string) error {
	validationError := NewValidationError()

	if !pv.validator.IsNonEmptyString(name) {
		validationError.AddRequiredError("name", "Name is required")
	} else if maxLen := pv.validator.getProjectNameMaxLength(); !pv.validator.IsValidStringLength(name, 1, maxLen) {
		validationError.AddInvalidLengthError("name", name, 0, maxLen)
	}

	if color = strings.TrimSpace(color); color != "" && !pv.validator.IsValidColor(color) {
		validationError.AddInvalidFormatError("color", color, "color must look like #1a2b3c")
	}

	return validationError.AsAppError()
}
