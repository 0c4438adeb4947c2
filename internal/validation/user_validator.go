package validation

import (
	"fmt"
	"strings"
)

// UserValidator provides validation for account input
type UserValidator struct {
	validator *Validator
}

// NewUserValidator creates a new user validator
func NewUserValidator(v *Validator) *UserValidator {
	if v == nil {
		v = NewValidator()
	}
	return &UserValidator{validator: v}
}

// ValidateCredentials checks an email and a new password
func (uv *UserValidator) ValidateCredentials(email, password string) error {
	validationError := NewValidationError()
	uv.checkEmail(validationError, email)
	uv.checkPassword(validationError, "password", password)
	return validationError.AsAppError()
}

// ValidateEmail checks an email address on its own
func (uv *UserValidator) ValidateEmail(email string) error {
	validationError := NewValidationError()
	uv.checkEmail(validationError, email)
	return validationError.AsAppError()
}

// ValidateNewPassword checks a replacement password
func (uv *UserValidator) ValidateNewPassword(password string) error {
	validationError := NewValidationError()
	uv.checkPassword(validationError, "newPassword", password)
	return validationError.AsAppError()
}

func (uv *UserValidator) checkEmail(ve *ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		ve.AddRequiredError("email", "Email is required")
	} else if !uv.validator.IsValidEmail(email) {
		ve.AddInvalidFormatError("email", email, "Email is invalid")
	}
}

func (uv *UserValidator) checkPassword(ve *ValidationError, field, password string) {
	minLen := uv.validator.getPasswordMinLength()
	if password == "" {
		ve.AddRequiredError(field, "Password is required")
	} else if len(password) < minLen {
		ve.AddError(field, ErrorTypeInvalidLength, fmt.Sprintf("Password must be at least %d characters long", minLen), nil)
	}
}
