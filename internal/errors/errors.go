package errors

import (
	"errors"
	"fmt"
)

func newAppError(errorType ErrorType, code, message string, cause error, context map[string]any) *AppError {
	if context == nil {
		context = make(map[string]any)
	}
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    code,
		Cause:   cause,
		Context: context,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, "VALIDATION_FAILED", message, cause, nil)
}

// NewNotFoundError reports a missing resource. Callers use it for resources that
// exist but belong to someone else as well.
func NewNotFoundError(resource string, identifier string) *AppError {
	return newAppError(ErrorTypeNotFound, "NOT_FOUND",
		fmt.Sprintf("%s not found: %s", resource, identifier), nil,
		map[string]any{"resource": resource, "identifier": identifier})
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return newAppError(ErrorTypeDatabase, "DATABASE_ERROR",
		fmt.Sprintf("database operation failed: %s", operation), cause,
		map[string]any{"operation": operation})
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newAppError(ErrorTypeInvalidInput, "INVALID_INPUT",
		fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		map[string]any{"field": field, "value": value, "reason": reason})
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout any) *AppError {
	return newAppError(ErrorTypeTimeout, "TIMEOUT",
		fmt.Sprintf("operation timed out: %s", operation), nil,
		map[string]any{"operation": operation, "timeout": timeout})
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return newAppError(ErrorTypePermission, "PERMISSION_DENIED",
		fmt.Sprintf("permission denied for %s on %s", operation, resource), nil,
		map[string]any{"operation": operation, "resource": resource})
}

// NewImportError reports a CSV import that was rejected as a whole. Row is the
// 1-based data row that failed, or 0 when the problem concerns the whole file.
func NewImportError(row int, message string, cause error) *AppError {
	msg := fmt.Sprintf("import failed: %s", message)
	if row > 0 {
		msg = fmt.Sprintf("import failed at row %d: %s", row, message)
	}
	return newAppError(ErrorTypeImport, "IMPORT_FAILED", msg, cause, map[string]any{"row": row})
}

// NewUnauthenticatedError is returned when a request carries no valid session
// or credentials do not match.
func NewUnauthenticatedError(message string) *AppError {
	return newAppError(ErrorTypeUnauthenticated, "UNAUTHENTICATED", message, nil, nil)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return newAppError(errorType, errorType.String(), message, err, nil)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns the message safe to show an end user. Store and
// unknown failures collapse into a generic "operation failed" text.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "The operation failed. Please try again."
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
		ErrorTypePermission, ErrorTypeImport, ErrorTypeUnauthenticated:
		return appErr.Message
	case ErrorTypeTimeout:
		return "The operation timed out. Please try again."
	default:
		return "The operation failed. Please try again."
	}
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError reports whether err is a system failure rather than a user mistake.
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return true
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
		ErrorTypeImport, ErrorTypeUnauthenticated:
		return false
	default:
		return true
	}
}
