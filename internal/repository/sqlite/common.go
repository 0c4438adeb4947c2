package sqlite

import (
	stderrors "errors"
	"strconv"

	"gorm.io/gorm"

	"worktimer/internal/errors"
)

// HandleDatabaseError converts store errors to structured app errors
func HandleDatabaseError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.NewDatabaseError(operation, err)
}

// HandleLookupError maps gorm.ErrRecordNotFound to a not-found error and
// anything else to a database error.
func HandleLookupError(err error, entityType string, id string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewNotFoundError(entityType, id)
	}
	return HandleDatabaseError("get "+entityType, err)
}

// ValidateRowsAffected reports a not-found error when a scoped update or
// delete matched nothing.
func ValidateRowsAffected(result *gorm.DB, operation, entityType string, id string) error {
	if result.Error != nil {
		return HandleDatabaseError(operation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(entityType, id)
	}
	return nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
