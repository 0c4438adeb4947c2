package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser inserts a user and fills in its ID
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return HandleDatabaseError("create user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, HandleLookupError(err, "user", idString(id))
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by exact email
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, HandleLookupError(err, "user", email)
	}
	return &user, nil
}

// ListUsers returns all users ordered by ID
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, HandleDatabaseError("list users", err)
	}
	return users, nil
}

// ListUserIDs returns the ID of every user
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, HandleDatabaseError("list user ids", err)
	}
	return ids, nil
}

// UpdateUser writes every mutable user column
func (r *SQLiteRepository) UpdateUser(ctx context.Context, user *User) error {
	user.UpdatedAt = storageNow()
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":               user.Email,
		"password_hash":       user.PasswordHash,
		"admin":               user.Admin,
		"default_hourly_rate": user.DefaultHourlyRate,
		"currency":            user.Currency,
		"updated_at":          user.UpdatedAt,
	})
	return ValidateRowsAffected(result, "update user", "user", idString(user.ID))
}

// DeleteUser removes a user together with their sessions, projects and time entries
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&TimeEntry{}, &Project{}, &Session{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return HandleDatabaseError("delete user data", err)
			}
		}
		result := tx.Delete(&User{}, id)
		return ValidateRowsAffected(result, "delete user", "user", idString(id))
	})
}

// CreateSession stores a new session
func (r *SQLiteRepository) CreateSession(ctx context.Context, session *Session) error {
	session.ExpiresAt = StorageTime(session.ExpiresAt)
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return HandleDatabaseError("create session", err)
	}
	return nil
}

// GetSession retrieves a session by token. Expiry is checked by the caller.
func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, HandleLookupError(err, "session", "token")
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Session{}).Error; err != nil {
		return HandleDatabaseError("delete session", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired at or before now
func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", StorageTime(now)).Delete(&Session{})
	if result.Error != nil {
		return 0, HandleDatabaseError("delete expired sessions", result.Error)
	}
	return result.RowsAffected, nil
}

// GetSetting retrieves a setting by key
func (r *SQLiteRepository) GetSetting(ctx context.Context, id string) (*Setting, error) {
	var setting Setting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&setting).Error; err != nil {
		return nil, HandleLookupError(err, "setting", id)
	}
	return &setting, nil
}

// ListSettings returns all settings ordered by key
func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]*Setting, error) {
	var settings []*Setting
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&settings).Error; err != nil {
		return nil, HandleDatabaseError("list settings", err)
	}
	return settings, nil
}

// SaveSetting inserts or replaces a setting
func (r *SQLiteRepository) SaveSetting(ctx context.Context, setting *Setting) error {
	setting.UpdatedAt = storageNow()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return HandleDatabaseError("save setting", err)
	}
	return nil
}
