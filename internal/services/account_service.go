package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	repo          sqlite.Repository
	mapper        *domain.Mapper
	validator     *validation.Validator
	userValidator *validation.UserValidator
	hasher        PasswordHasher
	clock         Clock
	sessionTTL    time.Duration
	allowSignup   bool
	log           *slog.Logger
}

// NewAccountService creates a new AccountService instance
func NewAccountService(repo sqlite.Repository, validator *validation.Validator, opts Options) AccountService {
	opts = opts.withDefaults()
	ttl := opts.Config.Server.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &accountServiceImpl{
		repo:          repo,
		mapper:        domain.NewMapper(),
		validator:     validator,
		userValidator: validation.NewUserValidator(validator),
		hasher:        opts.Hasher,
		clock:         opts.Clock,
		sessionTTL:    ttl,
		allowSignup:   opts.Config.Application.AllowSignup,
		log:           logging.OrDiscard(opts.Logger),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() error {
	return errors.NewUnauthenticatedError("Invalid email or password")
}

// Signup creates an account and logs it in, when signup is allowed
func (a *accountServiceImpl) Signup(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	allowed, err := a.SignupAllowed(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, errors.NewPermissionError("signup", "accounts")
	}

	user, err := a.CreateUser(ctx, email, password, false)
	if err != nil {
		return nil, nil, err
	}
	session, err := a.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password fail the same way.
func (a *accountServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	dbUser, err := a.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil, invalidCredentials()
		}
		return nil, nil, err
	}
	if !a.hasher.Verify(dbUser.PasswordHash, password) {
		return nil, nil, invalidCredentials()
	}

	session, err := a.newSession(ctx, dbUser.ID)
	if err != nil {
		return nil, nil, err
	}
	user := a.mapper.User.FromDatabase(*dbUser)
	return &user, session, nil
}

func (a *accountServiceImpl) newSession(ctx context.Context, userID int64) (*domain.Session, error) {
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: a.clock().Add(a.sessionTTL),
	}
	dbSession := a.mapper.Session.ToDatabase(session)
	if err := a.repo.CreateSession(ctx, &dbSession); err != nil {
		return nil, err
	}
	created := a.mapper.Session.FromDatabase(dbSession)
	return &created, nil
}

// Logout ends a session; unknown tokens are ignored
func (a *accountServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.repo.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user
func (a *accountServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, errors.NewUnauthenticatedError("Login required")
	}

	dbSession, err := a.repo.GetSession(ctx, token)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewUnauthenticatedError("Login required")
		}
		return nil, err
	}

	session := a.mapper.Session.FromDatabase(*dbSession)
	if session.Expired(a.clock()) {
		if err := a.repo.DeleteSession(ctx, token); err != nil {
			return nil, err
		}
		return nil, errors.NewUnauthenticatedError("Session expired")
	}

	user, err := a.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewUnauthenticatedError("Login required")
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpiredSessions deletes every session that has expired
func (a *accountServiceImpl) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := a.repo.DeleteExpiredSessions(ctx, a.clock())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		a.log.Debug("purged expired sessions", slog.Int64("count", purged))
	}
	return purged, nil
}

// GetUser returns a user by ID
func (a *accountServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	dbUser, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := a.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// GetUserByEmail returns a user by email, compared after normalization
func (a *accountServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	dbUser, err := a.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	user := a.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// ChangeEmail replaces the user's email after checking it is free
func (a *accountServiceImpl) ChangeEmail(ctx context.Context, userID int64, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := a.userValidator.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := a.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Email == email {
		return user, nil
	}
	if err := a.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	user.Email = email
	return a.saveUser(ctx, *user)
}

// ChangePassword replaces the password once the current one is verified
func (a *accountServiceImpl) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := a.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := a.verifyPassword(*user, "currentPassword", currentPassword); err != nil {
		return err
	}
	if err := a.userValidator.ValidateNewPassword(newPassword); err != nil {
		return err
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeInvalidInput, "password could not be hashed")
	}
	user.PasswordHash = hash
	_, err = a.saveUser(ctx, *user)
	return err
}

// UpdatePreferences sets the default hourly rate and currency label
func (a *accountServiceImpl) UpdatePreferences(ctx context.Context, userID int64, hourlyRate *float64, currency string) (*domain.User, error) {
	if err := a.validator.ValidateHourlyRate(hourlyRate); err != nil {
		return nil, err
	}

	user, err := a.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.DefaultHourlyRate = hourlyRate
	user.Currency = strings.TrimSpace(currency)
	return a.saveUser(ctx, *user)
}

// DeleteAccount removes the user and all their data once the password is verified
func (a *accountServiceImpl) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := a.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := a.verifyPassword(*user, "password", password); err != nil {
		return err
	}

	if err := a.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	a.log.Info("deleted account", slog.Int64("user_id", userID))
	return nil
}

// CreateUser creates an account without opening a session
func (a *accountServiceImpl) CreateUser(ctx context.Context, email, password string, admin bool) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := a.userValidator.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	if err := a.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "password could not be hashed")
	}

	dbUser := a.mapper.User.ToDatabase(domain.User{Email: email, PasswordHash: hash, Admin: admin})
	if err := a.repo.CreateUser(ctx, &dbUser); err != nil {
		return nil, err
	}

	a.log.Info("created user", slog.Int64("user_id", dbUser.ID), slog.Bool("admin", admin))
	user := a.mapper.User.FromDatabase(dbUser)
	return &user, nil
}

// ListUsers returns every account
func (a *accountServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	dbUsers, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return a.mapper.User.FromDatabaseSlice(dbUsers), nil
}

// ListUserIDs returns the ID of every account
func (a *accountServiceImpl) ListUserIDs(ctx context.Context) ([]int64, error) {
	return a.repo.ListUserIDs(ctx)
}

// ListSettings returns the stored installation settings
func (a *accountServiceImpl) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	dbSettings, err := a.repo.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings := make([]domain.Setting, len(dbSettings))
	for i, s := range dbSettings {
		settings[i] = a.mapper.Setting.FromDatabase(*s)
	}
	return settings, nil
}

// UpdateSetting stores a known setting. allowSignup only takes booleans.
func (a *accountServiceImpl) UpdateSetting(ctx context.Context, id string, value domain.SettingValue) (*domain.Setting, error) {
	validationError := validation.NewValidationError()
	switch id {
	case domain.SettingAllowSignup:
		if !value.IsBool() {
			validationError.AddInvalidValueError("value", value.String(), "allowSignup must be on or off")
		}
	default:
		validationError.AddInvalidValueError("id", id, "Unknown setting")
	}
	if err := validationError.AsAppError(); err != nil {
		return nil, err
	}

	setting := domain.Setting{ID: id, Value: value}
	dbSetting := a.mapper.Setting.ToDatabase(setting)
	if err := a.repo.SaveSetting(ctx, &dbSetting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// SignupAllowed reads the allowSignup setting, falling back to the configured default
func (a *accountServiceImpl) SignupAllowed(ctx context.Context) (bool, error) {
	dbSetting, err := a.repo.GetSetting(ctx, domain.SettingAllowSignup)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return a.allowSignup, nil
		}
		return false, err
	}
	if allowed, ok := a.mapper.Setting.FromDatabase(*dbSetting).Value.Bool(); ok {
		return allowed, nil
	}
	return a.allowSignup, nil
}

func (a *accountServiceImpl) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := a.repo.GetUserByEmail(ctx, email)
	if err == nil {
		validationError := validation.NewValidationError()
		validationError.AddDuplicateError("email", email, "A user with this email already exists")
		return validationError.AsAppError()
	}
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil
	}
	return err
}

func (a *accountServiceImpl) verifyPassword(user domain.User, field, password string) error {
	if a.hasher.Verify(user.PasswordHash, password) {
		return nil
	}
	validationError := validation.NewValidationError()
	validationError.AddInvalidValueError(field, nil, "Password is incorrect")
	return validationError.AsAppError()
}

func (a *accountServiceImpl) saveUser(ctx context.Context, user domain.User) (*domain.User, error) {
	dbUser := a.mapper.User.ToDatabase(user)
	if err := a.repo.UpdateUser(ctx, &dbUser); err != nil {
		return nil, err
	}
	saved := a.mapper.User.FromDatabase(dbUser)
	return &saved, nil
}
