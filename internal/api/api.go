package api

import (
	"context"
	"strings"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/services"
	"worktimer/internal/validation"
)

// API defines the resource operations of a signed-in user. Every call is
// scoped to the caller: another user's records read as not found.
type API interface {
	// Project operations
	CreateProject(ctx context.Context, userID int64, form ProjectForm) (*domain.Project, error)
	GetProject(ctx context.Context, userID, projectID int64) (*domain.Project, error)
	ListProjects(ctx context.Context, userID int64) ([]domain.Project, error)
	UpdateProject(ctx context.Context, userID, projectID int64, form ProjectForm) (*domain.Project, error)
	DeleteProject(ctx context.Context, userID, projectID int64) error

	// Time entry operations
	GetTimeEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, userID, entryID int64, form validation.TimeEntryForm) (*domain.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, userID, entryID int64) error

	// Own account
	GetAccount(ctx context.Context, userID int64) (*domain.User, error)
	UpdateAccount(ctx context.Context, userID int64, form AccountForm) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID int64, password string) error

	// Administration, admins only
	ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error)
	CreateUser(ctx context.Context, actor domain.User, form UserForm) (*domain.User, error)
	ListSettings(ctx context.Context, actor domain.User) ([]domain.Setting, error)
	UpdateSettings(ctx context.Context, actor domain.User, values map[string]string) ([]domain.Setting, error)
}

type apiImpl struct {
	services           *services.ServiceContainer
	timeEntryValidator *validation.TimeEntryValidator
}

// New creates a new API instance.
func New(container *services.ServiceContainer, validator *validation.Validator) API {
	return &apiImpl{
		services:           container,
		timeEntryValidator: validation.NewTimeEntryValidator(validator),
	}
}

// Project implementations
func (a *apiImpl) CreateProject(ctx context.Context, userID int64, form ProjectForm) (*domain.Project, error) {
	return a.services.ProjectService.CreateProject(ctx, userID, form.Name, form.Description, form.Color)
}

func (a *apiImpl) GetProject(ctx context.Context, userID, projectID int64) (*domain.Project, error) {
	return a.services.ProjectService.GetProject(ctx, userID, projectID)
}

func (a *apiImpl) ListProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	return a.services.ProjectService.ListProjects(ctx, userID)
}

func (a *apiImpl) UpdateProject(ctx context.Context, userID, projectID int64, form ProjectForm) (*domain.Project, error) {
	return a.services.ProjectService.UpdateProject(ctx, userID, projectID, form.Name, form.Description, form.Color)
}

func (a *apiImpl) DeleteProject(ctx context.Context, userID, projectID int64) error {
	return a.services.ProjectService.DeleteProject(ctx, userID, projectID)
}

// TimeEntry implementations
func (a *apiImpl) GetTimeEntry(ctx context.Context, userID, entryID int64) (*domain.TimeEntry, error) {
	return a.services.TimeService.GetEntry(ctx, userID, entryID)
}

func (a *apiImpl) UpdateTimeEntry(ctx context.Context, userID, entryID int64, form validation.TimeEntryForm) (*domain.TimeEntry, error) {
	attrs, err := a.timeEntryValidator.ParseForm(form)
	if err != nil {
		return nil, err
	}
	return a.services.TimeService.UpdateEntry(ctx, userID, entryID, attrs)
}

func (a *apiImpl) DeleteTimeEntry(ctx context.Context, userID, entryID int64) error {
	return a.services.TimeService.DeleteEntry(ctx, userID, entryID)
}

// Account implementations
func (a *apiImpl) GetAccount(ctx context.Context, userID int64) (*domain.User, error) {
	return a.services.AccountService.GetUser(ctx, userID)
}

func (a *apiImpl) UpdateAccount(ctx context.Context, userID int64, form AccountForm) (*domain.User, error) {
	// 1. Parse input before touching anything
	rate, err := parseOptionalFloat("hourlyRate", form.HourlyRate)
	if err != nil {
		return nil, err
	}

	// 2. Email first so a taken address leaves preferences untouched
	if strings.TrimSpace(form.Email) != "" {
		if _, err := a.services.AccountService.ChangeEmail(ctx, userID, form.Email); err != nil {
			return nil, err
		}
	}

	// 3. Preferences
	return a.services.AccountService.UpdatePreferences(ctx, userID, rate, form.Currency)
}

func (a *apiImpl) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	return a.services.AccountService.ChangePassword(ctx, userID, currentPassword, newPassword)
}

func (a *apiImpl) DeleteAccount(ctx context.Context, userID int64, password string) error {
	return a.services.AccountService.DeleteAccount(ctx, userID, password)
}

// Administration implementations
func requireAdmin(actor domain.User, action, resource string) error {
	if !actor.Admin {
		return errors.NewPermissionError(action, resource)
	}
	return nil
}

func (a *apiImpl) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor, "list", "users"); err != nil {
		return nil, err
	}
	return a.services.AccountService.ListUsers(ctx)
}

func (a *apiImpl) CreateUser(ctx context.Context, actor domain.User, form UserForm) (*domain.User, error) {
	if err := requireAdmin(actor, "create", "users"); err != nil {
		return nil, err
	}
	return a.services.AccountService.CreateUser(ctx, form.Email, form.Password, form.Admin)
}

func (a *apiImpl) ListSettings(ctx context.Context, actor domain.User) ([]domain.Setting, error) {
	if err := requireAdmin(actor, "list", "settings"); err != nil {
		return nil, err
	}
	return a.services.AccountService.ListSettings(ctx)
}

// UpdateSettings stores each submitted key. Values are read the way forms
// send them, so on/off become booleans.
func (a *apiImpl) UpdateSettings(ctx context.Context, actor domain.User, values map[string]string) ([]domain.Setting, error) {
	if err := requireAdmin(actor, "update", "settings"); err != nil {
		return nil, err
	}

	for id, raw := range values {
		if _, err := a.services.AccountService.UpdateSetting(ctx, id, domain.ParseSettingValue(raw)); err != nil {
			return nil, err
		}
	}
	return a.services.AccountService.ListSettings(ctx)
}
