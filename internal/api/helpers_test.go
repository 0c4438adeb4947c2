package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/config"
	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/services"
	"worktimer/internal/validation"
)

type testAPIs struct {
	api      API
	business BusinessAPI
	services *services.ServiceContainer
	now      time.Time
	user     *domain.User
	admin    *domain.User
}

func setupTestAPIs(t *testing.T) *testAPIs {
	t.Helper()

	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cfg := config.NewConfig()
	env := &testAPIs{now: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)}
	env.services = services.NewServiceContainer(repo, services.Options{
		Config: cfg,
		Clock:  func() time.Time { return env.now },
		Hasher: services.NewBcryptHasher(4),
	})
	validator := validation.NewValidatorWithConfig(cfg)
	env.api = New(env.services, validator)
	env.business = NewBusinessAPI(env.services, validator)

	ctx := context.Background()
	env.user, err = env.services.AccountService.CreateUser(ctx, "ada@example.com", "correct horse", false)
	require.NoError(t, err)
	env.admin, err = env.services.AccountService.CreateUser(ctx, "root@example.com", "correct horse", true)
	require.NoError(t, err)
	return env
}

func (e *testAPIs) project(t *testing.T, name string) *domain.Project {
	t.Helper()
	project, err := e.api.CreateProject(context.Background(), e.user.ID, ProjectForm{Name: name})
	require.NoError(t, err)
	return project
}

func assertErrorType(errorType errors.ErrorType) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.True(t, appErr.IsType(errorType), "got %s", appErr.Type)
	}
}
