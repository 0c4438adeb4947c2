package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"worktimer/internal/config"
	"worktimer/internal/errors"
	"worktimer/internal/repository/sqlite"
)

// testEnv bundles an in-memory repository, services wired to a settable
// clock and one user with one project.
type testEnv struct {
	repo     sqlite.Repository
	now      time.Time
	cfg      *config.Config
	services *ServiceContainer
	user     *sqlite.User
	project  *sqlite.Project
}

func (e *testEnv) clock() time.Time {
	return e.now
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	env := &testEnv{
		repo: repo,
		now:  time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC),
		cfg:  config.NewConfig(),
	}
	env.services = NewServiceContainer(repo, Options{
		Config: env.cfg,
		Clock:  env.clock,
		Hasher: NewBcryptHasher(bcrypt.MinCost),
	})
	env.user = env.createUser(t, "ada@example.com")
	env.project = env.createProject(t, env.user.ID, "Alpha")
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *sqlite.User {
	t.Helper()
	user := &sqlite.User{Email: email, PasswordHash: "x", Currency: "€"}
	require.NoError(t, e.repo.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createProject(t *testing.T, userID int64, name string) *sqlite.Project {
	t.Helper()
	project := &sqlite.Project{UserID: userID, Name: name, Color: "#336699"}
	require.NoError(t, e.repo.CreateProject(context.Background(), project))
	return project
}

// createEntry inserts an entry straight into the store. Closed entries are
// stored without a cached duration, the way legacy rows look.
func (e *testEnv) createEntry(t *testing.T, userID, projectID int64, start time.Time, end *time.Time) *sqlite.TimeEntry {
	t.Helper()
	entry := &sqlite.TimeEntry{
		UserID:      userID,
		ProjectID:   projectID,
		Description: "work",
		StartTime:   start,
		EndTime:     end,
	}
	require.NoError(t, e.repo.CreateTimeEntry(context.Background(), entry))
	return entry
}

func (e *testEnv) openEntries(t *testing.T, userID int64) []*sqlite.TimeEntry {
	t.Helper()
	rows, err := e.repo.SearchTimeEntries(context.Background(), sqlite.SearchOptions{UserID: userID, OpenOnly: true})
	require.NoError(t, err)
	return rows
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2024, month, d, hour, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func float64Ptr(f float64) *float64 { return &f }

func assertErrorType(errorType errors.ErrorType) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.True(t, appErr.IsType(errorType), "got %s", appErr.Type)
	}
}
