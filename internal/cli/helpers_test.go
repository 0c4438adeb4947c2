package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"worktimer/internal/config"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/services"
)

// keepOpen lets several invocations share one in-memory database
type keepOpen struct {
	*sqlite.SQLiteRepository
}

func (keepOpen) Close() error { return nil }

type cliEnv struct {
	repo *sqlite.SQLiteRepository
	now  time.Time
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("WT_CONFIG_FILE", "")
	t.Setenv("WT_DB_DIR", t.TempDir())

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return &cliEnv{repo: repo, now: time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)}
}

// run executes one CLI invocation and returns what it printed to stdout
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(func(*config.Config, *slog.Logger) (sqlite.Repository, error) {
		return keepOpen{e.repo}, nil
	})
	root.options = services.Options{
		Clock:  func() time.Time { return e.now },
		Hasher: services.NewBcryptHasher(4),
	}

	var out bytes.Buffer
	root.cmd.SetOut(&out)
	root.cmd.SetErr(io.Discard)
	root.cmd.SetArgs(args)

	err := root.Execute(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err)
	return out
}
