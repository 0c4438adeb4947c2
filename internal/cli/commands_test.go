package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktimer/internal/repository/sqlite"
)

const sampleCSV = `description,startTime,endTime,project
design,2024-01-15T09:00:00.000Z,2024-01-15T10:30:00.000Z,Alpha
review,2024-01-16T14:00:00.000Z,2024-01-16T15:00:00.000Z,Beta
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUserCreate(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "user", "create", "--email", "Ada@Example.com", "--password", "correct horse", "--admin")
	assert.Contains(t, out, "Created admin ada@example.com")

	_, err := env.run(t, "user", "create", "--email", "ada@example.com", "--password", "correct horse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user")

	_, err = env.run(t, "user", "create", "--email", "grace@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestImportExportReport(t *testing.T) {
	// Arrange
	env := setupCLI(t)
	env.mustRun(t, "user", "create", "--email", "ada@example.com", "--password", "correct horse")

	// Act
	out := env.mustRun(t, "import", "--user", "ada@example.com", writeFile(t, "entries.csv", sampleCSV))

	// Assert
	assert.Equal(t, "Imported 2 entries (2 projects created)\n", out)

	t.Run("export to stdout", func(t *testing.T) {
		out := env.mustRun(t, "export", "--user", "ada@example.com")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "id,description,startTime,endTime,duration,createdAt,project", lines[0])
		assert.Contains(t, out, "design,2024-01-15T09:00:00.000Z,2024-01-15T10:30:00.000Z,5400000,")
	})

	t.Run("export into directory", func(t *testing.T) {
		dir := t.TempDir()
		out := env.mustRun(t, "export", "--user", "ada@example.com", "-o", dir)
		path := filepath.Join(dir, "work-timer-export-20240117120000.csv")
		assert.Equal(t, "Exported 2 entries to "+path+"\n", out)
		assert.FileExists(t, path)
	})

	t.Run("report table", func(t *testing.T) {
		out := env.mustRun(t, "report", "--user", "ada@example.com", "--from", "2024-01-01", "--to", "2024-01-31", "--rate", "100")
		assert.Contains(t, out, "Report 2024-01-01 - 2024-01-31")
		assert.Regexp(t, `Alpha\s+1:30:00\s+1\.50`, out)
		assert.Regexp(t, `Beta\s+1:00:00\s+1\.00`, out)
		assert.Regexp(t, `Total\s+2:30:00\s+2\.50`, out)
		assert.Contains(t, out, "Amount")
	})

	t.Run("report outside range", func(t *testing.T) {
		out := env.mustRun(t, "report", "--user", "ada@example.com", "--from", "2023-01-01", "--to", "2023-01-31")
		assert.Contains(t, out, "No time tracked in this period")
	})

	t.Run("report pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")
		out := env.mustRun(t, "report", "--user", "ada@example.com", "--pdf", path)
		assert.Equal(t, "Report written to "+path+"\n", out)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	})
}

func TestImportRejectsInvalidFile(t *testing.T) {
	env := setupCLI(t)
	env.mustRun(t, "user", "create", "--email", "ada@example.com", "--password", "correct horse")

	bad := "description,startTime,endTime,project\nwork,yesterday,2024-01-15T10:00:00.000Z,Alpha\n"
	_, err := env.run(t, "import", "--user", "ada@example.com", writeFile(t, "bad.csv", bad))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import entries: import failed at row 1")
	out := env.mustRun(t, "export", "--user", "ada@example.com")
	assert.Equal(t, "id,description,startTime,endTime,duration,createdAt,project\n", out)
}

func TestBackfill(t *testing.T) {
	// Arrange
	env := setupCLI(t)
	env.mustRun(t, "user", "create", "--email", "ada@example.com", "--password", "correct horse")
	ctx := context.Background()
	user, err := env.repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	project := &sqlite.Project{UserID: user.ID, Name: "Alpha", Color: "#336699"}
	require.NoError(t, env.repo.CreateProject(ctx, project))
	end := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, env.repo.CreateTimeEntry(ctx, &sqlite.TimeEntry{
		UserID: user.ID, ProjectID: project.ID, Description: "legacy",
		StartTime: end.Add(-time.Hour), EndTime: &end,
	}))

	// Act / Assert
	assert.Equal(t, "Backfilled 1 entries for ada@example.com\n", env.mustRun(t, "backfill", "--user", "ada@example.com"))
	assert.Equal(t, "Backfilled 0 entries across all users\n", env.mustRun(t, "backfill"))
}

func TestUserFlag(t *testing.T) {
	env := setupCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"report", []string{"report", "--user", "nobody@example.com"}, "failed to find user"},
		{"export", []string{"export", "--user", "nobody@example.com"}, "failed to find user"},
		{"backfill", []string{"backfill", "--user", "nobody@example.com"}, "failed to find user"},
		{"missing flag", []string{"export"}, `required flag(s) "user" not set`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMigrate(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "migrate")
	assert.Equal(t, "Applied migrations: 1, 2, 3\n", out)

	out = env.mustRun(t, "migrate", "--down")
	assert.Equal(t, "Rolled back migration 3\nApplied migrations: 1, 2\n", out)
}

func TestInvalidConfigFlag(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "migrate", "--timezone", "Mars/Olympus")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}
