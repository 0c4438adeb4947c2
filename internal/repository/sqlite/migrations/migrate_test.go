package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestLoad(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}
	assert.Equal(t, "add_time_entry_duration", migrations[2].Name)
}

func TestRunMigrations(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	// Act
	ran, err := RunMigrations(ctx, db)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ran)
	assert.Contains(t, columnNames(t, db, "time_entries"), "duration")
	assert.Contains(t, columnNames(t, db, "projects"), "color")

	ran, err = RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, ran, "second run applies nothing")
}

func TestRollbackLast(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)
	_, err := RunMigrations(ctx, db)
	require.NoError(t, err)

	// Act
	version, err := RollbackLast(ctx, db)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.NotContains(t, columnNames(t, db, "time_entries"), "duration")

	applied, err := AppliedVersions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true}, applied)

	ran, err := RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ran)
}

func TestRollbackLast_NothingApplied(t *testing.T) {
	version, err := RollbackLast(context.Background(), openMemoryDB(t))
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestParseFilename(t *testing.T) {
	version, name := parseFilename("000002_create_projects_and_time_entries.up.sql")
	assert.Equal(t, 2, version)
	assert.Equal(t, "create_projects_and_time_entries", name)

	version, _ = parseFilename("readme.up.sql")
	assert.Zero(t, version)
}
