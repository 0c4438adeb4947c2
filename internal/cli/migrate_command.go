package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// migrator is implemented by repositories that own a versioned schema
type migrator interface {
	RollbackLastMigration(ctx context.Context) (int, error)
	AppliedMigrations(ctx context.Context) ([]int, error)
}

// MigrateCommand reports the schema state. Pending migrations already ran
// when the database was opened; --down reverts the newest one.
type MigrateCommand struct {
	app *App
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(app *App) *MigrateCommand {
	return &MigrateCommand{app: app}
}

// Execute prints the applied versions, rolling back one first when down is set
func (c *MigrateCommand) Execute(ctx context.Context, down bool) error {
	m, ok := c.app.repo.(migrator)
	if !ok {
		return fmt.Errorf("repository does not support migrations")
	}

	if down {
		version, err := m.RollbackLastMigration(ctx)
		if err != nil {
			return c.app.errs.Handle("roll back migration", err)
		}
		if version == 0 {
			fmt.Fprintln(c.app.out, "No migration to roll back")
		} else {
			fmt.Fprintf(c.app.out, "Rolled back migration %d\n", version)
		}
	}

	applied, err := m.AppliedMigrations(ctx)
	if err != nil {
		return c.app.errs.Handle("list migrations", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(c.app.out, "No migrations applied")
		return nil
	}

	versions := make([]string, len(applied))
	for i, v := range applied {
		versions[i] = strconv.Itoa(v)
	}
	fmt.Fprintf(c.app.out, "Applied migrations: %s\n", strings.Join(versions, ", "))
	return nil
}
