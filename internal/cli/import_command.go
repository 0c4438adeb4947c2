package cli

import (
	"context"
	"fmt"
	"os"
)

// ImportCommand loads a CSV file into a user's entries
type ImportCommand struct {
	app *App
}

// NewImportCommand creates a new import command handler
func NewImportCommand(app *App) *ImportCommand {
	return &ImportCommand{app: app}
}

// Execute imports path. Nothing is written unless every row is valid.
func (c *ImportCommand) Execute(ctx context.Context, email, path string) error {
	user, err := c.app.resolveUser(ctx, email)
	if err != nil {
		return c.app.errs.Handle("find user", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := c.app.business.ImportCSV(ctx, user.ID, f)
	if err != nil {
		return c.app.errs.Handle("import entries", err)
	}

	fmt.Fprintf(c.app.out, "Imported %d entries (%d projects created", result.Imported, result.ProjectsCreated)
	if result.ClosedOpen > 0 {
		fmt.Fprintf(c.app.out, ", %d running entries stopped", result.ClosedOpen)
	}
	fmt.Fprintln(c.app.out, ")")
	return nil
}
