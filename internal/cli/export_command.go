package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ExportCommand writes a user's entries as CSV
type ExportCommand struct {
	app *App
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app}
}

// Execute writes to stdout when output is empty. An output naming a
// directory receives a file with the default export name.
func (c *ExportCommand) Execute(ctx context.Context, email, output string) error {
	user, err := c.app.resolveUser(ctx, email)
	if err != nil {
		return c.app.errs.Handle("find user", err)
	}

	if output == "" {
		if _, err := c.app.business.ExportCSV(ctx, user.ID, c.app.out); err != nil {
			return c.app.errs.Handle("export entries", err)
		}
		return nil
	}

	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, c.app.business.ExportFilename())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	count, err := c.app.business.ExportCSV(ctx, user.ID, f)
	if err != nil {
		_ = os.Remove(output)
		return c.app.errs.Handle("export entries", err)
	}
	fmt.Fprintf(c.app.out, "Exported %d entries to %s\n", count, output)
	return nil
}
