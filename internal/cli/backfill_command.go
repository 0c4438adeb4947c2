package cli

import (
	"context"
	"fmt"

	"worktimer/internal/services"
)

// BackfillCommand fills missing cached durations
type BackfillCommand struct {
	app *App
}

// NewBackfillCommand creates a new backfill command handler
func NewBackfillCommand(app *App) *BackfillCommand {
	return &BackfillCommand{app: app}
}

// Execute backfills one user, or every user when email is empty
func (c *BackfillCommand) Execute(ctx context.Context, email string) error {
	if email == "" {
		updated, err := services.BackfillAllUsers(ctx, c.app.services.AccountService, c.app.services.TimeService)
		if err != nil {
			return c.app.errs.Handle("backfill durations", err)
		}
		fmt.Fprintf(c.app.out, "Backfilled %d entries across all users\n", updated)
		return nil
	}

	user, err := c.app.resolveUser(ctx, email)
	if err != nil {
		return c.app.errs.Handle("find user", err)
	}
	updated, err := c.app.business.BackfillDurations(ctx, user.ID)
	if err != nil {
		return c.app.errs.Handle("backfill durations", err)
	}
	fmt.Fprintf(c.app.out, "Backfilled %d entries for %s\n", updated, user.Email)
	return nil
}
