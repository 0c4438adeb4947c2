package cli

import (
	"context"
	"fmt"
)

// UserCommand manages accounts from the operator's shell
type UserCommand struct {
	app *App
}

// NewUserCommand creates a new user command handler
func NewUserCommand(app *App) *UserCommand {
	return &UserCommand{app: app}
}

// Create adds an account. Unlike signup it ignores the allowSignup setting.
func (c *UserCommand) Create(ctx context.Context, email, password string, admin bool) error {
	user, err := c.app.services.AccountService.CreateUser(ctx, email, password, admin)
	if err != nil {
		return c.app.errs.Handle("create user", err)
	}

	role := "user"
	if user.Admin {
		role = "admin"
	}
	fmt.Fprintf(c.app.out, "Created %s %s (id %d)\n", role, user.Email, user.ID)
	return nil
}
