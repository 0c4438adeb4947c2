package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"worktimer/internal/services"
	"worktimer/internal/web"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand runs the HTTP server and the maintenance scheduler until ctx ends
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Execute blocks until ctx is cancelled or the listener fails
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg := c.app.config

	// 1. Maintenance jobs
	scheduler := services.NewScheduler(cfg.Location(), cfg.Application.Timeout, c.app.log)
	if err := services.ScheduleMaintenance(scheduler, cfg.Scheduler, c.app.services); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 2. HTTP listener
	server := web.New(c.app.api, c.app.business, cfg.Server, c.app.log).HTTPServer(cfg.Server.Addr)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	c.app.log.Info("serving", slog.String("addr", cfg.Server.Addr), slog.Int("jobs", scheduler.Len()))

	// 3. Wait for a signal or a listener failure
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.app.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
