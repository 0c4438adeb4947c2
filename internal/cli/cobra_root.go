package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"worktimer/internal/api"
	"worktimer/internal/config"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/services"
)

// RepositoryOpener opens the store once configuration is final
type RepositoryOpener func(cfg *config.Config, logger *slog.Logger) (sqlite.Repository, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	open    RepositoryOpener
	options services.Options
	app     *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(open RepositoryOpener) *RootCommand {
	root := &RootCommand{open: open}

	root.cmd = &cobra.Command{
		Use:   "worktimer",
		Short: "Track working time per project and bill it",
		Long: `worktimer records time entries against projects, keeps at most one entry
running per user, and turns the tracked time into per-project reports.

EXAMPLES:
  worktimer user create --email ada@example.com --password '...' --admin
  worktimer serve --addr :8080
  worktimer report --user ada@example.com --from 2024-01-01 --to 2024-01-31 --rate 80
  worktimer export --user ada@example.com -o .
  worktimer import --user ada@example.com entries.csv

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  WT_CONFIG_FILE                 YAML config file
  WT_DB_DIR, WT_DB_FILENAME      Database location (default: ~/.worktimer/worktimer.db)
  WT_SERVER_ADDR                 Listen address (default: :8080)
  WT_TIME_TIMEZONE               Timezone for days and report windows (default: UTC)
  WT_REPORTS_DEFAULT_CURRENCY    Currency label when a user has none
  WT_SCHEDULER_BACKFILL          Cron spec for the nightly backfill (empty disables)
  WT_SCHEDULER_SESSION_PURGE     Cron spec for the session purge (empty disables)
  WT_APP_ALLOW_SIGNUP            Allow self-service signup
  WT_DEBUG                       Debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the repository afterwards
func (r *RootCommand) Execute(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if r.app != nil {
		if closeErr := r.app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.app = nil
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML config file (overrides WT_CONFIG_FILE)")

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides WT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides WT_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides WT_DB_QUERY_TIMEOUT)")

	// Server configuration
	flags.String("addr", "", "HTTP listen address (overrides WT_SERVER_ADDR)")

	// Time configuration
	flags.String("timezone", "", "Timezone for days and report windows (overrides WT_TIME_TIMEZONE)")
	flags.String("time-format", "", "Time display format (overrides WT_TIME_DISPLAY_FORMAT)")

	// Reports configuration
	flags.String("currency", "", "Default currency label (overrides WT_REPORTS_DEFAULT_CURRENCY)")

	// Scheduler configuration
	flags.String("backfill-schedule", "", "Cron spec for the backfill job (overrides WT_SCHEDULER_BACKFILL)")
	flags.String("session-purge-schedule", "", "Cron spec for the session purge (overrides WT_SCHEDULER_SESSION_PURGE)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides WT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides WT_APP_VERBOSE)")
	flags.Bool("allow-signup", false, "Allow self-service signup (overrides WT_APP_ALLOW_SIGNUP)")
}

// overridesFromFlags collects only the flags that were set explicitly
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	overrides.ConfigFile = str("config")
	overrides.DBDir = str("db-dir")
	overrides.DBFilename = str("db-filename")
	overrides.DBQueryTimeout = dur("db-query-timeout")
	overrides.ServerAddr = str("addr")
	overrides.Timezone = str("timezone")
	overrides.TimeFormat = str("time-format")
	overrides.Currency = str("currency")
	overrides.BackfillSpec = str("backfill-schedule")
	overrides.SessionPurgeSpec = str("session-purge-schedule")
	overrides.Timeout = dur("app-timeout")
	overrides.Verbose = boolean("verbose")
	overrides.AllowSignup = boolean("allow-signup")
	return overrides
}

// setup loads configuration, builds the logger and opens the repository
func (r *RootCommand) setup(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().LoadWithOverrides(overridesFromFlags(r.cmd.PersistentFlags()))
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Application.Verbose)
	repo, err := r.open(cfg, logger)
	if err != nil {
		return err
	}

	r.app = NewApp(cfg, repo, logger, r.options, cmd.OutOrStdout())
	return nil
}

// withTimeout bounds a command by the configured application timeout
func (r *RootCommand) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), r.app.config.Application.Timeout)
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Serve the JSON API and run the scheduled maintenance jobs until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(r.app).Execute(cmd.Context())
		},
	}

	// Migrate command
	var down bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Show or roll back the database schema",
		Long: `Pending migrations run whenever the database is opened. This command lists
the applied versions; --down reverts the newest one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewMigrateCommand(r.app).Execute(ctx, down)
		},
	}
	migrateCmd.Flags().BoolVar(&down, "down", false, "Roll back the newest migration")

	// Backfill command
	var backfillUser string
	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing cached durations",
		Long:  "Compute the cached duration of closed entries that lack one, for one user or for everybody.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewBackfillCommand(r.app).Execute(ctx, backfillUser)
		},
	}
	backfillCmd.Flags().StringVar(&backfillUser, "user", "", "Email of the user (default: all users)")

	// Report command
	var (
		reportUser string
		reportForm api.ReportForm
		reportPDF  string
	)
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Show time per project for a date range",
		Long: `Show tracked time per project between two dates, both inclusive.
Dates default to the current month and the rate to the user's default rate.

Examples:
  worktimer report --user ada@example.com
  worktimer report --user ada@example.com --from 2024-01-01 --to 2024-01-31 --rate 80
  worktimer report --user ada@example.com --pdf january.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewReportCommand(r.app).Execute(ctx, reportUser, reportForm, reportPDF)
		},
	}
	reportCmd.Flags().StringVar(&reportUser, "user", "", "Email of the user")
	reportCmd.Flags().StringVar(&reportForm.DateFrom, "from", "", "First day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportForm.DateTo, "to", "", "Last day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportForm.HourlyRate, "rate", "", "Hourly rate used for billing")
	reportCmd.Flags().StringVar(&reportPDF, "pdf", "", "Write the report as PDF to this file")
	_ = reportCmd.MarkFlagRequired("user")

	// Export command
	var exportUser, exportOutput string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export time entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewExportCommand(r.app).Execute(ctx, exportUser, exportOutput)
		},
	}
	exportCmd.Flags().StringVar(&exportUser, "user", "", "Email of the user")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file or directory (default: stdout)")
	_ = exportCmd.MarkFlagRequired("user")

	// Import command
	var importUser string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import time entries from CSV",
		Long: `Import entries from a CSV file with the columns description, startTime,
endTime and project. Projects are matched by name and created when missing.
Nothing is imported unless every row is valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewImportCommand(r.app).Execute(ctx, importUser, args[0])
		},
	}
	importCmd.Flags().StringVar(&importUser, "user", "", "Email of the user")
	_ = importCmd.MarkFlagRequired("user")

	// User commands
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	var (
		newEmail    string
		newPassword string
		newAdmin    bool
	)
	userCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.withTimeout(cmd)
			defer cancel()
			return NewUserCommand(r.app).Create(ctx, newEmail, newPassword, newAdmin)
		},
	}
	userCreateCmd.Flags().StringVar(&newEmail, "email", "", "Email address")
	userCreateCmd.Flags().StringVar(&newPassword, "password", "", "Password")
	userCreateCmd.Flags().BoolVar(&newAdmin, "admin", false, "Grant administration rights")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)

	r.cmd.AddCommand(
		serveCmd,
		migrateCmd,
		backfillCmd,
		reportCmd,
		exportCmd,
		importCmd,
		userCmd,
	)
}

