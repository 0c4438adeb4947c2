package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"worktimer/internal/errors"
	"worktimer/internal/logging"
	"worktimer/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// SearchOptions filters and orders time entry queries. UserID is mandatory;
// every other field narrows the result further.
type SearchOptions struct {
	UserID     int64
	ProjectID  *int64
	StartFrom  *time.Time // inclusive
	StartTo    *time.Time // inclusive
	OpenOnly   bool
	OrderBy    string // start_time, created_at or updated_at
	Descending bool
	Limit      int
	Offset     int
	// WithProject preloads the owning project.
	WithProject bool
}

// Repository defines the interface for database operations
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id int64) error

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Settings
	GetSetting(ctx context.Context, id string) (*Setting, error)
	ListSettings(ctx context.Context) ([]*Setting, error)
	SaveSetting(ctx context.Context, setting *Setting) error

	// Projects
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, userID, id int64) (*Project, error)
	FindProjectByName(ctx context.Context, userID int64, name string) (*Project, error)
	ListProjects(ctx context.Context, userID int64) ([]*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, userID, id int64) error

	// Time entries
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	GetTimeEntry(ctx context.Context, userID, id int64) (*TimeEntry, error)
	SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error)
	CountTimeEntries(ctx context.Context, opts SearchOptions) (int64, error)
	UpdateTimeEntry(ctx context.Context, entry *TimeEntry) error
	DeleteTimeEntry(ctx context.Context, userID, id int64) error
	ListEntriesMissingDuration(ctx context.Context, userID int64) ([]*TimeEntry, error)
	SetTimeEntryDuration(ctx context.Context, id int64, duration int64) error

	// Aggregates
	SumDurationByProject(ctx context.Context, userID int64, from, to time.Time) ([]ProjectDuration, error)
	SumClosedDuration(ctx context.Context, userID int64, startFrom, endBefore time.Time) (int64, error)

	// WithinTransaction runs fn against a repository bound to one transaction.
	// fn must only use the repository it is given.
	WithinTransaction(ctx context.Context, fn func(repo Repository) error) error

	// Utility
	Close() error
}

// Options configures Open.
type Options struct {
	Path           string
	DirPermissions uint32
	Verbose        bool
	Logger         *slog.Logger
}

// SQLiteRepository implements Repository with GORM over a modernc.org/sqlite connection.
type SQLiteRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// New opens the database at dbPath with default options.
func New(dbPath string) (*SQLiteRepository, error) {
	return Open(Options{Path: dbPath})
}

// Open opens (creating if needed) the database, applies pending migrations
// and binds GORM to the connection.
func Open(opts Options) (*SQLiteRepository, error) {
	log := logging.OrDiscard(opts.Logger)
	ctx := context.Background()

	if err := ensureDir(opts.Path, opts.DirPermissions); err != nil {
		return nil, errors.NewDatabaseError("create database directory", err)
	}

	sqlDB, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// SQLite serialises writers anyway, and :memory: databases exist per connection.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	ran, err := migrations.RunMigrations(ctx, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}
	if len(ran) > 0 {
		log.Info("applied migrations", slog.Any("versions", ran), slog.String("path", opts.Path))
	}

	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: "sqlite",
		Conn:       sqlDB,
	}), &gorm.Config{
		Logger:                 newGormLogger(log, opts.Verbose),
		NowFunc:                storageNow,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, errors.NewDatabaseError("initialize orm", err)
	}

	return &SQLiteRepository{db: db, sqlDB: sqlDB}, nil
}

func newGormLogger(log *slog.Logger, verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// ensureDir creates the parent directory of a file database.
func ensureDir(path string, perms uint32) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if perms == 0 {
		perms = 0o755
	}
	if err := os.MkdirAll(dir, os.FileMode(perms)); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// RollbackLastMigration reverts the newest applied schema migration.
func (r *SQLiteRepository) RollbackLastMigration(ctx context.Context) (int, error) {
	version, err := migrations.RollbackLast(ctx, r.sqlDB)
	if err != nil {
		return 0, errors.NewDatabaseError("roll back migration", err)
	}
	return version, nil
}

// AppliedMigrations lists the applied schema versions in ascending order.
func (r *SQLiteRepository) AppliedMigrations(ctx context.Context) ([]int, error) {
	applied, err := migrations.AppliedVersions(ctx, r.sqlDB)
	if err != nil {
		return nil, errors.NewDatabaseError("list migrations", err)
	}
	all, err := migrations.Load()
	if err != nil {
		return nil, errors.NewDatabaseError("load migrations", err)
	}
	var versions []int
	for _, m := range all {
		if applied[m.Version] {
			versions = append(versions, m.Version)
		}
	}
	return versions, nil
}

// WithinTransaction runs fn inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *SQLiteRepository) WithinTransaction(ctx context.Context, fn func(repo Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLiteRepository{db: tx})
	})
	if err != nil {
		return HandleDatabaseError("transaction", err)
	}
	return nil
}

// Close closes the database connection. Transaction-bound repositories
// share the parent's connection and ignore Close.
func (r *SQLiteRepository) Close() error {
	if r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}
