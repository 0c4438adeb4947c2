package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration options for the worktimer application
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Time        TimeConfig
	Validation  ValidationConfig
	Reports     ReportsConfig
	Scheduler   SchedulerConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `env:"WT_DB_DIR" mapstructure:"dir"`
	Filename       string        `env:"WT_DB_FILENAME" mapstructure:"filename"`
	QueryTimeout   time.Duration `env:"WT_DB_QUERY_TIMEOUT" mapstructure:"query_timeout"`
	DirPermissions uint32        `env:"WT_DB_DIR_PERMISSIONS" mapstructure:"dir_permissions"`
}

// ServerConfig holds HTTP server and session cookie configuration
type ServerConfig struct {
	Addr          string        `env:"WT_SERVER_ADDR" mapstructure:"addr"`
	SessionCookie string        `env:"WT_SERVER_SESSION_COOKIE" mapstructure:"session_cookie"`
	SessionTTL    time.Duration `env:"WT_SERVER_SESSION_TTL" mapstructure:"session_ttl"`
	SecureCookie  bool          `env:"WT_SERVER_SECURE_COOKIE" mapstructure:"secure_cookie"`
}

// TimeConfig holds time formatting and calendar configuration.
// Timezone decides which calendar day an entry belongs to and where
// report windows start and end.
type TimeConfig struct {
	DisplayFormat string `env:"WT_TIME_DISPLAY_FORMAT" mapstructure:"display_format"`
	Timezone      string `env:"WT_TIME_TIMEZONE" mapstructure:"timezone"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	DescriptionMaxLength int `env:"WT_VALIDATION_DESCRIPTION_MAX" mapstructure:"description_max_length"`
	ProjectNameMaxLength int `env:"WT_VALIDATION_PROJECT_NAME_MAX" mapstructure:"project_name_max_length"`
	PasswordMinLength    int `env:"WT_VALIDATION_PASSWORD_MIN" mapstructure:"password_min_length"`
}

// ReportsConfig holds report defaults
type ReportsConfig struct {
	DefaultCurrency string `env:"WT_REPORTS_DEFAULT_CURRENCY" mapstructure:"default_currency"`
}

// SchedulerConfig holds cron specs for maintenance jobs. An empty spec disables the job.
type SchedulerConfig struct {
	BackfillSpec     string `env:"WT_SCHEDULER_BACKFILL" mapstructure:"backfill"`
	SessionPurgeSpec string `env:"WT_SCHEDULER_SESSION_PURGE" mapstructure:"session_purge"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout     time.Duration `env:"WT_APP_TIMEOUT" mapstructure:"timeout"`
	Verbose     bool          `env:"WT_APP_VERBOSE" mapstructure:"verbose"`
	AllowSignup bool          `env:"WT_APP_ALLOW_SIGNUP" mapstructure:"allow_signup"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Dir:            filepath.Join(homeDir, ".worktimer"),
			Filename:       "worktimer.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			SessionCookie: "__session",
			SessionTTL:    30 * 24 * time.Hour,
		},
		Time: TimeConfig{
			DisplayFormat: "2006-01-02 15:04:05",
			Timezone:      "UTC",
		},
		Validation: ValidationConfig{
			DescriptionMaxLength: 1000,
			ProjectNameMaxLength: 255,
			PasswordMinLength:    8,
		},
		Reports: ReportsConfig{
			DefaultCurrency: "€",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// Location returns the configured calendar timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Time.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadFromEnvironment loads configuration from WT_* environment variables.
// Values that fail to parse are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	setString(&c.Database.Dir, "WT_DB_DIR")
	setString(&c.Database.Filename, "WT_DB_FILENAME")
	setDuration(&c.Database.QueryTimeout, "WT_DB_QUERY_TIMEOUT")
	if perms := os.Getenv("WT_DB_DIR_PERMISSIONS"); perms != "" {
		if p, err := strconv.ParseUint(perms, 8, 32); err == nil {
			c.Database.DirPermissions = uint32(p)
		}
	}

	setString(&c.Server.Addr, "WT_SERVER_ADDR")
	setString(&c.Server.SessionCookie, "WT_SERVER_SESSION_COOKIE")
	setDuration(&c.Server.SessionTTL, "WT_SERVER_SESSION_TTL")
	setBool(&c.Server.SecureCookie, "WT_SERVER_SECURE_COOKIE")

	setString(&c.Time.DisplayFormat, "WT_TIME_DISPLAY_FORMAT")
	setString(&c.Time.Timezone, "WT_TIME_TIMEZONE")

	setInt(&c.Validation.DescriptionMaxLength, "WT_VALIDATION_DESCRIPTION_MAX")
	setInt(&c.Validation.ProjectNameMaxLength, "WT_VALIDATION_PROJECT_NAME_MAX")
	setInt(&c.Validation.PasswordMinLength, "WT_VALIDATION_PASSWORD_MIN")

	setString(&c.Reports.DefaultCurrency, "WT_REPORTS_DEFAULT_CURRENCY")

	setString(&c.Scheduler.BackfillSpec, "WT_SCHEDULER_BACKFILL")
	setString(&c.Scheduler.SessionPurgeSpec, "WT_SCHEDULER_SESSION_PURGE")

	setDuration(&c.Application.Timeout, "WT_APP_TIMEOUT")
	setBool(&c.Application.Verbose, "WT_APP_VERBOSE")
	setBool(&c.Application.AllowSignup, "WT_APP_ALLOW_SIGNUP")

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.Dir == "" && c.Database.Filename != ":memory:" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.SessionCookie == "" {
		return &ConfigError{Field: "server.session_cookie", Message: "session cookie name cannot be empty"}
	}
	if c.Server.SessionTTL <= 0 {
		return &ConfigError{Field: "server.session_ttl", Message: "session ttl must be positive"}
	}

	if c.Time.DisplayFormat == "" {
		return &ConfigError{Field: "time.display_format", Message: "display format cannot be empty"}
	}
	if _, err := time.LoadLocation(c.Time.Timezone); err != nil {
		return &ConfigError{Field: "time.timezone", Message: "unknown timezone " + strconv.Quote(c.Time.Timezone)}
	}

	if c.Validation.DescriptionMaxLength < 1 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length must be at least 1"}
	}
	if c.Validation.ProjectNameMaxLength < 1 {
		return &ConfigError{Field: "validation.project_name_max_length", Message: "project name maximum length must be at least 1"}
	}
	if c.Validation.PasswordMinLength < 1 {
		return &ConfigError{Field: "validation.password_min_length", Message: "password minimum length must be at least 1"}
	}

	if c.Reports.DefaultCurrency == "" {
		return &ConfigError{Field: "reports.default_currency", Message: "default currency cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
