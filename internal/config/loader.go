package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML file named by WT_CONFIG_FILE, if any
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	return l.load(os.Getenv("WT_CONFIG_FILE"))
}

func (l *Loader) load(configFile string) (*Config, error) {
	if configFile != "" {
		if err := l.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// loadFile merges a YAML file into the current configuration. Keys absent
// from the file keep their current value.
func (l *Loader) loadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("cannot read %s: %v", path, err)}
	}
	if err := v.Unmarshal(l.config); err != nil {
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("cannot decode %s: %v", path, err)}
	}
	return nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	configFile := os.Getenv("WT_CONFIG_FILE")
	if overrides != nil && overrides.ConfigFile != nil && *overrides.ConfigFile != "" {
		configFile = *overrides.ConfigFile
	}

	config, err := l.load(configFile)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration

	ServerAddr *string

	Timezone   *string
	TimeFormat *string

	Currency *string

	BackfillSpec     *string
	SessionPurgeSpec *string

	Timeout     *time.Duration
	Verbose     *bool
	AllowSignup *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	overrideString(&config.Database.Dir, overrides.DBDir)
	overrideString(&config.Database.Filename, overrides.DBFilename)
	if overrides.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *overrides.DBQueryTimeout
	}

	overrideString(&config.Server.Addr, overrides.ServerAddr)

	overrideString(&config.Time.Timezone, overrides.Timezone)
	overrideString(&config.Time.DisplayFormat, overrides.TimeFormat)

	overrideString(&config.Reports.DefaultCurrency, overrides.Currency)

	overrideString(&config.Scheduler.BackfillSpec, overrides.BackfillSpec)
	overrideString(&config.Scheduler.SessionPurgeSpec, overrides.SessionPurgeSpec)

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.AllowSignup != nil {
		config.Application.AllowSignup = *overrides.AllowSignup
	}
}

func overrideString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
