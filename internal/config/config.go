// Package config loads the settings of the overlap command from defaults,
// an optional configuration file and OVERLAP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, e.g. OVERLAP_SOLVER_TOLERANCE.
const EnvPrefix = "OVERLAP"

// Config holds the entire application configuration.
type Config struct {
	Solver  SolverConfig `mapstructure:"solver" yaml:"solver"`
	Workers int          `mapstructure:"workers" yaml:"workers"`
	Logger  LoggerConfig `mapstructure:"logger" yaml:"logger"`
}

// SolverConfig tunes the overlap queries. Zero values select the solver defaults,
// which depend on the dimension and the scalar type.
type SolverConfig struct {
	MaxIterations  int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	Tolerance      float64 `mapstructure:"tolerance" yaml:"tolerance"`
	FallbackMargin float64 `mapstructure:"fallback_margin" yaml:"fallback_margin"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// NewDefaultConfig returns the configuration made of defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Solver --
	v.SetDefault("solver.max_iterations", 0)
	v.SetDefault("solver.tolerance", 0.0)
	v.SetDefault("solver.fallback_margin", 0.0)

	v.SetDefault("workers", 4)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "overlap")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
}

// Load reads the configuration file at path, when given, on top of the defaults and binds
// the environment variables. A missing file is an error only when path is not empty.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("overlap")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be a positive integer")
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver configuration invalid: %w", err)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	return nil
}

// Validate checks the solver configuration.
func (s *SolverConfig) Validate() error {
	if s.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}
	if s.Tolerance < 0 || s.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in [0, 1)")
	}
	if s.FallbackMargin < 0 {
		return fmt.Errorf("fallback_margin must not be negative")
	}
	return nil
}
