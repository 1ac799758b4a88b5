package config

import (
	"errors"
	"time"
)

// ErrConfigInvalid wraps any validation failure during loading so callers
// can distinguish bad settings from IO faults.
var ErrConfigInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Migration MigrationConfig `mapstructure:"migration" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                string        `mapstructure:"url" validate:"required"`
	MaxOpenConns       int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	PoolAcquireTimeout time.Duration `mapstructure:"pool_acquire_timeout" validate:"gt=0"`
}

// MigrationConfig contains settings for the migration runner.
type MigrationConfig struct {
	LockTimeout time.Duration `mapstructure:"lock_timeout" validate:"gt=0"`
}
