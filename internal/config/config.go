// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"airline-analytics/internal/analytics"
	"airline-analytics/pkg/database"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "AIRLINE_ANALYTICS_"

// Supported database drivers.
const (
	DriverPostgres = database.DriverPostgres
	DriverSQLite   = database.DriverSQLite
)

// Config holds all runtime settings.
type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Logging   LoggingConfig   `envPrefix:"LOG_"`
	Tracing   TracingConfig   `envPrefix:"OTEL_"`
	Analytics AnalyticsConfig `envPrefix:"ANALYTICS_"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig selects and tunes the record store.
type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"airline"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"NAME" envDefault:"airline_analytics"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	Path            string        `env:"PATH" envDefault:"airline-analytics.db"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"1m"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// TracingConfig controls OTLP trace export. Export is off unless enabled and
// an endpoint is set.
type TracingConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"airline-analytics"`
}

// AnalyticsConfig holds domain defaults.
type AnalyticsConfig struct {
	DataDir          string `env:"DATA_DIR" envDefault:"./data"`
	BatchSize        int    `env:"BATCH_SIZE" envDefault:"500"`
	ExpenseYearFrom  int    `env:"EXPENSE_YEAR_FROM" envDefault:"2001"`
	ExpenseYearTo    int    `env:"EXPENSE_YEAR_TO" envDefault:"2024"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"airline_analytics"`
}

// LoadConfig parses AIRLINE_ANALYTICS_* variables, applying defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for driver %s", DriverPostgres)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for driver %s", DriverPostgres)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for driver %s", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be positive: %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("max idle connections (%d) exceeds max open connections (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.Logging.Level)
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing enabled without an endpoint")
	}

	if c.Analytics.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive: %d", c.Analytics.BatchSize)
	}
	if c.Analytics.ExpenseYearFrom > c.Analytics.ExpenseYearTo {
		return fmt.Errorf("expense year span is empty: %d-%d",
			c.Analytics.ExpenseYearFrom, c.Analytics.ExpenseYearTo)
	}
	return nil
}

// DSN builds the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// Connection returns the pool settings for database.Open.
func (d DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		DSN:             d.DSN(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

// ExpenseSpan is the inclusive year range of expense charts.
func (a AnalyticsConfig) ExpenseSpan() analytics.YearSpan {
	return analytics.YearSpan{From: a.ExpenseYearFrom, To: a.ExpenseYearTo}
}
