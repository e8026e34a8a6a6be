// Package db owns the database connection pool: opening it, bootstrapping the
// news table and executing statements with bounded concurrency.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"news-api/internal/observability/metrics"
	"news-api/internal/resilience/retry"
)

// Driver is a database/sql driver name supported by the service.
type Driver string

const (
	// DriverPostgres selects PostgreSQL through pgx.
	DriverPostgres Driver = "pgx"
	// DriverSQLite selects the pure-Go SQLite driver.
	DriverSQLite Driver = "sqlite"
)

// Valid reports whether d is a supported driver.
func (d Driver) Valid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	Driver          Driver
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	CircuitBreaker  bool
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Driver:          DriverPostgres,
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		CircuitBreaker:  true,
	}
}

// Open creates the connection pool, waits for the database to accept
// connections and registers the pool statistics with Prometheus.
func Open(ctx context.Context, cfg ConnectionConfig) (*Pool, error) {
	if !cfg.Driver.Valid() {
		return nil, fmt.Errorf("open database: unsupported driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("open database: DSN is required")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("open database: MaxOpenConns must be positive, got %d", cfg.MaxOpenConns)
	}

	sqlDB, err := sql.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("driver", string(cfg.Driver)),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime),
		slog.Bool("circuit_breaker", cfg.CircuitBreaker))

	err = retry.WithBackoff(ctx, retry.DBConnectConfig(), func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	metrics.RegisterDBStats(sqlDB, "news")

	var opts []PoolOption
	if cfg.CircuitBreaker {
		opts = append(opts, WithCircuitBreaker(NewDBBreaker()))
	}

	slog.Info("database connection established successfully")
	return NewPool(sqlDB, cfg.Driver, opts...), nil
}
