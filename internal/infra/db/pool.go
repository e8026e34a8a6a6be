package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"news-api/internal/observability/metrics"
	"news-api/internal/resilience/circuitbreaker"
)

// Querier is the statement-execution surface shared by *sql.DB and *Pool.
// Repositories depend on it so they can run against either. Single-row reads
// go through QueryOne so the circuit breaker observes them too.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// QueryOne runs a query expected to return at most one row and scans it into
// dest. It returns sql.ErrNoRows when the result is empty.
func QueryOne(ctx context.Context, q Querier, query string, args []any, dest ...any) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	return rows.Close()
}

// Pool is the bounded connection pool every statement goes through.
//
// Each statement acquires a connection from the underlying *sql.DB and releases it
// when the statement (or its *sql.Rows) completes, success or failure. At most
// MaxOpenConns connections are live; further callers wait for one to free up.
// Statements run detached from the caller's cancellation so an issued statement
// is never aborted half-way by a client that went away.
type Pool struct {
	db      *sql.DB
	driver  Driver
	breaker *circuitbreaker.CircuitBreaker
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithCircuitBreaker routes statements through cb.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) PoolOption {
	return func(p *Pool) { p.breaker = cb }
}

// NewPool wraps an already configured *sql.DB.
func NewPool(sqlDB *sql.DB, driver Driver, opts ...PoolOption) *Pool {
	p := &Pool{db: sqlDB, driver: driver}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDBBreaker returns the circuit breaker used by Open. Constraint violations and
// empty results are the caller's problem, not the database's, and never trip it.
func NewDBBreaker() *circuitbreaker.CircuitBreaker {
	cfg := circuitbreaker.DBConfig()
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, sql.ErrNoRows) || IsClientError(err)
	}
	return circuitbreaker.New(cfg)
}

// QueryContext runs a query that returns rows. The connection is released when
// the returned rows are closed.
func (p *Pool) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { metrics.RecordPoolStatement("query", time.Since(start)) }()

	if p.breaker == nil {
		return p.db.QueryContext(ctx, query, args...)
	}
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

// ExecContext runs a statement that returns no rows.
func (p *Pool) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { metrics.RecordPoolStatement("exec", time.Since(start)) }()

	if p.breaker == nil {
		return p.db.ExecContext(ctx, query, args...)
	}
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// PingContext verifies a connection to the database is still alive.
func (p *Pool) PingContext(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Stats returns the connection pool statistics.
func (p *Pool) Stats() sql.DBStats {
	return p.db.Stats()
}

// BreakerState reports the circuit breaker state, or "disabled".
func (p *Pool) BreakerState() string {
	if p.breaker == nil {
		return "disabled"
	}
	return p.breaker.State().String()
}

// BreakerOpen reports whether statements are currently being rejected.
func (p *Pool) BreakerOpen() bool {
	return p.breaker != nil && p.breaker.State() == gobreaker.StateOpen
}

// Driver returns the SQL dialect the pool talks to.
func (p *Pool) Driver() Driver {
	return p.driver
}

// Close stops new statements from starting and waits for in-flight ones to finish.
func (p *Pool) Close() error {
	return p.db.Close()
}
