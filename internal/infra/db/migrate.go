package db

import (
	"context"
	"fmt"
)

// newsTableDDL holds the CREATE statements for each dialect. The date column is a
// timestamp without time zone; filtering compares DATE(date) only.
var newsTableDDL = map[Driver][]string{
	DriverPostgres: {
		`
CREATE TABLE IF NOT EXISTS news (
    id             SERIAL PRIMARY KEY,
    name           TEXT NOT NULL,
    title          TEXT NOT NULL,
    date           TIMESTAMP NOT NULL,
    language       TEXT NOT NULL,
    summary        TEXT,
    keyword        TEXT,
    classification TEXT,
    background     TEXT,
    memo           TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_news_date ON news(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_news_name ON news(name)`,
		`CREATE INDEX IF NOT EXISTS idx_news_language ON news(language)`,
	},
	DriverSQLite: {
		`
CREATE TABLE IF NOT EXISTS news (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL,
    title          TEXT NOT NULL,
    date           DATETIME NOT NULL,
    language       TEXT NOT NULL,
    summary        TEXT,
    keyword        TEXT,
    classification TEXT,
    background     TEXT,
    memo           TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_news_date ON news(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_news_name ON news(name)`,
		`CREATE INDEX IF NOT EXISTS idx_news_language ON news(language)`,
	},
}

// EnsureSchema creates the news table and its indexes if they do not exist.
// It never alters or drops existing objects.
func EnsureSchema(ctx context.Context, q Querier, driver Driver) error {
	stmts, ok := newsTableDDL[driver]
	if !ok {
		return fmt.Errorf("ensure schema: unsupported driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
