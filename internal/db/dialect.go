package db

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDSN is returned for connection strings whose scheme has no driver.
var ErrUnsupportedDSN = errors.New("unsupported connection string")

// Dialect identifies the database engine behind a connection string.
type Dialect int

const (
	DialectPostgres Dialect = iota + 1
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// DriverName is the database/sql driver registered for d.
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	case DialectSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// ParseDSN maps a connection string to a dialect and the data source name the
// driver expects.
//
//	postgres://..., postgresql://..., postgresql+psycopg2://...  -> pgx
//	sqlite://path, sqlite:///abs/path, file:..., :memory:        -> sqlite
func ParseDSN(dsn string) (Dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return 0, "", fmt.Errorf("empty: %w", ErrUnsupportedDSN)
	}
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return DialectSQLite, dsn, nil
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return 0, "", fmt.Errorf("%q has no scheme: %w", redact(dsn), ErrUnsupportedDSN)
	}
	// SQLAlchemy URLs carry the Python driver after a '+'.
	if base, _, found := strings.Cut(scheme, "+"); found {
		scheme = base
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DialectPostgres, "postgres://" + rest, nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return 0, "", fmt.Errorf("sqlite path missing: %w", ErrUnsupportedDSN)
		}
		return DialectSQLite, rest, nil
	}
	return 0, "", fmt.Errorf("scheme %q: %w", scheme, ErrUnsupportedDSN)
}

// redact hides everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "***"
	}
	if len(dsn) > 8 {
		return dsn[:8] + "***"
	}
	return dsn
}
