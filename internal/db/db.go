package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/objetivos/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// DB is the process-wide connection pool together with its SQL dialect.
// It is created once at startup and passed to every component explicitly.
type DB struct {
	*sql.DB
	Dialect Dialect
}

var sqlOpen = sql.Open

// Open prepares the pool for the database named by dsn. It does not require
// the server to be up: the pool connects lazily, and each load reports an
// unreachable server as domain.ErrConnectionFailed. Use Verify to check
// reachability up front.
func Open(ctx context.Context, dsn string) (*DB, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite && isSQLiteFile(source) {
		if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	conn, err := sqlOpen(dialect.DriverName(), source)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w: %w", dialect, domain.ErrConnectionFailed, err)
	}

	if dialect == DialectSQLite {
		if err := configureSQLite(ctx, conn, source); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return &DB{DB: conn, Dialect: dialect}, nil
}

// Verify pings the server. Failures are reported as domain.ErrConnectionFailed.
func (d *DB) Verify(ctx context.Context) error {
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s database: %w: %w", d.Dialect, domain.ErrConnectionFailed, err)
	}
	return nil
}

func configureSQLite(ctx context.Context, conn *sql.DB, source string) error {
	// Every connection to ":memory:" is a separate database.
	if source == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if isSQLiteFile(source) {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			return fmt.Errorf("setting WAL mode: %w: %w", domain.ErrConnectionFailed, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w: %w", domain.ErrConnectionFailed, err)
	}
	return nil
}

func isSQLiteFile(source string) bool {
	return source != ":memory:" && !strings.HasPrefix(source, "file:")
}
