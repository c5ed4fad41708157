package testutil

import (
	"context"
	"testing"

	"github.com/alexanderramin/objetivos/internal/db"
)

// AreasSchema mirrors the production table plus one extra column that the
// application must carry through untouched.
const AreasSchema = `CREATE TABLE areas_objetivos (
	id             INTEGER PRIMARY KEY,
	area           TEXT NOT NULL DEFAULT '',
	responsavel    TEXT,
	objetivo       TEXT,
	periodo_inicio DATE,
	periodo_fim    DATE
)`

// NewTestDB creates an in-memory SQLite database holding an empty
// areas_objetivos table. The database is closed when the test completes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database := NewBareTestDB(t)
	if _, err := database.ExecContext(context.Background(), AreasSchema); err != nil {
		t.Fatalf("creating areas_objetivos: %v", err)
	}
	return database
}

// NewBareTestDB creates an in-memory SQLite database with no tables.
func NewBareTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// UnreachableDSN names a PostgreSQL server that refuses connections.
const UnreachableDSN = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1&sslmode=disable"

// NewUnreachableDB opens a pool whose every query fails to connect.
func NewUnreachableDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(context.Background(), UnreachableDSN)
	if err != nil {
		t.Fatalf("opening unreachable database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *db.DB) db.UnitOfWork {
	return db.NewUnitOfWork(database)
}
