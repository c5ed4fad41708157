package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/objetivos/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call across all transactions it opens. Each field update runs in its own
// transaction, so FailOn selects which field write of a save action fails.
//
// ExecContext calls are counted starting at 1. Reads pass through.
type FailOnNthExecUoW struct {
	DB     *db.DB
	FailOn int32
	Err    error

	count atomic.Int32
	// Begun counts transactions opened; Committed counts successful commits.
	Begun     atomic.Int32
	Committed atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	u.Begun.Add(1)

	wrapped := &failOnNthExec{DBTX: tx, parent: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	u.Committed.Add(1)
	return nil
}

type failOnNthExec struct {
	db.DBTX
	parent *FailOnNthExecUoW
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.parent.count.Add(1)
	if n == f.parent.FailOn {
		return nil, f.parent.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
