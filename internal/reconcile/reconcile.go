// Package reconcile compares an edited snapshot against the snapshot it was
// derived from and persists each changed field individually.
package reconcile

import (
	"context"
	"fmt"

	"github.com/alexanderramin/objetivos/internal/domain"
)

// Persister writes a single field of a single row as one atomic unit.
type Persister interface {
	UpdateField(ctx context.Context, id int64, f domain.Field, value any) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, id int64, f domain.Field, value any) error

func (fn PersisterFunc) UpdateField(ctx context.Context, id int64, f domain.Field, value any) error {
	return fn(ctx, id, f, value)
}

// Change is one field whose edited value differs from the loaded value.
type Change struct {
	ID    int64
	Field domain.Field
	Old   any
	New   any
}

// FieldError records a change that could not be persisted.
type FieldError struct {
	Change Change
	Err    error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d field %s: %v", e.Change.ID, e.Change.Field, e.Err)
}

func (e FieldError) Unwrap() error { return e.Err }

// Result summarizes one save action.
type Result struct {
	Persisted []Change
	Failed    []FieldError
}

// PersistedCount is the number of fields written successfully.
func (r *Result) PersistedCount() int { return len(r.Persisted) }

// Diff lists, in edited-row order and then field order, every watched field
// whose canonical value changed. Neither snapshot is modified.
//
// Both snapshots must hold the same id set; otherwise ErrSnapshotMismatch is
// returned. Fields outside the allow-list yield ErrFieldNotEditable.
func Diff(original, edited *domain.Snapshot, fields []domain.Field) ([]Change, error) {
	for _, f := range fields {
		if !f.Valid() {
			return nil, fmt.Errorf("field %q: %w", f, domain.ErrFieldNotEditable)
		}
	}
	if original == nil || edited == nil {
		return nil, fmt.Errorf("nil snapshot: %w", domain.ErrSnapshotMismatch)
	}
	if !domain.SameIDs(original, edited) {
		return nil, fmt.Errorf("%d loaded rows vs %d edited rows: %w",
			len(original.Rows), len(edited.Rows), domain.ErrSnapshotMismatch)
	}

	byID := original.Index()
	var changes []Change
	for _, row := range edited.Rows {
		orig := byID[row.ID]
		for _, f := range fields {
			newValue := row.Get(string(f))
			oldValue := orig.Get(string(f))
			if domain.ValuesEqual(newValue, oldValue) {
				continue
			}
			changes = append(changes, Change{ID: row.ID, Field: f, Old: oldValue, New: newValue})
		}
	}
	return changes, nil
}

// Apply issues one persistence call per change. A failed call is recorded and
// the remaining changes are still attempted; nothing is retried.
func Apply(ctx context.Context, p Persister, changes []Change) *Result {
	res := &Result{}
	for _, c := range changes {
		if err := p.UpdateField(ctx, c.ID, c.Field, c.New); err != nil {
			res.Failed = append(res.Failed, FieldError{Change: c, Err: err})
			continue
		}
		res.Persisted = append(res.Persisted, c)
	}
	return res
}

// Reconcile diffs edited against original over fields and persists every
// change through p.
func Reconcile(ctx context.Context, p Persister, original, edited *domain.Snapshot, fields []domain.Field) (*Result, error) {
	changes, err := Diff(original, edited, fields)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, p, changes), nil
}
