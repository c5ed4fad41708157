package domain

import (
	"fmt"
	"sort"
)

// Row is one record of TableName. Values holds every column returned by the
// database, including columns this application never edits.
type Row struct {
	ID     int64
	Values map[string]any
}

// Get returns the value stored for column, or nil when absent.
func (r Row) Get(column string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[column]
}

// Clone returns a copy whose Values map can be mutated independently.
func (r Row) Clone() Row {
	values := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{ID: r.ID, Values: values}
}

// Snapshot is the ordered set of rows read at one point in time.
type Snapshot struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the snapshot holds no rows.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Rows) == 0
}

// Clone returns a deep copy suitable for editing. Row order and the id set are
// preserved, so the copy always satisfies the fixed-row-count invariant.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Columns: append([]string(nil), s.Columns...),
		Rows:    make([]Row, len(s.Rows)),
	}
	for i, r := range s.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Index returns rows keyed by id.
func (s *Snapshot) Index() map[int64]Row {
	idx := make(map[int64]Row, len(s.Rows))
	for _, r := range s.Rows {
		idx[r.ID] = r
	}
	return idx
}

// Find returns the row with the given id.
func (s *Snapshot) Find(id int64) (Row, bool) {
	for _, r := range s.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Set stores value for field on row id. Only watched fields are settable.
func (s *Snapshot) Set(id int64, f Field, value any) error {
	if !f.Valid() {
		return fmt.Errorf("field %q: %w", f, ErrFieldNotEditable)
	}
	for i := range s.Rows {
		if s.Rows[i].ID == id {
			if s.Rows[i].Values == nil {
				s.Rows[i].Values = make(map[string]any)
			}
			s.Rows[i].Values[string(f)] = value
			return nil
		}
	}
	return fmt.Errorf("row %d: %w", id, ErrRowNotFound)
}

// ApplyInput stores user-typed text for field on row id. Text identical to
// the current display form leaves the loaded value in place; anything else is
// parsed with ParseInput. Line endings are compared and stored as LF, since
// browsers submit multi-line fields with CRLF.
func (s *Snapshot) ApplyInput(id int64, f Field, raw string) error {
	if !f.Valid() {
		return fmt.Errorf("field %q: %w", f, ErrFieldNotEditable)
	}
	row, ok := s.Find(id)
	if !ok {
		return fmt.Errorf("row %d: %w", id, ErrRowNotFound)
	}
	raw = NormalizeNewlines(raw)
	if raw == NormalizeNewlines(FormatValue(row.Get(string(f)))) {
		return nil
	}
	v, err := ParseInput(f, raw)
	if err != nil {
		return err
	}
	return s.Set(id, f, v)
}

// SameIDs reports whether a and b hold exactly the same id set.
func SameIDs(a, b *Snapshot) bool {
	if len(a.Rows) != len(b.Rows) {
		return false
	}
	ids := make(map[int64]struct{}, len(a.Rows))
	for _, r := range a.Rows {
		ids[r.ID] = struct{}{}
	}
	for _, r := range b.Rows {
		if _, ok := ids[r.ID]; !ok {
			return false
		}
		delete(ids, r.ID)
	}
	return len(ids) == 0
}

// EnsureColumns appends any missing watched field to Columns and sets it to nil
// on rows that lack it. Rows are sorted by ascending id.
func (s *Snapshot) EnsureColumns() {
	present := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		present[c] = true
	}
	for _, f := range watchedFields {
		if present[string(f)] {
			continue
		}
		s.Columns = append(s.Columns, string(f))
		for i := range s.Rows {
			if s.Rows[i].Values == nil {
				s.Rows[i].Values = make(map[string]any)
			}
			if _, ok := s.Rows[i].Values[string(f)]; !ok {
				s.Rows[i].Values[string(f)] = nil
			}
		}
	}
	sort.SliceStable(s.Rows, func(i, j int) bool { return s.Rows[i].ID < s.Rows[j].ID })
}
