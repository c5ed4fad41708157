package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/objetivos/internal/db"
)

var testRowIDCounter atomic.Int64

// RowOption customizes a seeded areas_objetivos row.
type RowOption func(*seedRow)

type seedRow struct {
	id            int64
	area          string
	responsavel   any
	objetivo      any
	periodoInicio any
	periodoFim    any
}

func WithID(id int64) RowOption {
	return func(r *seedRow) { r.id = id }
}

func WithArea(area string) RowOption {
	return func(r *seedRow) { r.area = area }
}

func WithResponsavel(v string) RowOption {
	return func(r *seedRow) { r.responsavel = v }
}

func WithObjetivo(v string) RowOption {
	return func(r *seedRow) { r.objetivo = v }
}

// WithPeriodo sets both period dates; a zero time leaves the column NULL.
func WithPeriodo(inicio, fim time.Time) RowOption {
	return func(r *seedRow) {
		if !inicio.IsZero() {
			r.periodoInicio = inicio.Format("2006-01-02")
		}
		if !fim.IsZero() {
			r.periodoFim = fim.Format("2006-01-02")
		}
	}
}

// WithRawPeriodoInicio stores v verbatim, e.g. "" to mimic a blank date cell.
func WithRawPeriodoInicio(v any) RowOption {
	return func(r *seedRow) { r.periodoInicio = v }
}

// SeedRow inserts one row and returns its id. Unset ids are allocated from a
// process-wide counter starting at 1000.
func SeedRow(t *testing.T, database db.DBTX, opts ...RowOption) int64 {
	t.Helper()
	r := &seedRow{area: "Geral"}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == 0 {
		r.id = 1000 + testRowIDCounter.Add(1)
	}

	_, err := database.ExecContext(context.Background(),
		`INSERT INTO areas_objetivos (id, area, responsavel, objetivo, periodo_inicio, periodo_fim)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.id, r.area, r.responsavel, r.objetivo, r.periodoInicio, r.periodoFim,
	)
	if err != nil {
		t.Fatalf("seeding row %d: %v", r.id, err)
	}
	return r.id
}

// Date is shorthand for a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
