package repository

import (
	"context"

	"github.com/alexanderramin/objetivos/internal/domain"
)

// AreaRepo reads and writes the areas_objetivos table.
type AreaRepo interface {
	// List returns every row ordered by ascending id.
	List(ctx context.Context) (*domain.Snapshot, error)
	// UpdateField writes one watched field of one row.
	UpdateField(ctx context.Context, id int64, f domain.Field, value any) error
}
