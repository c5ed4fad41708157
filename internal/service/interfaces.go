package service

import (
	"context"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/reconcile"
)

// AreaService is the editor's use-case surface: load the grid, save an
// edited copy of it, or set a single field.
type AreaService interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, original, edited *domain.Snapshot) (*reconcile.Result, error)
	SetField(ctx context.Context, id int64, f domain.Field, value any) (*reconcile.Result, error)
}
