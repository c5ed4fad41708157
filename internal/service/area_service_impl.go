package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/reconcile"
	"github.com/alexanderramin/objetivos/internal/repository"
)

type areaService struct {
	areas    repository.AreaRepo
	uow      db.UnitOfWork
	dialect  db.Dialect
	observer UseCaseObserver
}

func NewAreaService(
	areas repository.AreaRepo,
	uow db.UnitOfWork,
	dialect db.Dialect,
	observers ...UseCaseObserver,
) AreaService {
	return &areaService{
		areas:    areas,
		uow:      uow,
		dialect:  dialect,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *areaService) Load(ctx context.Context) (snap *domain.Snapshot, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "load",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	snap, err = s.areas.List(ctx)
	if err != nil {
		return nil, err
	}
	fields["rows"] = len(snap.Rows)
	return snap, nil
}

func (s *areaService) Save(ctx context.Context, original, edited *domain.Snapshot) (res *reconcile.Result, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "save",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil && (res == nil || len(res.Failed) == 0),
			Err:       err,
			Fields:    fields,
		})
	}()

	res, err = reconcile.Reconcile(ctx, txPersister{s}, original, edited, domain.WatchedFields())
	if err != nil {
		return nil, err
	}
	fields["persisted"] = res.PersistedCount()
	fields["failed"] = len(res.Failed)
	if len(res.Failed) > 0 {
		fields["first_failure"] = res.Failed[0].Error()
	}
	return res, nil
}

// SetField edits one field of one row against a freshly loaded snapshot, so
// the write goes through the same change detection as a grid save.
func (s *areaService) SetField(ctx context.Context, id int64, f domain.Field, value any) (*reconcile.Result, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("field %q: %w", f, domain.ErrFieldNotEditable)
	}
	original, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	edited := original.Clone()
	if err := edited.Set(id, f, value); err != nil {
		return nil, err
	}
	return s.Save(ctx, original, edited)
}

// txPersister runs every field update in its own transaction.
type txPersister struct {
	s *areaService
}

func (p txPersister) UpdateField(ctx context.Context, id int64, f domain.Field, value any) error {
	err := p.s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLAreaRepo(tx, p.s.dialect).UpdateField(ctx, id, f, value)
	})
	if err != nil && !errors.Is(err, domain.ErrUpdateFailed) {
		return fmt.Errorf("updating %s of row %d: %w: %w", f, id, domain.ErrUpdateFailed, err)
	}
	return err
}
