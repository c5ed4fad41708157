package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/repository"
	"github.com/alexanderramin/objetivos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (c *captureObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureObserver) last() UseCaseEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[len(c.events)-1]
}

func newAreaService(t *testing.T, uow db.UnitOfWork, database *db.DB, observers ...UseCaseObserver) AreaService {
	t.Helper()
	return NewAreaService(repository.NewSQLAreaRepo(database, database.Dialect), uow, database.Dialect, observers...)
}

func TestAreaService_SaveNewObjective(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &captureObserver{}
	svc := newAreaService(t, testutil.NewTestUoW(database), database, obs)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(1), testutil.WithResponsavel("Ana"))

	original, err := svc.Load(ctx)
	require.NoError(t, err)
	edited := original.Clone()
	require.NoError(t, edited.Set(1, domain.FieldObjetivo, "Launch v2"))

	res, err := svc.Save(ctx, original, edited)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PersistedCount())

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", reloaded.Rows[0].Get("objetivo"))
	assert.Equal(t, "Ana", reloaded.Rows[0].Get("responsavel"))

	save := obs.events[1]
	assert.Equal(t, "save", save.Name)
	assert.True(t, save.Success)
	assert.Equal(t, 1, save.Fields["persisted"])
}

func TestAreaService_SaveWithoutEditsWritesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database}
	svc := newAreaService(t, uow, database)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(1), testutil.WithResponsavel("Ana"),
		testutil.WithPeriodo(testutil.Date(2025, 1, 1), testutil.Date(2025, 3, 31)))
	testutil.SeedRow(t, database, testutil.WithID(2), testutil.WithRawPeriodoInicio(""))

	original, err := svc.Load(ctx)
	require.NoError(t, err)
	res, err := svc.Save(ctx, original, original.Clone())
	require.NoError(t, err)

	assert.Zero(t, res.PersistedCount())
	assert.Zero(t, uow.Begun.Load(), "no transaction is opened when nothing changed")
}

func TestAreaService_FailedFieldDoesNotAbortOthers(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("injected update failure")}
	obs := &captureObserver{}
	svc := newAreaService(t, uow, database, obs)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(1))

	original, err := svc.Load(ctx)
	require.NoError(t, err)
	edited := original.Clone()
	require.NoError(t, edited.Set(1, domain.FieldResponsavel, "Ana"))
	require.NoError(t, edited.Set(1, domain.FieldObjetivo, "Meta"))
	require.NoError(t, edited.Set(1, domain.FieldPeriodoFim, testutil.Date(2025, 12, 31)))

	res, err := svc.Save(ctx, original, edited)
	require.NoError(t, err)

	assert.Equal(t, int32(3), uow.Begun.Load(), "one transaction per field")
	assert.Equal(t, int32(2), uow.Committed.Load())
	assert.Equal(t, 2, res.PersistedCount())
	require.Len(t, res.Failed, 1)
	assert.Equal(t, domain.FieldObjetivo, res.Failed[0].Change.Field)
	assert.ErrorIs(t, res.Failed[0], domain.ErrUpdateFailed)
	assert.Contains(t, res.Failed[0].Error(), "injected update failure")

	reloaded, err := svc.Load(ctx)
	require.NoError(t, err)
	row := reloaded.Rows[0]
	assert.Equal(t, "Ana", row.Get("responsavel"))
	assert.True(t, domain.IsAbsent(row.Get("objetivo")), "failed field was rolled back")
	assert.Equal(t, testutil.Date(2025, 12, 31), row.Get("periodo_fim"))

	save := obs.events[1]
	assert.False(t, save.Success)
	assert.Equal(t, 1, save.Fields["failed"])
}

func TestAreaService_SaveRejectsMismatchedSnapshot(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &testutil.FailOnNthExecUoW{DB: database}
	svc := newAreaService(t, uow, database)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(1))
	testutil.SeedRow(t, database, testutil.WithID(2))

	original, err := svc.Load(ctx)
	require.NoError(t, err)
	edited := original.Clone()
	edited.Rows = edited.Rows[:1]

	_, err = svc.Save(ctx, original, edited)
	assert.ErrorIs(t, err, domain.ErrSnapshotMismatch)
	assert.Zero(t, uow.Begun.Load())
}

func TestAreaService_LoadMissingTable(t *testing.T) {
	database := testutil.NewBareTestDB(t)
	obs := &captureObserver{}
	svc := newAreaService(t, testutil.NewTestUoW(database), database, obs)

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	ev := obs.last()
	assert.Equal(t, "load", ev.Name)
	assert.False(t, ev.Success)
	assert.Error(t, ev.Err)
}

func TestAreaService_SetField(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newAreaService(t, testutil.NewTestUoW(database), database)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(5), testutil.WithObjetivo("old"))

	res, err := svc.SetField(ctx, 5, domain.FieldObjetivo, "new")
	require.NoError(t, err)
	assert.Equal(t, 1, res.PersistedCount())

	res, err = svc.SetField(ctx, 5, domain.FieldObjetivo, "new")
	require.NoError(t, err)
	assert.Zero(t, res.PersistedCount(), "same value is not written again")

	_, err = svc.SetField(ctx, 99, domain.FieldObjetivo, "x")
	assert.ErrorIs(t, err, domain.ErrRowNotFound)

	_, err = svc.SetField(ctx, 5, "area", "x")
	assert.ErrorIs(t, err, domain.ErrFieldNotEditable)
}

func TestAreaService_RowDeletedBetweenLoadAndSave(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := newAreaService(t, testutil.NewTestUoW(database), database)
	ctx := context.Background()
	testutil.SeedRow(t, database, testutil.WithID(1))

	original, err := svc.Load(ctx)
	require.NoError(t, err)
	edited := original.Clone()
	require.NoError(t, edited.Set(1, domain.FieldObjetivo, "x"))
	_, err = database.ExecContext(ctx, `DELETE FROM areas_objetivos WHERE id = 1`)
	require.NoError(t, err)

	res, err := svc.Save(ctx, original, edited)
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.ErrorIs(t, res.Failed[0], domain.ErrRowNotFound)
}
