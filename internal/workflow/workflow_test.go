package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/gateway"
	"motorvault-api/internal/store"
)

func seedCar(t *testing.T, s *store.MemoryStore) domain.Car {
	t.Helper()
	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{ID: "staff-1"})
	gw := gateway.New(s)
	id, err := gw.Create(ctx, domain.CarInput{
		Brand: "Audi", Model: "A4", Year: "2019", Price: "5000000",
		ImageURL: "https://example.com/a4.jpg",
	})
	require.NoError(t, err)
	car, err := s.GetOne(ctx, id)
	require.NoError(t, err)
	return *car
}

func TestWorkflow_EditLifecycle(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	assert.Equal(t, StateIdle, w.State())
	require.NoError(t, w.OpenEdit(car))
	assert.Equal(t, StateEditing, w.State())

	draft, ok := w.Draft()
	require.True(t, ok)
	assert.Equal(t, "Audi", draft.Brand)
	assert.Equal(t, "2019", draft.Year)

	draft.Price = "4500000"
	require.NoError(t, w.SetDraft(draft))

	outcome := w.ConfirmEdit(context.Background())
	require.NoError(t, outcome.Err)
	assert.Equal(t, "Car updated successfully!", outcome.Message)
	assert.Equal(t, StateIdle, w.State())

	got, err := s.GetOne(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(4500000), got.Price)
}

func TestWorkflow_DraftIsDetached(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.OpenEdit(car))
	draft, _ := w.Draft()
	draft.Brand = "BMW"
	require.NoError(t, w.SetDraft(draft))

	// The cached record is untouched until confirm.
	got, err := s.GetOne(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Audi", got.Brand)
}

func TestWorkflow_OnlyOneOpenAtATime(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.OpenEdit(car))
	assert.ErrorIs(t, w.OpenEdit(car), ErrBusy)
	assert.ErrorIs(t, w.RequestDelete(car), ErrBusy)

	w.Cancel()
	require.NoError(t, w.RequestDelete(car))
	assert.ErrorIs(t, w.OpenEdit(car), ErrBusy)
}

func TestWorkflow_ConfirmEditClosesOnFailure(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.OpenEdit(car))
	require.NoError(t, s.Delete(context.Background(), car.ID)) // target vanishes mid-edit

	outcome := w.ConfirmEdit(context.Background())
	require.ErrorIs(t, outcome.Err, domain.ErrNotFound)
	assert.Contains(t, outcome.Message, "Error updating car:")

	// Closed regardless; the next edit can open.
	assert.Equal(t, StateIdle, w.State())
	require.NoError(t, w.OpenEdit(car))
}

func TestWorkflow_ConfirmEditRejectsInvalidDraft(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.OpenEdit(car))
	draft, _ := w.Draft()
	draft.Price = "priceless"
	require.NoError(t, w.SetDraft(draft))

	outcome := w.ConfirmEdit(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, outcome.Err, &verr)
	assert.Equal(t, StateIdle, w.State())

	got, err := s.GetOne(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(5000000), got.Price)
}

func TestWorkflow_TwoStepDelete(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	// Nothing to confirm while idle.
	outcome := w.ConfirmDelete(context.Background())
	assert.ErrorIs(t, outcome.Err, ErrBusy)

	require.NoError(t, w.RequestDelete(car))
	assert.Equal(t, StateConfirmingDelete, w.State())
	target, ok := w.Target()
	require.True(t, ok)
	assert.Equal(t, car.ID, target.ID)

	outcome = w.ConfirmDelete(context.Background())
	require.NoError(t, outcome.Err)
	assert.Equal(t, "Car deleted successfully.", outcome.Message)
	assert.Equal(t, StateIdle, w.State())

	_, err := s.GetOne(context.Background(), car.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkflow_ConfirmDeleteOfVanishedTarget(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.RequestDelete(car))
	require.NoError(t, s.Delete(context.Background(), car.ID))

	// Deleting an already-absent record still reports success.
	outcome := w.ConfirmDelete(context.Background())
	require.NoError(t, outcome.Err)
	assert.Equal(t, "Car deleted successfully.", outcome.Message)
}

func TestWorkflow_CancelMakesNoStoreCall(t *testing.T) {
	s := store.NewMemoryStore()
	car := seedCar(t, s)
	w := New(gateway.New(s))

	require.NoError(t, w.RequestDelete(car))
	w.Cancel()
	assert.Equal(t, StateIdle, w.State())

	got, err := s.GetOne(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, car.ID, got.ID)

	require.NoError(t, w.OpenEdit(car))
	w.Cancel()
	_, ok := w.Draft()
	assert.False(t, ok)
}
