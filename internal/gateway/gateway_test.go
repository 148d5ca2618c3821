package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/store"
)

func staffCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{ID: "staff-1", Email: "dealer@motorvault.test"})
}

func validInput() domain.CarInput {
	return domain.CarInput{
		Brand:    "Audi",
		Model:    "A4",
		Year:     "2019",
		Price:    "5000000",
		ImageURL: "https://example.com/a4.jpg",
	}
}

func TestGateway_CreateStampsOwner(t *testing.T) {
	s := store.NewMemoryStore()
	g := New(s)

	id, err := g.Create(staffCtx(), validInput())
	require.NoError(t, err)

	car, err := s.GetOne(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", car.OwnerID)
	assert.Equal(t, "Audi", car.Brand)
	assert.Equal(t, 2019, car.Year)
	assert.False(t, car.CreatedAt.IsZero())
	// Enum defaults apply when the form leaves them blank.
	assert.Equal(t, domain.ConditionTokunbo, car.Condition)
	assert.Equal(t, domain.StatusForSale, car.Status)
}

func TestGateway_CreateWithoutPrincipal(t *testing.T) {
	g := New(store.NewMemoryStore())

	_, err := g.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGateway_CreateRejectsInvalidInput(t *testing.T) {
	s := store.NewMemoryStore()
	g := New(s)

	in := validInput()
	in.Brand = ""
	in.Price = "free"

	_, err := g.Create(staffCtx(), in)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "brand")
	assert.Contains(t, verr.Fields, "price")

	// Nothing was written.
	var got []domain.Car
	handle, err := s.Subscribe(context.Background(), func(cars []domain.Car) { got = cars }, func(error) {})
	require.NoError(t, err)
	defer handle.Close()
	assert.Empty(t, got)
}

func TestGateway_UpdateReplacesFields(t *testing.T) {
	s := store.NewMemoryStore()
	g := New(s)

	id, err := g.Create(staffCtx(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Price = "4500000"
	in.Status = "Sold"
	require.NoError(t, g.Update(context.Background(), id, in))

	car, err := s.GetOne(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, float64(4500000), car.Price)
	assert.Equal(t, domain.StatusSold, car.Status)
	assert.Equal(t, "staff-1", car.OwnerID)
}

func TestGateway_UpdateMissingRecord(t *testing.T) {
	g := New(store.NewMemoryStore())

	err := g.Update(context.Background(), "ghost", validInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_UpdateValidatesBeforeWriting(t *testing.T) {
	s := store.NewMemoryStore()
	g := New(s)

	id, err := g.Create(staffCtx(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Year = "next year"
	err = g.Update(context.Background(), id, in)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	car, err := s.GetOne(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2019, car.Year)
}

func TestGateway_DeleteAbsentSucceeds(t *testing.T) {
	g := New(store.NewMemoryStore())
	assert.NoError(t, g.Delete(context.Background(), "ghost"))
}
