// Package gateway translates validated operator input into mutations
// against the document store. It never touches the feed cache: a write
// becomes visible only when the store's subscription delivers it back.
package gateway

import (
	"context"
	"log"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/store"
)

// Gateway submits create, update and delete requests. Keeping at most one
// request in flight per logical action is the caller's job.
type Gateway struct {
	store store.Store
}

// New returns a gateway over the given store.
func New(s store.Store) *Gateway {
	return &Gateway{store: s}
}

// Create validates input, stamps the current principal as owner and inserts
// the record. The store assigns id and createdAt.
func (g *Gateway) Create(ctx context.Context, input domain.CarInput) (string, error) {
	fields, err := input.Validate()
	if err != nil {
		return "", err
	}

	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		return "", domain.ErrUnauthorized
	}

	car := domain.Car{
		Brand:        fields.Brand,
		Model:        fields.Model,
		Year:         fields.Year,
		Price:        fields.Price,
		Mileage:      fields.Mileage,
		Color:        fields.Color,
		VIN:          fields.VIN,
		ImageURL:     fields.ImageURL,
		Condition:    fields.Condition,
		Transmission: fields.Transmission,
		Status:       fields.Status,
		OwnerID:      principal.ID,
	}

	id, err := g.store.Create(ctx, car)
	if err != nil {
		return "", err
	}
	log.Printf("[Gateway] created listing %s (%s %s) for %s", id, car.Brand, car.Model, principal.ID)
	return id, nil
}

// Update validates input and replaces the mutable fields of the record.
// Whether the target still exists is only discovered when the store rejects
// the write; there is no client-side existence check.
func (g *Gateway) Update(ctx context.Context, id string, input domain.CarInput) error {
	fields, err := input.Validate()
	if err != nil {
		return err
	}
	return g.store.Update(ctx, id, fields)
}

// Delete removes the record. Deleting an already-absent record succeeds.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	return g.store.Delete(ctx, id)
}
