// Package store defines the document store contract the catalog lives in,
// plus the MongoDB implementation and an in-process one for tests and
// local development.
package store

import (
	"context"

	"motorvault-api/internal/domain"
)

// SnapshotFunc receives the full ordered snapshot of the collection
// (createdAt descending) after every change batch. The store, not the
// subscriber, decides ordering and membership.
type SnapshotFunc func(cars []domain.Car)

// ErrorFunc receives a terminal subscription failure. The subscription is
// dead once this fires; reconnecting is the caller's decision.
type ErrorFunc func(err error)

// Handle is an open subscription. Close releases it and is safe to call
// more than once.
type Handle interface {
	Close()
}

// Store is the remote document collection of listing records. All calls may
// fail with a transport or permission error, surfaced as *domain.StoreError.
type Store interface {
	// Subscribe opens a live query over the collection. onChange fires with
	// the initial snapshot and again after every change batch; onError fires
	// at most once, if the live query dies.
	Subscribe(ctx context.Context, onChange SnapshotFunc, onError ErrorFunc) (Handle, error)

	// Create inserts a record, assigning its id and server-side createdAt.
	Create(ctx context.Context, car domain.Car) (string, error)

	// Update replaces the mutable fields of an existing record. Returns
	// domain.ErrNotFound if the id does not exist.
	Update(ctx context.Context, id string, fields domain.Fields) error

	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// GetOne fetches a single record, or domain.ErrNotFound.
	GetOne(ctx context.Context, id string) (*domain.Car, error)
}
