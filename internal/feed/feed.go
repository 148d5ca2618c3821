// Package feed keeps a live, ordered, in-memory cache of the listing
// catalog by subscribing to the document store. The store is the sole
// source of truth: each change batch replaces the whole cache with the
// snapshot the store delivered, never a locally-computed diff.
package feed

import (
	"context"
	"log"
	"sync"

	"motorvault-api/internal/domain"
	"motorvault-api/internal/store"
)

// Feed owns at most one live store subscription at a time and fans each
// snapshot out to registered observers.
type Feed struct {
	store store.Store

	mu       sync.Mutex
	snapshot []domain.Car
	subErr   error
	handle   store.Handle

	observers    map[int]func([]domain.Car)
	errObservers map[int]func(error)
	nextID       int
}

// New returns a stopped feed over the given store.
func New(s store.Store) *Feed {
	return &Feed{
		store:        s,
		observers:    map[int]func([]domain.Car){},
		errObservers: map[int]func(error){},
	}
}

// Start opens the live subscription. If one is already open it is closed
// first, so observers registered across restart cycles never double-fire.
func (f *Feed) Start(ctx context.Context) error {
	f.Stop()

	f.mu.Lock()
	f.subErr = nil
	f.mu.Unlock()

	handle, err := f.store.Subscribe(ctx, f.apply, f.fail)
	if err != nil {
		f.fail(err)
		return err
	}

	f.mu.Lock()
	f.handle = handle
	f.mu.Unlock()
	return nil
}

// Stop closes the subscription. Idempotent.
func (f *Feed) Stop() {
	f.mu.Lock()
	handle := f.handle
	f.handle = nil
	f.mu.Unlock()

	if handle != nil {
		handle.Close()
	}
}

// Snapshot returns a copy of the current cache, newest first.
func (f *Feed) Snapshot() []domain.Car {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Car, len(f.snapshot))
	copy(out, f.snapshot)
	return out
}

// Err reports the terminal subscription error, if any. It stays set until
// the next Start: the feed never retries on its own.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subErr
}

// OnUpdate registers an observer called synchronously after every cache
// replacement. The returned function deregisters it.
func (f *Feed) OnUpdate(fn func(cars []domain.Car)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.observers[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.observers, id)
		f.mu.Unlock()
	}
}

// OnError registers an observer for subscription failure. The returned
// function deregisters it.
func (f *Feed) OnError(fn func(err error)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.errObservers[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.errObservers, id)
		f.mu.Unlock()
	}
}

// apply atomically replaces the cache with the delivered snapshot, then
// notifies observers. The subscription callback is the cache's only writer,
// so observers always see a whole batch or none of it.
func (f *Feed) apply(cars []domain.Car) {
	f.mu.Lock()
	f.snapshot = cars
	observers := make([]func([]domain.Car), 0, len(f.observers))
	for _, fn := range f.observers {
		observers = append(observers, fn)
	}
	f.mu.Unlock()

	for _, fn := range observers {
		fn(cars)
	}
}

func (f *Feed) fail(err error) {
	log.Printf("[Feed] subscription error: %v", err)

	f.mu.Lock()
	f.subErr = err
	f.handle = nil
	observers := make([]func(error), 0, len(f.errObservers))
	for _, fn := range f.errObservers {
		observers = append(observers, fn)
	}
	f.mu.Unlock()

	for _, fn := range observers {
		fn(err)
	}
}
