package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"motorvault-api/internal/domain"
	"motorvault-api/pkg/uid"
)

// MemoryStore is an in-process Store with the same observable semantics as
// the MongoDB one: every mutation is followed by a synchronous fanout of the
// full ordered snapshot to all live subscriptions. Used by tests and local
// development without a database.
type MemoryStore struct {
	mu      sync.Mutex
	cars    map[string]domain.Car
	arrival map[string]int // insertion order, breaks createdAt ties
	nextSeq int

	subs   map[int]*memorySub
	nextID int
}

type memorySub struct {
	onChange SnapshotFunc
	onError  ErrorFunc
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cars:    map[string]domain.Car{},
		arrival: map[string]int{},
		subs:    map[int]*memorySub{},
	}
}

func (s *MemoryStore) Create(_ context.Context, car domain.Car) (string, error) {
	s.mu.Lock()
	car.ID = uid.New()
	car.CreatedAt = time.Now().UTC()
	s.insertLocked(car)
	s.mu.Unlock()

	s.notify()
	return car.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fields domain.Fields) error {
	s.mu.Lock()
	car, ok := s.cars[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	car.Brand = fields.Brand
	car.Model = fields.Model
	car.Year = fields.Year
	car.Price = fields.Price
	car.Mileage = fields.Mileage
	car.Color = fields.Color
	car.VIN = fields.VIN
	car.ImageURL = fields.ImageURL
	car.Condition = fields.Condition
	car.Transmission = fields.Transmission
	car.Status = fields.Status
	s.cars[id] = car
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, existed := s.cars[id]
	delete(s.cars, id)
	delete(s.arrival, id)
	s.mu.Unlock()

	if existed {
		s.notify()
	}
	return nil
}

func (s *MemoryStore) GetOne(_ context.Context, id string) (*domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &car, nil
}

type memoryHandle struct {
	store *MemoryStore
	id    int
	once  sync.Once
}

func (h *memoryHandle) Close() {
	h.once.Do(func() {
		h.store.mu.Lock()
		delete(h.store.subs, h.id)
		h.store.mu.Unlock()
	})
}

func (s *MemoryStore) Subscribe(_ context.Context, onChange SnapshotFunc, onError ErrorFunc) (Handle, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = &memorySub{onChange: onChange, onError: onError}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	onChange(initial)
	return &memoryHandle{store: s, id: id}, nil
}

// Seed inserts records verbatim (id and createdAt included) without
// notifying subscribers. Test setup helper.
func (s *MemoryStore) Seed(cars ...domain.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, car := range cars {
		if car.ID == "" {
			car.ID = uid.New()
		}
		s.insertLocked(car)
	}
}

// Fail terminates every live subscription with err, the way a store-side
// permission change or dropped connection would.
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	subs := s.subs
	s.subs = map[int]*memorySub{}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.onError(&domain.SubscriptionError{Err: err})
	}
}

func (s *MemoryStore) insertLocked(car domain.Car) {
	s.cars[car.ID] = car
	s.arrival[car.ID] = s.nextSeq
	s.nextSeq++
}

func (s *MemoryStore) snapshotLocked() []domain.Car {
	cars := make([]domain.Car, 0, len(s.cars))
	for _, car := range s.cars {
		cars = append(cars, car)
	}
	sort.SliceStable(cars, func(i, j int) bool {
		if !cars[i].CreatedAt.Equal(cars[j].CreatedAt) {
			return cars[i].CreatedAt.After(cars[j].CreatedAt)
		}
		return s.arrival[cars[i].ID] > s.arrival[cars[j].ID]
	})
	return cars
}

func (s *MemoryStore) notify() {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	subs := make([]*memorySub, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.onChange(snapshot)
	}
}
