package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motorvault-api/internal/domain"
)

// MongoStore implements Store on a MongoDB collection. Live subscriptions
// are driven by a change stream: each event triggers a re-query of the full
// ordered snapshot, so subscribers always see the collection exactly as the
// store orders it.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{collection: db.Collection(collection)}
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *MongoStore) Create(ctx context.Context, car domain.Car) (string, error) {
	car.ID = primitive.NewObjectID().Hex()
	car.CreatedAt = time.Now().UTC()
	if _, err := s.collection.InsertOne(ctx, car); err != nil {
		return "", &domain.StoreError{Op: "create", Err: err}
	}
	return car.ID, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, fields domain.Fields) error {
	res, err := s.collection.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return &domain.StoreError{Op: "update", Err: err}
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	// Deleting an already-absent record counts as success.
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return &domain.StoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *MongoStore) GetOne(ctx context.Context, id string) (*domain.Car, error) {
	var car domain.Car
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "getOne", Err: err}
	}
	return &car, nil
}

// snapshot returns the whole collection ordered by createdAt descending,
// newest insertions first among equal timestamps.
func (s *MongoStore) snapshot(ctx context.Context) ([]domain.Car, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	cars := []domain.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

type mongoHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (h *mongoHandle) Close() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

func (s *MongoStore) Subscribe(ctx context.Context, onChange SnapshotFunc, onError ErrorFunc) (Handle, error) {
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stream, err := s.collection.Watch(subCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, &domain.SubscriptionError{Err: err}
	}

	initial, err := s.snapshot(subCtx)
	if err != nil {
		stream.Close(context.Background())
		cancel()
		return nil, &domain.SubscriptionError{Err: err}
	}
	onChange(initial)

	h := &mongoHandle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer stream.Close(context.Background())

		for stream.Next(subCtx) {
			cars, err := s.snapshot(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					onError(&domain.SubscriptionError{Err: err})
				}
				return
			}
			onChange(cars)
		}

		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			log.Printf("[MongoStore] change stream terminated: %v", err)
			onError(&domain.SubscriptionError{Err: err})
		}
	}()

	return h, nil
}
