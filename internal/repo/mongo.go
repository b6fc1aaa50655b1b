package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkordes/shuttle-control/internal/domain"
)

// mongoUpdateAttempts bounds the compare-and-swap retries of mongoStore.Update.
const mongoUpdateAttempts = 10

// mongoDoc is the document shape of one key in the collections collection.
// Version is bumped on every write and used for optimistic locking.
type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      string    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoStore is the MongoDB implementation of Store.
// Standalone servers have no multi-document transactions, so Update uses a
// version counter instead of locks.
type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore constructs a Store on the "collections" collection of db.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{coll: db.Collection("collections")}
}

func (s *mongoStore) find(ctx context.Context, key string) (*mongoDoc, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *mongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.find(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("repo.mongoStore.Get %s: %w", key, err)
	}
	if doc == nil {
		return nil, nil
	}
	return []byte(doc.Data), nil
}

func (s *mongoStore) Put(ctx context.Context, key string, data []byte) error {
	update := bson.M{
		"$set": bson.M{"data": string(data), "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("repo.mongoStore.Put %s: %w", key, err)
	}
	return nil
}

// Update reads the document, applies fn and writes back only if nobody else
// wrote in between; otherwise it starts over.
func (s *mongoStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for attempt := 0; attempt < mongoUpdateAttempts; attempt++ {
		doc, err := s.find(ctx, key)
		if err != nil {
			return fmt.Errorf("repo.mongoStore.Update %s: read: %w", key, err)
		}

		var current []byte
		if doc != nil {
			current = []byte(doc.Data)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if doc == nil {
			_, err := s.coll.InsertOne(ctx, mongoDoc{Key: key, Data: string(next), Version: 1, UpdatedAt: now})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("repo.mongoStore.Update %s: insert: %w", key, err)
			}
			return nil
		}

		res, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": key, "version": doc.Version},
			bson.M{
				"$set": bson.M{"data": string(next), "updatedAt": now},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return fmt.Errorf("repo.mongoStore.Update %s: write: %w", key, err)
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return fmt.Errorf("repo.mongoStore.Update %s: %w: too many concurrent writers", key, domain.ErrConflict)
}

func (s *mongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("repo.mongoStore.Delete %s: %w", key, err)
	}
	return nil
}
