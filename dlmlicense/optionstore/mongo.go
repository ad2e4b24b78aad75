package optionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultMongoCollection = "dlm_options"

// MongoOption configures a MongoStore.
type MongoOption func(*MongoStore)

// WithCollectionName sets the MongoDB collection name. Default: "dlm_options".
func WithCollectionName(name string) MongoOption {
	return func(s *MongoStore) {
		s.collectionName = name
	}
}

// WithMongoSite sets the site scope. Default: DefaultSite.
func WithMongoSite(site string) MongoOption {
	return func(s *MongoStore) {
		s.site = siteOrDefault(site)
	}
}

// MongoStore implements Store using MongoDB.
type MongoStore struct {
	collection     *mongo.Collection
	collectionName string
	site           string
}

type optionDocument struct {
	SiteID    string    `bson:"site_id"`
	Name      string    `bson:"name"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore creates a new MongoDB-backed option store.
// It creates the necessary indexes on initialization.
func NewMongoStore(ctx context.Context, db *mongo.Database, opts ...MongoOption) (*MongoStore, error) {
	s := &MongoStore{
		collectionName: defaultMongoCollection,
		site:           DefaultSite,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !validIdentifier.MatchString(s.collectionName) {
		return nil, fmt.Errorf("invalid collection name %q: must match [a-zA-Z_][a-zA-Z0-9_]*", s.collectionName)
	}
	s.collection = db.Collection(s.collectionName)

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return s, nil
}

// ForSite returns a store sharing the collection, scoped to site.
func (s *MongoStore) ForSite(site string) *MongoStore {
	return &MongoStore{collection: s.collection, collectionName: s.collectionName, site: siteOrDefault(site)}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) filter(name string) bson.M {
	return bson.M{"site_id": s.site, "name": name}
}

func (s *MongoStore) Get(ctx context.Context, name string) ([]byte, error) {
	var doc optionDocument
	err := s.collection.FindOne(ctx, s.filter(name)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get option %s: %w", name, err)
	}
	return []byte(doc.Value), nil
}

func (s *MongoStore) Set(ctx context.Context, name string, value []byte) error {
	update := bson.M{
		"$set": bson.M{
			"value":      string(value),
			"updated_at": time.Now(),
		},
	}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, s.filter(name), update, opts); err != nil {
		return fmt.Errorf("set option %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if _, err := s.collection.DeleteOne(ctx, s.filter(name)); err != nil {
		return fmt.Errorf("delete option %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Close(_ context.Context) error {
	return nil // caller manages the mongo.Database lifecycle
}
