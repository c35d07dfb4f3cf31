package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ladderworks/ladderkit/pkg/ladder"
	"github.com/ladderworks/ladderkit/pkg/observability"
)

// MongoStore is a MongoDB-backed library for multi-user deployments.
// Documents live in one collection keyed by their UUID.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database holds the library collection (default "ladderkit").
	Database string

	// Collection stores the documents (default "routines").
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "ladderkit"
	}
	if cfg.Collection == "" {
		cfg.Collection = "routines"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a document by id.
func (s *MongoStore) Get(ctx context.Context, id string) (*ladder.Document, error) {
	start := time.Now()
	var doc ladder.Document
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	observability.Storage().OnQuery(ctx, "mongo", "get", time.Since(start), err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

// Put upserts a document, assigning an id when needed.
func (s *MongoStore) Put(ctx context.Context, doc *ladder.Document) (string, error) {
	id := doc.EnsureID()
	start := time.Now()
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	observability.Storage().OnWrite(ctx, "mongo", "put", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("upsert document: %w", err)
	}
	return id, nil
}

// List returns summaries of every stored document.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	start := time.Now()
	cursor, err := s.collection.Find(ctx, bson.M{})
	observability.Storage().OnQuery(ctx, "mongo", "list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Summary
	for cursor.Next(ctx) {
		var doc ladder.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, Summary{ID: doc.ID, Name: doc.Name, Rungs: len(doc.Rungs)})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	observability.Storage().OnWrite(ctx, "mongo", "delete", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
