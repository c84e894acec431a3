package cache

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCache implements Cache on a MongoDB collection.
// Serve deployments use it as the durable tier: Redis answers hot lookups,
// Mongo keeps inlined fonts across restarts.
//
// Documents have the shape {_id: key, data: <binary>, expires_at: <time>}.
// Set a TTL index on expires_at server-side if expiry cleanup is wanted;
// Get also checks the field so a missing index only delays deletion.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig holds connection settings for the Mongo backend.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "fontsnap"
	Collection string // defaults to "resources"
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects to MongoDB and verifies the connection with a ping.
func NewMongoCache(ctx context.Context, cfg MongoConfig) (*MongoCache, error) {
	if cfg.Database == "" {
		cfg.Database = "fontsnap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "resources"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoCache{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a value from the collection.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_, _ = c.coll.DeleteOne(ctx, bson.M{"_id": key})
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set upserts a value into the collection. A TTL of 0 stores without expiry.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	update := bson.M{"data": data}
	if ttl > 0 {
		update["expires_at"] = time.Now().Add(ttl)
	}
	_, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": update},
		options.Update().SetUpsert(true))
	return err
}

// Delete removes a value from the collection.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Close disconnects from MongoDB.
func (c *MongoCache) Close() error {
	return c.client.Disconnect(context.Background())
}

// MongoSet implements SeenSet on a MongoDB collection of marker documents.
type MongoSet struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSet connects to MongoDB using cfg; Collection defaults to "attempts".
func NewMongoSet(ctx context.Context, cfg MongoConfig) (*MongoSet, error) {
	if cfg.Collection == "" {
		cfg.Collection = "attempts"
	}
	inner, err := NewMongoCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &MongoSet{client: inner.client, coll: inner.coll}, nil
}

// Has reports whether member was previously added.
func (s *MongoSet) Has(ctx context.Context, member string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": member})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add records member as a marker document.
func (s *MongoSet) Add(ctx context.Context, member string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": member},
		bson.M{"$set": bson.M{"seen": true}},
		options.Update().SetUpsert(true))
	return err
}

// Close disconnects from MongoDB.
func (s *MongoSet) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure the Mongo backends implement their interfaces.
var (
	_ Cache   = (*MongoCache)(nil)
	_ SeenSet = (*MongoSet)(nil)
)
