package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AI2HU/dbconsole/internal/config"
	"github.com/AI2HU/dbconsole/internal/logger"
)

const collEntries = "cache_entries"

// Mongo implements Cache on a MongoDB collection. Expired documents are
// removed by a TTL index; Get also checks the expiry because the TTL monitor
// runs only periodically.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongo connects to MongoDB and prepares the cache collection
func NewMongo(ctx context.Context, cfg config.CacheConfig) (*Mongo, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOptions.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &Mongo{
		client: client,
		coll:   client.Database(cfg.Database).Collection(collEntries),
		now:    time.Now,
	}

	if err := m.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Debug("Cache connection established (mongodb, %s)", cfg.Database)
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

// Get returns the value stored at key, or ErrMiss when it is absent or expired
func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var entry mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}

	if entry.ExpiresAt != nil && !m.now().Before(*entry.ExpiresAt) {
		return "", ErrMiss
	}
	return entry.Value, nil
}

// Set upserts value at key; a non-positive ttl keeps it until deleted
func (m *Mongo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := mongoEntry{Key: key, Value: value}
	if ttl > 0 {
		exp := m.now().Add(ttl)
		entry.ExpiresAt = &exp
	}

	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	return err
}

// Delete removes the document for key
func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Ping checks the MongoDB connection
func (m *Mongo) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to cache")
	}
	return m.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB
func (m *Mongo) Close() error {
	if m.client != nil {
		return m.client.Disconnect(context.Background())
	}
	return nil
}
