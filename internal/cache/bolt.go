package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/AI2HU/dbconsole/internal/logger"
)

const boltBucketEntries = "entries" // key -> boltEntry JSON

// Bolt implements Cache on a local bbolt file
type Bolt struct {
	db  *bbolt.DB
	now func() time.Time
}

type boltEntry struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"exp,omitempty"` // unix nanoseconds, 0 = never
}

// NewBolt opens (or creates) the cache file at path. timeout bounds the wait
// for the file lock held by another process.
func NewBolt(path string, timeout time.Duration) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketEntries))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to prepare bolt cache: %w", err)
	}

	logger.Debug("Cache connection established (bolt, %s)", path)
	return &Bolt{db: db, now: time.Now}, nil
}

// Get returns the value stored at key. Expired entries are removed and
// reported as ErrMiss
func (b *Bolt) Get(_ context.Context, key string) (string, error) {
	var (
		entry boltEntry
		found bool
	)

	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(boltBucketEntries)).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrMiss
	}

	if entry.ExpiresAt != 0 && b.now().UnixNano() >= entry.ExpiresAt {
		if err := b.delete(key); err != nil {
			logger.Warning("Failed to evict expired cache key %s: %v", key, err)
		}
		return "", ErrMiss
	}

	return entry.Value, nil
}

// Set stores value at key; a non-positive ttl keeps it until deleted
func (b *Bolt) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := boltEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = b.now().Add(ttl).UnixNano()
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketEntries)).Put([]byte(key), data)
	})
}

// Delete removes key from the cache file
func (b *Bolt) Delete(_ context.Context, key string) error {
	return b.delete(key)
}

func (b *Bolt) delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketEntries)).Delete([]byte(key))
	})
}

// Ping checks that the cache file is still open
func (b *Bolt) Ping(_ context.Context) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

// Close closes the cache file
func (b *Bolt) Close() error {
	return b.db.Close()
}
