package kvdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/storefinder/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltDB struct {
	store  *bolt.DB
	logger logger.Logger
	bucket []byte
}

const HistoryBucket = "search_history"

func New(logger logger.Logger, path string, bucket string) (*BoltDB, error) {
	if path == "" {
		logger.Error("key-value database path is empty")
		return nil, errors.New("key-value database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		store:  store,
		logger: logger,
		bucket: []byte(bucket),
	}

	if err := boltDB.initBucket(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return boltDB, nil
}

func (b *BoltDB) initBucket() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		if err != nil {
			b.logger.Error("failed to create bucket", "err", err.Error())
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
}

func (b *BoltDB) Set(key string, value string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "key", key)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := b.getBucket(tx)
		if err != nil {
			return err
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			b.logger.Error("failed to set key", "key", key, "err", err.Error())
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Get(key string) (string, error) {
	if key == "" {
		b.logger.Error("key cannot be empty", "key", key)
		return "", &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := b.getBucket(tx)
		if err != nil {
			return err
		}

		v := bucket.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Key: key}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			b.logger.Debug("key not found", "key", key)
		}
		return "", err
	}

	return string(value), nil
}

// Delete removes key, returning a *NotFoundError if it was never set.
func (b *BoltDB) Delete(key string) error {
	if key == "" {
		b.logger.Error("key cannot be empty", "key", key)
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket, err := b.getBucket(tx)
		if err != nil {
			return err
		}

		if bucket.Get([]byte(key)) == nil {
			return &NotFoundError{Key: key}
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			b.logger.Error("failed to delete key", "key", key, "err", err.Error())
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		return nil
	})
}

// Entries returns every key-value pair in descending key order.
func (b *BoltDB) Entries() ([]Entry, error) {
	entries := []Entry{}
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket, err := b.getBucket(tx)
		if err != nil {
			return err
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			entries = append(entries, Entry{Key: string(k), Value: string(v)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (b *BoltDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

func (b *BoltDB) getBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		b.logger.Error("bucket not found", "bucket", string(b.bucket))
		return nil, fmt.Errorf("bucket %s not found", b.bucket)
	}
	return bucket, nil
}
