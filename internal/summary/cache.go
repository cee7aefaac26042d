package summary

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const itemBucketName = "items"

// Cache persists completed ReceiptItems across runs so a rerun can skip
// filenames that already have a result
type Cache interface {
	// Get returns the cached item for a filename, if present
	Get(filename string) (ReceiptItem, bool, error)

	// Put saves one completed item
	Put(item ReceiptItem) error

	// Close closes the cache
	Close() error
}

// BoltCache implements Cache on a bbolt file, keyed by filename
type BoltCache struct {
	db *bbolt.DB
}

// NewBoltCache opens (or creates) the cache file at path
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(itemBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

// Get returns the cached item for a filename, if present
func (b *BoltCache) Get(filename string) (ReceiptItem, bool, error) {
	var item ReceiptItem
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(itemBucketName)).Get([]byte(filename))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &item); err != nil {
			return fmt.Errorf("unmarshaling cached item: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return ReceiptItem{}, false, err
	}
	return item, found, nil
}

// Put saves one completed item keyed by its filename
func (b *BoltCache) Put(item ReceiptItem) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		return tx.Bucket([]byte(itemBucketName)).Put([]byte(item.Filename), data)
	})
}

// Close closes the cache file
func (b *BoltCache) Close() error {
	return b.db.Close()
}
