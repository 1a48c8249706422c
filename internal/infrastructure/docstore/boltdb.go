package docstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt is a bbolt-backed driver: one bucket per collection, documents keyed
// by id. Conditional replaces run inside a single update transaction, which
// is what makes the repository's version check safe without locks.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt initializes the bbolt file.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) FindOne(ctx context.Context, collection string, filter Filter) ([]byte, error) {
	var found []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return ErrNoDocument
		}
		if id, ok := keyedID(filter); ok {
			doc := bucket.Get([]byte(id))
			if doc == nil || !matches(doc, bodyFilter(filter)) {
				return ErrNoDocument
			}
			found = clone(doc)
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if matches(v, filter) {
				found = clone(v)
				return nil
			}
		}
		return ErrNoDocument
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (b *Bolt) Find(ctx context.Context, collection string, filter Filter) ([][]byte, error) {
	var docs [][]byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if matches(v, filter) {
				docs = append(docs, clone(v))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (b *Bolt) Insert(ctx context.Context, collection, id string, doc []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(id)) != nil {
			return ErrDuplicate
		}
		return bucket.Put([]byte(id), doc)
	})
}

func (b *Bolt) Replace(ctx context.Context, collection string, filter Filter, doc []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return ErrNoDocument
		}
		if id, ok := keyedID(filter); ok {
			existing := bucket.Get([]byte(id))
			if existing == nil || !matches(existing, bodyFilter(filter)) {
				return ErrNoDocument
			}
			return bucket.Put([]byte(id), doc)
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if matches(v, filter) {
				return bucket.Put(clone(k), doc)
			}
		}
		return ErrNoDocument
	})
}

func (b *Bolt) Delete(ctx context.Context, collection string, filter Filter) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		if bucket == nil {
			return ErrNoDocument
		}
		if id, ok := keyedID(filter); ok {
			existing := bucket.Get([]byte(id))
			if existing == nil || !matches(existing, bodyFilter(filter)) {
				return ErrNoDocument
			}
			return bucket.Delete([]byte(id))
		}
		var keys [][]byte
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if matches(v, filter) {
				keys = append(keys, clone(k))
			}
		}
		if len(keys) == 0 {
			return ErrNoDocument
		}
		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping verifies the database file is still usable.
func (b *Bolt) Ping(ctx context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error { return nil })
}

// Close closes the underlying bbolt database.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
