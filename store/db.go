// Package store is a bolt-backed document store: revisioned documents,
// idempotent composite indexes and selector-driven finds.
package store

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/openkvlab/boltdb"
	boltdb_errors "github.com/openkvlab/boltdb/errors"
)

// Document is a schemaless record. "_id" and "_rev" are reserved.
type Document = map[string]any

type DB struct {
	db       *boltdb.DB
	maUn     MarshalUnmarshaler
	stats    internalStats
	openedAt time.Time
	closed   atomic.Bool
}

// Options configures Open. A nil *Options uses msgpack documents and bolt's
// defaults.
type Options struct {
	// NoSync skips fsync after each commit. Only safe for scratch data.
	NoSync  bool
	Timeout time.Duration
	Codec   MarshalUnmarshaler
}

func Open(path string, mode os.FileMode, options *Options) (*DB, error) {
	if options == nil {
		options = &Options{}
	}
	bdb, err := boltdb.Open(path, mode, &boltdb.Options{
		Timeout: options.Timeout,
		NoSync:  options.NoSync,
	})
	if err != nil {
		return nil, err
	}
	maUn := options.Codec
	if maUn == nil {
		maUn = MsgpackMaUn
	}
	return &DB{db: bdb, maUn: maUn, openedAt: time.Now()}, nil
}

func (d *DB) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Path() string {
	return d.db.Path()
}

func (d *DB) View(fn func(*boltdb.Tx) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	atomic.AddInt64(&d.stats.readTx, 1)
	return d.db.View(fn)
}

func (d *DB) Update(fn func(*boltdb.Tx) error) error {
	if d.closed.Load() {
		return ErrClosed
	}
	atomic.AddInt64(&d.stats.writeTx, 1)
	return d.db.Update(fn)
}

// Collection returns a handle on the named collection, creating its buckets
// on first use.
func (d *DB) Collection(name string) (*Collection, error) {
	err := d.Update(func(tx *boltdb.Tx) error {
		_, err := ensureCollection(tx, name, d.maUn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Collection{db: d, name: name}, nil
}

// Collections lists the names of existing collections.
func (d *DB) Collections() ([]string, error) {
	var names []string
	err := d.View(func(tx *boltdb.Tx) error {
		return tx.ForEach(func(name []byte, _ *boltdb.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

// DropCollection deletes a collection with all of its documents and indexes.
// Dropping a missing collection is not an error.
func (d *DB) DropCollection(name string) error {
	err := d.Update(func(tx *boltdb.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if err == boltdb_errors.ErrBucketNotFound {
			return nil
		}
		return err
	})
	if err == nil {
		atomic.AddInt64(&d.stats.dropped, 1)
	}
	return err
}

// Stats returns a snapshot of the store statistics.
func (d *DB) Stats() Stats {
	return d.stats.snapshot(d.openedAt, d.db.Stats())
}

// ResetStats zeros all counters.
func (d *DB) ResetStats() {
	d.stats.reset()
}

type collectionBuckets struct {
	data    *dataStorage
	indexes *indexStorage
}

func ensureCollection(tx *boltdb.Tx, name string, maUn MarshalUnmarshaler) (*collectionBuckets, error) {
	bucket, err := tx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, err
	}
	data, err := newData(bucket, maUn)
	if err != nil {
		return nil, err
	}
	indexes, err := newIndex(bucket, maUn)
	if err != nil {
		return nil, err
	}
	return &collectionBuckets{data: data, indexes: indexes}, nil
}

// loadCollection returns nil when the collection has not been created yet.
func loadCollection(tx *boltdb.Tx, name string, maUn MarshalUnmarshaler) *collectionBuckets {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil
	}
	data := loadData(bucket, maUn)
	indexes := loadIndex(bucket, maUn)
	if data == nil || indexes == nil {
		return nil
	}
	return &collectionBuckets{data: data, indexes: indexes}
}
