package store

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/openkvlab/boltdb"
)

// Index creation outcomes reported in IndexResult.Result.
const (
	IndexCreated = "created"
	IndexExists  = "exists"
)

// IndexResult acknowledges a CreateIndex call.
type IndexResult struct {
	Name   string `json:"name"`
	Result string `json:"result"`
}

// Collection is a named set of documents inside a DB. All methods run in
// their own transaction.
type Collection struct {
	db   *DB
	name string
}

func (c *Collection) Name() string {
	return c.name
}

// Put inserts or updates doc and returns its new revision. Updating an
// existing document requires its current "_rev"; inserting requires none.
func (c *Collection) Put(doc Document) (string, error) {
	id, err := docID(doc)
	if err != nil {
		return "", err
	}
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.db.stats.writeDuration, int64(time.Since(start)))
	}()

	var rev string
	err = c.db.Update(func(tx *boltdb.Tx) error {
		col, err := ensureCollection(tx, c.name, c.db.maUn)
		if err != nil {
			return err
		}
		old, err := col.data.get(id)
		if err != nil {
			return err
		}
		given, _ := doc["_rev"].(string)
		current := ""
		if old != nil {
			current, _ = old["_rev"].(string)
		}
		if given != current {
			return ErrRevMismatch(id, current, given)
		}
		rev = nextRev(current)

		stored := maps.Clone(doc)
		stored["_rev"] = rev
		infos, err := col.indexes.list()
		if err != nil {
			return err
		}
		for _, info := range infos {
			if old != nil {
				if err := col.indexes.delete(info, id, old); err != nil {
					return err
				}
			}
			if err := col.indexes.insert(info, id, stored); err != nil {
				return err
			}
		}
		return col.data.put(id, stored)
	})
	if err != nil {
		return "", err
	}
	atomic.AddInt64(&c.db.stats.written, 1)
	return rev, nil
}

// Get returns the document stored under id or ErrNotFound.
func (c *Collection) Get(id string) (Document, error) {
	var doc Document
	err := c.db.View(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return ErrNotFound
		}
		var err error
		doc, err = col.data.get(id)
		if err != nil {
			return err
		}
		if doc == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.db.stats.reads, 1)
	return doc, nil
}

// Remove deletes the document identified by doc["_id"]. When doc carries a
// "_rev" it must match the stored revision.
func (c *Collection) Remove(doc Document) (bool, error) {
	id, err := docID(doc)
	if err != nil {
		return false, err
	}
	start := time.Now()
	defer func() {
		atomic.AddInt64(&c.db.stats.writeDuration, int64(time.Since(start)))
	}()

	err = c.db.Update(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return ErrNotFound
		}
		old, err := col.data.get(id)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrNotFound
		}
		current, _ := old["_rev"].(string)
		if given, ok := doc["_rev"].(string); ok && given != current {
			return ErrRevMismatch(id, current, given)
		}
		infos, err := col.indexes.list()
		if err != nil {
			return err
		}
		for _, info := range infos {
			if err := col.indexes.delete(info, id, old); err != nil {
				return err
			}
		}
		return col.data.delete(id)
	})
	if err != nil {
		return false, err
	}
	atomic.AddInt64(&c.db.stats.deleted, 1)
	return true, nil
}

// CreateIndex defines an index over fields and backfills it from the stored
// documents. Defining an index that already exists is not an error.
func (c *Collection) CreateIndex(fields []string) (IndexResult, error) {
	if len(fields) == 0 {
		return IndexResult{}, ErrEmptyIndex
	}
	info := IndexInfo{Name: IndexName(fields), Type: "json", Fields: fields}
	result := IndexResult{Name: info.Name, Result: IndexExists}
	err := c.db.Update(func(tx *boltdb.Tx) error {
		col, err := ensureCollection(tx, c.name, c.db.maUn)
		if err != nil {
			return err
		}
		created, err := col.indexes.define(info)
		if err != nil || !created {
			return err
		}
		result.Result = IndexCreated
		for doc, err := range col.data.scan(fullRange()) {
			if err != nil {
				return err
			}
			id, err := docID(doc)
			if err != nil {
				return err
			}
			if err := col.indexes.insert(info, id, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return IndexResult{}, err
	}
	if result.Result == IndexCreated {
		atomic.AddInt64(&c.db.stats.indexesCreated, 1)
	}
	return result, nil
}

// Indexes lists the index definitions, starting with the built-in _all_docs.
func (c *Collection) Indexes() ([]IndexInfo, error) {
	infos := []IndexInfo{allDocsInfo()}
	err := c.db.View(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return nil
		}
		defined, err := col.indexes.list()
		if err != nil {
			return err
		}
		infos = append(infos, defined...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// AllDocs returns every document in id order.
func (c *Collection) AllDocs() ([]Document, error) {
	var docs []Document
	err := c.db.View(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return nil
		}
		for doc, err := range col.data.scan(fullRange()) {
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.db.stats.reads, int64(len(docs)))
	return docs, nil
}

// Count returns the number of stored documents.
func (c *Collection) Count() (int, error) {
	n := 0
	err := c.db.View(func(tx *boltdb.Tx) error {
		if col := loadCollection(tx, c.name, c.db.maUn); col != nil {
			n = col.data.count()
		}
		return nil
	})
	return n, err
}

// Destroy drops the collection with its documents and indexes. The handle
// stays usable; the next write recreates an empty collection.
func (c *Collection) Destroy() error {
	return c.db.DropCollection(c.name)
}

func docID(doc Document) (string, error) {
	raw, ok := doc["_id"]
	if !ok || raw == nil {
		return "", ErrMissingID
	}
	id, ok := raw.(string)
	if !ok {
		return "", ErrInvalidID(raw)
	}
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}

// nextRev bumps the generation of rev and attaches a fresh random suffix.
func nextRev(rev string) string {
	gen := 0
	if head, _, ok := strings.Cut(rev, "-"); ok {
		gen, _ = strconv.Atoi(head)
	}
	return fmt.Sprintf("%d-%s", gen+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
