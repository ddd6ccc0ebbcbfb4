package store

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/openkvlab/boltdb"
	"rsc.io/ordered"

	"github.com/longlodw/thunderdoc/selector"
)

// AllDocsIndex is the built-in primary index over document ids.
const AllDocsIndex = "_all_docs"

var (
	indexDefsBucketName = []byte("indexes")
	indexDataBucketName = []byte("idx")
)

// IndexInfo describes one index definition.
type IndexInfo struct {
	Name   string   `json:"name" msgpack:"name"`
	Type   string   `json:"type" msgpack:"type"`
	Fields []string `json:"fields" msgpack:"fields"`
}

// IndexName derives the stable name of an index over fields. The same field
// list always yields the same name.
func IndexName(fields []string) string {
	return fmt.Sprintf("idx-%016x", xxhash.Sum64String(strings.Join(fields, "\x00")))
}

func allDocsInfo() IndexInfo {
	return IndexInfo{Name: AllDocsIndex, Type: "special", Fields: []string{"_id"}}
}

type indexStorage struct {
	defs *boltdb.Bucket
	data *boltdb.Bucket
	maUn MarshalUnmarshaler
}

func newIndex(
	parentBucket *boltdb.Bucket,
	maUn MarshalUnmarshaler,
) (*indexStorage, error) {
	defs, err := parentBucket.CreateBucketIfNotExists(indexDefsBucketName)
	if err != nil {
		return nil, err
	}
	data, err := parentBucket.CreateBucketIfNotExists(indexDataBucketName)
	if err != nil {
		return nil, err
	}
	return &indexStorage{
		defs: defs,
		data: data,
		maUn: maUn,
	}, nil
}

func loadIndex(
	parentBucket *boltdb.Bucket,
	maUn MarshalUnmarshaler,
) *indexStorage {
	if parentBucket == nil {
		return nil
	}
	defs := parentBucket.Bucket(indexDefsBucketName)
	data := parentBucket.Bucket(indexDataBucketName)
	if defs == nil || data == nil {
		return nil
	}
	return &indexStorage{
		defs: defs,
		data: data,
		maUn: maUn,
	}
}

// define registers info unless an index with the same name already exists.
func (idx *indexStorage) define(info IndexInfo) (bool, error) {
	if idx.defs.Get([]byte(info.Name)) != nil {
		return false, nil
	}
	if _, err := idx.data.CreateBucketIfNotExists([]byte(info.Name)); err != nil {
		return false, err
	}
	infoBytes, err := idx.maUn.Marshal(info)
	if err != nil {
		return false, err
	}
	return true, idx.defs.Put([]byte(info.Name), infoBytes)
}

func (idx *indexStorage) list() ([]IndexInfo, error) {
	var infos []IndexInfo
	err := idx.defs.ForEach(func(_, v []byte) error {
		var info IndexInfo
		if err := idx.maUn.Unmarshal(v, &info); err != nil {
			return err
		}
		infos = append(infos, info)
		return nil
	})
	return infos, err
}

// entryKey returns the index key of doc, or nil when doc lacks one of the
// indexed fields and is therefore not part of the index.
func entryKey(info IndexInfo, id string, doc Document) ([]byte, error) {
	values := make([]any, len(info.Fields))
	for i, field := range info.Fields {
		v, ok := selector.Lookup(doc, field)
		if !ok {
			return nil, nil
		}
		values[i] = v
	}
	key, err := ToKey(values...)
	if err != nil {
		return nil, err
	}
	return ordered.Append(key, id), nil
}

func (idx *indexStorage) insert(info IndexInfo, id string, doc Document) error {
	indexBk := idx.data.Bucket([]byte(info.Name))
	if indexBk == nil {
		return ErrIndexNotFound(info.Name)
	}
	key, err := entryKey(info, id, doc)
	if err != nil || key == nil {
		return err
	}
	return indexBk.Put(key, []byte(id))
}

func (idx *indexStorage) delete(info IndexInfo, id string, doc Document) error {
	indexBk := idx.data.Bucket([]byte(info.Name))
	if indexBk == nil {
		return ErrIndexNotFound(info.Name)
	}
	key, err := entryKey(info, id, doc)
	if err != nil || key == nil {
		return err
	}
	return indexBk.Delete(key)
}

// get yields document ids in index key order within kr.
func (idx *indexStorage) get(name string, kr *keyRange) (iter.Seq[string], error) {
	idxBk := idx.data.Bucket([]byte(name))
	if idxBk == nil {
		return nil, ErrIndexNotFound(name)
	}
	return func(yield func(string) bool) {
		c := idxBk.Cursor()
		var k, v []byte
		if kr.startKey != nil {
			k, v = c.Seek(kr.startKey)
		} else {
			k, v = c.First()
		}
		for ; k != nil && !kr.pastEnd(k); k, v = c.Next() {
			if !kr.contains(k) {
				continue
			}
			if !yield(string(v)) {
				return
			}
		}
	}, nil
}
