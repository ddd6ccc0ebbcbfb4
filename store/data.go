package store

import (
	"iter"

	"github.com/openkvlab/boltdb"
)

var docsBucketName = []byte("docs")

type dataStorage struct {
	bucket *boltdb.Bucket
	maUn   MarshalUnmarshaler
}

func newData(
	parentBucket *boltdb.Bucket,
	maUn MarshalUnmarshaler,
) (*dataStorage, error) {
	bucket, err := parentBucket.CreateBucketIfNotExists(docsBucketName)
	if err != nil {
		return nil, err
	}
	return &dataStorage{
		bucket: bucket,
		maUn:   maUn,
	}, nil
}

func loadData(
	parentBucket *boltdb.Bucket,
	maUn MarshalUnmarshaler,
) *dataStorage {
	if parentBucket == nil {
		return nil
	}
	bucket := parentBucket.Bucket(docsBucketName)
	if bucket == nil {
		return nil
	}
	return &dataStorage{
		bucket: bucket,
		maUn:   maUn,
	}
}

func (d *dataStorage) put(id string, doc Document) error {
	valueBytes, err := d.maUn.Marshal(doc)
	if err != nil {
		return err
	}
	return d.bucket.Put([]byte(id), valueBytes)
}

// get returns nil, nil when the id is absent.
func (d *dataStorage) get(id string) (Document, error) {
	v := d.bucket.Get([]byte(id))
	if v == nil {
		return nil, nil
	}
	var doc Document
	if err := d.maUn.Unmarshal(v, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *dataStorage) delete(id string) error {
	return d.bucket.Delete([]byte(id))
}

func (d *dataStorage) count() int {
	return d.bucket.Stats().KeyN
}

// scan walks documents in id order within kr.
func (d *dataStorage) scan(kr *keyRange) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		c := d.bucket.Cursor()
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
			var doc Document
			if err := d.maUn.Unmarshal(v, &doc); err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
