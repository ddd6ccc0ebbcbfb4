package store

import (
	"iter"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openkvlab/boltdb"

	"github.com/longlodw/thunderdoc/selector"
)

// FindRequest is a selector query with optional projection, ordering and
// window. Zero Skip and Limit mean none.
type FindRequest struct {
	Selector selector.Selector    `json:"selector"`
	Fields   []string             `json:"fields,omitempty"`
	Sort     []selector.SortField `json:"sort,omitempty"`
	Skip     int                  `json:"skip,omitempty"`
	Limit    int                  `json:"limit,omitempty"`
}

// Explanation describes how a FindRequest would be served.
type Explanation struct {
	Index    IndexInfo         `json:"index"`
	Selector selector.Selector `json:"selector"`
	Range    string            `json:"range"`
	Opts     FindRequest       `json:"opts"`
}

// Find returns the documents matching req.Selector. Without a sort the
// results follow the order of the chosen index.
func (c *Collection) Find(req FindRequest) ([]Document, error) {
	start := time.Now()
	atomic.AddInt64(&c.db.stats.queries, 1)
	defer func() {
		atomic.AddInt64(&c.db.stats.queryDuration, int64(time.Since(start)))
	}()

	var docs []Document
	err := c.db.View(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return nil
		}
		infos, err := col.indexes.list()
		if err != nil {
			return err
		}
		p := choosePlan(req.Selector, infos)
		if p.fullScan() {
			atomic.AddInt64(&c.db.stats.fullScans, 1)
		} else {
			atomic.AddInt64(&c.db.stats.indexScans, 1)
		}

		// Without a sort the window can be applied while scanning.
		want := -1
		if len(req.Sort) == 0 && req.Limit > 0 {
			want = max(req.Skip, 0) + req.Limit
		}
		for doc, err := range candidates(col, p) {
			if err != nil {
				return err
			}
			ok, err := selector.Match(doc, req.Selector)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			docs = append(docs, doc)
			if want >= 0 && len(docs) >= want {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortDocs(docs, req.Sort)
	docs = window(docs, req.Skip, req.Limit)
	if len(req.Fields) > 0 {
		for i, doc := range docs {
			docs[i] = project(doc, req.Fields)
		}
	}
	atomic.AddInt64(&c.db.stats.reads, int64(len(docs)))
	return docs, nil
}

// Explain reports the index and key ranges Find would use for req.
func (c *Collection) Explain(req FindRequest) (*Explanation, error) {
	var infos []IndexInfo
	err := c.db.View(func(tx *boltdb.Tx) error {
		col := loadCollection(tx, c.name, c.db.maUn)
		if col == nil {
			return nil
		}
		var err error
		infos, err = col.indexes.list()
		return err
	})
	if err != nil {
		return nil, err
	}
	p := choosePlan(req.Selector, infos)
	return &Explanation{
		Index:    p.index,
		Selector: req.Selector,
		Range:    p.String(),
		Opts:     req,
	}, nil
}

// candidates yields each document reachable through p once.
func candidates(col *collectionBuckets, p *plan) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if p.fullScan() {
			for _, r := range p.ranges {
				for doc, err := range col.data.scan(r) {
					if !yield(doc, err) {
						return
					}
				}
			}
			return
		}
		seen := make(map[string]struct{})
		for _, r := range p.ranges {
			ids, err := col.indexes.get(p.index.Name, r)
			if err != nil {
				yield(nil, err)
				return
			}
			for id := range ids {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				doc, err := col.data.get(id)
				if err != nil {
					if !yield(nil, err) {
						return
					}
					continue
				}
				if doc == nil {
					continue
				}
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

func sortDocs(docs []Document, sort []selector.SortField) {
	if len(sort) == 0 {
		return
	}
	slices.SortStableFunc(docs, func(a, b Document) int {
		for _, sf := range sort {
			va, _ := selector.Lookup(a, sf.Field)
			vb, _ := selector.Lookup(b, sf.Field)
			c := selector.Compare(va, vb)
			if sf.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func window(docs []Document, skip, limit int) []Document {
	if skip > 0 {
		if skip >= len(docs) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// project keeps only the listed (possibly dotted) fields of doc.
func project(doc Document, fields []string) Document {
	out := make(Document, len(fields))
	for _, f := range fields {
		v, ok := selector.Lookup(doc, f)
		if !ok {
			continue
		}
		setPath(out, f, v)
	}
	return out
}

func setPath(doc Document, path string, v any) {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}
