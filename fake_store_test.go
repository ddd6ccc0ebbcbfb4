package thunderdoc

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/longlodw/thunderdoc/selector"
	"github.com/longlodw/thunderdoc/store"
)

// memStore is an in-memory Store that records the calls made to it.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]Document
	order   []string
	indexes map[string]IndexInfo
	revs    int

	createCalls [][]string
	finds       []FindRequest
	explains    []FindRequest
	destroyed   bool

	createErr error
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]Document{}, indexes: map[string]IndexInfo{}}
}

func (s *memStore) Put(doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := doc["_id"].(string)
	if id == "" {
		return "", store.ErrMissingID
	}
	old, exists := s.docs[id]
	given, _ := doc["_rev"].(string)
	current := ""
	if exists {
		current, _ = old["_rev"].(string)
	}
	if given != current {
		return "", store.ErrRevMismatch(id, current, given)
	}
	s.revs++
	rev := fmt.Sprintf("%d-mem", s.revs)
	stored := maps.Clone(doc)
	stored["_rev"] = rev
	if !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = stored
	return rev, nil
}

func (s *memStore) Get(id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return maps.Clone(doc), nil
}

func (s *memStore) Remove(doc Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := doc["_id"].(string)
	if _, ok := s.docs[id]; !ok {
		return false, store.ErrNotFound
	}
	delete(s.docs, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return true, nil
}

func (s *memStore) CreateIndex(fields []string) (IndexResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, slices.Clone(fields))
	if s.createErr != nil {
		return IndexResult{}, s.createErr
	}
	name := store.IndexName(fields)
	if _, ok := s.indexes[name]; ok {
		return IndexResult{Name: name, Result: store.IndexExists}, nil
	}
	s.indexes[name] = IndexInfo{Name: name, Type: "json", Fields: fields}
	return IndexResult{Name: name, Result: store.IndexCreated}, nil
}

func (s *memStore) Indexes() ([]IndexInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := []IndexInfo{{Name: store.AllDocsIndex, Type: "special", Fields: []string{"_id"}}}
	for _, name := range slices.Sorted(maps.Keys(s.indexes)) {
		infos = append(infos, s.indexes[name])
	}
	return infos, nil
}

func (s *memStore) Find(req FindRequest) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds = append(s.finds, req)
	var out []Document
	for _, id := range s.order {
		ok, err := selector.Match(s.docs[id], req.Selector)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, maps.Clone(s.docs[id]))
		}
	}
	if req.Skip > 0 {
		out = out[min(req.Skip, len(out)):]
	}
	if req.Limit > 0 && req.Limit < len(out) {
		out = out[:req.Limit]
	}
	if len(req.Fields) > 0 {
		for i, doc := range out {
			picked := Document{}
			for _, f := range req.Fields {
				if v, ok := doc[f]; ok {
					picked[f] = v
				}
			}
			out[i] = picked
		}
	}
	return out, nil
}

func (s *memStore) Explain(req FindRequest) (*Explanation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explains = append(s.explains, req)
	return &Explanation{Index: IndexInfo{Name: store.AllDocsIndex}, Selector: req.Selector, Opts: req}, nil
}

func (s *memStore) AllDocs() ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, maps.Clone(s.docs[id]))
	}
	return out, nil
}

func (s *memStore) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = map[string]Document{}
	s.order = nil
	s.indexes = map[string]IndexInfo{}
	s.destroyed = true
	return nil
}

func (s *memStore) lastFind() FindRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds[len(s.finds)-1]
}
