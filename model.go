package thunderdoc

import (
	"errors"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/longlodw/thunderdoc/store"
)

// DefaultIndexCacheSize is the number of acknowledged index field lists a
// model remembers.
const DefaultIndexCacheSize = 256

// Schema declares the properties of a model and which of them feed the
// full-text field.
type Schema struct {
	Name     string
	Props    map[string]Kind
	FullText []string
}

// Model is a typed view over a Store.
type Model struct {
	store   Store
	schema  Schema
	props   []string
	logger  zerolog.Logger
	devMode bool

	cacheSize   int
	indexes     *indexCache
	defaultRows int
}

type Option func(*Model)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithDevMode makes every query log the store's plan before running.
func WithDevMode(on bool) Option {
	return func(m *Model) { m.devMode = on }
}

// WithIndexCacheSize bounds the index acknowledgement cache. Zero disables
// it, so every query re-issues its index request.
func WithIndexCacheSize(size int) Option {
	return func(m *Model) { m.cacheSize = size }
}

// WithDefaultRows sets the page size used when paged params leave Rows zero.
func WithDefaultRows(rows int) Option {
	return func(m *Model) { m.defaultRows = rows }
}

func NewModel(st Store, schema Schema, opts ...Option) (*Model, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if schema.Name == "" {
		return nil, ErrEmptyName
	}
	for _, p := range schema.FullText {
		if _, ok := schema.Props[p]; !ok {
			return nil, ErrUnknownProp(p)
		}
	}
	m := &Model{
		store:       st,
		schema:      schema,
		props:       slices.Sorted(maps.Keys(schema.Props)),
		logger:      log.Logger,
		cacheSize:   DefaultIndexCacheSize,
		defaultRows: DefaultRows,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.defaultRows <= 0 {
		return nil, ErrInvalidRows
	}
	m.logger = m.logger.With().Str("component", "thunderdoc").Str("model", schema.Name).Logger()
	indexes, err := newIndexCache(m.cacheSize, m.logger)
	if err != nil {
		return nil, err
	}
	m.indexes = indexes
	return m, nil
}

func (m *Model) Name() string {
	return m.schema.Name
}

// Save stores props as a new document with a fresh time-ordered id.
func (m *Model) Save(props map[string]any) (Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	doc := m.encode(props)
	doc["_id"] = id.String()
	delete(doc, "_rev")
	return m.put(doc)
}

// Update merges props into the stored document id.
func (m *Model) Update(id string, props map[string]any) (Document, error) {
	current, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	merged := maps.Clone(current)
	maps.Copy(merged, props)
	merged["_id"] = id
	merged["_rev"] = current["_rev"]
	return m.put(m.encode(merged))
}

// Upsert updates the document named by props["_id"] or saves a new one when
// there is no id or no such document.
func (m *Model) Upsert(props map[string]any) (Document, error) {
	id, _ := props["_id"].(string)
	if id == "" {
		return m.Save(props)
	}
	doc, err := m.Update(id, props)
	if errors.Is(err, store.ErrNotFound) {
		fresh := m.encode(props)
		fresh["_id"] = id
		delete(fresh, "_rev")
		return m.put(fresh)
	}
	return doc, err
}

func (m *Model) put(doc Document) (Document, error) {
	rev, err := m.store.Put(doc)
	if err != nil {
		return nil, err
	}
	doc["_rev"] = rev
	return m.restore(doc), nil
}

// Delete removes the document id.
func (m *Model) Delete(id string) (bool, error) {
	current, err := m.store.Get(id)
	if err != nil {
		return false, err
	}
	return m.store.Remove(Document{"_id": id, "_rev": current["_rev"]})
}

func (m *Model) Get(id string) (Document, error) {
	doc, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	return m.restore(doc), nil
}

// All returns every document in id order, which for saved documents is
// creation order.
func (m *Model) All() ([]Document, error) {
	docs, err := m.store.AllDocs()
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		docs[i] = m.restore(doc)
	}
	return docs, nil
}

// IndexNames lists the secondary indexes of the store.
func (m *Model) IndexNames() ([]string, error) {
	infos, err := m.store.Indexes()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.Name == store.AllDocsIndex {
			continue
		}
		names = append(names, info.Name)
	}
	return names, nil
}

// Destroy drops the store and forgets every acknowledged index.
func (m *Model) Destroy() error {
	m.indexes.purge()
	return m.store.Destroy()
}
