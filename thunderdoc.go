// Package thunderdoc is a selector-driven query planning and pagination
// engine for schemaless documents.
//
// A Model wraps a Store. Every query is normalized into a conjunction, the
// fields it filters and sorts on are turned into an index request that the
// store materializes on demand, and the resulting find is sent to the store.
// Search overlays a case-insensitive substring match on a precomputed
// full-text field, and the paged variants run a count pass before fetching
// one page.
package thunderdoc

import (
	"github.com/longlodw/thunderdoc/selector"
	"github.com/longlodw/thunderdoc/store"
)

type (
	Document    = store.Document
	FindRequest = store.FindRequest
	Explanation = store.Explanation
	IndexInfo   = store.IndexInfo
	IndexResult = store.IndexResult
	Selector    = selector.Selector
)

// Store is the document store a Model runs against. *store.Collection
// implements it.
type Store interface {
	Put(doc Document) (string, error)
	Get(id string) (Document, error)
	Remove(doc Document) (bool, error)
	// CreateIndex must be idempotent: requesting an existing index reports
	// "exists" instead of failing.
	CreateIndex(fields []string) (IndexResult, error)
	Indexes() ([]IndexInfo, error)
	Find(req FindRequest) ([]Document, error)
	Explain(req FindRequest) (*Explanation, error)
	AllDocs() ([]Document, error)
	Destroy() error
}

var _ Store = (*store.Collection)(nil)
