package thunderdoc

import (
	"regexp"
	"time"

	"github.com/longlodw/thunderdoc/internal/metrics"
	"github.com/longlodw/thunderdoc/selector"
)

// SearchParams is a query with an optional keyword matched as a
// case-insensitive substring of the full-text field.
type SearchParams struct {
	QueryParams
	Keywords string `json:"keywords,omitempty"`
}

// Search runs params as a query after overlaying the keyword filter. Without
// keywords, or on a model with no full-text properties, it is a plain query.
func (m *Model) Search(params SearchParams) ([]Document, error) {
	start := time.Now()
	docs, err := m.query(m.searchQuery(params))
	metrics.ObserveQuery("search", start, err)
	return docs, err
}

func (m *Model) searchQuery(params SearchParams) QueryParams {
	q := params.QueryParams
	if params.Keywords == "" || len(m.schema.FullText) == 0 {
		return q
	}
	q.Selector = selector.Merge(q.Selector, fullTextSelector(params.Keywords))
	return q
}

// fullTextSelector matches kws literally, ignoring case, anywhere in the
// full-text field.
func fullTextSelector(kws string) Selector {
	return Selector{
		FullTextField: Selector{"$regex": "(?i)" + regexp.QuoteMeta(kws)},
	}
}
