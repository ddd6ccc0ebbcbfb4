package thunderdoc

import (
	"time"

	"github.com/longlodw/thunderdoc/internal/metrics"
	"github.com/longlodw/thunderdoc/selector"
)

// QueryParams describes one query. Sort entries are field names (ascending)
// or {field: "asc"|"desc"} objects. Skip and Limit are ignored unless
// positive. Empty Fields selects _id, _rev and every declared property.
type QueryParams struct {
	Selector Selector `json:"selector,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	Sort     []any    `json:"sort,omitempty"`
	Skip     int      `json:"skip,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Query runs params against the store, creating the index it needs first.
func (m *Model) Query(params QueryParams) ([]Document, error) {
	start := time.Now()
	docs, err := m.query(params)
	metrics.ObserveQuery("query", start, err)
	return docs, err
}

func (m *Model) query(params QueryParams) ([]Document, error) {
	req, err := m.findRequest(params)
	if err != nil {
		return nil, err
	}
	m.logger.Debug().
		Interface("selector", req.Selector).
		Strs("fields", req.Fields).
		Int("skip", req.Skip).
		Int("limit", req.Limit).
		Msg("query")

	if m.devMode && len(req.Selector) > 0 {
		exp, err := m.store.Explain(req)
		if err != nil {
			return nil, err
		}
		m.logger.Debug().
			Str("index", exp.Index.Name).
			Strs("index_fields", exp.Index.Fields).
			Str("range", exp.Range).
			Msg("query plan")
	}

	docs, err := m.store.Find(req)
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		docs[i] = m.restore(doc)
	}
	return docs, nil
}

// Explain returns the store's plan for params without running it. The index
// the query needs is still created.
func (m *Model) Explain(params QueryParams) (*Explanation, error) {
	req, err := m.findRequest(params)
	if err != nil {
		return nil, err
	}
	return m.store.Explain(req)
}

// findRequest normalizes the selector, ensures the planned index exists and
// builds the store request.
func (m *Model) findRequest(params QueryParams) (FindRequest, error) {
	normalized := selector.Normalize(params.Selector)
	sort, err := selector.ParseSort(params.Sort)
	if err != nil {
		return FindRequest{}, ErrInvalidSort(err)
	}
	sortFields := selector.SortFieldNames(sort)

	final := normalized
	plan := planIndex(sortFields, selector.Fields(normalized))
	if plan.Required {
		if _, err := m.indexes.ensure(m.store, plan.Fields); err != nil {
			return FindRequest{}, err
		}
		// Sorting through an index needs every sort field present.
		final = selector.Merge(normalized, selector.Exists(sortFields...))
	}

	req := FindRequest{Selector: final, Fields: params.Fields}
	if len(req.Fields) == 0 {
		req.Fields = m.defaultFields()
	}
	if len(sort) > 0 {
		req.Sort = sort
	}
	if params.Skip > 0 {
		req.Skip = params.Skip
	}
	if params.Limit > 0 {
		req.Limit = params.Limit
	}
	return req, nil
}

func (m *Model) defaultFields() []string {
	fields := make([]string, 0, len(m.props)+2)
	fields = append(fields, "_id", "_rev")
	return append(fields, m.props...)
}
