package thunderdoc

import (
	"time"

	"github.com/longlodw/thunderdoc/internal/metrics"
)

// DefaultRows is the page size used when a paged query leaves Rows zero.
const DefaultRows = 20

// Pager does the page arithmetic for a known record count.
type Pager struct {
	count int
	rows  int
	page  int
}

// NewPager returns a pager positioned on page 1. A negative count is treated
// as zero.
func NewPager(count, rows int) (*Pager, error) {
	if rows <= 0 {
		return nil, ErrInvalidRows
	}
	return &Pager{count: max(count, 0), rows: rows, page: 1}, nil
}

// Total is the number of pages. An empty result still has one page.
func (p *Pager) Total() int {
	if p.count < 1 {
		return 1
	}
	return (p.count + p.rows - 1) / p.rows
}

// StartIndex moves the pager to page (at least 1) and returns the offset of
// its first record.
func (p *Pager) StartIndex(page int) int {
	p.page = max(page, 1)
	return p.rows * (p.page - 1)
}

func (p *Pager) Prev() int {
	return max(1, p.page-1)
}

func (p *Pager) Next() int {
	return min(p.Total(), p.page+1)
}

func (p *Pager) Count() int { return p.count }
func (p *Pager) Rows() int  { return p.rows }
func (p *Pager) Page() int  { return p.page }

// Result pairs the pager state with the records of the current page.
func (p *Pager) Result(records []Document) Page {
	if records == nil {
		records = []Document{}
	}
	return Page{
		Records: records,
		Count:   p.count,
		Rows:    p.rows,
		Page:    p.page,
		Total:   p.Total(),
		Prev:    p.Prev(),
		Next:    p.Next(),
	}
}

// Page is one page of results.
type Page struct {
	Records []Document `json:"records"`
	Count   int        `json:"count"`
	Rows    int        `json:"rows"`
	Page    int        `json:"page"`
	Total   int        `json:"total"`
	Prev    int        `json:"prev"`
	Next    int        `json:"next"`
}

// PagedParams is a query split into pages. Skip and Limit of the embedded
// query are replaced by the page window.
type PagedParams struct {
	QueryParams
	Rows int `json:"rows,omitempty"`
	Page int `json:"page,omitempty"`
}

type PagedSearchParams struct {
	SearchParams
	Rows int `json:"rows,omitempty"`
	Page int `json:"page,omitempty"`
}

// PagedQuery counts the matches of params, then fetches the requested page.
// The two passes are separate store calls, so writes landing in between can
// make the count and the page disagree.
func (m *Model) PagedQuery(params PagedParams) (Page, error) {
	start := time.Now()
	page, err := m.paged(params.QueryParams, params.Rows, params.Page)
	metrics.ObserveQuery("paged_query", start, err)
	return page, err
}

// PagedSearch is PagedQuery with the keyword overlay of Search.
func (m *Model) PagedSearch(params PagedSearchParams) (Page, error) {
	start := time.Now()
	page, err := m.paged(m.searchQuery(params.SearchParams), params.Rows, params.Page)
	metrics.ObserveQuery("paged_search", start, err)
	return page, err
}

func (m *Model) paged(q QueryParams, rows, page int) (Page, error) {
	if rows == 0 {
		rows = m.defaultRows
	}
	if rows < 0 {
		return Page{}, ErrInvalidRows
	}

	// Counting under the same sort keeps its existence conditions, so the
	// count only includes documents the page pass can return.
	ids, err := m.query(QueryParams{Selector: q.Selector, Fields: []string{"_id"}, Sort: q.Sort})
	if err != nil {
		return Page{}, err
	}
	pager, err := NewPager(len(ids), rows)
	if err != nil {
		return Page{}, err
	}

	q.Skip = pager.StartIndex(page)
	q.Limit = rows
	records, err := m.query(q)
	if err != nil {
		return Page{}, err
	}
	return pager.Result(records), nil
}
