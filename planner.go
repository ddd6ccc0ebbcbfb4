package thunderdoc

import (
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/longlodw/thunderdoc/internal/metrics"
	"github.com/longlodw/thunderdoc/store"
)

// IndexPlan is the index a query needs before it is sent to the store.
type IndexPlan struct {
	// Fields lists sort fields in sort order, then filter fields in the order
	// they were found, without duplicates.
	Fields []string
	// Required is false when the primary index already serves the query.
	Required bool
}

func planIndex(sortFields, filterFields []string) IndexPlan {
	fields := make([]string, 0, len(sortFields)+len(filterFields))
	for _, f := range slices.Concat(sortFields, filterFields) {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	required := len(fields) > 0 && !(len(fields) == 1 && fields[0] == "_id")
	return IndexPlan{Fields: fields, Required: required}
}

// indexCache remembers which field lists the store has already acknowledged
// and collapses concurrent requests for the same list into one store call.
// A nil lru disables memoization.
type indexCache struct {
	acked  *lru.Cache[string, string]
	group  singleflight.Group
	logger zerolog.Logger
}

func newIndexCache(size int, logger zerolog.Logger) (*indexCache, error) {
	if size < 0 {
		return nil, ErrNegativeCache(size)
	}
	c := &indexCache{logger: logger}
	if size > 0 {
		acked, err := lru.New[string, string](size)
		if err != nil {
			return nil, err
		}
		c.acked = acked
	}
	return c, nil
}

// ensure makes sure st has an index over fields.
func (c *indexCache) ensure(st Store, fields []string) (string, error) {
	key := strings.Join(fields, "\x00")
	if c.acked != nil {
		if name, ok := c.acked.Get(key); ok {
			metrics.IndexRequests.WithLabelValues("cached").Inc()
			return name, nil
		}
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := st.CreateIndex(fields)
		if err != nil {
			return "", err
		}
		metrics.IndexRequests.WithLabelValues(res.Result).Inc()
		if res.Result == store.IndexCreated {
			c.logger.Info().Strs("fields", fields).Str("index", res.Name).Msg("index created")
		}
		if c.acked != nil {
			c.acked.Add(key, res.Name)
		}
		return res.Name, nil
	})
	if err != nil {
		return "", ErrEnsureIndex(fields, err)
	}
	return v.(string), nil
}

func (c *indexCache) purge() {
	if c.acked != nil {
		c.acked.Purge()
	}
}
