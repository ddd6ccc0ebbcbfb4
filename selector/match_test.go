package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movie() map[string]any {
	return map[string]any{
		"_id":   "m1",
		"title": "Arrival",
		"year":  int64(2016),
		"imdb": map[string]any{
			"rating": 7.9,
			"votes":  int8(100),
		},
		"genre": []any{"drama", "sci-fi"},
		"cast": []any{
			map[string]any{"name": "Amy", "lead": true},
			map[string]any{"name": "Jeremy", "lead": false},
		},
		"scores":  []any{int64(3), int64(8)},
		"extras":  map[string]any{"en": 1, "fr": 2},
		"nothing": nil,
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		selector Selector
		expected bool
	}{
		{"empty matches everything", Selector{}, true},
		{"equality", Selector{"title": "Arrival"}, true},
		{"equality mismatch", Selector{"title": "Contact"}, false},
		{"number kinds collate", Selector{"year": 2016}, true},
		{"nested document", Selector{"imdb": map[string]any{"rating": 7.9}}, true},
		{"dotted path", Selector{"imdb.votes": 100}, true},
		{"array contains scalar", Selector{"genre": "drama"}, true},
		{"whole array", Selector{"genre": []any{"drama", "sci-fi"}}, true},
		{"gt", Selector{"year": map[string]any{"$gt": 2010}}, true},
		{"gte/lt range", Selector{"year": map[string]any{"$gte": 2016, "$lt": 2017}}, true},
		{"lte fails", Selector{"year": map[string]any{"$lte": 2000}}, false},
		{"range is type bracketed", Selector{"title": map[string]any{"$gt": 5}}, false},
		{"eq operator", Selector{"title": map[string]any{"$eq": "Arrival"}}, true},
		{"ne operator", Selector{"title": map[string]any{"$ne": "Contact"}}, true},
		{"ne on missing field", Selector{"missing": map[string]any{"$ne": 1}}, true},
		{"exists true", Selector{"nothing": map[string]any{"$exists": true}}, true},
		{"exists false", Selector{"missing": map[string]any{"$exists": false}}, true},
		{"exists false on present", Selector{"title": map[string]any{"$exists": false}}, false},
		{"type", Selector{"imdb": map[string]any{"$type": "object"}}, true},
		{"type null", Selector{"nothing": map[string]any{"$type": "null"}}, true},
		{"in", Selector{"year": map[string]any{"$in": []any{1999, 2016}}}, true},
		{"in with array field", Selector{"genre": map[string]any{"$in": []any{"sci-fi"}}}, true},
		{"nin", Selector{"year": map[string]any{"$nin": []any{1999}}}, true},
		{"nin hit", Selector{"genre": map[string]any{"$nin": []any{"drama"}}}, false},
		{"all", Selector{"genre": map[string]any{"$all": []any{"sci-fi", "drama"}}}, true},
		{"all missing element", Selector{"genre": map[string]any{"$all": []any{"comedy", "drama"}}}, false},
		{"elemMatch document", Selector{"cast": map[string]any{"$elemMatch": map[string]any{"name": "Amy", "lead": true}}}, true},
		{"elemMatch operator", Selector{"scores": map[string]any{"$elemMatch": map[string]any{"$gt": 5}}}, true},
		{"allMatch", Selector{"scores": map[string]any{"$allMatch": map[string]any{"$gt": 5}}}, false},
		{"allMatch all", Selector{"scores": map[string]any{"$allMatch": map[string]any{"$gte": 3}}}, true},
		{"keyMapMatch", Selector{"extras": map[string]any{"$keyMapMatch": map[string]any{"$eq": "fr"}}}, true},
		{"size", Selector{"genre": map[string]any{"$size": 2}}, true},
		{"size mismatch", Selector{"genre": map[string]any{"$size": 3}}, false},
		{"mod", Selector{"year": map[string]any{"$mod": []any{2, 0}}}, true},
		{"mod mismatch", Selector{"year": map[string]any{"$mod": []any{5, 2}}}, false},
		{"regex", Selector{"title": map[string]any{"$regex": "^Arr"}}, true},
		{"regex case-insensitive", Selector{"title": map[string]any{"$regex": "(?i)RIVAL"}}, true},
		{"regex non-string", Selector{"year": map[string]any{"$regex": "20"}}, false},
		{"field not", Selector{"year": map[string]any{"$not": map[string]any{"$gt": 2020}}}, true},
		{"and", Selector{"$and": []any{map[string]any{"title": "Arrival"}, map[string]any{"year": 2016}}}, true},
		{"and fails", Selector{"$and": []any{map[string]any{"title": "Arrival"}, map[string]any{"year": 2017}}}, false},
		{"or", Selector{"$or": []any{map[string]any{"title": "Contact"}, map[string]any{"year": 2016}}}, true},
		{"or fails", Selector{"$or": []any{map[string]any{"title": "Contact"}}}, false},
		{"nor", Selector{"$nor": []any{map[string]any{"title": "Contact"}}}, true},
		{"nor fails", Selector{"$nor": []any{map[string]any{"title": "Arrival"}}}, false},
		{"not", Selector{"$not": map[string]any{"title": "Contact"}}, true},
		{"implicit and", Selector{"title": "Arrival", "year": 2015}, false},
		{"unknown operator never matches", Selector{"title": map[string]any{"$where": "x"}}, false},
		{"malformed or", Selector{"$or": "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(movie(), tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatch_InvalidRegex(t *testing.T) {
	_, err := Match(movie(), Selector{"title": map[string]any{"$regex": "("}})
	assert.Error(t, err)
}

func TestMatch_NormalizedEquivalent(t *testing.T) {
	selectors := []Selector{
		{"title": "Arrival", "$and": []any{map[string]any{"year": 2016}}},
		{"title": "Arrival", "$or": []any{map[string]any{"year": 1}, map[string]any{"genre": "drama"}}},
		{"title": "Contact"},
	}
	for _, s := range selectors {
		a, err := Match(movie(), s)
		require.NoError(t, err)
		b, err := Match(movie(), Normalize(s))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestLookup(t *testing.T) {
	doc := movie()
	v, ok := Lookup(doc, "cast.1.name")
	assert.True(t, ok)
	assert.Equal(t, "Jeremy", v)

	_, ok = Lookup(doc, "cast.9.name")
	assert.False(t, ok)
	_, ok = Lookup(doc, "title.length")
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	ordered := []any{nil, false, true, -1, int64(0), 2.5, uint8(3), "", "a", "b", []any{1}, []any{1, 2}, map[string]any{"a": 1}}
	for i := 0; i+1 < len(ordered); i++ {
		assert.Equal(t, -1, Compare(ordered[i], ordered[i+1]), "%v < %v", ordered[i], ordered[i+1])
		assert.Equal(t, 1, Compare(ordered[i+1], ordered[i]), "%v > %v", ordered[i+1], ordered[i])
	}
	assert.True(t, Equal(int8(4), 4.0))
	assert.True(t, Equal(map[string]any{"a": 1, "b": "x"}, Selector{"b": "x", "a": int64(1)}))
}

func TestCompare_TypedObjects(t *testing.T) {
	assert.False(t, Equal(map[string]int{"x": 1}, map[string]int{"x": 2}))
	assert.Equal(t, -1, Compare(map[string]int{"x": 1}, map[string]int{"x": 2}))
	assert.True(t, Equal(map[string]int{"x": 1}, map[string]any{"x": 1.0}))
	assert.Equal(t, 1, Compare(map[string]string{"b": "z"}, map[string]string{"a": "z"}))

	ok, err := Match(map[string]any{"meta": map[string]int{"rank": 3}}, Selector{"meta.rank": map[string]any{"$gt": 2}})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort([]any{"name", map[string]any{"age": "desc"}, map[string]string{"city": "asc"}})
	require.NoError(t, err)
	assert.Equal(t, []SortField{{Field: "name"}, {Field: "age", Desc: true}, {Field: "city"}}, got)
	assert.Equal(t, []string{"name", "age", "city"}, SortFieldNames(got))
	assert.Equal(t, []any{"name", map[string]any{"age": "desc"}, "city"}, Spec(got))

	_, err = ParseSort([]any{42})
	assert.Error(t, err)
	_, err = ParseSort([]any{map[string]any{"age": "sideways"}})
	assert.Error(t, err)
}

func TestParseSort_Directions(t *testing.T) {
	tests := []struct {
		name     string
		dir      any
		wantDesc bool
		wantErr  bool
	}{
		{"asc", "asc", false, false},
		{"upper desc", "DESC", true, false},
		{"empty", "", false, false},
		{"one", 1, false, false},
		{"minus one", -1, true, false},
		{"minus one float", -1.0, true, false},
		{"unknown word", "DOWN", false, true},
		{"other number", 2, false, true},
		{"bool", true, false, true},
		{"nil", nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSort([]any{map[string]any{"age": tt.dir}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []SortField{{Field: "age", Desc: tt.wantDesc}}, got)
		})
	}
}

func TestCompileRegex_Cached(t *testing.T) {
	pattern := "(?i)cached_pattern_test"
	first, err := compileRegex(pattern)
	require.NoError(t, err)
	second, err := compileRegex(pattern)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = compileRegex("(unclosed")
	assert.Error(t, err)
	assert.False(t, regexCache.Contains("(unclosed"))
}
