package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		selector Selector
		expected []string
	}{
		{
			name:     "equality and operator",
			selector: Selector{"a": 1, "b": map[string]any{"$gt": 2}},
			expected: []string{"a", "b"},
		},
		{
			name:     "nested path",
			selector: Selector{"imdb": map[string]any{"rating": 8}},
			expected: []string{"imdb.rating"},
		},
		{
			name:     "operator object is a leaf",
			selector: Selector{"year": map[string]any{"$gt": 2010}},
			expected: []string{"year"},
		},
		{
			name:     "array operator consumes its value",
			selector: Selector{"genre": map[string]any{"$all": []any{"a", "b"}}},
			expected: []string{"genre"},
		},
		{
			name:     "elemMatch is not expanded",
			selector: Selector{"tags": map[string]any{"$elemMatch": map[string]any{"name": "x", "score": map[string]any{"$gt": 1}}}},
			expected: []string{"tags"},
		},
		{
			name:     "and keeps list order",
			selector: Selector{"$and": []any{map[string]any{"y": 2}, map[string]any{"x": 1}}},
			expected: []string{"y", "x"},
		},
		{
			name:     "or",
			selector: Selector{"$or": []any{map[string]any{"x": 1}, map[string]any{"y": 2}}},
			expected: []string{"x", "y"},
		},
		{
			name:     "nor",
			selector: Selector{"$nor": []any{map[string]any{"x": 1}, map[string]any{"y": 2}}},
			expected: []string{"x", "y"},
		},
		{
			name:     "not",
			selector: Selector{"$not": map[string]any{"z": 1}},
			expected: []string{"z"},
		},
		{
			name:     "deeply nested document",
			selector: Selector{"imdb": map[string]any{"votes": map[string]any{"count": 3}, "rating": map[string]any{"$gte": 7}}},
			expected: []string{"imdb.rating", "imdb.votes.count"},
		},
		{
			name:     "array-like object is a leaf",
			selector: Selector{"pair": map[string]any{"0": "a", "1": "b"}},
			expected: []string{"pair"},
		},
		{
			name:     "empty object is a leaf",
			selector: Selector{"meta": map[string]any{}},
			expected: []string{"meta"},
		},
		{
			name:     "slice value is a leaf",
			selector: Selector{"list": []string{"a", "b"}},
			expected: []string{"list"},
		},
		{
			name:     "stray operator at top level",
			selector: Selector{"$gt": 1, "a": 1},
			expected: []string{"a"},
		},
		{
			name:     "malformed connector",
			selector: Selector{"$and": "oops", "$or": []any{1, map[string]any{"k": 1}}, "$not": 3},
			expected: []string{"k"},
		},
		{
			name:     "duplicates are kept",
			selector: Selector{"$and": []any{map[string]any{"a": 1}, map[string]any{"a": map[string]any{"$lt": 5}}}},
			expected: []string{"a", "a"},
		},
		{
			name:     "empty",
			selector: Selector{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fields(tt.selector))
		})
	}
}

func TestFields_DoesNotMutate(t *testing.T) {
	s := Selector{
		"a":    map[string]any{"b": 1},
		"$or":  []any{map[string]any{"c": 2}},
		"$not": map[string]any{"d": map[string]any{"$exists": true}},
	}
	_ = Fields(s)
	assert.Equal(t, Selector{
		"a":    map[string]any{"b": 1},
		"$or":  []any{map[string]any{"c": 2}},
		"$not": map[string]any{"d": map[string]any{"$exists": true}},
	}, s)
}

func TestAppendFields(t *testing.T) {
	dst := []string{"sorted"}
	dst = AppendFields(dst, Selector{"a": 1})
	assert.Equal(t, []string{"sorted", "a"}, dst)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ShapeLeaf, Classify(1))
	assert.Equal(t, ShapeLeaf, Classify("x"))
	assert.Equal(t, ShapeLeaf, Classify(nil))
	assert.Equal(t, ShapeLeaf, Classify([]any{1}))
	assert.Equal(t, ShapeLeaf, Classify(map[string]any{}))
	assert.Equal(t, ShapeLeaf, Classify(map[string]any{"0": 1, "12": 2}))
	assert.Equal(t, ShapeOperator, Classify(map[string]any{"$in": []any{1}}))
	assert.Equal(t, ShapeOperator, Classify(Selector{"$exists": true}))
	assert.Equal(t, ShapeOperator, Classify(map[string]any{"$custom": 1, "name": 2}))
	assert.Equal(t, ShapeDocument, Classify(map[string]any{"0": 1, "name": 2}))
	assert.Equal(t, ShapeDocument, Classify(map[string]any{"rating": 8}))
}

func TestParseOp(t *testing.T) {
	assert.Equal(t, OpNone, ParseOp("name"))
	assert.Equal(t, OpUnknown, ParseOp("$where"))
	assert.True(t, IsMarker("$where"))
	assert.False(t, IsMarker("where"))

	for _, key := range []string{
		"$eq", "$ne", "$lt", "$lte", "$gt", "$gte", "$exists", "$type", "$in", "$nin",
		"$all", "$elemMatch", "$allMatch", "$keyMapMatch", "$size", "$mod", "$regex",
		"$and", "$or", "$nor", "$not",
	} {
		op := ParseOp(key)
		assert.NotEqual(t, OpUnknown, op, key)
		assert.Equal(t, key, op.String())
	}
	assert.True(t, OpNor.IsConnector())
	assert.False(t, OpIn.IsConnector())
	assert.True(t, OpGte.IsRange())
	assert.False(t, OpEq.IsRange())
}
