package selector

import (
	"maps"
	"reflect"
	"slices"
)

// Shape is the classification of a field's value inside a selector.
type Shape uint8

const (
	// ShapeLeaf is a scalar, an array, an empty object or an array-like object
	// whose keys are all unsigned integers. It is compared as a whole.
	ShapeLeaf Shape = iota
	// ShapeOperator is an object carrying at least one operator marker.
	ShapeOperator
	// ShapeDocument is a nested pattern whose keys are sub-field names.
	ShapeDocument
)

func (s Shape) String() string {
	switch s {
	case ShapeOperator:
		return "operator"
	case ShapeDocument:
		return "document"
	default:
		return "leaf"
	}
}

// Classify decides how a field's value participates in a selector.
func Classify(v any) Shape {
	obj, ok := AsObject(v)
	if !ok {
		return ShapeLeaf
	}
	for k := range obj {
		if IsMarker(k) {
			return ShapeOperator
		}
	}
	for k := range obj {
		if !isIndexKey(k) {
			return ShapeDocument
		}
	}
	return ShapeLeaf
}

// AsObject returns v as a plain object if it is one. Maps with string keys
// and any value type are copied into a map[string]any.
func AsObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Selector:
		return map[string]any(o), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, true
}

// AsList returns v as a list if it is a slice or array of any element type.
func AsList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []Selector:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isIndexKey(k string) bool {
	if k == "" {
		return false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
