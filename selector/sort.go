package selector

import (
	"fmt"
	"strings"
)

// SortField is one entry of a sort specification.
type SortField struct {
	Field string `json:"field" msgpack:"field"`
	Desc  bool   `json:"desc,omitempty" msgpack:"desc,omitempty"`
}

// ParseSort reads a sort specification made of bare field names (ascending)
// and single-key {field: "asc"|"desc"|1|-1} objects. Order is preserved.
func ParseSort(spec []any) ([]SortField, error) {
	out := make([]SortField, 0, len(spec))
	for _, item := range spec {
		switch v := item.(type) {
		case string:
			out = append(out, SortField{Field: v})
		case SortField:
			out = append(out, v)
		default:
			obj, ok := AsObject(item)
			if !ok {
				return nil, fmt.Errorf("unsupported sort entry %T", item)
			}
			for _, field := range sortedKeys(obj) {
				desc, err := parseDirection(obj[field])
				if err != nil {
					return nil, fmt.Errorf("%w for %s", err, field)
				}
				out = append(out, SortField{Field: field, Desc: desc})
			}
		}
	}
	return out, nil
}

// parseDirection accepts "asc"/"desc" in any case and the numeric forms 1/-1.
func parseDirection(dir any) (bool, error) {
	if d, ok := dir.(string); ok {
		switch strings.ToLower(d) {
		case "", "asc":
			return false, nil
		case "desc":
			return true, nil
		}
		return false, fmt.Errorf("unsupported sort direction %q", d)
	}
	if n, ok := ToFloat(dir); ok {
		switch n {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	}
	return false, fmt.Errorf("unsupported sort direction %v", dir)
}

// SortFieldNames returns the field names of sort in order.
func SortFieldNames(sort []SortField) []string {
	names := make([]string, len(sort))
	for i, s := range sort {
		names[i] = s.Field
	}
	return names
}

// Spec renders sort back to the bare-name / {field: "desc"} form.
func Spec(sort []SortField) []any {
	out := make([]any, len(sort))
	for i, s := range sort {
		if s.Desc {
			out[i] = map[string]any{s.Field: "desc"}
		} else {
			out[i] = s.Field
		}
	}
	return out
}
