// Package selector models Mango-style filter expressions: the operator catalog,
// value-shape classification, canonical conjunctive form, leaf field extraction,
// document matching and value collation.
package selector

// Selector is a filter expression. Keys are field names, dotted paths or
// operator markers.
type Selector map[string]any

// Normalize folds every implicit top-level condition into a single explicit
// conjunction. Members of an existing "$and" list come first, followed by one
// member per remaining top-level key in key order. Disjunction and negation
// sub-trees are carried over untouched.
//
// An empty selector normalizes to an empty selector. A selector made of a lone
// "$and" list is already canonical and is returned as is.
func Normalize(s Selector) Selector {
	if len(s) == 0 {
		return Selector{}
	}
	if and, ok := s["$and"]; ok && len(s) == 1 {
		if _, isList := AsList(and); isList {
			return s
		}
	}
	members := make([]any, 0, len(s))
	if and, ok := s["$and"]; ok {
		if list, isList := AsList(and); isList {
			members = append(members, list...)
		} else {
			members = append(members, and)
		}
	}
	for _, k := range sortedKeys(s) {
		if k == "$and" {
			continue
		}
		members = append(members, Selector{k: s[k]})
	}
	return Selector{"$and": members}
}

// Merge returns a selector requiring both a and b. Neither input is modified.
func Merge(a, b Selector) Selector {
	switch {
	case len(a) == 0 && len(b) == 0:
		return Selector{}
	case len(a) == 0:
		return b
	case len(b) == 0:
		return a
	}
	na := Normalize(a)
	nb := Normalize(b)
	la, _ := AsList(na["$and"])
	lb, _ := AsList(nb["$and"])
	members := make([]any, 0, len(la)+len(lb))
	members = append(members, la...)
	members = append(members, lb...)
	return Selector{"$and": members}
}

// Exists builds {"field": {"$exists": true}} for each field, in order.
func Exists(fields ...string) Selector {
	if len(fields) == 0 {
		return Selector{}
	}
	members := make([]any, 0, len(fields))
	for _, f := range fields {
		members = append(members, Selector{f: Selector{"$exists": true}})
	}
	return Selector{"$and": members}
}
