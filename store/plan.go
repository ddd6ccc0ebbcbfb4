package store

import (
	"strings"

	"github.com/longlodw/thunderdoc/selector"
)

// bounds collects what the top-level conjunction says about one field.
type bounds struct {
	required bool

	hasEq bool
	eq    any

	hasLower     bool
	lower        any
	includeLower bool

	hasUpper     bool
	upper        any
	includeUpper bool
}

func (b *bounds) score() int {
	switch {
	case b == nil:
		return 1
	case b.hasEq:
		return 3
	case b.hasLower || b.hasUpper:
		return 2
	}
	return 1
}

// analyze walks the conjunction of s and records per-field bounds. Only
// conditions every match must satisfy are recorded; disjunctions and
// negations are ignored.
func analyze(s selector.Selector) map[string]*bounds {
	fields := make(map[string]*bounds)
	analyzeObject(fields, s, "")
	return fields
}

func analyzeObject(fields map[string]*bounds, obj map[string]any, prefix string) {
	for key, cond := range obj {
		switch op := selector.ParseOp(key); op {
		case selector.OpAnd:
			list, ok := selector.AsList(cond)
			if !ok {
				continue
			}
			for _, member := range list {
				if sub, ok := selector.AsObject(member); ok {
					analyzeObject(fields, sub, prefix)
				}
			}
		case selector.OpNone:
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			switch selector.Classify(cond) {
			case selector.ShapeDocument:
				sub, _ := selector.AsObject(cond)
				analyzeObject(fields, sub, path)
			case selector.ShapeOperator:
				ops, _ := selector.AsObject(cond)
				analyzeOps(field(fields, path), ops)
			default:
				b := field(fields, path)
				b.required = true
				b.setEq(cond)
			}
		}
	}
}

func field(fields map[string]*bounds, path string) *bounds {
	b, ok := fields[path]
	if !ok {
		b = &bounds{}
		fields[path] = b
	}
	return b
}

func analyzeOps(b *bounds, ops map[string]any) {
	for key, arg := range ops {
		switch op := selector.ParseOp(key); op {
		case selector.OpEq:
			b.required = true
			b.setEq(arg)
		case selector.OpGt, selector.OpGte:
			b.required = true
			if !b.hasLower {
				b.hasLower, b.lower, b.includeLower = true, arg, op == selector.OpGte
			}
		case selector.OpLt, selector.OpLte:
			b.required = true
			if !b.hasUpper {
				b.hasUpper, b.upper, b.includeUpper = true, arg, op == selector.OpLte
			}
		case selector.OpExists:
			if want, ok := arg.(bool); ok && want {
				b.required = true
			}
		case selector.OpIn, selector.OpAll, selector.OpElemMatch, selector.OpAllMatch,
			selector.OpKeyMapMatch, selector.OpSize, selector.OpMod, selector.OpRegex,
			selector.OpType:
			b.required = true
		}
	}
}

func (b *bounds) setEq(v any) {
	if !b.hasEq {
		b.hasEq, b.eq = true, v
	}
}

// plan is the access path chosen for one find.
type plan struct {
	index  IndexInfo
	ranges []*keyRange
}

func (p *plan) fullScan() bool {
	return p.index.Name == AllDocsIndex
}

func (p *plan) String() string {
	parts := make([]string, len(p.ranges))
	for i, r := range p.ranges {
		if p.fullScan() {
			parts[i] = r.rawString()
		} else {
			parts[i] = r.String()
		}
	}
	return strings.Join(parts, " U ")
}

// choosePlan picks the index whose fields are all required by s, preferring
// an equality on the leading field, then a range, then the longest index.
// With no usable index the primary _all_docs walk is used, narrowed by any
// bounds on _id.
func choosePlan(s selector.Selector, indexes []IndexInfo) *plan {
	fields := analyze(s)
	best := &plan{index: allDocsInfo(), ranges: idRanges(fields["_id"])}
	bestScore := 0
	if b := fields["_id"]; b != nil && (b.hasEq || b.hasLower || b.hasUpper) {
		bestScore = b.score()
	}
	for _, info := range indexes {
		if !covers(fields, info.Fields) {
			continue
		}
		score := fields[info.Fields[0]].score()
		if !better(info, score, best, bestScore) {
			continue
		}
		ranges, err := valueRanges(fields[info.Fields[0]])
		if err != nil {
			continue
		}
		best, bestScore = &plan{index: info, ranges: ranges}, score
	}
	return best
}

// better reports whether info should replace best. A bounded _id lookup wins
// ties against secondary indexes.
func better(info IndexInfo, score int, best *plan, bestScore int) bool {
	if score != bestScore {
		return score > bestScore
	}
	if best.fullScan() {
		return false
	}
	if len(info.Fields) != len(best.index.Fields) {
		return len(info.Fields) > len(best.index.Fields)
	}
	return info.Name < best.index.Name
}

func covers(fields map[string]*bounds, indexFields []string) bool {
	if len(indexFields) == 0 {
		return false
	}
	for _, f := range indexFields {
		b, ok := fields[f]
		if !ok || !b.required {
			return false
		}
	}
	return true
}

// idRanges narrows the _all_docs walk. Ids are raw string keys.
func idRanges(b *bounds) []*keyRange {
	if b == nil {
		return []*keyRange{fullRange()}
	}
	if b.hasEq {
		if id, ok := b.eq.(string); ok {
			return []*keyRange{KeyRange([]byte(id), []byte(id), true, true)}
		}
		return []*keyRange{fullRange()}
	}
	r := fullRange()
	if lower, ok := b.lower.(string); ok && b.hasLower {
		r.startKey, r.includeStart = []byte(lower), b.includeLower
	}
	if upper, ok := b.upper.(string); ok && b.hasUpper {
		r.endKey, r.includeEnd = []byte(upper), b.includeUpper
	}
	return []*keyRange{r}
}

// valueRanges returns the index key ranges holding every entry whose leading
// value can satisfy b. Equality on a scalar also matches arrays containing
// it, so the whole array rank is scanned as well.
func valueRanges(b *bounds) ([]*keyRange, error) {
	if b == nil {
		return []*keyRange{fullRange()}, nil
	}
	if b.hasEq {
		rank := selector.RankOf(b.eq)
		if rank == selector.RankArray || rank == selector.RankObject {
			return []*keyRange{rankRange(rank)}, nil
		}
		key, err := ToKey(b.eq)
		if err != nil {
			return nil, err
		}
		return []*keyRange{
			KeyRange(key, infKey(key), true, true),
			rankRange(selector.RankArray),
		}, nil
	}
	if !b.hasLower && !b.hasUpper {
		return []*keyRange{fullRange()}, nil
	}
	var rank selector.Rank
	if b.hasLower {
		rank = selector.RankOf(b.lower)
	} else {
		rank = selector.RankOf(b.upper)
	}
	if b.hasLower && b.hasUpper && selector.RankOf(b.upper) != rank {
		// Ranges of different kinds never match anything; scan one rank so the
		// matcher can confirm that.
		return []*keyRange{rankRange(rank)}, nil
	}
	if rank == selector.RankArray || rank == selector.RankObject {
		return []*keyRange{rankRange(rank)}, nil
	}
	r := rankRange(rank)
	if b.hasLower {
		key, err := ToKey(b.lower)
		if err != nil {
			return nil, err
		}
		if b.includeLower {
			r.startKey = key
		} else {
			r.startKey = infKey(key)
		}
	}
	if b.hasUpper {
		key, err := ToKey(b.upper)
		if err != nil {
			return nil, err
		}
		if b.includeUpper {
			r.endKey = infKey(key)
		} else {
			r.endKey, r.includeEnd = key, false
		}
	}
	return []*keyRange{r}, nil
}

// rankRange spans every index entry whose leading value has the given rank.
func rankRange(rank selector.Rank) *keyRange {
	prefix := rankKey(rank)
	return KeyRange(prefix, infKey(prefix), true, true)
}
