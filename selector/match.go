package selector

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// regexCacheSize bounds the compiled "$regex" patterns kept across matches.
const regexCacheSize = 128

var regexCache, _ = lru.New[string, *regexp.Regexp](regexCacheSize)

// compileRegex returns the compiled pattern, compiling it at most once while
// it stays in the cache.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid $regex %q: %w", pattern, err)
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// Match reports whether doc satisfies s. Top-level keys are combined with AND.
// The only error is an invalid "$regex" pattern.
func Match(doc map[string]any, s Selector) (bool, error) {
	return matchObject(doc, s, "")
}

// Lookup resolves a dotted path inside doc. Numeric segments index into arrays.
func Lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		if obj, ok := AsObject(cur); ok {
			v, exists := obj[seg]
			if !exists {
				return nil, false
			}
			cur = v
			continue
		}
		list, ok := AsList(cur)
		if !ok {
			return nil, false
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(list) {
			return nil, false
		}
		cur = list[i]
	}
	return cur, true
}

func matchObject(doc map[string]any, s map[string]any, prefix string) (bool, error) {
	for _, key := range sortedKeys(s) {
		ok, err := matchKey(doc, key, s[key], prefix)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(doc map[string]any, key string, cond any, prefix string) (bool, error) {
	switch op := ParseOp(key); op {
	case OpAnd, OpOr, OpNor:
		list, ok := AsList(cond)
		if !ok {
			return false, nil
		}
		return matchConnector(doc, op, list, prefix)
	case OpNot:
		sub, ok := AsObject(cond)
		if !ok {
			return false, nil
		}
		matched, err := matchObject(doc, sub, prefix)
		return !matched, err
	case OpNone:
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch Classify(cond) {
		case ShapeDocument:
			sub, _ := AsObject(cond)
			return matchObject(doc, sub, path)
		case ShapeOperator:
			sub, _ := AsObject(cond)
			v, exists := Lookup(doc, path)
			return matchOps(v, exists, sub)
		default:
			v, exists := Lookup(doc, path)
			return exists && equalOrContains(v, cond), nil
		}
	default:
		return false, nil
	}
}

func matchConnector(doc map[string]any, op Op, list []any, prefix string) (bool, error) {
	for _, member := range list {
		sub, ok := AsObject(member)
		if !ok {
			if op == OpAnd {
				return false, nil
			}
			continue
		}
		matched, err := matchObject(doc, sub, prefix)
		if err != nil {
			return false, err
		}
		switch op {
		case OpAnd:
			if !matched {
				return false, nil
			}
		case OpOr:
			if matched {
				return true, nil
			}
		case OpNor:
			if matched {
				return false, nil
			}
		}
	}
	return op != OpOr, nil
}

// matchOps applies every operator of ops to one field value.
func matchOps(v any, exists bool, ops map[string]any) (bool, error) {
	for _, key := range sortedKeys(ops) {
		ok, err := matchOp(v, exists, ParseOp(key), ops[key])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchOp(v any, exists bool, op Op, arg any) (bool, error) {
	switch op {
	case OpEq:
		return exists && equalOrContains(v, arg), nil
	case OpNe:
		return !exists || !equalOrContains(v, arg), nil
	case OpLt, OpLte, OpGt, OpGte:
		if !exists || RankOf(v) != RankOf(arg) {
			return false, nil
		}
		c := Compare(v, arg)
		switch op {
		case OpLt:
			return c < 0, nil
		case OpLte:
			return c <= 0, nil
		case OpGt:
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	case OpExists:
		want, ok := arg.(bool)
		if !ok {
			return false, nil
		}
		return exists == want, nil
	case OpType:
		name, ok := arg.(string)
		return ok && exists && RankOf(v).String() == name, nil
	case OpIn:
		list, ok := AsList(arg)
		if !ok || !exists {
			return false, nil
		}
		return inList(v, list), nil
	case OpNin:
		list, ok := AsList(arg)
		if !ok {
			return false, nil
		}
		return !exists || !inList(v, list), nil
	case OpAll:
		want, ok := AsList(arg)
		have, isList := AsList(v)
		if !ok || !exists || !isList {
			return false, nil
		}
		for _, w := range want {
			if !inList(w, have) {
				return false, nil
			}
		}
		return true, nil
	case OpElemMatch, OpAllMatch:
		sub, ok := AsObject(arg)
		elems, isList := AsList(v)
		if !ok || !exists || !isList || len(elems) == 0 {
			return false, nil
		}
		for _, elem := range elems {
			matched, err := matchElement(elem, sub)
			if err != nil {
				return false, err
			}
			if op == OpElemMatch && matched {
				return true, nil
			}
			if op == OpAllMatch && !matched {
				return false, nil
			}
		}
		return op == OpAllMatch, nil
	case OpKeyMapMatch:
		sub, ok := AsObject(arg)
		obj, isObj := AsObject(v)
		if !ok || !exists || !isObj {
			return false, nil
		}
		for k := range obj {
			matched, err := matchOps(k, true, sub)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
		}
		return false, nil
	case OpSize:
		n, ok := ToFloat(arg)
		list, isList := AsList(v)
		return ok && exists && isList && float64(len(list)) == n, nil
	case OpMod:
		return matchMod(v, exists, arg), nil
	case OpRegex:
		pattern, ok := arg.(string)
		if !ok {
			return false, nil
		}
		re, err := compileRegex(pattern)
		if err != nil {
			return false, err
		}
		s, isString := v.(string)
		return exists && isString && re.MatchString(s), nil
	case OpNot:
		sub, ok := AsObject(arg)
		if !ok {
			return false, nil
		}
		matched, err := matchOps(v, exists, sub)
		return !matched, err
	default:
		return false, nil
	}
}

// matchElement matches one array element against an $elemMatch argument,
// which is either an operator object or a sub-document selector.
func matchElement(elem any, sub map[string]any) (bool, error) {
	if Classify(sub) == ShapeOperator {
		return matchOps(elem, true, sub)
	}
	obj, ok := AsObject(elem)
	if !ok {
		return false, nil
	}
	return matchObject(obj, sub, "")
}

func matchMod(v any, exists bool, arg any) bool {
	args, ok := AsList(arg)
	if !ok || !exists || len(args) != 2 {
		return false
	}
	divisor, okD := ToFloat(args[0])
	remainder, okR := ToFloat(args[1])
	n, okN := ToFloat(v)
	if !okD || !okR || !okN || divisor == 0 || n != math.Trunc(n) {
		return false
	}
	return int64(n)%int64(divisor) == int64(remainder)
}

// equalOrContains is equality, extended to array fields holding the value.
func equalOrContains(v, want any) bool {
	if Equal(v, want) {
		return true
	}
	if RankOf(want) == RankArray {
		return false
	}
	if list, ok := AsList(v); ok {
		return inList(want, list)
	}
	return false
}

func inList(v any, list []any) bool {
	for _, item := range list {
		if equalOrContains(v, item) {
			return true
		}
	}
	return false
}
