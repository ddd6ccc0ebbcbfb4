package selector

import (
	"cmp"
	"encoding/json"
	"reflect"
	"time"
)

// Rank orders values of different kinds:
// null < false < true < numbers < strings < arrays < objects.
type Rank uint8

const (
	RankNull Rank = iota
	RankBool
	RankNumber
	RankString
	RankArray
	RankObject
)

func (r Rank) String() string {
	switch r {
	case RankNull:
		return "null"
	case RankBool:
		return "boolean"
	case RankNumber:
		return "number"
	case RankString:
		return "string"
	case RankArray:
		return "array"
	default:
		return "object"
	}
}

// RankOf returns the collation rank of v.
func RankOf(v any) Rank {
	switch v.(type) {
	case nil:
		return RankNull
	case bool:
		return RankBool
	case string:
		return RankString
	case time.Time:
		return RankString
	case []byte:
		return RankString
	}
	if _, ok := ToFloat(v); ok {
		return RankNumber
	}
	if _, ok := AsObject(v); ok {
		return RankObject
	}
	if _, ok := AsList(v); ok {
		return RankArray
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map {
		return RankObject
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return RankNull
	}
	return RankObject
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Compare collates a and b, returning -1, 0 or +1.
func Compare(a, b any) int {
	ra, rb := RankOf(a), RankOf(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case RankNull:
		return 0
	case RankBool:
		return compareBool(a.(bool), b.(bool))
	case RankNumber:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmp.Compare(fa, fb)
	case RankString:
		return cmp.Compare(stringOf(a), stringOf(b))
	case RankArray:
		la, _ := AsList(a)
		lb, _ := AsList(b)
		for i := 0; i < len(la) && i < len(lb); i++ {
			if c := Compare(la[i], lb[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(la), len(lb))
	default:
		oa, okA := AsObject(a)
		ob, okB := AsObject(b)
		if !okA || !okB {
			return 0
		}
		ka, kb := sortedKeys(oa), sortedKeys(ob)
		for i := 0; i < len(ka) && i < len(kb); i++ {
			if c := cmp.Compare(ka[i], kb[i]); c != 0 {
				return c
			}
			if c := Compare(oa[ka[i]], ob[kb[i]]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(ka), len(kb))
	}
}

// Equal reports whether a and b collate as equal.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.UTC().Format(time.RFC3339Nano)
	}
	return ""
}
