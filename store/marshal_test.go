package store

import (
	"bytes"
	"math"
	"testing"
	"time"
)

// TestToKey_LexicographicalOrder checks that encoded keys sort the same way
// the values collate.
func TestToKey_LexicographicalOrder(t *testing.T) {
	tests := []struct {
		name   string
		values []any
	}{
		{
			name:   "ranks",
			values: []any{nil, false, true, -1, 0, 2.5, "", "a", []any{1}, map[string]any{"a": 1}},
		},
		{
			name:   "mixed sign numbers",
			values: []any{math.Inf(-1), int64(-100), -1.5, -1, 0, uint8(1), 1.5, int64(100), math.Inf(1)},
		},
		{
			name:   "strings",
			values: []any{"", "a", "aa", "ab", "b", "ba", "bb", "z"},
		},
		{
			name:   "strings with nulls",
			values: []any{"a", "a\x00", "a\x00\x00", "a\x01", "ab"},
		},
		{
			name:   "multibyte strings",
			values: []any{"测试机构_1", "测试机构_10", "测试机构_2"},
		},
		{
			name: "times",
			values: []any{
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prev []byte
			for i, v := range tt.values {
				key, err := ToKey(v)
				if err != nil {
					t.Fatalf("ToKey(%v): %v", v, err)
				}
				if i > 0 && bytes.Compare(prev, key) >= 0 {
					t.Errorf("key for %v (index %d) does not sort after %v", v, i, tt.values[i-1])
				}
				prev = key
			}
		})
	}
}

func TestToKey_NumbersShareEncoding(t *testing.T) {
	a, err := ToKey(int64(3))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ToKey(3.0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("int64(3) and 3.0 encode differently: %x vs %x", a, b)
	}
}

func TestToKey_TupleOrder(t *testing.T) {
	tuples := [][]any{
		{"a", 2},
		{"a", 10},
		{"a", "x"},
		{"b", nil},
		{"b", 0},
	}
	var prev []byte
	for i, tup := range tuples {
		key, err := ToKey(tup...)
		if err != nil {
			t.Fatalf("ToKey(%v): %v", tup, err)
		}
		if i > 0 && bytes.Compare(prev, key) >= 0 {
			t.Errorf("tuple %v does not sort after %v", tup, tuples[i-1])
		}
		prev = key
	}
}

func TestToKey_PrefixRanges(t *testing.T) {
	prefix, err := ToKey("a")
	if err != nil {
		t.Fatal(err)
	}
	full, err := ToKey("a", 42)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(full, prefix) {
		t.Fatalf("%x is not a prefix of %x", prefix, full)
	}
	next, err := ToKey("aa")
	if err != nil {
		t.Fatal(err)
	}

	kr := KeyRange(prefix, infKey(prefix), true, false)
	if !kr.contains(full) {
		t.Errorf("range %s should contain %s", kr, formatKey(full))
	}
	if kr.contains(next) {
		t.Errorf("range %s should not contain %s", kr, formatKey(next))
	}
}

func TestKeyRange_Contains(t *testing.T) {
	lo, _ := ToKey(1)
	mid, _ := ToKey(2)
	hi, _ := ToKey(3)

	tests := []struct {
		name string
		kr   *keyRange
		key  []byte
		want bool
	}{
		{"inclusive start", KeyRange(lo, hi, true, true), lo, true},
		{"exclusive start", KeyRange(lo, hi, false, true), lo, false},
		{"inclusive end", KeyRange(lo, hi, true, true), hi, true},
		{"exclusive end", KeyRange(lo, hi, true, false), hi, false},
		{"inside", KeyRange(lo, hi, false, false), mid, true},
		{"open start", KeyRange(nil, mid, true, true), lo, true},
		{"open end", KeyRange(mid, nil, true, true), hi, true},
		{"full", fullRange(), mid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kr.contains(tt.key); got != tt.want {
				t.Errorf("contains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMsgpackMaUn_LooseIntegers(t *testing.T) {
	data, err := MsgpackMaUn.Marshal(map[string]any{"n": 5, "s": "x"})
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := MsgpackMaUn.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["n"].(int64); !ok {
		t.Errorf("n decoded as %T, want int64", doc["n"])
	}
	if doc["s"] != "x" {
		t.Errorf("s = %v", doc["s"])
	}
}
