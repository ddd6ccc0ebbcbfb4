package store

import (
	"bytes"
	"fmt"
)

// keyRange bounds a cursor walk over an index or the docs bucket. A nil
// start or end leaves that side open.
type keyRange struct {
	includeStart bool
	includeEnd   bool
	startKey     []byte
	endKey       []byte
}

func KeyRange(startKey, endKey []byte, includeStart, includeEnd bool) *keyRange {
	return &keyRange{
		startKey:     startKey,
		endKey:       endKey,
		includeStart: includeStart,
		includeEnd:   includeEnd,
	}
}

func fullRange() *keyRange {
	return KeyRange(nil, nil, true, true)
}

func (ir *keyRange) contains(key []byte) bool {
	if ir.startKey != nil {
		cmpStart := bytes.Compare(key, ir.startKey)
		if cmpStart < 0 || (cmpStart == 0 && !ir.includeStart) {
			return false
		}
	}
	return !ir.pastEnd(key)
}

func (ir *keyRange) pastEnd(key []byte) bool {
	if ir.endKey == nil {
		return false
	}
	cmpEnd := bytes.Compare(key, ir.endKey)
	return cmpEnd > 0 || (cmpEnd == 0 && !ir.includeEnd)
}

func (ir *keyRange) String() string {
	left, right := "(", ")"
	if ir.includeStart {
		left = "["
	}
	if ir.includeEnd {
		right = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", left, formatKey(ir.startKey), formatKey(ir.endKey), right)
}

// rawString renders a range over raw (non-tuple) keys such as document ids.
func (ir *keyRange) rawString() string {
	left, right := "(", ")"
	if ir.includeStart {
		left = "["
	}
	if ir.includeEnd {
		right = "]"
	}
	start, end := "-", "-"
	if ir.startKey != nil {
		start = fmt.Sprintf("%q", ir.startKey)
	}
	if ir.endKey != nil {
		end = fmt.Sprintf("%q", ir.endKey)
	}
	return fmt.Sprintf("%s%s, %s%s", left, start, end, right)
}
