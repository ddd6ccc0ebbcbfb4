package selector

import "strings"

// Op identifies a reserved selector key. Field names parse to OpNone.
type Op uint8

const (
	OpNone Op = iota
	// OpUnknown is a "$"-prefixed key outside the catalog. It is still a marker,
	// never a field path.
	OpUnknown

	OpEq
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpExists
	OpType
	OpIn
	OpNin
	OpAll
	OpElemMatch
	OpAllMatch
	OpKeyMapMatch
	OpSize
	OpMod
	OpRegex

	OpAnd
	OpOr
	OpNor
	OpNot
)

const marker = "$"

// ParseOp maps a selector key to its operator.
func ParseOp(key string) Op {
	if !strings.HasPrefix(key, marker) {
		return OpNone
	}
	switch key {
	case "$eq":
		return OpEq
	case "$ne":
		return OpNe
	case "$lt":
		return OpLt
	case "$lte":
		return OpLte
	case "$gt":
		return OpGt
	case "$gte":
		return OpGte
	case "$exists":
		return OpExists
	case "$type":
		return OpType
	case "$in":
		return OpIn
	case "$nin":
		return OpNin
	case "$all":
		return OpAll
	case "$elemMatch":
		return OpElemMatch
	case "$allMatch":
		return OpAllMatch
	case "$keyMapMatch":
		return OpKeyMapMatch
	case "$size":
		return OpSize
	case "$mod":
		return OpMod
	case "$regex":
		return OpRegex
	case "$and":
		return OpAnd
	case "$or":
		return OpOr
	case "$nor":
		return OpNor
	case "$not":
		return OpNot
	default:
		return OpUnknown
	}
}

func (o Op) String() string {
	switch o {
	case OpNone:
		return ""
	case OpEq:
		return "$eq"
	case OpNe:
		return "$ne"
	case OpLt:
		return "$lt"
	case OpLte:
		return "$lte"
	case OpGt:
		return "$gt"
	case OpGte:
		return "$gte"
	case OpExists:
		return "$exists"
	case OpType:
		return "$type"
	case OpIn:
		return "$in"
	case OpNin:
		return "$nin"
	case OpAll:
		return "$all"
	case OpElemMatch:
		return "$elemMatch"
	case OpAllMatch:
		return "$allMatch"
	case OpKeyMapMatch:
		return "$keyMapMatch"
	case OpSize:
		return "$size"
	case OpMod:
		return "$mod"
	case OpRegex:
		return "$regex"
	case OpAnd:
		return "$and"
	case OpOr:
		return "$or"
	case OpNor:
		return "$nor"
	case OpNot:
		return "$not"
	default:
		return "$unknown"
	}
}

// IsMarker reports whether the key is reserved rather than a field name.
func (o Op) IsMarker() bool {
	return o != OpNone
}

// IsConnector reports whether the operator combines whole selectors.
func (o Op) IsConnector() bool {
	switch o {
	case OpAnd, OpOr, OpNor, OpNot:
		return true
	}
	return false
}

// IsRange reports whether the operator bounds a value from one side.
func (o Op) IsRange() bool {
	switch o {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// IsMarker reports whether key is an operator marker.
func IsMarker(key string) bool {
	return ParseOp(key).IsMarker()
}
