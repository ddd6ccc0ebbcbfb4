package store

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"rsc.io/ordered"

	"github.com/longlodw/thunderdoc/selector"
)

type Marshaler interface {
	Marshal(v any) (data []byte, err error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, v any) error
}

type MarshalUnmarshaler interface {
	Marshaler
	Unmarshaler
}

var (
	JsonMaUn    MarshalUnmarshaler = &jsonMarshalUnmarshaler{}
	MsgpackMaUn MarshalUnmarshaler = &msgpackMarshalUnmarshaler{}
)

type jsonMarshalUnmarshaler struct{}

func (j *jsonMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (j *jsonMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

type msgpackMarshalUnmarshaler struct{}

func (m *msgpackMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal widens decoded integers to int64/uint64 so restored documents do
// not surface msgpack's compact int8/int16 forms.
func (m *msgpackMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}

// keyComponent renders one indexed value as an ordered tuple fragment. The
// collation rank leads so values of different kinds never interleave.
func keyComponent(v any) ([]any, error) {
	rank := selector.RankOf(v)
	switch rank {
	case selector.RankNull:
		return []any{int(rank)}, nil
	case selector.RankBool:
		if v.(bool) {
			return []any{int(rank), 1}, nil
		}
		return []any{int(rank), 0}, nil
	case selector.RankNumber:
		f, _ := selector.ToFloat(v)
		return []any{int(rank), f}, nil
	case selector.RankString:
		switch s := v.(type) {
		case string:
			return []any{int(rank), s}, nil
		case []byte:
			return []any{int(rank), s}, nil
		case time.Time:
			return []any{int(rank), s.UTC().Format(time.RFC3339Nano)}, nil
		}
		b, err := MsgpackMaUn.Marshal(v)
		if err != nil {
			return nil, ErrCannotEncode(v)
		}
		return []any{int(rank), b}, nil
	default:
		b, err := MsgpackMaUn.Marshal(v)
		if err != nil {
			return nil, ErrCannotEncode(v)
		}
		return []any{int(rank), b}, nil
	}
}

// ToKey encodes values as an order-preserving composite key.
func ToKey(values ...any) ([]byte, error) {
	var key []byte
	for _, v := range values {
		parts, err := keyComponent(v)
		if err != nil {
			return nil, err
		}
		if !ordered.CanEncode(parts...) {
			return nil, ErrCannotEncode(v)
		}
		key = ordered.Append(key, parts...)
	}
	return key, nil
}

// rankKey is the shortest key prefix shared by every value of one rank.
func rankKey(rank selector.Rank) []byte {
	return ordered.Encode(int(rank))
}

// infKey sorts after every key sharing prefix.
func infKey(prefix []byte) []byte {
	return ordered.Append(bytes.Clone(prefix), ordered.Inf)
}

func formatKey(key []byte) string {
	if key == nil {
		return "-"
	}
	s, err := ordered.DecodeFmt(key)
	if err != nil {
		return string(key)
	}
	return s
}
