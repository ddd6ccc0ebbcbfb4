package thunderdoc

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// FullTextField holds the space-joined full-text properties of a stored
// document. It never leaves the model.
const FullTextField = "fulltext_"

// Kind is the declared type of a model property.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	}
	return "any"
}

// encode turns caller properties into the stored form: declared properties
// only, dates as RFC 3339 strings and the full-text field filled in.
func (m *Model) encode(props map[string]any) Document {
	doc := make(Document, len(m.props)+3)
	for _, p := range m.props {
		v := props[p]
		if t, ok := v.(time.Time); ok && m.schema.Props[p] == KindDate {
			v = t.UTC().Format(time.RFC3339Nano)
		}
		doc[p] = v
	}
	for _, reserved := range []string{"_id", "_rev"} {
		if v, ok := props[reserved]; ok {
			doc[reserved] = v
		}
	}
	if text := m.fullText(doc); text != "" {
		doc[FullTextField] = text
	}
	return doc
}

func (m *Model) fullText(doc Document) string {
	if len(m.schema.FullText) == 0 {
		return ""
	}
	parts := make([]string, len(m.schema.FullText))
	empty := true
	for i, p := range m.schema.FullText {
		switch v := doc[p].(type) {
		case nil:
		case string:
			parts[i] = v
		default:
			parts[i] = fmt.Sprint(v)
		}
		if parts[i] != "" {
			empty = false
		}
	}
	if empty {
		return ""
	}
	return strings.Join(parts, " ")
}

// restore is the inverse of encode for documents read back from the store.
func (m *Model) restore(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := maps.Clone(doc)
	delete(out, FullTextField)
	for p, kind := range m.schema.Props {
		if kind != KindDate {
			continue
		}
		s, ok := out[p].(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			out[p] = t
		}
	}
	return out
}

// DBName returns the store name for a model. Daily models get one store per
// calendar day, suffixed with the date of now.
func DBName(name string, daily bool, now time.Time) string {
	if !daily {
		return name
	}
	return name + "." + now.Format("20060102")
}
