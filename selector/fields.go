package selector

// Fields returns the leaf field paths referenced by s in depth-first order.
func Fields(s Selector) []string {
	return AppendFields(nil, s)
}

// AppendFields appends to dst every leaf field path compared by s. Keys of one
// object are visited in sorted order; list members of connectors keep their
// order. The selector is never modified and malformed parts are skipped.
func AppendFields(dst []string, s Selector) []string {
	return appendFields(dst, s, "")
}

func appendFields(dst []string, obj map[string]any, prefix string) []string {
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		switch op := ParseOp(key); op {
		case OpAnd, OpOr, OpNor:
			list, ok := AsList(value)
			if !ok {
				continue
			}
			for _, member := range list {
				if sub, ok := AsObject(member); ok {
					dst = appendFields(dst, sub, prefix)
				}
			}
		case OpNot:
			if sub, ok := AsObject(value); ok {
				dst = appendFields(dst, sub, prefix)
			}
		case OpNone:
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			switch Classify(value) {
			case ShapeDocument:
				sub, _ := AsObject(value)
				dst = appendFields(dst, sub, path)
			default:
				dst = append(dst, path)
			}
		default:
			// operator markers outside a field's value carry no path
		}
	}
	return dst
}
