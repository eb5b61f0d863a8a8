package query

import (
	"bytes"
	"encoding/json"
	"slices"
)

type Entry struct {
	Value any
	Order int
}

// Document is a projected listing. Keys marshal in insertion order.
type Document map[string]Entry

// Set adds or replaces key. A replaced key keeps its position.
func (d Document) Set(key string, value any) {
	if e, ok := d[key]; ok {
		d[key] = Entry{Value: value, Order: e.Order}
		return
	}
	d[key] = Entry{Value: value, Order: len(d)}
}

func (d Document) Get(key string) (any, bool) {
	e, ok := d[key]
	return e.Value, ok
}

// Keys returns the keys in emission order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return d[a].Order - d[b].Order
	})
	return keys
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(d[k].Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
