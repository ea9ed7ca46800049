package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StatMap is a string-keyed aggregation that keeps keys in the order they were
// first set (or appeared in the decoded JSON object). Chart categories are
// taken straight from this order.
type StatMap[V any] struct {
	keys []string
	vals map[string]V
}

// NewStatMap builds a StatMap from parallel key and value slices.
// It panics if the lengths differ.
func NewStatMap[V any](keys []string, vals []V) StatMap[V] {
	if len(keys) != len(vals) {
		panic("model: NewStatMap length mismatch")
	}
	var m StatMap[V]
	for i, k := range keys {
		m.Set(k, vals[i])
	}
	return m
}

func (m *StatMap[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m StatMap[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m StatMap[V]) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m StatMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m StatMap[V]) Each(fn func(key string, v V)) {
	for _, k := range m.keys {
		fn(k, m.vals[k])
	}
}

// UnmarshalJSON decodes an object keeping its key order. A value of the wrong
// shape decodes to the zero value of V instead of failing the whole map.
func (m *StatMap[V]) UnmarshalJSON(b []byte) error {
	m.keys, m.vals = nil, nil
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("statmap: expected object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("statmap %q: %w", key, err)
		}
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			var zero V
			v = zero
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

func (m StatMap[V]) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
