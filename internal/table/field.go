package table

import (
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseDirection accepts asc/desc (any case); anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// Sort is the single active sort key of an engine. An empty or unknown Key
// leaves rows in snapshot order.
type Sort struct {
	Key string
	Dir Direction
}

// Field describes one column: how to read it from a row and how to compare it.
// String and time fields provide Text; number fields provide Number, which
// reports false for a missing value.
type Field[R any] struct {
	Key    string
	Title  string
	Kind   Kind
	Text   func(R) string
	Number func(R) (float64, bool)
}

// DefaultDir is descending for time-like fields, ascending otherwise.
func (f Field[R]) DefaultDir() Direction {
	if f.Kind == KindTime {
		return Desc
	}
	return Asc
}

// Value returns the numeric value used for ranking: the number itself, or the
// parsed instant in Unix microseconds for time fields.
func (f Field[R]) Value(r R) (float64, bool) {
	switch f.Kind {
	case KindNumber:
		if f.Number == nil {
			return 0, false
		}
		return f.Number(r)
	case KindTime:
		t, ok := ParseTime(f.text(r))
		if !ok {
			return 0, false
		}
		return float64(t.UnixMicro()), true
	}
	return 0, false
}

// Display renders the raw field value; missing numbers render as "".
func (f Field[R]) Display(r R) string {
	if f.Kind == KindNumber {
		v, ok := f.Value(r)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return f.text(r)
}

// Param is the value exposed to where-expressions: float64 or nil for
// numbers, the raw string otherwise.
func (f Field[R]) Param(r R) any {
	if f.Kind == KindNumber {
		v, ok := f.Value(r)
		if !ok {
			return nil
		}
		return v
	}
	return f.text(r)
}

func (f Field[R]) text(r R) string {
	if f.Text == nil {
		return ""
	}
	return f.Text(r)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/Jan/2006:15:04:05 -0700",
}

// ParseTime parses ISO-8601 timestamps with or without zone and fractional
// seconds. Timestamps without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Schema is the set of fields a view exposes plus the subset searched by the
// free-text filter.
type Schema[R any] struct {
	Fields      []Field[R]
	FilterKeys  []string
	DefaultSort Sort
}

func (s Schema[R]) Lookup(key string) (Field[R], bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[R]{}, false
}

// Keys returns the field keys in column order.
func (s Schema[R]) Keys() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Key
	}
	return out
}
