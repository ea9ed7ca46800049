package table

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NewCollator returns the locale-aware, case-insensitive collator used for
// string columns. Collators are not safe for concurrent use.
func NewCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

type keyed[R any] struct {
	row R
	num float64
	str string
}

// SortStable orders rows in place by f. Missing numbers and unparseable
// timestamps compare as 0; equal keys keep their relative order.
func SortStable[R any](rows []R, f Field[R], dir Direction) {
	var coll *collate.Collator
	if f.Kind == KindString {
		coll = NewCollator()
	}
	sortStable(rows, f, dir, coll)
}

func sortStable[R any](rows []R, f Field[R], dir Direction, coll *collate.Collator) {
	if len(rows) < 2 {
		return
	}
	items := make([]keyed[R], len(rows))
	for i, r := range rows {
		items[i].row = r
		if f.Kind == KindString {
			items[i].str = strings.ToLower(f.text(r))
			continue
		}
		v, _ := f.Value(r)
		items[i].num = v
	}
	cmp := func(a, b keyed[R]) int {
		if f.Kind == KindString {
			if coll != nil {
				return coll.CompareString(a.str, b.str)
			}
			return strings.Compare(a.str, b.str)
		}
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	for i := range items {
		rows[i] = items[i].row
	}
}
