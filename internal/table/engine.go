// Package table holds a view's current row snapshot and projects it through a
// single free-text filter and a single sort key.
package table

import (
	"golang.org/x/text/collate"

	"aqdash/internal/filter"
	"aqdash/internal/util/logx"
)

// Engine is owned by one view and is not safe for concurrent use.
type Engine[R any] struct {
	schema Schema[R]
	known  map[string]bool
	coll   *collate.Collator

	rows  []R
	sort  Sort
	query string
	where string
	eval  *filter.Evaluator
}

func New[R any](schema Schema[R]) *Engine[R] {
	known := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		known[f.Key] = true
	}
	e := &Engine[R]{schema: schema, known: known, coll: NewCollator(), sort: schema.DefaultSort}
	e.rebuild()
	return e
}

// SetRows replaces the snapshot. Sort and filter state are kept.
func (e *Engine[R]) SetRows(rows []R) {
	snap := make([]R, len(rows))
	copy(snap, rows)
	e.rows = snap
}

// Rows returns the current snapshot in received order.
func (e *Engine[R]) Rows() []R {
	out := make([]R, len(e.rows))
	copy(out, e.rows)
	return out
}

func (e *Engine[R]) Len() int { return len(e.rows) }

func (e *Engine[R]) Schema() Schema[R] { return e.schema }

func (e *Engine[R]) Sort() Sort { return e.sort }

func (e *Engine[R]) Filter() string { return e.query }

// Where returns the expression currently narrowing the rows, or "" when none
// is active.
func (e *Engine[R]) Where() string {
	if !e.eval.HasWhere() {
		return ""
	}
	return e.where
}

// SetFilter replaces the free-text filter. It never fails.
func (e *Engine[R]) SetFilter(text string) {
	e.query = text
	e.rebuild()
}

// SetWhere replaces the expression predicate. An empty string clears it. On
// error the previous predicate stays active.
func (e *Engine[R]) SetWhere(expr string) error {
	ev, err := filter.NewEvaluator(filter.Criteria{Query: e.query, Fields: e.schema.FilterKeys, Where: expr}, e.known)
	if err != nil {
		return err
	}
	e.where = expr
	e.eval = ev
	return nil
}

// ToggleSort flips the direction when key is already active, otherwise makes
// key active with its default direction. Unknown keys are accepted and leave
// rows in snapshot order.
func (e *Engine[R]) ToggleSort(key string) Sort {
	if key == e.sort.Key {
		e.sort.Dir = e.sort.Dir.Flip()
		return e.sort
	}
	f, ok := e.schema.Lookup(key)
	if !ok {
		logx.Debugf("table: sort on unknown key %q", key)
		e.sort = Sort{Key: key, Dir: Asc}
		return e.sort
	}
	e.sort = Sort{Key: key, Dir: f.DefaultDir()}
	return e.sort
}

// SetSort forces a sort key and direction.
func (e *Engine[R]) SetSort(s Sort) { e.sort = s }

// Project returns sort(filter(rows)) as a new slice.
func (e *Engine[R]) Project() []R {
	out := make([]R, 0, len(e.rows))
	for _, r := range e.rows {
		if e.match(r) {
			out = append(out, r)
		}
	}
	if f, ok := e.schema.Lookup(e.sort.Key); ok {
		sortStable(out, f, e.sort.Dir, e.coll)
	}
	return out
}

func (e *Engine[R]) match(r R) bool {
	text := func(key string) string {
		f, ok := e.schema.Lookup(key)
		if !ok {
			return ""
		}
		return f.Display(r)
	}
	params := func() map[string]any {
		p := make(map[string]any, len(e.schema.Fields))
		for _, f := range e.schema.Fields {
			p[f.Key] = f.Param(r)
		}
		return p
	}
	return e.eval.Match(text, params)
}

func (e *Engine[R]) rebuild() {
	ev, err := filter.NewEvaluator(filter.Criteria{Query: e.query, Fields: e.schema.FilterKeys, Where: e.where}, e.known)
	if err != nil {
		// where was validated when set; keep the text filter working regardless
		logx.Warnf("table: rebuilding filter: %v", err)
		ev, _ = filter.NewEvaluator(filter.Criteria{Query: e.query, Fields: e.schema.FilterKeys}, nil)
	}
	e.eval = ev
}
