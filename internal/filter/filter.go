package filter

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

type Criteria struct {
	Query  string   // plain case-insensitive contains
	Fields []string // keys Query is matched against (OR); empty means Query matches everything
	Where  string   // govaluate expression over row params, e.g. `aqi > 100 && country == "IN"`
}

type Evaluator struct {
	query  string
	fields []string
	expr   *govaluate.EvaluableExpression
}

// NewEvaluator compiles c. When known is non-nil, every variable referenced by
// the Where expression must be one of its keys.
func NewEvaluator(c Criteria, known map[string]bool) (*Evaluator, error) {
	ev := &Evaluator{query: strings.ToLower(c.Query), fields: append([]string(nil), c.Fields...)}
	if strings.TrimSpace(c.Where) != "" {
		expr, err := govaluate.NewEvaluableExpression(c.Where)
		if err != nil {
			return nil, err
		}
		if known != nil {
			for _, v := range expr.Vars() {
				if !known[v] {
					return nil, fmt.Errorf("unknown field %q in expression", v)
				}
			}
		}
		ev.expr = expr
	}
	return ev, nil
}

// HasWhere reports whether a Where expression is active.
func (e *Evaluator) HasWhere() bool { return e != nil && e.expr != nil }

// Match keeps a row when the query is found in at least one configured field
// and the Where expression (if any) evaluates to true. text returns the
// display string of a field; params is only called when an expression is set.
func (e *Evaluator) Match(text func(key string) string, params func() map[string]any) bool {
	if e == nil {
		return true
	}
	if e.query != "" && len(e.fields) > 0 {
		found := false
		for _, k := range e.fields {
			if strings.Contains(strings.ToLower(text(k)), e.query) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if e.expr != nil {
		result, err := e.expr.Evaluate(params())
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}
