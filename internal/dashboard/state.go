package dashboard

import "aqdash/internal/table"

// ViewState is the filter, sort and expression a view starts with.
type ViewState struct {
	Filter  string
	SortKey string
	SortDir string // empty: the column's default direction
	Where   string
}

// Restore applies st to e. A bad where expression is returned and leaves the
// rest of the state applied.
func Restore[R any](e *table.Engine[R], st ViewState) error {
	e.SetFilter(st.Filter)
	if st.SortKey != "" {
		dir := table.Asc
		if f, ok := e.Schema().Lookup(st.SortKey); ok {
			dir = f.DefaultDir()
		}
		if st.SortDir != "" {
			dir = table.ParseDirection(st.SortDir)
		}
		e.SetSort(table.Sort{Key: st.SortKey, Dir: dir})
	}
	if st.Where == "" {
		return nil
	}
	return e.SetWhere(st.Where)
}
