package ui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"aqdash/internal/export"
	tabular "aqdash/internal/table"
)

// gridView is what the update loop needs from a tab's table, independent of
// the row type.
type gridView interface {
	refresh()
	count() (visible, total int)
	columns(width int) []table.Column
	tableRows() []table.Row
	selectColumn(delta int)
	sortSelected() tabular.Sort
	sortColumn(i int) (tabular.Sort, bool)
	sortState() tabular.Sort
	filter() string
	setFilter(text string)
	where() string
	setWhere(expr string) error
	rowJSON(i int) ([]byte, bool)
	rowLine(i int) (string, bool)
	exportTo(path string, f export.Format) error
}

// grid binds a table engine to the bubbles table. rows is the last
// projection; the cursor of the bubbles table indexes into it.
type grid[R any] struct {
	eng    *tabular.Engine[R]
	cells  func(R) []string
	widths []int // minimum width per column; the last one takes the remainder
	rows   []R
	selCol int
}

func newGrid[R any](eng *tabular.Engine[R], widths []int, cells func(R) []string) *grid[R] {
	return &grid[R]{eng: eng, cells: cells, widths: widths}
}

func (g *grid[R]) refresh() { g.rows = g.eng.Project() }

func (g *grid[R]) count() (int, int) { return len(g.rows), g.eng.Len() }

func (g *grid[R]) columns(width int) []table.Column {
	fields := g.eng.Schema().Fields
	cur := g.eng.Sort()
	cols := make([]table.Column, len(fields))
	used := 0
	for i, f := range fields {
		title := f.Title
		if f.Key == cur.Key {
			if cur.Dir == tabular.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if i == g.selCol {
			title = "[" + title + "]"
		}
		w := 10
		if i < len(g.widths) {
			w = g.widths[i]
		}
		if n := len([]rune(title)); n > w {
			w = n
		}
		cols[i] = table.Column{Title: title, Width: w}
		used += w + 1
	}
	if n := len(cols); n > 0 && width > used {
		cols[n-1].Width += width - used
	}
	return cols
}

func (g *grid[R]) tableRows() []table.Row {
	out := make([]table.Row, len(g.rows))
	for i, r := range g.rows {
		out[i] = table.Row(g.cells(r))
	}
	return out
}

func (g *grid[R]) selectColumn(delta int) {
	n := len(g.eng.Schema().Fields)
	if n == 0 {
		return
	}
	g.selCol = ((g.selCol+delta)%n + n) % n
}

func (g *grid[R]) sortSelected() tabular.Sort {
	s, _ := g.sortColumn(g.selCol)
	return s
}

// sortColumn toggles the sort on column i (0-based).
func (g *grid[R]) sortColumn(i int) (tabular.Sort, bool) {
	fields := g.eng.Schema().Fields
	if i < 0 || i >= len(fields) {
		return g.eng.Sort(), false
	}
	g.selCol = i
	s := g.eng.ToggleSort(fields[i].Key)
	g.refresh()
	return s, true
}

func (g *grid[R]) sortState() tabular.Sort { return g.eng.Sort() }

func (g *grid[R]) filter() string { return g.eng.Filter() }

func (g *grid[R]) setFilter(text string) {
	g.eng.SetFilter(text)
	g.refresh()
}

func (g *grid[R]) where() string { return g.eng.Where() }

func (g *grid[R]) setWhere(expr string) error {
	if err := g.eng.SetWhere(expr); err != nil {
		return err
	}
	g.refresh()
	return nil
}

func (g *grid[R]) rowJSON(i int) ([]byte, bool) {
	if i < 0 || i >= len(g.rows) {
		return nil, false
	}
	b, err := json.Marshal(g.rows[i])
	if err != nil {
		return nil, false
	}
	return b, true
}

// rowLine is the selected row as tab-separated display values.
func (g *grid[R]) rowLine(i int) (string, bool) {
	if i < 0 || i >= len(g.rows) {
		return "", false
	}
	s := g.eng.Schema()
	parts := make([]string, len(s.Fields))
	for j, f := range s.Fields {
		parts[j] = f.Display(g.rows[i])
	}
	return strings.Join(parts, "\t"), true
}

func (g *grid[R]) exportTo(path string, f export.Format) error {
	return export.ToFile(path, f, g.eng.Schema(), g.rows)
}
