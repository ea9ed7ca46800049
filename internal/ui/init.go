package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"aqdash/internal/config"
	"aqdash/internal/dashboard"
	"aqdash/internal/util/logx"
)

func initialModel(ctx context.Context, cfg *config.Config, deps Deps) *Model {
	m := &Model{
		ctx:        ctx,
		cfg:        cfg,
		deps:       deps,
		help:       help.New(),
		styles:     NewStyles(cfg.Theme == config.ThemeDark),
		keymap:     DefaultKeyMap(),
		input:      textinput.New(),
		spin:       spinner.New(),
		termWidth:  100,
		termHeight: 30,
	}
	m.spin.Spinner = spinner.Dot
	m.input.CharLimit = 256
	m.modalVP = viewport.New(80, 20)

	m.cityGrid = newGrid(deps.Cities.Engine, []int{16, 16, 5, 6, 6, 18}, cityCells)
	m.grids = map[tab]gridView{
		tabCities:    m.cityGrid,
		tabAnalytics: newGrid(deps.Analytics.Engine, []int{19, 24, 7, 18, 10}, requestCells),
	}
	if cfg.View == config.ViewAnalytics {
		m.tab = tabAnalytics
	}
	st := dashboard.ViewState{Filter: cfg.Filter, SortKey: cfg.SortKey, SortDir: cfg.SortDir, Where: cfg.Where}
	var err error
	if m.tab == tabCities {
		err = dashboard.Restore(deps.Cities.Engine, st)
	} else {
		err = dashboard.Restore(deps.Analytics.Engine, st)
	}
	if err != nil {
		logx.Warnf("ui: initial where ignored: %v", err)
		m.setStatus("where: "+err.Error(), true)
	}

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(10))
	// no default padding so width math is exact
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableStyles.Header
	ts.Cell = m.styles.TableStyles.Cell
	ts.Selected = m.styles.TableStyles.Selected
	m.tbl.SetStyles(ts)
	m.syncTable()
	return m
}

func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	m := initialModel(ctx, cfg, deps)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.fetchCities(false)}
	if m.deps.Analytics.Local() {
		cmds = append(cmds, m.waitFeed())
	} else {
		cmds = append(cmds, m.fetchAnalytics())
	}
	cmds = append(cmds, m.scheduleRefresh())
	return tea.Batch(cmds...)
}

func (m *Model) current() gridView { return m.grids[m.tab] }

// syncTable pushes the current grid's projection into the bubbles table and
// resizes it to the terminal.
func (m *Model) syncTable() {
	g := m.current()
	g.refresh()
	w := maxInt(m.termWidth-2, 40)
	cursor := m.tbl.Cursor()
	// SetRows before SetColumns: the table renders rows against the column count
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(g.columns(w))
	rows := g.tableRows()
	m.tbl.SetRows(rows)
	m.tbl.SetWidth(w)
	m.tbl.SetHeight(m.tableHeight())
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.tbl.SetCursor(cursor)
}

// tableHeight leaves room for the header, cards, charts and status line.
func (m *Model) tableHeight() int {
	fixed := 1 + 3 + chartHeight + 3
	return maxInt(m.termHeight-fixed, 5)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.lastMsg = text
	m.lastErr = isErr
}
