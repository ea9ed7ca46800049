package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"aqdash/internal/export"
	"aqdash/internal/util/logx"
)

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	return []helpItem{
		{group: "Navigation", text: "Previous row", key: tea.Key{Type: tea.KeyUp}},
		{group: "Navigation", text: "Next row", key: tea.Key{Type: tea.KeyDown}},
		{group: "Navigation", text: "Page up", key: tea.Key{Type: tea.KeyPgUp}},
		{group: "Navigation", text: "Page down", key: tea.Key{Type: tea.KeyPgDown}},
		{group: "Navigation", text: "Go to top", key: km.Top},
		{group: "Navigation", text: "Go to bottom", key: km.Bottom},
		{group: "Navigation", text: "Previous column", key: tea.Key{Type: tea.KeyLeft}},
		{group: "Navigation", text: "Next column", key: tea.Key{Type: tea.KeyRight}},
		{group: "Navigation", text: "Next view", key: km.NextTab},
		{group: "Navigation", text: "Previous view", key: km.PrevTab},

		{group: "Table", text: "Sort by selected column", key: km.Sort},
		{group: "Table", text: "Filter (free text)", key: km.Filter},
		{group: "Table", text: "Where expression", key: km.Where},
		{group: "Table", text: "Clear filter and where", key: km.ClearFilter},

		{group: "Views", text: "Inspect row", key: km.Inspect},
		{group: "Views", text: "Health recommendations", key: km.Recommend},
		{group: "Views", text: "Application logs", key: km.AppLogs},
		{group: "Views", text: "Slowest requests (analytics)", key: km.Slowest},

		{group: "Control", text: "Refresh", key: km.Refresh},
		{group: "Control", text: "Export table", key: km.Export},
		{group: "Control", text: "Export chart (PNG)", key: km.ExportChart},
		{group: "Control", text: "Copy row", key: km.CopyLine},
		{group: "Control", text: "Help", key: km.Help},
		{group: "Control", text: "Quit", key: km.Quit},
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.syncTable()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case tea.KeyMsg:
		if m.modalActive {
			return m.updateModal(msg)
		}
		if m.inlineMode != inlineNone {
			return m.updateInline(msg)
		}
		return m.updateKeys(msg)
	case citiesMsg:
		m.citiesBusy = false
		applied := m.deps.Cities.Apply(msg.snap)
		switch {
		case msg.snap.Err != nil:
			m.setStatus("air quality: "+msg.snap.Err.Error(), true)
		case applied:
			m.setStatus(fmt.Sprintf("loaded %d cities", m.deps.Cities.Engine.Len()), false)
		}
		if m.tab == tabCities {
			m.syncTable()
		}
		return m, nil
	case analyticsMsg:
		m.analyticBusy = false
		applied := m.deps.Analytics.Apply(msg.snap)
		switch {
		case msg.snap.Err != nil:
			m.setStatus("analytics: "+msg.snap.Err.Error(), true)
		case applied:
			m.setStatus(fmt.Sprintf("loaded %d requests", m.deps.Analytics.Engine.Len()), false)
		}
		if m.tab == tabAnalytics {
			m.syncTable()
		}
		return m, nil
	case feedMsg:
		return m, m.applyFeed(msg.done)
	case tickMsg:
		cmds := []tea.Cmd{m.scheduleRefresh()}
		if !m.citiesBusy {
			cmds = append(cmds, m.fetchCities(false))
		}
		if !m.analyticBusy {
			cmds = append(cmds, m.fetchAnalytics())
		}
		return m, tea.Batch(cmds...)
	case recommendationMsg:
		m.adviceBusy = false
		if msg.err != nil {
			m.setStatus("recommendations for "+msg.city+": "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("", false)
		m.openRecommendationModal(msg.rec)
		return m, nil
	case toastMsg:
		m.setStatus(msg.text, msg.err)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	g := m.current()
	switch {
	case keyMatches(msg, km.Quit), msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case keyMatches(msg, km.Help):
		m.openHelpModal()
		return m, nil
	case keyMatches(msg, km.NextTab), keyMatches(msg, km.PrevTab):
		m.tab = 1 - m.tab
		m.tbl.SetCursor(0)
		m.syncTable()
		return m, nil
	case msg.Type == tea.KeyLeft:
		g.selectColumn(-1)
		m.syncTable()
		return m, nil
	case msg.Type == tea.KeyRight:
		g.selectColumn(1)
		m.syncTable()
		return m, nil
	case keyMatches(msg, km.Sort):
		s := g.sortSelected()
		m.setStatus(fmt.Sprintf("sort: %s %s", s.Key, s.Dir), false)
		m.syncTable()
		return m, nil
	case keyMatches(msg, km.Filter):
		m.beginInline(inlineFilter, "/", "city or country...", g.filter())
		return m, nil
	case keyMatches(msg, km.Where):
		m.beginInline(inlineWhere, "where ", `aqi > 100 && country == "IN"`, g.where())
		return m, nil
	case keyMatches(msg, km.ClearFilter):
		g.setFilter("")
		_ = g.setWhere("")
		m.setStatus("filters cleared", false)
		m.syncTable()
		return m, nil
	case keyMatches(msg, km.Refresh):
		return m, m.refreshCurrent(true)
	case keyMatches(msg, km.Recommend):
		if m.adviceBusy {
			return m, nil
		}
		return m, m.recommend()
	case keyMatches(msg, km.Inspect):
		m.openInspectorModal()
		return m, nil
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
		return m, nil
	case keyMatches(msg, km.Slowest):
		if m.tab == tabAnalytics {
			m.openSlowestModal()
		}
		return m, nil
	case keyMatches(msg, km.Export):
		m.beginInline(inlineExport, "export to ", "file.csv or file.json", m.defaultExportPath())
		return m, nil
	case keyMatches(msg, km.ExportChart):
		m.beginInline(inlineChart, "chart to ", "file.png", "aqdash-"+m.viewSlug()+".png")
		return m, nil
	case keyMatches(msg, km.CopyLine):
		if line, ok := g.rowLine(m.tbl.Cursor()); ok {
			copyToClipboard(line)
			m.setStatus("copied row to clipboard", false)
		}
		return m, nil
	case keyMatches(msg, km.Top):
		m.tbl.GotoTop()
		return m, nil
	case keyMatches(msg, km.Bottom):
		m.tbl.GotoBottom()
		return m, nil
	}
	// 1-9 toggle the sort on that column
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
		if s, ok := g.sortColumn(int(msg.Runes[0] - '1')); ok {
			m.setStatus(fmt.Sprintf("sort: %s %s", s.Key, s.Dir), false)
			m.syncTable()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) beginInline(mode inlineMode, prompt, placeholder, value string) {
	m.inlineMode = mode
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) updateInline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInline()
		return m, nil
	case tea.KeyEnter:
		mode := m.inlineMode
		value := strings.TrimSpace(m.input.Value())
		m.endInline()
		return m, m.applyInline(mode, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// the free-text filter applies while typing
	if m.inlineMode == inlineFilter {
		m.current().setFilter(m.input.Value())
		m.syncTable()
	}
	return m, cmd
}

func (m *Model) endInline() {
	m.inlineMode = inlineNone
	m.input.Blur()
}

func (m *Model) applyInline(mode inlineMode, value string) tea.Cmd {
	g := m.current()
	switch mode {
	case inlineFilter:
		g.setFilter(value)
		m.syncTable()
	case inlineWhere:
		if err := g.setWhere(value); err != nil {
			m.setStatus("where: "+err.Error(), true)
			return nil
		}
		m.setStatus("where: "+value, false)
		m.syncTable()
	case inlineExport:
		if value == "" {
			return nil
		}
		f := export.FormatCSV
		if strings.EqualFold(filepath.Ext(value), ".json") || strings.EqualFold(filepath.Ext(value), ".ndjson") {
			f = export.FormatJSON
		}
		if err := g.exportTo(value, f); err != nil {
			m.setStatus("export: "+err.Error(), true)
			return nil
		}
		visible, _ := g.count()
		logx.Infof("ui: exported %d rows to %s", visible, value)
		m.setStatus(fmt.Sprintf("exported %d rows to %s", visible, value), false)
	case inlineChart:
		if value == "" {
			return nil
		}
		title, pts, tag := m.mainChart()
		if err := export.ChartFile(value, pts, export.ChartOptions{Title: title, Color: chartColor(tag)}); err != nil {
			m.setStatus("chart: "+err.Error(), true)
			return nil
		}
		m.setStatus("chart written to "+value, false)
	}
	return nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modalKind == modalHelp {
		switch {
		case msg.Type == tea.KeyUp:
			if m.helpSel > 0 {
				m.helpSel--
				m.modalVP.SetContent(m.renderHelp())
			}
		case msg.Type == tea.KeyDown:
			if m.helpSel+1 < len(m.helpItems) {
				m.helpSel++
				m.modalVP.SetContent(m.renderHelp())
			}
		case msg.Type == tea.KeyEnter:
			m.modalActive = false
			if len(m.helpItems) > 0 {
				return m, keyCmd(m.helpItems[m.helpSel].key)
			}
		case msg.Type == tea.KeyEsc, keyMatches(msg, m.keymap.Quit), keyMatches(msg, m.keymap.Help):
			m.modalActive = false
		}
		return m, nil
	}
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || keyMatches(msg, m.keymap.Quit) {
		m.modalActive = false
		return m, nil
	}
	if keyMatches(msg, m.keymap.CopyLine) {
		copyToClipboard(m.modalBody)
		m.setStatus("copied to clipboard", false)
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) viewSlug() string {
	if m.tab == tabAnalytics {
		return "requests"
	}
	return "cities"
}

func (m *Model) defaultExportPath() string {
	return fmt.Sprintf("aqdash-%s-%s.csv", m.viewSlug(), time.Now().Format("20060102-150405"))
}
