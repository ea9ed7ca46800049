package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"aqdash/internal/aggregate"
	"aqdash/internal/classify"
	"aqdash/internal/dashboard"
	"aqdash/internal/model"
	"aqdash/internal/util/logx"
)

// chartHeight is the title plus the bars of one chart.
const chartHeight = 9

func (m *Model) View() string {
	parts := []string{m.renderTabs(), m.renderCards(), m.tbl.View(), m.renderCharts(), m.renderStatus()}
	v := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.modalActive {
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderTabs() string {
	var tabs []string
	for _, t := range []tab{tabCities, tabAnalytics} {
		if t == m.tab {
			tabs = append(tabs, m.styles.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(t.String()))
		}
	}
	left := strings.Join(tabs, "  ")
	right := m.styles.Status.Render(m.sourceLabel())
	gap := m.termWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) sourceLabel() string {
	if m.tab == tabAnalytics && m.deps.Feed != nil {
		total, dropped, skipped := m.deps.Feed.Stats()
		return fmt.Sprintf("%s · %d lines · %d dropped · %d skipped", m.deps.Feed.Format(), total, dropped, skipped)
	}
	return m.cfg.APIBaseURL
}

func (m *Model) card(label, value string) string {
	return m.styles.Card.Render(m.styles.CardLabel.Render(label) + " " + m.styles.CardValue.Render(value))
}

func (m *Model) renderCards() string {
	var cards []string
	if m.tab == tabCities {
		g := m.deps.Cities.Global()
		cards = []string{
			m.card("Cities", fmt.Sprint(g.TotalCities)),
			m.card("Countries", fmt.Sprint(g.TotalCountries)),
			m.card("Avg AQI", fmt.Sprintf("%.1f", g.AverageGlobalAqi)),
			m.card("Good", fmt.Sprint(g.CitiesWithGoodAir)),
			m.card("Moderate", formatInt(g.CitiesWithModerateAir)),
			m.card("Unhealthy", fmt.Sprint(g.CitiesWithUnhealthyAir)),
		}
		if g.CleanestCity != "" {
			cards = append(cards, m.card("Cleanest", g.CleanestCity+" "+dashboard.FormatNumber(g.CleanestAqi, 0)))
		}
		if g.MostPollutedCity != "" {
			cards = append(cards, m.card("Most polluted", g.MostPollutedCity+" "+dashboard.FormatNumber(g.MostPollutedAqi, 0)))
		}
	} else {
		c := m.deps.Analytics.Cards()
		cards = []string{
			m.card("Requests", fmt.Sprint(c.TotalRequests)),
			m.card("Endpoints", fmt.Sprint(c.ActiveEndpoints)),
			m.card("Avg response", fmt.Sprintf("%d ms", c.AvgResponseMs)),
			m.card("Success rate", fmt.Sprintf("%.1f%%", c.SuccessRatePct)),
		}
	}
	// drop cards that do not fit rather than wrapping
	row := ""
	for _, c := range cards {
		next := lipgloss.JoinHorizontal(lipgloss.Top, row, c)
		if row != "" && lipgloss.Width(next) > m.termWidth {
			break
		}
		row = next
	}
	return row
}

// mainChart is the chart exported as PNG for the current view.
func (m *Model) mainChart() (string, []aggregate.Point, func(aggregate.Point) string) {
	if m.tab == tabCities {
		return "Most polluted cities (AQI)", m.deps.Cities.TopPollutedSeries(10), aqiTag
	}
	return "Requests by endpoint", m.deps.Analytics.EndpointSeries(), nil
}

func (m *Model) renderCharts() string {
	type chartSpec struct {
		title string
		pts   []aggregate.Point
		tag   func(aggregate.Point) string
	}
	var charts []chartSpec
	if m.tab == tabCities {
		charts = []chartSpec{
			{"Most polluted", m.deps.Cities.TopPollutedSeries(chartHeight - 1), aqiTag},
			{"Air quality (global)", m.deps.Cities.Distribution(), bandTag},
			{"AQI bands (visible)", m.deps.Cities.Histogram(), bandTag},
		}
	} else {
		charts = []chartSpec{
			{"Requests by endpoint", m.deps.Analytics.EndpointSeries(), nil},
			{"Avg response time (ms)", m.deps.Analytics.ResponseTimeSeries(), latencyTag},
			{"Success vs errors", m.deps.Analytics.SuccessErrorSeries(), successTag},
		}
	}
	w := maxInt((m.termWidth-2*len(charts))/len(charts), 20)
	rendered := make([]string, len(charts))
	for i, c := range charts {
		pts := c.pts
		if len(pts) > chartHeight-1 {
			pts = pts[:chartHeight-1]
		}
		box := lipgloss.NewStyle().Width(w).Height(chartHeight).MarginRight(2)
		rendered[i] = box.Render(barChart(m.styles, c.title, pts, w, c.tag))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderStatus() string {
	if m.inlineMode != inlineNone {
		return m.input.View() + "\n" + m.styles.Help.Render("[enter]=apply  [esc]=cancel")
	}
	g := m.current()
	visible, total := g.count()
	var updated time.Time
	var lastErr error
	busy := false
	if m.tab == tabCities {
		updated, lastErr, busy = m.deps.Cities.Updated(), m.deps.Cities.Err(), m.citiesBusy
	} else {
		updated, lastErr, busy = m.deps.Analytics.Updated(), m.deps.Analytics.Err(), m.analyticBusy
	}
	busy = busy || m.adviceBusy

	left := ""
	if busy {
		left = m.spin.View() + " "
	}
	switch {
	case m.lastMsg != "" && m.lastErr:
		left += m.styles.StatusErr.Render(m.lastMsg)
	case m.lastMsg != "":
		left += m.styles.Status.Render(m.lastMsg)
	case lastErr != nil:
		left += m.styles.StatusErr.Render(lastErr.Error())
	}

	info := []string{fmt.Sprintf("%d/%d rows", visible, total)}
	if s := g.sortState(); s.Key != "" {
		info = append(info, "sort "+s.Key+" "+s.Dir.String())
	}
	if f := g.filter(); f != "" {
		info = append(info, "filter "+f)
	}
	if w := g.where(); w != "" {
		info = append(info, "where "+w)
	}
	info = append(info, "updated "+formatAgo(updated, time.Now()))
	right := m.styles.Status.Render(strings.Join(info, " · "))
	gap := m.termWidth - lipgloss.Width(left) - lipgloss.Width(right)
	line := left + strings.Repeat(" ", maxInt(gap, 1)) + right
	return line + "\n" + m.help.ShortHelpView(m.shortHelp())
}

func (m *Model) renderHelp() string {
	if len(m.helpItems) == 0 {
		m.helpItems = m.buildHelpItems()
	}
	if m.helpSel < 0 {
		m.helpSel = 0
	}
	if m.helpSel >= len(m.helpItems) {
		m.helpSel = len(m.helpItems) - 1
	}
	lines := []string{"Shortcuts:"}
	currentGroup := ""
	lineIndexOfSel := 0
	for i, it := range m.helpItems {
		if it.group != currentGroup {
			currentGroup = it.group
			lines = append(lines, "", currentGroup+":")
		}
		prefix := "  "
		if i == m.helpSel {
			prefix = "> "
			lineIndexOfSel = len(lines)
		}
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, keyLabel(it.key), it.text))
	}
	lines = append(lines, "", "[1-9] sort by column number", "where: aqi > 100 && country == \"IN\" · statusCode >= 500")
	// keep the selection visible
	if m.modalVP.Height > 0 {
		top := m.modalVP.YOffset
		bottom := top + m.modalVP.Height - 1
		if lineIndexOfSel <= top {
			m.modalVP.YOffset = maxInt(lineIndexOfSel-1, 0)
		} else if lineIndexOfSel >= bottom {
			m.modalVP.YOffset = maxInt(lineIndexOfSel-m.modalVP.Height+2, 0)
		}
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

func (m *Model) openHelpModal() {
	m.modalActive = true
	m.modalKind = modalHelp
	m.modalTitle = "Help"
	m.helpItems = m.buildHelpItems()
	m.helpSel = 0
	m.modalBody = m.renderHelp()
	m.resizeModal()
}

func (m *Model) openInspectorModal() {
	raw, ok := m.current().rowJSON(m.tbl.Cursor())
	if !ok {
		return
	}
	m.modalActive = true
	m.modalKind = modalInspector
	m.modalTitle = "Row"
	m.modalBody = colorizeJSON(raw, m.styles)
	m.resizeModal()
}

func (m *Model) openAppLogsModal() {
	m.modalActive = true
	m.modalKind = modalLogs
	m.modalTitle = "Application Logs"
	m.modalBody = logx.Dump()
	m.resizeModal()
}

const slowestCount = 10

func (m *Model) openSlowestModal() {
	m.modalActive = true
	m.modalKind = modalSlowest
	m.modalTitle = "Slowest requests"
	m.modalBody = m.renderSlowest(m.deps.Analytics)
	m.resizeModal()
}

// renderSlowest lists the slowest requests of the timeline followed by the
// success and error counts of every endpoint.
func (m *Model) renderSlowest(v *dashboard.Analytics) string {
	var b strings.Builder
	rows := v.SlowestRequests(slowestCount)
	if len(rows) == 0 {
		b.WriteString(m.styles.Status.Render("no timed requests") + "\n")
	}
	for i, r := range rows {
		b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, strings.Join(requestCells(r), "  ")))
	}
	success, errs := v.EndpointOutcomes()
	if len(success) == 0 {
		return b.String()
	}
	b.WriteString("\n" + m.styles.ChartTitle.Render("Outcomes by endpoint") + "\n")
	labelW := 0
	for _, p := range success {
		labelW = maxInt(labelW, lipgloss.Width(p.Label))
	}
	for i, p := range success {
		ok := m.styles.TagStyle(classify.TagGood).Render(formatValue(p.Value) + " ok")
		failed := m.styles.TagStyle(classify.TagUnhealthy).Render(formatValue(errs[i].Value) + " errors")
		b.WriteString(padRight(p.Label, labelW) + "  " + ok + "  " + failed + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) openRecommendationModal(rec model.Recommendation) {
	m.modalActive = true
	m.modalKind = modalRecommendation
	m.modalTitle = "Recommendations: " + rec.City
	m.resizeModal()
	m.modalBody = m.renderRecommendation(rec, maxInt(m.modalVP.Width, 20))
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) renderRecommendation(rec model.Recommendation, width int) string {
	res := classify.AQI(rec.AQI)
	var b strings.Builder
	head := fmt.Sprintf("%s, %s · AQI %s · ", rec.City, rec.Country, dashboard.FormatNumber(rec.AQI, 0))
	b.WriteString(head + m.styles.TagStyle(res.StyleTag).Render(rec.AQICategory) + "\n\n")
	b.WriteString(wordwrap.String(rec.OverallAssessment, width) + "\n")
	for _, c := range rec.Recommendations {
		sev, ok := m.styles.Severity[c.Severity]
		if !ok {
			sev = m.styles.Status
		}
		b.WriteString("\n" + c.Icon + " " + m.styles.ChartTitle.Render(c.Title) + " " + sev.Render("["+c.Severity+"]") + "\n")
		b.WriteString(wordwrap.String(c.Description, width) + "\n")
	}
	if rec.GeneratedAt != "" {
		b.WriteString("\n" + m.styles.Status.Render("generated "+rec.GeneratedAt))
	}
	return b.String()
}

func (m *Model) resizeModal() {
	w := maxInt(m.termWidth-6, 20)
	h := maxInt(m.termHeight-6, 5)
	m.modalVP = viewport.New(w-4, h-4)
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) renderModal() string {
	content := ""
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalLogs:
		header := []string{"Status:", "api: " + m.cfg.APIBaseURL}
		if f := m.deps.Feed; f != nil {
			total, dropped, skipped := f.Stats()
			header = append(header, fmt.Sprintf("request log: format %s  lines %d  overflow %d  skipped %d", f.Format(), total, dropped, skipped))
		}
		h := m.styles.Help.Render(strings.Join(header, "\n"))
		content = h + "\n" + m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	}
	boxW := maxInt(m.termWidth-6, 20)
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
