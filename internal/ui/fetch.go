package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"aqdash/internal/util/logx"
)

// fetchCities starts a numbered fetch. The snapshot comes back as a
// citiesMsg and is applied on the update loop, where stale ones are dropped.
func (m *Model) fetchCities(refresh bool) tea.Cmd {
	v := m.deps.Cities
	seq := v.Begin()
	m.citiesBusy = true
	ctx, timeout := m.ctx, m.timeout()
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return citiesMsg{snap: v.Fetch(c, seq, refresh)}
	}
}

func (m *Model) fetchAnalytics() tea.Cmd {
	v := m.deps.Analytics
	if v.Local() {
		return nil
	}
	seq := v.Begin()
	m.analyticBusy = true
	ctx, timeout := m.ctx, m.timeout()
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return analyticsMsg{snap: v.Fetch(c, seq)}
	}
}

// waitFeed blocks until the local request feed has new rows or ends.
func (m *Model) waitFeed() tea.Cmd {
	f := m.deps.Feed
	if f == nil || m.feedDone {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-f.Updates():
			return feedMsg{}
		case <-f.Done():
			return feedMsg{done: true}
		case <-ctx.Done():
			return nil
		}
	}
}

// applyFeed copies the feed's buffer into the analytics view.
func (m *Model) applyFeed(done bool) tea.Cmd {
	f := m.deps.Feed
	if f == nil {
		return nil
	}
	m.deps.Analytics.ApplyLocal(f.Rows())
	if done {
		m.feedDone = true
		if err := f.Err(); err != nil {
			m.setStatus("request log: "+err.Error(), true)
		}
		logx.Infof("ui: request feed finished")
	}
	if m.tab == tabAnalytics {
		m.syncTable()
	}
	return m.waitFeed()
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.cfg.RefreshSec <= 0 {
		return nil
	}
	return tea.Tick(time.Duration(m.cfg.RefreshSec)*time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// refreshCurrent reloads the visible view. On the cities view the backend is
// asked to reload its data first when force is set.
func (m *Model) refreshCurrent(force bool) tea.Cmd {
	if m.tab == tabAnalytics {
		if m.deps.Analytics.Local() {
			m.setStatus("local request log: reloads as lines arrive", false)
			return nil
		}
		return m.fetchAnalytics()
	}
	return m.fetchCities(force)
}

func (m *Model) recommend() tea.Cmd {
	if m.tab != tabCities {
		return nil
	}
	rows := m.cityGrid.rows
	i := m.tbl.Cursor()
	if i < 0 || i >= len(rows) {
		return nil
	}
	city := rows[i]
	m.adviceBusy = true
	m.setStatus("asking for recommendations for "+city.City+"...", false)
	adv, ctx, timeout := m.deps.Advisor, m.ctx, m.cfg.OpenAITimeout()
	return func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		rec, err := adv.Recommend(c, city)
		return recommendationMsg{city: city.City, rec: rec, err: err}
	}
}
