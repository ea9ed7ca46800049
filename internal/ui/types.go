package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"aqdash/internal/config"
	"aqdash/internal/dashboard"
	"aqdash/internal/model"
)

type tab int

const (
	tabCities tab = iota
	tabAnalytics
)

func (t tab) String() string {
	if t == tabAnalytics {
		return "API Analytics"
	}
	return "Air Quality"
}

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalLogs
	modalInspector
	modalRecommendation
	modalSlowest
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineFilter
	inlineWhere
	inlineExport
	inlineChart
)

// Deps are the controllers the UI drives. Feed is nil unless the analytics
// view reads a local request log.
type Deps struct {
	Cities    *dashboard.Cities
	Analytics *dashboard.Analytics
	Advisor   dashboard.Advisor
	Feed      *dashboard.Feed
}

type Model struct {
	ctx  context.Context
	cfg  *config.Config
	deps Deps

	grids    map[tab]gridView
	cityGrid *grid[model.CityReading]

	// UI
	tab        tab
	tbl        table.Model
	help       help.Model
	styles     Styles
	input      textinput.Model
	spin       spinner.Model
	keymap     KeyMap
	termWidth  int
	termHeight int

	// status
	lastMsg      string
	lastErr      bool
	citiesBusy   bool
	analyticBusy bool
	adviceBusy   bool
	feedDone     bool

	// Modal popup
	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string

	helpItems []helpItem
	helpSel   int

	inlineMode inlineMode
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

type citiesMsg struct{ snap dashboard.CitiesSnapshot }
type analyticsMsg struct{ snap dashboard.AnalyticsSnapshot }
type feedMsg struct{ done bool }
type tickMsg struct{}
type recommendationMsg struct {
	city string
	rec  model.Recommendation
	err  error
}

// toastMsg is a one-line status update.
type toastMsg struct {
	text string
	err  bool
}

// keyCmd replays k through Update, used by the help menu.
func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg { return tea.KeyMsg(k) }
}

var keyNames = map[tea.KeyType]string{
	tea.KeyEnter:    "enter",
	tea.KeyEsc:      "esc",
	tea.KeyTab:      "tab",
	tea.KeyShiftTab: "shift-tab",
	tea.KeyLeft:     "left",
	tea.KeyRight:    "right",
	tea.KeyUp:       "up",
	tea.KeyDown:     "down",
	tea.KeyPgUp:     "pgup",
	tea.KeyPgDown:   "pgdown",
}

func keyLabel(k tea.Key) string {
	if k.Type == tea.KeyRunes {
		if s := string(k.Runes); s != " " {
			return s
		}
		return "space"
	}
	if n, ok := keyNames[k.Type]; ok {
		return n
	}
	return strings.ToLower(k.String())
}

func (m *Model) timeout() time.Duration { return m.cfg.Timeout() }
