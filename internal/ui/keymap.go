package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyMap struct {
	NextTab     tea.Key
	PrevTab     tea.Key
	Filter      tea.Key
	Where       tea.Key
	ClearFilter tea.Key
	Sort        tea.Key
	Refresh     tea.Key
	Recommend   tea.Key
	Inspect     tea.Key
	Export      tea.Key
	ExportChart tea.Key
	CopyLine    tea.Key
	AppLogs     tea.Key
	Slowest     tea.Key
	Top         tea.Key
	Bottom      tea.Key
	Help        tea.Key
	Quit        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab:     tea.Key{Type: tea.KeyTab},
		PrevTab:     tea.Key{Type: tea.KeyShiftTab},
		Filter:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		Where:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'w'}},
		ClearFilter: tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		Sort:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'s'}},
		Refresh:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'r'}},
		Recommend:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'a'}},
		Inspect:     tea.Key{Type: tea.KeyEnter},
		Export:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		ExportChart: tea.Key{Type: tea.KeyRunes, Runes: []rune{'E'}},
		CopyLine:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		AppLogs:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Slowest:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'S'}},
		Top:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		Bottom:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		Help:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Quit:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}

// binding adapts a key for the bubbles help renderer.
func binding(k tea.Key, desc string) key.Binding {
	l := keyLabel(k)
	return key.NewBinding(key.WithKeys(l), key.WithHelp(l, desc))
}

// shortHelp is the hint trail of the status line.
func (m *Model) shortHelp() []key.Binding {
	km := m.keymap
	b := []key.Binding{
		binding(km.NextTab, "view"),
		binding(km.Filter, "filter"),
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9", "sort")),
		binding(km.Refresh, "refresh"),
	}
	if m.tab == tabCities {
		b = append(b, binding(km.Recommend, "advice"))
	} else {
		b = append(b, binding(km.Slowest, "slowest"))
	}
	return append(b, binding(km.Help, "help"), binding(km.Quit, "quit"))
}
