package ui

import (
	"github.com/charmbracelet/lipgloss"

	"aqdash/internal/classify"
)

type Styles struct {
	Base        lipgloss.Style
	Status      lipgloss.Style
	StatusErr   lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Help        lipgloss.Style
	Card        lipgloss.Style
	CardLabel   lipgloss.Style
	CardValue   lipgloss.Style
	ChartTitle  lipgloss.Style
	Inspector   lipgloss.Style
	PopupBox    lipgloss.Style
	PopupTitle  lipgloss.Style
	TableStyles TableStyles

	// Tag colors follow the classifier tags.
	Tag      map[string]lipgloss.Style
	Severity map[string]lipgloss.Style

	JSONKey    lipgloss.Style
	JSONString lipgloss.Style
	JSONNumber lipgloss.Style
	JSONBool   lipgloss.Style
	JSONNull   lipgloss.Style
	JSONPunct  lipgloss.Style
}

type TableStyles struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	accent, muted, border := lipgloss.Color("81"), lipgloss.Color("240"), lipgloss.Color("60")
	if !dark {
		accent, muted, border = lipgloss.Color("27"), lipgloss.Color("8"), lipgloss.Color("12")
	}
	s.Base = lipgloss.NewStyle()
	s.Status = lipgloss.NewStyle().Foreground(muted)
	s.StatusErr = lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorUnhealthy)).Bold(true)
	s.TabActive = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	s.TabInactive = lipgloss.NewStyle().Foreground(muted)
	s.Help = lipgloss.NewStyle().Foreground(muted)
	s.Card = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)
	s.CardLabel = lipgloss.NewStyle().Foreground(muted)
	s.CardValue = lipgloss.NewStyle().Bold(true).Foreground(accent)
	s.ChartTitle = lipgloss.NewStyle().Bold(true)
	s.Inspector = lipgloss.NewStyle().Padding(1)
	s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(1, 2)
	s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	s.Tag = map[string]lipgloss.Style{
		classify.TagNone:          lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorNeutral)),
		classify.TagGood:          lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorGood)),
		classify.TagModerate:      lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorModerate)),
		classify.TagSensitive:     lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorSensitive)),
		classify.TagUnhealthy:     lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorUnhealthy)),
		classify.TagVeryUnhealthy: lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorVeryUnhealthy)),
		classify.TagHazardous:     lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorHazardous)).Bold(true),
	}
	s.Severity = map[string]lipgloss.Style{
		"low":    s.Tag[classify.TagGood],
		"medium": s.Tag[classify.TagModerate],
		"high":   s.Tag[classify.TagUnhealthy].Bold(true),
	}

	s.JSONKey = lipgloss.NewStyle().Foreground(accent)
	s.JSONString = lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorGood))
	s.JSONNumber = lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorModerate))
	s.JSONBool = lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ColorVeryUnhealthy))
	s.JSONNull = lipgloss.NewStyle().Foreground(muted).Italic(true)
	s.JSONPunct = lipgloss.NewStyle().Foreground(muted)

	s.TableStyles = TableStyles{
		Header:   lipgloss.NewStyle().Bold(true).PaddingRight(1),
		Cell:     lipgloss.NewStyle().PaddingRight(1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
	}
	return s
}

// TagStyle falls back to the neutral style for unknown tags.
func (s Styles) TagStyle(tag string) lipgloss.Style {
	if st, ok := s.Tag[tag]; ok {
		return st
	}
	return s.Tag[classify.TagNone]
}
