package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"aqdash/internal/aggregate"
	"aqdash/internal/classify"
)

// barChart draws horizontal bars scaled to the largest value. tag picks a
// classifier tag per point.
func barChart(st Styles, title string, pts []aggregate.Point, width int, tag func(aggregate.Point) string) string {
	var b strings.Builder
	b.WriteString(st.ChartTitle.Render(title))
	b.WriteString("\n")
	if len(pts) == 0 {
		b.WriteString(st.Status.Render("no data"))
		return b.String()
	}
	labelW, valueW := 0, 0
	maxV := 0.0
	for _, p := range pts {
		if n := lipgloss.Width(p.Label); n > labelW {
			labelW = n
		}
		if n := len(formatValue(p.Value)); n > valueW {
			valueW = n
		}
		if p.Value > maxV {
			maxV = p.Value
		}
	}
	if labelW > width/3 {
		labelW = width / 3
	}
	barW := width - labelW - valueW - 3
	if barW < 4 {
		barW = 4
	}
	for i, p := range pts {
		// non-positive values draw an empty bar
		n := 0
		if maxV > 0 && p.Value > 0 {
			n = min(max(int(p.Value/maxV*float64(barW)), 1), barW)
		}
		style := st.TagStyle(classify.TagNone)
		if tag != nil {
			style = st.TagStyle(tag(p))
		}
		label := padRight(truncateRunes(p.Label, labelW), labelW)
		b.WriteString(label + " " + style.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barW-n) + " " + formatValue(p.Value))
		if i < len(pts)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.2f", v)
}

// aqiTag colors a bar by the AQI it shows.
func aqiTag(p aggregate.Point) string {
	v := p.Value
	return classify.AQI(&v).StyleTag
}

// bandTag colors band buckets by the band their label names.
func bandTag(p aggregate.Point) string {
	for _, b := range classify.Bands() {
		if b.Label() == p.Label {
			return b.StyleTag
		}
	}
	switch {
	case strings.HasPrefix(p.Label, classify.CategoryGood):
		return classify.TagGood
	case strings.HasPrefix(p.Label, classify.CategoryModerate):
		return classify.TagModerate
	case strings.HasPrefix(p.Label, classify.CategoryUnhealthy):
		return classify.TagUnhealthy
	}
	return classify.TagNone
}

func successTag(p aggregate.Point) string {
	if strings.HasPrefix(p.Label, "Success") {
		return classify.TagGood
	}
	return classify.TagUnhealthy
}

// latencyTag marks slow endpoints.
func latencyTag(p aggregate.Point) string {
	switch {
	case p.Value >= 1000:
		return classify.TagUnhealthy
	case p.Value >= 300:
		return classify.TagModerate
	}
	return classify.TagGood
}

var tagColors = map[string]string{
	classify.TagGood:          classify.ColorGood,
	classify.TagModerate:      classify.ColorModerate,
	classify.TagSensitive:     classify.ColorSensitive,
	classify.TagUnhealthy:     classify.ColorUnhealthy,
	classify.TagVeryUnhealthy: classify.ColorVeryUnhealthy,
	classify.TagHazardous:     classify.ColorHazardous,
}

// chartColor maps a tag picker to the hex colors of the PNG export.
func chartColor(tag func(aggregate.Point) string) func(aggregate.Point) string {
	if tag == nil {
		return nil
	}
	return func(p aggregate.Point) string { return tagColors[tag(p)] }
}
