package ui

import (
	"fmt"
	"strconv"
	"time"

	"aqdash/internal/classify"
	"aqdash/internal/dashboard"
	"aqdash/internal/model"
	tabular "aqdash/internal/table"
)

func cityCells(r model.CityReading) []string {
	return []string{
		r.City,
		r.CountryName(),
		dashboard.FormatNumber(r.AQI, 0),
		dashboard.FormatNumber(r.PM25, 1),
		dashboard.FormatNumber(r.PM10, 1),
		categoryCell(classify.AQI(r.AQI)),
	}
}

func requestCells(r model.RequestLog) []string {
	status := "-"
	if r.StatusCode != 0 {
		status = strconv.Itoa(r.StatusCode) + " " + classify.HTTPStatus(r.StatusCode).Category
	}
	rt := "-"
	if r.ResponseTime != nil {
		rt = dashboard.FormatNumber(r.ResponseTime, 0) + " ms"
	}
	return []string{formatTimestamp(r.Timestamp), r.Endpoint, r.Method, status, rt}
}

// categoryCell marks the band with a glyph; table cells cannot carry colors.
func categoryCell(res classify.Result) string {
	glyph := "·"
	switch res.StyleTag {
	case classify.TagGood:
		glyph = "●"
	case classify.TagModerate:
		glyph = "◐"
	case classify.TagSensitive, classify.TagUnhealthy:
		glyph = "▲"
	case classify.TagVeryUnhealthy, classify.TagHazardous:
		glyph = "✖"
	}
	return glyph + " " + res.Category
}

// formatTimestamp shows parseable timestamps in local time and anything else
// verbatim.
func formatTimestamp(s string) string {
	t, ok := tabular.ParseTime(s)
	if !ok {
		if s == "" {
			return "-"
		}
		return s
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return t.Local().Format("15:04:05")
	}
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
