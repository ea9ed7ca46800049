// Package dashboard holds the per-view controllers: each owns a table engine,
// the aggregates derived from the last good snapshot and the fetch sequence.
package dashboard

import (
	"strconv"

	"aqdash/internal/classify"
	"aqdash/internal/model"
	"aqdash/internal/table"
)

func optional(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// CityFields is the cities table. Free text searches city and country.
var CityFields = table.Schema[model.CityReading]{
	Fields: []table.Field[model.CityReading]{
		{Key: "city", Title: "City", Kind: table.KindString, Text: func(r model.CityReading) string { return r.City }},
		{Key: "country", Title: "Country", Kind: table.KindString, Text: func(r model.CityReading) string { return r.Country }},
		{Key: "aqi", Title: "AQI", Kind: table.KindNumber, Number: func(r model.CityReading) (float64, bool) { return optional(r.AQI) }},
		{Key: "pm25", Title: "PM2.5", Kind: table.KindNumber, Number: func(r model.CityReading) (float64, bool) { return optional(r.PM25) }},
		{Key: "pm10", Title: "PM10", Kind: table.KindNumber, Number: func(r model.CityReading) (float64, bool) { return optional(r.PM10) }},
		{Key: "category", Title: "Category", Kind: table.KindString, Text: func(r model.CityReading) string { return classify.AQI(r.AQI).Category }},
	},
	FilterKeys: []string{"city", "country"},
}

// RequestFields is the request timeline, newest first by default. It has no
// free-text fields, so any filter text keeps every row.
var RequestFields = table.Schema[model.RequestLog]{
	Fields: []table.Field[model.RequestLog]{
		{Key: "timestamp", Title: "Time", Kind: table.KindTime, Text: func(r model.RequestLog) string { return r.Timestamp }},
		{Key: "endpoint", Title: "Endpoint", Kind: table.KindString, Text: func(r model.RequestLog) string { return r.Endpoint }},
		{Key: "method", Title: "Method", Kind: table.KindString, Text: func(r model.RequestLog) string { return r.Method }},
		{Key: "statusCode", Title: "Status", Kind: table.KindNumber, Number: func(r model.RequestLog) (float64, bool) {
			if r.StatusCode == 0 {
				return 0, false
			}
			return float64(r.StatusCode), true
		}},
		{Key: "responseTime", Title: "Response (ms)", Kind: table.KindNumber, Number: func(r model.RequestLog) (float64, bool) { return optional(r.ResponseTime) }},
	},
	DefaultSort: table.Sort{Key: "timestamp", Dir: table.Desc},
}

// FormatNumber renders an optional metric, "-" when missing.
func FormatNumber(v *float64, places int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}
