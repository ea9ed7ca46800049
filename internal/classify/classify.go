// Package classify maps raw metrics to display categories, style tags and colors.
// Every function is pure and total.
package classify

import (
	"fmt"
	"math"
	"strings"
)

type Kind int

const (
	KindAQI Kind = iota
	KindHTTPStatus
	KindHTTPMethod
)

// Result is what the view needs to label and color a value.
type Result struct {
	Category string `json:"category"`
	StyleTag string `json:"styleTag"`
	Color    string `json:"color"`
}

const (
	CategoryUnknown       = "Unknown"
	CategoryGood          = "Good"
	CategoryModerate      = "Moderate"
	CategorySensitive     = "Sensitive"
	CategoryUnhealthy     = "Unhealthy"
	CategoryVeryUnhealthy = "Very Unhealthy"
	CategoryHazardous     = "Hazardous"

	CategorySuccess     = "Success"
	CategoryClientError = "Client Error"
	CategoryServerError = "Server Error"
	CategoryOther       = "Other"
)

const (
	TagNone          = ""
	TagGood          = "good"
	TagModerate      = "moderate"
	TagSensitive     = "sensitive"
	TagUnhealthy     = "unhealthy"
	TagVeryUnhealthy = "very-unhealthy"
	TagHazardous     = "hazardous"
)

const (
	ColorNeutral       = "#94a3b8"
	ColorGood          = "#22c55e"
	ColorModerate      = "#eab308"
	ColorSensitive     = "#f97316"
	ColorUnhealthy     = "#ef4444"
	ColorVeryUnhealthy = "#a855f7"
	ColorHazardous     = "#7f1d1d"
)

// Band is one AQI band. Upper is inclusive; the last band is unbounded.
type Band struct {
	Lower    int
	Upper    int
	Category string
	StyleTag string
	Color    string
}

func (b Band) Label() string {
	if b.Upper == math.MaxInt {
		return fmt.Sprintf("%s (%d+)", b.Category, b.Lower)
	}
	return fmt.Sprintf("%s (%d-%d)", b.Category, b.Lower, b.Upper)
}

var bands = []Band{
	{Lower: 0, Upper: 50, Category: CategoryGood, StyleTag: TagGood, Color: ColorGood},
	{Lower: 51, Upper: 100, Category: CategoryModerate, StyleTag: TagModerate, Color: ColorModerate},
	{Lower: 101, Upper: 150, Category: CategorySensitive, StyleTag: TagSensitive, Color: ColorSensitive},
	{Lower: 151, Upper: 200, Category: CategoryUnhealthy, StyleTag: TagUnhealthy, Color: ColorUnhealthy},
	{Lower: 201, Upper: 300, Category: CategoryVeryUnhealthy, StyleTag: TagVeryUnhealthy, Color: ColorVeryUnhealthy},
	{Lower: 301, Upper: math.MaxInt, Category: CategoryHazardous, StyleTag: TagHazardous, Color: ColorHazardous},
}

// Bands returns the AQI bands from cleanest to worst.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

var unknown = Result{Category: CategoryUnknown, StyleTag: TagNone, Color: ColorNeutral}

// Classify dispatches on kind. HTTP methods carry no numeric value, so
// KindHTTPMethod always yields Other here; use HTTPMethod for real input.
func Classify(metric *float64, kind Kind) Result {
	switch kind {
	case KindAQI:
		return AQI(metric)
	case KindHTTPStatus:
		if metric == nil || math.IsNaN(*metric) {
			return HTTPStatus(0)
		}
		return HTTPStatus(int(*metric))
	default:
		return HTTPMethod("")
	}
}

// AQI places v in its band; nil and NaN are Unknown.
func AQI(v *float64) Result {
	if v == nil || math.IsNaN(*v) {
		return unknown
	}
	for _, b := range bands[:len(bands)-1] {
		if *v <= float64(b.Upper) {
			return Result{Category: b.Category, StyleTag: b.StyleTag, Color: b.Color}
		}
	}
	last := bands[len(bands)-1]
	return Result{Category: last.Category, StyleTag: last.StyleTag, Color: last.Color}
}

func HTTPStatus(code int) Result {
	switch {
	case code >= 200 && code < 300:
		return Result{Category: CategorySuccess, StyleTag: TagGood, Color: ColorGood}
	case code >= 400 && code < 500:
		return Result{Category: CategoryClientError, StyleTag: TagModerate, Color: ColorModerate}
	case code >= 500:
		return Result{Category: CategoryServerError, StyleTag: TagUnhealthy, Color: ColorUnhealthy}
	}
	return Result{Category: CategoryOther, StyleTag: TagNone, Color: ColorNeutral}
}

func HTTPMethod(method string) Result {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case "GET":
		return Result{Category: m, StyleTag: TagGood, Color: ColorGood}
	case "POST":
		return Result{Category: m, StyleTag: TagModerate, Color: ColorModerate}
	case "PUT":
		return Result{Category: m, StyleTag: TagSensitive, Color: ColorSensitive}
	case "DELETE":
		return Result{Category: m, StyleTag: TagUnhealthy, Color: ColorUnhealthy}
	case "":
		return Result{Category: CategoryOther, StyleTag: TagNone, Color: ColorNeutral}
	}
	return Result{Category: m, StyleTag: TagNone, Color: ColorNeutral}
}
