// Package aggregate turns nested count/rate maps and row lists into
// chart-ready series and scalars.
package aggregate

import (
	"math"
	"strings"

	"aqdash/internal/classify"
	"aqdash/internal/model"
	"aqdash/internal/table"
)

// Point is one category of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Rates struct {
	TotalSuccess   int64   `json:"totalSuccess"`
	TotalError     int64   `json:"totalError"`
	SuccessRatePct float64 `json:"successRatePct"`
}

// AggregateRates sums success and error counts over all endpoints. With no
// traffic at all the success rate is 100.
func AggregateRates(m model.StatMap[model.SuccessError]) Rates {
	var r Rates
	m.Each(func(_ string, v model.SuccessError) {
		r.TotalSuccess += v.Success
		r.TotalError += v.Error
	})
	total := r.TotalSuccess + r.TotalError
	if total == 0 {
		r.SuccessRatePct = 100
		return r
	}
	r.SuccessRatePct = round(100*float64(r.TotalSuccess)/float64(total), 1)
	return r
}

// AverageOf is the arithmetic mean of the values, 0 for an empty map.
func AverageOf(m model.StatMap[float64]) float64 {
	if m.Len() == 0 {
		return 0
	}
	var sum float64
	m.Each(func(_ string, v float64) { sum += v })
	return sum / float64(m.Len())
}

// TopN ranks rows by f and returns at most n of them. Rows without a value for
// f are dropped before ranking; ties keep input order.
func TopN[R any](rows []R, f table.Field[R], n int, dir table.Direction) []R {
	if n <= 0 {
		return []R{}
	}
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if _, ok := f.Value(r); ok {
			out = append(out, r)
		}
	}
	table.SortStable(out, f, dir)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ToSeries converts m into points in key order.
func ToSeries[V any](m model.StatMap[V], value func(V) float64) []Point {
	out := make([]Point, 0, m.Len())
	m.Each(func(k string, v V) {
		out = append(out, Point{Label: k, Value: value(v)})
	})
	return out
}

// EndpointLabel shortens an endpoint path for chart categories.
func EndpointLabel(path string) string {
	if strings.HasPrefix(path, "/api") {
		if rest := strings.TrimPrefix(path, "/api"); rest != "" {
			return rest
		}
	}
	return path
}

// EndpointSeries is the request count per endpoint.
func EndpointSeries(s model.Summary) []Point {
	return relabel(ToSeries(s.EndpointStats, identity))
}

// ResponseTimeSeries is the average response time per endpoint in ms, two decimals.
func ResponseTimeSeries(s model.Summary) []Point {
	return relabel(ToSeries(s.ResponseTimeStats, func(v float64) float64 { return round(v, 2) }))
}

// SuccessErrorSeries is the two-slice success vs error breakdown.
func SuccessErrorSeries(s model.Summary) []Point {
	r := AggregateRates(s.SuccessErrorRates)
	return []Point{
		{Label: "Success (2xx)", Value: float64(r.TotalSuccess)},
		{Label: "Errors (4xx/5xx)", Value: float64(r.TotalError)},
	}
}

// PerEndpointSuccess returns the success and error series side by side, in
// endpoint order.
func PerEndpointSuccess(s model.Summary) (success, errs []Point) {
	success = relabel(ToSeries(s.SuccessErrorRates, func(v model.SuccessError) float64 { return float64(v.Success) }))
	errs = relabel(ToSeries(s.SuccessErrorRates, func(v model.SuccessError) float64 { return float64(v.Error) }))
	return success, errs
}

type SummaryCards struct {
	TotalRequests   int64   `json:"totalRequests"`
	ActiveEndpoints int     `json:"activeEndpoints"`
	AvgResponseMs   int64   `json:"avgResponseMs"`
	SuccessRatePct  float64 `json:"successRatePct"`
}

func Cards(s model.Summary) SummaryCards {
	return SummaryCards{
		TotalRequests:   s.TotalRequests,
		ActiveEndpoints: s.EndpointStats.Len(),
		AvgResponseMs:   int64(math.Round(AverageOf(s.ResponseTimeStats))),
		SuccessRatePct:  AggregateRates(s.SuccessErrorRates).SuccessRatePct,
	}
}

// BandDistribution is the three-slice overview from the global stats. A
// missing moderate count is shown as 0.
func BandDistribution(g model.GlobalStats) []Point {
	moderate := 0
	if g.CitiesWithModerateAir != nil {
		moderate = *g.CitiesWithModerateAir
	}
	return []Point{
		{Label: "Good (0-50)", Value: float64(g.CitiesWithGoodAir)},
		{Label: "Moderate (51-100)", Value: float64(moderate)},
		{Label: "Unhealthy (101+)", Value: float64(g.CitiesWithUnhealthyAir)},
	}
}

// BandHistogram counts values per AQI band, cleanest band first. Missing
// values are not counted.
func BandHistogram(values []*float64) []Point {
	bands := classify.Bands()
	out := make([]Point, len(bands))
	index := make(map[string]int, len(bands))
	for i, b := range bands {
		out[i].Label = b.Label()
		index[b.Category] = i
	}
	for _, v := range values {
		if i, ok := index[classify.AQI(v).Category]; ok {
			out[i].Value++
		}
	}
	return out
}

// Summarize derives an analytics summary from raw request logs: request count
// and mean response time per endpoint, 2xx as success and 4xx/5xx as errors.
// Endpoints keep first-seen order.
func Summarize(logs []model.RequestLog) model.Summary {
	type acc struct {
		count   int64
		rtSum   float64
		rtCount int64
		se      model.SuccessError
	}
	var order []string
	accs := make(map[string]*acc)
	for _, l := range logs {
		a, ok := accs[l.Endpoint]
		if !ok {
			a = &acc{}
			accs[l.Endpoint] = a
			order = append(order, l.Endpoint)
		}
		a.count++
		if l.ResponseTime != nil {
			a.rtSum += *l.ResponseTime
			a.rtCount++
		}
		switch {
		case l.StatusCode >= 200 && l.StatusCode < 300:
			a.se.Success++
		case l.StatusCode >= 400:
			a.se.Error++
		}
	}
	s := model.Summary{TotalRequests: int64(len(logs))}
	for _, ep := range order {
		a := accs[ep]
		s.EndpointStats.Set(ep, float64(a.count))
		if a.rtCount > 0 {
			s.ResponseTimeStats.Set(ep, a.rtSum/float64(a.rtCount))
		}
		s.SuccessErrorRates.Set(ep, a.se)
	}
	return s
}

func relabel(pts []Point) []Point {
	for i := range pts {
		pts[i].Label = EndpointLabel(pts[i].Label)
	}
	return pts
}

func identity(v float64) float64 { return v }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
