package main

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"aqdash/internal/aggregate"
	"aqdash/internal/ai"
	"aqdash/internal/classify"
	"aqdash/internal/ingest"
	"aqdash/internal/model"
)

type baseCity struct {
	city    string
	country string
	aqi     float64
}

var baseCities = []baseCity{
	{"Delhi", "IN", 212},
	{"Lahore", "PK", 188},
	{"Beijing", "CN", 131},
	{"Dhaka", "BD", 164},
	{"Cairo", "EG", 118},
	{"Jakarta", "ID", 96},
	{"Mexico City", "MX", 82},
	{"Sao Paulo", "BR", 58},
	{"Los Angeles", "US", 71},
	{"Paris", "FR", 38},
	{"London", "GB", 33},
	{"Berlin", "DE", 29},
	{"Tokyo", "JP", 44},
	{"Sydney", "AU", 19},
	{"Reykjavik", "IS", 12},
	{"Helsinki", "FI", 16},
	{"Lima", "PE", 67},
	{"Ulaanbaatar", "MN", 305},
}

// store is the mock backend state: a city snapshot reloaded on /refresh and
// a bounded log of the requests it served.
type store struct {
	mu      sync.Mutex
	rng     *rand.Rand
	cities  []model.CityReading
	updated time.Time
	log     *model.Ring[model.RequestLog]
	advisor ai.Recommender
}

func newStore(seed int64, now time.Time) *store {
	s := &store{
		rng:     rand.New(rand.NewSource(seed)),
		log:     model.NewRing[model.RequestLog](5000),
		advisor: ai.Recommender{Now: func() time.Time { return now }},
	}
	s.reload(now)
	return s
}

// reload jitters every AQI by up to 15% around its base value.
func (s *store) reload(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]model.CityReading, len(baseCities))
	for i, b := range baseCities {
		aqi := math.Round(b.aqi * (0.85 + 0.3*s.rng.Float64()))
		rows[i] = model.CityReading{
			City:    b.city,
			Country: b.country,
			AQI:     model.Float(aqi),
			PM25:    model.Float(math.Round(aqi*4.5) / 10),
			PM10:    model.Float(math.Round(aqi*8) / 10),
		}
	}
	s.cities = rows
	s.updated = now
}

func (s *store) snapshot() []model.CityReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CityReading(nil), s.cities...)
}

func (s *store) lookup(city string) (model.CityReading, bool) {
	for _, c := range s.snapshot() {
		if strings.EqualFold(c.City, city) {
			return c, true
		}
	}
	return model.CityReading{}, false
}

func (s *store) global() model.GlobalStats {
	rows := s.snapshot()
	s.mu.Lock()
	updated := s.updated
	s.mu.Unlock()

	g := model.GlobalStats{TotalCities: len(rows), LastUpdated: updated.UTC().Format(time.RFC3339)}
	countries := map[string]bool{}
	moderate := 0
	sum := 0.0
	var cleanest, worst *model.CityReading
	for i := range rows {
		r := &rows[i]
		countries[r.Country] = true
		sum += *r.AQI
		switch classify.AQI(r.AQI).Category {
		case classify.CategoryGood:
			g.CitiesWithGoodAir++
		case classify.CategoryModerate:
			moderate++
		default:
			g.CitiesWithUnhealthyAir++
		}
		if cleanest == nil || *r.AQI < *cleanest.AQI {
			cleanest = r
		}
		if worst == nil || *r.AQI > *worst.AQI {
			worst = r
		}
	}
	g.TotalCountries = len(countries)
	g.CitiesWithModerateAir = &moderate
	if len(rows) > 0 {
		g.AverageGlobalAqi = math.Round(sum/float64(len(rows))*10) / 10
		g.CleanestCity, g.CleanestCountry, g.CleanestAqi = cleanest.City, cleanest.Country, cleanest.AQI
		g.MostPollutedCity, g.MostPollutedCountry, g.MostPollutedAqi = worst.City, worst.Country, worst.AQI
	}
	return g
}

func (s *store) record(r model.RequestLog) { s.log.Push(r) }

// seedHistory fills the request log with n synthetic requests spread over
// the hour before now.
func (s *store) seedHistory(n int, seed int64, now time.Time) {
	gen := ingest.NewGenerator(seed)
	for i := 0; i < n; i++ {
		at := now.Add(-time.Hour + time.Duration(i)*time.Hour/time.Duration(n))
		q := gen.Next(at)
		s.record(model.RequestLog{
			Timestamp:    q.Timestamp,
			Endpoint:     q.Endpoint,
			Method:       q.Method,
			StatusCode:   q.StatusCode,
			ResponseTime: model.Float(q.ResponseTime),
		})
	}
}

// timeline returns up to limit requests, newest first.
func (s *store) timeline(limit int) []model.RequestLog {
	rows, _, _ := s.log.Snapshot()
	out := make([]model.RequestLog, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out
}

func (s *store) summary() model.Summary {
	rows, _, _ := s.log.Snapshot()
	return aggregate.Summarize(rows)
}

func (s *store) recommend(ctx context.Context, c model.CityReading) (model.Recommendation, error) {
	return s.advisor.Recommend(ctx, c)
}
