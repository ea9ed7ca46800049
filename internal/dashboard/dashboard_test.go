package dashboard

import (
	"context"
	"errors"
	"testing"

	"aqdash/internal/model"
	"aqdash/internal/source"
	"aqdash/internal/table"
)

type fakeAir struct {
	global    model.GlobalStats
	cities    []model.CityReading
	err       error
	refreshed int
}

func (f *fakeAir) Global(context.Context) (model.GlobalStats, error) { return f.global, f.err }

func (f *fakeAir) Cities(context.Context) ([]model.CityReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cities, nil
}

func (f *fakeAir) Refresh(context.Context) error {
	f.refreshed++
	return nil
}

func TestCitiesStaleFetchIsDropped(t *testing.T) {
	src := &fakeAir{cities: []model.CityReading{{City: "Old"}}}
	v := NewCities(src)
	ctx := context.Background()

	older := v.Begin()
	olderSnap := v.Fetch(ctx, older, false)
	src.cities = []model.CityReading{{City: "New"}}
	newer := v.Begin()
	newerSnap := v.Fetch(ctx, newer, false)

	if !v.Apply(newerSnap) {
		t.Fatalf("newer fetch should apply")
	}
	if v.Apply(olderSnap) {
		t.Fatalf("older fetch should be dropped")
	}
	if rows := v.Engine.Rows(); len(rows) != 1 || rows[0].City != "New" {
		t.Fatalf("snapshot: %+v", rows)
	}
}

func TestCitiesFailedFetchKeepsSnapshot(t *testing.T) {
	src := &fakeAir{cities: []model.CityReading{{City: "Paris", AQI: model.Float(40)}}, global: model.GlobalStats{TotalCities: 1}}
	v := NewCities(src)
	ctx := context.Background()
	v.Apply(v.Fetch(ctx, v.Begin(), false))

	src.err = errors.New("boom")
	if v.Apply(v.Fetch(ctx, v.Begin(), true)) {
		t.Fatalf("failed fetch applied")
	}
	if v.Err() == nil {
		t.Fatalf("error not surfaced")
	}
	if v.Engine.Len() != 1 || v.Global().TotalCities != 1 {
		t.Fatalf("previous snapshot lost")
	}
	if src.refreshed != 1 {
		t.Fatalf("refresh not requested")
	}

	src.err = nil
	v.Apply(v.Fetch(ctx, v.Begin(), false))
	if v.Err() != nil {
		t.Fatalf("good fetch should clear the error")
	}
}

func TestCitiesStaleFailureKeepsFreshState(t *testing.T) {
	src := &fakeAir{err: errors.New("timeout")}
	v := NewCities(src)
	ctx := context.Background()

	older := v.Begin()
	failed := v.Fetch(ctx, older, false)
	src.err = nil
	src.cities = []model.CityReading{{City: "Lima"}}
	if !v.Apply(v.Fetch(ctx, v.Begin(), false)) {
		t.Fatalf("newer fetch should apply")
	}
	if v.Apply(failed) {
		t.Fatalf("stale failure applied")
	}
	if v.Err() != nil {
		t.Fatalf("stale failure surfaced: %v", v.Err())
	}
	if v.Engine.Len() != 1 {
		t.Fatalf("snapshot lost")
	}
}

func TestCitiesAggregates(t *testing.T) {
	moderate := 1
	src := &fakeAir{
		cities: []model.CityReading{
			{City: "Paris", Country: "FR", AQI: model.Float(40)},
			{City: "Delhi", Country: "IN", AQI: model.Float(250)},
			{City: "Nowhere"},
			{City: "Lima", Country: "PE", AQI: model.Float(75)},
		},
		global: model.GlobalStats{CitiesWithGoodAir: 1, CitiesWithModerateAir: &moderate, CitiesWithUnhealthyAir: 1},
	}
	v := NewCities(src)
	v.Apply(v.Fetch(context.Background(), v.Begin(), false))

	top := v.TopPolluted(10)
	if len(top) != 3 || top[0].City != "Delhi" || top[2].City != "Paris" {
		t.Fatalf("top polluted: %+v", top)
	}
	if s := v.TopPollutedSeries(1); len(s) != 1 || s[0].Label != "Delhi" || s[0].Value != 250 {
		t.Fatalf("top polluted series: %+v", s)
	}
	if d := v.Distribution(); d[1].Value != 1 {
		t.Fatalf("distribution: %+v", d)
	}
	v.Engine.SetFilter("in")
	h := v.Histogram()
	if h[4].Value != 1 {
		t.Fatalf("histogram should count Delhi as very unhealthy: %+v", h)
	}
	if h[0].Value != 0 {
		t.Fatalf("histogram must follow the filter: %+v", h)
	}
}

type fakeAnalytics struct {
	summary model.Summary
	rows    []model.RequestLog
	err     error
}

func (f *fakeAnalytics) Summary(context.Context) (model.Summary, error) { return f.summary, nil }

func (f *fakeAnalytics) Timeline(context.Context) ([]model.RequestLog, error) { return f.rows, f.err }

func TestAnalyticsNeedsBothEndpoints(t *testing.T) {
	src := &fakeAnalytics{summary: model.Summary{TotalRequests: 5}, err: errors.New("timeline down")}
	v := NewAnalytics(src)
	if v.Apply(v.Fetch(context.Background(), v.Begin())) {
		t.Fatalf("partial data applied")
	}
	if v.Summary().TotalRequests != 0 {
		t.Fatalf("summary should not be applied without the timeline")
	}
}

func TestAnalyticsStaleFailureIgnored(t *testing.T) {
	src := &fakeAnalytics{err: errors.New("timeline down")}
	v := NewAnalytics(src)
	ctx := context.Background()

	failed := v.Fetch(ctx, v.Begin())
	src.err = nil
	src.rows = []model.RequestLog{{Endpoint: "/api/cities"}}
	if !v.Apply(v.Fetch(ctx, v.Begin())) {
		t.Fatalf("newer fetch should apply")
	}
	v.Apply(failed)
	if v.Err() != nil {
		t.Fatalf("stale failure surfaced: %v", v.Err())
	}

	src.err = errors.New("still down")
	v.Apply(v.Fetch(ctx, v.Begin()))
	if v.Err() == nil {
		t.Fatalf("current failure not surfaced")
	}
}

func TestAnalyticsDefaultSortIsNewestFirst(t *testing.T) {
	src := &fakeAnalytics{rows: []model.RequestLog{
		{Timestamp: "2025-03-01T10:00:00Z", Endpoint: "/a"},
		{Timestamp: "2025-03-01T12:00:00Z", Endpoint: "/b"},
	}}
	v := NewAnalytics(src)
	v.Apply(v.Fetch(context.Background(), v.Begin()))
	rows := v.Engine.Project()
	if rows[0].Endpoint != "/b" {
		t.Fatalf("newest first: %+v", rows)
	}
	if s := v.Engine.ToggleSort("timestamp"); s.Dir != table.Asc {
		t.Fatalf("toggle: %+v", s)
	}
	v.Engine.SetFilter("anything")
	if len(v.Engine.Project()) != 2 {
		t.Fatalf("timeline has no filter fields; text must match every row")
	}
}

func TestAnalyticsLocal(t *testing.T) {
	v := NewAnalytics(nil)
	if !v.Local() {
		t.Fatalf("nil source means local mode")
	}
	v.ApplyLocal([]model.RequestLog{
		{Endpoint: "/api/cities", StatusCode: 200, ResponseTime: model.Float(10)},
		{Endpoint: "/api/cities", StatusCode: 500, ResponseTime: model.Float(30)},
	})
	c := v.Cards()
	if c.TotalRequests != 2 || c.ActiveEndpoints != 1 || c.AvgResponseMs != 20 || c.SuccessRatePct != 50 {
		t.Fatalf("cards: %+v", c)
	}
	if slow := v.SlowestRequests(1); len(slow) != 1 || slow[0].StatusCode != 500 {
		t.Fatalf("slowest: %+v", slow)
	}
}

type fakeBackend struct{ err error }

func (f fakeBackend) Recommendation(_ context.Context, city string) (model.Recommendation, error) {
	if f.err != nil {
		return model.Recommendation{}, f.err
	}
	return model.Recommendation{City: city, OverallAssessment: "backend"}, nil
}

type fakeRecommender struct{}

func (fakeRecommender) Recommend(_ context.Context, c model.CityReading) (model.Recommendation, error) {
	return model.Recommendation{City: c.City, OverallAssessment: "fallback"}, nil
}

func TestAdvisor(t *testing.T) {
	ctx := context.Background()
	city := model.CityReading{City: "Paris"}

	r, err := Advisor{Backend: fakeBackend{}, Fallback: fakeRecommender{}}.Recommend(ctx, city)
	if err != nil || r.OverallAssessment != "backend" {
		t.Fatalf("backend: %+v %v", r, err)
	}
	down := &source.UpstreamError{Endpoint: "/ai", Status: 503, Err: errors.New("unavailable")}
	r, err = Advisor{Backend: fakeBackend{err: down}, Fallback: fakeRecommender{}}.Recommend(ctx, city)
	if err != nil || r.OverallAssessment != "fallback" {
		t.Fatalf("fallback: %+v %v", r, err)
	}
	missing := &source.UpstreamError{Endpoint: "/ai", Status: 404, Err: source.ErrNotFound}
	if _, err := (Advisor{Backend: fakeBackend{err: missing}, Fallback: fakeRecommender{}}).Recommend(ctx, city); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("404 must not fall back: %v", err)
	}
	if _, err := (Advisor{}).Recommend(ctx, city); err == nil {
		t.Fatalf("no sources should error")
	}
}

func TestRestore(t *testing.T) {
	v := NewAnalytics(nil)
	v.ApplyLocal([]model.RequestLog{
		{Timestamp: "2024-01-01T10:00:00Z", Endpoint: "/api/cities", StatusCode: 200},
		{Timestamp: "2024-01-01T11:00:00Z", Endpoint: "/api/global", StatusCode: 500},
	})
	if err := Restore(v.Engine, ViewState{SortKey: "timestamp", Where: "statusCode >= 200"}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s := v.Engine.Sort(); s.Key != "timestamp" || s.Dir != table.Desc {
		t.Fatalf("expected default desc for timestamp, got %+v", s)
	}
	if err := Restore(v.Engine, ViewState{SortKey: "statusCode", SortDir: "DESC", Where: "nope > 1"}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if s := v.Engine.Sort(); s.Key != "statusCode" || s.Dir != table.Desc {
		t.Fatalf("sort not applied before where error: %+v", s)
	}
	rows := v.Engine.Project()
	if len(rows) != 2 || rows[0].StatusCode != 500 {
		t.Fatalf("unexpected projection %+v", rows)
	}
}
