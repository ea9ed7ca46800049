package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"aqdash/internal/aggregate"
	"aqdash/internal/model"
	"aqdash/internal/source"
	"aqdash/internal/table"
	"aqdash/internal/util/logx"
)

// AirQualitySource is the part of the backend the cities view reads.
type AirQualitySource interface {
	Global(ctx context.Context) (model.GlobalStats, error)
	Cities(ctx context.Context) ([]model.CityReading, error)
	Refresh(ctx context.Context) error
}

// CitiesSnapshot is the result of one fetch; it is built off the update loop
// and handed to Apply.
type CitiesSnapshot struct {
	Seq    uint64
	Global model.GlobalStats
	Rows   []model.CityReading
	At     time.Time
	Err    error
}

// Cities is the air-quality view controller.
type Cities struct {
	Engine *table.Engine[model.CityReading]

	src     AirQualitySource
	seq     source.Sequencer
	global  model.GlobalStats
	loaded  bool
	updated time.Time
	err     error
}

func NewCities(src AirQualitySource) *Cities {
	return &Cities{Engine: table.New(CityFields), src: src}
}

// Begin numbers a new fetch.
func (v *Cities) Begin() uint64 { return v.seq.Begin() }

// Fetch loads global stats and the city list together. With refresh set the
// backend is asked to reload first. It only touches the source, so it can run
// on any goroutine.
func (v *Cities) Fetch(ctx context.Context, seq uint64, refresh bool) CitiesSnapshot {
	snap := CitiesSnapshot{Seq: seq}
	if refresh {
		if err := v.src.Refresh(ctx); err != nil {
			snap.Err = fmt.Errorf("refresh: %w", err)
			return snap
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Global, err = v.src.Global(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Rows, err = v.src.Cities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		snap.Err = err
		return snap
	}
	snap.At = time.Now()
	return snap
}

// Apply installs snap unless it failed or a newer fetch already landed. A
// failed fetch keeps the previous data and records the error unless a newer
// fetch already landed.
func (v *Cities) Apply(snap CitiesSnapshot) bool {
	if snap.Err != nil {
		if v.seq.Stale(snap.Seq) {
			logx.Debugf("cities: ignoring stale failure of fetch %d: %v", snap.Seq, snap.Err)
			return false
		}
		logx.Warnf("cities: fetch %d failed: %v", snap.Seq, snap.Err)
		v.err = snap.Err
		return false
	}
	if !v.seq.Accept(snap.Seq) {
		logx.Debugf("cities: dropping stale fetch %d", snap.Seq)
		return false
	}
	v.Engine.SetRows(snap.Rows)
	v.global = snap.Global
	v.loaded = true
	v.updated = snap.At
	v.err = nil
	logx.Infof("cities: loaded %d rows", len(snap.Rows))
	return true
}

func (v *Cities) Global() model.GlobalStats { return v.global }

func (v *Cities) Loaded() bool { return v.loaded }

func (v *Cities) Updated() time.Time { return v.updated }

// Err is the error of the last failed fetch, cleared by the next good one.
func (v *Cities) Err() error { return v.err }

// TopPolluted ranks the whole snapshot by AQI, worst first, ignoring the
// current filter.
func (v *Cities) TopPolluted(n int) []model.CityReading {
	f, _ := CityFields.Lookup("aqi")
	return aggregate.TopN(v.Engine.Rows(), f, n, table.Desc)
}

// TopPollutedSeries is TopPolluted as chart points labelled by city.
func (v *Cities) TopPollutedSeries(n int) []aggregate.Point {
	rows := v.TopPolluted(n)
	out := make([]aggregate.Point, len(rows))
	for i, r := range rows {
		out[i] = aggregate.Point{Label: r.City, Value: *r.AQI}
	}
	return out
}

// Distribution is the good/moderate/unhealthy split of the global stats.
func (v *Cities) Distribution() []aggregate.Point {
	return aggregate.BandDistribution(v.global)
}

// Histogram counts the visible cities per AQI band.
func (v *Cities) Histogram() []aggregate.Point {
	rows := v.Engine.Project()
	vals := make([]*float64, len(rows))
	for i, r := range rows {
		vals[i] = r.AQI
	}
	return aggregate.BandHistogram(vals)
}
