package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"aqdash/internal/aggregate"
	"aqdash/internal/model"
	"aqdash/internal/source"
	"aqdash/internal/table"
	"aqdash/internal/util/logx"
)

type AnalyticsSource interface {
	Summary(ctx context.Context) (model.Summary, error)
	Timeline(ctx context.Context) ([]model.RequestLog, error)
}

type AnalyticsSnapshot struct {
	Seq     uint64
	Summary model.Summary
	Rows    []model.RequestLog
	At      time.Time
	Err     error
}

// Analytics is the API analytics view controller. Without a source it is fed
// from a local request log through ApplyLocal.
type Analytics struct {
	Engine *table.Engine[model.RequestLog]

	src     AnalyticsSource
	seq     source.Sequencer
	summary model.Summary
	loaded  bool
	updated time.Time
	err     error
}

func NewAnalytics(src AnalyticsSource) *Analytics {
	return &Analytics{Engine: table.New(RequestFields), src: src}
}

// Local reports whether the view reads a local request log instead of the backend.
func (v *Analytics) Local() bool { return v.src == nil }

func (v *Analytics) Begin() uint64 { return v.seq.Begin() }

// Fetch loads summary and timeline concurrently; both must succeed.
func (v *Analytics) Fetch(ctx context.Context, seq uint64) AnalyticsSnapshot {
	snap := AnalyticsSnapshot{Seq: seq}
	if v.src == nil {
		return snap
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Summary, err = v.src.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Rows, err = v.src.Timeline(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		snap.Err = err
		return snap
	}
	snap.At = time.Now()
	return snap
}

func (v *Analytics) Apply(snap AnalyticsSnapshot) bool {
	if snap.Err != nil {
		if v.seq.Stale(snap.Seq) {
			logx.Debugf("analytics: ignoring stale failure of fetch %d: %v", snap.Seq, snap.Err)
			return false
		}
		logx.Warnf("analytics: fetch %d failed: %v", snap.Seq, snap.Err)
		v.err = snap.Err
		return false
	}
	if !v.seq.Accept(snap.Seq) {
		logx.Debugf("analytics: dropping stale fetch %d", snap.Seq)
		return false
	}
	v.Engine.SetRows(snap.Rows)
	v.summary = snap.Summary
	v.loaded = true
	v.updated = snap.At
	v.err = nil
	return true
}

// ApplyLocal replaces the timeline with rows read from a local request log and
// derives the summary from them.
func (v *Analytics) ApplyLocal(rows []model.RequestLog) {
	snap := AnalyticsSnapshot{Seq: v.Begin(), Summary: aggregate.Summarize(rows), Rows: rows, At: time.Now()}
	v.Apply(snap)
}

func (v *Analytics) Summary() model.Summary { return v.summary }

func (v *Analytics) Loaded() bool { return v.loaded }

func (v *Analytics) Updated() time.Time { return v.updated }

func (v *Analytics) Err() error { return v.err }

func (v *Analytics) Cards() aggregate.SummaryCards { return aggregate.Cards(v.summary) }

func (v *Analytics) EndpointSeries() []aggregate.Point { return aggregate.EndpointSeries(v.summary) }

func (v *Analytics) ResponseTimeSeries() []aggregate.Point {
	return aggregate.ResponseTimeSeries(v.summary)
}

func (v *Analytics) SuccessErrorSeries() []aggregate.Point {
	return aggregate.SuccessErrorSeries(v.summary)
}

// EndpointOutcomes lists successful and failed responses per endpoint.
func (v *Analytics) EndpointOutcomes() (success, errs []aggregate.Point) {
	return aggregate.PerEndpointSuccess(v.summary)
}

// SlowestRequests ranks the timeline by response time, slowest first.
func (v *Analytics) SlowestRequests(n int) []model.RequestLog {
	f, _ := RequestFields.Lookup("responseTime")
	return aggregate.TopN(v.Engine.Rows(), f, n, table.Desc)
}
