package main

import (
	"context"
	"fmt"

	"aqdash/internal/aggregate"
	"aqdash/internal/classify"
	"aqdash/internal/config"
	"aqdash/internal/dashboard"
	"aqdash/internal/export"
	"aqdash/internal/table"
	"aqdash/internal/ui"
	"aqdash/internal/util/logx"
)

// runHeadless loads the configured view once, applies the filter, sort and
// where expression from cfg and writes the export and/or chart.
func runHeadless(ctx context.Context, cfg *config.Config, deps ui.Deps) error {
	st := dashboard.ViewState{Filter: cfg.Filter, SortKey: cfg.SortKey, SortDir: cfg.SortDir, Where: cfg.Where}
	if cfg.View == config.ViewAnalytics {
		return exportAnalytics(ctx, cfg, deps, st)
	}
	return exportCities(ctx, cfg, deps.Cities, st)
}

func exportCities(ctx context.Context, cfg *config.Config, v *dashboard.Cities, st dashboard.ViewState) error {
	c, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	snap := v.Fetch(c, v.Begin(), false)
	if snap.Err != nil {
		return snap.Err
	}
	v.Apply(snap)
	if err := dashboard.Restore(v.Engine, st); err != nil {
		return err
	}
	if cfg.ExportFormat != "" {
		if err := writeRows(cfg, dashboard.CityFields, v.Engine.Project()); err != nil {
			return err
		}
	}
	if cfg.ExportChart != "" {
		return writeChart(cfg.ExportChart, "Most polluted cities (AQI)", v.TopPollutedSeries(10), func(p aggregate.Point) string {
			val := p.Value
			return classify.AQI(&val).Color
		})
	}
	return nil
}

func exportAnalytics(ctx context.Context, cfg *config.Config, deps ui.Deps, st dashboard.ViewState) error {
	v := deps.Analytics
	if v.Local() {
		if cfg.Follow {
			logx.Warnf("export: --follow reads until interrupted")
		}
		select {
		case <-deps.Feed.Done():
		case <-ctx.Done():
		}
		if err := deps.Feed.Err(); err != nil {
			return err
		}
		v.ApplyLocal(deps.Feed.Rows())
	} else {
		c, cancel := context.WithTimeout(ctx, cfg.Timeout())
		defer cancel()
		snap := v.Fetch(c, v.Begin())
		if snap.Err != nil {
			return snap.Err
		}
		v.Apply(snap)
	}
	if err := dashboard.Restore(v.Engine, st); err != nil {
		return err
	}
	if cfg.ExportFormat != "" {
		if err := writeRows(cfg, dashboard.RequestFields, v.Engine.Project()); err != nil {
			return err
		}
	}
	if cfg.ExportChart != "" {
		return writeChart(cfg.ExportChart, "Requests by endpoint", v.EndpointSeries(), nil)
	}
	return nil
}

func writeRows[R any](cfg *config.Config, schema table.Schema[R], rows []R) error {
	f, err := export.ParseFormat(cfg.ExportFormat)
	if err != nil {
		return err
	}
	if err := export.ToFile(cfg.ExportOut, f, schema, rows); err != nil {
		return fmt.Errorf("write %s: %w", cfg.ExportOut, err)
	}
	logx.Infof("exported %d rows to %s", len(rows), cfg.ExportOut)
	return nil
}

func writeChart(path, title string, pts []aggregate.Point, color func(aggregate.Point) string) error {
	if err := export.ChartFile(path, pts, export.ChartOptions{Title: title, Color: color}); err != nil {
		return fmt.Errorf("chart %s: %w", path, err)
	}
	logx.Infof("chart written to %s", path)
	return nil
}
