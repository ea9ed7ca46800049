package export

import (
	"errors"
	"io"
	"os"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"aqdash/internal/aggregate"
)

// ChartOptions controls a bar chart. Color returns a #rrggbb color for a bar;
// nil paints every bar with the default blue.
type ChartOptions struct {
	Title  string
	Height int
	Color  func(p aggregate.Point) string
}

const defaultBarColor = "#3b82f6"

func barStyle(hex string) chart.Style {
	col := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	return chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1}
}

// WriteBarChart renders pts as a PNG bar chart in series order.
func WriteBarChart(w io.Writer, pts []aggregate.Point, opt ChartOptions) error {
	if len(pts) == 0 {
		return errors.New("no data to chart")
	}
	if opt.Height <= 0 {
		opt.Height = 480
	}
	const barWidth, barSpacing = 48, 24
	width := len(pts)*(barWidth+barSpacing) + 160
	if width < 640 {
		width = 640
	}
	maxV := 0.0
	bars := make([]chart.Value, len(pts))
	for i, p := range pts {
		hex := defaultBarColor
		if opt.Color != nil {
			if c := opt.Color(p); c != "" {
				hex = c
			}
		}
		bars[i] = chart.Value{Label: p.Label, Value: p.Value, Style: barStyle(hex)}
		if p.Value > maxV {
			maxV = p.Value
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	bc := chart.BarChart{
		Title:      opt.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      width,
		Height:     opt.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxV * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

// ChartFile writes the chart to path.
func ChartFile(path string, pts []aggregate.Point, opt ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBarChart(f, pts, opt); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
