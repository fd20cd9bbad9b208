package export

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/san-kum/chaosynth/internal/mapping"
)

func lineChart(title, unit string, steps []string, data []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit}),
	)
	line.SetXAxis(steps).AddSeries(title, data)
	return line
}

func floatData(vals []float64) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// ControlsHTML writes a page with note, cutoff, pan and gain charts.
func ControlsHTML(w io.Writer, c *mapping.Controls) error {
	if c == nil || c.Len() == 0 {
		return ErrNoData
	}

	steps := make([]string, c.Len())
	notes := make([]opts.LineData, c.Len())
	for i := range steps {
		steps[i] = strconv.Itoa(i)
		notes[i] = opts.LineData{Value: c.Notes[i], Name: mapping.NoteName(c.Notes[i])}
	}

	page := components.NewPage()
	page.PageTitle = "chaosynth controls"
	page.AddCharts(
		lineChart("note", "midi", steps, notes),
		lineChart("cutoff", "Hz", steps, floatData(c.Cutoff)),
		lineChart("pan", "", steps, floatData(c.Pan)),
		lineChart("gain", "", steps, floatData(c.Gain)),
	)
	return page.Render(w)
}
