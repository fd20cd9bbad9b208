package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/san-kum/chaosynth/internal/dynamo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing finite to chart.
var ErrNoData = errors.New("export: no data")

var axisNames = []string{"x", "y", "z"}

func axisName(i int) string {
	if i >= 0 && i < len(axisNames) {
		return axisNames[i]
	}
	return fmt.Sprintf("x%d", i)
}

// PhasePNG renders the (xAxis, yAxis) projection of traj as a PNG line
// plot. Non-finite states are dropped.
func PhasePNG(w io.Writer, traj dynamo.Trajectory, xAxis, yAxis int) error {
	if xAxis < 0 || yAxis < 0 || xAxis >= traj.Dim() || yAxis >= traj.Dim() {
		return fmt.Errorf("%w: axes %d,%d for dimension %d", dynamo.ErrDimensionMismatch, xAxis, yAxis, traj.Dim())
	}

	pts := make(plotter.XYs, 0, traj.Len())
	for _, st := range traj {
		x, y := st[xAxis], st[yAxis]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Lorenz attractor (%s, %s)", axisName(xAxis), axisName(yAxis))
	p.X.Label.Text = axisName(xAxis)
	p.Y.Label.Text = axisName(yAxis)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("phase line: %w", err)
	}
	line.Width = vg.Points(0.5)
	line.Color = color.RGBA{R: 0x26, G: 0x82, B: 0x8e, A: 0xff}
	p.Add(line)

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
