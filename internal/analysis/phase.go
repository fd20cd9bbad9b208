package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/chaosynth/internal/dynamo"
)

// PhaseASCII draws the (xAxis, yAxis) projection of traj on a width x height
// character grid. Axes through the origin are drawn when visible.
// Non-finite points are skipped.
func PhaseASCII(traj dynamo.Trajectory, xAxis, yAxis, width, height int) string {
	if width < 2 || height < 2 || traj.Len() == 0 {
		return ""
	}
	if xAxis < 0 || yAxis < 0 || xAxis >= traj.Dim() || yAxis >= traj.Dim() {
		return ""
	}

	xs, ys := traj.Axis(xAxis), traj.Axis(yAxis)

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	points := 0
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
		points++
	}
	if points == 0 {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if c := col(0); minX <= 0 && minX+rangeX >= 0 && c >= 0 && c < width {
		for r := 0; r < height; r++ {
			canvas[r][c] = '│'
		}
	}
	if r := row(0); minY <= 0 && minY+rangeY >= 0 && r >= 0 && r < height {
		for c := 0; c < width; c++ {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}

	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		r, c := row(ys[i]), col(xs[i])
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
