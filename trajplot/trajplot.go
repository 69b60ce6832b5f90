// Package trajplot renders predicted and ground truth trajectories, together with point markers
// such as the robot and goal positions, onto a 2D drawing surface.
package trajplot

import (
	"image/color"

	"github.com/pkg/errors"

	"go.viam.com/navviz/rimage"
)

// ErrLengthMismatch is wrapped by every error caused by style slices that do not line up with
// the trajectories or points they describe.
var ErrLengthMismatch = errors.New("length mismatch")

// A Trajectory is a time ordered sequence of rows. Each row is (x, y), (x, y, yaw) or
// (x, y, cos, sin).
type Trajectory [][]float64

// Point is a single 2D position such as the robot or the goal.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointMarkerSize is the marker diameter used for points.
const PointMarkerSize = 7

// TrajMarkerSize is the marker diameter used at each trajectory row.
const TrajMarkerSize = 4

// LegendColumns is the number of legend columns.
const LegendColumns = 2

// Options style a PlotTrajsAndPoints call. Slices are indexed like the trajectories or points
// they style. Nil label slices mean no labels; nil alpha slices mean fully opaque.
type Options struct {
	TrajColors  []color.Color
	PointColors []color.Color
	TrajLabels  []string
	PointLabels []string
	TrajAlphas  []float64
	PointAlphas []float64
	// QuiverFreq is the row stride at which heading arrows are drawn. Zero disables them.
	QuiverFreq int
	// DefaultColoring allows more trajectories than TrajColors or TrajLabels. The extra
	// trajectories get generated colors and no label.
	DefaultColoring bool
}

// DefaultOptions styles a prediction and a ground truth trajectory along with robot and goal
// points.
func DefaultOptions() Options {
	return Options{
		TrajColors:      []color.Color{rimage.Cyan, rimage.Magenta},
		PointColors:     []color.Color{rimage.Red, rimage.Green},
		TrajLabels:      []string{"prediction", "ground truth"},
		PointLabels:     []string{"robot", "goal"},
		QuiverFreq:      1,
		DefaultColoring: true,
	}
}

func (opts Options) validate(trajs []Trajectory, points []Point) error {
	if len(trajs) > len(opts.TrajColors) && !opts.DefaultColoring {
		return errors.Wrapf(ErrLengthMismatch, "not enough colors for trajectories: %d trajectories, %d colors",
			len(trajs), len(opts.TrajColors))
	}
	if len(points) > len(opts.PointColors) {
		return errors.Wrapf(ErrLengthMismatch, "not enough colors for points: %d points, %d colors",
			len(points), len(opts.PointColors))
	}
	if opts.TrajLabels != nil && len(trajs) != len(opts.TrajLabels) && !opts.DefaultColoring {
		return errors.Wrapf(ErrLengthMismatch, "not enough labels for trajectories: %d trajectories, %d labels",
			len(trajs), len(opts.TrajLabels))
	}
	if opts.PointLabels != nil && len(points) != len(opts.PointLabels) {
		return errors.Wrapf(ErrLengthMismatch, "not enough labels for points: %d points, %d labels",
			len(points), len(opts.PointLabels))
	}
	if opts.TrajAlphas != nil && len(trajs) > len(opts.TrajAlphas) {
		return errors.Wrapf(ErrLengthMismatch, "not enough alphas for trajectories: %d trajectories, %d alphas",
			len(trajs), len(opts.TrajAlphas))
	}
	if opts.PointAlphas != nil && len(points) > len(opts.PointAlphas) {
		return errors.Wrapf(ErrLengthMismatch, "not enough alphas for points: %d points, %d alphas",
			len(points), len(opts.PointAlphas))
	}
	for _, alphas := range [][]float64{opts.TrajAlphas, opts.PointAlphas} {
		for _, a := range alphas {
			if a <= 0 || a > 1 {
				return errors.Errorf("alpha must be in (0, 1], got %v", a)
			}
		}
	}
	for i, traj := range trajs {
		for j, row := range traj {
			if len(row) < 2 {
				return errors.Errorf("trajectory %d row %d has %d components, need at least 2", i, j, len(row))
			}
		}
	}
	if opts.QuiverFreq < 0 {
		return errors.Errorf("quiver frequency cannot be negative, got %d", opts.QuiverFreq)
	}
	return nil
}

// trajColors returns one color per trajectory, extending TrajColors with an evenly spaced
// palette when there are more trajectories than colors.
func (opts Options) trajColors(n int) []color.Color {
	colors := make([]color.Color, 0, n)
	colors = append(colors, opts.TrajColors[:min(n, len(opts.TrajColors))]...)
	if extra := n - len(colors); extra > 0 {
		colors = append(colors, rimage.Palette(extra)...)
	}
	return colors
}

func alphaAt(alphas []float64, i int) float64 {
	if alphas == nil {
		return 1
	}
	return alphas[i]
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

// PlotTrajsAndPoints draws each trajectory as a line with circle markers and each point as a
// single marker onto ax. Trajectories with heading rows also get heading arrows every
// opts.QuiverFreq rows, in the trajectory color at half intensity. A legend is placed below
// the plot when any labels are given, and the axes are always set to an equal aspect ratio.
//
// Mismatched style slices are reported before anything is drawn.
func PlotTrajsAndPoints(ax Axes, trajs []Trajectory, points []Point, opts Options) error {
	if err := opts.validate(trajs, points); err != nil {
		return err
	}

	colors := opts.trajColors(len(trajs))
	for i, traj := range trajs {
		xs := make([]float64, len(traj))
		ys := make([]float64, len(traj))
		for j, row := range traj {
			xs[j], ys[j] = row[0], row[1]
		}
		style := Style{
			Label:      labelAt(opts.TrajLabels, i),
			Color:      colors[i],
			Alpha:      alphaAt(opts.TrajAlphas, i),
			Line:       true,
			MarkerSize: TrajMarkerSize,
		}
		if err := ax.Plot(xs, ys, style); err != nil {
			return errors.Wrapf(err, "couldn't plot trajectory %d", i)
		}

		if opts.QuiverFreq <= 0 || !HasHeading(traj) {
			continue
		}
		var qx, qy, qu, qv []float64
		bearings := Bearings(traj)
		for j := 0; j < len(traj); j += opts.QuiverFreq {
			if !bearings[j].OK {
				continue
			}
			qx = append(qx, xs[j])
			qy = append(qy, ys[j])
			qu = append(qu, bearings[j].U)
			qv = append(qv, bearings[j].V)
		}
		if len(qx) == 0 {
			continue
		}
		if err := ax.Quiver(qx, qy, qu, qv, rimage.ScaleColor(colors[i], 0.5)); err != nil {
			return errors.Wrapf(err, "couldn't plot headings of trajectory %d", i)
		}
	}

	for i, pt := range points {
		style := Style{
			Label:      labelAt(opts.PointLabels, i),
			Color:      opts.PointColors[i],
			Alpha:      alphaAt(opts.PointAlphas, i),
			MarkerSize: PointMarkerSize,
		}
		if err := ax.Plot([]float64{pt.X}, []float64{pt.Y}, style); err != nil {
			return errors.Wrapf(err, "couldn't plot point %d", i)
		}
	}

	if opts.TrajLabels != nil || opts.PointLabels != nil {
		ax.Legend(LegendBelow, LegendColumns)
	}
	ax.SetAspectEqual()
	return nil
}
