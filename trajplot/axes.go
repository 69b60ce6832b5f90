package trajplot

import "image/color"

// LegendLocation says where an Axes places its legend.
type LegendLocation int

// Legend locations.
const (
	LegendInside LegendLocation = iota
	LegendBelow
)

// Style describes how one Plot call is drawn.
type Style struct {
	Label string
	Color color.Color
	// Alpha is the opacity in (0, 1]. Zero means opaque, so a Style without Alpha is visible.
	Alpha float64
	// Line connects consecutive points.
	Line bool
	// MarkerSize is the circle marker diameter in points. Zero means no markers.
	MarkerSize float64
}

// Axes is a drawing surface that trajectories and points are rendered onto.
type Axes interface {
	// Plot draws the points (xs[i], ys[i]).
	Plot(xs, ys []float64, style Style) error
	// Quiver draws an arrow of direction (us[i], vs[i]) anchored at each (xs[i], ys[i]).
	Quiver(xs, ys, us, vs []float64, c color.Color) error
	// Legend shows the labels of every labelled Plot call, laid out in the given number of columns.
	Legend(loc LegendLocation, columns int)
	// SetAspectEqual makes one data unit span the same distance on both axes.
	SetAspectEqual()
}
