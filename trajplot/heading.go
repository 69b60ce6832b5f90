package trajplot

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bearing is the unit heading of one trajectory row. OK is false when the row carries no
// usable heading.
type Bearing struct {
	U, V float64
	OK   bool
}

// HasHeading reports whether the rows of traj carry heading information.
func HasHeading(traj Trajectory) bool {
	for _, row := range traj {
		if len(row) < 3 {
			return false
		}
	}
	return len(traj) > 0
}

// Bearings derives a unit heading per row. Rows of (x, y, cos, sin) are normalized, rows of
// (x, y, yaw) use the yaw angle in radians. A zero or non-finite heading yields a Bearing
// that is not OK.
func Bearings(traj Trajectory) []Bearing {
	bearings := make([]Bearing, len(traj))
	for i, row := range traj {
		var v []float64
		switch {
		case len(row) >= 4:
			v = []float64{row[2], row[3]}
		case len(row) == 3:
			v = []float64{math.Cos(row[2]), math.Sin(row[2])}
		default:
			continue
		}
		norm := floats.Norm(v, 2)
		if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
			continue
		}
		floats.Scale(1/norm, v)
		bearings[i] = Bearing{U: v[0], V: v[1], OK: true}
	}
	return bearings
}
