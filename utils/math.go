// Package utils contains small helpers shared by the navviz packages.
package utils

import "golang.org/x/exp/constraints"

// Clamp returns min if value is lesser than min, max if value is greater them max or value if the input value is
// between min and max.
func Clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// UnitToUint8 maps a value in [0, 1] onto [0, 255], clamping values outside the range.
func UnitToUint8(v float64) uint8 {
	return uint8(Clamp(v, 0, 1)*255 + 0.5)
}
