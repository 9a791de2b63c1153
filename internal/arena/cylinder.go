package arena

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NewCylinder builds the geometry of a cylindrical arena whose columns cover
// `coverage` radians of azimuth, centered on azimuth 0. Rows sit on a unit
// radius cylinder at the same angular pitch as columns, row 0 on top.
// The pixel angular radius is half the column pitch.
func NewCylinder(l Layout, coverage float64) (*Arena, error) {
	if !l.Valid() {
		return nil, ErrBadLayout
	}
	if !(coverage > 0 && coverage <= 2*math.Pi) {
		return nil, ErrBadCoverage
	}
	rows, cols := l.Rows(), l.Cols()
	pitch := coverage / float64(cols)
	out := make([]r3.Vec, l.Count())
	idx := 0
	for r := 0; r < rows; r++ {
		h := (float64(rows-1)/2 - float64(r)) * pitch
		for c := 0; c < cols; c++ {
			az := -coverage/2 + (float64(c)+0.5)*pitch
			out[idx] = r3.Unit(r3.Vec{X: math.Cos(az), Y: math.Sin(az), Z: h})
			idx++
		}
	}
	return &Arena{layout: l, coords: out, pRad: pitch / 2}, nil
}
