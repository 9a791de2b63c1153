package arena

import (
	"math"

	"github.com/coreman2200/arenapat/internal/numeric"
)

// Mollweide projects a direction onto the Mollweide ellipse. The auxiliary
// angle solves 2θ + sin 2θ = π sin(elevation); the returned result says
// whether that solve converged within maxIter steps.
func Mollweide(d Direction, tol float64, maxIter int) (x, y float64, res numeric.Result) {
	lat := d.Elevation
	lon := math.Remainder(d.Azimuth, 2*math.Pi)

	var theta float64
	if math.Abs(math.Abs(lat)-math.Pi/2) < 1e-12 {
		// derivative vanishes at the poles; the answer is exact there
		theta = math.Copysign(math.Pi/2, lat)
		res = numeric.Result{Value: theta, Converged: true}
	} else {
		target := math.Pi * math.Sin(lat)
		f := func(t float64) float64 { return 2*t + math.Sin(2*t) - target }
		df := func(t float64) float64 { return 2 + 2*math.Cos(2*t) }
		var err error
		res, err = numeric.Newton(f, df, lat, tol, maxIter)
		if err != nil {
			res.Converged = false
		}
		theta = res.Value
	}
	x = 2 * math.Sqrt2 / math.Pi * lon * math.Cos(theta)
	y = math.Sqrt2 * math.Sin(theta)
	return x, y, res
}
