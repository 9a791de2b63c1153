package arena

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// goldenAngle spreads successive sample pairs around the disc.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Offset is a tangent-plane displacement in radians: U along the local east
// direction, V along the local north direction.
type Offset struct{ U, V float64 }

// Offsets returns n sample offsets inside a disc of radius pRad.
//
// Samples come in point-symmetric pairs on an equal-area spiral; an odd n
// adds the disc center first. Any great circle through the pixel center that
// misses every sample therefore splits the pairs exactly in half.
func Offsets(n int, pRad float64) []Offset {
	if n < 1 {
		return nil
	}
	out := make([]Offset, 0, n)
	if n%2 == 1 {
		out = append(out, Offset{})
	}
	pairs := n / 2
	for j := 0; j < pairs; j++ {
		rho := pRad * math.Sqrt((float64(j)+0.5)/float64(pairs))
		a := (float64(j) + 0.5) * goldenAngle
		u, v := rho*math.Cos(a), rho*math.Sin(a)
		out = append(out, Offset{U: u, V: v}, Offset{U: -u, V: -v})
	}
	return out
}

// Samples holds N sub-sample directions per pixel. Pixel i owns
// Vecs[i*N : (i+1)*N].
type Samples struct {
	N    int
	Vecs []r3.Vec
}

// Pixel returns the sub-samples of pixel i.
func (s Samples) Pixel(i int) []r3.Vec {
	return s.Vecs[i*s.N : (i+1)*s.N]
}

// Pixels is the number of pixels covered.
func (s Samples) Pixels() int {
	if s.N == 0 {
		return 0
	}
	return len(s.Vecs) / s.N
}

// Sample expands every coordinate into n directions spread over the pixel's
// angular footprint (a disc of radius pRad on the sphere).
func Sample(coords []r3.Vec, n int, pRad float64) (Samples, error) {
	if n < 1 {
		return Samples{}, ErrSampleCount
	}
	if pRad < 0 || math.IsNaN(pRad) || math.IsInf(pRad, 0) {
		return Samples{}, ErrPixelRadius
	}
	offs := Offsets(n, pRad)
	out := Samples{N: n, Vecs: make([]r3.Vec, len(coords)*n)}
	for i, c := range coords {
		east, north := tangentBasis(c)
		dst := out.Vecs[i*n : (i+1)*n]
		for k, o := range offs {
			dst[k] = displace(c, east, north, o)
		}
	}
	return out, nil
}

// tangentBasis returns unit east and north vectors at c. At the poles east is
// taken along +y.
func tangentBasis(c r3.Vec) (east, north r3.Vec) {
	up := r3.Vec{Z: 1}
	e := r3.Cross(up, c)
	if r3.Norm(e) < 1e-12 {
		e = r3.Vec{Y: 1}
	}
	east = r3.Unit(e)
	north = r3.Cross(c, east)
	return east, north
}

// displace moves c along the great circle in the direction of o by |o|.
func displace(c, east, north r3.Vec, o Offset) r3.Vec {
	r := math.Hypot(o.U, o.V)
	if r == 0 {
		return c
	}
	k := math.Sin(r) / r
	t := r3.Add(r3.Scale(o.U, east), r3.Scale(o.V, north))
	return r3.Add(r3.Scale(math.Cos(r), c), r3.Scale(k, t))
}
