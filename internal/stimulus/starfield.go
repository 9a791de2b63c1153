package stimulus

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/coreman2200/arenapat/internal/arena"
)

// scatter places n dots uniformly on the unit sphere.
func scatter(n int, seed int64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	out := make([]r3.Vec, n)
	for i := range out {
		z := 2*rng.Float64() - 1
		phi := twoPi * rng.Float64()
		r := math.Sqrt(1 - z*z)
		out[i] = r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	}
	return out
}

// moveDots displaces dots by d along the motion channel. Rotation turns the
// field about the pole, translation carries it from the pole towards the
// motion direction, and expansion pushes dots down their meridian, wrapping
// back to the pole.
func moveDots(dots []r3.Vec, m Motion, d float64) []r3.Vec {
	out := make([]r3.Vec, len(dots))
	switch m {
	case Rotation:
		rot := r3.NewRotation(d, r3.Vec{Z: 1})
		for i, v := range dots {
			out[i] = rot.Rotate(v)
		}
	case Translation:
		rot := r3.NewRotation(d, r3.Vec{Y: 1})
		for i, v := range dots {
			out[i] = rot.Rotate(v)
		}
	default:
		for i, v := range dots {
			sp := arena.ToSpherical(v)
			col := math.Mod(sp.Colatitude+d, math.Pi)
			if col < 0 {
				col += math.Pi
			}
			s := math.Sin(col)
			out[i] = r3.Vec{X: s * math.Cos(sp.Azimuth), Y: s * math.Sin(sp.Azimuth), Z: math.Cos(col)}
		}
	}
	return out
}

func (s *Synthesizer) starfield(ctx context.Context, sf Starfield) (*Output, error) {
	f, err := s.field(sf.Common)
	if err != nil {
		return nil, err
	}
	dots := scatter(sf.DotCount, sf.Seed)
	cosR := math.Cos(sf.DotRadius)
	shifts := make([]float64, sf.Frames)
	for k := range shifts {
		shifts[k] = float64(k) * sf.StepSize
	}

	top := s.Depth.MaxLevel()
	p, err := s.finish(ctx, sf.Frames, sf.Stretch, func(k int, pix []uint8) {
		moved := moveDots(dots, sf.Motion, shifts[k])
		for i := range pix {
			hit := 0
			for _, v := range f.vecs[i*f.n : (i+1)*f.n] {
				for _, d := range moved {
					if r3.Dot(v, d) > cosR {
						hit++
						break
					}
				}
			}
			m := float64(hit) / float64(f.n)
			pix[i] = quantize(mix(m, sf.Dot, sf.Background), top)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Schedule: shifts}, nil
}
