// Package stimulus synthesizes visual stimuli for a panel arena. Every
// generator rotates the arena's sampled pixel directions into the stimulus
// frame, reduces them to one scalar channel, and evaluates a per-frame
// membership function whose sample mean blends between intensity levels.
package stimulus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/coreman2200/arenapat/internal/arena"
	"github.com/coreman2200/arenapat/internal/diag"
	"github.com/coreman2200/arenapat/internal/pattern"
)

// DefaultSamples is the anti-aliasing sample count used when none is set.
const DefaultSamples = 15

var ErrGeometry = errors.New("stimulus: geometry does not match generation")

// Output is a synthesized pattern plus what the generator noticed on the way.
// Schedule holds the per-frame driving value: angular size for looming,
// phase shift for gratings, dot displacement for starfields.
type Output struct {
	Pattern     *pattern.Pattern
	Diagnostics diag.List
	Schedule    []float64
}

// Synthesizer renders stimuli for one arena. Its geometry is shared and read
// only; one Synthesizer may serve concurrent calls.
type Synthesizer struct {
	Geometry   arena.Geometry
	Generation pattern.Generation
	Depth      pattern.BitDepth
	Samples    int // anti-aliasing samples per pixel
	Workers    int // frames rendered in parallel; 0 means GOMAXPROCS

	once    sync.Once
	sampled arena.Samples
	err     error
}

func (s *Synthesizer) samples() (arena.Samples, error) {
	s.once.Do(func() {
		n := s.Samples
		if n <= 0 {
			n = DefaultSamples
		}
		s.sampled, s.err = arena.Sample(s.Geometry.Coordinates(), n, s.Geometry.PixelRadius())
	})
	return s.sampled, s.err
}

func (s *Synthesizer) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s *Synthesizer) check() error {
	if s.Geometry == nil {
		return fmt.Errorf("%w: no geometry", ErrGeometry)
	}
	if !s.Generation.Valid() {
		return fmt.Errorf("%w: %v", pattern.ErrGeneration, s.Generation)
	}
	if !s.Depth.Valid() {
		return fmt.Errorf("%w: %d", pattern.ErrBitDepth, uint8(s.Depth))
	}
	if got, want := s.Geometry.Layout().PanelSize, s.Generation.PanelSize(); got != want {
		return fmt.Errorf("%w: panel size %d, %v uses %d", ErrGeometry, got, s.Generation, want)
	}
	return nil
}

// Synthesize validates p and renders it. Parameter problems come back as
// *ParamError before any rendering starts.
func (s *Synthesizer) Synthesize(ctx context.Context, p Params) (*Output, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: nil params", ErrUnknownStimulus)
	}
	if err := p.validate(s.Depth.MaxLevel()); err != nil {
		return nil, err
	}
	log.Debug().Str("stimulus", string(p.Kind())).Str("generation", s.Generation.String()).
		Str("depth", s.Depth.String()).Msg("synthesizing")
	switch v := p.(type) {
	case Grating:
		return s.grating(ctx, v)
	case Starfield:
		return s.starfield(ctx, v)
	case Looming:
		return s.looming(ctx, v)
	case ReversePhi:
		return s.reversePhi(ctx, v)
	case OffOn:
		return s.offOn(ctx, v)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownStimulus, p)
}

// field is the sampled arena expressed in one stimulus frame.
type field struct {
	n      int
	pRad   float64
	vecs   []r3.Vec          // rotated samples, pixel-major
	sph    []arena.Spherical // spherical form of vecs
	center []arena.Spherical // rotated pixel centers
}

func (s *Synthesizer) field(c Common) (*field, error) {
	smp, err := s.samples()
	if err != nil {
		return nil, err
	}
	e := arena.PoleRotation(c.Pole, c.MotionAngle)
	f := &field{
		n:    smp.N,
		pRad: s.Geometry.PixelRadius(),
		vecs: arena.Rotate(smp.Vecs, e),
	}
	f.sph = make([]arena.Spherical, len(f.vecs))
	for i, v := range f.vecs {
		f.sph[i] = arena.ToSpherical(v)
	}
	centers := arena.Rotate(s.Geometry.Coordinates(), e)
	f.center = make([]arena.Spherical, len(centers))
	for i, v := range centers {
		f.center[i] = arena.ToSpherical(v)
	}
	return f, nil
}

func (f *field) pixels() int { return len(f.center) }

// channel reduces every sample to the scalar a motion type varies along.
func (f *field) channel(m Motion) []float64 {
	out := make([]float64, len(f.sph))
	for i, sp := range f.sph {
		out[i] = channelValue(sp, m)
	}
	return out
}

func channelValue(sp arena.Spherical, m Motion) float64 {
	switch m {
	case Rotation:
		return sp.Azimuth
	case Translation:
		return math.Tan(sp.Colatitude - math.Pi/2)
	default:
		return sp.Colatitude
	}
}

// mean averages fn over the samples of pixel i.
func (f *field) mean(ch []float64, i int, fn func(x float64) float64) float64 {
	var sum float64
	for _, x := range ch[i*f.n : (i+1)*f.n] {
		sum += fn(x)
	}
	return sum / float64(f.n)
}

// poleMask marks pixels whose sample footprint cannot resolve wavelength
// near the stimulus pole. Expansion needs no mask.
func (f *field) poleMask(m Motion, wavelength float64) []bool {
	if m == Expansion {
		return nil
	}
	limit := 4 * f.pRad
	mask := make([]bool, f.pixels())
	for i, c := range f.center {
		s := math.Sin(c.Colatitude)
		if m == Translation {
			s *= s
		}
		mask[i] = s*wavelength < limit
	}
	return mask
}

func countTrue(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// quantize rounds v to the nearest level in [0, top].
func quantize(v float64, top uint8) uint8 {
	r := math.Round(v)
	if !(r > 0) {
		return 0
	}
	if r > float64(top) {
		return top
	}
	return uint8(r)
}

func mix(m float64, on, off uint8) float64 {
	return m*float64(on) + (1-m)*float64(off)
}

// render fills num frames in parallel and returns them in index order.
func (s *Synthesizer) render(ctx context.Context, num int, fill func(k int, pix []uint8)) ([]pattern.Frame, error) {
	l := s.Geometry.Layout()
	out := make([]pattern.Frame, num)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for k := 0; k < num; k++ {
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := pattern.NewFrame(l.Rows(), l.Cols())
			fill(k, f.Pix)
			out[k] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Synthesizer) assemble(frames []pattern.Frame, stretch uint8) (*pattern.Pattern, error) {
	l := s.Geometry.Layout()
	p := pattern.New(s.Generation, s.Depth, l.PanelRows, l.PanelCols)
	for _, f := range frames {
		if err := p.Append(f, stretch); err != nil {
			return nil, err
		}
	}
	return p, p.Validate()
}

func (s *Synthesizer) finish(ctx context.Context, num int, stretch uint8, fill func(k int, pix []uint8)) (*pattern.Pattern, error) {
	frames, err := s.render(ctx, num, fill)
	if err != nil {
		return nil, err
	}
	return s.assemble(frames, stretch)
}
