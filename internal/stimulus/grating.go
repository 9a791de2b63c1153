package stimulus

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/coreman2200/arenapat/internal/diag"
)

const twoPi = 2 * math.Pi

// squareWave is 1 over the first duty fraction of every period.
func squareWave(phase, duty float64) float64 {
	ph := math.Mod(phase, twoPi)
	if ph < 0 {
		ph += twoPi
	}
	if ph < duty*twoPi {
		return 1
	}
	return 0
}

func sineWave(phase float64) float64 { return 0.5 + 0.5*math.Sin(phase) }

// evenStep returns the frame count for one period and the step that divides
// the wavelength into exactly that many frames.
func evenStep(wavelength, step float64) (int, float64) {
	num := max(1, int(math.Round(wavelength/step)))
	return num, wavelength / float64(num)
}

func stepNote(notes *diag.List, requested, actual float64) {
	if math.Abs(requested-actual) <= 1e-12*math.Max(1, math.Abs(requested)) {
		return
	}
	log.Debug().Float64("requested", requested).Float64("actual", actual).Msg("step adjusted to divide wavelength")
	notes.Add(diag.Diagnostic{
		Severity: diag.Info,
		Code:     diag.CodeStepAdjusted,
		Summary:  "step size adjusted to divide the spatial wavelength evenly",
		Evidence: map[string]any{"requested": requested, "actual": actual},
	})
}

// gratingValue is the sample mean of wave at pixel i shifted by shift.
func (f *field) gratingValue(ch []float64, i int, shift, wavelength float64, wave func(float64) float64) float64 {
	k := twoPi / wavelength
	return f.mean(ch, i, func(x float64) float64 { return wave((x - shift) * k) })
}

// poleCorrection returns the pixels to hold at mid level, noting how many.
func poleCorrection(f *field, notes *diag.List, m Motion, wavelength float64) []bool {
	mask := f.poleMask(m, wavelength)
	if n := countTrue(mask); n > 0 {
		notes.Add(diag.Diagnostic{
			Severity: diag.Info,
			Code:     diag.CodePoleMasked,
			Summary:  "pixels near the pole held at mid level",
			Evidence: map[string]any{"pixels": n},
		})
		return mask
	}
	return nil
}

func midLevel(a, b, top uint8) uint8 {
	return quantize((float64(a)+float64(b))/2, top)
}

func (s *Synthesizer) grating(ctx context.Context, g Grating) (*Output, error) {
	if g.Edge {
		return s.edge(ctx, g)
	}
	var notes diag.List
	f, err := s.field(g.Common)
	if err != nil {
		return nil, err
	}
	num, step := evenStep(g.Wavelength, g.StepSize)
	stepNote(&notes, g.StepSize, step)

	duty := g.DutyCycle
	if duty == 0 {
		duty = 0.5
	}
	wave := func(ph float64) float64 { return squareWave(ph, duty) }
	if g.Waveform == Sine {
		wave = sineWave
	}
	var mask []bool
	if g.PoleCorrection {
		mask = poleCorrection(f, &notes, g.Motion, g.Wavelength)
	}

	top := s.Depth.MaxLevel()
	mid := midLevel(g.Bright, g.Dark, top)
	ch := f.channel(g.Motion)
	shifts := make([]float64, num)
	for k := range shifts {
		shifts[k] = float64(k) * step
	}
	p, err := s.finish(ctx, num, g.Stretch, func(k int, pix []uint8) {
		for i := range pix {
			if mask != nil && mask[i] {
				pix[i] = mid
				continue
			}
			v := f.gratingValue(ch, i, shifts[k], g.Wavelength, wave)
			pix[i] = quantize(mix(v, g.Bright, g.Dark), top)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Diagnostics: notes, Schedule: shifts}, nil
}

// edge sweeps one bright/dark boundary across the channel range.
func (s *Synthesizer) edge(ctx context.Context, g Grating) (*Output, error) {
	f, err := s.field(g.Common)
	if err != nil {
		return nil, err
	}
	from, to, _ := g.edgeRange()
	num := max(2, int(math.Round((to-from)/g.StepSize))+1)
	bounds := floats.Span(make([]float64, num), from, to)

	top := s.Depth.MaxLevel()
	ch := f.channel(g.Motion)
	p, err := s.finish(ctx, num, g.Stretch, func(k int, pix []uint8) {
		b := bounds[k]
		behind := func(x float64) float64 {
			if x < b {
				return 1
			}
			return 0
		}
		for i := range pix {
			pix[i] = quantize(mix(f.mean(ch, i, behind), g.Bright, g.Dark), top)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Schedule: bounds}, nil
}
