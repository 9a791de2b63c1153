package stimulus

import (
	"context"

	"github.com/coreman2200/arenapat/internal/diag"
)

// reversePhiLevel maps a raw grating value g onto frame k's range. Even k
// (first, third, ... frame) runs dark to bright; odd k runs bright to dark.
func reversePhiLevel(g float64, k int, bright, dark uint8) float64 {
	if k%2 == 0 {
		return float64(dark) + g*(float64(bright)-float64(dark))
	}
	return float64(bright) + g*(float64(dark)-float64(bright))
}

func (s *Synthesizer) reversePhi(ctx context.Context, r ReversePhi) (*Output, error) {
	var notes diag.List
	f, err := s.field(r.Common)
	if err != nil {
		return nil, err
	}
	num, step := evenStep(r.Wavelength, r.StepSize)
	stepNote(&notes, r.StepSize, step)

	var mask []bool
	if r.PoleCorrection {
		mask = poleCorrection(f, &notes, r.Motion, r.Wavelength)
	}

	top := s.Depth.MaxLevel()
	mid := midLevel(r.Bright, r.Dark, top)
	ch := f.channel(r.Motion)
	shifts := make([]float64, num)
	for k := range shifts {
		shifts[k] = float64(k) * step
	}
	p, err := s.finish(ctx, num, r.Stretch, func(k int, pix []uint8) {
		for i := range pix {
			if mask != nil && mask[i] {
				pix[i] = mid
				continue
			}
			g := f.gratingValue(ch, i, shifts[k], r.Wavelength, halfSquare)
			pix[i] = quantize(reversePhiLevel(g, k, r.Bright, r.Dark), top)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Diagnostics: notes, Schedule: shifts}, nil
}

func halfSquare(ph float64) float64 { return squareWave(ph, 0.5) }
