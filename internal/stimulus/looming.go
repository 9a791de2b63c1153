package stimulus

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arenapat/internal/diag"
)

const (
	// defaultLoomFrames is the exponential frame count when no rate is set.
	defaultLoomFrames = 60
	// minTau keeps time-to-collision off zero at the final frame.
	minTau = 1e-9
)

// timeToCollision for an object of size/speed ratio lv seen at angular size theta.
func timeToCollision(lv, theta float64) float64 {
	return lv / (2 * math.Tan(theta/2))
}

func angularSize(lv, tau float64) float64 {
	if tau < minTau {
		tau = minTau
	}
	return 2 * math.Atan(lv/(2*tau))
}

// loomSchedule returns the angular size of every frame.
func loomSchedule(l Looming) []float64 {
	if l.Profile == Exponential {
		ti := timeToCollision(l.LoverV, l.InitialSize)
		tf := timeToCollision(l.LoverV, l.FinalSize)
		num := defaultLoomFrames
		if l.Rate > 0 {
			hz := float64(l.Rate) / float64(physic.Hertz)
			num = max(2, int(math.Round((ti-tf)*hz))+1)
		}
		taus := floats.Span(make([]float64, num), ti, tf)
		out := make([]float64, num)
		for i, tau := range taus {
			out[i] = angularSize(l.LoverV, tau)
		}
		out[0], out[num-1] = l.InitialSize, l.FinalSize
		return out
	}
	span := l.FinalSize - l.InitialSize
	var num int
	if l.StepSize > 0 {
		num = max(2, int(math.Round(span/l.StepSize)))
	} else {
		num = max(2, int(math.Round(span*180/math.Pi)))
	}
	return floats.Span(make([]float64, num), l.InitialSize, l.FinalSize)
}

func (s *Synthesizer) looming(ctx context.Context, l Looming) (*Output, error) {
	var notes diag.List
	if l.FinalSize > math.Pi/2 {
		log.Warn().Float64("final_size_deg", l.FinalSize*180/math.Pi).
			Msg("looming final size covers more than a hemisphere")
		notes.Add(diag.Diagnostic{
			Severity: diag.Warn,
			Code:     diag.CodeLargeFinalSize,
			Summary:  "looming final size exceeds 90 degrees",
			Detail:   "the disc will cover more than a hemisphere at the last frame",
			Evidence: map[string]any{"final_size_deg": l.FinalSize * 180 / math.Pi},
		})
	}
	f, err := s.field(l.Common)
	if err != nil {
		return nil, err
	}
	sizes := loomSchedule(l)
	log.Debug().Int("frames", len(sizes)).Str("profile", string(l.Profile)).Msg("looming schedule")

	top := s.Depth.MaxLevel()
	dist := f.channel(Expansion)
	p, err := s.finish(ctx, len(sizes), l.Stretch, func(k int, pix []uint8) {
		size := sizes[k]
		inside := func(x float64) float64 {
			if x < size {
				return 1
			}
			return 0
		}
		for i := range pix {
			m := f.mean(dist, i, inside)
			pix[i] = quantize(mix(m, l.Object, l.Background), top)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Diagnostics: notes, Schedule: sizes}, nil
}
