package stimulus

import "context"

func (s *Synthesizer) offOn(ctx context.Context, o OffOn) (*Output, error) {
	levels := [2]uint8{o.Off, o.On}
	p, err := s.finish(ctx, len(levels), o.Stretch, func(k int, pix []uint8) {
		for i := range pix {
			pix[i] = levels[k]
		}
	})
	if err != nil {
		return nil, err
	}
	return &Output{Pattern: p, Schedule: []float64{float64(o.Off), float64(o.On)}}, nil
}
