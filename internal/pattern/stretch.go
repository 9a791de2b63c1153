package pattern

import "math"

// Keyframe is a stretch value V at frame position T with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// StretchEnvelope is a sorted list of keyframes over frame index.
type StretchEnvelope struct {
	Keys []Keyframe `yaml:"keys"`
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep (6x^5 - 15x^4 + 10x^3) for ease="cubic"
func smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default:
		return x
	}
}

// Eval returns the envelope value at position t. With no keys it returns 0;
// outside the key range it holds the nearest end value.
func (e StretchEnvelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if n == 1 || t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	for i := 0; i < n-1; i++ {
		a, b := e.Keys[i], e.Keys[i+1]
		if t >= a.T && t <= b.T {
			den := b.T - a.T
			if den <= 0 {
				return b.V
			}
			u := easeApply(a.Ease, clamp01((t-a.T)/den))
			return a.V + (b.V-a.V)*u
		}
	}
	return e.Keys[n-1].V
}

// Apply overwrites p's stretch list with the envelope sampled at every frame
// index, rounded and clamped to a byte.
func (e StretchEnvelope) Apply(p *Pattern) {
	if len(p.Stretch) != len(p.Frames) {
		p.Stretch = make([]uint8, len(p.Frames))
	}
	for i := range p.Stretch {
		v := math.Round(e.Eval(float64(i)))
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		p.Stretch[i] = uint8(v)
	}
}
