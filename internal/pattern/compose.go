package pattern

import (
	"fmt"
	"math"
)

// Op selects how two patterns are combined frame by frame.
type Op string

const (
	OpOr    Op = "or"
	OpAnd   Op = "and"
	OpXor   Op = "xor"
	OpBlend Op = "blend"
)

func compatible(a, b *Pattern) error {
	if a.Generation.PanelSize() != b.Generation.PanelSize() ||
		a.PanelRows != b.PanelRows || a.PanelCols != b.PanelCols || a.Depth != b.Depth {
		return fmt.Errorf("%w: %v %dx%d %v vs %v %dx%d %v", ErrMismatch,
			a.Generation, a.PanelRows, a.PanelCols, a.Depth,
			b.Generation, b.PanelRows, b.PanelCols, b.Depth)
	}
	return nil
}

// Concat joins patterns end to end into a new single-row pattern. Frames are
// shared with the inputs, not copied.
func Concat(ps ...*Pattern) (*Pattern, error) {
	if len(ps) == 0 {
		return nil, ErrEmpty
	}
	first := ps[0]
	out := New(first.Generation, first.Depth, first.PanelRows, first.PanelCols)
	for _, p := range ps {
		if err := compatible(first, p); err != nil {
			return nil, err
		}
		if len(p.Stretch) != len(p.Frames) {
			return nil, ErrStretchLen
		}
		for i, f := range p.Frames {
			if err := out.Append(f, p.Stretch[i]); err != nil {
				return nil, err
			}
		}
	}
	if out.Len() == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Combine merges b into a frame by frame. b may hold a single frame, which is
// then applied to every frame of a. Logical ops treat any nonzero pixel as on
// and write MaxLevel; OpBlend mixes linearly with weight alpha on b.
// Stretch values come from a.
func Combine(a, b *Pattern, op Op, alpha float64) (*Pattern, error) {
	if err := compatible(a, b); err != nil {
		return nil, err
	}
	if len(a.Frames) == 0 || len(b.Frames) == 0 {
		return nil, ErrEmpty
	}
	if len(b.Frames) != 1 && len(b.Frames) != len(a.Frames) {
		return nil, fmt.Errorf("%w: %d frames vs %d", ErrMismatch, len(a.Frames), len(b.Frames))
	}
	out := New(a.Generation, a.Depth, a.PanelRows, a.PanelCols)
	on := a.Depth.MaxLevel()
	for i, fa := range a.Frames {
		fb := b.Frames[0]
		if len(b.Frames) > 1 {
			fb = b.Frames[i]
		}
		dst := NewFrame(fa.Rows, fa.Cols)
		switch op {
		case OpOr:
			logic(dst, fa, fb, on, func(x, y bool) bool { return x || y })
		case OpAnd:
			logic(dst, fa, fb, on, func(x, y bool) bool { return x && y })
		case OpXor:
			logic(dst, fa, fb, on, func(x, y bool) bool { return x != y })
		case OpBlend:
			Blend(dst, fa, fb, alpha)
		default:
			return nil, fmt.Errorf("pattern: unknown combine op %q", op)
		}
		if err := out.Append(dst, a.Stretch[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func logic(dst, a, b Frame, on uint8, f func(x, y bool) bool) {
	for i := range dst.Pix {
		if f(a.Pix[i] != 0, b.Pix[i] != 0) {
			dst.Pix[i] = on
		} else {
			dst.Pix[i] = 0
		}
	}
}

// Blend mixes two frames (a,b) into dst using alpha (0..1), rounding to the
// nearest level.
func Blend(dst, a, b Frame, alpha float64) {
	if alpha <= 0 {
		copy(dst.Pix, a.Pix)
		return
	}
	if alpha >= 1 {
		copy(dst.Pix, b.Pix)
		return
	}
	af := 1.0 - alpha
	for i := range dst.Pix {
		dst.Pix[i] = uint8(math.Round(float64(a.Pix[i])*af + float64(b.Pix[i])*alpha))
	}
}
