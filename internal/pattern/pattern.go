// Package pattern holds the in-memory pattern container: an ordered list of
// quantized frames with per-frame stretch values, the bit depth, and the
// arena panel grid the frames were generated for.
package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coreman2200/arenapat/internal/arena"
)

var (
	ErrGeneration = errors.New("pattern: unknown generation")
	ErrBitDepth   = errors.New("pattern: unknown bit depth")
	ErrDims       = errors.New("pattern: frame dimensions do not match arena")
	ErrStretchLen = errors.New("pattern: stretch count does not match frame count")
	ErrGrid       = errors.New("pattern: frame grid does not match frame count")
	ErrLevelRange = errors.New("pattern: pixel value outside bit depth range")
	ErrEmpty      = errors.New("pattern: no frames")
	ErrMismatch   = errors.New("pattern: patterns are not compatible")
)

// Generation identifies a controller/panel hardware revision.
type Generation int

const (
	G3 Generation = iota + 1
	G4
	G41
	G6
)

func (g Generation) String() string {
	switch g {
	case G3:
		return "G3"
	case G4:
		return "G4"
	case G41:
		return "G4.1"
	case G6:
		return "G6"
	default:
		return fmt.Sprintf("Generation(%d)", int(g))
	}
}

// Suffix is the tag used in pattern file names.
func (g Generation) Suffix() string {
	if g == G41 {
		return "G41"
	}
	return g.String()
}

// PanelSize is the pixel edge length of one panel of this generation.
func (g Generation) PanelSize() int {
	switch g {
	case G3:
		return 8
	case G4, G41:
		return 16
	case G6:
		return 20
	default:
		return 0
	}
}

func (g Generation) Valid() bool { return g.PanelSize() > 0 }

// Layout returns the arena layout for a panel grid of this generation.
func (g Generation) Layout(panelRows, panelCols int) arena.Layout {
	return arena.Layout{PanelRows: panelRows, PanelCols: panelCols, PanelSize: g.PanelSize()}
}

// ParseGeneration accepts "G3", "G4", "G4.1", "G41", "G6" in any case, with
// or without the leading G.
func ParseGeneration(s string) (Generation, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	k = strings.TrimPrefix(k, "G")
	switch k {
	case "3":
		return G3, nil
	case "4":
		return G4, nil
	case "4.1", "41":
		return G41, nil
	case "6":
		return G6, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrGeneration, s)
}

// BitDepth is the number of intensity levels; its value is also the tag
// written in pattern file headers.
type BitDepth uint8

const (
	Binary BitDepth = 2
	Gray   BitDepth = 16
)

func (d BitDepth) Valid() bool { return d == Binary || d == Gray }

// Bits per pixel in packed form.
func (d BitDepth) Bits() int {
	if d == Gray {
		return 4
	}
	return 1
}

// MaxLevel is the largest legal pixel value.
func (d BitDepth) MaxLevel() uint8 { return uint8(d) - 1 }

func (d BitDepth) String() string {
	switch d {
	case Binary:
		return "binary"
	case Gray:
		return "gray"
	default:
		return fmt.Sprintf("BitDepth(%d)", uint8(d))
	}
}

// ParseBitDepth accepts a bit count (1, 4) or level count (2, 16).
func ParseBitDepth(n int) (BitDepth, error) {
	switch n {
	case 1, 2:
		return Binary, nil
	case 4, 16:
		return Gray, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrBitDepth, n)
}

// Frame is one row-major grid of quantized intensities.
type Frame struct {
	Rows, Cols int
	Pix        []uint8
}

func NewFrame(rows, cols int) Frame {
	return Frame{Rows: rows, Cols: cols, Pix: make([]uint8, rows*cols)}
}

func (f Frame) At(row, col int) uint8 { return f.Pix[row*f.Cols+col] }
func (f Frame) Set(row, col int, v uint8) { f.Pix[row*f.Cols+col] = v }
func (f Frame) Fill(v uint8) {
	for i := range f.Pix {
		f.Pix[i] = v
	}
}

func (f Frame) Clone() Frame {
	c := Frame{Rows: f.Rows, Cols: f.Cols, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// LevelError locates the first pixel that exceeds a bit depth.
type LevelError struct {
	Frame, Row, Col int
	Value, Max      uint8
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("pattern: frame %d pixel (%d,%d) = %d exceeds max level %d",
		e.Frame, e.Row, e.Col, e.Value, e.Max)
}

func (e *LevelError) Unwrap() error { return ErrLevelRange }

// Pattern is the frame series for one arena configuration. Frames are
// conceptually a GridX × GridY grid flattened onto one temporal axis.
type Pattern struct {
	Generation Generation
	Depth      BitDepth
	PanelRows  int
	PanelCols  int
	GridX      int
	GridY      int
	Frames     []Frame
	Stretch    []uint8
}

// New returns an empty pattern for the given arena.
func New(gen Generation, depth BitDepth, panelRows, panelCols int) *Pattern {
	return &Pattern{
		Generation: gen,
		Depth:      depth,
		PanelRows:  panelRows,
		PanelCols:  panelCols,
		GridY:      1,
	}
}

func (p *Pattern) Layout() arena.Layout { return p.Generation.Layout(p.PanelRows, p.PanelCols) }
func (p *Pattern) Rows() int { return p.Layout().Rows() }
func (p *Pattern) Cols() int { return p.Layout().Cols() }
func (p *Pattern) Len() int { return len(p.Frames) }

// NewFrame returns a zeroed frame sized for p.
func (p *Pattern) NewFrame() Frame { return NewFrame(p.Rows(), p.Cols()) }

// Append adds a frame on the single-row frame grid.
func (p *Pattern) Append(f Frame, stretch uint8) error {
	if f.Rows != p.Rows() || f.Cols != p.Cols() || len(f.Pix) != f.Rows*f.Cols {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDims, f.Rows, f.Cols, p.Rows(), p.Cols())
	}
	p.Frames = append(p.Frames, f)
	p.Stretch = append(p.Stretch, stretch)
	p.GridX = len(p.Frames)
	p.GridY = 1
	return nil
}

// SetGrid reshapes the frame grid; x*y must equal the frame count.
func (p *Pattern) SetGrid(x, y int) error {
	if x <= 0 || y <= 0 || x*y != len(p.Frames) {
		return fmt.Errorf("%w: %dx%d for %d frames", ErrGrid, x, y, len(p.Frames))
	}
	p.GridX, p.GridY = x, y
	return nil
}

// Validate checks every container invariant, returning the first violation.
func (p *Pattern) Validate() error {
	if !p.Generation.Valid() {
		return fmt.Errorf("%w: %v", ErrGeneration, p.Generation)
	}
	if !p.Depth.Valid() {
		return fmt.Errorf("%w: %d", ErrBitDepth, uint8(p.Depth))
	}
	if !p.Layout().Valid() {
		return fmt.Errorf("%w: panel grid %dx%d", ErrDims, p.PanelRows, p.PanelCols)
	}
	if len(p.Frames) == 0 {
		return ErrEmpty
	}
	if len(p.Stretch) != len(p.Frames) {
		return fmt.Errorf("%w: %d stretch, %d frames", ErrStretchLen, len(p.Stretch), len(p.Frames))
	}
	if p.GridX*p.GridY != len(p.Frames) || p.GridX <= 0 || p.GridY <= 0 {
		return fmt.Errorf("%w: %dx%d for %d frames", ErrGrid, p.GridX, p.GridY, len(p.Frames))
	}
	rows, cols := p.Rows(), p.Cols()
	top := p.Depth.MaxLevel()
	for i, f := range p.Frames {
		if f.Rows != rows || f.Cols != cols || len(f.Pix) != rows*cols {
			return fmt.Errorf("%w: frame %d is %dx%d, want %dx%d", ErrDims, i, f.Rows, f.Cols, rows, cols)
		}
		for k, v := range f.Pix {
			if v > top {
				return &LevelError{Frame: i, Row: k / cols, Col: k % cols, Value: v, Max: top}
			}
		}
	}
	return nil
}

// Equal compares dimensions, bit depth, frame grid, pixels and stretch.
// Generation is compared by panel size, since G4 and G4.1 share a layout.
func (p *Pattern) Equal(q *Pattern) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.Generation.PanelSize() != q.Generation.PanelSize() || p.Depth != q.Depth ||
		p.PanelRows != q.PanelRows || p.PanelCols != q.PanelCols ||
		p.GridX != q.GridX || p.GridY != q.GridY ||
		len(p.Frames) != len(q.Frames) || len(p.Stretch) != len(q.Stretch) {
		return false
	}
	for i := range p.Frames {
		a, b := p.Frames[i], q.Frames[i]
		if a.Rows != b.Rows || a.Cols != b.Cols || len(a.Pix) != len(b.Pix) {
			return false
		}
		for k := range a.Pix {
			if a.Pix[k] != b.Pix[k] {
				return false
			}
		}
	}
	for i := range p.Stretch {
		if p.Stretch[i] != q.Stretch[i] {
			return false
		}
	}
	return true
}
