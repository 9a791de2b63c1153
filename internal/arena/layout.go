package arena

// Layout describes a rectangular grid of square LED panels.
type Layout struct {
	PanelRows int
	PanelCols int
	PanelSize int // pixels per panel edge
}

func (l Layout) Rows() int { return l.PanelRows * l.PanelSize }
func (l Layout) Cols() int { return l.PanelCols * l.PanelSize }

// Count is the number of pixels in the arena.
func (l Layout) Count() int { return l.Rows() * l.Cols() }

// Valid reports whether every dimension is positive.
func (l Layout) Valid() bool {
	return l.PanelRows > 0 && l.PanelCols > 0 && l.PanelSize > 0
}

// Index maps row,col -> linear pixel index in row-major scan order (0..N-1).
func (l Layout) Index(row, col int) int {
	return row*l.Cols() + col
}

// PanelIndex maps row,col -> panel number (row-major over panels) and the
// pixel offset inside that panel (row-major within the panel).
func (l Layout) PanelIndex(row, col int) (panel, offset int) {
	pr, pc := row/l.PanelSize, col/l.PanelSize
	yy, xx := row%l.PanelSize, col%l.PanelSize
	return pr*l.PanelCols + pc, yy*l.PanelSize + xx
}

// PanelCount is the number of panels in the grid.
func (l Layout) PanelCount() int { return l.PanelRows * l.PanelCols }

// PanelPixels is the number of pixels on a single panel.
func (l Layout) PanelPixels() int { return l.PanelSize * l.PanelSize }
