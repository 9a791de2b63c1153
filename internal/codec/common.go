package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/coreman2200/arenapat/internal/pattern"
)

const commonHeaderLen = 7

// CommonCodec is the layout shared by G3, G4 and G4.1:
//
//	header  gridX u16 | gridY u16 | depth u8 | panelRows u8 | panelCols u8
//	frame   packed pixels (row-major, LSB first) | stretch u8
//
// The header carries no panel size; Decode infers it from the record
// length, so G4.1 data decodes as G4.
type CommonCodec struct{}

func (CommonCodec) Name() string { return "common" }

func (CommonCodec) Generations() []pattern.Generation {
	return []pattern.Generation{pattern.G3, pattern.G4, pattern.G41}
}

func (CommonCodec) Sniff(b []byte) bool {
	return len(b) >= commonHeaderLen && pattern.BitDepth(b[4]).Valid()
}

func checkHeaderFields(p *pattern.Pattern) error {
	if p.GridX > 0xFFFF || p.GridY > 0xFFFF {
		return fmt.Errorf("%w: frame grid %dx%d", ErrHeaderRange, p.GridX, p.GridY)
	}
	if p.PanelRows > 0xFF || p.PanelCols > 0xFF {
		return fmt.Errorf("%w: panel grid %dx%d", ErrHeaderRange, p.PanelRows, p.PanelCols)
	}
	return nil
}

func (c CommonCodec) Encode(p *pattern.Pattern) ([]byte, error) {
	switch p.Generation {
	case pattern.G3, pattern.G4, pattern.G41:
	default:
		return nil, fmt.Errorf("%w: %v in %s codec", ErrUnknownGeneration, p.Generation, c.Name())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkHeaderFields(p); err != nil {
		return nil, err
	}
	pixLen := packedLen(p.Rows()*p.Cols(), p.Depth)
	rec := pixLen + 1
	out := make([]byte, commonHeaderLen+rec*len(p.Frames))
	binary.LittleEndian.PutUint16(out[0:], uint16(p.GridX))
	binary.LittleEndian.PutUint16(out[2:], uint16(p.GridY))
	out[4] = uint8(p.Depth)
	out[5] = uint8(p.PanelRows)
	out[6] = uint8(p.PanelCols)
	for i, f := range p.Frames {
		r := out[commonHeaderLen+i*rec:]
		pack(r[:pixLen], f.Pix, p.Depth, lsbFirst)
		r[pixLen] = p.Stretch[i]
	}
	return out, nil
}

func (CommonCodec) ReadHeader(b []byte) (Header, error) {
	if len(b) < commonHeaderLen {
		return Header{}, fmt.Errorf("%w: %d of %d header bytes", ErrTruncated, len(b), commonHeaderLen)
	}
	h := Header{
		GridX:     int(binary.LittleEndian.Uint16(b[0:])),
		GridY:     int(binary.LittleEndian.Uint16(b[2:])),
		Depth:     pattern.BitDepth(b[4]),
		PanelRows: int(b[5]),
		PanelCols: int(b[6]),
	}
	if !h.Depth.Valid() {
		return h, fmt.Errorf("%w: bit depth tag %d", ErrCorrupt, b[4])
	}
	if h.Frames() == 0 || h.PanelRows == 0 || h.PanelCols == 0 {
		return h, fmt.Errorf("%w: grid %dx%d panels %dx%d", ErrCorrupt, h.GridX, h.GridY, h.PanelRows, h.PanelCols)
	}
	body := len(b) - commonHeaderLen
	for _, g := range []pattern.Generation{pattern.G3, pattern.G4} {
		rec := packedLen(g.Layout(h.PanelRows, h.PanelCols).Count(), h.Depth) + 1
		if body == rec*h.Frames() {
			h.Generation, h.RecordLen = g, rec
			break
		}
	}
	return h, nil
}

func (c CommonCodec) Decode(b []byte) (*pattern.Pattern, error) {
	h, err := c.ReadHeader(b)
	if err != nil {
		return nil, err
	}
	body := len(b) - commonHeaderLen
	if h.Generation == 0 {
		largest := packedLen(pattern.G4.Layout(h.PanelRows, h.PanelCols).Count(), h.Depth) + 1
		if body < largest*h.Frames() {
			return nil, fmt.Errorf("%w: %d body bytes for %d frames", ErrTruncated, body, h.Frames())
		}
		return nil, fmt.Errorf("%w: %d body bytes for %d frames", ErrCorrupt, body, h.Frames())
	}
	p := pattern.New(h.Generation, h.Depth, h.PanelRows, h.PanelCols)
	pixLen := h.RecordLen - 1
	for i := 0; i < h.Frames(); i++ {
		r := b[commonHeaderLen+i*h.RecordLen:]
		f := p.NewFrame()
		unpack(f.Pix, r[:pixLen], h.Depth, lsbFirst)
		if err := p.Append(f, r[pixLen]); err != nil {
			return nil, err
		}
	}
	if err := p.SetGrid(h.GridX, h.GridY); err != nil {
		return nil, err
	}
	return p, nil
}
