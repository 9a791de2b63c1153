package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/coreman2200/arenapat/internal/pattern"
)

const (
	g6Magic     = "G6PT"
	g6Version   = 1
	g6HeaderLen = 12
	g6CRCLen    = 4
)

// G6Codec writes panel-major frames:
//
//	header  "G6PT" | version u8 | depth u8 | gridX u16 | gridY u16 | panelRows u8 | panelCols u8
//	frame   stretch u8 | panel 0 | panel 1 | ...   (panels row-major, pixels MSB first)
//	trailer CRC-32 IEEE of everything before it, u32
type G6Codec struct{}

func (G6Codec) Name() string { return "g6" }

func (G6Codec) Generations() []pattern.Generation { return []pattern.Generation{pattern.G6} }

func (G6Codec) Sniff(b []byte) bool {
	return len(b) >= len(g6Magic) && string(b[:len(g6Magic)]) == g6Magic
}

func g6RecordLen(d pattern.BitDepth, panels int) int {
	size := pattern.G6.PanelSize()
	return 1 + panels*packedLen(size*size, d)
}

func (c G6Codec) Encode(p *pattern.Pattern) ([]byte, error) {
	if p.Generation != pattern.G6 {
		return nil, fmt.Errorf("%w: %v in %s codec", ErrUnknownGeneration, p.Generation, c.Name())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkHeaderFields(p); err != nil {
		return nil, err
	}
	l := p.Layout()
	size := l.PanelSize
	panelLen := packedLen(size*size, p.Depth)
	rec := g6RecordLen(p.Depth, l.PanelCount())

	var buf bytes.Buffer
	buf.Grow(g6HeaderLen + rec*len(p.Frames) + g6CRCLen)
	buf.WriteString(g6Magic)
	buf.WriteByte(g6Version)
	buf.WriteByte(uint8(p.Depth))
	binary.Write(&buf, binary.LittleEndian, uint16(p.GridX))
	binary.Write(&buf, binary.LittleEndian, uint16(p.GridY))
	buf.WriteByte(uint8(p.PanelRows))
	buf.WriteByte(uint8(p.PanelCols))

	panel := make([]uint8, size*size)
	packed := make([]byte, panelLen)
	for i, f := range p.Frames {
		buf.WriteByte(p.Stretch[i])
		for pr := 0; pr < p.PanelRows; pr++ {
			for pc := 0; pc < p.PanelCols; pc++ {
				for r := 0; r < size; r++ {
					copy(panel[r*size:(r+1)*size], f.Pix[l.Index(pr*size+r, pc*size):])
				}
				pack(packed, panel, p.Depth, msbFirst)
				buf.Write(packed)
			}
		}
	}
	binary.Write(&buf, binary.LittleEndian, crc32.ChecksumIEEE(buf.Bytes()))
	return buf.Bytes(), nil
}

func (G6Codec) ReadHeader(b []byte) (Header, error) {
	if len(b) < g6HeaderLen {
		return Header{}, fmt.Errorf("%w: %d of %d header bytes", ErrTruncated, len(b), g6HeaderLen)
	}
	if string(b[:len(g6Magic)]) != g6Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, b[:len(g6Magic)])
	}
	if b[4] != g6Version {
		return Header{}, fmt.Errorf("%w: version %d", ErrCorrupt, b[4])
	}
	h := Header{
		Generation: pattern.G6,
		Depth:      pattern.BitDepth(b[5]),
		GridX:      int(binary.LittleEndian.Uint16(b[6:])),
		GridY:      int(binary.LittleEndian.Uint16(b[8:])),
		PanelRows:  int(b[10]),
		PanelCols:  int(b[11]),
	}
	if !h.Depth.Valid() {
		return h, fmt.Errorf("%w: bit depth tag %d", ErrCorrupt, b[5])
	}
	if h.Frames() == 0 || h.PanelRows == 0 || h.PanelCols == 0 {
		return h, fmt.Errorf("%w: grid %dx%d panels %dx%d", ErrCorrupt, h.GridX, h.GridY, h.PanelRows, h.PanelCols)
	}
	h.RecordLen = g6RecordLen(h.Depth, h.PanelRows*h.PanelCols)
	return h, nil
}

func (c G6Codec) Decode(b []byte) (*pattern.Pattern, error) {
	h, err := c.ReadHeader(b)
	if err != nil {
		return nil, err
	}
	want := g6HeaderLen + h.RecordLen*h.Frames() + g6CRCLen
	switch {
	case len(b) < want:
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(b), want)
	case len(b) > want:
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(b)-want)
	}
	sum := binary.LittleEndian.Uint32(b[want-g6CRCLen:])
	if got := crc32.ChecksumIEEE(b[:want-g6CRCLen]); got != sum {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, sum, got)
	}

	p := pattern.New(pattern.G6, h.Depth, h.PanelRows, h.PanelCols)
	l := p.Layout()
	size := l.PanelSize
	panelLen := packedLen(size*size, h.Depth)
	panel := make([]uint8, size*size)
	for i := 0; i < h.Frames(); i++ {
		r := b[g6HeaderLen+i*h.RecordLen:]
		stretch := r[0]
		r = r[1:]
		f := p.NewFrame()
		for pr := 0; pr < h.PanelRows; pr++ {
			for pc := 0; pc < h.PanelCols; pc++ {
				unpack(panel, r[:panelLen], h.Depth, msbFirst)
				r = r[panelLen:]
				for row := 0; row < size; row++ {
					copy(f.Pix[l.Index(pr*size+row, pc*size):], panel[row*size:(row+1)*size])
				}
			}
		}
		if err := p.Append(f, stretch); err != nil {
			return nil, err
		}
	}
	if err := p.SetGrid(h.GridX, h.GridY); err != nil {
		return nil, err
	}
	return p, nil
}
