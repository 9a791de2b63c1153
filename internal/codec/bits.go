package codec

import "github.com/coreman2200/arenapat/internal/pattern"

// bit order of pixels inside a byte
type order int

const (
	lsbFirst order = iota
	msbFirst
)

func packedLen(pixels int, d pattern.BitDepth) int {
	return (pixels*d.Bits() + 7) / 8
}

func setbits(b, v, off, mask uint8) uint8 {
	m := mask << off
	return (b &^ m) | ((v << off) & m)
}

func getbits(b, off, mask uint8) uint8 {
	return (b >> off) & mask
}

// slot returns byte index and bit offset of pixel i.
func slot(i, bits int, o order) (int, uint8) {
	per := 8 / bits
	k := i % per
	if o == msbFirst {
		k = per - 1 - k
	}
	return i / per, uint8(k * bits)
}

// pack writes pix into dst, which must hold packedLen bytes. Values above
// the depth's mask are truncated, so callers validate first.
func pack(dst []byte, pix []uint8, d pattern.BitDepth, o order) {
	bits := d.Bits()
	mask := uint8(1<<bits - 1)
	for i := range dst {
		dst[i] = 0
	}
	for i, v := range pix {
		idx, off := slot(i, bits, o)
		dst[idx] = setbits(dst[idx], v, off, mask)
	}
}

func unpack(pix []uint8, src []byte, d pattern.BitDepth, o order) {
	bits := d.Bits()
	mask := uint8(1<<bits - 1)
	for i := range pix {
		idx, off := slot(i, bits, o)
		pix[i] = getbits(src[idx], off, mask)
	}
}
