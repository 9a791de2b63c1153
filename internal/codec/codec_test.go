package codec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arenapat/internal/pattern"
)

func randomPattern(t *testing.T, gen pattern.Generation, depth pattern.BitDepth, pr, pc, frames int) *pattern.Pattern {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(gen)*100 + int64(depth)))
	p := pattern.New(gen, depth, pr, pc)
	for i := 0; i < frames; i++ {
		f := p.NewFrame()
		for k := range f.Pix {
			f.Pix[k] = uint8(rng.Intn(int(depth)))
		}
		require.NoError(t, p.Append(f, uint8(rng.Intn(256))))
	}
	return p
}

var TestRoundTrips = []struct {
	Name   string
	Gen    pattern.Generation
	Depth  pattern.BitDepth
	PR, PC int
	Frames int
}{
	{"g3 binary", pattern.G3, pattern.Binary, 4, 12, 5},
	{"g3 gray", pattern.G3, pattern.Gray, 1, 3, 2},
	{"g4 binary", pattern.G4, pattern.Binary, 2, 12, 3},
	{"g4 gray", pattern.G4, pattern.Gray, 3, 1, 4},
	{"g4.1 gray", pattern.G41, pattern.Gray, 2, 2, 2},
	{"g6 binary", pattern.G6, pattern.Binary, 2, 3, 3},
	{"g6 gray", pattern.G6, pattern.Gray, 1, 2, 6},
}

func TestRoundTrip(t *testing.T) {
	reg := Default()
	for _, v := range TestRoundTrips {
		t.Run(v.Name, func(t *testing.T) {
			p := randomPattern(t, v.Gen, v.Depth, v.PR, v.PC, v.Frames)
			if v.Frames%2 == 0 {
				require.NoError(t, p.SetGrid(v.Frames/2, 2))
			}
			b, err := reg.Encode(p)
			require.NoError(t, err)
			q, err := reg.Decode(b)
			require.NoError(t, err)
			assert.True(t, p.Equal(q), "decoded pattern differs")
			assert.Equal(t, p.GridX, q.GridX)
			assert.Equal(t, p.GridY, q.GridY)
		})
	}
}

func TestG41DecodesAsG4(t *testing.T) {
	reg := Default()
	p := randomPattern(t, pattern.G41, pattern.Binary, 1, 2, 2)
	b41, err := reg.Encode(p)
	require.NoError(t, err)
	p.Generation = pattern.G4
	b4, err := reg.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, b4, b41)
	q, err := reg.Decode(b41)
	require.NoError(t, err)
	assert.Equal(t, pattern.G4, q.Generation)
}

func TestBitDepthClamping(t *testing.T) {
	reg := Default()

	gray := pattern.New(pattern.G4, pattern.Gray, 1, 1)
	f := gray.NewFrame()
	f.Fill(15)
	require.NoError(t, gray.Append(f, 1))
	_, err := reg.Encode(gray)
	assert.NoError(t, err)

	bin := pattern.New(pattern.G4, pattern.Binary, 1, 1)
	f = bin.NewFrame()
	for i := range f.Pix {
		f.Pix[i] = uint8(i % 2)
	}
	require.NoError(t, bin.Append(f, 1))
	_, err = reg.Encode(bin)
	assert.NoError(t, err)

	f.Set(4, 7, 2)
	_, err = reg.Encode(bin)
	require.ErrorIs(t, err, ErrLevelRange)
	var le *pattern.LevelError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 4, le.Row)
	assert.Equal(t, 7, le.Col)

	g6 := pattern.New(pattern.G6, pattern.Binary, 1, 1)
	f = g6.NewFrame()
	f.Fill(3)
	require.NoError(t, g6.Append(f, 0))
	_, err = reg.Encode(g6)
	assert.ErrorIs(t, err, ErrLevelRange)
}

func TestHeaderFidelity(t *testing.T) {
	reg := Default()
	p := randomPattern(t, pattern.G4, pattern.Gray, 2, 12, 3)
	b, err := reg.Encode(p)
	require.NoError(t, err)

	h, err := reg.ReadHeader(b[:commonHeaderLen])
	require.NoError(t, err)
	assert.Equal(t, 2, h.PanelRows)
	assert.Equal(t, 12, h.PanelCols)
	assert.Equal(t, 3, h.GridX)
	assert.Equal(t, 1, h.GridY)
	assert.Equal(t, pattern.Gray, h.Depth)
	assert.Equal(t, pattern.Generation(0), h.Generation)

	q, err := reg.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 2, q.PanelRows)
	assert.Equal(t, 12, q.PanelCols)
	assert.Equal(t, 32, q.Rows())
	assert.Equal(t, 192, q.Cols())
}

func TestCommonByteLayout(t *testing.T) {
	p := pattern.New(pattern.G3, pattern.Binary, 1, 1)
	f := p.NewFrame()
	f.Set(0, 0, 1)
	f.Set(1, 1, 1) // pixel 9
	require.NoError(t, p.Append(f, 7))
	b, err := CommonCodec{}.Encode(p)
	require.NoError(t, err)
	require.Len(t, b, commonHeaderLen+8+1)
	assert.Equal(t, []byte{1, 0, 1, 0, 2, 1, 1}, b[:commonHeaderLen])
	assert.Equal(t, byte(0x01), b[7])
	assert.Equal(t, byte(0x02), b[8])
	assert.Equal(t, byte(7), b[len(b)-1])

	g := pattern.New(pattern.G3, pattern.Gray, 1, 1)
	f = g.NewFrame()
	f.Pix[0], f.Pix[1] = 3, 12
	require.NoError(t, g.Append(f, 0))
	b, err = CommonCodec{}.Encode(g)
	require.NoError(t, err)
	require.Len(t, b, commonHeaderLen+32+1)
	assert.Equal(t, byte(16), b[4])
	assert.Equal(t, byte(0xC3), b[7])
}

func TestG6ByteLayout(t *testing.T) {
	p := pattern.New(pattern.G6, pattern.Binary, 2, 2)
	f := p.NewFrame()
	f.Set(0, 0, 1)
	f.Set(20, 0, 1) // first pixel of panel 2
	require.NoError(t, p.Append(f, 9))
	b, err := G6Codec{}.Encode(p)
	require.NoError(t, err)
	panelLen := 400 / 8
	require.Len(t, b, g6HeaderLen+1+4*panelLen+g6CRCLen)
	assert.Equal(t, "G6PT", string(b[:4]))
	assert.Equal(t, byte(1), b[4])
	assert.Equal(t, byte(2), b[5])
	assert.Equal(t, byte(9), b[g6HeaderLen])
	body := b[g6HeaderLen+1:]
	assert.Equal(t, byte(0x80), body[0])
	assert.Equal(t, byte(0x00), body[panelLen])
	assert.Equal(t, byte(0x80), body[2*panelLen])
}

func TestDecodeRejectsBadData(t *testing.T) {
	reg := Default()
	common, err := reg.Encode(randomPattern(t, pattern.G4, pattern.Binary, 1, 2, 3))
	require.NoError(t, err)
	g6, err := reg.Encode(randomPattern(t, pattern.G6, pattern.Gray, 1, 1, 2))
	require.NoError(t, err)

	clone := func(b []byte) []byte { return append([]byte(nil), b...) }

	_, err = reg.Decode(common[:len(common)-1])
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = reg.Decode(append(clone(common), 0))
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = CommonCodec{}.Decode(common[:5])
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = G6Codec{}.Decode(g6[:8])
	assert.ErrorIs(t, err, ErrTruncated)

	bad := clone(common)
	bad[0], bad[1] = 0, 0
	_, err = reg.Decode(bad)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = reg.Decode(g6[:len(g6)-10])
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = reg.Decode(append(clone(g6), 1, 2))
	assert.ErrorIs(t, err, ErrCorrupt)

	flipped := clone(g6)
	flipped[g6HeaderLen+3] ^= 0xFF
	_, err = reg.Decode(flipped)
	assert.ErrorIs(t, err, ErrChecksum)

	version := clone(g6)
	version[4] = 9
	_, err = reg.Decode(version)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = reg.Decode([]byte("not a pattern"))
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(CommonCodec{})
	reg.Register(nil)
	assert.Equal(t, []pattern.Generation{pattern.G3, pattern.G4, pattern.G41}, reg.Generations())

	_, err := reg.Encode(randomPattern(t, pattern.G6, pattern.Binary, 1, 1, 1))
	assert.ErrorIs(t, err, ErrUnknownGeneration)

	c, ok := Default().Get(pattern.G6)
	require.True(t, ok)
	assert.Equal(t, "g6", c.Name())

	_, err = CommonCodec{}.Encode(randomPattern(t, pattern.G6, pattern.Binary, 1, 1, 1))
	assert.ErrorIs(t, err, ErrUnknownGeneration)
}

func TestHeaderRange(t *testing.T) {
	p := randomPattern(t, pattern.G3, pattern.Binary, 1, 300, 1)
	_, err := Default().Encode(p)
	assert.ErrorIs(t, err, ErrHeaderRange)
}
