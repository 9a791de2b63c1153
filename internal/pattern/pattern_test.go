package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(t *testing.T, gen Generation, depth BitDepth, values ...uint8) *Pattern {
	t.Helper()
	p := New(gen, depth, 1, 2)
	for i, v := range values {
		f := p.NewFrame()
		f.Fill(v)
		require.NoError(t, p.Append(f, uint8(i+1)))
	}
	return p
}

var TestGenerationNames = []struct {
	In     string
	Expect Generation
	Size   int
	Suffix string
}{
	{"G3", G3, 8, "G3"},
	{"g4", G4, 16, "G4"},
	{"G4.1", G41, 16, "G41"},
	{"41", G41, 16, "G41"},
	{" G6 ", G6, 20, "G6"},
}

func TestParseGeneration(t *testing.T) {
	for _, v := range TestGenerationNames {
		t.Run(v.In, func(t *testing.T) {
			g, err := ParseGeneration(v.In)
			require.NoError(t, err)
			assert.Equal(t, v.Expect, g)
			assert.Equal(t, v.Size, g.PanelSize())
			assert.Equal(t, v.Suffix, g.Suffix())
		})
	}
	_, err := ParseGeneration("G5")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestParseBitDepth(t *testing.T) {
	for in, want := range map[int]BitDepth{1: Binary, 2: Binary, 4: Gray, 16: Gray} {
		d, err := ParseBitDepth(in)
		require.NoError(t, err)
		assert.Equal(t, want, d)
	}
	_, err := ParseBitDepth(8)
	assert.ErrorIs(t, err, ErrBitDepth)
	assert.Equal(t, uint8(1), Binary.MaxLevel())
	assert.Equal(t, uint8(15), Gray.MaxLevel())
}

func TestAppendChecksDimensions(t *testing.T) {
	p := New(G4, Gray, 2, 12)
	assert.Equal(t, 32, p.Rows())
	assert.Equal(t, 192, p.Cols())
	err := p.Append(NewFrame(16, 192), 0)
	assert.ErrorIs(t, err, ErrDims)
	require.NoError(t, p.Append(p.NewFrame(), 3))
	assert.Equal(t, 1, p.GridX)
	assert.Equal(t, 1, p.GridY)
}

func TestValidate(t *testing.T) {
	p := filled(t, G3, Binary, 0, 1)
	require.NoError(t, p.Validate())

	p.Frames[1].Set(3, 9, 2)
	err := p.Validate()
	require.ErrorIs(t, err, ErrLevelRange)
	var le *LevelError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, le.Frame)
	assert.Equal(t, 3, le.Row)
	assert.Equal(t, 9, le.Col)

	p = filled(t, G3, Binary, 0, 1)
	p.Stretch = p.Stretch[:1]
	assert.ErrorIs(t, p.Validate(), ErrStretchLen)

	p = filled(t, G3, Binary, 0, 1)
	p.GridX = 3
	assert.ErrorIs(t, p.Validate(), ErrGrid)

	assert.ErrorIs(t, New(G3, Binary, 1, 1).Validate(), ErrEmpty)
	assert.ErrorIs(t, New(Generation(9), Binary, 1, 1).Validate(), ErrGeneration)
	assert.ErrorIs(t, New(G3, BitDepth(3), 1, 1).Validate(), ErrBitDepth)
}

func TestSetGrid(t *testing.T) {
	p := filled(t, G4, Gray, 1, 2, 3, 4, 5, 6)
	require.NoError(t, p.SetGrid(3, 2))
	assert.Equal(t, 3, p.GridX)
	assert.ErrorIs(t, p.SetGrid(4, 2), ErrGrid)
}

func TestEqual(t *testing.T) {
	a := filled(t, G4, Gray, 3, 7)
	b := filled(t, G41, Gray, 3, 7)
	assert.True(t, a.Equal(b))
	b.Frames[0].Pix[5] = 4
	assert.False(t, a.Equal(b))
	c := filled(t, G4, Gray, 3, 7)
	c.Stretch[1] = 99
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(filled(t, G3, Gray, 3, 7)))
}

func TestConcat(t *testing.T) {
	a := filled(t, G4, Gray, 1, 2)
	b := filled(t, G4, Gray, 9)
	c, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []uint8{1, 2, 1}, c.Stretch)
	assert.Equal(t, uint8(9), c.Frames[2].Pix[0])
	assert.Equal(t, 3, c.GridX)

	_, err = Concat(a, filled(t, G4, Binary, 1))
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = Concat()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCombine(t *testing.T) {
	a := filled(t, G3, Binary, 0, 1, 1)
	b := filled(t, G3, Binary, 1, 1, 0)

	or, err := Combine(a, b, OpOr, 0)
	require.NoError(t, err)
	and, err := Combine(a, b, OpAnd, 0)
	require.NoError(t, err)
	xor, err := Combine(a, b, OpXor, 0)
	require.NoError(t, err)
	for i, want := range [][3]uint8{{1, 0, 1}, {1, 1, 0}, {1, 0, 1}} {
		assert.Equal(t, want[0], or.Frames[i].Pix[0], "or frame %d", i)
		assert.Equal(t, want[1], and.Frames[i].Pix[0], "and frame %d", i)
		assert.Equal(t, want[2], xor.Frames[i].Pix[0], "xor frame %d", i)
	}
	assert.Equal(t, a.Stretch, or.Stretch)

	g1 := filled(t, G4, Gray, 0, 15)
	g2 := filled(t, G4, Gray, 10)
	bl, err := Combine(g1, g2, OpBlend, 0.5)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), bl.Frames[0].Pix[0])
	assert.Equal(t, uint8(13), bl.Frames[1].Pix[0])

	_, err = Combine(a, filled(t, G3, Binary, 1, 1), OpOr, 0)
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = Combine(a, b, Op("nand"), 0)
	assert.Error(t, err)
}

func TestBlendEndpoints(t *testing.T) {
	a := Frame{Rows: 1, Cols: 2, Pix: []uint8{2, 4}}
	b := Frame{Rows: 1, Cols: 2, Pix: []uint8{8, 12}}
	dst := NewFrame(1, 2)
	Blend(dst, a, b, 0)
	assert.Equal(t, a.Pix, dst.Pix)
	Blend(dst, a, b, 1)
	assert.Equal(t, b.Pix, dst.Pix)
	Blend(dst, a, b, 0.25)
	assert.Equal(t, []uint8{4, 6}, dst.Pix)
}

func TestStretchEnvelope(t *testing.T) {
	env := StretchEnvelope{Keys: []Keyframe{
		{T: 0, V: 1, Ease: "linear"},
		{T: 4, V: 5},
	}}
	assert.Equal(t, 1.0, env.Eval(-1))
	assert.Equal(t, 3.0, env.Eval(2))
	assert.Equal(t, 5.0, env.Eval(10))
	assert.Equal(t, 0.0, StretchEnvelope{}.Eval(3))

	smooth := StretchEnvelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "smooth"}, {T: 10, V: 10}}}
	assert.InDelta(t, 5.0, smooth.Eval(5), 1e-12)
	assert.Less(t, smooth.Eval(2), 2.0)

	p := filled(t, G4, Gray, 0, 0, 0, 0, 0, 0)
	env.Apply(p)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 5}, p.Stretch)

	big := StretchEnvelope{Keys: []Keyframe{{T: 0, V: -4}, {T: 1, V: 900}}}
	big.Apply(p)
	assert.Equal(t, uint8(0), p.Stretch[0])
	assert.Equal(t, uint8(255), p.Stretch[1])
}
