package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arenapat/internal/codec"
	"github.com/coreman2200/arenapat/internal/diag"
	"github.com/coreman2200/arenapat/internal/pattern"
)

var TestNames = []struct {
	ID   int
	Name string
	Gen  pattern.Generation
	Want string
}{
	{1, "loom", pattern.G4, "pat0001_loom_G4.pat"},
	{42, "reverse_phi_30deg", pattern.G41, "pat0042_reverse_phi_30deg_G41.pat"},
	{9999, "a b", pattern.G6, "pat9999_a-b_G6.pat"},
	{7, "x", pattern.G3, "pat0007_x_G3.pat"},
}

func TestFileNameRoundTrip(t *testing.T) {
	for _, v := range TestNames {
		t.Run(v.Want, func(t *testing.T) {
			fn, err := FileName(v.ID, v.Name, v.Gen)
			require.NoError(t, err)
			assert.Equal(t, v.Want, fn)
			e, err := ParseFileName(filepath.Join("some", "dir", fn))
			require.NoError(t, err)
			assert.Equal(t, v.ID, e.ID)
			assert.Equal(t, v.Gen, e.Generation)
		})
	}
	_, err := FileName(0, "x", pattern.G4)
	assert.ErrorIs(t, err, ErrBadID)
	_, err = FileName(10000, "x", pattern.G4)
	assert.ErrorIs(t, err, ErrBadID)
	_, err = ParseFileName("pattern.pat")
	assert.ErrorIs(t, err, ErrBadName)
	_, err = ParseFileName("pat0001_x_G5.pat")
	assert.ErrorIs(t, err, ErrBadName)
}

func TestNextID(t *testing.T) {
	dir := t.TempDir()
	id, err := NextID(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = NextID(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	for _, n := range []string{"pat0003_a_G4.pat", "pat0012_b_G6.pat", "notes.txt", "pat0099.pat"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pat0500_dir_G4.pat"), 0o755))
	id, err = NextID(dir)
	require.NoError(t, err)
	assert.Equal(t, 13, id)
}

func onePattern(t *testing.T, gen pattern.Generation) *pattern.Pattern {
	t.Helper()
	p := pattern.New(gen, pattern.Gray, 1, 2)
	f := p.NewFrame()
	for i := range f.Pix {
		f.Pix[i] = uint8(i % 16)
	}
	require.NoError(t, p.Append(f, 4))
	return p
}

func TestSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	reg := codec.Default()

	p := onePattern(t, pattern.G41)
	path, err := Save(dir, 0, "grating", p, reg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pat0001_grating_G41.pat"), path)

	q, err := Load(path, reg)
	require.NoError(t, err)
	assert.True(t, p.Equal(q))
	assert.Equal(t, pattern.G41, q.Generation)

	path, err = Save(dir, 0, "g6", onePattern(t, pattern.G6), reg)
	require.NoError(t, err)
	assert.Equal(t, "pat0002_g6_G6.pat", filepath.Base(path))

	entries, err := List(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	bad := onePattern(t, pattern.G4)
	bad.Frames[0].Pix[0] = 16
	_, err = Save(dir, 5, "bad", bad, reg)
	assert.ErrorIs(t, err, codec.ErrLevelRange)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pat0009_junk_G4.pat"), []byte{1, 2, 3}, 0o644))
	_, err = Load(filepath.Join(dir, "pat0009_junk_G4.pat"), reg)
	assert.Error(t, err)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	p := onePattern(t, pattern.G4)
	path, err := Save(dir, 3, "m", p, codec.Default())
	require.NoError(t, err)

	m := NewManifest(path, p)
	m.Diagnostics = append(m.Diagnostics, diag.Diagnostic{Severity: diag.Info, Code: diag.CodeStepAdjusted, Summary: "adjusted"})
	m.Schedule = []float64{0, 0.5}
	m.Source = map[string]any{"type": "grating"}
	require.NoError(t, WriteManifest(path, m))
	assert.Equal(t, filepath.Join(dir, "pat0003_m_G4.yaml"), ManifestPath(path))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Len(t, got.RunID, 36)
	assert.Equal(t, m.RunID, got.RunID)
	assert.True(t, m.Created.Equal(got.Created))
	assert.Equal(t, "G4", got.Generation)
	assert.Equal(t, 1, got.Frames)
	assert.Equal(t, 16, got.Rows)
	assert.Equal(t, m.Diagnostics, got.Diagnostics)
	assert.Equal(t, m.Schedule, got.Schedule)

	id, err := NextID(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}
