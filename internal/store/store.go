// Package store names, finds and reads/writes encoded pattern files on disk.
// Files follow pat<4-digit id>_<name>_<generation suffix>.pat.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arenapat/internal/codec"
	"github.com/coreman2200/arenapat/internal/pattern"
)

const Ext = ".pat"

var (
	ErrBadName = errors.New("store: not a pattern file name")
	ErrBadID   = errors.New("store: pattern id out of range")
)

var nameRe = regexp.MustCompile(`^pat(\d{4,})_(.*)_(G3|G4|G41|G6)\.pat$`)

// Entry is a parsed pattern file name.
type Entry struct {
	ID         int
	Name       string
	Generation pattern.Generation
}

func sanitize(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, name)
}

// FileName builds the conventional file name for a pattern.
func FileName(id int, name string, gen pattern.Generation) (string, error) {
	if id < 1 || id > 9999 {
		return "", fmt.Errorf("%w: %d", ErrBadID, id)
	}
	if !gen.Valid() {
		return "", fmt.Errorf("%w: %v", pattern.ErrGeneration, gen)
	}
	return fmt.Sprintf("pat%04d_%s_%s%s", id, sanitize(name), gen.Suffix(), Ext), nil
}

// ParseFileName is the inverse of FileName. Directory components are ignored.
func ParseFileName(path string) (Entry, error) {
	m := nameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadName, path)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadName, path)
	}
	gen, err := pattern.ParseGeneration(m[3])
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Name: m[2], Generation: gen}, nil
}

// List returns every pattern file entry in dir keyed by path.
func List(dir string) (map[string]Entry, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := map[string]Entry{}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		ent, err := ParseFileName(e.Name())
		if err != nil {
			continue
		}
		out[filepath.Join(dir, e.Name())] = ent
	}
	return out, nil
}

// NextID is one past the highest id in dir, or 1 when there is none. A
// missing directory counts as empty.
func NextID(dir string) (int, error) {
	ents, err := List(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	top := 0
	for _, e := range ents {
		top = max(top, e.ID)
	}
	return top + 1, nil
}

// Save encodes p and writes it to dir. An id of zero picks NextID.
func Save(dir string, id int, name string, p *pattern.Pattern, reg *codec.Registry) (string, error) {
	if id == 0 {
		var err error
		if id, err = NextID(dir); err != nil {
			return "", err
		}
	}
	fn, err := FileName(id, name, p.Generation)
	if err != nil {
		return "", err
	}
	b, err := reg.Encode(p)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", fn, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fn)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Int("frames", p.Len()).Int("bytes", len(b)).Msg("pattern saved")
	return path, nil
}

// Load reads and decodes a pattern file. When the name carries G4.1 the
// decoded generation is set to match.
func Load(path string, reg *codec.Registry) (*pattern.Pattern, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := reg.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if ent, err := ParseFileName(path); err == nil && ent.Generation == pattern.G41 && p.Generation == pattern.G4 {
		p.Generation = pattern.G41
	}
	return p, nil
}
