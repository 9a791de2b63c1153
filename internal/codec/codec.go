// Package codec turns a pattern.Pattern into the byte stream a panel
// controller reads and back. Each hardware generation has one Codec; a
// Registry dispatches on the pattern's generation when encoding and on the
// leading bytes when decoding.
package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/coreman2200/arenapat/internal/pattern"
)

var (
	ErrLevelRange         = pattern.ErrLevelRange
	ErrTruncated          = errors.New("codec: data shorter than header declares")
	ErrCorrupt            = errors.New("codec: header inconsistent with data")
	ErrChecksum           = errors.New("codec: checksum mismatch")
	ErrUnknownGeneration  = errors.New("codec: no codec for generation")
	ErrHeaderRange        = errors.New("codec: value does not fit header field")
	ErrUnrecognizedFormat = errors.New("codec: unrecognized pattern format")
)

// Header is what a codec can tell about a byte stream without unpacking
// frames. Generation is zero when it cannot be recovered from the data.
type Header struct {
	Generation pattern.Generation
	Depth      pattern.BitDepth
	GridX      int
	GridY      int
	PanelRows  int
	PanelCols  int
	RecordLen  int // bytes per frame, stretch included
}

func (h Header) Frames() int { return h.GridX * h.GridY }

type Codec interface {
	Name() string
	Generations() []pattern.Generation
	// Sniff reports whether b looks like this codec's format.
	Sniff(b []byte) bool
	ReadHeader(b []byte) (Header, error)
	Encode(p *pattern.Pattern) ([]byte, error)
	Decode(b []byte) (*pattern.Pattern, error)
}

// Registry maps generations to codecs. Decode tries codecs in registration
// order, so register formats with a magic number first.
type Registry struct {
	byGen map[pattern.Generation]Codec
	order []Codec
}

func NewRegistry() *Registry { return &Registry{byGen: map[pattern.Generation]Codec{}} }

// Default returns a registry with the G6 and common-layout codecs.
func Default() *Registry {
	r := NewRegistry()
	r.Register(G6Codec{})
	r.Register(CommonCodec{})
	return r
}

func (r *Registry) Register(c Codec) {
	if c == nil {
		return
	}
	for _, g := range c.Generations() {
		r.byGen[g] = c
	}
	r.order = append(r.order, c)
}

func (r *Registry) Get(g pattern.Generation) (Codec, bool) {
	c, ok := r.byGen[g]
	return c, ok
}

// Generations lists every registered generation in ascending order.
func (r *Registry) Generations() []pattern.Generation {
	out := make([]pattern.Generation, 0, len(r.byGen))
	for g := range r.byGen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) Encode(p *pattern.Pattern) ([]byte, error) {
	c, ok := r.byGen[p.Generation]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownGeneration, p.Generation)
	}
	return c.Encode(p)
}

func (r *Registry) sniff(b []byte) (Codec, error) {
	for _, c := range r.order {
		if c.Sniff(b) {
			return c, nil
		}
	}
	return nil, ErrUnrecognizedFormat
}

func (r *Registry) Decode(b []byte) (*pattern.Pattern, error) {
	c, err := r.sniff(b)
	if err != nil {
		return nil, err
	}
	return c.Decode(b)
}

func (r *Registry) ReadHeader(b []byte) (Header, error) {
	c, err := r.sniff(b)
	if err != nil {
		return Header{}, err
	}
	return c.ReadHeader(b)
}
