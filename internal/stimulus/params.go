package stimulus

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arenapat/internal/arena"
)

var (
	ErrMissingField    = errors.New("stimulus: missing required field")
	ErrInvalidOrder    = errors.New("stimulus: invalid ordering")
	ErrInvalidValue    = errors.New("stimulus: invalid value")
	ErrUnknownStimulus = errors.New("stimulus: unknown stimulus type")
)

// ParamError names the stimulus and field that failed validation.
type ParamError struct {
	Stimulus Kind
	Field    string
	Reason   string
	Err      error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("stimulus %s: %s: %s", e.Stimulus, e.Field, e.Reason)
}

func (e *ParamError) Unwrap() error { return e.Err }

func missing(k Kind, field string) error {
	return &ParamError{Stimulus: k, Field: field, Reason: "required", Err: ErrMissingField}
}

func invalid(k Kind, field, format string, args ...any) error {
	return &ParamError{Stimulus: k, Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}

type Kind string

const (
	KindGrating    Kind = "grating"
	KindStarfield  Kind = "starfield"
	KindLooming    Kind = "looming"
	KindReversePhi Kind = "reverse_phi"
	KindOffOn      Kind = "off_on"
)

// ParseKind accepts the canonical names plus "edge" for a grating edge.
func ParseKind(s string) (Kind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.ReplaceAll(k, "-", "_")
	switch Kind(k) {
	case KindGrating, KindStarfield, KindLooming, KindReversePhi, KindOffOn:
		return Kind(k), nil
	case "edge":
		return KindGrating, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStimulus, s)
}

// Params is one stimulus description. The concrete types in this package are
// the only implementations.
type Params interface {
	Kind() Kind
	validate(top uint8) error
}

// Motion selects the coordinate channel a stimulus varies along.
type Motion string

const (
	Rotation    Motion = "rotation"
	Expansion   Motion = "expansion"
	Translation Motion = "translation"
)

func (m Motion) valid() bool {
	return m == Rotation || m == Expansion || m == Translation
}

// Common holds the orientation shared by spatially organized stimuli.
// Angles are radians.
type Common struct {
	Pole        arena.Direction
	MotionAngle float64
	Motion      Motion
	Stretch     uint8
}

func (c Common) validate(k Kind) error {
	if c.Motion == "" {
		return missing(k, "motion")
	}
	if !c.Motion.valid() {
		return invalid(k, "motion", "unknown motion type %q", c.Motion)
	}
	switch {
	case !finite(c.Pole.Azimuth):
		return invalid(k, "pole_azimuth", "not finite")
	case !finite(c.Pole.Elevation):
		return invalid(k, "pole_elevation", "not finite")
	case !finite(c.MotionAngle):
		return invalid(k, "motion_angle", "not finite")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func checkLevel(k Kind, field string, v, top uint8) error {
	if v > top {
		return invalid(k, field, "level %d exceeds %d", v, top)
	}
	return nil
}

type Waveform string

const (
	Square Waveform = "square"
	Sine   Waveform = "sine"
)

// Grating is a drifting periodic grating, or a single edge swept across the
// channel when Edge is set.
type Grating struct {
	Common
	Wavelength     float64 // channel units
	StepSize       float64
	Waveform       Waveform
	DutyCycle      float64 // square only; 0 means 0.5
	Bright, Dark   uint8
	PoleCorrection bool

	Edge             bool
	EdgeFrom, EdgeTo float64 // channel range; defaults to the full channel for rotation and expansion
}

func (Grating) Kind() Kind { return KindGrating }

func (g Grating) validate(top uint8) error {
	k := g.Kind()
	if err := g.Common.validate(k); err != nil {
		return err
	}
	if err := checkLevel(k, "bright_level", g.Bright, top); err != nil {
		return err
	}
	if err := checkLevel(k, "dark_level", g.Dark, top); err != nil {
		return err
	}
	if g.StepSize == 0 {
		return missing(k, "step_size")
	}
	if !(g.StepSize > 0) || !finite(g.StepSize) {
		return invalid(k, "step_size", "must be positive")
	}
	if g.Edge {
		from, to, ok := g.edgeRange()
		if !ok {
			return missing(k, "edge_to")
		}
		if !(from < to) {
			return &ParamError{Stimulus: k, Field: "edge_to", Reason: fmt.Sprintf("edge_from %g must be below edge_to %g", from, to), Err: ErrInvalidOrder}
		}
		return nil
	}
	if g.Wavelength == 0 {
		return missing(k, "spatial_wavelength")
	}
	if !(g.Wavelength > 0) || !finite(g.Wavelength) {
		return invalid(k, "spatial_wavelength", "must be positive")
	}
	switch g.Waveform {
	case "", Square, Sine:
	default:
		return invalid(k, "waveform", "unknown waveform %q", g.Waveform)
	}
	if g.DutyCycle < 0 || g.DutyCycle >= 1 {
		return invalid(k, "duty_cycle", "must be in (0,1)")
	}
	return nil
}

func (g Grating) edgeRange() (from, to float64, ok bool) {
	if g.EdgeFrom != 0 || g.EdgeTo != 0 {
		return g.EdgeFrom, g.EdgeTo, true
	}
	switch g.Motion {
	case Rotation:
		return -math.Pi, math.Pi, true
	case Expansion:
		return 0, math.Pi, true
	}
	return 0, 0, false
}

// Starfield is a field of round dots moving together.
type Starfield struct {
	Common
	DotCount        int
	DotRadius       float64
	StepSize        float64
	Frames          int
	Seed            int64
	Dot, Background uint8
}

func (Starfield) Kind() Kind { return KindStarfield }

func (s Starfield) validate(top uint8) error {
	k := s.Kind()
	if err := s.Common.validate(k); err != nil {
		return err
	}
	if err := checkLevel(k, "dot_level", s.Dot, top); err != nil {
		return err
	}
	if err := checkLevel(k, "background_level", s.Background, top); err != nil {
		return err
	}
	switch {
	case s.DotCount == 0:
		return missing(k, "dot_count")
	case s.DotCount < 0:
		return invalid(k, "dot_count", "must be positive")
	case s.DotRadius == 0:
		return missing(k, "dot_radius")
	case !(s.DotRadius > 0) || s.DotRadius > math.Pi:
		return invalid(k, "dot_radius", "must be in (0,π]")
	case s.Frames == 0:
		return missing(k, "frames")
	case s.Frames < 0:
		return invalid(k, "frames", "must be positive")
	case !finite(s.StepSize):
		return invalid(k, "step_size", "not finite")
	}
	return nil
}

type Profile string

const (
	Constant    Profile = "constant"
	Exponential Profile = "exponential"
)

// Looming is a disc centered on the pole whose angular radius grows from
// InitialSize to FinalSize.
type Looming struct {
	Common
	InitialSize, FinalSize float64
	StepSize               float64 // constant profile; 0 means one degree per frame
	Profile                Profile
	LoverV                 float64          // exponential profile, seconds
	Rate                   physic.Frequency // exponential profile; 0 means 60 frames
	Object, Background     uint8
}

func (Looming) Kind() Kind { return KindLooming }

func (l Looming) validate(top uint8) error {
	k := l.Kind()
	if l.Motion == "" {
		l.Motion = Expansion
	}
	if err := l.Common.validate(k); err != nil {
		return err
	}
	if err := checkLevel(k, "object_level", l.Object, top); err != nil {
		return err
	}
	if err := checkLevel(k, "background_level", l.Background, top); err != nil {
		return err
	}
	if l.FinalSize == 0 && l.InitialSize == 0 {
		return missing(k, "final_size")
	}
	if !finite(l.InitialSize) || l.InitialSize < 0 {
		return invalid(k, "initial_size", "must be a non-negative angle")
	}
	if !finite(l.FinalSize) || l.FinalSize > math.Pi {
		return invalid(k, "final_size", "must not exceed π")
	}
	if !(l.InitialSize < l.FinalSize) {
		return &ParamError{Stimulus: k, Field: "initial_size",
			Reason: fmt.Sprintf("initial_size %g must be below final_size %g", l.InitialSize, l.FinalSize),
			Err:    ErrInvalidOrder}
	}
	if l.StepSize < 0 || !finite(l.StepSize) {
		return invalid(k, "step_size", "must be positive")
	}
	switch l.Profile {
	case "", Constant:
	case Exponential:
		if l.InitialSize == 0 {
			return invalid(k, "initial_size", "must be positive for the exponential profile")
		}
		if l.LoverV == 0 {
			return missing(k, "l_over_v")
		}
		if !(l.LoverV > 0) || !finite(l.LoverV) {
			return invalid(k, "l_over_v", "must be positive")
		}
		if l.Rate < 0 {
			return invalid(k, "rate", "must be positive")
		}
	default:
		return invalid(k, "profile", "unknown profile %q", l.Profile)
	}
	return nil
}

// ReversePhi is a 50% duty square grating whose contrast inverts on every
// frame while it steps forward.
type ReversePhi struct {
	Common
	Wavelength     float64
	StepSize       float64
	Bright, Dark   uint8
	PoleCorrection bool
}

func (ReversePhi) Kind() Kind { return KindReversePhi }

func (r ReversePhi) validate(top uint8) error {
	k := r.Kind()
	if err := r.Common.validate(k); err != nil {
		return err
	}
	if err := checkLevel(k, "bright_level", r.Bright, top); err != nil {
		return err
	}
	if err := checkLevel(k, "dark_level", r.Dark, top); err != nil {
		return err
	}
	switch {
	case r.Wavelength == 0:
		return missing(k, "spatial_wavelength")
	case !(r.Wavelength > 0) || !finite(r.Wavelength):
		return invalid(k, "spatial_wavelength", "must be positive")
	case r.StepSize == 0:
		return missing(k, "step_size")
	case !(r.StepSize > 0) || !finite(r.StepSize):
		return invalid(k, "step_size", "must be positive")
	}
	return nil
}

// OffOn is a two-frame full-field step from Off to On.
type OffOn struct {
	Off, On uint8
	Stretch uint8
}

func (OffOn) Kind() Kind { return KindOffOn }

func (o OffOn) validate(top uint8) error {
	if err := checkLevel(o.Kind(), "off_level", o.Off, top); err != nil {
		return err
	}
	return checkLevel(o.Kind(), "on_level", o.On, top)
}
