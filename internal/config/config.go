package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arenapat/internal/arena"
	"github.com/coreman2200/arenapat/internal/calib"
	"github.com/coreman2200/arenapat/internal/pattern"
	"github.com/coreman2200/arenapat/internal/stimulus"
)

type Arena struct {
	Generation     string  `yaml:"generation"` // G3 | G4 | G4.1 | G6
	PanelRows      int     `yaml:"panel_rows"`
	PanelCols      int     `yaml:"panel_cols"`
	CoverageDeg    float64 `yaml:"coverage_deg"`               // azimuth span of the columns
	PixelRadiusDeg float64 `yaml:"pixel_radius_deg,omitempty"` // overrides half the column pitch
	BitDepth       int     `yaml:"bit_depth"`                  // 1|2 binary, 4|16 gray
	Samples        int     `yaml:"samples,omitempty"`          // anti-aliasing samples per pixel
}

// Stimulus is the flat YAML form of stimulus.Params. Angles are degrees.
type Stimulus struct {
	Type string `yaml:"type"`

	PoleAzimuthDeg   float64 `yaml:"pole_azimuth_deg,omitempty"`
	PoleElevationDeg float64 `yaml:"pole_elevation_deg,omitempty"`
	MotionAngleDeg   float64 `yaml:"motion_angle_deg,omitempty"`
	Motion           string  `yaml:"motion,omitempty"`
	Stretch          int     `yaml:"stretch,omitempty"`

	Bright     int `yaml:"bright_level,omitempty"`
	Dark       int `yaml:"dark_level,omitempty"`
	Object     int `yaml:"object_level,omitempty"`
	Background int `yaml:"background_level,omitempty"`
	Dot        int `yaml:"dot_level,omitempty"`
	Off        int `yaml:"off_level,omitempty"`
	On         int `yaml:"on_level,omitempty"`

	InitialSizeDeg float64 `yaml:"initial_size_deg,omitempty"`
	FinalSizeDeg   float64 `yaml:"final_size_deg,omitempty"`
	StepSizeDeg    float64 `yaml:"step_size_deg,omitempty"`
	Profile        string  `yaml:"profile,omitempty"`
	LoverV         float64 `yaml:"l_over_v,omitempty"` // seconds
	Rate           string  `yaml:"rate,omitempty"`     // e.g. 500Hz

	WavelengthDeg  float64 `yaml:"spatial_wavelength_deg,omitempty"`
	Wavelength     float64 `yaml:"spatial_wavelength,omitempty"` // channel units, wins over degrees
	StepSize       float64 `yaml:"step_size,omitempty"`          // channel units, wins over degrees
	Waveform       string  `yaml:"waveform,omitempty"`
	DutyCycle      float64 `yaml:"duty_cycle,omitempty"`
	PoleCorrection bool    `yaml:"pole_correction,omitempty"`
	Edge           bool    `yaml:"edge,omitempty"`
	EdgeFromDeg    float64 `yaml:"edge_from_deg,omitempty"`
	EdgeToDeg      float64 `yaml:"edge_to_deg,omitempty"`

	DotCount     int     `yaml:"dot_count,omitempty"`
	DotRadiusDeg float64 `yaml:"dot_radius_deg,omitempty"`
	Frames       int     `yaml:"frames,omitempty"`
	Seed         int64   `yaml:"seed,omitempty"`
}

type Output struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
	ID   int    `yaml:"id,omitempty"` // 0 picks the next free id
}

type Config struct {
	Arena       Arena                    `yaml:"arena"`
	Stimulus    Stimulus                 `yaml:"stimulus"`
	Calibration calib.Kind               `yaml:"calibration,omitempty"` // replaces the stimulus when set
	Envelope    *pattern.StretchEnvelope `yaml:"stretch_envelope,omitempty"`
	Output      Output                   `yaml:"output"`
	Workers     int                      `yaml:"workers,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func rad(d float64) float64 { return d * math.Pi / 180 }

// Target parses the arena generation and bit depth.
func (a Arena) Target() (pattern.Generation, pattern.BitDepth, error) {
	gen, err := pattern.ParseGeneration(a.Generation)
	if err != nil {
		return 0, 0, err
	}
	depth, err := pattern.ParseBitDepth(a.BitDepth)
	if err != nil {
		return 0, 0, err
	}
	return gen, depth, nil
}

// Geometry builds the cylindrical arena the config describes.
func (a Arena) Geometry() (*arena.Arena, error) {
	gen, err := pattern.ParseGeneration(a.Generation)
	if err != nil {
		return nil, err
	}
	cov := a.CoverageDeg
	if cov == 0 {
		cov = 360
	}
	cyl, err := arena.NewCylinder(gen.Layout(a.PanelRows, a.PanelCols), rad(cov))
	if err != nil {
		return nil, err
	}
	if a.PixelRadiusDeg == 0 {
		return cyl, nil
	}
	return arena.New(cyl.Layout(), cyl.Coordinates(), rad(a.PixelRadiusDeg))
}

// levels converts YAML ints to levels, keeping the first range error.
type levels struct{ err error }

func (l *levels) get(field string, v int) uint8 {
	if v < 0 || v > math.MaxUint8 {
		if l.err == nil {
			l.err = fmt.Errorf("config: %s %d out of range", field, v)
		}
		return 0
	}
	return uint8(v)
}

// Params converts the YAML stimulus into the typed form.
func (s Stimulus) Params() (stimulus.Params, error) {
	kind, err := stimulus.ParseKind(s.Type)
	if err != nil {
		return nil, err
	}
	var lv levels
	common := stimulus.Common{
		Pole:        arena.Direction{Azimuth: rad(s.PoleAzimuthDeg), Elevation: rad(s.PoleElevationDeg)},
		MotionAngle: rad(s.MotionAngleDeg),
		Motion:      stimulus.Motion(s.Motion),
		Stretch:     lv.get("stretch", s.Stretch),
	}
	wavelength := s.Wavelength
	if wavelength == 0 {
		wavelength = rad(s.WavelengthDeg)
	}
	step := s.StepSize
	if step == 0 {
		step = rad(s.StepSizeDeg)
	}

	var p stimulus.Params
	switch kind {
	case stimulus.KindLooming:
		var rate physic.Frequency
		if s.Rate != "" {
			if err := rate.Set(s.Rate); err != nil {
				return nil, fmt.Errorf("config: rate: %w", err)
			}
		}
		p = stimulus.Looming{
			Common:      common,
			InitialSize: rad(s.InitialSizeDeg),
			FinalSize:   rad(s.FinalSizeDeg),
			StepSize:    step,
			Profile:     stimulus.Profile(s.Profile),
			LoverV:      s.LoverV,
			Rate:        rate,
			Object:      lv.get("object_level", s.Object),
			Background:  lv.get("background_level", s.Background),
		}
	case stimulus.KindReversePhi:
		p = stimulus.ReversePhi{
			Common:         common,
			Wavelength:     wavelength,
			StepSize:       step,
			Bright:         lv.get("bright_level", s.Bright),
			Dark:           lv.get("dark_level", s.Dark),
			PoleCorrection: s.PoleCorrection,
		}
	case stimulus.KindGrating:
		p = stimulus.Grating{
			Common:         common,
			Wavelength:     wavelength,
			StepSize:       step,
			Waveform:       stimulus.Waveform(s.Waveform),
			DutyCycle:      s.DutyCycle,
			Bright:         lv.get("bright_level", s.Bright),
			Dark:           lv.get("dark_level", s.Dark),
			PoleCorrection: s.PoleCorrection,
			Edge:           s.Edge || strings.EqualFold(strings.TrimSpace(s.Type), "edge"),
			EdgeFrom:       rad(s.EdgeFromDeg),
			EdgeTo:         rad(s.EdgeToDeg),
		}
	case stimulus.KindStarfield:
		p = stimulus.Starfield{
			Common:     common,
			DotCount:   s.DotCount,
			DotRadius:  rad(s.DotRadiusDeg),
			StepSize:   step,
			Frames:     s.Frames,
			Seed:       s.Seed,
			Dot:        lv.get("dot_level", s.Dot),
			Background: lv.get("background_level", s.Background),
		}
	case stimulus.KindOffOn:
		p = stimulus.OffOn{
			Off:     lv.get("off_level", s.Off),
			On:      lv.get("on_level", s.On),
			Stretch: common.Stretch,
		}
	default:
		return nil, fmt.Errorf("%w: %q", stimulus.ErrUnknownStimulus, s.Type)
	}
	if lv.err != nil {
		return nil, lv.err
	}
	return p, nil
}
