// Package diag carries non-fatal findings produced while synthesizing or
// decoding patterns, so callers can show them next to the result.
package diag

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity" yaml:"severity"`
	Code           string         `json:"code" yaml:"code"`
	Summary        string         `json:"summary" yaml:"summary"`
	Detail         string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty" yaml:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty" yaml:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Code, d.Summary)
}

// Codes emitted by this module.
const (
	CodeLargeFinalSize  = "looming.final_size_over_90"
	CodeStepAdjusted    = "reverse_phi.step_adjusted"
	CodePoleMasked      = "pole_correction.masked"
	CodeLevelClamped    = "quantize.level_clamped"
	CodeFrameCountFloor = "looming.frame_count_floor"
)

// List accumulates diagnostics in emission order.
type List []Diagnostic

func (l *List) Add(d Diagnostic) { *l = append(*l, d) }

func (l *List) Infof(code, format string, args ...any) {
	l.Add(Diagnostic{Severity: Info, Code: code, Summary: fmt.Sprintf(format, args...)})
}

func (l *List) Warnf(code, format string, args ...any) {
	l.Add(Diagnostic{Severity: Warn, Code: code, Summary: fmt.Sprintf(format, args...)})
}

// Has reports whether any diagnostic carries code.
func (l List) Has(code string) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Worst returns the highest severity present, or "" for an empty list.
func (l List) Worst() Severity {
	var w Severity
	for _, d := range l {
		switch {
		case d.Severity == Err:
			return Err
		case d.Severity == Warn:
			w = Warn
		case w == "":
			w = d.Severity
		}
	}
	return w
}

// Log writes every diagnostic to logger at the matching level.
func (l List) Log(logger zerolog.Logger) {
	for _, d := range l {
		var ev *zerolog.Event
		switch d.Severity {
		case Err:
			ev = logger.Error()
		case Warn:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev = ev.Str("code", d.Code)
		if d.Detail != "" {
			ev = ev.Str("detail", d.Detail)
		}
		if len(d.Evidence) > 0 {
			ev = ev.Fields(d.Evidence)
		}
		ev.Msg(d.Summary)
	}
}
