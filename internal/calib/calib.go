// Package calib builds calibration patterns for checking scan order, panel
// addressing and gray levels on real hardware.
package calib

import (
	"fmt"

	"github.com/coreman2200/arenapat/internal/arena"
	"github.com/coreman2200/arenapat/internal/pattern"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	PanelSweep Kind = "panel_sweep"
	Levels     Kind = "levels"
)

type Plan struct {
	Kind    Kind
	Stretch uint8
}

// Runner produces a plan's frames one at a time.
type Runner struct {
	plan Plan
	top  uint8
	step int
}

func NewRunner(plan Plan, depth pattern.BitDepth) *Runner {
	return &Runner{plan: plan, top: depth.MaxLevel()}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills pix with the next frame; returns false when complete.
func (r *Runner) Step(l arena.Layout, pix []uint8) bool {
	for i := range pix {
		pix[i] = 0
	}
	switch r.plan.Kind {
	case IndexSweep:
		idx := r.step
		if idx >= l.Count() {
			return false
		}
		pix[idx] = r.top
	case PanelSweep:
		panel := r.step
		if panel >= l.PanelCount() {
			return false
		}
		pr, pc := panel/l.PanelCols, panel%l.PanelCols
		for row := pr * l.PanelSize; row < (pr+1)*l.PanelSize; row++ {
			for col := pc * l.PanelSize; col < (pc+1)*l.PanelSize; col++ {
				pix[l.Index(row, col)] = r.top
			}
		}
	case Levels:
		if r.step > int(r.top) {
			return false
		}
		for i := range pix {
			pix[i] = uint8(r.step)
		}
	default:
		return false
	}
	r.step++
	return true
}

// Build runs plan to completion for the given arena.
func Build(plan Plan, gen pattern.Generation, depth pattern.BitDepth, panelRows, panelCols int) (*pattern.Pattern, error) {
	p := pattern.New(gen, depth, panelRows, panelCols)
	if !p.Layout().Valid() || !depth.Valid() {
		return nil, fmt.Errorf("calib: invalid arena %v %dx%d %v", gen, panelRows, panelCols, depth)
	}
	r := NewRunner(plan, depth)
	l := p.Layout()
	for {
		f := p.NewFrame()
		if !r.Step(l, f.Pix) {
			break
		}
		if err := p.Append(f, plan.Stretch); err != nil {
			return nil, err
		}
	}
	if p.Len() == 0 {
		return nil, fmt.Errorf("calib: plan %q produced no frames", plan.Kind)
	}
	return p, nil
}
