// Package layout computes deterministic 2D geometry for ladder-diagram
// rungs: one rectangle per sequence element, wire connection points, branch
// bounding boxes, and per-rung heights, all in integer virtual units.
//
// The engine walks a rung's sequence exactly once, left to right. Horizontal
// placement follows a running right-edge cursor per rail; vertical placement
// follows the rail slot assigned by the rung model. Branch geometry is
// tracked by a per-pass registry: open branches form a stack, closed
// branches land in an arena indexed by the rung's dense branch handles, and
// sibling rails are reconciled into non-overlapping vertical bands when
// their group closes.
//
// Layout output is a pure function of (sequence, branch structure, config):
// running the engine twice over an unchanged rung yields identical results.
package layout

import (
	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Engine computes layouts with a fixed config.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine using the given config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// RungHeight returns the total vertical extent a rung occupies: the base
// band, one branch spacing per rail slot, and the comment block.
func (e *Engine) RungHeight(r *rung.Rung) int {
	return e.cfg.RungHeight +
		r.MaxBranchDepth()*e.cfg.BranchSpacing +
		r.CommentLines()*e.cfg.CommentLineHeight
}

// LayoutRoutine lays out every rung of a routine stacked vertically and
// returns the combined result with the scroll extent.
func (e *Engine) LayoutRoutine(rt *rung.Routine) (*RoutineLayout, error) {
	out := &RoutineLayout{Width: e.cfg.FrameWidth}
	y := 0
	for i, r := range rt.Rungs() {
		res, err := e.LayoutRung(r, i, y)
		if err != nil {
			return nil, liberrors.Wrap(liberrors.ErrCodeInvalidRoutine, err, "layout rung %d", i)
		}
		out.Rungs = append(out.Rungs, res)
		y += res.Height + e.cfg.RungGap
	}
	if len(out.Rungs) > 0 {
		out.Height = y - e.cfg.RungGap
	}
	return out, nil
}

// LayoutRung performs a single forward pass over the rung's sequence and
// returns the per-rung layout result. y is the top of the rung's band in
// routine coordinates.
func (e *Engine) LayoutRung(r *rung.Rung, number, y int) (Result, error) {
	cfg := e.cfg
	commentOffset := r.CommentLines() * cfg.CommentLineHeight
	railY := y + commentOffset + cfg.RungHeight/2

	centerY := func(slot int) int { return railY + slot*cfg.BranchSpacing }

	res := Result{
		RungNumber:    number,
		Y:             y,
		Height:        e.RungHeight(r),
		CommentOffset: commentOffset,
		Comment:       r.Comment(),
		RailY:         railY,
		MaxDepth:      r.MaxBranchDepth(),
	}

	// rail frames: one per open branch group, with the main rail at the
	// bottom of the stack. prevRight is the right edge of the last element
	// emitted on the frame's current rail.
	type frame struct {
		railX   int
		prev    int
		first   bool
		slot    int
		deepest int
		widest  int
	}
	stack := []frame{{railX: cfg.RailOffset, first: true}}
	top := func() *frame { return &stack[len(stack)-1] }

	nextX := func(f *frame, gap int) int {
		if f.first {
			return f.railX + cfg.RailInset
		}
		return f.prev + gap
	}

	reg := newRegistry(r.BranchCount())

	for _, el := range r.Sequence() {
		switch el.Kind {
		case rung.KindInstruction:
			f := top()
			w, h := cfg.symbolSize(el.Instruction.Kind())
			x := nextX(f, cfg.ElementSpacing+cfg.MinWireLength)
			res.Elements = append(res.Elements, Element{
				Kind:        el.Kind,
				InstrKind:   el.Instruction.Kind(),
				Rect:        Rect{X: x, Y: centerY(f.slot) - h/2, Width: w, Height: h},
				RungNumber:  number,
				Position:    el.Position,
				BranchID:    el.BranchID,
				BranchLevel: el.BranchLevel,
				Slot:        f.slot,
				Label:       el.Instruction.Label(),
				Source:      el,
			})
			f.prev = x + w
			f.first = false

		case rung.KindBranchStart:
			f := top()
			mb, ok := r.Branch(el.BranchID)
			if !ok {
				return Result{}, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"branch start at %d has no registered branch", el.Position)
			}
			startX := nextX(f, cfg.ElementSpacing)
			gb := &Branch{
				ID:            mb.ID,
				Parent:        mb.Parent,
				Root:          mb.Root,
				Children:      mb.Children,
				IsRail:        false,
				StartPosition: el.Position,
				EndPosition:   mb.EndPosition,
				Level:         mb.Level,
				Slot:          mb.Slot,
				StartX:        startX,
				BranchY:       centerY(mb.Slot),
				StartY:        centerY(mb.Slot) - cfg.RungHeight/2,
			}
			reg.openGroup(gb)
			res.Elements = append(res.Elements, Element{
				Kind:        el.Kind,
				Rect:        markerRect(cfg, startX, centerY(f.slot), centerY(mb.Slot)),
				RungNumber:  number,
				Position:    el.Position,
				BranchID:    el.BranchID,
				BranchLevel: el.BranchLevel,
				Slot:        mb.Slot,
				Source:      el,
			})
			stack = append(stack, frame{
				railX:   startX,
				prev:    startX,
				first:   true,
				slot:    mb.Slot,
				deepest: mb.Slot,
				widest:  startX,
			})

		case rung.KindBranchNext:
			if len(stack) < 2 {
				return Result{}, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"rail marker at %d outside any branch", el.Position)
			}
			f := top()
			mb, ok := r.Branch(el.BranchID)
			if !ok {
				return Result{}, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"rail at %d has no registered branch", el.Position)
			}
			if f.prev > f.widest {
				f.widest = f.prev
			}
			rb := &Branch{
				ID:            mb.ID,
				Parent:        mb.Parent,
				Root:          mb.Root,
				Children:      mb.Children,
				IsRail:        true,
				StartPosition: el.Position,
				EndPosition:   mb.EndPosition,
				Level:         mb.Level,
				Slot:          mb.Slot,
				StartX:        f.railX,
				BranchY:       centerY(mb.Slot),
				StartY:        centerY(mb.Slot) - cfg.RungHeight/2,
			}
			if err := reg.addRail(rb); err != nil {
				return Result{}, err
			}
			res.Elements = append(res.Elements, Element{
				Kind:        el.Kind,
				Rect:        markerRect(cfg, f.railX, centerY(f.slot), centerY(mb.Slot)),
				RungNumber:  number,
				Position:    el.Position,
				BranchID:    el.BranchID,
				BranchLevel: el.BranchLevel,
				Slot:        mb.Slot,
				Source:      el,
			})
			f.slot = mb.Slot
			if mb.Slot > f.deepest {
				f.deepest = mb.Slot
			}
			f.prev = f.railX
			f.first = true

		case rung.KindBranchEnd:
			if len(stack) < 2 {
				return Result{}, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"branch end at %d without matching start", el.Position)
			}
			f := *top()
			stack = stack[:len(stack)-1]
			parent := top()
			if f.prev > f.widest {
				f.widest = f.prev
			}
			endX := f.widest + cfg.ElementSpacing
			endY := centerY(f.deepest) + cfg.RungHeight/2
			gb, err := reg.closeGroup(el.BranchID, el.Position, endX, endY)
			if err != nil {
				return Result{}, err
			}
			res.Elements = append(res.Elements, Element{
				Kind:        el.Kind,
				Rect:        markerRect(cfg, endX, centerY(parent.slot), centerY(f.deepest)),
				RungNumber:  number,
				Position:    el.Position,
				BranchID:    el.BranchID,
				BranchLevel: el.BranchLevel,
				Slot:        gb.Slot,
				Source:      el,
			})
			parent.prev = endX
			parent.first = false
			if f.deepest > parent.deepest {
				parent.deepest = f.deepest
			}
		}
	}

	branches, err := reg.finish()
	if err != nil {
		return Result{}, err
	}
	res.Branches = branches
	return res, nil
}

// markerRect spans a branch wire post between two rail centerlines.
func markerRect(cfg Config, x, fromY, toY int) Rect {
	if toY < fromY {
		fromY, toY = toY, fromY
	}
	return Rect{X: x, Y: fromY, Width: cfg.MarkerWidth, Height: toY - fromY}
}
