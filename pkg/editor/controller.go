// Package editor is the mutation and invalidation controller that sits
// between interactive surfaces (TUI, HTTP preview) and the rung model. It
// owns a routine, keeps one cached layout per rung, and after every edit
// relayouts only the touched rung, rippling position shifts to the rungs
// below through a work queue until the extent stabilizes.
//
// All controller state is confined to a single goroutine; interactive
// callers serialize edits through their event loop.
package editor

import (
	"context"
	"time"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/observability"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Controller applies structural edits to a routine and keeps the cached
// layout consistent.
type Controller struct {
	routine *rung.Routine
	engine  *layout.Engine
	results []layout.Result
	extent  int
	history history
}

// NewController lays out the routine once and returns a controller over it.
func NewController(rt *rung.Routine, engine *layout.Engine) (*Controller, error) {
	c := &Controller{routine: rt, engine: engine}
	if err := c.layoutAll(); err != nil {
		return nil, err
	}
	return c, nil
}

// Routine returns the routine under edit.
func (c *Controller) Routine() *rung.Routine { return c.routine }

// Layout returns the current cached layout of the whole routine.
func (c *Controller) Layout() *layout.RoutineLayout {
	out := &layout.RoutineLayout{
		Rungs:  c.results,
		Width:  c.engine.Config().FrameWidth,
		Height: c.extent,
	}
	return out
}

// RungLayout returns the cached layout of one rung.
func (c *Controller) RungLayout(number int) (layout.Result, error) {
	if number < 0 || number >= len(c.results) {
		return layout.Result{}, liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"rung %d out of range [0, %d)", number, len(c.results))
	}
	return c.results[number], nil
}

func (c *Controller) layoutAll() error {
	rl, err := c.engine.LayoutRoutine(c.routine)
	if err != nil {
		return err
	}
	c.results = rl.Rungs
	c.extent = rl.Height
	return nil
}

// invalidate relayouts the given rung in place and, when its height
// changed, works through the queue of following rungs shifting their y
// offsets until the routine extent reaches a fixed point. The queue
// replaces recursion so a tall routine cannot blow the stack.
//
// The fixed point is only valid for in-place edits: the rung at each
// number is the same rung, so an unchanged offset means an unchanged
// result. Rung insertion and removal go through relayout with
// structural set instead.
func (c *Controller) invalidate(ctx context.Context, number int) error {
	return c.relayout(ctx, number, false)
}

// relayout is the cascade worker. With structural set, every rung after
// number is re-laid regardless of whether its offsets moved: after a
// rung is inserted or removed, a following number holds a different
// rung, so its cached result is stale even when the heights coincide.
func (c *Controller) relayout(ctx context.Context, number int, structural bool) error {
	queue := []int{number}
	shifted := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if i >= c.routine.Len() {
			continue
		}
		r, err := c.routine.Rung(i)
		if err != nil {
			return err
		}

		y := 0
		if i > 0 {
			prev := c.results[i-1]
			y = prev.Y + prev.Height + c.engine.Config().RungGap
		}

		start := time.Now()
		res, err := c.engine.LayoutRung(r, i, y)
		if err != nil {
			return err
		}
		observability.Editor().OnRelayout(ctx, i, res.Height, time.Since(start))

		moved := i >= len(c.results) ||
			c.results[i].Y != res.Y || c.results[i].Height != res.Height
		if i < len(c.results) {
			c.results[i] = res
		} else {
			c.results = append(c.results, res)
		}
		if (moved || structural) && i+1 < c.routine.Len() {
			queue = append(queue, i+1)
			shifted++
		}
	}
	if shifted > 0 {
		observability.Editor().OnCascade(ctx, number, shifted)
	}

	c.results = c.results[:c.routine.Len()]
	c.extent = 0
	if n := len(c.results); n > 0 {
		last := c.results[n-1]
		c.extent = last.Y + last.Height
	}
	return nil
}

// mutateRung runs a structural edit against one rung, records the inverse
// for undo, and refreshes the cached layout.
func (c *Controller) mutateRung(ctx context.Context, op string, number int, fn func(*rung.Rung) error) error {
	r, err := c.routine.Rung(number)
	if err != nil {
		observability.Editor().OnMutation(ctx, op, number, err)
		return err
	}
	before := snapshot{text: r.Text(), comment: r.Comment()}
	if err := fn(r); err != nil {
		observability.Editor().OnMutation(ctx, op, number, err)
		return err
	}
	c.history.push(Action{
		Type:   ActionEditRung,
		Rung:   number,
		Before: before,
		After:  snapshot{text: r.Text(), comment: r.Comment()},
	})
	observability.Editor().OnMutation(ctx, op, number, nil)
	return c.invalidate(ctx, number)
}

// InsertInstruction inserts an instruction at a sequence position.
func (c *Controller) InsertInstruction(ctx context.Context, number, pos int, ins rung.Instruction) error {
	return c.mutateRung(ctx, "insert_instruction", number, func(r *rung.Rung) error {
		return r.InsertInstruction(pos, ins)
	})
}

// InsertInstructionAt inserts an instruction where a pointer drop landed:
// the coordinate picks the rung, rail, and neighbor-relative position.
// Drops left of the left power rail are rejected as a recoverable no-op.
func (c *Controller) InsertInstructionAt(ctx context.Context, x, y int, ins rung.Instruction) error {
	if rail := c.engine.Config().RailOffset; x < rail {
		err := liberrors.New(liberrors.ErrCodeInvalidInsertionPoint,
			"drop at x=%d is left of the power rail at x=%d", x, rail)
		observability.Editor().OnMutation(ctx, "insert_instruction_at", -1, err)
		return err
	}
	target, err := layout.Locate(c.Layout(), x, y)
	if err != nil {
		observability.Editor().OnMutation(ctx, "insert_instruction_at", -1, err)
		return err
	}
	r, err := c.routine.Rung(target.RungNumber)
	if err != nil {
		return err
	}
	pos, err := c.results[target.RungNumber].FindInsertionPosition(r, target.BranchID, x)
	if err != nil {
		observability.Editor().OnMutation(ctx, "insert_instruction_at", target.RungNumber, err)
		return err
	}
	return c.InsertInstruction(ctx, target.RungNumber, pos, ins)
}

// RemoveInstruction removes the instruction at a sequence position.
func (c *Controller) RemoveInstruction(ctx context.Context, number, pos int) error {
	return c.mutateRung(ctx, "remove_instruction", number, func(r *rung.Rung) error {
		return r.RemoveInstruction(pos)
	})
}

// MoveInstruction moves an instruction between sequence positions.
func (c *Controller) MoveInstruction(ctx context.Context, number, from, to int) error {
	return c.mutateRung(ctx, "move_instruction", number, func(r *rung.Rung) error {
		return r.MoveInstruction(from, to)
	})
}

// InsertBranch wraps [start, end) of a rung in a new two-rail branch.
// start must precede end on the same rung; a reversed or empty span is a
// recoverable input error, not corruption.
func (c *Controller) InsertBranch(ctx context.Context, number, start, end int) error {
	if start >= end {
		err := liberrors.New(liberrors.ErrCodeInvalidInsertionPoint,
			"branch span [%d, %d) is empty or reversed", start, end)
		observability.Editor().OnMutation(ctx, "insert_branch", number, err)
		return err
	}
	return c.mutateRung(ctx, "insert_branch", number, func(r *rung.Rung) error {
		_, err := r.InsertBranch(start, end)
		return err
	})
}

// InsertBranchLevel adds a sibling rail to the branch whose marker sits at
// pos.
func (c *Controller) InsertBranchLevel(ctx context.Context, number, pos int) error {
	return c.mutateRung(ctx, "insert_branch_level", number, func(r *rung.Rung) error {
		return r.InsertBranchLevel(pos)
	})
}

// RemoveBranch deletes a branch rail or a whole branch group.
func (c *Controller) RemoveBranch(ctx context.Context, number int, id rung.BranchID) error {
	return c.mutateRung(ctx, "remove_branch", number, func(r *rung.Rung) error {
		return r.RemoveBranch(id)
	})
}

// SetComment replaces a rung's comment text.
func (c *Controller) SetComment(ctx context.Context, number int, comment string) error {
	return c.mutateRung(ctx, "set_comment", number, func(r *rung.Rung) error {
		r.SetComment(comment)
		return nil
	})
}

// AddRung appends a rung parsed from text and returns its number.
func (c *Controller) AddRung(ctx context.Context, text string) (int, error) {
	r, err := rung.ParseText(text)
	if err != nil {
		observability.Editor().OnMutation(ctx, "add_rung", c.routine.Len(), err)
		return 0, err
	}
	number := c.routine.AddRung(r)
	c.history.push(Action{
		Type:  ActionInsertRung,
		Rung:  number,
		After: snapshot{text: r.Text(), comment: r.Comment()},
	})
	observability.Editor().OnMutation(ctx, "add_rung", number, nil)
	return number, c.invalidate(ctx, number)
}

// RemoveRung deletes a rung and shifts the ones below it up.
func (c *Controller) RemoveRung(ctx context.Context, number int) error {
	r, err := c.routine.Rung(number)
	if err != nil {
		observability.Editor().OnMutation(ctx, "remove_rung", number, err)
		return err
	}
	before := snapshot{text: r.Text(), comment: r.Comment()}
	if err := c.routine.RemoveRung(number); err != nil {
		observability.Editor().OnMutation(ctx, "remove_rung", number, err)
		return err
	}
	c.history.push(Action{Type: ActionRemoveRung, Rung: number, Before: before})
	observability.Editor().OnMutation(ctx, "remove_rung", number, nil)
	return c.refresh(ctx, number)
}

// restoreRung replaces a rung's content from a snapshot without recording
// history; undo and redo drive it.
func (c *Controller) restoreRung(ctx context.Context, number int, s snapshot) error {
	restored, err := rung.ParseText(s.text)
	if err != nil {
		return err
	}
	restored.SetComment(s.comment)
	if err := c.routine.RemoveRung(number); err != nil {
		return err
	}
	if err := c.routine.InsertRung(number, restored); err != nil {
		return err
	}
	return c.invalidate(ctx, number)
}
