package editor

import (
	"context"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// ActionType classifies an edit for the undo stack.
type ActionType int

const (
	// ActionEditRung covers every in-place rung mutation: instruction and
	// branch edits, moves, comment changes.
	ActionEditRung ActionType = iota
	// ActionInsertRung records a rung added to the routine.
	ActionInsertRung
	// ActionRemoveRung records a rung deleted from the routine.
	ActionRemoveRung
)

// snapshot captures a rung's full state as its canonical text plus comment.
// Inverse application reparses it, so undo can never resurrect a sequence
// the model would reject.
type snapshot struct {
	text    string
	comment string
}

// Action is one undoable edit with enough data to apply it in either
// direction.
type Action struct {
	Type   ActionType
	Rung   int
	Before snapshot
	After  snapshot
}

const maxHistory = 200

type history struct {
	undo []Action
	redo []Action
}

func (h *history) push(a Action) {
	h.undo = append(h.undo, a)
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	h.redo = h.redo[:0]
}

// CanUndo reports whether an edit is available to roll back.
func (c *Controller) CanUndo() bool { return len(c.history.undo) > 0 }

// CanRedo reports whether a rolled-back edit is available to reapply.
func (c *Controller) CanRedo() bool { return len(c.history.redo) > 0 }

// Undo rolls back the most recent edit.
func (c *Controller) Undo(ctx context.Context) error {
	n := len(c.history.undo)
	if n == 0 {
		return liberrors.New(liberrors.ErrCodeInvalidInput, "nothing to undo")
	}
	a := c.history.undo[n-1]
	c.history.undo = c.history.undo[:n-1]

	var err error
	switch a.Type {
	case ActionEditRung:
		err = c.restoreRung(ctx, a.Rung, a.Before)
	case ActionInsertRung:
		if err = c.routine.RemoveRung(a.Rung); err == nil {
			err = c.refresh(ctx, a.Rung)
		}
	case ActionRemoveRung:
		err = c.reviveRung(ctx, a.Rung, a.Before)
	}
	if err != nil {
		return err
	}
	c.history.redo = append(c.history.redo, a)
	return nil
}

// Redo reapplies the most recently undone edit.
func (c *Controller) Redo(ctx context.Context) error {
	n := len(c.history.redo)
	if n == 0 {
		return liberrors.New(liberrors.ErrCodeInvalidInput, "nothing to redo")
	}
	a := c.history.redo[n-1]
	c.history.redo = c.history.redo[:n-1]

	var err error
	switch a.Type {
	case ActionEditRung:
		err = c.restoreRung(ctx, a.Rung, a.After)
	case ActionInsertRung:
		err = c.reviveRung(ctx, a.Rung, a.After)
	case ActionRemoveRung:
		if err = c.routine.RemoveRung(a.Rung); err == nil {
			err = c.refresh(ctx, a.Rung)
		}
	}
	if err != nil {
		return err
	}
	c.history.undo = append(c.history.undo, a)
	return nil
}

// reviveRung reinserts a rung from a snapshot at its old number.
func (c *Controller) reviveRung(ctx context.Context, number int, s snapshot) error {
	r, err := rung.ParseText(s.text)
	if err != nil {
		return err
	}
	r.SetComment(s.comment)
	if number >= c.routine.Len() {
		c.routine.AddRung(r)
	} else if err := c.routine.InsertRung(number, r); err != nil {
		return err
	}
	return c.refresh(ctx, number)
}

// refresh relayouts from the given rung to the end of the routine,
// clamped to the routine's bounds. Rung insert and remove paths use it
// because they renumber everything below the edit.
func (c *Controller) refresh(ctx context.Context, from int) error {
	if c.routine.Len() == 0 {
		c.results = nil
		c.extent = 0
		return nil
	}
	if from >= c.routine.Len() {
		from = c.routine.Len() - 1
	}
	if from < 0 {
		from = 0
	}
	return c.relayout(ctx, from, true)
}
