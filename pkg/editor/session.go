package editor

import (
	"context"

	"github.com/google/uuid"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Mode is the editor's interaction state. Every pointer event is
// interpreted through the current mode; invalid transitions fall back to
// ModeView instead of leaving the session wedged.
type Mode int

const (
	// ModeView selects and inspects elements.
	ModeView Mode = iota
	// ModeInsertContact drops a pending contact at the next click.
	ModeInsertContact
	// ModeInsertCoil drops a pending coil at the next click.
	ModeInsertCoil
	// ModeInsertBlock drops a pending function block at the next click.
	ModeInsertBlock
	// ModeInsertBranch waits for the opening anchor of a new branch.
	ModeInsertBranch
	// ModeConnectBranch holds an anchor and waits for the closing point.
	ModeConnectBranch
	// ModeDrag moves the selected instruction to the next click.
	ModeDrag
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeInsertContact:
		return "insert-contact"
	case ModeInsertCoil:
		return "insert-coil"
	case ModeInsertBlock:
		return "insert-block"
	case ModeInsertBranch:
		return "insert-branch"
	case ModeConnectBranch:
		return "connect-branch"
	case ModeDrag:
		return "drag"
	default:
		return "unknown"
	}
}

// insertMode maps an instruction category to its interaction mode.
func insertMode(k rung.InstructionKind) Mode {
	switch k {
	case rung.InstrCoil:
		return ModeInsertCoil
	case rung.InstrBlock:
		return ModeInsertBlock
	default:
		return ModeInsertContact
	}
}

// Selection identifies one instruction element in the routine.
type Selection struct {
	Rung     int
	Position int
}

// branchAnchor remembers the opening click of an in-progress branch insert.
type branchAnchor struct {
	rung     int
	position int
}

// Session wires pointer events to controller edits. One session serves one
// interactive surface; everything happens on that surface's event loop.
type Session struct {
	ID   string
	ctrl *Controller

	mode     Mode
	pending  *rung.Instruction
	selected *Selection
	anchor   *branchAnchor
}

// NewSession opens an editing session over a controller.
func NewSession(ctrl *Controller) *Session {
	return &Session{ID: uuid.NewString(), ctrl: ctrl}
}

// Controller exposes the session's controller for direct edits.
func (s *Session) Controller() *Controller { return s.ctrl }

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Selected returns the current selection, or nil.
func (s *Session) Selected() *Selection { return s.selected }

// BeginInsert arms the session to drop an instruction at the next click.
func (s *Session) BeginInsert(ins rung.Instruction) {
	s.pending = &ins
	s.anchor = nil
	s.mode = insertMode(ins.Kind())
}

// BeginInsertBranch arms the session to collect a branch span over the next
// two clicks.
func (s *Session) BeginInsertBranch() {
	s.pending = nil
	s.anchor = nil
	s.mode = ModeInsertBranch
}

// BeginDrag starts moving the current selection. Without a selection the
// session stays in view mode.
func (s *Session) BeginDrag() error {
	if s.selected == nil {
		return liberrors.New(liberrors.ErrCodeInvalidInput, "nothing selected to drag")
	}
	s.mode = ModeDrag
	return nil
}

// Cancel abandons any pending insert, anchor, or drag and returns to view
// mode.
func (s *Session) Cancel() {
	s.pending = nil
	s.anchor = nil
	s.mode = ModeView
}

// Click feeds one pointer event through the mode machine. Recoverable
// errors (a miss, an invalid span) leave the routine untouched; an
// invalid branch close abandons the anchor and returns to view mode.
func (s *Session) Click(ctx context.Context, x, y int) error {
	switch s.mode {
	case ModeView:
		return s.clickSelect(x, y)
	case ModeInsertContact, ModeInsertCoil, ModeInsertBlock:
		return s.clickInsert(ctx, x, y)
	case ModeInsertBranch:
		return s.clickAnchor(x, y)
	case ModeConnectBranch:
		return s.clickConnect(ctx, x, y)
	case ModeDrag:
		return s.clickDrop(ctx, x, y)
	default:
		s.mode = ModeView
		return nil
	}
}

func (s *Session) clickSelect(x, y int) error {
	target, err := layout.Locate(s.ctrl.Layout(), x, y)
	if err != nil {
		s.selected = nil
		return err
	}
	res := s.ctrl.results[target.RungNumber]
	for _, el := range res.Instructions() {
		if el.Rect.Contains(x, y) {
			s.selected = &Selection{Rung: target.RungNumber, Position: el.Position}
			return nil
		}
	}
	s.selected = nil
	return nil
}

func (s *Session) clickInsert(ctx context.Context, x, y int) error {
	if s.pending == nil {
		s.mode = ModeView
		return liberrors.New(liberrors.ErrCodeInternal, "insert mode without a pending instruction")
	}
	err := s.ctrl.InsertInstructionAt(ctx, x, y, *s.pending)
	if err != nil && liberrors.Recoverable(err) {
		// Missed the diagram; stay armed for another try.
		return err
	}
	s.pending = nil
	s.mode = ModeView
	return err
}

func (s *Session) clickAnchor(x, y int) error {
	target, err := layout.Locate(s.ctrl.Layout(), x, y)
	if err != nil {
		return err
	}
	r, err := s.ctrl.routine.Rung(target.RungNumber)
	if err != nil {
		return err
	}
	pos, err := s.ctrl.results[target.RungNumber].FindInsertionPosition(r, target.BranchID, x)
	if err != nil {
		return err
	}
	s.anchor = &branchAnchor{rung: target.RungNumber, position: pos}
	s.mode = ModeConnectBranch
	return nil
}

func (s *Session) clickConnect(ctx context.Context, x, y int) error {
	anchor := s.anchor
	s.anchor = nil
	s.mode = ModeView

	target, err := layout.Locate(s.ctrl.Layout(), x, y)
	if err != nil {
		return err
	}
	if target.RungNumber != anchor.rung {
		return liberrors.New(liberrors.ErrCodeInvalidInsertionPoint,
			"branch must close on rung %d, got rung %d", anchor.rung, target.RungNumber)
	}
	r, err := s.ctrl.routine.Rung(target.RungNumber)
	if err != nil {
		return err
	}
	end, err := s.ctrl.results[target.RungNumber].FindInsertionPosition(r, target.BranchID, x)
	if err != nil {
		return err
	}
	if end <= anchor.position {
		return liberrors.New(liberrors.ErrCodeInvalidInsertionPoint,
			"branch close at %d does not follow its anchor at %d", end, anchor.position)
	}
	return s.ctrl.InsertBranch(ctx, anchor.rung, anchor.position, end)
}

func (s *Session) clickDrop(ctx context.Context, x, y int) error {
	sel := s.selected
	s.mode = ModeView
	if sel == nil {
		return liberrors.New(liberrors.ErrCodeInternal, "drag mode without a selection")
	}

	target, err := layout.Locate(s.ctrl.Layout(), x, y)
	if err != nil {
		return err
	}
	if target.RungNumber != sel.Rung {
		return liberrors.New(liberrors.ErrCodeInvalidInsertionPoint,
			"instruction can only move within rung %d", sel.Rung)
	}
	r, err := s.ctrl.routine.Rung(sel.Rung)
	if err != nil {
		return err
	}
	to, err := s.ctrl.results[sel.Rung].FindInsertionPosition(r, target.BranchID, x)
	if err != nil {
		return err
	}
	if to > sel.Position {
		// Removing the instruction first shifts the target left.
		to--
	}
	if to == sel.Position {
		return nil
	}
	if err := s.ctrl.MoveInstruction(ctx, sel.Rung, sel.Position, to); err != nil {
		return err
	}
	s.selected = &Selection{Rung: sel.Rung, Position: to}
	return nil
}
