// Package rung implements the logical sequence model for ladder-diagram
// rungs: ordered, typed elements (instructions and branch markers) with
// positional and branch identity, plus the mutation operations the editor
// applies to them.
//
// # Model
//
// A rung is an ordered sequence of elements. Branches are expressed inline
// with three marker kinds: BranchStart opens a parallel group, BranchNext
// separates sibling rails inside the group, BranchEnd closes it. Every
// successful mutation leaves the sequence with contiguous 0-based positions
// and balanced branch markers; operations that would violate either abort
// without modifying the rung.
//
// # Branch identity
//
// Branches are addressed by dense integer handles (BranchID) into a per-rung
// arena that is rebuilt deterministically from the sequence after every
// mutation. Handles are assigned in discovery order and stay stable until
// the next structural change.
//
// # Usage
//
//	r, err := rung.ParseText("XIC(Start)[XIO(Stop),OTE(Motor)]")
//	if err != nil {
//	    return err
//	}
//	r.InsertInstruction(1, rung.NewInstruction("XIC", "Guard"))
//	fmt.Println(r.Text()) // XIC(Start)XIC(Guard)[XIO(Stop),OTE(Motor)]
package rung

import (
	"strings"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
)

// Rung is one ladder-logic line: an ordered element sequence, an optional
// multi-line comment, and the branch arena derived from the sequence.
//
// The zero value is an empty rung and is ready to use. Rung is not safe for
// concurrent use; the editor session serializes all access.
type Rung struct {
	seq      []Element
	branches []Branch // arena, index = BranchID - 1
	comment  string
	maxDepth int // cached deepest rail slot
}

// New returns an empty rung.
func New() *Rung {
	return &Rung{}
}

// Len returns the number of elements in the sequence.
func (r *Rung) Len() int { return len(r.seq) }

// Sequence returns a copy of the element sequence in execution order.
func (r *Rung) Sequence() []Element {
	out := make([]Element, len(r.seq))
	copy(out, r.seq)
	return out
}

// ElementAt returns the element at the given position.
func (r *Rung) ElementAt(pos int) (Element, error) {
	if pos < 0 || pos >= len(r.seq) {
		return Element{}, liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"position %d outside sequence of %d elements", pos, len(r.seq))
	}
	return r.seq[pos], nil
}

// Comment returns the rung comment, empty if unset.
func (r *Rung) Comment() string { return r.comment }

// SetComment replaces the rung comment.
func (r *Rung) SetComment(c string) { r.comment = c }

// CommentLines returns the number of lines in the comment, 0 if absent.
// The count feeds the layout engine's comment height offset.
func (r *Rung) CommentLines() int {
	if r.comment == "" {
		return 0
	}
	return strings.Count(r.comment, "\n") + 1
}

// Instructions returns the instructions in sequence order.
func (r *Rung) Instructions() []Instruction {
	var out []Instruction
	for _, e := range r.seq {
		if e.Kind == KindInstruction {
			out = append(out, *e.Instruction)
		}
	}
	return out
}

// Branch returns the branch with the given handle.
func (r *Rung) Branch(id BranchID) (Branch, bool) {
	if id < 1 || int(id) > len(r.branches) {
		return Branch{}, false
	}
	return r.branches[id-1], true
}

// Branches returns all branches in discovery order.
func (r *Rung) Branches() []Branch {
	out := make([]Branch, len(r.branches))
	copy(out, r.branches)
	return out
}

// BranchCount returns the number of branches (groups and rails).
func (r *Rung) BranchCount() int { return len(r.branches) }

// HasBranches reports whether the rung contains any branch structure.
func (r *Rung) HasBranches() bool { return len(r.branches) > 0 }

// MaxBranchDepth returns the deepest vertical rail slot used by the rung's
// branch structure. 0 means no branches; a single two-rail branch yields 2.
// The value drives the rung's total height.
func (r *Rung) MaxBranchDepth() int { return r.maxDepth }

// FindMatchingBranchEnd returns the position of the BranchEnd closing the
// BranchStart at start.
func (r *Rung) FindMatchingBranchEnd(start int) (int, error) {
	el, err := r.ElementAt(start)
	if err != nil {
		return 0, err
	}
	if el.Kind != KindBranchStart {
		return 0, liberrors.New(liberrors.ErrCodeInvalidInput,
			"position %d is %s, not a branch start", start, el.Kind)
	}
	b, ok := r.Branch(el.BranchID)
	if !ok {
		return 0, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"branch start at %d has no registered branch", start)
	}
	return b.EndPosition, nil
}

// Validate re-derives the branch structure from the sequence and reports the
// first invariant violation, if any. A healthy rung always validates; a
// failure indicates corruption and is surfaced, never repaired.
func (r *Rung) Validate() error {
	_, _, _, err := reindex(r.seq)
	return err
}

// =============================================================================
// Mutations
//
// All mutations follow the same shape: splice a copy of the sequence, rebuild
// positions and the branch arena, and commit only if every invariant holds.
// On error the rung is left exactly as it was.
// =============================================================================

// InsertInstruction splices an instruction into the sequence at pos,
// shifting every element at or after pos one position right.
// pos may equal Len() to append.
func (r *Rung) InsertInstruction(pos int, ins Instruction) error {
	if pos < 0 || pos > len(r.seq) {
		return liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"insert at %d outside 0..%d", pos, len(r.seq))
	}
	next := splice(r.seq, pos, Element{Kind: KindInstruction, Instruction: &ins})
	return r.commit(next)
}

// RemoveInstruction removes the instruction at pos, shifting subsequent
// positions one left. Branch markers cannot be removed this way; use
// RemoveBranch instead.
func (r *Rung) RemoveInstruction(pos int) error {
	el, err := r.ElementAt(pos)
	if err != nil {
		return err
	}
	if el.Kind != KindInstruction {
		return liberrors.New(liberrors.ErrCodeInvalidInput,
			"position %d is %s; only instructions can be removed here", pos, el.Kind)
	}
	next := remove(r.seq, pos, pos)
	return r.commit(next)
}

// MoveInstruction removes the instruction at from and reinserts it at to,
// where to is interpreted against the sequence after removal.
func (r *Rung) MoveInstruction(from, to int) error {
	el, err := r.ElementAt(from)
	if err != nil {
		return err
	}
	if el.Kind != KindInstruction {
		return liberrors.New(liberrors.ErrCodeInvalidInput,
			"position %d is %s, not an instruction", from, el.Kind)
	}
	if to < 0 || to > len(r.seq)-1 {
		return liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"move target %d outside 0..%d", to, len(r.seq)-1)
	}
	next := remove(r.seq, from, from)
	next = splice(next, to, Element{Kind: KindInstruction, Instruction: el.Instruction})
	return r.commit(next)
}

// InsertBranch wraps the half-open span [start, end) in a new two-rail
// branch group: the wrapped elements become the first rail and an empty
// second rail is added. Returns the new group's handle.
func (r *Rung) InsertBranch(start, end int) (BranchID, error) {
	if start < 0 || end < start || end > len(r.seq) {
		return NoBranch, liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"branch span [%d, %d) outside 0..%d", start, end, len(r.seq))
	}
	next := splice(r.seq, end, Element{Kind: KindBranchNext}, Element{Kind: KindBranchEnd})
	next = splice(next, start, Element{Kind: KindBranchStart})
	if err := r.commit(next); err != nil {
		return NoBranch, err
	}
	// The new group is the branch whose start marker landed at start.
	for _, b := range r.branches {
		if !b.IsRail && b.StartPosition == start {
			return b.ID, nil
		}
	}
	return NoBranch, liberrors.New(liberrors.ErrCodeInternal,
		"inserted branch at %d not found after reindex", start)
}

// InsertBranchLevel adds a new empty rail to the branch whose start or rail
// marker sits at pos. The rail opens after the current rail's content,
// immediately before the next sibling marker or the group's end.
func (r *Rung) InsertBranchLevel(pos int) error {
	el, err := r.ElementAt(pos)
	if err != nil {
		return err
	}
	if el.Kind != KindBranchStart && el.Kind != KindBranchNext {
		return liberrors.New(liberrors.ErrCodeInvalidInput,
			"position %d is %s, not a branch start or rail marker", pos, el.Kind)
	}

	// Scan forward for the end of the current rail at this nesting depth.
	depth := 0
	at := pos + 1
	for ; at < len(r.seq); at++ {
		switch r.seq[at].Kind {
		case KindBranchStart:
			depth++
		case KindBranchEnd:
			if depth == 0 {
				goto found
			}
			depth--
		case KindBranchNext:
			if depth == 0 {
				goto found
			}
		}
	}
	return liberrors.New(liberrors.ErrCodeUnbalancedBranch,
		"no rail or group end after marker at %d", pos)

found:
	next := splice(r.seq, at, Element{Kind: KindBranchNext})
	return r.commit(next)
}

// RemoveBranch removes the branch with the given handle together with every
// descendant element inside its span. Removing a rail deletes the rail's
// marker and content; removing a group deletes the whole group. A group left
// with a single rail afterwards is collapsed back onto its parent rail.
func (r *Rung) RemoveBranch(id BranchID) error {
	b, ok := r.Branch(id)
	if !ok {
		return liberrors.New(liberrors.ErrCodeBranchNotFound, "branch %d not in rung", id)
	}
	if b.StartPosition < 0 || b.EndPosition < b.StartPosition {
		return liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"branch %d has inverted span [%d, %d]", id, b.StartPosition, b.EndPosition)
	}
	next := remove(r.seq, b.StartPosition, b.EndPosition)
	next, err := collapseSingleRailGroups(next)
	if err != nil {
		return err
	}
	return r.commit(next)
}

// commit reindexes next and swaps it in if every invariant holds.
func (r *Rung) commit(next []Element) error {
	seq, branches, depth, err := reindex(next)
	if err != nil {
		return err
	}
	r.seq = seq
	r.branches = branches
	r.maxDepth = depth
	return nil
}

// splice returns a copy of seq with els inserted at pos.
func splice(seq []Element, pos int, els ...Element) []Element {
	out := make([]Element, 0, len(seq)+len(els))
	out = append(out, seq[:pos]...)
	out = append(out, els...)
	out = append(out, seq[pos:]...)
	return out
}

// remove returns a copy of seq without the inclusive span [start, end].
func remove(seq []Element, start, end int) []Element {
	out := make([]Element, 0, len(seq)-(end-start+1))
	out = append(out, seq[:start]...)
	out = append(out, seq[end+1:]...)
	return out
}

// collapseSingleRailGroups drops the start/end markers of branch groups that
// no longer have a sibling rail, repeating until a fixed point. The walk
// relies on reindex for structure, so corruption is still surfaced.
func collapseSingleRailGroups(seq []Element) ([]Element, error) {
	for {
		indexed, branches, _, err := reindex(seq)
		if err != nil {
			return nil, err
		}
		collapsed := false
		for _, b := range branches {
			if b.IsRail {
				continue
			}
			if hasRail(branches, b.ID) {
				continue
			}
			seq = remove(indexed, b.EndPosition, b.EndPosition)
			seq = remove(seq, b.StartPosition, b.StartPosition)
			collapsed = true
			break
		}
		if !collapsed {
			return indexed, nil
		}
	}
}

func hasRail(branches []Branch, group BranchID) bool {
	for _, b := range branches {
		if b.IsRail && b.Parent == group {
			return true
		}
	}
	return false
}

// =============================================================================
// Reindex - single source of truth for positions, levels, and the arena
// =============================================================================

// reindex walks the sequence once, assigning contiguous positions, branch
// levels, branch handles, and rail slots. It returns the first structural
// violation it encounters, leaving the caller's state untouched.
func reindex(in []Element) ([]Element, []Branch, int, error) {
	type frame struct {
		group   BranchID
		rail    BranchID // current rail context; equals group on the first rail
		slot    int      // vertical slot of the current rail
		deepest int      // deepest slot reached by any rail content so far
	}

	seq := make([]Element, len(in))
	copy(seq, in)

	var branches []Branch
	var stack []frame
	maxDepth := 0

	newBranch := func(b Branch) BranchID {
		b.ID = BranchID(len(branches) + 1)
		b.EndPosition = -1
		branches = append(branches, b)
		return b.ID
	}
	top := func() *frame { return &stack[len(stack)-1] }
	context := func() (rail BranchID, root BranchID, slot int) {
		if len(stack) == 0 {
			return NoBranch, NoBranch, 0
		}
		return top().rail, stack[0].group, top().slot
	}

	for pos := range seq {
		el := &seq[pos]
		el.Position = pos

		switch el.Kind {
		case KindInstruction:
			if el.Instruction == nil {
				return nil, nil, 0, liberrors.New(liberrors.ErrCodeInternal,
					"instruction element at %d has no instruction reference", pos)
			}
			rail, root, _ := context()
			el.BranchID = rail
			el.Root = root
			el.BranchLevel = len(stack)

		case KindBranchStart:
			parent, _, slot := context()
			id := newBranch(Branch{
				Parent:        parent,
				StartPosition: pos,
				Level:         len(stack),
				Slot:          slot + 1,
			})
			if parent != NoBranch {
				branches[parent-1].Children = append(branches[parent-1].Children, id)
			}
			el.BranchID = id
			el.BranchLevel = len(stack)
			stack = append(stack, frame{group: id, rail: id, slot: slot + 1, deepest: slot + 1})
			root := stack[0].group
			el.Root = root
			branches[id-1].Root = root
			if slot+1 > maxDepth {
				maxDepth = slot + 1
			}

		case KindBranchNext:
			if len(stack) == 0 {
				return nil, nil, 0, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"rail marker at %d outside any branch", pos)
			}
			f := top()
			// Close out the previous rail's span.
			if f.rail != f.group {
				branches[f.rail-1].EndPosition = pos - 1
			}
			slot := f.deepest + 1
			id := newBranch(Branch{
				Parent:        f.group,
				Root:          stack[0].group,
				StartPosition: pos,
				Level:         len(stack),
				Slot:          slot,
				IsRail:        true,
			})
			branches[f.group-1].Children = append(branches[f.group-1].Children, id)
			f.rail = id
			f.slot = slot
			f.deepest = slot
			el.BranchID = id
			el.Root = stack[0].group
			el.BranchLevel = len(stack)
			if slot > maxDepth {
				maxDepth = slot
			}

		case KindBranchEnd:
			if len(stack) == 0 {
				return nil, nil, 0, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
					"branch end at %d without matching start", pos)
			}
			f := *top()
			stack = stack[:len(stack)-1]
			if f.rail != f.group {
				branches[f.rail-1].EndPosition = pos - 1
			}
			branches[f.group-1].EndPosition = pos
			el.BranchID = f.group
			el.Root = branches[f.group-1].Root
			el.BranchLevel = len(stack)
			if len(stack) > 0 && f.deepest > top().deepest {
				top().deepest = f.deepest
			}

		default:
			return nil, nil, 0, liberrors.New(liberrors.ErrCodeInternal,
				"unknown element kind %d at %d", el.Kind, pos)
		}
	}

	if len(stack) > 0 {
		return nil, nil, 0, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"%d branch start(s) never closed", len(stack))
	}
	return seq, branches, maxDepth, nil
}
