package layout

import (
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Result is the complete layout of one rung. Every field is derived; the
// rung model stays the single source of structural truth and a Result is
// discarded and rebuilt whenever its rung mutates.
type Result struct {
	RungNumber    int
	Y             int // top of the rung band in routine coordinates
	Height        int
	CommentOffset int // vertical space reserved above the rail for the comment
	Comment       string
	RailY         int // centerline of the main rail
	MaxDepth      int

	Elements []Element
	Branches []Branch // indexed by BranchID - 1
}

// RoutineLayout stacks the per-rung results of a whole routine.
type RoutineLayout struct {
	Rungs  []Result
	Width  int
	Height int // total scroll extent
}

// Branch looks up a branch record by handle.
func (r Result) Branch(id rung.BranchID) (Branch, bool) {
	if id < 1 || int(id) > len(r.Branches) {
		return Branch{}, false
	}
	return r.Branches[id-1], true
}

// Instructions returns only the instruction elements, in sequence order.
func (r Result) Instructions() []Element {
	var out []Element
	for _, el := range r.Elements {
		if el.Kind == rung.KindInstruction {
			out = append(out, el)
		}
	}
	return out
}

// ElementAt returns the laid-out element for a sequence position.
func (r Result) ElementAt(pos int) (Element, bool) {
	for _, el := range r.Elements {
		if el.Position == pos {
			return el, true
		}
	}
	return Element{}, false
}

// Wires derives the horizontal rail wires and vertical branch posts that
// connect the rung's elements. cfg must be the config the rung was laid
// out with.
func (r Result) Wires(cfg Config) []Wire {
	var wires []Wire

	// Horizontal stretches: group instruction elements by the rail they
	// sit on, then connect rail start, element gaps, and rail end.
	type rail struct {
		startX, endX, y int
		elems           []Element
	}
	rails := map[rung.BranchID]*rail{
		rung.NoBranch: {startX: cfg.RailOffset, endX: cfg.FrameWidth - cfg.RailOffset, y: r.RailY},
	}
	order := []rung.BranchID{rung.NoBranch}
	for _, b := range r.Branches {
		rails[b.ID] = &rail{startX: b.StartX, endX: b.EndX, y: b.BranchY}
		order = append(order, b.ID)
	}
	for _, el := range r.Elements {
		if el.Kind != rung.KindInstruction {
			continue
		}
		if rl, ok := rails[el.BranchID]; ok {
			rl.elems = append(rl.elems, el)
		}
	}

	for _, id := range order {
		rl := rails[id]
		x := rl.startX
		for _, el := range rl.elems {
			if el.Rect.X > x {
				wires = append(wires, Wire{X1: x, Y1: rl.y, X2: el.Rect.X, Y2: rl.y})
			}
			x = el.Rect.Right()
		}
		if rl.endX > x {
			wires = append(wires, Wire{X1: x, Y1: rl.y, X2: rl.endX, Y2: rl.y})
		}
	}

	// Vertical posts: one pair per branch group spanning from the parent
	// rail line down to the group's deepest rail, plus the short drop to
	// each sibling rail (covered by spanning to the last rail's line).
	for _, b := range r.Branches {
		if b.IsRail {
			continue
		}
		parentY := r.RailY
		if p, ok := r.Branch(b.Parent); ok {
			parentY = p.BranchY
		}
		bottom := b.BranchY
		for _, cid := range b.Children {
			if c, ok := r.Branch(cid); ok && c.IsRail && c.BranchY > bottom {
				bottom = c.BranchY
			}
		}
		wires = append(wires,
			Wire{X1: b.StartX, Y1: parentY, X2: b.StartX, Y2: bottom},
			Wire{X1: b.EndX, Y1: parentY, X2: b.EndX, Y2: bottom},
		)
	}
	return wires
}
