package layout

import (
	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Branch is the geometric record of one branch structure for a layout pass:
// the model's structural facts plus the bounds the engine computed. The
// registry arena is indexed by the dense BranchID handles assigned by the
// rung, so parent and child lookups cannot miss.
type Branch struct {
	ID       rung.BranchID
	Parent   rung.BranchID
	Root     rung.BranchID
	Children []rung.BranchID
	IsRail   bool

	StartPosition int
	EndPosition   int
	Level         int
	Slot          int

	// StartX and EndX are the x coordinates of the branch's vertical wire
	// posts. BranchY is the centerline of the branch's own rail. StartY
	// and EndY bound the vertical region the branch occupies; EndY is
	// finalized during child reconciliation when the parent closes.
	StartX, EndX int
	BranchY      int
	StartY, EndY int
}

// Bounds returns the branch's bounding rectangle.
func (b Branch) Bounds() Rect {
	return Rect{X: b.StartX, Y: b.StartY, Width: b.EndX - b.StartX, Height: b.EndY - b.StartY}
}

// ContentLevel is the BranchLevel of elements laid out on this branch's
// rail: one deeper than a group's opening marker, the marker's own level
// for sibling rails.
func (b Branch) ContentLevel() int {
	if b.IsRail {
		return b.Level
	}
	return b.Level + 1
}

// registry tracks branch state during a single left-to-right walk of one
// rung: a stack of currently open branch groups plus the arena of finished
// branches. A fresh registry is built for every pass; nothing survives a
// relayout.
type registry struct {
	open  []rung.BranchID
	arena []*Branch // index = BranchID - 1
}

func newRegistry(branchCount int) *registry {
	return &registry{arena: make([]*Branch, branchCount)}
}

// openGroup pushes a new open-branch context for a BranchStart.
func (g *registry) openGroup(b *Branch) {
	g.arena[b.ID-1] = b
	g.open = append(g.open, b.ID)
}

// addRail records a sibling rail under the innermost open group.
func (g *registry) addRail(b *Branch) error {
	if len(g.open) == 0 {
		return liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"rail at position %d outside any open branch", b.StartPosition)
	}
	parent := g.top()
	if b.Parent != parent.ID {
		return liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"rail %d claims parent %d but branch %d is open", b.ID, b.Parent, parent.ID)
	}
	g.arena[b.ID-1] = b
	return nil
}

// closeGroup pops the innermost open context, checks it against the closing
// marker's id, and reconciles the children's vertical bounds: every sibling
// rail's bottom is trimmed to just above the next sibling's rail line, and
// the last one keeps the parent's full extent.
//
// A mismatched or missing context is structural corruption. It is surfaced
// as UNBALANCED_BRANCH and never repaired.
func (g *registry) closeGroup(id rung.BranchID, endPos, endX, endY int) (*Branch, error) {
	if len(g.open) == 0 {
		return nil, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"branch end at position %d with no open branch", endPos)
	}
	b := g.top()
	g.open = g.open[:len(g.open)-1]
	if b.ID != id {
		return nil, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"branch end %d closed while branch %d was open", id, b.ID)
	}

	b.EndPosition = endPos
	b.EndX = endX
	b.EndY = endY

	rails := g.rails(b)
	for i, rail := range rails {
		rail.EndX = endX
		if i+1 < len(rails) {
			rail.EndY = rails[i+1].BranchY - 1
		} else {
			rail.EndY = endY
		}
	}
	return b, nil
}

// branch returns the arena entry for a handle.
func (g *registry) branch(id rung.BranchID) (*Branch, bool) {
	if id < 1 || int(id) > len(g.arena) || g.arena[id-1] == nil {
		return nil, false
	}
	return g.arena[id-1], true
}

// rails returns the sibling rails of a group in discovery order.
func (g *registry) rails(b *Branch) []*Branch {
	var out []*Branch
	for _, id := range b.Children {
		if c, ok := g.branch(id); ok && c.IsRail {
			out = append(out, c)
		}
	}
	return out
}

func (g *registry) top() *Branch {
	return g.arena[g.open[len(g.open)-1]-1]
}

// finish verifies the walk consumed every BranchEnd and returns the closed
// catalog as values in handle order.
func (g *registry) finish() ([]Branch, error) {
	if len(g.open) != 0 {
		return nil, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
			"%d branch(es) still open at end of rung", len(g.open))
	}
	out := make([]Branch, len(g.arena))
	for i, b := range g.arena {
		if b == nil {
			return nil, liberrors.New(liberrors.ErrCodeUnbalancedBranch,
				"branch handle %d never seen during walk", i+1)
		}
		out[i] = *b
	}
	return out, nil
}
