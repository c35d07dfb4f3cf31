package layout

import "github.com/ladderworks/ladderkit/pkg/rung"

// Rect is an axis-aligned rectangle in virtual units.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// CenterX returns the horizontal center.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Element is the geometric realization of one rung element for a single
// layout pass. Elements are derived, disposable values: they are always
// regenerable from the rung sequence, the branch catalog, and the engine
// config, and are never a source of truth.
type Element struct {
	Kind      rung.ElementKind
	InstrKind rung.InstructionKind // valid only when Kind == KindInstruction

	Rect Rect

	RungNumber  int
	Position    int
	BranchID    rung.BranchID
	BranchLevel int
	Slot        int // vertical rail slot the element is drawn on

	// Label is the text the renderer places next to the symbol.
	Label string

	// Selected marks the element for highlight rendering.
	Selected bool

	// Source is the rung element this geometry was derived from.
	Source rung.Element
}

// Wire is a synthetic straight segment connecting element edges. Wires are
// recomputed from adjacent elements on every pass and carry no identity.
type Wire struct {
	X1, Y1, X2, Y2 int
}
