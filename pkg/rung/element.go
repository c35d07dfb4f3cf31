package rung

// ElementKind distinguishes the four element types that can appear in a
// rung's logical sequence.
type ElementKind int

const (
	// KindInstruction is a PLC instruction (contact, coil, or block).
	KindInstruction ElementKind = iota
	// KindBranchStart opens a parallel branch.
	KindBranchStart
	// KindBranchNext separates sibling rails within an open branch.
	KindBranchNext
	// KindBranchEnd closes the innermost open branch.
	KindBranchEnd
)

// String returns the lowercase name of the element kind.
func (k ElementKind) String() string {
	switch k {
	case KindInstruction:
		return "instruction"
	case KindBranchStart:
		return "branch_start"
	case KindBranchNext:
		return "branch_next"
	case KindBranchEnd:
		return "branch_end"
	}
	return "unknown"
}

// BranchID is a dense integer handle into a rung's branch arena.
// The zero value means "no branch" (the element sits on the main rail).
// Valid handles start at 1 and are assigned in sequence discovery order;
// they remain stable until the next structural mutation of the rung.
type BranchID int

// NoBranch is the BranchID of the main rail.
const NoBranch BranchID = 0

// Element is one entry in a rung's ordered sequence. Elements are value
// types; the rung owns the sequence and hands out copies.
//
// Position is the 0-based ordinal within the rung and is always contiguous:
// after any successful mutation, positions form 0..n-1 with no gaps or
// duplicates.
type Element struct {
	Kind     ElementKind
	Position int

	// BranchID is the branch this element belongs to, opens, or closes.
	// NoBranch for main-rail elements.
	BranchID BranchID

	// Root is the outermost branch of the nesting chain enclosing this
	// element, or NoBranch outside any branch.
	Root BranchID

	// BranchLevel counts the enclosing unterminated branch starts at this
	// element's position. Main-rail elements and top-level BranchStart
	// markers are at level 0; everything strictly inside a branch is at
	// the start's level plus one.
	BranchLevel int

	// Instruction is set only for KindInstruction elements.
	Instruction *Instruction
}

// IsMarker reports whether the element is a branch structure marker rather
// than an instruction.
func (e Element) IsMarker() bool { return e.Kind != KindInstruction }

// Branch describes one branch structure in a rung. A branch is created by a
// BranchStart marker (a branch group) or by a BranchNext marker (a sibling
// rail inside a group). Rails are children of their group; nested groups are
// children of the rail they sit on.
type Branch struct {
	ID       BranchID
	Parent   BranchID   // enclosing branch, NoBranch for top-level groups
	Root     BranchID   // outermost group of the nesting chain (self for top-level groups)
	Children []BranchID // child branches in discovery order

	// StartPosition is the sequence position of the opening marker.
	// EndPosition is the closing marker for groups, or the last position
	// belonging to the rail for BranchNext rails.
	StartPosition int
	EndPosition   int

	// Level is the nesting depth of the opening marker, while Slot is
	// the vertical rail index used for drawing:
	// the first rail of a group sits one slot below its parent rail and
	// every sibling rail opens below the deepest slot its predecessor
	// reached.
	Level int
	Slot  int

	// IsRail is true for BranchNext rails, false for branch groups.
	IsRail bool
}

// Contains reports whether pos lies strictly inside the branch span.
func (b Branch) Contains(pos int) bool {
	return pos > b.StartPosition && pos < b.EndPosition
}
