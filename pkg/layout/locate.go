package layout

import (
	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Target is the resolution of a screen coordinate: which rung band it falls
// in and the innermost branch context at that point. BranchID is NoBranch
// and BranchLevel 0 when the point sits on the main rail.
type Target struct {
	RungNumber  int
	BranchID    rung.BranchID
	BranchLevel int
}

// Locate resolves a point in routine coordinates to a rung band and branch
// context. Points outside every rung band return NO_RUNG_AT_COORDINATE;
// within a band, any x is valid and only the vertical region picks the
// branch context.
func Locate(rl *RoutineLayout, x, y int) (Target, error) {
	for _, res := range rl.Rungs {
		if y < res.Y || y >= res.Y+res.Height {
			continue
		}
		id, level := res.ContainingBranch(x, y)
		return Target{RungNumber: res.RungNumber, BranchID: id, BranchLevel: level}, nil
	}
	return Target{}, liberrors.New(liberrors.ErrCodeNoRungAtCoordinate,
		"no rung at (%d, %d)", x, y)
}

// ContainingBranch returns the deepest branch whose bounding box contains
// the point, with the branch level that new content there would get.
// Deepest wins because a nested branch's box always lies inside its
// parent's box.
func (r Result) ContainingBranch(x, y int) (rung.BranchID, int) {
	best := rung.NoBranch
	bestLevel := 0
	for _, b := range r.Branches {
		if !b.Bounds().Contains(x, y) {
			continue
		}
		if best == rung.NoBranch || b.ContentLevel() > bestLevel ||
			(b.ContentLevel() == bestLevel && b.IsRail) {
			best = b.ID
			bestLevel = b.ContentLevel()
		}
	}
	return best, bestLevel
}

// FindInsertionPosition maps an x coordinate to a sequence position for
// inserting a new instruction on the given rail (NoBranch for the main
// rail). The element whose center is horizontally closest decides: drop to
// its left inserts before it, at or right of its center inserts after.
//
// An empty main rail inserts at the front of the sequence; an empty branch
// rail inserts immediately after its opening marker.
func (r Result) FindInsertionPosition(m *rung.Rung, branch rung.BranchID, x int) (int, error) {
	var onRail []Element
	for _, el := range r.Elements {
		if el.Kind == rung.KindInstruction && el.BranchID == branch {
			onRail = append(onRail, el)
		}
	}

	if len(onRail) == 0 {
		if branch == rung.NoBranch {
			return 0, nil
		}
		b, ok := m.Branch(branch)
		if !ok {
			return 0, liberrors.New(liberrors.ErrCodeBranchNotFound,
				"branch %d not found in rung %d", branch, r.RungNumber)
		}
		return b.StartPosition + 1, nil
	}

	best := onRail[0]
	bestDist := absInt(x - best.Rect.CenterX())
	for _, el := range onRail[1:] {
		if d := absInt(x - el.Rect.CenterX()); d < bestDist {
			best, bestDist = el, d
		}
	}
	if x < best.Rect.CenterX() {
		return best.Position, nil
	}
	return best.Position + 1, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
