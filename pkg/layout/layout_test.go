package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

func mustRung(t *testing.T, text string) *rung.Rung {
	t.Helper()
	r, err := rung.ParseText(text)
	if err != nil {
		t.Fatalf("ParseText(%q) error: %v", text, err)
	}
	return r
}

func mustLayout(t *testing.T, e *Engine, r *rung.Rung) Result {
	t.Helper()
	res, err := e.LayoutRung(r, 0, 0)
	if err != nil {
		t.Fatalf("LayoutRung() error: %v", err)
	}
	return res
}

func TestLayoutRung_MainRail(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	r := mustRung(t, "XIC(Start)XIC(Guard)OTE(Motor)")

	res := mustLayout(t, e, r)

	if res.Height != cfg.RungHeight {
		t.Errorf("Height = %d, want %d", res.Height, cfg.RungHeight)
	}
	if res.RailY != cfg.RungHeight/2 {
		t.Errorf("RailY = %d, want %d", res.RailY, cfg.RungHeight/2)
	}

	elems := res.Instructions()
	if len(elems) != 3 {
		t.Fatalf("got %d instruction elements, want 3", len(elems))
	}

	// First element starts just inside the left rail; each following one
	// sits a spacing plus a minimum wire past the previous right edge.
	wantX := cfg.RailOffset + cfg.RailInset
	for i, el := range elems {
		if el.Rect.X != wantX {
			t.Errorf("element %d x = %d, want %d", i, el.Rect.X, wantX)
		}
		if el.Rect.CenterY() != res.RailY {
			t.Errorf("element %d centerY = %d, want rail %d", i, el.Rect.CenterY(), res.RailY)
		}
		wantX = el.Rect.Right() + cfg.ElementSpacing + cfg.MinWireLength
	}
}

func TestLayoutRung_SimpleBranchGeometry(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	r := mustRung(t, "XIC(A)[XIC(B),XIO(C)]OTE(D)")

	res := mustLayout(t, e, r)

	if res.MaxDepth != 2 {
		t.Fatalf("MaxDepth = %d, want 2", res.MaxDepth)
	}
	if want := cfg.RungHeight + 2*cfg.BranchSpacing; res.Height != want {
		t.Errorf("Height = %d, want %d", res.Height, want)
	}

	group, ok := res.Branch(1)
	if !ok || group.IsRail {
		t.Fatalf("branch 1 = %+v, want the group record", group)
	}
	rail, ok := res.Branch(2)
	if !ok || !rail.IsRail {
		t.Fatalf("branch 2 = %+v, want the sibling rail", rail)
	}

	// The group's first rail runs one spacing below the main rail, the
	// sibling one further down, and both share the group's wire posts.
	if group.BranchY != res.RailY+cfg.BranchSpacing {
		t.Errorf("group rail y = %d, want %d", group.BranchY, res.RailY+cfg.BranchSpacing)
	}
	if rail.BranchY != res.RailY+2*cfg.BranchSpacing {
		t.Errorf("sibling rail y = %d, want %d", rail.BranchY, res.RailY+2*cfg.BranchSpacing)
	}
	if rail.StartX != group.StartX || rail.EndX != group.EndX {
		t.Errorf("rail posts [%d, %d] differ from group posts [%d, %d]",
			rail.StartX, rail.EndX, group.StartX, group.EndX)
	}
	if group.EndX <= group.StartX {
		t.Errorf("group posts [%d, %d] not left-to-right", group.StartX, group.EndX)
	}

	// Branched contacts are drawn on their own rail lines.
	for _, el := range res.Instructions() {
		switch el.Label {
		case "B":
			if el.Rect.CenterY() != group.BranchY {
				t.Errorf("B centerY = %d, want %d", el.Rect.CenterY(), group.BranchY)
			}
		case "C":
			if el.Rect.CenterY() != rail.BranchY {
				t.Errorf("C centerY = %d, want %d", el.Rect.CenterY(), rail.BranchY)
			}
		case "D":
			if el.Rect.X <= group.EndX {
				t.Errorf("D x = %d, want right of closing post %d", el.Rect.X, group.EndX)
			}
			if el.Rect.CenterY() != res.RailY {
				t.Errorf("D centerY = %d, want back on main rail %d", el.Rect.CenterY(), res.RailY)
			}
		}
	}
}

func TestLayoutRung_SiblingRailsDoNotOverlap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := mustRung(t, "XIC(A)[[XIO(B),XIO(C)],XIO(D)]OTE(E)")

	res := mustLayout(t, e, r)

	// The outer group's sibling rail must clear everything the nested
	// branch occupies, and reconciled rail bands must not intersect.
	var outer, outerRail Branch
	for _, b := range res.Branches {
		if b.Parent == rung.NoBranch && !b.IsRail {
			outer = b
		}
	}
	for _, cid := range outer.Children {
		if c, ok := res.Branch(cid); ok && c.IsRail {
			outerRail = c
		}
	}
	if outerRail.ID == rung.NoBranch {
		t.Fatal("outer group has no sibling rail")
	}
	for _, b := range res.Branches {
		if b.ID == outer.ID || b.ID == outerRail.ID || b.Root != outer.ID {
			continue
		}
		if b.EndY >= outerRail.BranchY {
			t.Errorf("branch %d band ends at %d, overlapping sibling rail at %d",
				b.ID, b.EndY, outerRail.BranchY)
		}
	}
}

func TestLayoutRung_Idempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := mustRung(t, "XIC(A)[XIC(B),XIO(C)[ONS(F),]]OTE(D)")

	first := mustLayout(t, e, r)
	second := mustLayout(t, e, r)
	if !reflect.DeepEqual(first, second) {
		t.Error("two passes over an unchanged rung produced different layouts")
	}
}

func TestLayoutRung_CommentShiftsRailOnly(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)

	bare := mustRung(t, "XIC(A)OTE(B)")
	commented := mustRung(t, "XIC(A)OTE(B)")
	commented.SetComment("start interlock\nchecked by maintenance")

	a := mustLayout(t, e, bare)
	b := mustLayout(t, e, commented)

	delta := 2 * cfg.CommentLineHeight
	if b.Height != a.Height+delta {
		t.Errorf("Height = %d, want %d", b.Height, a.Height+delta)
	}
	if b.RailY != a.RailY+delta {
		t.Errorf("RailY = %d, want %d", b.RailY, a.RailY+delta)
	}
	for i, el := range b.Instructions() {
		want := a.Instructions()[i].Rect
		want.Y += delta
		if el.Rect != want {
			t.Errorf("element %d rect = %+v, want %+v", i, el.Rect, want)
		}
	}
}

func TestLayoutRoutine_StacksRungs(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	rt, err := rung.ParseRoutine("Main",
		"XIC(A)OTE(B)",
		"XIC(C)[XIO(D),ONS(E)]OTE(F)",
	)
	if err != nil {
		t.Fatalf("ParseRoutine() error: %v", err)
	}

	rl, err := e.LayoutRoutine(rt)
	if err != nil {
		t.Fatalf("LayoutRoutine() error: %v", err)
	}
	if len(rl.Rungs) != 2 {
		t.Fatalf("got %d rung layouts, want 2", len(rl.Rungs))
	}

	first, second := rl.Rungs[0], rl.Rungs[1]
	if first.Y != 0 {
		t.Errorf("rung 0 y = %d, want 0", first.Y)
	}
	if second.Y != first.Height+cfg.RungGap {
		t.Errorf("rung 1 y = %d, want %d", second.Y, first.Height+cfg.RungGap)
	}
	if rl.Height != second.Y+second.Height {
		t.Errorf("routine height = %d, want %d", rl.Height, second.Y+second.Height)
	}
	if rl.Width != cfg.FrameWidth {
		t.Errorf("routine width = %d, want %d", rl.Width, cfg.FrameWidth)
	}
}

func TestLocate(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	rt, err := rung.ParseRoutine("Main",
		"XIC(A)OTE(B)",
		"XIC(C)[XIO(D),ONS(E)]OTE(F)",
	)
	if err != nil {
		t.Fatalf("ParseRoutine() error: %v", err)
	}
	rl, err := e.LayoutRoutine(rt)
	if err != nil {
		t.Fatalf("LayoutRoutine() error: %v", err)
	}

	second := rl.Rungs[1]
	group, _ := second.Branch(1)
	rail, _ := second.Branch(2)

	tests := []struct {
		name       string
		x, y       int
		wantRung   int
		wantBranch rung.BranchID
		wantLevel  int
	}{
		{"main rail of first rung", cfg.RailOffset + 50, rl.Rungs[0].RailY, 0, rung.NoBranch, 0},
		{"main rail of second rung", cfg.RailOffset + 5, second.RailY, 1, rung.NoBranch, 0},
		{"first rail of branch", group.StartX + 5, group.BranchY, 1, group.ID, 1},
		{"sibling rail of branch", rail.StartX + 5, rail.BranchY, 1, rail.ID, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(rl, tt.x, tt.y)
			if err != nil {
				t.Fatalf("Locate(%d, %d) error: %v", tt.x, tt.y, err)
			}
			want := Target{RungNumber: tt.wantRung, BranchID: tt.wantBranch, BranchLevel: tt.wantLevel}
			if got != want {
				t.Errorf("Locate(%d, %d) = %+v, want %+v", tt.x, tt.y, got, want)
			}
		})
	}

	t.Run("miss below all rungs is recoverable", func(t *testing.T) {
		_, err := Locate(rl, 100, rl.Height+500)
		if liberrors.GetCode(err) != liberrors.ErrCodeNoRungAtCoordinate {
			t.Fatalf("error code = %v, want NO_RUNG_AT_COORDINATE", liberrors.GetCode(err))
		}
		if !liberrors.Recoverable(err) {
			t.Error("coordinate miss should be recoverable")
		}
	})
}

func TestFindInsertionPosition(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := mustRung(t, "XIC(A)XIC(B)OTE(C)")
	res := mustLayout(t, e, r)

	elems := res.Instructions()
	a, b := elems[0], elems[1]

	tests := []struct {
		name string
		x    int
		want int
	}{
		{"left of first element", a.Rect.X - 20, 0},
		{"exactly on first center goes after", a.Rect.CenterX(), 1},
		{"just left of second center", b.Rect.CenterX() - 1, 1},
		{"right of second center", b.Rect.CenterX() + 3, 2},
		{"far right lands after last", 10_000, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := res.FindInsertionPosition(r, rung.NoBranch, tt.x)
			if err != nil {
				t.Fatalf("FindInsertionPosition() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FindInsertionPosition(x=%d) = %d, want %d", tt.x, got, tt.want)
			}
		})
	}
}

func TestFindInsertionPosition_EmptyContexts(t *testing.T) {
	e := NewEngine(DefaultConfig())

	t.Run("empty branch rail inserts after its marker", func(t *testing.T) {
		r := mustRung(t, "XIC(A)[XIO(B),]OTE(C)")
		res := mustLayout(t, e, r)

		var railID rung.BranchID
		for _, b := range res.Branches {
			if b.IsRail {
				railID = b.ID
			}
		}
		got, err := res.FindInsertionPosition(r, railID, 400)
		if err != nil {
			t.Fatalf("FindInsertionPosition() error: %v", err)
		}
		rb, _ := r.Branch(railID)
		if got != rb.StartPosition+1 {
			t.Errorf("position = %d, want just after rail marker at %d", got, rb.StartPosition)
		}
	})

	t.Run("unknown branch handle", func(t *testing.T) {
		r := mustRung(t, "XIC(A)OTE(B)")
		res := mustLayout(t, e, r)
		_, err := res.FindInsertionPosition(r, rung.BranchID(9), 100)
		if liberrors.GetCode(err) != liberrors.ErrCodeBranchNotFound {
			t.Fatalf("error code = %v, want BRANCH_NOT_FOUND", liberrors.GetCode(err))
		}
	})
}

func TestWires(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)
	r := mustRung(t, "XIC(A)[XIC(B),XIO(C)]OTE(D)")
	res := mustLayout(t, e, r)

	wires := res.Wires(cfg)
	if len(wires) == 0 {
		t.Fatal("no wires derived")
	}

	var horizontal, vertical int
	for _, w := range wires {
		switch {
		case w.Y1 == w.Y2:
			horizontal++
			if w.X2 <= w.X1 {
				t.Errorf("horizontal wire %+v not left-to-right", w)
			}
		case w.X1 == w.X2:
			vertical++
		default:
			t.Errorf("wire %+v is neither horizontal nor vertical", w)
		}
	}
	// One branch group contributes exactly two posts.
	if vertical != 2 {
		t.Errorf("got %d vertical posts, want 2", vertical)
	}
	if horizontal == 0 {
		t.Error("no horizontal rail wires")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero rung height", func(c *Config) { c.RungHeight = 0 }, false},
		{"negative spacing", func(c *Config) { c.ElementSpacing = -1 }, false},
		{"frame narrower than rails", func(c *Config) { c.FrameWidth = c.RailOffset }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("rung_height = 80\nbranch_spacing = 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.RungHeight != 80 {
		t.Errorf("RungHeight = %d, want 80", cfg.RungHeight)
	}
	if cfg.BranchSpacing != 50 {
		t.Errorf("BranchSpacing = %d, want 50", cfg.BranchSpacing)
	}
	// Unset keys keep their defaults.
	if cfg.FrameWidth != DefaultConfig().FrameWidth {
		t.Errorf("FrameWidth = %d, want default %d", cfg.FrameWidth, DefaultConfig().FrameWidth)
	}
}
