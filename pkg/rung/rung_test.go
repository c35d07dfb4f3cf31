package rung

import (
	"testing"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
)

// checkPositions asserts that element positions form 0..n-1.
func checkPositions(t *testing.T, r *Rung) {
	t.Helper()
	for i, e := range r.Sequence() {
		if e.Position != i {
			t.Errorf("element %d has position %d, want %d", i, e.Position, i)
		}
	}
}

func TestParseText_MainRailOnly(t *testing.T) {
	r, err := ParseText("XIC(Start)XIC(Guard)OTE(Motor)")
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	checkPositions(t, r)

	for _, e := range r.Sequence() {
		if e.Kind != KindInstruction {
			t.Errorf("element %d kind = %v, want instruction", e.Position, e.Kind)
		}
		if e.BranchLevel != 0 {
			t.Errorf("element %d level = %d, want 0", e.Position, e.BranchLevel)
		}
		if e.BranchID != NoBranch {
			t.Errorf("element %d branch = %d, want main rail", e.Position, e.BranchID)
		}
	}
}

func TestParseText_SimpleBranch(t *testing.T) {
	// Sequence: XIC@0 [@1 XIO@2 ]@3 — no sibling rail.
	r, err := ParseText("XIC(A)[XIO(B)]")
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}

	seq := r.Sequence()
	if len(seq) != 4 {
		t.Fatalf("Len() = %d, want 4", len(seq))
	}

	b, ok := r.Branch(seq[1].BranchID)
	if !ok {
		t.Fatal("branch opened at position 1 not registered")
	}
	if b.StartPosition != 1 || b.EndPosition != 3 {
		t.Errorf("branch span = [%d, %d], want [1, 3]", b.StartPosition, b.EndPosition)
	}
	if seq[2].BranchLevel != 1 {
		t.Errorf("inner element level = %d, want 1", seq[2].BranchLevel)
	}
	if seq[1].BranchLevel != 0 || seq[3].BranchLevel != 0 {
		t.Errorf("marker levels = %d, %d, want 0, 0", seq[1].BranchLevel, seq[3].BranchLevel)
	}
}

func TestParseText_SiblingRails(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B),OTE(C)]")
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}
	checkPositions(t, r)

	// One group plus one rail.
	if r.BranchCount() != 2 {
		t.Fatalf("BranchCount() = %d, want 2", r.BranchCount())
	}

	branches := r.Branches()
	group, rail := branches[0], branches[1]
	if group.IsRail || !rail.IsRail {
		t.Fatalf("group/rail flags wrong: %+v, %+v", group, rail)
	}
	if rail.Parent != group.ID {
		t.Errorf("rail parent = %d, want %d", rail.Parent, group.ID)
	}
	if len(group.Children) != 1 || group.Children[0] != rail.ID {
		t.Errorf("group children = %v, want [%d]", group.Children, rail.ID)
	}
	if group.Slot != 1 || rail.Slot != 2 {
		t.Errorf("slots = %d, %d, want 1, 2", group.Slot, rail.Slot)
	}
	if r.MaxBranchDepth() != 2 {
		t.Errorf("MaxBranchDepth() = %d, want 2", r.MaxBranchDepth())
	}
}

func TestParseText_NestedBranches(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B)[XIC(C),XIC(D)],OTE(E)]")
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}
	checkPositions(t, r)

	seq := r.Sequence()
	outer := seq[1].BranchID
	for _, e := range seq {
		if e.BranchID != NoBranch && e.Root != outer {
			t.Errorf("element %d root = %d, want %d", e.Position, e.Root, outer)
		}
	}

	// Inner group is nested one level deeper.
	inner, ok := r.Branch(seq[3].BranchID)
	if !ok {
		t.Fatal("inner group not registered")
	}
	if inner.Level != 1 {
		t.Errorf("inner group level = %d, want 1", inner.Level)
	}
	if inner.Root != outer {
		t.Errorf("inner group root = %d, want %d", inner.Root, outer)
	}

	// Outer rail must open below everything the first rail used.
	if r.MaxBranchDepth() < 3 {
		t.Errorf("MaxBranchDepth() = %d, want >= 3", r.MaxBranchDepth())
	}
}

func TestParseText_Unbalanced(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"end without start", "XIC(A)]OTE(B)"},
		{"start never closed", "XIC(A)[XIO(B)"},
		{"rail outside branch", "XIC(A),OTE(B)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(tt.text)
			if !liberrors.Is(err, liberrors.ErrCodeUnbalancedBranch) {
				t.Errorf("ParseText(%q) error = %v, want UNBALANCED_BRANCH", tt.text, err)
			}
		})
	}
}

func TestParseText_Malformed(t *testing.T) {
	tests := []string{"XIC", "XIC(A", "XIC(A)$", "(A)"}
	for _, text := range tests {
		if _, err := ParseText(text); !liberrors.Is(err, liberrors.ErrCodeInvalidRung) {
			t.Errorf("ParseText(%q) error = %v, want INVALID_RUNG_TEXT", text, err)
		}
	}
}

func TestText_RoundTrip(t *testing.T) {
	tests := []string{
		"XIC(Start)OTE(Motor)",
		"XIC(A)[XIO(B),OTE(C)]",
		"XIC(A)[XIO(B)[XIC(C),XIC(D)],OTE(E)]",
		"TON(Timer1,1000,0)OTE(Done)",
	}
	for _, text := range tests {
		r, err := ParseText(text)
		if err != nil {
			t.Fatalf("ParseText(%q) error: %v", text, err)
		}
		if got := r.Text(); got != text {
			t.Errorf("Text() = %q, want %q", got, text)
		}
	}
}

func TestInsertInstruction_ShiftsTrailingPositions(t *testing.T) {
	// Three main-rail elements; insert at logical position 2.
	r, err := ParseText("XIC(A)XIC(B)OTE(C)")
	if err != nil {
		t.Fatal(err)
	}

	if err := r.InsertInstruction(2, NewInstruction("XIO", "Stop")); err != nil {
		t.Fatalf("InsertInstruction() error: %v", err)
	}

	checkPositions(t, r)
	seq := r.Sequence()
	if seq[2].Instruction.Mnemonic != "XIO" {
		t.Errorf("position 2 = %s, want XIO", seq[2].Instruction.Mnemonic)
	}
	if seq[3].Instruction.Operands[0] != "C" {
		t.Errorf("shifted element operand = %v, want C", seq[3].Instruction.Operands)
	}
}

func TestInsertInstruction_OutOfRange(t *testing.T) {
	r, _ := ParseText("XIC(A)")
	err := r.InsertInstruction(5, NewInstruction("OTE", "X"))
	if !liberrors.Is(err, liberrors.ErrCodePositionOutOfRange) {
		t.Errorf("error = %v, want POSITION_OUT_OF_RANGE", err)
	}
	if r.Len() != 1 {
		t.Errorf("failed insert mutated the rung: Len() = %d", r.Len())
	}
}

func TestRemoveInstruction_Renumbers(t *testing.T) {
	r, err := ParseText("XIC(A)XIC(B)XIO(C)OTE(D)")
	if err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveInstruction(1); err != nil {
		t.Fatalf("RemoveInstruction() error: %v", err)
	}

	checkPositions(t, r)
	seq := r.Sequence()
	if len(seq) != 3 {
		t.Fatalf("Len() = %d, want 3", len(seq))
	}
	if seq[1].Instruction.Operands[0] != "C" || seq[2].Instruction.Operands[0] != "D" {
		t.Errorf("renumbered operands = %v, %v, want C, D",
			seq[1].Instruction.Operands, seq[2].Instruction.Operands)
	}
}

func TestRemoveInstruction_BranchBoundsFollow(t *testing.T) {
	// Deleting a main-rail element before a branch shifts the branch span.
	r, err := ParseText("XIC(A)XIC(B)[XIO(C),OTE(D)]")
	if err != nil {
		t.Fatal(err)
	}
	before := r.Branches()[0]

	if err := r.RemoveInstruction(1); err != nil {
		t.Fatal(err)
	}

	after := r.Branches()[0]
	if after.StartPosition != before.StartPosition-1 || after.EndPosition != before.EndPosition-1 {
		t.Errorf("branch span = [%d, %d], want [%d, %d]",
			after.StartPosition, after.EndPosition,
			before.StartPosition-1, before.EndPosition-1)
	}
}

func TestInsertThenRemove_RestoresSequence(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B),OTE(C)]")
	if err != nil {
		t.Fatal(err)
	}
	original := r.Text()

	if err := r.InsertInstruction(1, NewInstruction("XIC", "Tmp")); err != nil {
		t.Fatal(err)
	}
	if err := r.RemoveInstruction(1); err != nil {
		t.Fatal(err)
	}

	if got := r.Text(); got != original {
		t.Errorf("round trip text = %q, want %q", got, original)
	}
	checkPositions(t, r)
}

func TestInsertBranch_WrapsSpan(t *testing.T) {
	r, err := ParseText("XIC(A)XIC(B)OTE(C)")
	if err != nil {
		t.Fatal(err)
	}

	id, err := r.InsertBranch(1, 2)
	if err != nil {
		t.Fatalf("InsertBranch() error: %v", err)
	}

	if got := r.Text(); got != "XIC(A)[XIC(B),]OTE(C)" {
		t.Errorf("Text() = %q", got)
	}
	b, ok := r.Branch(id)
	if !ok {
		t.Fatal("returned branch id not registered")
	}
	if b.StartPosition != 1 {
		t.Errorf("branch start = %d, want 1", b.StartPosition)
	}
}

func TestInsertBranchLevel_AddsRail(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B),OTE(C)]")
	if err != nil {
		t.Fatal(err)
	}
	start := r.Sequence()[1]

	if err := r.InsertBranchLevel(start.Position); err != nil {
		t.Fatalf("InsertBranchLevel() error: %v", err)
	}

	if got := r.Text(); got != "XIC(A)[XIO(B),,OTE(C)]" {
		t.Errorf("Text() = %q", got)
	}
	if r.MaxBranchDepth() != 3 {
		t.Errorf("MaxBranchDepth() = %d, want 3", r.MaxBranchDepth())
	}
}

func TestInsertBranchLevel_RejectsInstructionPosition(t *testing.T) {
	r, _ := ParseText("XIC(A)[XIO(B),OTE(C)]")
	err := r.InsertBranchLevel(0)
	if !liberrors.Is(err, liberrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRemoveBranch_Group(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B),OTE(C)]OTE(D)")
	if err != nil {
		t.Fatal(err)
	}
	group := r.Branches()[0]

	if err := r.RemoveBranch(group.ID); err != nil {
		t.Fatalf("RemoveBranch() error: %v", err)
	}

	if got := r.Text(); got != "XIC(A)OTE(D)" {
		t.Errorf("Text() = %q, want XIC(A)OTE(D)", got)
	}
	checkPositions(t, r)
	if r.HasBranches() {
		t.Error("branches survived group removal")
	}
}

func TestRemoveBranch_LastRailCollapsesGroup(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B),OTE(C)]")
	if err != nil {
		t.Fatal(err)
	}
	var rail Branch
	for _, b := range r.Branches() {
		if b.IsRail {
			rail = b
		}
	}

	if err := r.RemoveBranch(rail.ID); err != nil {
		t.Fatalf("RemoveBranch() error: %v", err)
	}

	// The group has no sibling rail left, so its brackets collapse too.
	if got := r.Text(); got != "XIC(A)XIO(B)" {
		t.Errorf("Text() = %q, want XIC(A)XIO(B)", got)
	}
}

func TestRemoveBranch_Unknown(t *testing.T) {
	r, _ := ParseText("XIC(A)OTE(B)")
	err := r.RemoveBranch(7)
	if !liberrors.Is(err, liberrors.ErrCodeBranchNotFound) {
		t.Errorf("error = %v, want BRANCH_NOT_FOUND", err)
	}
}

func TestMoveInstruction(t *testing.T) {
	r, err := ParseText("XIC(A)XIC(B)OTE(C)")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.MoveInstruction(0, 1); err != nil {
		t.Fatalf("MoveInstruction() error: %v", err)
	}
	if got := r.Text(); got != "XIC(B)XIC(A)OTE(C)" {
		t.Errorf("Text() = %q", got)
	}
}

func TestCommentLines(t *testing.T) {
	r := New()
	if r.CommentLines() != 0 {
		t.Errorf("CommentLines() = %d, want 0", r.CommentLines())
	}
	r.SetComment("start motor")
	if r.CommentLines() != 1 {
		t.Errorf("CommentLines() = %d, want 1", r.CommentLines())
	}
	r.SetComment("start motor\nunless stop\nor guard open\nor estop")
	if r.CommentLines() != 4 {
		t.Errorf("CommentLines() = %d, want 4", r.CommentLines())
	}
}

func TestFindMatchingBranchEnd(t *testing.T) {
	r, err := ParseText("XIC(A)[XIO(B)[XIC(C),XIC(D)],OTE(E)]")
	if err != nil {
		t.Fatal(err)
	}
	end, err := r.FindMatchingBranchEnd(1)
	if err != nil {
		t.Fatalf("FindMatchingBranchEnd() error: %v", err)
	}
	if end != r.Len()-1 {
		t.Errorf("outer end = %d, want %d", end, r.Len()-1)
	}

	inner, err := r.FindMatchingBranchEnd(3)
	if err != nil {
		t.Fatalf("FindMatchingBranchEnd(inner) error: %v", err)
	}
	if got := r.Sequence()[inner]; got.Kind != KindBranchEnd {
		t.Errorf("inner end kind = %v, want branch_end", got.Kind)
	}
}

func TestInstructionKinds(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     InstructionKind
	}{
		{"XIC", InstrContact},
		{"XIO", InstrContact},
		{"OTE", InstrCoil},
		{"OTL", InstrCoil},
		{"OTU", InstrCoil},
		{"TON", InstrBlock},
		{"MOV", InstrBlock},
	}
	for _, tt := range tests {
		if got := NewInstruction(tt.mnemonic, "X").Kind(); got != tt.want {
			t.Errorf("%s kind = %v, want %v", tt.mnemonic, got, tt.want)
		}
	}
}

func TestRoutine_RungManagement(t *testing.T) {
	rt, err := ParseRoutine("Main", "XIC(A)OTE(B)", "XIC(C)OTE(D)")
	if err != nil {
		t.Fatalf("ParseRoutine() error: %v", err)
	}
	if rt.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rt.Len())
	}

	if err := rt.InsertRung(1, New()); err != nil {
		t.Fatal(err)
	}
	if rt.Len() != 3 {
		t.Errorf("Len() = %d, want 3", rt.Len())
	}

	if err := rt.RemoveRung(1); err != nil {
		t.Fatal(err)
	}
	r1, err := rt.Rung(1)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Text() != "XIC(C)OTE(D)" {
		t.Errorf("rung 1 text = %q", r1.Text())
	}

	if _, err := rt.Rung(9); !liberrors.Is(err, liberrors.ErrCodePositionOutOfRange) {
		t.Errorf("Rung(9) error = %v, want POSITION_OUT_OF_RANGE", err)
	}
}
