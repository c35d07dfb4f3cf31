package layout_test

import (
	"fmt"

	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

func ExampleEngine_LayoutRung() {
	r, _ := rung.ParseText("XIC(Start)[XIC(Jog),XIO(Stop)]OTE(Motor)")

	engine := layout.NewEngine(layout.DefaultConfig())
	res, _ := engine.LayoutRung(r, 0, 0)

	fmt.Println("height:", res.Height)
	fmt.Println("branches:", len(res.Branches))
	for _, el := range res.Instructions() {
		fmt.Printf("%s at (%d, %d)\n", el.Label, el.Rect.X, el.Rect.Y)
	}
	// Output:
	// height: 140
	// branches: 2
	// Start at (50, 15)
	// Jog at (110, 55)
	// Stop at (110, 95)
	// Motor at (180, 15)
}

func ExampleLocate() {
	rt, _ := rung.ParseRoutine("Main", "XIC(A)OTE(B)", "XIC(C)OTE(D)")

	engine := layout.NewEngine(layout.DefaultConfig())
	rl, _ := engine.LayoutRoutine(rt)

	target, _ := layout.Locate(rl, 100, rl.Rungs[1].RailY)
	fmt.Println("rung:", target.RungNumber)
	fmt.Println("branch level:", target.BranchLevel)
	// Output:
	// rung: 1
	// branch level: 0
}
