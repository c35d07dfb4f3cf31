package render

import (
	"encoding/json"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	cfg     layout.Config
	routine string
	wires   bool
}

// WithJSONConfig sets the geometry config the layout was computed with.
func WithJSONConfig(cfg layout.Config) JSONOption {
	return func(r *jsonRenderer) { r.cfg = cfg }
}

// WithJSONRoutine records the routine name in the output.
func WithJSONRoutine(name string) JSONOption {
	return func(r *jsonRenderer) { r.routine = name }
}

// WithJSONWires includes the derived wire segments per rung.
func WithJSONWires() JSONOption {
	return func(r *jsonRenderer) { r.wires = true }
}

type jsonOutput struct {
	Routine string     `json:"routine,omitempty"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Rungs   []jsonRung `json:"rungs"`
}

type jsonRung struct {
	Number   int           `json:"number"`
	Y        int           `json:"y"`
	Height   int           `json:"height"`
	Comment  string        `json:"comment,omitempty"`
	MaxDepth int           `json:"max_depth"`
	Elements []jsonElement `json:"elements"`
	Branches []jsonBranch  `json:"branches,omitempty"`
	Wires    []layout.Wire `json:"wires,omitempty"`
}

type jsonElement struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Label    string `json:"label,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Branch   int    `json:"branch,omitempty"`
	Level    int    `json:"level,omitempty"`
}

type jsonBranch struct {
	ID     int  `json:"id"`
	Parent int  `json:"parent,omitempty"`
	Rail   bool `json:"rail,omitempty"`
	StartX int  `json:"start_x"`
	EndX   int  `json:"end_x"`
	Y      int  `json:"y"`
}

// RenderJSON renders a routine layout as machine-readable geometry. The
// output is what the preview server ships to browsers for client-side
// hit testing.
func RenderJSON(rl *layout.RoutineLayout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{cfg: layout.DefaultConfig()}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Routine: r.routine, Width: rl.Width, Height: rl.Height}
	for _, res := range rl.Rungs {
		jr := jsonRung{
			Number:   res.RungNumber,
			Y:        res.Y,
			Height:   res.Height,
			Comment:  res.Comment,
			MaxDepth: res.MaxDepth,
		}
		for _, el := range res.Elements {
			if el.Kind != rung.KindInstruction {
				continue
			}
			jr.Elements = append(jr.Elements, jsonElement{
				Kind:     el.InstrKind.String(),
				Position: el.Position,
				Label:    el.Label,
				X:        el.Rect.X,
				Y:        el.Rect.Y,
				Width:    el.Rect.Width,
				Height:   el.Rect.Height,
				Branch:   int(el.BranchID),
				Level:    el.BranchLevel,
			})
		}
		for _, b := range res.Branches {
			jr.Branches = append(jr.Branches, jsonBranch{
				ID:     int(b.ID),
				Parent: int(b.Parent),
				Rail:   b.IsRail,
				StartX: b.StartX,
				EndX:   b.EndX,
				Y:      b.BranchY,
			})
		}
		if r.wires {
			jr.Wires = res.Wires(r.cfg)
		}
		out.Rungs = append(out.Rungs, jr)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "marshal layout")
	}
	return data, nil
}
