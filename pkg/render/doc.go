// Package render turns routine layouts into visual outputs.
//
// # Overview
//
// This package contains the output side of the pipeline: it consumes the
// geometry computed by [layout] and produces files. It provides:
//
//   - SVG ladder diagrams ([RenderSVG])
//   - Machine-readable layout geometry as JSON ([RenderJSON])
//   - Direct PNG rasterization ([RenderPNG])
//   - Branch-nesting trees via Graphviz ([ToDOT], [RenderDOTSVG])
//
// # Ladder Diagrams
//
// [RenderSVG] and [RenderPNG] draw the same diagram: power rails, rung
// wires, contact and coil symbols, branch posts, comments, and rung
// numbers. SVG is the primary format; PNG rasterizes headless through
// fogleman/gg with an embedded monospace face, so exports need no system
// libraries.
//
//	svg := render.RenderSVG(rl, render.WithConfig(cfg))
//	png, err := render.RenderPNG(rl, render.WithPNGConfig(cfg))
//
// # Branch Trees
//
// [ToDOT] flattens a rung's branch nesting into a directed tree for
// Graphviz, one node per branch with the instructions on its rail. This is
// a debugging view for rungs too dense to read as diagrams.
//
//	dot := render.ToDOT(r, render.DotOptions{Detailed: true})
//	svg, err := render.RenderDOTSVG(dot)
//
// [layout]: github.com/ladderworks/ladderkit/pkg/layout
package render
