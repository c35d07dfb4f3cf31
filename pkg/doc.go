// Package pkg provides the core libraries for ladderkit.
//
// # Overview
//
// Ladderkit parses, lays out, renders, and edits relay ladder logic
// routines of the kind found in Allen-Bradley L5X projects. The pkg
// directory is organized into five main areas:
//
//  1. [rung] - The logical rung model (instructions, branches, mutations)
//  2. [layout] - Geometry computation (coordinates, rails, hit testing)
//  3. [render] - Diagram output (SVG, PNG, JSON, DOT)
//  4. [editor] - Interactive editing (controller, undo, sessions)
//  5. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow through ladderkit:
//
//	Routine document (JSON)
//	         ↓
//	    [ladder] package (document model + validation)
//	         ↓
//	    [rung] package (logical sequence + branch registry)
//	         ↓
//	    [layout] package (element and wire geometry)
//	         ↓
//	    [render] package (SVG/PNG/JSON/DOT output)
//
// # Quick Start
//
// Load a routine and render it to SVG:
//
//	import (
//	    "github.com/ladderworks/ladderkit/pkg/ladder"
//	    "github.com/ladderworks/ladderkit/pkg/layout"
//	    "github.com/ladderworks/ladderkit/pkg/render"
//	)
//
//	// 1. Load the routine document
//	doc, _ := ladder.ReadFile("motor_start.json")
//	rt, _ := doc.Routine()
//
//	// 2. Compute geometry
//	engine := layout.NewEngine(layout.DefaultConfig())
//	rl, _ := engine.LayoutRoutine(rt)
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(rl, render.WithTitle(doc.Name))
//
// # Main Packages
//
// [rung] - The logical rung model. A rung is an ordered sequence of
// instructions and branch markers; parallel branches form a registry of
// arena-allocated handles that survive mutation. All structural edits
// (insert, remove, move, branch) go through this package.
//
// [layout] - Converts logical sequences into integer diagram coordinates
// in a single forward pass: element rectangles, branch rails, wire
// segments, and rung heights. Also provides hit testing (Locate) and
// insertion-point resolution for pointer-driven editing.
//
// [render] - Output sinks for computed layouts: SVG and PNG diagrams,
// raw geometry JSON, and Graphviz DOT of the branch structure.
//
// [editor] - Interactive editing on top of the model and layout: a
// Controller that keeps per-rung layout results cached and cascades
// height changes to following rungs, snapshot-based undo/redo, and a
// Session state machine for pointer-driven insert, branch, and drag
// interactions.
//
// [ladder] - The serialized routine document (JSON), conversion to and
// from the rung model, and file I/O.
//
// [library] - Saved routine storage with file and MongoDB backends.
//
// [pipeline] - The complete load → layout → render pipeline used by the
// CLI and the preview server, with artifact caching.
//
// [cache] - Byte-level caching with file, Redis, and null backends.
//
// [errors] - Structured errors with stable machine-readable codes.
//
// [observability] - Pluggable hooks for mutation, layout, cache, and
// storage events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...         # All tests
//	go test ./pkg/layout/...  # Specific package
//	go test -run Example      # Examples only
//
// [rung]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/rung
// [layout]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/layout
// [render]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/render
// [editor]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/editor
// [ladder]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/ladder
// [library]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/library
// [pipeline]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/cache
// [errors]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/ladderworks/ladderkit/pkg/observability
package pkg
