package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// DotOptions configures branch-tree rendering.
type DotOptions struct {
	// Detailed includes sequence spans and rail slots in node labels.
	// When false, only the branch handle and rail content are shown.
	Detailed bool
}

// ToDOT converts a rung's branch structure to Graphviz DOT format: one node
// per branch with the instructions on its rail, edges from parent to child.
// Useful for inspecting nesting on rungs too dense to read as a diagram.
// The resulting DOT string can be rendered with [RenderDOTSVG].
func ToDOT(r *rung.Rung, opts DotOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph branches {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  main [label=%q, fillcolor=lightyellow];\n",
		railLabel("main rail", railText(r, rung.NoBranch)))

	for _, b := range r.Branches() {
		name := branchNode(b.ID)
		label := railLabel(branchTitle(b), railText(r, b.ID))
		if opts.Detailed {
			label += fmt.Sprintf("\nspan [%d, %d] slot %d", b.StartPosition, b.EndPosition, b.Slot)
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if b.IsRail {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, b := range r.Branches() {
		parent := "main"
		if b.Parent != rung.NoBranch {
			parent = branchNode(b.Parent)
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", parent, branchNode(b.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func branchNode(id rung.BranchID) string {
	return fmt.Sprintf("b%d", id)
}

func branchTitle(b rung.Branch) string {
	if b.IsRail {
		return fmt.Sprintf("rail %d", b.ID)
	}
	return fmt.Sprintf("branch %d", b.ID)
}

func railLabel(title, text string) string {
	if text == "" {
		return title + "\n(empty)"
	}
	return title + "\n" + text
}

// railText concatenates the instruction texts laid directly on a rail.
func railText(r *rung.Rung, id rung.BranchID) string {
	var parts []string
	for _, el := range r.Sequence() {
		if el.Kind == rung.KindInstruction && el.BranchID == id {
			parts = append(parts, el.Instruction.Text())
		}
	}
	return strings.Join(parts, " ")
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "render DOT")
	}
	return buf.Bytes(), nil
}
