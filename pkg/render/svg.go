package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

const diagramCSS = `
    .wire { stroke: #222; stroke-width: 1.5; }
    .rail { stroke: #222; stroke-width: 3; }
    .symbol { stroke: #222; stroke-width: 2; fill: none; }
    .symbol.selected { stroke: #0b6bcb; stroke-width: 3; }
    .label { font-family: monospace; font-size: 11px; fill: #222; text-anchor: middle; }
    .comment { font-family: monospace; font-size: 10px; fill: #1a7a3a; }
    .number { font-family: monospace; font-size: 11px; fill: #888; text-anchor: end; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cfg      layout.Config
	title    string
	selected map[selKey]bool
}

type selKey struct {
	rung     int
	position int
}

// WithConfig sets the geometry config the layout was computed with.
// Without it the renderer assumes the defaults.
func WithConfig(cfg layout.Config) SVGOption {
	return func(r *svgRenderer) { r.cfg = cfg }
}

// WithTitle adds a document title element.
func WithTitle(title string) SVGOption {
	return func(r *svgRenderer) { r.title = title }
}

// WithSelection highlights one instruction element.
func WithSelection(rungNumber, position int) SVGOption {
	return func(r *svgRenderer) {
		r.selected[selKey{rung: rungNumber, position: position}] = true
	}
}

// RenderSVG renders a routine layout as a standalone SVG document.
func RenderSVG(rl *layout.RoutineLayout, opts ...SVGOption) []byte {
	r := svgRenderer{cfg: layout.DefaultConfig(), selected: map[selKey]bool{}}
	for _, opt := range opts {
		opt(&r)
	}

	height := rl.Height
	if height == 0 {
		height = r.cfg.RungHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		rl.Width, height, rl.Width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "<title>%s</title>\n", escape(r.title))
	}
	fmt.Fprintf(&buf, "<style>%s\n</style>\n", diagramCSS)

	// Power rails span the whole routine.
	fmt.Fprintf(&buf, `<line class="rail" x1="%d" y1="0" x2="%d" y2="%d"/>`+"\n",
		r.cfg.RailOffset, r.cfg.RailOffset, height)
	fmt.Fprintf(&buf, `<line class="rail" x1="%d" y1="0" x2="%d" y2="%d"/>`+"\n",
		rl.Width-r.cfg.RailOffset, rl.Width-r.cfg.RailOffset, height)

	for _, res := range rl.Rungs {
		r.renderRung(&buf, res)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderRung(buf *bytes.Buffer, res layout.Result) {
	fmt.Fprintf(buf, `<g id="rung-%d">`+"\n", res.RungNumber)
	fmt.Fprintf(buf, `<text class="number" x="%d" y="%d">%d</text>`+"\n",
		r.cfg.RailOffset-6, res.RailY+4, res.RungNumber)

	for i, line := range commentLines(res.Comment) {
		fmt.Fprintf(buf, `<text class="comment" x="%d" y="%d">%s</text>`+"\n",
			r.cfg.RailOffset+r.cfg.RailInset,
			res.Y+(i+1)*r.cfg.CommentLineHeight-3,
			escape(line))
	}

	for _, w := range res.Wires(r.cfg) {
		fmt.Fprintf(buf, `<line class="wire" x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n",
			w.X1, w.Y1, w.X2, w.Y2)
	}

	for _, el := range res.Elements {
		if el.Kind != rung.KindInstruction {
			continue
		}
		r.renderSymbol(buf, res.RungNumber, el)
	}
	buf.WriteString("</g>\n")
}

func (r *svgRenderer) renderSymbol(buf *bytes.Buffer, rungNumber int, el layout.Element) {
	class := "symbol"
	if r.selected[selKey{rung: rungNumber, position: el.Position}] || el.Selected {
		class += " selected"
	}
	rect := el.Rect
	cy := rect.CenterY()

	switch el.InstrKind {
	case rung.InstrContact:
		// Two uprights with a feed wire through; XIO adds the slash.
		leftX := rect.X + rect.Width/3
		rightX := rect.Right() - rect.Width/3
		fmt.Fprintf(buf, `<g class="%s">`, class)
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, rect.X, cy, leftX, cy)
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, leftX, rect.Y, leftX, rect.Bottom())
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, rightX, rect.Y, rightX, rect.Bottom())
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, rightX, cy, rect.Right(), cy)
		if el.Source.Instruction != nil && el.Source.Instruction.Mnemonic == "XIO" {
			fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, leftX, rect.Bottom(), rightX, rect.Y)
		}
		buf.WriteString("</g>\n")
	case rung.InstrCoil:
		radius := rect.Height / 2
		fmt.Fprintf(buf, `<g class="%s">`, class)
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, rect.X, cy, rect.CenterX()-radius, cy)
		fmt.Fprintf(buf, `<circle cx="%d" cy="%d" r="%d"/>`, rect.CenterX(), cy, radius)
		fmt.Fprintf(buf, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, rect.CenterX()+radius, cy, rect.Right(), cy)
		buf.WriteString("</g>\n")
	default:
		fmt.Fprintf(buf, `<rect class="%s" x="%d" y="%d" width="%d" height="%d"/>`+"\n",
			class, rect.X, rect.Y, rect.Width, rect.Height)
	}

	fmt.Fprintf(buf, `<text class="label" x="%d" y="%d">%s</text>`+"\n",
		rect.CenterX(), rect.Y-4, escape(el.Label))
}

func commentLines(comment string) []string {
	if comment == "" {
		return nil
	}
	return strings.Split(comment, "\n")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
