package render

import (
	"bytes"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	cfg   layout.Config
	scale float64
}

// WithPNGConfig sets the geometry config the layout was computed with.
func WithPNGConfig(cfg layout.Config) PNGOption {
	return func(r *pngRenderer) { r.cfg = cfg }
}

// WithPNGScale sets the raster scale factor (default 2.0 for 2x resolution).
func WithPNGScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes a routine layout directly, without an SVG
// intermediate, so exports work headless with no system libraries.
func RenderPNG(rl *layout.RoutineLayout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{cfg: layout.DefaultConfig(), scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}

	height := rl.Height
	if height == 0 {
		height = r.cfg.RungHeight
	}

	dc := gg.NewContext(int(float64(rl.Width)*r.scale), int(float64(height)*r.scale))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "parse embedded font")
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    10,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	dc.DrawLine(float64(r.cfg.RailOffset), 0, float64(r.cfg.RailOffset), float64(height))
	dc.DrawLine(float64(rl.Width-r.cfg.RailOffset), 0, float64(rl.Width-r.cfg.RailOffset), float64(height))
	dc.Stroke()

	for _, res := range rl.Rungs {
		r.drawRung(dc, res)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) drawRung(dc *gg.Context, res layout.Result) {
	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	for _, w := range res.Wires(r.cfg) {
		dc.DrawLine(float64(w.X1), float64(w.Y1), float64(w.X2), float64(w.Y2))
	}
	dc.Stroke()

	dc.DrawStringAnchored(
		strconv.Itoa(res.RungNumber),
		float64(r.cfg.RailOffset-6), float64(res.RailY), 1, 0.35)

	for i, line := range commentLines(res.Comment) {
		dc.SetRGB(0.1, 0.48, 0.23)
		dc.DrawString(line,
			float64(r.cfg.RailOffset+r.cfg.RailInset),
			float64(res.Y+(i+1)*r.cfg.CommentLineHeight-3))
		dc.SetColor(color.Black)
	}

	for _, el := range res.Elements {
		if el.Kind != rung.KindInstruction {
			continue
		}
		r.drawSymbol(dc, el)
	}
}

func (r *pngRenderer) drawSymbol(dc *gg.Context, el layout.Element) {
	rect := el.Rect
	cy := float64(rect.CenterY())
	dc.SetLineWidth(1.5)

	switch el.InstrKind {
	case rung.InstrContact:
		leftX := float64(rect.X + rect.Width/3)
		rightX := float64(rect.Right() - rect.Width/3)
		dc.DrawLine(float64(rect.X), cy, leftX, cy)
		dc.DrawLine(leftX, float64(rect.Y), leftX, float64(rect.Bottom()))
		dc.DrawLine(rightX, float64(rect.Y), rightX, float64(rect.Bottom()))
		dc.DrawLine(rightX, cy, float64(rect.Right()), cy)
		if el.Source.Instruction != nil && el.Source.Instruction.Mnemonic == "XIO" {
			dc.DrawLine(leftX, float64(rect.Bottom()), rightX, float64(rect.Y))
		}
	case rung.InstrCoil:
		radius := float64(rect.Height) / 2
		cx := float64(rect.CenterX())
		dc.DrawLine(float64(rect.X), cy, cx-radius, cy)
		dc.DrawCircle(cx, cy, radius)
		dc.DrawLine(cx+radius, cy, float64(rect.Right()), cy)
	default:
		dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.Width), float64(rect.Height))
	}
	dc.Stroke()

	dc.DrawStringAnchored(el.Label, float64(rect.CenterX()), float64(rect.Y-8), 0.5, 0.35)
}
