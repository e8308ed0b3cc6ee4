package textlayout

import (
	"image"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const glyphPad = 2

// glyph is one character drawn alone into an alpha sprite.
type glyph struct {
	char   string
	mask   *image.Alpha
	ink    entity.CharacterBox // sprite coordinates
	anchor entity.Point        // sprite point that sits on the path
	extent float64             // advance along the primary axis
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func rasterizeGlyph(face font.Face, r rune, vertical bool, ascent, descent int) glyph {
	bounds, advance, _ := face.GlyphBounds(r)
	adv := fixedToFloat(advance)

	minX := min(0, bounds.Min.X.Floor())
	maxX := max(advance.Ceil(), bounds.Max.X.Ceil(), 1)
	minY := min(-ascent, bounds.Min.Y.Floor())
	maxY := max(descent, bounds.Max.Y.Ceil())

	w := maxX - minX + 2*glyphPad
	h := maxY - minY + 2*glyphPad
	dotX, dotY := glyphPad-minX, glyphPad-minY

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(dotX, dotY),
	}
	d.DrawString(string(r))

	g := glyph{char: string(r), mask: mask}
	ox, oy := float64(dotX), float64(dotY)

	if bounds.Min.X < bounds.Max.X && bounds.Min.Y < bounds.Max.Y {
		g.ink = entity.CharacterBox{
			Char: g.char,
			X0:   ox + fixedToFloat(bounds.Min.X),
			Y0:   oy + fixedToFloat(bounds.Min.Y),
			X1:   ox + fixedToFloat(bounds.Max.X),
			Y1:   oy + fixedToFloat(bounds.Max.Y),
		}
	} else {
		// whitespace: the cell it occupies
		g.ink = entity.CharacterBox{
			Char: g.char,
			X0:   ox,
			Y0:   oy - float64(ascent),
			X1:   ox + max(adv, 1),
			Y1:   oy + float64(descent),
		}
	}

	lineHeight := float64(ascent + descent)
	if vertical {
		g.anchor = entity.Point{X: ox + adv/2, Y: oy - float64(ascent) + lineHeight/2}
		g.extent = lineHeight
	} else {
		g.anchor = entity.Point{X: ox + adv/2, Y: oy}
		g.extent = adv
	}
	return g
}
