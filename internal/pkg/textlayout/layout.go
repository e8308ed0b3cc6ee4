// Package textlayout draws a string glyph by glyph along a straight,
// circular or sine path and reports one box per character.
package textlayout

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/geom"
)

// cropMargin is kept around the union of boxes after placement.
const cropMargin = 4

type placed struct {
	sprite *image.NRGBA
	at     image.Point
	box    entity.CharacterBox
	color  color.NRGBA
}

// Layout renders text with f. Boxes come back in logical text order,
// one per rune, in the coordinates of the returned raster.
func Layout(text string, f *Font, p Params) (*image.NRGBA, entity.Boxes, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, fmt.Errorf("%w: nil font", entity.ErrInvalidArgument)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return imaging.New(1, 1, color.Transparent), entity.Boxes{}, nil
	}

	face, err := f.Face(p.FontSize)
	if err != nil {
		return nil, nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	vertical := p.Direction.Vertical()

	glyphs := make([]glyph, len(runes))
	for i, r := range runes {
		glyphs[i] = rasterizeGlyph(face, r, vertical, ascent, descent)
	}

	order := visualOrder(runes, p.Direction)
	if p.Direction == BottomToTop {
		slices.Reverse(order)
	}

	// arc length of every glyph center, in placement order
	centers := make([]float64, len(runes))
	cursor, length := 0.0, 0.0
	for _, li := range order {
		e := glyphs[li].extent
		centers[li] = cursor + e/2
		length = cursor + e
		cursor += e * (1 - p.Overlap)
	}

	curve := newPath(p.Curve, length)
	items := make([]placed, len(runes))
	for li := range runes {
		items[li] = place(glyphs[li], curve, centers[li], vertical)
		items[li].color = p.Colors.At(li, len(runes))
	}

	return compose(items)
}

func place(g glyph, curve path, s float64, vertical bool) placed {
	along, offset, tangent := curve.at(s)

	// imaging rotates counter-clockwise in a y-down frame
	angle := -tangent * 180 / math.Pi
	target := entity.Point{X: along, Y: offset}
	if vertical {
		angle = -angle
		target = entity.Point{X: offset, Y: along}
	}

	sprite := imaging.Rotate(g.mask, angle, color.Transparent)
	toSprite := geom.RotationMap(g.mask.Bounds(), sprite.Bounds(), angle)
	anchor := toSprite(g.anchor)

	at := image.Pt(
		int(math.Round(target.X-anchor.X)),
		int(math.Round(target.Y-anchor.Y)),
	)
	box := g.ink.Transform(toSprite).Translate(float64(at.X), float64(at.Y))
	return placed{sprite: sprite, at: at, box: box}
}

// compose draws every sprite onto one canvas and crops it to the union of
// the boxes plus cropMargin.
func compose(items []placed) (*image.NRGBA, entity.Boxes, error) {
	var bounds image.Rectangle
	for i, it := range items {
		r := it.sprite.Bounds().Sub(it.sprite.Bounds().Min).Add(it.at)
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}
	bounds = bounds.Inset(-cropMargin)

	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	shift := image.Point{}.Sub(bounds.Min)
	for _, it := range items {
		dr := it.sprite.Bounds().Sub(it.sprite.Bounds().Min).Add(it.at.Add(shift))
		draw.DrawMask(canvas, dr, image.NewUniform(it.color), image.Point{}, it.sprite, it.sprite.Bounds().Min, draw.Over)
	}

	union := items[0].box
	for _, it := range items[1:] {
		union.X0 = math.Min(union.X0, it.box.X0)
		union.Y0 = math.Min(union.Y0, it.box.Y0)
		union.X1 = math.Max(union.X1, it.box.X1)
		union.Y1 = math.Max(union.Y1, it.box.Y1)
	}
	union = union.Translate(float64(shift.X), float64(shift.Y))

	crop := image.Rect(
		int(math.Floor(union.X0))-cropMargin,
		int(math.Floor(union.Y0))-cropMargin,
		int(math.Ceil(union.X1))+cropMargin,
		int(math.Ceil(union.Y1))+cropMargin,
	).Intersect(canvas.Bounds())
	if crop.Empty() {
		return nil, nil, fmt.Errorf("%w: layout produced an empty raster", entity.ErrRenderFailure)
	}

	raster := imaging.Crop(canvas, crop)
	w, h := float64(raster.Bounds().Dx()), float64(raster.Bounds().Dy())
	dx := float64(shift.X - crop.Min.X)
	dy := float64(shift.Y - crop.Min.Y)

	boxes := make(entity.Boxes, len(items))
	for i, it := range items {
		boxes[i] = it.box.Translate(dx, dy).Clamp(w, h)
	}
	return raster, boxes, nil
}
