package augment

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

// Canvas places the text raster on a larger canvas. The canvas is at least
// Width x Height and at least the raster plus Padding on every side. The
// raster sits at fraction (PlaceX, PlaceY) of the free space. A background
// is resized to cover the canvas and cropped at (BackgroundX, BackgroundY).
type Canvas struct {
	Width       int     `json:"width" mapstructure:"width"`
	Height      int     `json:"height" mapstructure:"height"`
	Padding     int     `json:"padding" mapstructure:"padding"`
	PlaceX      float64 `json:"place_x" mapstructure:"place_x"`
	PlaceY      float64 `json:"place_y" mapstructure:"place_y"`
	BackgroundX float64 `json:"background_x" mapstructure:"background_x"`
	BackgroundY float64 `json:"background_y" mapstructure:"background_y"`
}

type canvasOp struct {
	Canvas
	background image.Image
}

func (canvasOp) Name() string { return "canvas" }

func (o canvasOp) Enabled() bool {
	return o.Width > 0 || o.Height > 0 || o.Padding > 0 || o.background != nil
}

func (o canvasOp) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	w := max(o.Width, iw+2*o.Padding)
	h := max(o.Height, ih+2*o.Padding)

	base := o.base(w, h)
	x := int(math.Round(o.PlaceX * float64(w-iw)))
	y := int(math.Round(o.PlaceY * float64(h-ih)))
	out := imaging.Overlay(base, img, image.Pt(x, y), 1.0)

	return out, boxes.Map(func(b entity.CharacterBox) entity.CharacterBox {
		return b.Translate(float64(x), float64(y))
	}), nil
}

func (o canvasOp) base(w, h int) *image.NRGBA {
	if o.background == nil {
		return imaging.New(w, h, color.Transparent)
	}
	bw, bh := o.background.Bounds().Dx(), o.background.Bounds().Dy()
	if bw == 0 || bh == 0 {
		return imaging.New(w, h, color.Transparent)
	}

	scale := math.Max(float64(w)/float64(bw), float64(h)/float64(bh))
	rw := max(w, int(math.Ceil(float64(bw)*scale)))
	rh := max(h, int(math.Ceil(float64(bh)*scale)))
	resized := imaging.Resize(o.background, rw, rh, imaging.Linear)

	cx := int(math.Round(o.BackgroundX * float64(rw-w)))
	cy := int(math.Round(o.BackgroundY * float64(rh-h)))
	return imaging.Crop(resized, image.Rect(cx, cy, cx+w, cy+h))
}
