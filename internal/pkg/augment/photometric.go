package augment

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"gonum.org/v1/gonum/stat/distuv"
)

// InkBleed softens the glyph edges before the text is placed.
type InkBleed struct {
	Sigma float64 `json:"sigma" mapstructure:"sigma"`
}

func (InkBleed) Name() string { return "ink_bleed" }
func (o InkBleed) Enabled() bool { return o.Sigma > 0 }

func (o InkBleed) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	return imaging.Blur(img, o.Sigma), boxes, nil
}

type Blur struct {
	Sigma float64 `json:"sigma" mapstructure:"sigma"`
}

func (Blur) Name() string { return "blur" }
func (o Blur) Enabled() bool { return o.Sigma > 0 }

func (o Blur) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	return imaging.Blur(img, o.Sigma), boxes, nil
}

// BrightnessContrast takes percentages in [-100, 100].
type BrightnessContrast struct {
	Brightness float64 `json:"brightness" mapstructure:"brightness"`
	Contrast   float64 `json:"contrast" mapstructure:"contrast"`
}

func (BrightnessContrast) Name() string { return "brightness_contrast" }

func (o BrightnessContrast) Enabled() bool {
	return o.Brightness != 0 || o.Contrast != 0
}

func (o BrightnessContrast) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	out := img
	if o.Brightness != 0 {
		out = imaging.AdjustBrightness(out, o.Brightness)
	}
	if o.Contrast != 0 {
		out = imaging.AdjustContrast(out, o.Contrast)
	}
	return out, boxes, nil
}

// Noise adds zero-mean Gaussian noise, Sigma in 8-bit levels, to the
// color channels.
type Noise struct {
	Sigma float64 `json:"sigma" mapstructure:"sigma"`
}

func (Noise) Name() string { return "noise" }
func (o Noise) Enabled() bool { return o.Sigma > 0 }

func (o Noise) Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	out := imaging.Clone(img)
	dist := distuv.Normal{Mu: 0, Sigma: o.Sigma, Src: rng}
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = clamp8(float64(out.Pix[i+c]) + dist.Rand())
		}
	}
	return out, boxes, nil
}

// Cutout paints Count opaque squares of side Size*min(w,h) with gray Fill.
type Cutout struct {
	Count int     `json:"count" mapstructure:"count"`
	Size  float64 `json:"size" mapstructure:"size"`
	Fill  uint8   `json:"fill" mapstructure:"fill"`
}

func (Cutout) Name() string { return "cutout" }

func (o Cutout) Enabled() bool {
	return o.Count > 0 && o.Size > 0
}

func (o Cutout) Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	out := imaging.Clone(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	side := max(1, int(math.Round(o.Size*float64(min(w, h)))))
	fill := image.NewUniform(color.NRGBA{R: o.Fill, G: o.Fill, B: o.Fill, A: 255})
	for range o.Count {
		x := rng.IntN(max(1, w-side+1))
		y := rng.IntN(max(1, h-side+1))
		draw.Draw(out, image.Rect(x, y, x+side, y+side), fill, image.Point{}, draw.Src)
	}
	return out, boxes, nil
}

type MorphologyMode string

const (
	Erode  MorphologyMode = "erode"
	Dilate MorphologyMode = "dilate"
)

func ParseMorphologyMode(name string) (MorphologyMode, error) {
	m := MorphologyMode(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case "":
		return Erode, nil
	case Erode, Dilate:
		return m, nil
	}
	return "", fmt.Errorf("%w: unsupported morphology mode %q", entity.ErrInvalidArgument, name)
}

// Morphology takes the channel-wise minimum (erode) or maximum (dilate)
// over a Kernel x Kernel square.
type Morphology struct {
	Mode   MorphologyMode `json:"mode" mapstructure:"mode"`
	Kernel int            `json:"kernel" mapstructure:"kernel"`
}

func (Morphology) Name() string { return "morphology" }
func (o Morphology) Enabled() bool { return o.Kernel > 1 }

func (o Morphology) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	mode, err := ParseMorphologyMode(string(o.Mode))
	if err != nil {
		return nil, nil, err
	}
	pick := func(a, b uint8) uint8 { return min(a, b) }
	if mode == Dilate {
		pick = func(a, b uint8) uint8 { return max(a, b) }
	}
	lo, hi := -(o.Kernel-1)/2, o.Kernel/2
	src := imaging.Clone(img)
	tmp := morphPass(src, lo, hi, 1, 0, pick)
	return morphPass(tmp, lo, hi, 0, 1, pick), boxes, nil
}

func morphPass(src *image.NRGBA, lo, hi, dx, dy int, pick func(a, b uint8) uint8) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := y*dst.Stride + x*4
			first := true
			for k := lo; k <= hi; k++ {
				sx, sy := x+k*dx, y+k*dy
				if sx < 0 || sy < 0 || sx >= w || sy >= h {
					continue
				}
				s := sy*src.Stride + sx*4
				for c := 0; c < 4; c++ {
					if first {
						dst.Pix[o+c] = src.Pix[s+c]
					} else {
						dst.Pix[o+c] = pick(dst.Pix[o+c], src.Pix[s+c])
					}
				}
				first = false
			}
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
