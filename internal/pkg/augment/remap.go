package augment

import (
	"image"
	"math"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

// remap builds an image the size of src whose pixel centered at p is src
// sampled bilinearly at source(p). Samples outside src are transparent.
func remap(src *image.NRGBA, source func(entity.Point) entity.Point) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := source(entity.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5})
			o := y*dst.Stride + x*4
			bilinear(src, p.X, p.Y, dst.Pix[o:o+4])
		}
	}
	return dst
}

// bilinear interpolates in premultiplied space so transparent neighbours
// do not darken edges.
func bilinear(src *image.NRGBA, x, y float64, out []uint8) {
	b := src.Bounds()
	fx, fy := x-0.5, y-0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	var r, g, bl, a float64
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			wgt := (1 - tx) * (1 - ty)
			switch {
			case i == 1 && j == 0:
				wgt = tx * (1 - ty)
			case i == 0 && j == 1:
				wgt = (1 - tx) * ty
			case i == 1 && j == 1:
				wgt = tx * ty
			}
			px, py := x0+i, y0+j
			if wgt == 0 || !image.Pt(px+b.Min.X, py+b.Min.Y).In(b) {
				continue
			}
			s := src.PixOffset(px+b.Min.X, py+b.Min.Y)
			pa := float64(src.Pix[s+3])
			r += wgt * float64(src.Pix[s]) * pa
			g += wgt * float64(src.Pix[s+1]) * pa
			bl += wgt * float64(src.Pix[s+2]) * pa
			a += wgt * pa
		}
	}
	if a <= 0 {
		out[0], out[1], out[2], out[3] = 0, 0, 0, 0
		return
	}
	out[0] = clamp8(r / a)
	out[1] = clamp8(g / a)
	out[2] = clamp8(bl / a)
	out[3] = clamp8(a)
}
