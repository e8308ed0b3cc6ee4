package augment

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

// displacement maps an output point p to D(p); the output pixel at p is
// read from the input at p - D(p). Box corners q move to q + D(q), with q
// clamped to the raster first.
type displacement func(x, y float64) (dx, dy float64)

func applyDisplacement(img *image.NRGBA, boxes entity.Boxes, d displacement) (*image.NRGBA, entity.Boxes) {
	out := remap(img, func(p entity.Point) entity.Point {
		dx, dy := d(p.X, p.Y)
		return entity.Point{X: p.X - dx, Y: p.Y - dy}
	})
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	move := func(p entity.Point) entity.Point {
		q := entity.Point{X: math.Max(0, math.Min(p.X, w)), Y: math.Max(0, math.Min(p.Y, h))}
		dx, dy := d(q.X, q.Y)
		return entity.Point{X: q.X + dx, Y: q.Y + dy}
	}
	return out, clampAll(out, boxes, move)
}

// Elastic is a per-pixel random field, Gaussian-smoothed with Sigma and
// scaled by Alpha pixels.
type Elastic struct {
	Alpha float64 `json:"alpha" mapstructure:"alpha"`
	Sigma float64 `json:"sigma" mapstructure:"sigma"`
}

func (Elastic) Name() string { return "elastic" }

func (o Elastic) Enabled() bool {
	return o.Alpha > 0 && o.Sigma > 0
}

func (o Elastic) Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	fx := make([]float64, w*h)
	fy := make([]float64, w*h)
	for i := range fx {
		fx[i] = rng.Float64()*2 - 1
		fy[i] = rng.Float64()*2 - 1
	}
	kernel := gaussianKernel(o.Sigma)
	fx = smooth(fx, w, h, kernel)
	fy = smooth(fy, w, h, kernel)

	field := func(x, y float64) (float64, float64) {
		i := clampInt(int(x), 0, w-1)
		j := clampInt(int(y), 0, h-1)
		k := j*w + i
		return o.Alpha * fx[k], o.Alpha * fy[k]
	}
	out, moved := applyDisplacement(img, boxes, field)
	return out, moved, nil
}

// Grid displaces the nodes of a Steps x Steps lattice by up to Limit of a
// cell and interpolates bilinearly in between.
type Grid struct {
	Steps int     `json:"steps" mapstructure:"steps"`
	Limit float64 `json:"limit" mapstructure:"limit"`
}

func (Grid) Name() string { return "grid" }

func (o Grid) Enabled() bool {
	return o.Steps > 0 && o.Limit > 0
}

func (o Grid) Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	n := o.Steps + 1
	cw, ch := w/float64(o.Steps), h/float64(o.Steps)
	nx := make([]float64, n*n)
	ny := make([]float64, n*n)
	for i := range nx {
		nx[i] = (rng.Float64()*2 - 1) * o.Limit * cw
		ny[i] = (rng.Float64()*2 - 1) * o.Limit * ch
	}

	field := func(x, y float64) (float64, float64) {
		gx, gy := x/cw, y/ch
		i := clampInt(int(math.Floor(gx)), 0, o.Steps-1)
		j := clampInt(int(math.Floor(gy)), 0, o.Steps-1)
		tx := math.Max(0, math.Min(1, gx-float64(i)))
		ty := math.Max(0, math.Min(1, gy-float64(j)))
		lerp := func(v []float64) float64 {
			top := v[j*n+i]*(1-tx) + v[j*n+i+1]*tx
			bottom := v[(j+1)*n+i]*(1-tx) + v[(j+1)*n+i+1]*tx
			return top*(1-ty) + bottom*ty
		}
		return lerp(nx), lerp(ny)
	}
	out, moved := applyDisplacement(img, boxes, field)
	return out, moved, nil
}

// Optical is radial lens distortion: K > 0 bulges the middle outward
// (barrel), K < 0 pinches it (pincushion).
type Optical struct {
	K float64 `json:"k" mapstructure:"k"`
}

func (Optical) Name() string { return "optical" }

func (o Optical) Enabled() bool { return o.K != 0 }

func (o Optical) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	cx, cy := w/2, h/2
	norm := math.Hypot(cx, cy)
	if norm == 0 {
		return img, boxes, nil
	}
	field := func(x, y float64) (float64, float64) {
		ux, uy := x-cx, y-cy
		r2 := (ux*ux + uy*uy) / (norm * norm)
		return -ux * o.K * r2, -uy * o.K * r2
	}
	out, moved := applyDisplacement(img, boxes, field)
	return out, moved, nil
}

func gaussianKernel(sigma float64) []float64 {
	radius := max(1, int(math.Ceil(3*sigma)))
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// smooth convolves a w x h field with k along both axes, clamping at the
// edges.
func smooth(field []float64, w, h int, k []float64) []float64 {
	radius := len(k) / 2
	tmp := make([]float64, len(field))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := 0.0
			for i, kv := range k {
				s += kv * field[y*w+clampInt(x+i-radius, 0, w-1)]
			}
			tmp[y*w+x] = s
		}
	}
	out := make([]float64, len(field))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := 0.0
			for i, kv := range k {
				s += kv * tmp[clampInt(y+i-radius, 0, h-1)*w+x]
			}
			out[y*w+x] = s
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
