package geom

import (
	"fmt"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"gonum.org/v1/gonum/mat"
)

// Homography is a row-major 3x3 projective transform with H[8] == 1.
//
// Products are wrapped in float64() so the compiler never fuses them into
// FMA instructions; box coordinates must come out bit-identical on every
// platform.
type Homography [9]float64

// RectToQuad maps the w x h rectangle with corners (0,0), (w,0), (w,h),
// (0,h) onto dst, given in the same clockwise order. dst must be a convex
// quadrilateral; anything else folds the raster and is rejected.
func RectToQuad(w, h float64, dst [4]entity.Point) (Homography, error) {
	if w <= 0 || h <= 0 {
		return Homography{}, fmt.Errorf("%w: empty source rectangle %vx%v", entity.ErrInvalidArgument, w, h)
	}
	if !ConvexQuad(dst) {
		return Homography{}, fmt.Errorf("%w: destination is not a convex quadrilateral", entity.ErrInvalidArgument)
	}
	x0, y0 := dst[0].X, dst[0].Y
	x1, y1 := dst[1].X, dst[1].Y
	x2, y2 := dst[2].X, dst[2].Y
	x3, y3 := dst[3].X, dst[3].Y

	// unit square to quad, then scale the square up to w x h
	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3
	var g, k float64
	if sx != 0 || sy != 0 {
		dx1, dx2 := x1-x2, x3-x2
		dy1, dy2 := y1-y2, y3-y2
		den := float64(dx1*dy2) - float64(dx2*dy1)
		g = (float64(sx*dy2) - float64(dx2*sy)) / den
		k = (float64(dx1*sy) - float64(sx*dy1)) / den
	}
	a := x1 - x0 + float64(g*x1)
	b := x3 - x0 + float64(k*x3)
	d := y1 - y0 + float64(g*y1)
	e := y3 - y0 + float64(k*y3)

	return Homography{
		a / w, b / h, x0,
		d / w, e / h, y0,
		g / w, k / h, 1,
	}, nil
}

// ConvexQuad reports whether q, taken in order, turns the same way at
// every corner without any zero-area turn.
func ConvexQuad(q [4]entity.Point) bool {
	var sign float64
	for i := range q {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 || cross*sign < 0 {
			return false
		}
		sign = cross
	}
	return true
}

func (h Homography) Apply(p entity.Point) entity.Point {
	w := float64(h[6]*p.X) + float64(h[7]*p.Y) + h[8]
	return entity.Point{
		X: (float64(h[0]*p.X) + float64(h[1]*p.Y) + h[2]) / w,
		Y: (float64(h[3]*p.X) + float64(h[4]*p.Y) + h[5]) / w,
	}
}

// Inverse returns the inverse transform, normalized so that H[8] == 1.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("%w: singular homography: %v", entity.ErrInvalidArgument, err)
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if out[8] != 0 {
		s := out[8]
		for i := range out {
			out[i] /= s
		}
	}
	return out, nil
}
