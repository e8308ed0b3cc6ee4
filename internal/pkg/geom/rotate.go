// Package geom holds the point mappings shared by the layout and the
// augmentation operators, so boxes follow exactly what imaging does to
// the pixels.
package geom

import (
	"image"
	"math"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

// RotationMap returns the mapping from a point of src to the output of
// imaging.Rotate(src, angle, ...), whose bounds are dst. Angles are in
// degrees, counter-clockwise, as imaging takes them.
func RotationMap(src, dst image.Rectangle, angle float64) func(entity.Point) entity.Point {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	scx, scy := float64(src.Dx())/2, float64(src.Dy())/2
	dcx, dcy := float64(dst.Dx())/2, float64(dst.Dy())/2
	return func(p entity.Point) entity.Point {
		sx, sy := p.X-scx, p.Y-scy
		return entity.Point{
			X: sx*cos + sy*sin + dcx,
			Y: -sx*sin + sy*cos + dcy,
		}
	}
}
