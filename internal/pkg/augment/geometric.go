package augment

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/geom"
)

// Rotation turns the raster counter-clockwise by Angle degrees; the output
// grows to the rotated bounding rectangle.
type Rotation struct {
	Angle float64 `json:"angle" mapstructure:"angle"`
}

func (Rotation) Name() string { return "rotation" }
func (o Rotation) Enabled() bool { return o.Angle != 0 }

func (o Rotation) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	out := imaging.Rotate(img, o.Angle, color.Transparent)
	fn := geom.RotationMap(img.Bounds(), out.Bounds(), o.Angle)
	return out, clampAll(out, boxes, fn), nil
}

// MaxPerspectiveMagnitude keeps random destination quads convex: below a
// third of the raster size no corner can cross the diagonal of its
// neighbours.
const MaxPerspectiveMagnitude = 0.3

// Perspective warps the raster so its corners land on a destination
// quadrilateral (clockwise from top-left). Points, when set, are used
// as-is. Otherwise every corner moves inward by Offsets (x, y pairs in
// [0,1]) times Magnitude times the raster size.
type Perspective struct {
	Magnitude float64        `json:"magnitude" mapstructure:"magnitude"`
	Offsets   []float64      `json:"offsets,omitempty" mapstructure:"offsets"`
	Points    []entity.Point `json:"points,omitempty" mapstructure:"points"`
}

func (Perspective) Name() string { return "perspective" }

func (o Perspective) Enabled() bool {
	return len(o.Points) == 4 || o.Magnitude > 0
}

func (o Perspective) destination(w, h float64) [4]entity.Point {
	var dst [4]entity.Point
	if len(o.Points) == 4 {
		copy(dst[:], o.Points)
		return dst
	}
	corners := [4]entity.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	inward := [4][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	for i, c := range corners {
		var ox, oy float64
		if 2*i+1 < len(o.Offsets) {
			ox, oy = o.Offsets[2*i], o.Offsets[2*i+1]
		}
		dst[i] = entity.Point{
			X: c.X + inward[i][0]*ox*o.Magnitude*w,
			Y: c.Y + inward[i][1]*oy*o.Magnitude*h,
		}
	}
	return dst
}

// Homography returns the transform applied to a w x h raster.
func (o Perspective) Homography(w, h float64) (geom.Homography, error) {
	return geom.RectToQuad(w, h, o.destination(w, h))
}

func (o Perspective) Apply(img *image.NRGBA, boxes entity.Boxes, _ *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	hm, err := o.Homography(w, h)
	if err != nil {
		return nil, nil, err
	}
	inv, err := hm.Inverse()
	if err != nil {
		return nil, nil, err
	}
	out := remap(img, inv.Apply)
	return out, clampAll(out, boxes, hm.Apply), nil
}
