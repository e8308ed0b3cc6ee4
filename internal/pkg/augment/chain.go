// Package augment applies the ordered augmentation operators to a text
// raster. Geometric operators move the boxes with the pixels; photometric
// ones only touch the pixels.
package augment

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/geom"
)

// Operator is one augmentation step. Apply returns fresh values and never
// modifies img or boxes.
type Operator interface {
	Name() string
	Enabled() bool
	Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error)
}

// Params carries one fully-sampled parameter set per operator. The zero
// value of every field disables that operator.
type Params struct {
	InkBleed    InkBleed           `json:"ink_bleed" mapstructure:"ink_bleed"`
	Canvas      Canvas             `json:"canvas" mapstructure:"canvas"`
	Rotation    Rotation           `json:"rotation" mapstructure:"rotation"`
	Perspective Perspective        `json:"perspective" mapstructure:"perspective"`
	Elastic     Elastic            `json:"elastic" mapstructure:"elastic"`
	Grid        Grid               `json:"grid" mapstructure:"grid"`
	Optical     Optical            `json:"optical" mapstructure:"optical"`
	Cutout      Cutout             `json:"cutout" mapstructure:"cutout"`
	Morphology  Morphology         `json:"morphology" mapstructure:"morphology"`
	Noise       Noise              `json:"noise" mapstructure:"noise"`
	Blur        Blur               `json:"blur" mapstructure:"blur"`
	Tone        BrightnessContrast `json:"brightness_contrast" mapstructure:"brightness_contrast"`
}

func (p Params) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"ink_bleed.sigma", p.InkBleed.Sigma >= 0},
		{"canvas.size", p.Canvas.Width >= 0 && p.Canvas.Height >= 0 && p.Canvas.Padding >= 0},
		{"canvas.placement", unit(p.Canvas.PlaceX) && unit(p.Canvas.PlaceY)},
		{"canvas.background", unit(p.Canvas.BackgroundX) && unit(p.Canvas.BackgroundY)},
		{"perspective.points", len(p.Perspective.Points) == 0 || len(p.Perspective.Points) == 4},
		{"perspective.magnitude", p.Perspective.Magnitude >= 0 && p.Perspective.Magnitude <= MaxPerspectiveMagnitude},
		{"elastic", p.Elastic.Alpha >= 0 && p.Elastic.Sigma >= 0},
		{"grid", p.Grid.Steps >= 0 && p.Grid.Limit >= 0 && p.Grid.Limit <= 0.5},
		{"cutout", p.Cutout.Count >= 0 && unit(p.Cutout.Size)},
		{"morphology.kernel", p.Morphology.Kernel >= 0},
		{"noise.sigma", p.Noise.Sigma >= 0},
		{"blur.sigma", p.Blur.Sigma >= 0},
		{"brightness_contrast", p.Tone.Brightness >= -100 && p.Tone.Brightness <= 100 && p.Tone.Contrast >= -100 && p.Tone.Contrast <= 100},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: augmentation %s out of range", entity.ErrInvalidArgument, c.name)
		}
	}
	if _, err := ParseMorphologyMode(string(p.Morphology.Mode)); err != nil {
		return err
	}
	if len(p.Perspective.Points) == 4 && !geom.ConvexQuad([4]entity.Point(p.Perspective.Points)) {
		return fmt.Errorf("%w: perspective points do not form a convex quadrilateral", entity.ErrInvalidArgument)
	}
	for i, v := range p.Perspective.Offsets {
		if !unit(v) {
			return fmt.Errorf("%w: perspective offset %d = %v", entity.ErrInvalidArgument, i, v)
		}
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// Chain runs the enabled operators in their fixed order.
type Chain struct {
	ops []Operator
}

// NewChain builds the chain for p. background may be nil.
func NewChain(p Params, background image.Image) (*Chain, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	all := []Operator{
		p.InkBleed,
		canvasOp{Canvas: p.Canvas, background: background},
		p.Rotation,
		p.Perspective,
		p.Elastic,
		p.Grid,
		p.Optical,
		p.Cutout,
		p.Morphology,
		p.Noise,
		p.Blur,
		p.Tone,
	}
	c := &Chain{}
	for _, op := range all {
		if op.Enabled() {
			c.ops = append(c.ops, op)
		}
	}
	return c, nil
}

// Operators lists the enabled operators in application order.
func (c *Chain) Operators() []Operator {
	return append([]Operator(nil), c.ops...)
}

func (c *Chain) Apply(img *image.NRGBA, boxes entity.Boxes, rng *rand.Rand) (*image.NRGBA, entity.Boxes, error) {
	for _, op := range c.ops {
		out, next, err := op.Apply(img, boxes, rng)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op.Name(), err)
		}
		if len(next) != len(boxes) {
			return nil, nil, fmt.Errorf("%w: %s changed box count %d -> %d", entity.ErrRenderFailure, op.Name(), len(boxes), len(next))
		}
		img, boxes = out, next
	}
	return img, boxes, nil
}

// clampAll keeps boxes inside img after a geometric step.
func clampAll(img *image.NRGBA, boxes entity.Boxes, fn func(entity.Point) entity.Point) entity.Boxes {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	return boxes.Map(func(b entity.CharacterBox) entity.CharacterBox {
		return b.Transform(fn).Clamp(w, h)
	})
}
