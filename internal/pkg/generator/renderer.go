// Package generator turns a Specification into Plans and replays Plans
// into labeled images.
package generator

import (
	"fmt"
	"image"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/augment"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/sampler"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/textlayout"
)

// Assets resolves the font and background names a plan refers to. Lookups
// must be in-memory; Render does no I/O of its own.
type Assets interface {
	Font(name string) (*textlayout.Font, error)
	Background(name string) (image.Image, error)
}

// Renderer replays plans. It is safe for concurrent use as long as Assets
// is.
type Renderer struct {
	assets Assets
}

func NewRenderer(assets Assets) *Renderer {
	return &Renderer{assets: assets}
}

// Render draws plan. The output depends only on plan and the assets it
// names: the render stream is seeded from plan.Seed before anything else.
func (r *Renderer) Render(plan Plan) (*image.NRGBA, entity.Boxes, error) {
	rng := sampler.NewRand(plan.Seed, sampler.RenderStream)

	if err := plan.Validate(); err != nil {
		return nil, nil, err
	}
	font, err := r.assets.Font(plan.Font)
	if err != nil {
		return nil, nil, err
	}
	var background image.Image
	if plan.Background != "" {
		if background, err = r.assets.Background(plan.Background); err != nil {
			return nil, nil, err
		}
	}

	img, boxes, err := textlayout.Layout(plan.Text, font, plan.Layout)
	if err != nil {
		return nil, nil, fmt.Errorf("layout: %w", err)
	}
	chain, err := augment.NewChain(plan.Augment, background)
	if err != nil {
		return nil, nil, err
	}
	return chain.Apply(img, boxes, rng)
}
