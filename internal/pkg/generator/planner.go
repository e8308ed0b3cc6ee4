package generator

import (
	"github.com/ds124wfegd/ocrsynth/internal/pkg/augment"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/sampler"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/textlayout"
)

// Planner samples Plans from one Specification. It holds no mutable
// state and is safe for concurrent use.
type Planner struct {
	spec     Specification
	baseSeed uint64
}

func NewPlanner(spec Specification, baseSeed uint64) (*Planner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Planner{spec: spec, baseSeed: baseSeed}, nil
}

func (p *Planner) Specification() Specification {
	return p.spec
}

// Seed is the plan seed of the index-th unit of work.
func (p *Planner) Seed(index uint64) uint64 {
	return sampler.DeriveSeed(p.baseSeed, index)
}

// Plan samples every parameter once. background may be empty.
func (p *Planner) Plan(index uint64, text, font, background string) (Plan, error) {
	return NewPlan(p.spec, p.Seed(index), text, font, background)
}

// NewPlan samples a plan from spec with the given seed. It renders
// nothing.
func NewPlan(spec Specification, seed uint64, text, font, background string) (Plan, error) {
	d := draws{s: sampler.New(seed)}

	plan := Plan{
		Version:    PlanVersion,
		Seed:       seed,
		Text:       text,
		Font:       font,
		Background: background,
	}
	plan.Layout = d.layout(spec, len([]rune(text)))
	plan.Augment = d.augment(spec, background != "")
	if d.err != nil {
		return Plan{}, d.err
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// draws keeps the first sampling error so the fixed call order stays
// readable.
type draws struct {
	s   *sampler.Sampler
	err error
}

func (d *draws) value(r sampler.Range) float64 {
	if d.err != nil {
		return 0
	}
	v, err := d.s.SampleRange(r)
	d.err = err
	return v
}

func (d *draws) integer(r sampler.Range) int {
	if d.err != nil {
		return 0
	}
	v, err := d.s.Int(r)
	d.err = err
	return v
}

func (d *draws) pick(options []string) string {
	if d.err != nil {
		return ""
	}
	i, err := d.s.Choice(len(options))
	if err != nil {
		d.err = err
		return ""
	}
	return options[i]
}

func (d *draws) color(r sampler.Range) textlayout.RGB {
	return textlayout.RGB{
		R: uint8(min(255, max(0, d.integer(r)))),
		G: uint8(min(255, max(0, d.integer(r)))),
		B: uint8(min(255, max(0, d.integer(r)))),
	}
}

func (d *draws) layout(spec Specification, glyphs int) textlayout.Params {
	lp := textlayout.Params{
		Direction: textlayout.Direction(d.pick(spec.Directions)),
		FontSize:  d.value(spec.FontSize),
		Overlap:   d.value(spec.Overlap),
	}

	lp.Curve.Kind = textlayout.CurveKind(d.pick(spec.CurveKinds))
	switch lp.Curve.Kind {
	case textlayout.CurveArc:
		lp.Curve.Radius = d.value(spec.ArcRadius)
		lp.Curve.Concave = d.s.Bool(spec.Concave)
	case textlayout.CurveSine:
		lp.Curve.Amplitude = d.value(spec.SineAmplitude)
		lp.Curve.Frequency = d.value(spec.SineFrequency)
		lp.Curve.Phase = d.value(spec.SinePhase)
	}

	lp.Colors.Mode = textlayout.ColorMode(d.pick(spec.ColorModes))
	n := 1
	switch lp.Colors.Mode {
	case textlayout.ColorGradient:
		n = 2
	case textlayout.ColorPerGlyph:
		n = max(1, glyphs)
	}
	for range n {
		lp.Colors.Palette = append(lp.Colors.Palette, d.color(spec.TextColor))
	}
	return lp
}

func (d *draws) augment(spec Specification, background bool) augment.Params {
	var ap augment.Params
	ap.InkBleed.Sigma = max(0, d.value(spec.InkBleed))

	ap.Canvas = augment.Canvas{
		Width:   d.integer(spec.CanvasWidth),
		Height:  d.integer(spec.CanvasHeight),
		Padding: d.integer(spec.CanvasPadding),
		PlaceX:  unitClip(d.value(spec.Placement)),
		PlaceY:  unitClip(d.value(spec.Placement)),
	}
	if background {
		ap.Canvas.BackgroundX = d.s.Rand().Float64()
		ap.Canvas.BackgroundY = d.s.Rand().Float64()
	}

	ap.Rotation.Angle = d.value(spec.Rotation)

	ap.Perspective.Magnitude = min(augment.MaxPerspectiveMagnitude, max(0, d.value(spec.Perspective)))
	if ap.Perspective.Magnitude > 0 {
		ap.Perspective.Offsets = make([]float64, 8)
		for i := range ap.Perspective.Offsets {
			ap.Perspective.Offsets[i] = d.s.Rand().Float64()
		}
	}

	ap.Elastic.Alpha = max(0, d.value(spec.ElasticAlpha))
	ap.Elastic.Sigma = max(0, d.value(spec.ElasticSigma))
	ap.Grid.Steps = max(0, d.integer(spec.GridSteps))
	ap.Grid.Limit = min(0.5, max(0, d.value(spec.GridLimit)))
	ap.Optical.K = d.value(spec.Optical)

	ap.Cutout.Count = max(0, d.integer(spec.CutoutCount))
	if ap.Cutout.Count > 0 {
		ap.Cutout.Size = unitClip(d.value(spec.CutoutSize))
		ap.Cutout.Fill = uint8(min(255, max(0, d.integer(spec.CutoutFill))))
	}

	ap.Morphology.Kernel = max(0, d.integer(spec.MorphologyKernel))
	if ap.Morphology.Kernel > 1 && len(spec.MorphologyModes) > 0 {
		ap.Morphology.Mode = augment.MorphologyMode(d.pick(spec.MorphologyModes))
	}

	ap.Noise.Sigma = max(0, d.value(spec.Noise))
	ap.Blur.Sigma = max(0, d.value(spec.Blur))
	ap.Tone.Brightness = min(100, max(-100, d.value(spec.Brightness)))
	ap.Tone.Contrast = min(100, max(-100, d.value(spec.Contrast)))
	return ap
}

func unitClip(v float64) float64 {
	return min(1, max(0, v))
}
