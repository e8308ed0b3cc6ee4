package generator

import (
	"fmt"
	"math"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/augment"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/sampler"
	"github.com/ds124wfegd/ocrsynth/internal/pkg/textlayout"
)

// Specification is the read-only description Plans are sampled from.
// Selector lists are picked uniformly; repeat an entry to weight it.
type Specification struct {
	Name string `json:"name" mapstructure:"name"`

	FontSize   sampler.Range `json:"font_size" mapstructure:"font_size"`
	Directions []string      `json:"directions" mapstructure:"directions"`
	CurveKinds []string      `json:"curve_kinds" mapstructure:"curve_kinds"`
	ArcRadius  sampler.Range `json:"arc_radius" mapstructure:"arc_radius"`
	// Concave is the probability an arc bends upward.
	Concave       float64       `json:"concave" mapstructure:"concave"`
	SineAmplitude sampler.Range `json:"sine_amplitude" mapstructure:"sine_amplitude"`
	SineFrequency sampler.Range `json:"sine_frequency" mapstructure:"sine_frequency"`
	SinePhase     sampler.Range `json:"sine_phase" mapstructure:"sine_phase"`
	Overlap       sampler.Range `json:"overlap" mapstructure:"overlap"`
	ColorModes    []string      `json:"color_modes" mapstructure:"color_modes"`
	TextColor     sampler.Range `json:"text_color" mapstructure:"text_color"`

	CanvasWidth   sampler.Range `json:"canvas_width" mapstructure:"canvas_width"`
	CanvasHeight  sampler.Range `json:"canvas_height" mapstructure:"canvas_height"`
	CanvasPadding sampler.Range `json:"canvas_padding" mapstructure:"canvas_padding"`
	Placement     sampler.Range `json:"placement" mapstructure:"placement"`

	InkBleed         sampler.Range `json:"ink_bleed" mapstructure:"ink_bleed"`
	Rotation         sampler.Range `json:"rotation" mapstructure:"rotation"`
	Perspective      sampler.Range `json:"perspective" mapstructure:"perspective"`
	ElasticAlpha     sampler.Range `json:"elastic_alpha" mapstructure:"elastic_alpha"`
	ElasticSigma     sampler.Range `json:"elastic_sigma" mapstructure:"elastic_sigma"`
	GridSteps        sampler.Range `json:"grid_steps" mapstructure:"grid_steps"`
	GridLimit        sampler.Range `json:"grid_limit" mapstructure:"grid_limit"`
	Optical          sampler.Range `json:"optical" mapstructure:"optical"`
	CutoutCount      sampler.Range `json:"cutout_count" mapstructure:"cutout_count"`
	CutoutSize       sampler.Range `json:"cutout_size" mapstructure:"cutout_size"`
	CutoutFill       sampler.Range `json:"cutout_fill" mapstructure:"cutout_fill"`
	MorphologyKernel sampler.Range `json:"morphology_kernel" mapstructure:"morphology_kernel"`
	MorphologyModes  []string      `json:"morphology_modes" mapstructure:"morphology_modes"`
	Noise            sampler.Range `json:"noise" mapstructure:"noise"`
	Blur             sampler.Range `json:"blur" mapstructure:"blur"`
	Brightness       sampler.Range `json:"brightness" mapstructure:"brightness"`
	Contrast         sampler.Range `json:"contrast" mapstructure:"contrast"`
}

func DefaultSpecification() Specification {
	return Specification{
		Name:          "default",
		FontSize:      sampler.Between(24, 48, sampler.Uniform),
		Directions:    []string{string(textlayout.LeftToRight)},
		CurveKinds:    []string{string(textlayout.CurveNone), string(textlayout.CurveNone), string(textlayout.CurveArc), string(textlayout.CurveSine)},
		ArcRadius:     sampler.Between(150, 600, sampler.Uniform),
		Concave:       0.5,
		SineAmplitude: sampler.Between(2, 8, sampler.Uniform),
		SineFrequency: sampler.Between(0.02, 0.08, sampler.Uniform),
		SinePhase:     sampler.Between(0, 2*math.Pi, sampler.Uniform),
		Overlap:       sampler.Between(0, 0.15, sampler.Exponential),
		ColorModes:    []string{string(textlayout.ColorUniform)},
		TextColor:     sampler.Between(0, 80, sampler.Uniform),

		CanvasPadding: sampler.Between(4, 24, sampler.Uniform),
		Placement:     sampler.Between(0, 1, sampler.Uniform),

		InkBleed:         sampler.Between(0, 1, sampler.Exponential),
		Rotation:         sampler.Between(-5, 5, sampler.Normal),
		Perspective:      sampler.Between(0, 0.08, sampler.Exponential),
		ElasticAlpha:     sampler.Between(0, 3, sampler.Exponential),
		ElasticSigma:     sampler.Fixed(4),
		GridSteps:        sampler.Fixed(4),
		GridLimit:        sampler.Between(0, 0.1, sampler.Exponential),
		Optical:          sampler.Between(-0.1, 0.1, sampler.Normal),
		CutoutSize:       sampler.Between(0.05, 0.15, sampler.Uniform),
		CutoutFill:       sampler.Between(96, 160, sampler.Uniform),
		MorphologyModes:  []string{string(augment.Erode), string(augment.Dilate)},
		Noise:            sampler.Between(0, 8, sampler.Exponential),
		Blur:             sampler.Between(0, 1.5, sampler.Exponential),
		Brightness:       sampler.Between(-15, 15, sampler.Normal),
		Contrast:         sampler.Between(-15, 15, sampler.Normal),
	}
}

func (s Specification) Validate() error {
	ranges := map[string]sampler.Range{
		"font_size": s.FontSize, "arc_radius": s.ArcRadius,
		"sine_amplitude": s.SineAmplitude, "sine_frequency": s.SineFrequency, "sine_phase": s.SinePhase,
		"overlap": s.Overlap, "text_color": s.TextColor,
		"canvas_width": s.CanvasWidth, "canvas_height": s.CanvasHeight, "canvas_padding": s.CanvasPadding,
		"placement": s.Placement, "ink_bleed": s.InkBleed, "rotation": s.Rotation,
		"perspective": s.Perspective, "elastic_alpha": s.ElasticAlpha, "elastic_sigma": s.ElasticSigma,
		"grid_steps": s.GridSteps, "grid_limit": s.GridLimit, "optical": s.Optical,
		"cutout_count": s.CutoutCount, "cutout_size": s.CutoutSize, "cutout_fill": s.CutoutFill,
		"morphology_kernel": s.MorphologyKernel, "noise": s.Noise, "blur": s.Blur,
		"brightness": s.Brightness, "contrast": s.Contrast,
	}
	for name, r := range ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("specification %s: %w", name, err)
		}
	}
	if s.FontSize.Min <= 0 {
		return fmt.Errorf("%w: specification font_size must be positive", entity.ErrInvalidArgument)
	}
	if s.Concave < 0 || s.Concave > 1 {
		return fmt.Errorf("%w: specification concave probability %v", entity.ErrInvalidArgument, s.Concave)
	}

	if len(s.Directions) == 0 || len(s.CurveKinds) == 0 || len(s.ColorModes) == 0 {
		return fmt.Errorf("%w: specification needs directions, curve_kinds and color_modes", entity.ErrInvalidArgument)
	}
	for _, d := range s.Directions {
		if _, err := textlayout.ParseDirection(d); err != nil {
			return err
		}
	}
	for _, k := range s.CurveKinds {
		if _, err := textlayout.ParseCurveKind(k); err != nil {
			return err
		}
	}
	for _, m := range s.ColorModes {
		if _, err := textlayout.ParseColorMode(m); err != nil {
			return err
		}
	}
	for _, m := range s.MorphologyModes {
		if _, err := augment.ParseMorphologyMode(m); err != nil {
			return err
		}
	}
	return nil
}
