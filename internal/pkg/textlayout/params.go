package textlayout

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ds124wfegd/ocrsynth/internal/entity"
)

type Direction string

const (
	LeftToRight Direction = "left_to_right"
	RightToLeft Direction = "right_to_left"
	TopToBottom Direction = "top_to_bottom"
	BottomToTop Direction = "bottom_to_top"
)

func ParseDirection(name string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(name)))
	switch d {
	case LeftToRight, RightToLeft, TopToBottom, BottomToTop:
		return d, nil
	}
	return "", fmt.Errorf("%w: unsupported direction %q", entity.ErrInvalidArgument, name)
}

func (d Direction) Vertical() bool {
	return d == TopToBottom || d == BottomToTop
}

// CurveKind is the path characters are placed along.
type CurveKind string

const (
	CurveNone CurveKind = "none"
	CurveArc  CurveKind = "arc"
	CurveSine CurveKind = "sine"
)

func ParseCurveKind(name string) (CurveKind, error) {
	k := CurveKind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case "":
		return CurveNone, nil
	case CurveNone, CurveArc, CurveSine:
		return k, nil
	}
	return "", fmt.Errorf("%w: unsupported curve kind %q", entity.ErrInvalidArgument, name)
}

// Curve holds the parameters of every curve kind; only the fields of Kind
// are read. Radius and amplitude are in pixels, frequency in radians per
// pixel, phase in radians.
type Curve struct {
	Kind      CurveKind `json:"kind" mapstructure:"kind"`
	Radius    float64   `json:"radius,omitempty" mapstructure:"radius"`
	Concave   bool      `json:"concave,omitempty" mapstructure:"concave"`
	Amplitude float64   `json:"amplitude,omitempty" mapstructure:"amplitude"`
	Frequency float64   `json:"frequency,omitempty" mapstructure:"frequency"`
	Phase     float64   `json:"phase,omitempty" mapstructure:"phase"`
}

type ColorMode string

const (
	ColorUniform  ColorMode = "uniform"
	ColorPerGlyph ColorMode = "per_glyph"
	ColorGradient ColorMode = "gradient"
)

func ParseColorMode(name string) (ColorMode, error) {
	m := ColorMode(strings.ToLower(strings.TrimSpace(name)))
	switch m {
	case "":
		return ColorUniform, nil
	case ColorUniform, ColorPerGlyph, ColorGradient:
		return m, nil
	}
	return "", fmt.Errorf("%w: unsupported color mode %q", entity.ErrInvalidArgument, name)
}

type RGB struct {
	R uint8 `json:"r" mapstructure:"r"`
	G uint8 `json:"g" mapstructure:"g"`
	B uint8 `json:"b" mapstructure:"b"`
}

func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Colors describes how glyphs are tinted. Uniform reads Palette[0],
// per_glyph cycles through Palette, gradient blends Palette[0] into
// Palette[1] across the text. An empty palette means black.
type Colors struct {
	Mode    ColorMode `json:"mode" mapstructure:"mode"`
	Palette []RGB     `json:"palette,omitempty" mapstructure:"palette"`
}

// At returns the color of the i-th of n glyphs in logical order.
func (c Colors) At(i, n int) color.NRGBA {
	if len(c.Palette) == 0 {
		return color.NRGBA{A: 255}
	}
	switch c.Mode {
	case ColorPerGlyph:
		return c.Palette[i%len(c.Palette)].NRGBA()
	case ColorGradient:
		if len(c.Palette) < 2 || n < 2 {
			return c.Palette[0].NRGBA()
		}
		t := float64(i) / float64(n-1)
		a, b := c.Palette[0], c.Palette[1]
		return color.NRGBA{
			R: lerp8(a.R, b.R, t),
			G: lerp8(a.G, b.G, t),
			B: lerp8(a.B, b.B, t),
			A: 255,
		}
	}
	return c.Palette[0].NRGBA()
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Params is everything Layout needs besides the text and the font.
type Params struct {
	Direction Direction `json:"direction" mapstructure:"direction"`
	FontSize  float64   `json:"font_size" mapstructure:"font_size"`
	Curve     Curve     `json:"curve" mapstructure:"curve"`
	Overlap   float64   `json:"overlap,omitempty" mapstructure:"overlap"`
	Colors    Colors    `json:"colors" mapstructure:"colors"`
}

func (p Params) Validate() error {
	if _, err := ParseDirection(string(p.Direction)); err != nil {
		return err
	}
	if _, err := ParseCurveKind(string(p.Curve.Kind)); err != nil {
		return err
	}
	if _, err := ParseColorMode(string(p.Colors.Mode)); err != nil {
		return err
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("%w: font size %v", entity.ErrInvalidArgument, p.FontSize)
	}
	if p.Overlap < 0 || p.Overlap > 1 {
		return fmt.Errorf("%w: overlap %v outside [0,1]", entity.ErrInvalidArgument, p.Overlap)
	}
	if p.Curve.Radius < 0 {
		return fmt.Errorf("%w: negative arc radius %v", entity.ErrInvalidArgument, p.Curve.Radius)
	}
	return nil
}
