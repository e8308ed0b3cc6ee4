package augment

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/ocrsynth/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillImageWithColor(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// textImage is a white raster with one black block per box.
func textImage(w, h int, boxes entity.Boxes) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fillImageWithColor(img, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for _, b := range boxes {
		for y := int(b.Y0); y < int(b.Y1); y++ {
			for x := int(b.X0); x < int(b.X1); x++ {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return img
}

func testBoxes() entity.Boxes {
	return entity.Boxes{
		{Char: "a", X0: 10, Y0: 10, X1: 30, Y1: 40},
		{Char: "b", X0: 35, Y0: 12, X1: 55, Y1: 40},
		{Char: "c", X0: 60, Y0: 5, X1: 80, Y1: 45},
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestPerspectiveGolden(t *testing.T) {
	img := textImage(200, 100, nil)
	boxes := entity.Boxes{{Char: "x", X0: 50, Y0: 30, X1: 80, Y1: 70}}
	op := Perspective{Points: []entity.Point{{X: 10, Y: 10}, {X: 190, Y: 0}, {X: 180, Y: 90}, {X: 0, Y: 80}}}

	out, warped, err := op.Apply(img, boxes, newRand())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), out.Bounds())
	require.Len(t, warped, 1)

	assert.Equal(t, entity.CharacterBox{
		Char: "x",
		X0:   40.065530799475745,
		Y0:   29.412162162162165,
		X1:   68.52027027027026,
		Y1:   60.142663043478265,
	}, warped[0])
}

func TestPerspectiveHomography(t *testing.T) {
	op := Perspective{Points: []entity.Point{{X: 10, Y: 10}, {X: 190, Y: 0}, {X: 180, Y: 90}, {X: 0, Y: 80}}}
	h, err := op.Homography(200, 100)
	require.NoError(t, err)

	want := [9]float64{
		0.6901840490797545, -0.1, 10,
		-0.05, 0.6901840490797546, 10,
		-0.0011042944785276073, -0.0001226993865030675, 1,
	}
	assert.Equal(t, want, [9]float64(h))
}

func TestIdentityLaw(t *testing.T) {
	img := textImage(100, 50, testBoxes())
	boxes := testBoxes()

	chain, err := NewChain(Params{}, nil)
	require.NoError(t, err)
	assert.Empty(t, chain.Operators())

	out, outBoxes, err := chain.Apply(img, boxes, newRand())
	require.NoError(t, err)
	assert.Same(t, img, out)
	assert.Equal(t, boxes, outBoxes)

	// disabled operators consume nothing from the stream
	rng := newRand()
	_, _, err = chain.Apply(img, boxes, rng)
	require.NoError(t, err)
	assert.Equal(t, newRand().Uint64(), rng.Uint64())
}

func TestRotationRightAngle(t *testing.T) {
	img := textImage(40, 20, nil)
	boxes := entity.Boxes{{Char: "r", X0: 10, Y0: 5, X1: 20, Y1: 15}}

	out, rotated, err := Rotation{Angle: 90}.Apply(img, boxes, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())

	assert.InDelta(t, 5, rotated[0].X0, 1e-9)
	assert.InDelta(t, 20, rotated[0].Y0, 1e-9)
	assert.InDelta(t, 15, rotated[0].X1, 1e-9)
	assert.InDelta(t, 30, rotated[0].Y1, 1e-9)
}

func TestGeometricOperatorsKeepBoxes(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
	}{
		{"rotation", Rotation{Angle: 17}},
		{"rotation negative", Rotation{Angle: -200}},
		{"perspective", Perspective{Magnitude: 0.2, Offsets: []float64{0.1, 0.5, 1, 0, 0.3, 0.3, 0.9, 0.2}}},
		{"elastic", Elastic{Alpha: 6, Sigma: 3}},
		{"grid", Grid{Steps: 4, Limit: 0.3}},
		{"barrel", Optical{K: 0.3}},
		{"pincushion", Optical{K: -0.3}},
		{"canvas", canvasOp{Canvas: Canvas{Padding: 12, PlaceX: 0.5, PlaceY: 0.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.op.Enabled())
			boxes := testBoxes()
			img := textImage(100, 50, boxes)

			out, moved, err := tt.op.Apply(img, boxes, newRand())
			require.NoError(t, err)
			require.Len(t, moved, len(boxes))
			assert.Equal(t, testBoxes(), boxes, "input boxes must not change")

			w, h := float64(out.Bounds().Dx()), float64(out.Bounds().Dy())
			for i, b := range moved {
				assert.Truef(t, b.Valid(), "box %d: %+v", i, b)
				assert.GreaterOrEqual(t, b.X0, 0.0)
				assert.GreaterOrEqual(t, b.Y0, 0.0)
				assert.LessOrEqual(t, b.X1, w)
				assert.LessOrEqual(t, b.Y1, h)
				assert.Equal(t, boxes[i].Char, b.Char)
			}
		})
	}
}

func TestPhotometricOperatorsLeaveBoxes(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
	}{
		{"ink bleed", InkBleed{Sigma: 1}},
		{"blur", Blur{Sigma: 1.5}},
		{"brightness contrast", BrightnessContrast{Brightness: -20, Contrast: 30}},
		{"noise", Noise{Sigma: 12}},
		{"cutout", Cutout{Count: 3, Size: 0.1, Fill: 128}},
		{"erode", Morphology{Mode: Erode, Kernel: 3}},
		{"dilate", Morphology{Mode: Dilate, Kernel: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes := testBoxes()
			img := textImage(100, 50, boxes)
			before := imaging.Clone(img)

			out, same, err := tt.op.Apply(img, boxes, newRand())
			require.NoError(t, err)
			assert.Equal(t, boxes, same)
			assert.Equal(t, img.Bounds(), out.Bounds())
			assert.Equal(t, before.Pix, img.Pix, "input raster must not change")
		})
	}
}

func TestCanvasPlacement(t *testing.T) {
	img := textImage(10, 10, nil)
	boxes := entity.Boxes{{Char: "p", X0: 1, Y0: 2, X1: 5, Y1: 8}}

	op := canvasOp{Canvas: Canvas{Width: 50, Height: 30, PlaceX: 1, PlaceY: 0.5}}
	out, moved, err := op.Apply(img, boxes, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 30), out.Bounds())
	assert.Equal(t, entity.CharacterBox{Char: "p", X0: 41, Y0: 12, X1: 45, Y1: 18}, moved[0])

	// outside the pasted raster the canvas stays transparent
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
}

func TestCanvasBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	bg := imaging.New(7, 5, color.NRGBA{R: 200, A: 255})

	op := canvasOp{Canvas: Canvas{Padding: 5}, background: bg}
	out, _, err := op.Apply(img, entity.Boxes{}, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 200, A: 255}, out.NRGBAAt(10, 10))
}

func TestMorphologyModes(t *testing.T) {
	img := textImage(9, 9, entity.Boxes{{X0: 4, Y0: 4, X1: 5, Y1: 5}})

	eroded, _, err := Morphology{Mode: Erode, Kernel: 3}.Apply(img, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, countDark(eroded))

	dilated, _, err := Morphology{Mode: Dilate, Kernel: 3}.Apply(img, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, countDark(dilated))
}

func countDark(img *image.NRGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 128 {
			n++
		}
	}
	return n
}

func fullParams() Params {
	return Params{
		InkBleed:    InkBleed{Sigma: 0.5},
		Canvas:      Canvas{Padding: 8, PlaceX: 0.3, PlaceY: 0.6},
		Rotation:    Rotation{Angle: 4},
		Perspective: Perspective{Magnitude: 0.1, Offsets: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}},
		Elastic:     Elastic{Alpha: 3, Sigma: 4},
		Grid:        Grid{Steps: 3, Limit: 0.1},
		Optical:     Optical{K: 0.05},
		Cutout:      Cutout{Count: 1, Size: 0.05},
		Morphology:  Morphology{Mode: Dilate, Kernel: 2},
		Noise:       Noise{Sigma: 4},
		Blur:        Blur{Sigma: 0.7},
		Tone:        BrightnessContrast{Brightness: 5, Contrast: -5},
	}
}

func TestChainOrder(t *testing.T) {
	chain, err := NewChain(fullParams(), nil)
	require.NoError(t, err)

	var names []string
	for _, op := range chain.Operators() {
		names = append(names, op.Name())
	}
	assert.Equal(t, []string{
		"ink_bleed", "canvas", "rotation", "perspective", "elastic", "grid",
		"optical", "cutout", "morphology", "noise", "blur", "brightness_contrast",
	}, names)
}

func TestChainIsDeterministic(t *testing.T) {
	chain, err := NewChain(fullParams(), nil)
	require.NoError(t, err)

	run := func() (*image.NRGBA, entity.Boxes) {
		boxes := testBoxes()
		out, moved, err := chain.Apply(textImage(100, 50, boxes), boxes, newRand())
		require.NoError(t, err)
		return out, moved
	}
	a, aBoxes := run()
	b, bBoxes := run()
	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, aBoxes, bBoxes)
	assert.True(t, aBoxes.Valid())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative blur", func(p *Params) { p.Blur.Sigma = -1 }},
		{"three points", func(p *Params) { p.Perspective.Points = make([]entity.Point, 3) }},
		{"magnitude", func(p *Params) { p.Perspective.Magnitude = 0.9 }},
		{"magnitude that collapses the quad", func(p *Params) {
			p.Perspective.Magnitude = 0.5
			p.Perspective.Offsets = []float64{1, 1, 1, 1, 1, 1, 1, 1}
		}},
		{"concave points", func(p *Params) {
			p.Perspective.Points = []entity.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 20, Y: 20}, {X: 0, Y: 100}}
		}},
		{"placement", func(p *Params) { p.Canvas.PlaceX = 1.5 }},
		{"morphology mode", func(p *Params) { p.Morphology.Mode = "open" }},
		{"contrast", func(p *Params) { p.Tone.Contrast = 300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fullParams()
			tt.mutate(&p)
			_, err := NewChain(p, nil)
			assert.ErrorIs(t, err, entity.ErrInvalidArgument)
		})
	}
}

func TestPerspectiveAtMaxMagnitudeRenders(t *testing.T) {
	img := textImage(120, 60, nil)
	boxes := entity.Boxes{{Char: "x", X0: 10, Y0: 10, X1: 40, Y1: 50}}
	for _, offsets := range [][]float64{
		{1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 0, 1, 1, 0, 1},
		{0, 0, 0, 0, 0, 0, 0, 0},
	} {
		p := Params{Perspective: Perspective{Magnitude: MaxPerspectiveMagnitude, Offsets: offsets}}
		chain, err := NewChain(p, nil)
		require.NoError(t, err)
		_, out, err := chain.Apply(img, boxes, newRand())
		require.NoError(t, err, "offsets %v", offsets)
		assert.True(t, out.Valid())
	}
}
