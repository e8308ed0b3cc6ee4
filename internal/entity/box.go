package entity

import (
	"math"
	"strings"
)

// minBoxExtent keeps clamped boxes at least one pixel wide and tall.
const minBoxExtent = 1.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CharacterBox is the axis-aligned box around one source character.
type CharacterBox struct {
	Char      string  `json:"char"`
	LineIndex int     `json:"line_index"`
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
}

// Boxes is ordered by logical text position. Operators never patch a
// Boxes value in place; they build a new one.
type Boxes []CharacterBox

// EnvelopeBox returns the smallest box containing pts.
func EnvelopeBox(char string, line int, pts []Point) CharacterBox {
	b := CharacterBox{
		Char:      char,
		LineIndex: line,
		X0:        math.Inf(1),
		Y0:        math.Inf(1),
		X1:        math.Inf(-1),
		Y1:        math.Inf(-1),
	}
	for _, p := range pts {
		b.X0 = math.Min(b.X0, p.X)
		b.Y0 = math.Min(b.Y0, p.Y)
		b.X1 = math.Max(b.X1, p.X)
		b.Y1 = math.Max(b.Y1, p.Y)
	}
	return b
}

// Corners lists the corners clockwise starting at (X0, Y0).
func (b CharacterBox) Corners() []Point {
	return []Point{
		{X: b.X0, Y: b.Y0},
		{X: b.X1, Y: b.Y0},
		{X: b.X1, Y: b.Y1},
		{X: b.X0, Y: b.Y1},
	}
}

func (b CharacterBox) Width() float64  { return b.X1 - b.X0 }
func (b CharacterBox) Height() float64 { return b.Y1 - b.Y0 }

func (b CharacterBox) Valid() bool {
	return b.X0 < b.X1 && b.Y0 < b.Y1
}

func (b CharacterBox) Translate(dx, dy float64) CharacterBox {
	b.X0 += dx
	b.X1 += dx
	b.Y0 += dy
	b.Y1 += dy
	return b
}

// Transform maps every corner through fn and re-envelopes the result.
func (b CharacterBox) Transform(fn func(Point) Point) CharacterBox {
	corners := b.Corners()
	for i, c := range corners {
		corners[i] = fn(c)
	}
	return EnvelopeBox(b.Char, b.LineIndex, corners)
}

// Clamp restricts the box to [0,width]x[0,height] while keeping it valid.
func (b CharacterBox) Clamp(width, height float64) CharacterBox {
	b.X0, b.X1 = clampSpan(b.X0, b.X1, width)
	b.Y0, b.Y1 = clampSpan(b.Y0, b.Y1, height)
	return b
}

func clampSpan(lo, hi, limit float64) (float64, float64) {
	lo = math.Max(0, math.Min(lo, limit))
	hi = math.Max(0, math.Min(hi, limit))
	if hi-lo >= minBoxExtent || limit < minBoxExtent {
		return lo, hi
	}
	mid := (lo + hi) / 2
	lo, hi = mid-minBoxExtent/2, mid+minBoxExtent/2
	if lo < 0 {
		lo, hi = 0, minBoxExtent
	}
	if hi > limit {
		lo, hi = limit-minBoxExtent, limit
	}
	return lo, hi
}

// Map builds a new Boxes value from fn applied to every box.
func (bs Boxes) Map(fn func(CharacterBox) CharacterBox) Boxes {
	if bs == nil {
		return nil
	}
	out := make(Boxes, len(bs))
	for i, b := range bs {
		out[i] = fn(b)
	}
	return out
}

func (bs Boxes) Clone() Boxes {
	return bs.Map(func(b CharacterBox) CharacterBox { return b })
}

// Text concatenates the box characters in order.
func (bs Boxes) Text() string {
	var sb strings.Builder
	for _, b := range bs {
		sb.WriteString(b.Char)
	}
	return sb.String()
}

func (bs Boxes) Valid() bool {
	for _, b := range bs {
		if !b.Valid() {
			return false
		}
	}
	return true
}
