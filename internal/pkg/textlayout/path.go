package textlayout

import "math"

// path places a glyph centered at arc length s along the primary axis.
// It reports the glyph position along that axis, its offset on the
// secondary axis and the tangent angle in radians. A zero radius or a
// zero amplitude degrades to the straight line.
type path struct {
	curve Curve
	mid   float64
}

func newPath(c Curve, length float64) path {
	return path{curve: c, mid: length / 2}
}

func (p path) at(s float64) (along, offset, tangent float64) {
	c := p.curve
	switch c.Kind {
	case CurveArc:
		if c.Radius <= 0 {
			break
		}
		// equal arc-length steps either side of the text middle
		phi := (s - p.mid) / c.Radius
		along = p.mid + c.Radius*math.Sin(phi)
		drop := c.Radius * (1 - math.Cos(phi))
		if c.Concave {
			return along, -drop, -phi
		}
		return along, drop, phi
	case CurveSine:
		if c.Amplitude == 0 {
			break
		}
		arg := c.Frequency*s + c.Phase
		return s, c.Amplitude * math.Sin(arg), math.Atan(c.Amplitude * c.Frequency * math.Cos(arg))
	}
	return s, 0, 0
}
