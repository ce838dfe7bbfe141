// Package transform maps module coordinates of a symbol to pixel
// coordinates and samples the module grid through that mapping.
package transform

// Perspective is a projective transform of the plane, stored as the 3x3
// matrix acting on row vectors (x, y, 1).
type Perspective struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// Quad is four points in order around a quadrilateral: x0, y0 through x3, y3.
type Quad [8]float64

// QuadToQuad returns the transform taking each corner of from to the
// corresponding corner of to.
func QuadToQuad(from, to Quad) *Perspective {
	return squareToQuad(to).times(quadToSquare(from))
}

// Apply maps one point.
func (p *Perspective) Apply(x, y float64) (float64, float64) {
	d := p.a13*x + p.a23*y + p.a33
	return (p.a11*x + p.a21*y + p.a31) / d, (p.a12*x + p.a22*y + p.a32) / d
}

// TransformPoints maps the (x, y) pairs of points in place.
func (p *Perspective) TransformPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		points[i], points[i+1] = p.Apply(points[i], points[i+1])
	}
}

func squareToQuad(q Quad) *Perspective {
	x0, y0, x1, y1, x2, y2, x3, y3 := q[0], q[1], q[2], q[3], q[4], q[5], q[6], q[7]
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// Parallelogram: affine.
		return &Perspective{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a33: 1,
		}
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return &Perspective{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// quadToSquare inverts squareToQuad up to scale, which a projective
// transform ignores.
func quadToSquare(q Quad) *Perspective {
	return squareToQuad(q).adjoint()
}

func (p *Perspective) adjoint() *Perspective {
	return &Perspective{
		a11: p.a22*p.a33 - p.a23*p.a32,
		a21: p.a23*p.a31 - p.a21*p.a33,
		a31: p.a21*p.a32 - p.a22*p.a31,
		a12: p.a13*p.a32 - p.a12*p.a33,
		a22: p.a11*p.a33 - p.a13*p.a31,
		a32: p.a12*p.a31 - p.a11*p.a32,
		a13: p.a12*p.a23 - p.a13*p.a22,
		a23: p.a13*p.a21 - p.a11*p.a23,
		a33: p.a11*p.a22 - p.a12*p.a21,
	}
}

// times returns the transform applying o first, then p.
func (p *Perspective) times(o *Perspective) *Perspective {
	return &Perspective{
		a11: p.a11*o.a11 + p.a21*o.a12 + p.a31*o.a13,
		a21: p.a11*o.a21 + p.a21*o.a22 + p.a31*o.a23,
		a31: p.a11*o.a31 + p.a21*o.a32 + p.a31*o.a33,
		a12: p.a12*o.a11 + p.a22*o.a12 + p.a32*o.a13,
		a22: p.a12*o.a21 + p.a22*o.a22 + p.a32*o.a23,
		a32: p.a12*o.a31 + p.a22*o.a32 + p.a32*o.a33,
		a13: p.a13*o.a11 + p.a23*o.a12 + p.a33*o.a13,
		a23: p.a13*o.a21 + p.a23*o.a22 + p.a33*o.a23,
		a33: p.a13*o.a31 + p.a23*o.a32 + p.a33*o.a33,
	}
}
