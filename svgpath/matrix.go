package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Matrix2D is an affine transform, expressed as
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a × b, the transform applying `b` first, then `a`.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate composes a translation onto the transform.
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale composes a scale onto the transform.
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate composes a rotation of `angle` radians onto the transform.
func (a Matrix2D) Rotate(angle float64) Matrix2D {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return a.Mult(Matrix2D{cos, sin, -sin, cos, 0, 0})
}

// Determinant returns the determinant of the linear part.
func (a Matrix2D) Determinant() float64 { return a.A*a.D - a.B*a.C }

// IsDegenerate reports whether the transform collapses the plane
// (zero determinant), or carries non-finite coefficients.
// Degenerate transforms paint nothing.
func (a Matrix2D) IsDegenerate() bool {
	if !a.IsFinite() {
		return true
	}
	const eps = 1e-12
	return math.Abs(a.Determinant()) < eps
}

// IsFinite reports whether every coefficient is a finite number.
func (a Matrix2D) IsFinite() bool {
	return isFinite(a.A) && isFinite(a.B) && isFinite(a.C) &&
		isFinite(a.D) && isFinite(a.E) && isFinite(a.F)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Transform applies the transform to the point (x, y).
func (a Matrix2D) Transform(x, y float64) (float64, float64) {
	return a.A*x + a.C*y + a.E, a.B*x + a.D*y + a.F
}

// TFixed applies the transform to a fixed point.
func (a Matrix2D) TFixed(p fixed.Point26_6) fixed.Point26_6 {
	x, y := a.Transform(float64(p.X)/64, float64(p.Y)/64)
	return toFixedP(x, y)
}

// ScaleFactor returns the mean length change the transform applies to a
// unit vector, used to scale stroke widths drawn in device space.
func (a Matrix2D) ScaleFactor() float64 {
	d := math.Abs(a.Determinant())
	if d == 0 || !isFinite(d) {
		return 0
	}
	return math.Sqrt(d)
}

// TransformBounds returns the bounding box of the four transformed
// corners of `b`.
func (a Matrix2D) TransformBounds(b Bounds) Bounds {
	if b.IsEmpty() {
		return Bounds{}
	}
	x0, y0 := a.Transform(b.X, b.Y)
	x1, y1 := a.Transform(b.X+b.W, b.Y)
	x2, y2 := a.Transform(b.X, b.Y+b.H)
	x3, y3 := a.Transform(b.X+b.W, b.Y+b.H)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Bounds{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// matrixAdder applies a transform to each point before
// forwarding it to the underlying path.
type matrixAdder struct {
	M    Matrix2D
	path *Path
}

func (q *matrixAdder) Start(a fixed.Point26_6) { q.path.Start(q.M.TFixed(a)) }

func (q *matrixAdder) Line(b fixed.Point26_6) { q.path.Line(q.M.TFixed(b)) }

func (q *matrixAdder) QuadBezier(b, c fixed.Point26_6) {
	q.path.QuadBezier(q.M.TFixed(b), q.M.TFixed(c))
}

func (q *matrixAdder) CubeBezier(b, c, d fixed.Point26_6) {
	q.path.CubeBezier(q.M.TFixed(b), q.M.TFixed(c), q.M.TFixed(d))
}

func (q *matrixAdder) Stop(closeLoop bool) { q.path.Stop(closeLoop) }
