// Package svgpath implements an abstract representation of
// 2D vector paths, which can then be consumed
// by painting backends.
package svgpath

import (
	"fmt"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Operation groups the different path commands
type Operation interface {
	// Transform returns the operation with `m` applied to its points.
	Transform(m Matrix2D) Operation
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

func (op MoveTo) Transform(m Matrix2D) Operation {
	return MoveTo(m.TFixed(fixed.Point26_6(op)))
}

func (op LineTo) Transform(m Matrix2D) Operation {
	return LineTo(m.TFixed(fixed.Point26_6(op)))
}

func (op QuadTo) Transform(m Matrix2D) Operation {
	return QuadTo{m.TFixed(op[0]), m.TFixed(op[1])}
}

func (op CubicTo) Transform(m Matrix2D) Operation {
	return CubicTo{m.TFixed(op[0]), m.TFixed(op[1]), m.TFixed(op[2])}
}

func (op Close) Transform(Matrix2D) Operation { return op }

// Path describes a sequence of basic path operations.
// Higher-level shapes may be reduced to a path (see shapes.go).
type Path []Operation

// sentinel26_6 marks a coordinate which was not representable:
// non-finite input saturates to it, and IsFinite reports it.
const sentinel26_6 = fixed.Int26_6(1) << 30

// toFixedP converts two floats to a fixed point.
// Non-finite or out-of-range values saturate to a sentinel,
// so that a malformed path stays detectable instead of crashing.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = clamp26_6(x)
	p.Y = clamp26_6(y)
	return
}

func clamp26_6(v float64) fixed.Int26_6 {
	const lim = float64(sentinel26_6) / 64
	if !isFinite(v) || v >= lim || v <= -lim {
		return sentinel26_6
	}
	return fixed.Int26_6(v * 64)
}

// ToSVGPath returns a string representation of the path,
// using the SVG path data syntax.
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64, float32(op[2].X)/64, float32(op[2].Y)/64)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Copy returns a deep copy of the path.
func (p Path) Copy() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// TransformedBy returns a new path with `m` applied to every point.
func (p Path) TransformedBy(m Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.Transform(m)
	}
	return out
}

// IsFinite reports whether every point of the path is finite.
// Fixed point coordinates are finite by construction, but a path
// built from non-finite floats carries saturated sentinel values.
func (p Path) IsFinite() bool {
	ok := func(pt fixed.Point26_6) bool {
		return pt.X > -sentinel26_6 && pt.X < sentinel26_6 &&
			pt.Y > -sentinel26_6 && pt.Y < sentinel26_6
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			if !ok(fixed.Point26_6(op)) {
				return false
			}
		case LineTo:
			if !ok(fixed.Point26_6(op)) {
				return false
			}
		case QuadTo:
			if !ok(op[0]) || !ok(op[1]) {
				return false
			}
		case CubicTo:
			if !ok(op[0]) || !ok(op[1]) || !ok(op[2]) {
				return false
			}
		}
	}
	return true
}

// Flatten approximates the path by line segments only, subdividing
// each bezier in `segments` steps. It is used by backends whose
// native clipping only accepts polygons.
func (p Path) Flatten(segments int) Path {
	if segments < 1 {
		segments = 1
	}
	var out Path
	var cur fixed.Point26_6
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			cur = fixed.Point26_6(op)
			out.Start(cur)
		case LineTo:
			cur = fixed.Point26_6(op)
			out.Line(cur)
		case QuadTo:
			a := cur
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				x := bezierQuad(fx(a.X), fx(op[0].X), fx(op[1].X), t)
				y := bezierQuad(fx(a.Y), fx(op[0].Y), fx(op[1].Y), t)
				out.Line(toFixedP(x, y))
			}
			cur = op[1]
		case CubicTo:
			a := cur
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				x := bezierSpline(fx(a.X), fx(op[0].X), fx(op[1].X), fx(op[2].X), t)
				y := bezierSpline(fx(a.Y), fx(op[0].Y), fx(op[1].Y), fx(op[2].Y), t)
				out.Line(toFixedP(x, y))
			}
			cur = op[2]
		case Close:
			out.Stop(true)
		}
	}
	return out
}

func fx(v fixed.Int26_6) float64 { return float64(v) / 64 }
