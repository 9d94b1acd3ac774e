package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// IsEmpty reports whether the box has no area.
func (b Bounds) IsEmpty() bool { return b.W <= 0 || b.H <= 0 }

// IsFinite reports whether every field is a finite number.
func (b Bounds) IsFinite() bool {
	return isFinite(b.X) && isFinite(b.Y) && isFinite(b.W) && isFinite(b.H)
}

// Union returns the smallest box containing both arguments.
// An empty box is the neutral element.
func (b Bounds) Union(other Bounds) Bounds {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	minX := math.Min(b.X, other.X)
	minY := math.Min(b.Y, other.Y)
	maxX := math.Max(b.X+b.W, other.X+other.W)
	maxY := math.Max(b.Y+b.H, other.Y+other.H)
	return Bounds{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// The bounding box of a bezier segment is computed from its extrema:
// the endpoints plus the points where the derivative of each coordinate
// polynomial vanishes.

type line [2]fixed.Point26_6

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(l[0])
	p1x, p1y := fixedTof(l[1])
	return bezierLine(p0x, p1x, t), bezierLine(p0y, p1y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

type quadBezier [3]fixed.Point26_6

// quadratic polynomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])

	aX, bX := quadraticDerivative(p0x, p1x, p2x)
	aY, bY := quadraticDerivative(p0y, p1y, p2y)

	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	return bezierQuad(p0x, p1x, p2x, t), bezierQuad(p0y, p1y, p2y, t)
}

type cubicBezier [4]fixed.Point26_6

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p1x, p1y := fixedTof(cu[0])
	c1x, c1y := fixedTof(cu[1])
	c2x, c2y := fixedTof(cu[2])
	p2x, p2y := fixedTof(cu[3])

	aX, bX, cX := cubicDerivative(p1x, c1x, c2x, p2x)
	aY, bY, cY := cubicDerivative(p1y, c1y, c2y, p2y)

	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	p0x, p0y := fixedTof(cu[0])
	p1x, p1y := fixedTof(cu[1])
	p2x, p2y := fixedTof(cu[2])
	p3x, p3y := fixedTof(cu[3])
	return bezierSpline(p0x, p1x, p2x, p3x, t), bezierSpline(p0y, p1y, p2y, p3y, t)
}

// cubic polynomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// the derivative of the cubic polynomial, taken as at^2 + bt + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

// b^2 - 4ac = discriminant
func discriminant(a, b, c float64) float64 { return b*b - 4*a*c }

func solveQuadratic(a, b, c float64, s bool) float64 {
	sign := 1.
	if !s {
		sign = -1.
	}
	return (-b + (math.Sqrt((b*b)-(4*a*c)) * sign)) / (2 * a)
}

func quadraticRoots(a, b, c float64) []float64 {
	d := discriminant(a, b, c)
	if d < 0 {
		return nil
	}

	if a == 0 {
		// aX^2 + bX + c well then this is a simple line
		// x = -c / b
		return linearRoots(b, c)
	}

	if d == 0 {
		return []float64{solveQuadratic(a, b, c, true)}
	}
	return []float64{
		solveQuadratic(a, b, c, true),
		solveQuadratic(a, b, c, false),
	}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point at time t
	evaluateCurve(t float64) (x, y float64)
}

type boundsAccumulator struct {
	minX, minY, maxX, maxY float64
	seen                   bool
}

func newBoundsAccumulator() boundsAccumulator {
	return boundsAccumulator{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (ba *boundsAccumulator) add(curve bezier) {
	resX, resY := curve.criticalPoints()

	// endpoints plus extrema
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		ba.minX = math.Min(x, ba.minX)
		ba.minY = math.Min(y, ba.minY)
		ba.maxX = math.Max(x, ba.maxX)
		ba.maxY = math.Max(y, ba.maxY)
		ba.seen = true
	}
}

func (ba boundsAccumulator) bounds() Bounds {
	if !ba.seen {
		return Bounds{}
	}
	return Bounds{X: ba.minX, Y: ba.minY, W: ba.maxX - ba.minX, H: ba.maxY - ba.minY}
}

// BoundingBox returns the exact bounding box of the path.
// A path without drawing operations has an empty box.
func (p Path) BoundingBox() Bounds {
	ba := newBoundsAccumulator()
	var cur, first fixed.Point26_6
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			cur = fixed.Point26_6(op)
			first = cur
			// a bare moveto contributes a degenerate segment,
			// so that a single-point path still has a location
			ba.add(line{cur, cur})
		case LineTo:
			ba.add(line{cur, fixed.Point26_6(op)})
			cur = fixed.Point26_6(op)
		case QuadTo:
			ba.add(quadBezier{cur, op[0], op[1]})
			cur = op[1]
		case CubicTo:
			ba.add(cubicBezier{cur, op[0], op[1], op[2]})
			cur = op[2]
		case Close:
			ba.add(line{cur, first})
			cur = first
		}
	}
	return ba.bounds()
}
