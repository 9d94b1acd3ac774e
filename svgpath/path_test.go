package svgpath

import (
	"math"
	"testing"
)

func TestToSVGPath(t *testing.T) {
	var p Path
	p.Start(toFixedP(1, 2))
	p.Line(toFixedP(3, 4))
	p.QuadBezier(toFixedP(5, 6), toFixedP(7, 8))
	p.Stop(true)
	got := p.ToSVGPath()
	want := "M1.000,2.000 L3.000,4.000 Q5.000,6.000,7.000,8.000 Z"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestTransformedBy(t *testing.T) {
	var p Path
	p.Start(toFixedP(1, 1))
	p.Line(toFixedP(2, 2))
	q := p.TransformedBy(Identity.Scale(2, 2))
	if got, want := q.ToSVGPath(), "M2.000,2.000 L4.000,4.000"; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	// the original path is left unchanged
	if got, want := p.ToSVGPath(), "M1.000,1.000 L2.000,2.000"; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNonFiniteCoordinates(t *testing.T) {
	var p Path
	p.Start(toFixedP(math.NaN(), 0))
	p.Line(toFixedP(10, math.Inf(1)))
	if p.IsFinite() {
		t.Error("expected a non finite path")
	}

	var q Path
	q.Start(toFixedP(0, 0))
	q.Line(toFixedP(1e12, 10)) // out of fixed point range
	if q.IsFinite() {
		t.Error("expected an out of range path to be flagged")
	}

	var ok Path
	ok.Start(toFixedP(0, 0))
	ok.Line(toFixedP(100, 100))
	if !ok.IsFinite() {
		t.Error("expected a finite path")
	}
}

func TestBoundingBoxLines(t *testing.T) {
	var p Path
	p.Start(toFixedP(10, 20))
	p.Line(toFixedP(30, 5))
	p.Stop(true)
	got := p.BoundingBox()
	want := Bounds{X: 10, Y: 5, W: 20, H: 15}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBoundingBoxCurves(t *testing.T) {
	// a circle bounding box is exact, not the control polygon hull
	c := Circle(50, 50, 10)
	got := c.BoundingBox()
	want := Bounds{X: 40, Y: 40, W: 20, H: 20}
	const tol = 0.2 // kappa approximation and fixed point rounding
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol ||
		math.Abs(got.W-want.W) > tol || math.Abs(got.H-want.H) > tol {
		t.Errorf("expected about %v, got %v", want, got)
	}

	var q Path
	q.Start(toFixedP(0, 0))
	q.QuadBezier(toFixedP(5, 10), toFixedP(10, 0))
	// the quadratic peaks at y = 5
	b := q.BoundingBox()
	if math.Abs(b.H-5) > 0.1 {
		t.Errorf("expected height 5, got %v", b)
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	if b := (Path{}).BoundingBox(); !b.IsEmpty() {
		t.Errorf("expected an empty box, got %v", b)
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{X: 0, Y: 0, W: 10, H: 10}
	b := Bounds{X: 5, Y: 5, W: 10, H: 10}
	if got, want := a.Union(b), (Bounds{X: 0, Y: 0, W: 15, H: 15}); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	// empty boxes are neutral
	if got := (Bounds{}).Union(a); got != a {
		t.Errorf("expected %v, got %v", a, got)
	}
	if got := a.Union(Bounds{}); got != a {
		t.Errorf("expected %v, got %v", a, got)
	}
}

func TestShapes(t *testing.T) {
	r := Rect(0, 0, 20, 10, 0)
	if got, want := r.BoundingBox(), (Bounds{X: 0, Y: 0, W: 20, H: 10}); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	rr := RoundedRect(0, 0, 20, 10, 3, 3, 0)
	b := rr.BoundingBox()
	if b.IsEmpty() || b.W > 20.1 || b.H > 10.1 {
		t.Errorf("unexpected rounded rect box %v", b)
	}

	if e := Ellipse(0, 0, -1, 5); len(e) != 0 {
		t.Error("expected an empty path for a negative radius")
	}
}

func TestFlatten(t *testing.T) {
	c := Circle(0, 0, 10)
	flat := c.Flatten(8)
	for _, op := range flat {
		switch op.(type) {
		case QuadTo, CubicTo:
			t.Fatal("expected only lines after flattening")
		}
	}
	// flattening preserves the overall extent
	b := flat.BoundingBox()
	if math.Abs(b.W-20) > 0.5 || math.Abs(b.H-20) > 0.5 {
		t.Errorf("unexpected flattened box %v", b)
	}
}
