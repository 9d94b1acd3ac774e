package svgscene_test

import (
	"math"
	"testing"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
	"github.com/benoitkugler/svgscene/svgrecord"
)

func simpleTree() *svgscene.Tree {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	tree.AddPath(svgscene.Root, "shape", svgpath.Identity,
		svgpath.Rect(10, 10, 90, 90, 0), svgscene.DefaultStyle)
	return tree
}

// checkBalanced verifies the strict nesting contract: every push has
// a matching pop, and the depth never goes negative.
func checkBalanced(t *testing.T, ops []svgrecord.Op) {
	t.Helper()
	depth := 0
	for i, op := range ops {
		switch op.(type) {
		case svgrecord.PushTransformOp, svgrecord.PushClipOp, svgrecord.PushLayerOp:
			depth++
		case svgrecord.PopOp:
			depth--
			if depth < 0 {
				t.Fatalf("operation %d pops below the initial state", i)
			}
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced push/pop: depth %d after the last operation", depth)
	}
}

func TestRenderRecords(t *testing.T) {
	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(simpleTree(), 200, 200, &rec)

	if rec.DrawCount() != 1 {
		t.Fatalf("expected one draw, got %d", rec.DrawCount())
	}
	checkBalanced(t, rec.Ops)

	// the first operation establishes the fit transform
	if _, ok := rec.Ops[0].(svgrecord.PushTransformOp); !ok {
		t.Errorf("expected a transform push first, got %T", rec.Ops[0])
	}
	if _, ok := rec.Ops[len(rec.Ops)-1].(svgrecord.PopOp); !ok {
		t.Errorf("expected a pop last, got %T", rec.Ops[len(rec.Ops)-1])
	}
}

func TestRenderNoOps(t *testing.T) {
	tree := simpleTree()
	for _, tc := range []struct {
		label  string
		render func(c svgscene.Canvas)
	}{
		{"nil tree", func(c svgscene.Canvas) { svgscene.RenderToCanvas(nil, 100, 100, c) }},
		{"zero width", func(c svgscene.Canvas) { svgscene.RenderToCanvas(tree, 0, 100, c) }},
		{"negative height", func(c svgscene.Canvas) { svgscene.RenderToCanvas(tree, 100, -5, c) }},
		{"NaN size", func(c svgscene.Canvas) { svgscene.RenderToCanvas(tree, math.NaN(), 100, c) }},
		{"infinite size", func(c svgscene.Canvas) { svgscene.RenderToCanvas(tree, math.Inf(1), 100, c) }},
		{"unknown id", func(c svgscene.Canvas) { svgscene.RenderToCanvasByID(tree, 100, 100, "nope", c) }},
		{"empty viewbox", func(c svgscene.Canvas) {
			svgscene.RenderToCanvas(svgscene.NewTree(svgpath.Bounds{}), 100, 100, c)
		}},
		{"hand built tree without nodes", func(c svgscene.Canvas) {
			empty := &svgscene.Tree{
				ViewBox:   svgpath.Bounds{W: 10, H: 10},
				Transform: svgpath.Identity,
			}
			svgscene.RenderToCanvas(empty, 100, 100, c)
			svgscene.RenderToCanvasByID(empty, 100, 100, "shape", c)
		}},
	} {
		var rec svgrecord.Canvas
		tc.render(&rec)
		if len(rec.Ops) != 0 {
			t.Errorf("%s: expected no operation, got %d", tc.label, len(rec.Ops))
		}
	}

	// a nil canvas must not crash
	svgscene.RenderToCanvas(tree, 100, 100, nil)
	svgscene.RenderToCanvasByID(tree, 100, 100, "shape", nil)
}

func TestRenderPaintOrder(t *testing.T) {
	red := svgscene.DefaultStyle
	red.FillerColor = svgscene.NewPlainColor(0xff, 0, 0, 0xff)
	blue := svgscene.DefaultStyle
	blue.FillerColor = svgscene.NewPlainColor(0, 0, 0xff, 0xff)

	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	tree.AddPath(svgscene.Root, "", svgpath.Identity, svgpath.Rect(0, 0, 50, 50, 0), red)
	tree.AddPath(svgscene.Root, "", svgpath.Identity, svgpath.Rect(0, 0, 50, 50, 0), blue)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 100, 100, &rec)

	var seen []svgscene.Pattern
	for _, op := range rec.Ops {
		if draw, ok := op.(svgrecord.DrawPathOp); ok {
			seen = append(seen, draw.Style.FillerColor)
		}
	}
	if len(seen) != 2 || seen[0] != red.FillerColor || seen[1] != blue.FillerColor {
		t.Errorf("declaration order must be paint order, got %v", seen)
	}
}

func TestRenderGroupCompositing(t *testing.T) {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})

	plain, _ := tree.AddGroup(svgscene.Root, svgscene.NewGroupOptions())
	tree.AddPath(plain, "", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	opts := svgscene.NewGroupOptions()
	opts.Opacity = 0.5
	translucent, _ := tree.AddGroup(svgscene.Root, opts)
	tree.AddPath(translucent, "", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 100, 100, &rec)
	checkBalanced(t, rec.Ops)

	var layers []svgrecord.PushLayerOp
	for _, op := range rec.Ops {
		if layer, ok := op.(svgrecord.PushLayerOp); ok {
			layers = append(layers, layer)
		}
	}
	// only the translucent group needs a layer
	if len(layers) != 1 || layers[0].Opacity != 0.5 {
		t.Errorf("expected one layer at opacity 0.5, got %v", layers)
	}
}

func TestRenderOpacityZero(t *testing.T) {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	opts := svgscene.NewGroupOptions()
	opts.Opacity = 0
	g, _ := tree.AddGroup(svgscene.Root, opts)
	tree.AddPath(g, "", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 100, 100, &rec)
	if rec.DrawCount() != 0 {
		t.Errorf("an invisible group must not paint, got %d draws", rec.DrawCount())
	}
	checkBalanced(t, rec.Ops)
}

func TestRenderClip(t *testing.T) {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	opts := svgscene.NewGroupOptions()
	opts.Clip = &svgscene.ClipPath{
		Path:      svgpath.Rect(0, 0, 50, 100, 0),
		Transform: svgpath.Identity,
	}
	g, _ := tree.AddGroup(svgscene.Root, opts)
	tree.AddPath(g, "", svgpath.Identity, svgpath.Rect(0, 0, 100, 100, 0), svgscene.DefaultStyle)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 100, 100, &rec)
	checkBalanced(t, rec.Ops)

	clips := 0
	for _, op := range rec.Ops {
		if _, ok := op.(svgrecord.PushClipOp); ok {
			clips++
		}
	}
	if clips != 1 {
		t.Errorf("expected one clip push, got %d", clips)
	}
}

func TestRenderSkipsMalformedNodes(t *testing.T) {
	bad := svgpath.Matrix2D{A: math.NaN(), D: 1}

	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	g, _ := tree.AddGroup(svgscene.Root, svgscene.GroupOptions{Transform: bad, Opacity: 1})
	tree.AddPath(g, "", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)
	tree.AddPath(svgscene.Root, "ok", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	nan := svgpath.Rect(0, 0, 10, 10, 0).TransformedBy(bad)
	tree.AddPath(svgscene.Root, "", svgpath.Identity, nan, svgscene.DefaultStyle)

	// a zero scale collapses its subtree to nothing
	collapsed, _ := tree.AddGroup(svgscene.Root, svgscene.GroupOptions{
		Transform: svgpath.Identity.Scale(0, 0), Opacity: 1,
	})
	tree.AddPath(collapsed, "", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 100, 100, &rec)
	checkBalanced(t, rec.Ops)

	// only the healthy sibling paints
	if rec.DrawCount() != 1 {
		t.Errorf("expected one draw, got %d", rec.DrawCount())
	}
}

func TestRenderByID(t *testing.T) {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	g, _ := tree.AddGroup(svgscene.Root, svgscene.GroupOptions{
		Name:      "moved",
		Transform: svgpath.Identity.Translate(400, 400),
		Opacity:   1,
	})
	tree.AddPath(g, "inner", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)
	tree.AddPath(svgscene.Root, "sibling", svgpath.Identity, svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)

	var rec svgrecord.Canvas
	svgscene.RenderToCanvasByID(tree, 100, 100, "moved", &rec)
	checkBalanced(t, rec.Ops)

	// the subtree paints, the sibling does not
	if rec.DrawCount() != 1 {
		t.Fatalf("expected one draw, got %d", rec.DrawCount())
	}

	// the same result through a prebuilt index
	idx := svgscene.BuildIndex(tree)
	var rec2 svgrecord.Canvas
	svgscene.RenderNodeToCanvas(tree, idx, 100, 100, "moved", &rec2)
	if len(rec2.Ops) != len(rec.Ops) {
		t.Errorf("expected identical recordings, got %d and %d operations",
			len(rec.Ops), len(rec2.Ops))
	}
}

func TestRenderByIDNoGeometry(t *testing.T) {
	tree := svgscene.NewTree(svgpath.Bounds{W: 100, H: 100})
	tree.AddGroup(svgscene.Root, svgscene.GroupOptions{Name: "empty", Transform: svgpath.Identity, Opacity: 1})

	var rec svgrecord.Canvas
	svgscene.RenderToCanvasByID(tree, 100, 100, "empty", &rec)
	if len(rec.Ops) != 0 {
		t.Errorf("a node without geometry must be a no-op, got %d operations", len(rec.Ops))
	}
}

func TestRenderSharedTree(t *testing.T) {
	tree := simpleTree()

	var first svgrecord.Canvas
	svgscene.RenderToCanvas(tree, 200, 200, &first)

	done := make(chan *svgrecord.Canvas)
	for i := 0; i < 4; i++ {
		go func() {
			var rec svgrecord.Canvas
			svgscene.RenderToCanvas(tree, 200, 200, &rec)
			done <- &rec
		}()
	}
	for i := 0; i < 4; i++ {
		rec := <-done
		if len(rec.Ops) != len(first.Ops) {
			t.Errorf("concurrent renders must agree: %d vs %d operations",
				len(rec.Ops), len(first.Ops))
		}
	}
}
