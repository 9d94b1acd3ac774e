package svgrecord

import (
	"testing"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
)

func TestReplay(t *testing.T) {
	var rec Canvas
	rec.PushTransform(svgpath.Identity.Scale(2, 2))
	rec.PushLayer(0.5, svgscene.BlendMultiply)
	rec.DrawPath(svgpath.Rect(0, 0, 10, 10, 0), svgscene.DefaultStyle)
	rec.Pop()
	rec.Pop()

	if len(rec.Ops) != 5 {
		t.Fatalf("expected 5 operations, got %d", len(rec.Ops))
	}
	if rec.DrawCount() != 1 {
		t.Errorf("expected one draw, got %d", rec.DrawCount())
	}

	// replaying onto a second recording reproduces the stream
	var copied Canvas
	rec.Replay(&copied)
	if len(copied.Ops) != len(rec.Ops) {
		t.Fatalf("expected %d operations, got %d", len(rec.Ops), len(copied.Ops))
	}
	layer, ok := copied.Ops[1].(PushLayerOp)
	if !ok || layer.Opacity != 0.5 || layer.Blend != svgscene.BlendMultiply {
		t.Errorf("unexpected replayed layer %v", copied.Ops[1])
	}
}

func TestReset(t *testing.T) {
	var rec Canvas
	rec.PushTransform(svgpath.Identity)
	rec.Pop()
	rec.Reset()
	if len(rec.Ops) != 0 {
		t.Errorf("expected an empty recording, got %d operations", len(rec.Ops))
	}
}
