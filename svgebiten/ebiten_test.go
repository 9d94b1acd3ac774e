package svgebiten

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
)

func TestVectorPath(t *testing.T) {
	p := svgpath.Rect(0, 0, 10, 10, 0)
	vp := vectorPath(p)
	vertices, indices := vp.AppendVerticesAndIndicesForFilling(nil, nil)
	if len(vertices) == 0 || len(indices) == 0 {
		t.Error("expected a triangulated rectangle")
	}
}

func TestSetVertexColors(t *testing.T) {
	vertices := make([]ebiten.Vertex, 3)
	setVertexColors(vertices, color.NRGBA{R: 0xff, G: 0, B: 0, A: 0xff}, 0.5)
	v := vertices[0]
	if v.SrcX != 1 || v.SrcY != 1 {
		t.Errorf("vertices must sample the white pixel, got (%g, %g)", v.SrcX, v.SrcY)
	}
	// premultiplied: half opaque red
	if v.ColorA < 0.49 || v.ColorA > 0.51 || v.ColorR < 0.49 || v.ColorR > 0.51 || v.ColorG != 0 {
		t.Errorf("unexpected vertex color %v", v)
	}
}

func TestEbitenBlend(t *testing.T) {
	if ebitenBlend(svgscene.BlendNormal) != ebiten.BlendSourceOver {
		t.Error("normal must compose as source over")
	}
	zero := ebiten.Blend{}
	if ebitenBlend(svgscene.BlendMultiply) == zero {
		t.Error("multiply must map to a custom blend")
	}
	if ebitenBlend(svgscene.BlendScreen) == zero {
		t.Error("screen must map to a custom blend")
	}
	// non separable modes fall back to source over
	if ebitenBlend(svgscene.BlendSoftLight) != ebiten.BlendSourceOver {
		t.Error("soft light must fall back to source over")
	}
}

func TestLineOptions(t *testing.T) {
	if lineCap(svgscene.RoundCap) != vector.LineCapRound ||
		lineCap(svgscene.SquareCap) != vector.LineCapSquare ||
		lineCap(svgscene.ButtCap) != vector.LineCapButt ||
		lineCap(svgscene.NilCap) != vector.LineCapButt {
		t.Error("unexpected line cap mapping")
	}
	if lineJoin(svgscene.Round) != vector.LineJoinRound ||
		lineJoin(svgscene.Bevel) != vector.LineJoinBevel ||
		lineJoin(svgscene.Miter) != vector.LineJoinMiter ||
		lineJoin(svgscene.Arc) != vector.LineJoinMiter {
		t.Error("unexpected line join mapping")
	}
}

func TestGeoM(t *testing.T) {
	m := geoM(svgpath.Identity.Translate(5, 6).Scale(2, 3))
	x, y := m.Apply(1, 1)
	if x != 7 || y != 9 {
		t.Errorf("expected (7, 9), got (%g, %g)", x, y)
	}
}

func TestPatternColor(t *testing.T) {
	c := patternColor(svgscene.NewPlainColor(9, 8, 7, 6))
	if c != (color.NRGBA{R: 9, G: 8, B: 7, A: 6}) {
		t.Errorf("unexpected color %v", c)
	}
}
