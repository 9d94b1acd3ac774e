// Package svgebiten implements a GPU backend painting onto an
// ebiten image, triangulating paths with ebiten/vector.
package svgebiten

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
	"golang.org/x/image/math/fixed"
)

var _ svgscene.Canvas = (*Renderer)(nil) // assert interface conformance

// whiteSubImage is the textureless source of every DrawTriangles
// call: vertex colors carry the actual paint.
var whiteSubImage *ebiten.Image

func init() {
	whiteImage := ebiten.NewImage(3, 3)
	whiteImage.Fill(color.White)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

type stateKind uint8

const (
	stTransform stateKind = iota
	stClip
	stLayer
)

type state struct {
	kind stateKind

	ctm svgpath.Matrix2D // transform to restore at pop

	buf *ebiten.Image // offscreen target of a clip or layer scope

	clip    svgscene.ClipPath
	clipCTM svgpath.Matrix2D

	opacity float64
	blend   svgscene.BlendMode
}

// Renderer paints onto an ebiten image.
//
// Gradients are approximated by their middle color, and the
// Multiply and Screen blend modes by their closest blend factor
// equations; other non normal modes compose as source over.
//
// A Renderer must not be shared between goroutines.
type Renderer struct {
	dst    *ebiten.Image
	ctm    svgpath.Matrix2D
	states []state
}

// NewRenderer returns a renderer painting onto `dst`.
func NewRenderer(dst *ebiten.Image) *Renderer {
	return &Renderer{dst: dst, ctm: svgpath.Identity}
}

// RenderToImage rasterizes the whole tree into a new ebiten image
// of the given size.
func RenderToImage(tree *svgscene.Tree, width, height int) *ebiten.Image {
	img := ebiten.NewImage(width, height)
	svgscene.RenderToCanvas(tree, float64(width), float64(height), NewRenderer(img))
	return img
}

func (r *Renderer) PushTransform(m svgpath.Matrix2D) {
	r.states = append(r.states, state{kind: stTransform, ctm: r.ctm})
	r.ctm = r.ctm.Mult(m)
}

func (r *Renderer) PushClip(clip svgscene.ClipPath) {
	r.states = append(r.states, state{
		kind:    stClip,
		ctm:     r.ctm,
		buf:     r.newLayer(),
		clip:    clip,
		clipCTM: r.ctm.Mult(clip.Transform),
	})
}

func (r *Renderer) PushLayer(opacity float64, blend svgscene.BlendMode) {
	r.states = append(r.states, state{
		kind:    stLayer,
		ctm:     r.ctm,
		buf:     r.newLayer(),
		opacity: opacity,
		blend:   blend,
	})
}

func (r *Renderer) Pop() {
	if len(r.states) == 0 {
		// unbalanced pop: a caller error, absorbed
		return
	}
	st := r.states[len(r.states)-1]
	r.states = r.states[:len(r.states)-1]
	r.ctm = st.ctm

	switch st.kind {
	case stClip:
		// keep the buffer only where the clip shape is opaque,
		// then compose it
		mask := r.newLayer()
		fillPath(mask, st.clip.Path.TransformedBy(st.clipCTM),
			color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, 1, !st.clip.EvenOdd)
		var maskOp ebiten.DrawImageOptions
		maskOp.Blend = ebiten.BlendDestinationIn
		st.buf.DrawImage(mask, &maskOp)

		r.target().DrawImage(st.buf, nil)
		st.buf.Deallocate()
		mask.Deallocate()

	case stLayer:
		var op ebiten.DrawImageOptions
		op.ColorScale.ScaleAlpha(float32(st.opacity))
		op.Blend = ebitenBlend(st.blend)
		r.target().DrawImage(st.buf, &op)
		st.buf.Deallocate()
	}
}

func (r *Renderer) target() *ebiten.Image {
	for i := len(r.states) - 1; i >= 0; i-- {
		if buf := r.states[i].buf; buf != nil {
			return buf
		}
	}
	return r.dst
}

func (r *Renderer) newLayer() *ebiten.Image {
	b := r.dst.Bounds()
	return ebiten.NewImage(b.Dx(), b.Dy())
}

func (r *Renderer) DrawPath(shape svgpath.Path, style svgscene.PathStyle) {
	device := shape.TransformedBy(r.ctm)
	if len(device) == 0 || !device.IsFinite() {
		return
	}
	tgt := r.target()
	if style.FillerColor != nil {
		fillPath(tgt, device, patternColor(style.FillerColor), style.FillOpacity,
			style.UseNonZeroWinding)
	}
	if style.LinerColor != nil && style.LineWidth > 0 {
		strokePath(tgt, device, patternColor(style.LinerColor), style.LineOpacity,
			style.StrokeOptions(), r.ctm.ScaleFactor())
	}
}

func (r *Renderer) DrawImage(img image.Image, placement svgpath.Bounds) {
	if img == nil || placement.IsEmpty() || !placement.IsFinite() {
		return
	}
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return
	}
	local := svgpath.Identity.
		Translate(placement.X, placement.Y).
		Scale(placement.W/float64(src.Dx()), placement.H/float64(src.Dy()))
	m := r.ctm.Mult(local)
	if m.IsDegenerate() {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM = geoM(m)
	op.Filter = ebiten.FilterLinear
	r.target().DrawImage(ebiten.NewImageFromImage(img), &op)
}

func (r *Renderer) DrawGlyphRun(run *svgscene.GlyphRun, style svgscene.PathStyle) {
	if run == nil {
		return
	}
	r.DrawPath(run.Outline(), style)
}

// vectorPath converts a device space path into an ebiten vector path.
func vectorPath(p svgpath.Path) vector.Path {
	f32 := func(pt fixed.Point26_6) (float32, float32) {
		return float32(pt.X) / 64, float32(pt.Y) / 64
	}
	var out vector.Path
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			x, y := f32(fixed.Point26_6(op))
			out.MoveTo(x, y)
		case svgpath.LineTo:
			x, y := f32(fixed.Point26_6(op))
			out.LineTo(x, y)
		case svgpath.QuadTo:
			cx, cy := f32(op[0])
			x, y := f32(op[1])
			out.QuadTo(cx, cy, x, y)
		case svgpath.CubicTo:
			cx0, cy0 := f32(op[0])
			cx1, cy1 := f32(op[1])
			x, y := f32(op[2])
			out.CubicTo(cx0, cy0, cx1, cy1, x, y)
		case svgpath.Close:
			out.Close()
		}
	}
	return out
}

func fillPath(dst *ebiten.Image, device svgpath.Path, c color.NRGBA, opacity float64, nonZeroWinding bool) {
	if len(device) == 0 || !device.IsFinite() {
		return
	}
	path := vectorPath(device)
	vertices, indices := path.AppendVerticesAndIndicesForFilling(nil, nil)
	setVertexColors(vertices, c, opacity)

	triOp := ebiten.DrawTrianglesOptions{AntiAlias: true}
	if nonZeroWinding {
		triOp.FillRule = ebiten.FillRuleNonZero
	} else {
		triOp.FillRule = ebiten.FillRuleEvenOdd
	}
	dst.DrawTriangles(vertices, indices, whiteSubImage, &triOp)
}

func strokePath(dst *ebiten.Image, device svgpath.Path, c color.NRGBA, opacity float64,
	options svgscene.StrokeOptions, scale float64) {
	path := vectorPath(device)
	strokeOp := vector.StrokeOptions{
		Width:      float32(float64(options.LineWidth) / 64 * scale),
		MiterLimit: float32(options.Join.MiterLimit) / 64,
		LineCap:    lineCap(options.Join.TrailLineCap),
		LineJoin:   lineJoin(options.Join.LineJoin),
	}
	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &strokeOp)
	setVertexColors(vertices, c, opacity)

	dst.DrawTriangles(vertices, indices, whiteSubImage,
		&ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// setVertexColors points every vertex at the white texture and tints
// it, premultiplied as DrawTriangles expects.
func setVertexColors(vertices []ebiten.Vertex, c color.NRGBA, opacity float64) {
	a := float32(c.A) / 0xff * float32(opacity)
	cr := float32(c.R) / 0xff * a
	cg := float32(c.G) / 0xff * a
	cb := float32(c.B) / 0xff * a
	for i := range vertices {
		vertices[i].SrcX = 1
		vertices[i].SrcY = 1
		vertices[i].ColorR = cr
		vertices[i].ColorG = cg
		vertices[i].ColorB = cb
		vertices[i].ColorA = a
	}
}

// patternColor reduces a pattern to one color: gradients use their
// middle color.
func patternColor(pattern svgscene.Pattern) color.NRGBA {
	switch pattern := pattern.(type) {
	case svgscene.PlainColor:
		return pattern.NRGBA
	case svgscene.Gradient:
		if c, ok := pattern.ColorAt(0.5, 1).(color.NRGBA); ok {
			return c
		}
	}
	return color.NRGBA{}
}

func lineCap(c svgscene.CapMode) vector.LineCap {
	switch c {
	case svgscene.RoundCap, svgscene.CubicCap, svgscene.QuadraticCap:
		return vector.LineCapRound
	case svgscene.SquareCap:
		return vector.LineCapSquare
	default:
		return vector.LineCapButt
	}
}

func lineJoin(j svgscene.JoinMode) vector.LineJoin {
	switch j {
	case svgscene.Round:
		return vector.LineJoinRound
	case svgscene.Bevel:
		return vector.LineJoinBevel
	default:
		return vector.LineJoinMiter
	}
}

func geoM(m svgpath.Matrix2D) ebiten.GeoM {
	var out ebiten.GeoM
	out.SetElement(0, 0, m.A)
	out.SetElement(1, 0, m.B)
	out.SetElement(0, 1, m.C)
	out.SetElement(1, 1, m.D)
	out.SetElement(0, 2, m.E)
	out.SetElement(1, 2, m.F)
	return out
}

// ebitenBlend maps a blend mode to its blend factor equation, when
// one exists: Multiply and Screen have close equivalents, the other
// non separable modes compose as source over.
func ebitenBlend(mode svgscene.BlendMode) ebiten.Blend {
	switch mode {
	case svgscene.BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case svgscene.BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}
