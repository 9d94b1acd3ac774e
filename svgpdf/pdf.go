// Package svgpdf implements a PDF backend,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

var _ svgscene.Canvas = (*Renderer)(nil) // assert interface conformance

// flattening precision of bezier clip paths, in segments per curve
const clipSegments = 16

type stateKind uint8

const (
	stTransform stateKind = iota
	stClip
	stLayer
)

type pdfState struct {
	kind stateKind

	// layer scope: values to restore at pop
	opacity float64
	blend   string
}

// Renderer writes the painting operations into a gofpdf document,
// on the current page.
//
// PDF has no transparency groups in this wrapper: layer opacity and
// blend mode are folded into the alpha of each enclosed draw call,
// which is exact for non overlapping content.
type Renderer struct {
	pdf    *gofpdf.Fpdf
	states []pdfState

	// current layer compositing, applied to every draw
	opacity float64
	blend   string

	imageCount int
}

// NewRenderer returns a renderer writing to the given `pdf`,
// which must have an open page.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, opacity: 1, blend: "Normal"}
}

// RenderToPDF lays the whole tree onto a single page PDF document
// of the given size, in points.
func RenderToPDF(tree *svgscene.Tree, width, height float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.AddPage()
	svgscene.RenderToCanvas(tree, width, height, NewRenderer(pdf))
	return pdf
}

// RenderToFile renders the tree into the PDF file `pdfName`.
func RenderToFile(tree *svgscene.Tree, width, height float64, pdfName string) error {
	return RenderToPDF(tree, width, height).OutputFileAndClose(pdfName)
}

func (r *Renderer) PushTransform(m svgpath.Matrix2D) {
	r.pdf.TransformBegin()
	r.pdf.Transform(gofpdf.TransformMatrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F})
	r.states = append(r.states, pdfState{kind: stTransform})
}

func (r *Renderer) PushClip(clip svgscene.ClipPath) {
	device := clip.Path.TransformedBy(clip.Transform)
	poly := firstSubpathPolygon(device.Flatten(clipSegments))
	if len(poly) >= 3 {
		r.pdf.ClipPolygon(poly, false)
	} else {
		// no usable polygon: clip to the path extent
		b := device.BoundingBox()
		r.pdf.ClipRect(b.X, b.Y, b.W, b.H, false)
	}
	r.states = append(r.states, pdfState{kind: stClip})
}

func (r *Renderer) PushLayer(opacity float64, blend svgscene.BlendMode) {
	r.states = append(r.states, pdfState{kind: stLayer, opacity: r.opacity, blend: r.blend})
	r.opacity *= opacity
	r.blend = blendName(blend)
}

func (r *Renderer) Pop() {
	if len(r.states) == 0 {
		// unbalanced pop: a caller error, absorbed
		return
	}
	st := r.states[len(r.states)-1]
	r.states = r.states[:len(r.states)-1]
	switch st.kind {
	case stTransform:
		r.pdf.TransformEnd()
	case stClip:
		r.pdf.ClipEnd()
	case stLayer:
		r.opacity = st.opacity
		r.blend = st.blend
	}
}

func (r *Renderer) DrawPath(shape svgpath.Path, style svgscene.PathStyle) {
	if len(shape) == 0 || !shape.IsFinite() {
		return
	}
	if style.FillerColor != nil {
		alpha := r.setFillPattern(style.FillerColor, style.FillOpacity)
		r.pdf.SetAlpha(alpha, r.blend)
		r.writePath(shape)
		if style.UseNonZeroWinding {
			r.pdf.DrawPath("f")
		} else {
			r.pdf.DrawPath("f*")
		}
	}
	if style.LinerColor != nil && style.LineWidth > 0 {
		alpha := r.setStrokePattern(style.LinerColor, style.LineOpacity)
		r.setStrokeOptions(style.StrokeOptions())
		r.pdf.SetAlpha(alpha, r.blend)
		r.writePath(shape)
		r.pdf.DrawPath("D")
	}
}

func (r *Renderer) DrawImage(img image.Image, placement svgpath.Bounds) {
	if img == nil || placement.IsEmpty() || !placement.IsFinite() {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	r.imageCount++
	name := fmt.Sprintf("svgscene-img-%d", r.imageCount)
	options := gofpdf.ImageOptions{ImageType: "PNG"}
	r.pdf.RegisterImageOptionsReader(name, options, &buf)
	r.pdf.SetAlpha(r.opacity, r.blend)
	r.pdf.ImageOptions(name, placement.X, placement.Y, placement.W, placement.H,
		false, options, 0, "")
}

func (r *Renderer) DrawGlyphRun(run *svgscene.GlyphRun, style svgscene.PathStyle) {
	if run == nil {
		return
	}
	r.DrawPath(run.Outline(), style)
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// writePath replays the path into the pdf current path.
func (r *Renderer) writePath(p svgpath.Path) {
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			r.pdf.MoveTo(fixedTof(fixed.Point26_6(op)))
		case svgpath.LineTo:
			r.pdf.LineTo(fixedTof(fixed.Point26_6(op)))
		case svgpath.QuadTo:
			cx, cy := fixedTof(op[0])
			x, y := fixedTof(op[1])
			r.pdf.CurveTo(cx, cy, x, y)
		case svgpath.CubicTo:
			cx0, cy0 := fixedTof(op[0])
			cx1, cy1 := fixedTof(op[1])
			x, y := fixedTof(op[2])
			r.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
		case svgpath.Close:
			r.pdf.ClosePath()
		}
	}
}

// TODO: support gradient
func (r *Renderer) setFillPattern(pattern svgscene.Pattern, opacity float64) (alpha float64) {
	c := patternColor(pattern)
	r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	return opacity * r.opacity * float64(c.A) / 255.
}

func (r *Renderer) setStrokePattern(pattern svgscene.Pattern, opacity float64) (alpha float64) {
	c := patternColor(pattern)
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	return opacity * r.opacity * float64(c.A) / 255.
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

func (r *Renderer) setStrokeOptions(options svgscene.StrokeOptions) {
	var capStyle string
	switch options.Join.TrailLineCap {
	case svgscene.RoundCap, svgscene.CubicCap, svgscene.QuadraticCap:
		capStyle = "round"
	case svgscene.SquareCap:
		capStyle = "square"
	default:
		capStyle = "butt"
	}
	var joinStyle string
	switch options.Join.LineJoin {
	case svgscene.Round:
		joinStyle = "round"
	case svgscene.Bevel:
		joinStyle = "bevel"
	default:
		joinStyle = "miter"
	}
	r.pdf.SetLineWidth(float64(options.LineWidth) / 64)
	r.pdf.SetLineCapStyle(capStyle)
	r.pdf.SetLineJoinStyle(joinStyle)
	r.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
}

// firstSubpathPolygon returns the vertices of the first subpath of a
// flattened path. PDF polygon clipping accepts a single contour.
func firstSubpathPolygon(flat svgpath.Path) []gofpdf.PointType {
	var poly []gofpdf.PointType
	for _, op := range flat {
		switch op := op.(type) {
		case svgpath.MoveTo:
			if len(poly) != 0 {
				return poly
			}
			x, y := fixedTof(fixed.Point26_6(op))
			poly = append(poly, gofpdf.PointType{X: x, Y: y})
		case svgpath.LineTo:
			x, y := fixedTof(fixed.Point26_6(op))
			poly = append(poly, gofpdf.PointType{X: x, Y: y})
		case svgpath.Close:
			return poly
		}
	}
	return poly
}

func blendName(mode svgscene.BlendMode) string {
	switch mode {
	case svgscene.BlendMultiply:
		return "Multiply"
	case svgscene.BlendScreen:
		return "Screen"
	case svgscene.BlendOverlay:
		return "Overlay"
	case svgscene.BlendDarken:
		return "Darken"
	case svgscene.BlendLighten:
		return "Lighten"
	case svgscene.BlendColorDodge:
		return "ColorDodge"
	case svgscene.BlendColorBurn:
		return "ColorBurn"
	case svgscene.BlendHardLight:
		return "HardLight"
	case svgscene.BlendSoftLight:
		return "SoftLight"
	case svgscene.BlendDifference:
		return "Difference"
	case svgscene.BlendExclusion:
		return "Exclusion"
	default:
		return "Normal"
	}
}
