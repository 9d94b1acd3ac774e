// Package svgraster implements a raster backend painting
// onto an in-memory image, by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var _ svgscene.Canvas = (*Renderer)(nil) // assert interface conformance

// Renderer paints onto an RGBA image. It implements svgscene.Canvas:
// use svgscene.RenderToCanvas and friends to drive it, or the
// RenderToImage shortcuts below.
//
// A Renderer must not be shared between goroutines; concurrent renders
// each use their own instance.
type Renderer struct {
	dst    *image.RGBA
	ctm    svgpath.Matrix2D
	states []state
}

// NewRenderer returns a renderer painting onto `dst`, which keeps
// its current content as backdrop.
func NewRenderer(dst *image.RGBA) *Renderer {
	return &Renderer{dst: dst, ctm: svgpath.Identity}
}

// RenderToImage rasterizes the whole tree into a new image of the
// given size.
func RenderToImage(tree *svgscene.Tree, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	svgscene.RenderToCanvas(tree, float64(width), float64(height), NewRenderer(img))
	return img
}

// RenderNodeToImage rasterizes only the subtree declared with name
// `id` into a new image of the given size. An unknown id yields a
// fully transparent image.
func RenderNodeToImage(tree *svgscene.Tree, id string, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	svgscene.RenderToCanvasByID(tree, float64(width), float64(height), id, NewRenderer(img))
	return img
}

func (r *Renderer) DrawPath(shape svgpath.Path, style svgscene.PathStyle) {
	device := shape.TransformedBy(r.ctm)
	if len(device) == 0 || !device.IsFinite() {
		return
	}
	tgt := r.target()
	b := tgt.Bounds()
	w, h := b.Dx(), b.Dy()

	if style.FillerColor != nil {
		scanner := rasterx.NewScannerGV(w, h, tgt, b)
		filler := rasterx.NewFiller(w, h, scanner)
		filler.SetWinding(style.UseNonZeroWinding)
		feedPath(filler, device)
		setColorFromPattern(style.FillerColor, style.FillOpacity, r.ctm, scanner)
		filler.Draw()
		filler.Clear()
	}

	if style.LinerColor != nil && style.LineWidth > 0 {
		scanner := rasterx.NewScannerGV(w, h, tgt, b)
		dasher := rasterx.NewDasher(w, h, scanner)
		dasher.SetWinding(style.UseNonZeroWinding)
		setStrokeOptions(dasher, style, r.ctm.ScaleFactor())
		feedPath(dasher, device)
		setColorFromPattern(style.LinerColor, style.LineOpacity, r.ctm, scanner)
		dasher.Draw()
		dasher.Clear()
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
	// map the source pixels onto the placement rectangle, then
	// into device space
	local := svgpath.Identity.
		Translate(placement.X, placement.Y).
		Scale(placement.W/float64(src.Dx()), placement.H/float64(src.Dy())).
		Translate(-float64(src.Min.X), -float64(src.Min.Y))
	m := r.ctm.Mult(local)
	if m.IsDegenerate() {
		return
	}
	draw.BiLinear.Transform(r.target(),
		f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F},
		img, src, draw.Over, nil)
}

func (r *Renderer) DrawGlyphRun(run *svgscene.GlyphRun, style svgscene.PathStyle) {
	if run == nil {
		return
	}
	r.DrawPath(run.Outline(), style)
}

// feedPath replays the path operations onto a rasterx consumer.
func feedPath(adder rasterx.Adder, p svgpath.Path) {
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			adder.Start(fixed.Point26_6(op))
		case svgpath.LineTo:
			adder.Line(fixed.Point26_6(op))
		case svgpath.QuadTo:
			adder.QuadBezier(op[0], op[1])
		case svgpath.CubicTo:
			adder.CubeBezier(op[0], op[1], op[2])
		case svgpath.Close:
			adder.Stop(true)
		}
	}
	adder.Stop(false)
}

// fillPath rasterizes `device` (already in device space) into `dst`
// with a plain color, used for clip masks.
func fillPath(dst *image.RGBA, device svgpath.Path, c color.NRGBA, nonZeroWinding bool) {
	if len(device) == 0 || !device.IsFinite() {
		return
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, b)
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetWinding(nonZeroWinding)
	feedPath(filler, device)
	scanner.SetColor(c)
	filler.Draw()
	filler.Clear()
}

func toRasterxGradient(grad svgscene.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgscene.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
		isRadial = false
	case svgscene.Radial:
		points[0], points[1], points[2], points[3], points[4], _ = dir[0], dir[1], dir[2], dir[3], dir[4], dir[5] // in rasterx fr is ignored
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	out := rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Matrix:   rasterx.Matrix2D(grad.Matrix),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: isRadial,
	}
	out.Bounds.X, out.Bounds.Y = grad.Bounds.X, grad.Bounds.Y
	out.Bounds.W, out.Bounds.H = grad.Bounds.W, grad.Bounds.H
	return out
}

// setColorFromPattern resolves the pattern to a scanner color
// function. The path must have been fed to the scanner already, so
// that bounding box gradients can read its extent.
func setColorFromPattern(pattern svgscene.Pattern, opacity float64, ctm svgpath.Matrix2D, scanner rasterx.Scanner) {
	switch fillerColor := pattern.(type) {
	case svgscene.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(fillerColor, opacity))
	case svgscene.Gradient:
		if fillerColor.Units == svgscene.ObjectBoundingBox {
			// the path extent is in device space, matching the
			// already transformed geometry
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			fillerColor.Bounds.X, fillerColor.Bounds.Y = mnx, mny
			fillerColor.Bounds.W, fillerColor.Bounds.H = mxx-mnx, mxy-mny
		} else {
			// user space geometry: bring it into device space
			fillerColor.Matrix = ctm.Mult(fillerColor.Matrix)
		}
		rasterxGradient := toRasterxGradient(fillerColor)
		scanner.SetColor(rasterxGradient.GetColorFunction(opacity))
	}
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgscene.Round:     rasterx.Round,
		svgscene.Bevel:     rasterx.Bevel,
		svgscene.Miter:     rasterx.Miter,
		svgscene.MiterClip: rasterx.MiterClip,
		svgscene.Arc:       rasterx.Arc,
		svgscene.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgscene.ButtCap:      rasterx.ButtCap,
		svgscene.SquareCap:    rasterx.SquareCap,
		svgscene.RoundCap:     rasterx.RoundCap,
		svgscene.CubicCap:     rasterx.CubicCap,
		svgscene.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgscene.FlatGap:      rasterx.FlatGap,
		svgscene.RoundGap:     rasterx.RoundGap,
		svgscene.CubicGap:     rasterx.CubicGap,
		svgscene.QuadraticGap: rasterx.QuadraticGap,
	}
)

// setStrokeOptions configures the dasher, scaling widths and dashes
// from user space to device space.
func setStrokeOptions(dasher *rasterx.Dasher, style svgscene.PathStyle, scale float64) {
	scaled := style
	scaled.LineWidth *= scale
	if len(style.Dash.Dash) != 0 {
		scaled.Dash.Dash = make([]float64, len(style.Dash.Dash))
		for i, d := range style.Dash.Dash {
			scaled.Dash.Dash[i] = d * scale
		}
		scaled.Dash.DashOffset *= scale
	}
	options := scaled.StrokeOptions()
	dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}
