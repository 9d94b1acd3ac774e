// Package svgrecord implements a recording backend: every canvas
// call is captured as a value in a replayable operation list.
//
// A recording is useful to cache a traversal and replay it onto
// several concrete backends, and as a reference observer in tests:
// the no-op guarantees of the rendering contract translate to "no
// operation recorded".
package svgrecord

import (
	"image"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
)

var _ svgscene.Canvas = (*Canvas)(nil) // assert interface conformance

// Op is one recorded canvas operation.
type Op interface {
	// Replay applies the operation onto `dst`.
	Replay(dst svgscene.Canvas)
}

type PushTransformOp struct {
	Transform svgpath.Matrix2D
}

type PushClipOp struct {
	Clip svgscene.ClipPath
}

type PushLayerOp struct {
	Opacity float64
	Blend   svgscene.BlendMode
}

type PopOp struct{}

type DrawPathOp struct {
	Shape svgpath.Path
	Style svgscene.PathStyle
}

type DrawImageOp struct {
	Image     image.Image
	Placement svgpath.Bounds
}

type DrawGlyphRunOp struct {
	Run   *svgscene.GlyphRun
	Style svgscene.PathStyle
}

func (op PushTransformOp) Replay(dst svgscene.Canvas) { dst.PushTransform(op.Transform) }
func (op PushClipOp) Replay(dst svgscene.Canvas)      { dst.PushClip(op.Clip) }
func (op PushLayerOp) Replay(dst svgscene.Canvas)     { dst.PushLayer(op.Opacity, op.Blend) }
func (op PopOp) Replay(dst svgscene.Canvas)           { dst.Pop() }
func (op DrawPathOp) Replay(dst svgscene.Canvas)      { dst.DrawPath(op.Shape, op.Style) }
func (op DrawImageOp) Replay(dst svgscene.Canvas)     { dst.DrawImage(op.Image, op.Placement) }
func (op DrawGlyphRunOp) Replay(dst svgscene.Canvas)  { dst.DrawGlyphRun(op.Run, op.Style) }

// Canvas records the operations driven onto it. The zero value is an
// empty recording ready for use.
type Canvas struct {
	Ops []Op
}

func (c *Canvas) PushTransform(m svgpath.Matrix2D) {
	c.Ops = append(c.Ops, PushTransformOp{Transform: m})
}

func (c *Canvas) PushClip(clip svgscene.ClipPath) {
	c.Ops = append(c.Ops, PushClipOp{Clip: clip})
}

func (c *Canvas) PushLayer(opacity float64, blend svgscene.BlendMode) {
	c.Ops = append(c.Ops, PushLayerOp{Opacity: opacity, Blend: blend})
}

func (c *Canvas) Pop() {
	c.Ops = append(c.Ops, PopOp{})
}

func (c *Canvas) DrawPath(shape svgpath.Path, style svgscene.PathStyle) {
	c.Ops = append(c.Ops, DrawPathOp{Shape: shape, Style: style})
}

func (c *Canvas) DrawImage(img image.Image, placement svgpath.Bounds) {
	c.Ops = append(c.Ops, DrawImageOp{Image: img, Placement: placement})
}

func (c *Canvas) DrawGlyphRun(run *svgscene.GlyphRun, style svgscene.PathStyle) {
	c.Ops = append(c.Ops, DrawGlyphRunOp{Run: run, Style: style})
}

// Reset clears the recording for reuse without deallocating.
func (c *Canvas) Reset() { c.Ops = c.Ops[:0] }

// DrawCount returns the number of recorded operations which actually
// paint (draw calls, as opposed to state pushes and pops).
func (c *Canvas) DrawCount() int {
	count := 0
	for _, op := range c.Ops {
		switch op.(type) {
		case DrawPathOp, DrawImageOp, DrawGlyphRunOp:
			count++
		}
	}
	return count
}

// Replay drives the recorded operations onto `dst`, in order.
func (c *Canvas) Replay(dst svgscene.Canvas) {
	for _, op := range c.Ops {
		op.Replay(dst)
	}
}
