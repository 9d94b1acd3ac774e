package svgscene

import (
	"math"

	"github.com/benoitkugler/svgscene/svgpath"
)

// This file implements the rendering contract shared by every
// backend: one depth-first paint traversal, written once against the
// Canvas interface. Backends only differ in their native leaf calls.
//
// The contract is fault free: malformed or degenerate input degrades
// to "paint nothing" at node granularity, never to a panic or an
// error surfaced to the caller.

// RenderToCanvas paints the whole tree onto `canvas`, fitted into an
// output area of the given size.
//
// The document viewbox is mapped to the output with a uniform scale
// and centered (the xMidYMid/meet policy). A nil or empty tree or a
// nil canvas, or a zero, negative or non-finite size, is a no-op.
func RenderToCanvas(tree *Tree, width, height float64, canvas Canvas) {
	// Len covers trees built by hand rather than through NewTree,
	// which may carry no root node at all
	if tree == nil || tree.Len() == 0 || canvas == nil || !sizeValid(width, height) {
		return
	}
	fit := fitTransform(tree.ViewBox, width, height)
	root := fit.Mult(tree.Transform)
	if root.IsDegenerate() {
		return
	}
	canvas.PushTransform(root)
	renderNode(tree, Root, canvas)
	canvas.Pop()
}

// RenderToCanvasByID paints only the subtree declared with name `id`,
// fitted into the output size using that subtree's own bounding box
// as viewbox. The subtree's ancestor-chain transforms are applied, so
// its internal geometry is rendered exactly as in the whole document;
// siblings and ancestors' siblings are not painted.
//
// An unknown id, or a node without renderable geometry, is a no-op:
// the canvas is left untouched.
//
// The node index is rebuilt on each call; callers issuing many by-id
// renders against the same tree should build it once with BuildIndex
// and use RenderNodeToCanvas.
func RenderToCanvasByID(tree *Tree, width, height float64, id string, canvas Canvas) {
	if tree == nil || canvas == nil || !sizeValid(width, height) {
		return
	}
	RenderNodeToCanvas(tree, BuildIndex(tree), width, height, id, canvas)
}

// RenderNodeToCanvas is RenderToCanvasByID with a caller-provided
// index, which must have been built from `tree`.
func RenderNodeToCanvas(tree *Tree, index *Index, width, height float64, id string, canvas Canvas) {
	if tree == nil || tree.Len() == 0 || index == nil || canvas == nil || !sizeValid(width, height) {
		return
	}
	target, ok := index.Lookup(id)
	if !ok {
		return
	}
	bounds, _ := index.SubtreeBounds(id)
	if bounds.IsEmpty() || !bounds.IsFinite() {
		// nothing independently renderable under this node
		return
	}
	fit := fitTransform(bounds, width, height)
	abs := fit.Mult(tree.absTransform(target))
	if abs.IsDegenerate() {
		return
	}
	canvas.PushTransform(abs)
	renderNode(tree, target, canvas)
	canvas.Pop()
}

func sizeValid(w, h float64) bool {
	return w > 0 && h > 0 && !math.IsInf(w, 0) && !math.IsInf(h, 0)
}

// fitTransform maps `box` into a width × height output area:
// uniform scale, centered. A degenerate box yields a degenerate
// transform, which the callers turn into a no-op.
func fitTransform(box svgpath.Bounds, width, height float64) svgpath.Matrix2D {
	if box.IsEmpty() || !box.IsFinite() {
		return svgpath.Matrix2D{}
	}
	scale := math.Min(width/box.W, height/box.H)
	dx := (width - box.W*scale) / 2
	dy := (height - box.H*scale) / 2
	return svgpath.Identity.
		Translate(dx, dy).
		Scale(scale, scale).
		Translate(-box.X, -box.Y)
}

// renderNode paints the node and its descendants. The canvas
// transform stack holds the ancestor transforms; the node pushes its
// own before painting.
func renderNode(t *Tree, id NodeID, canvas Canvas) {
	n := t.node(id)
	if n.Transform.IsDegenerate() {
		// collapsed to nothing, not a fault
		return
	}
	canvas.PushTransform(n.Transform)
	defer canvas.Pop()

	switch n.Kind {
	case KindGroup:
		renderGroup(t, n, canvas)
	case KindPath:
		if pathDrawable(n.Shape, n.Style) {
			canvas.DrawPath(n.Shape, n.Style)
		}
	case KindImage:
		if n.Image != nil && !n.Placement.IsEmpty() && n.Placement.IsFinite() {
			canvas.DrawImage(n.Image, n.Placement)
		}
	case KindGlyphRun:
		if n.Run != nil && len(n.Run.Glyphs) != 0 &&
			(n.Style.FillerColor != nil || n.Style.LinerColor != nil) {
			canvas.DrawGlyphRun(n.Run, n.Style)
		}
	}
}

func renderGroup(t *Tree, n *Node, canvas Canvas) {
	opacity := clampOpacity(n.Opacity)
	if opacity == 0 {
		return
	}

	// An isolated layer is only opened when compositing requires one;
	// a plain group paints its children directly.
	layered := opacity < 1 || n.Blend != BlendNormal || n.Isolated
	clipped := n.Clip != nil && len(n.Clip.Path) != 0 && n.Clip.Path.IsFinite() &&
		!n.Clip.Transform.IsDegenerate()

	if layered {
		canvas.PushLayer(opacity, n.Blend)
	}
	if clipped {
		canvas.PushClip(*n.Clip)
	}

	for _, child := range n.children {
		renderNode(t, child, canvas)
	}

	if clipped {
		canvas.Pop()
	}
	if layered {
		canvas.Pop()
	}
}

func pathDrawable(shape svgpath.Path, style PathStyle) bool {
	if len(shape) == 0 || !shape.IsFinite() {
		return false
	}
	return style.FillerColor != nil || style.LinerColor != nil
}

func clampOpacity(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(0, math.Min(1, v))
}
