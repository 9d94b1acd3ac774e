package svgscene

import (
	"image"

	"github.com/benoitkugler/svgscene/svgpath"
)

// BlendMode selects how an isolated group layer is composited
// over the content below it. The values follow the CSS
// mix-blend-mode keywords.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
)

func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDarken:
		return "Darken"
	case BlendLighten:
		return "Lighten"
	case BlendColorDodge:
		return "ColorDodge"
	case BlendColorBurn:
		return "ColorBurn"
	case BlendHardLight:
		return "HardLight"
	case BlendSoftLight:
		return "SoftLight"
	case BlendDifference:
		return "Difference"
	case BlendExclusion:
		return "Exclusion"
	default:
		return "<unknown BlendMode>"
	}
}

// ClipPath restricts painting to the area covered by its path.
type ClipPath struct {
	Path svgpath.Path
	// Transform maps the clip geometry into the clipped
	// node's coordinate space.
	Transform svgpath.Matrix2D
	EvenOdd   bool
}

// Canvas is the capability interface every painting backend provides.
// The shared renderer drives it; backends never inspect the tree.
//
// Push* and Pop calls are strictly nested: Pop undoes the most recent
// un-popped Push*, whichever capability it was. The renderer guarantees
// balanced calls for any input.
//
// A Canvas handed to a render entry point must carry no pre-existing
// transform; violating this is a caller error which skews the output
// but must not crash.
//
// A Canvas is not safe for concurrent use: exactly one render call may
// drive a given instance at a time.
type Canvas interface {
	// PushTransform composes `m` onto the current transform.
	PushTransform(m svgpath.Matrix2D)

	// PushClip restricts subsequent painting, until the matching Pop,
	// to the clip area expressed in the current coordinate space.
	PushClip(clip ClipPath)

	// PushLayer opens an isolated compositing group: painting until the
	// matching Pop is buffered, then composited with the given opacity
	// (in [0, 1]) and blend mode.
	PushLayer(opacity float64, blend BlendMode)

	// Pop closes the most recent Push*.
	Pop()

	// DrawPath fills and/or strokes `shape` (expressed in the current
	// coordinate space) as the style directs.
	DrawPath(shape svgpath.Path, style PathStyle)

	// DrawImage paints `img` scaled into `placement`, expressed in the
	// current coordinate space.
	DrawImage(img image.Image, placement svgpath.Bounds)

	// DrawGlyphRun paints a run of positioned glyphs. Backends without
	// native glyph support render the run's Outline as a path.
	DrawGlyphRun(run *GlyphRun, style PathStyle)
}
