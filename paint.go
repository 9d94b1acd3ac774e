package svgscene

import (
	"image/color"

	"github.com/benoitkugler/svgscene/svgpath"
	"golang.org/x/image/math/fixed"
)

// Pattern describes what fills or strokes a shape:
// either PlainColor or Gradient.
type Pattern interface {
	isPattern()
}

// PlainColor is a solid, non premultiplied color.
type PlainColor struct {
	color.NRGBA
}

// NewPlainColor builds a plain color pattern.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{NRGBA: color.NRGBA{R: r, G: g, B: b, A: a}}
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// GradientUnits is the coordinate system of the gradient geometry.
type GradientUnits byte

const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod describes how a gradient paints outside its bounds.
type SpreadMethod byte

const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction GradientDirecter
	Stops     []GradStop
	Bounds    svgpath.Bounds
	Matrix    svgpath.Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits
}

// GradientDirecter is either Linear or Radial.
type GradientDirecter interface {
	IsRadial() bool
}

// Linear is a linear direction: x1, y1, x2, y2
type Linear [4]float64

func (Linear) IsRadial() bool { return false }

// Radial is a radial direction: cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) IsRadial() bool { return true }

// ColorAt interpolates the gradient stops at `offset` in [0, 1],
// applying `opacity`. Backends without native gradient support use it
// to pick a representative color (typically at offset 0.5).
func (g Gradient) ColorAt(offset, opacity float64) color.Color {
	if len(g.Stops) == 0 {
		return color.NRGBA{}
	}
	if offset <= g.Stops[0].Offset {
		return applyStopOpacity(g.Stops[0], opacity)
	}
	last := g.Stops[len(g.Stops)-1]
	if offset >= last.Offset {
		return applyStopOpacity(last, opacity)
	}
	for i := 1; i < len(g.Stops); i++ {
		s0, s1 := g.Stops[i-1], g.Stops[i]
		if offset > s1.Offset {
			continue
		}
		span := s1.Offset - s0.Offset
		t := 0.
		if span > 0 {
			t = (offset - s0.Offset) / span
		}
		r0, g0, b0, a0 := s0.StopColor.RGBA()
		r1, g1, b1, a1 := s1.StopColor.RGBA()
		lerp := func(u, v uint32) uint8 {
			return uint8((float64(u)*(1-t) + float64(v)*t) / 257)
		}
		op := (s0.Opacity*(1-t) + s1.Opacity*t) * opacity
		return color.NRGBA{
			R: lerp(r0, r1), G: lerp(g0, g1), B: lerp(b0, b1),
			A: uint8(float64(lerp(a0, a1)) * op),
		}
	}
	return applyStopOpacity(last, opacity)
}

func applyStopOpacity(s GradStop, opacity float64) color.Color {
	r, g, b, a := s.StopColor.RGBA()
	return color.NRGBA{
		R: uint8(r / 257), G: uint8(g / 257), B: uint8(b / 257),
		A: uint8(float64(a/257) * s.Opacity * opacity),
	}
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Arc JoinMode = iota // New in SVG2
	Round
	Bevel
	Miter
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// GapMode defines how to bridge gaps when the miter limit is exceeded,
// and is not part of the SVG2.0 standard.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

func (g GapMode) String() string {
	switch g {
	case NilGap:
		return "NilGap"
	case FlatGap:
		return "FlatGap"
	case RoundGap:
		return "RoundGap"
	case CubicGap:
		return "CubicGap"
	case QuadraticGap:
		return "QuadraticGap"
	default:
		return "<unknown GapMode>"
	}
}

type JoinOptions struct {
	MiterLimit   fixed.Int26_6 // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	LineJoin     JoinMode      // JoinMode for curve segments
	TrailLineCap CapMode       // capping functions for leading and trailing line ends. If one is nil, the other function is used at both ends.

	LeadLineCap CapMode // not part of the standard specification
	LineGap     GapMode // not part of the standard specification. determines how a gap on the convex side of two lines joining is filled
}

type StrokeOptions struct {
	LineWidth fixed.Int26_6 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}

// PathStyle binds fill and stroke settings to a path node.
// A nil FillerColor (resp. LinerColor) disables filling (resp. stroking).
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor Pattern // either PlainColor or Gradient
}

func fToFixed(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }

// DefaultStyle fills black with the non-zero winding rule,
// full opacity and no stroke.
var DefaultStyle = PathStyle{
	FillOpacity:       1.0,
	LineOpacity:       1.0,
	LineWidth:         2.0,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit:   fToFixed(4.),
		LineJoin:     Bevel,
		TrailLineCap: ButtCap,
	},
	FillerColor: NewPlainColor(0x00, 0x00, 0x00, 0xff),
}

// StrokeOptions resolves the style's stroke settings, substituting
// defaults for unset cap and gap modes.
func (s PathStyle) StrokeOptions() StrokeOptions {
	lineGap := s.Join.LineGap
	if lineGap == NilGap {
		lineGap = DefaultStyle.Join.LineGap
	}
	lineCap := s.Join.TrailLineCap
	if lineCap == NilCap {
		lineCap = DefaultStyle.Join.TrailLineCap
	}
	leadLineCap := lineCap
	if s.Join.LeadLineCap != NilCap {
		leadLineCap = s.Join.LeadLineCap
	}
	return StrokeOptions{
		LineWidth: fToFixed(s.LineWidth),
		Join: JoinOptions{
			MiterLimit:   s.Join.MiterLimit,
			LineJoin:     s.Join.LineJoin,
			LeadLineCap:  leadLineCap,
			TrailLineCap: lineCap,
			LineGap:      lineGap,
		},
		Dash: s.Dash,
	}
}
