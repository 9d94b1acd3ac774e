package svgscene

import (
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/svgscene/svgpath"
)

// Text shaping happens in the preprocessing step: a glyph run is
// already shaped and positioned, the tree only carries glyph ids.
// Outlines are extracted on demand from the embedded font.

// Glyph is one positioned glyph of a run.
type Glyph struct {
	GID sfnt.GlyphIndex
	// X, Y is the pen position of the glyph, in the run's
	// coordinate space (the baseline is at Y).
	X, Y float64
}

// GlyphRun is a run of positioned glyphs sharing one font and size.
type GlyphRun struct {
	font *sfnt.Font

	// Size is the em size, in tree units.
	Size float64

	Glyphs []Glyph
}

// NewGlyphRun parses `fontData` (a TTF or OTF font file) and returns
// a run ready to receive glyphs.
func NewGlyphRun(fontData []byte, size float64, glyphs []Glyph) (*GlyphRun, error) {
	ft, err := sfnt.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return &GlyphRun{font: ft, Size: size, Glyphs: glyphs}, nil
}

// Outline flattens the run into a single path, in the run's
// coordinate space (y axis growing down, glyphs sitting on their
// baselines). Glyphs whose outline cannot be loaded are skipped.
func (r *GlyphRun) Outline() svgpath.Path {
	if r == nil || r.font == nil || !(r.Size > 0) {
		return nil
	}
	ppem := fixed.Int26_6(r.Size * 64)
	if ppem <= 0 {
		return nil
	}

	var (
		buf sfnt.Buffer
		out svgpath.Path
	)
	for _, g := range r.Glyphs {
		segments, err := r.font.LoadGlyph(&buf, g.GID, ppem, nil)
		if err != nil {
			continue
		}
		at := svgpath.Identity.Translate(g.X, g.Y)
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				out.Stop(false)
				out.Start(at.TFixed(seg.Args[0]))
			case sfnt.SegmentOpLineTo:
				out.Line(at.TFixed(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				out.QuadBezier(at.TFixed(seg.Args[0]), at.TFixed(seg.Args[1]))
			case sfnt.SegmentOpCubeTo:
				out.CubeBezier(at.TFixed(seg.Args[0]), at.TFixed(seg.Args[1]), at.TFixed(seg.Args[2]))
			}
		}
		out.Stop(true)
	}
	return out
}
