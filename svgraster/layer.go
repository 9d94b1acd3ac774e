package svgraster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/benoitkugler/svgscene"
	"github.com/benoitkugler/svgscene/svgpath"
)

// Transform, clip and layer scopes are kept on one stack, so that a
// single Pop undoes the most recent push whatever its capability.
// Clip and layer scopes redirect painting to an offscreen buffer,
// composited back when the scope closes (the approach of masking
// rasterizers: paint first, mask at composite time).

type stateKind uint8

const (
	stTransform stateKind = iota
	stClip
	stLayer
)

type state struct {
	kind stateKind

	// transform to restore at pop
	ctm svgpath.Matrix2D

	// offscreen target of a clip or layer scope
	buf *image.RGBA

	// clip scope
	clip    svgscene.ClipPath
	clipCTM svgpath.Matrix2D // device transform of the clip geometry

	// layer scope
	opacity float64
	blend   svgscene.BlendMode
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
		r.composeClip(st)
	case stLayer:
		r.composeLayer(st)
	}
}

// target returns the image currently painted into: the innermost
// clip or layer buffer, or the destination itself.
func (r *Renderer) target() *image.RGBA {
	for i := len(r.states) - 1; i >= 0; i-- {
		if buf := r.states[i].buf; buf != nil {
			return buf
		}
	}
	return r.dst
}

func (r *Renderer) newLayer() *image.RGBA {
	return image.NewRGBA(r.dst.Bounds())
}

// composeClip rasterizes the clip geometry into an alpha mask and
// draws the scope's buffer through it.
func (r *Renderer) composeClip(st state) {
	mask := r.newLayer()
	fillPath(mask, st.clip.Path.TransformedBy(st.clipCTM),
		color.NRGBA{A: 0xff}, !st.clip.EvenOdd)

	b := r.dst.Bounds()
	draw.DrawMask(r.target(), b, st.buf, b.Min, mask, b.Min, draw.Over)
}

// composeLayer composites the scope's buffer with its opacity and
// blend mode.
func (r *Renderer) composeLayer(st state) {
	b := r.dst.Bounds()
	dst := r.target()
	if st.blend == svgscene.BlendNormal {
		if st.opacity >= 1 {
			draw.Draw(dst, b, st.buf, b.Min, draw.Over)
		} else {
			a := uint8(st.opacity*0xff + 0.5)
			mask := image.NewUniform(color.Alpha{A: a})
			draw.DrawMask(dst, b, st.buf, b.Min, mask, image.Point{}, draw.Over)
		}
		return
	}
	blendImage(dst, st.buf, st.opacity, st.blend)
}

// blendImage composites src over dst in place, following the CSS
// compositing model: the blend function mixes backdrop and source
// colors, alpha composites with the over operator.
func blendImage(dst, src *image.RGBA, opacity float64, mode svgscene.BlendMode) {
	blend := blendFunc(mode)
	b := dst.Bounds().Intersect(src.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cb, ab := unpremul(dst.RGBAAt(x, y))
			cs, as := unpremul(src.RGBAAt(x, y))
			as *= opacity
			if as == 0 {
				continue
			}

			ao := as + ab*(1-as)
			var out [3]float64
			for i := 0; i < 3; i++ {
				co := as*(1-ab)*cs[i] + as*ab*blend(cb[i], cs[i]) + (1-as)*ab*cb[i]
				if ao > 0 {
					out[i] = co / ao
				}
			}
			dst.SetRGBA(x, y, premul(out, ao))
		}
	}
}

func unpremul(c color.RGBA) (rgb [3]float64, alpha float64) {
	alpha = float64(c.A) / 0xff
	if c.A == 0 {
		return rgb, 0
	}
	rgb[0] = float64(c.R) / float64(c.A)
	rgb[1] = float64(c.G) / float64(c.A)
	rgb[2] = float64(c.B) / float64(c.A)
	return rgb, alpha
}

func premul(rgb [3]float64, alpha float64) color.RGBA {
	clamp := func(v float64) uint8 {
		v *= alpha * 0xff
		if v <= 0 {
			return 0
		}
		if v >= 0xff {
			return 0xff
		}
		return uint8(v + 0.5)
	}
	a := alpha * 0xff
	if a < 0 {
		a = 0
	} else if a > 0xff {
		a = 0xff
	}
	return color.RGBA{R: clamp(rgb[0]), G: clamp(rgb[1]), B: clamp(rgb[2]), A: uint8(a + 0.5)}
}

// blendFunc returns the separable blend function B(backdrop, source)
// of the CSS mix-blend-mode model.
func blendFunc(mode svgscene.BlendMode) func(cb, cs float64) float64 {
	switch mode {
	case svgscene.BlendMultiply:
		return func(cb, cs float64) float64 { return cb * cs }
	case svgscene.BlendScreen:
		return screen
	case svgscene.BlendOverlay:
		return func(cb, cs float64) float64 { return hardLight(cs, cb) }
	case svgscene.BlendDarken:
		return func(cb, cs float64) float64 { return min(cb, cs) }
	case svgscene.BlendLighten:
		return func(cb, cs float64) float64 { return max(cb, cs) }
	case svgscene.BlendColorDodge:
		return func(cb, cs float64) float64 {
			if cb == 0 {
				return 0
			}
			if cs == 1 {
				return 1
			}
			return min(1, cb/(1-cs))
		}
	case svgscene.BlendColorBurn:
		return func(cb, cs float64) float64 {
			if cb == 1 {
				return 1
			}
			if cs == 0 {
				return 0
			}
			return 1 - min(1, (1-cb)/cs)
		}
	case svgscene.BlendHardLight:
		return hardLight
	case svgscene.BlendSoftLight:
		return softLight
	case svgscene.BlendDifference:
		return func(cb, cs float64) float64 {
			if cb > cs {
				return cb - cs
			}
			return cs - cb
		}
	case svgscene.BlendExclusion:
		return func(cb, cs float64) float64 { return cb + cs - 2*cb*cs }
	default:
		return func(cb, cs float64) float64 { return cs }
	}
}

func screen(cb, cs float64) float64 { return cb + cs - cb*cs }

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	return screen(cb, 2*cs-1)
}

func softLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}
