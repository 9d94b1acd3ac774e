package svgpath

import (
	"math"

	"github.com/srwiley/rasterx"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// magic number to approximate a quarter circle with a cubic bezier
const kappa = 0.5522847498307936

// Rect returns a closed rectangular path, rotated
// around its center by rot degrees.
func Rect(minX, minY, maxX, maxY, rot float64) Path {
	var p Path
	p.addRect(minX, minY, maxX, maxY, rot)
	return p
}

// RoundedRect returns a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis, rotated around its
// center by rot degrees.
func RoundedRect(minX, minY, maxX, maxY, rx, ry, rot float64) Path {
	var p Path
	p.addRoundRect(minX, minY, maxX, maxY, rx, ry, rot)
	return p
}

// Ellipse returns a closed elliptical path centered on (cx, cy).
func Ellipse(cx, cy, rx, ry float64) Path {
	var p Path
	p.addEllipse(cx, cy, rx, ry)
	return p
}

// Circle returns a closed circular path centered on (cx, cy).
func Circle(cx, cy, r float64) Path { return Ellipse(cx, cy, r, r) }

// addRect adds a rectangle of the indicated size, rotated
// around the center by rot degrees.
func (p *Path) addRect(minX, minY, maxX, maxY, rot float64) {
	rot *= math.Pi / 180
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	m := Identity.Translate(cx, cy).Rotate(rot).Translate(-cx, -cy)
	q := &matrixAdder{M: m, path: p}
	q.Start(toFixedP(minX, minY))
	q.Line(toFixedP(maxX, minY))
	q.Line(toFixedP(maxX, maxY))
	q.Line(toFixedP(minX, maxY))
	q.path.Stop(true)
}

// addRoundRect adds a rectangle of the indicated size, rotated
// around the center by rot degrees with rounded corners of radius
// rx in the x axis and ry in the y axis.
func (p *Path) addRoundRect(minX, minY, maxX, maxY, rx, ry, rot float64) {
	if rx <= 0 || ry <= 0 {
		p.addRect(minX, minY, maxX, maxY, rot)
		return
	}
	rot *= math.Pi / 180

	w := maxX - minX
	if w < rx*2 {
		rx = w / 2
	}
	h := maxY - minY
	if h < ry*2 {
		ry = h / 2
	}
	stretch := rx / ry
	midY := minY + h/2
	m := Identity.Translate(minX+w/2, midY).Rotate(rot).Scale(1, 1/stretch).Translate(-minX-w/2, -minY-h/2)
	maxY = midY + h/2*stretch
	minY = midY - h/2*stretch

	q := &matrixAdder{M: m, path: p}

	q.Start(toFixedP(minX+rx, minY))
	q.Line(toFixedP(maxX-rx, minY))
	rasterx.RoundGap(q, toFixedP(maxX-rx, minY+rx), toFixedP(0, -rx), toFixedP(rx, 0))
	q.Line(toFixedP(maxX, maxY-rx))
	rasterx.RoundGap(q, toFixedP(maxX-rx, maxY-rx), toFixedP(rx, 0), toFixedP(0, rx))
	q.Line(toFixedP(minX+rx, maxY))
	rasterx.RoundGap(q, toFixedP(minX+rx, maxY-rx), toFixedP(0, rx), toFixedP(-rx, 0))
	q.Line(toFixedP(minX, minY+rx))
	rasterx.RoundGap(q, toFixedP(minX+rx, minY+rx), toFixedP(-rx, 0), toFixedP(0, -rx))
	q.path.Stop(true)
}

// addEllipse approximates an axis aligned ellipse with four
// cubic beziers.
func (p *Path) addEllipse(cx, cy, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		return
	}
	dx, dy := rx*kappa, ry*kappa
	p.Start(toFixedP(cx+rx, cy))
	p.CubeBezier(toFixedP(cx+rx, cy+dy), toFixedP(cx+dx, cy+ry), toFixedP(cx, cy+ry))
	p.CubeBezier(toFixedP(cx-dx, cy+ry), toFixedP(cx-rx, cy+dy), toFixedP(cx-rx, cy))
	p.CubeBezier(toFixedP(cx-rx, cy-dy), toFixedP(cx-dx, cy-ry), toFixedP(cx, cy-ry))
	p.CubeBezier(toFixedP(cx+dx, cy-ry), toFixedP(cx+rx, cy-dy), toFixedP(cx+rx, cy))
	p.Stop(true)
}
