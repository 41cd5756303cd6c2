package solid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/TrayForge/internal/model"
)

// Box builds an axis-aligned box spanning min to max. A box with no volume
// yields an empty solid.
func Box(min, max r3.Vec) *Solid {
	if max.X-min.X <= Epsilon || max.Y-min.Y <= Epsilon || max.Z-min.Z <= Epsilon {
		return &Solid{}
	}
	o := model.Outline{
		{X: min.X, Y: min.Y}, {X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y}, {X: min.X, Y: max.Y},
	}
	return Prism(o, min.Z, max.Z)
}

// Cylinder builds a vertical cylinder approximated by a regular polygon.
func Cylinder(cx, cy, radius, z0, z1 float64, segments int) *Solid {
	if radius <= Epsilon || segments < 3 {
		return &Solid{}
	}
	o := make(model.Outline, segments)
	for i := range o {
		a := 2 * math.Pi * float64(i) / float64(segments)
		o[i] = model.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)}
	}
	return Prism(o, z0, z1)
}

// Prism extrudes a simple polygon from z0 to z1. The outline may be given in
// either winding and may be non-convex; non-convex caps are ear-clipped.
func Prism(o model.Outline, z0, z1 float64) *Solid {
	o = cleanOutline(o.CCW())
	if len(o) < 3 || z1-z0 <= Epsilon || math.Abs(o.SignedArea()) < 1e-9 {
		return &Solid{}
	}
	at := func(p model.Point2D, z float64) r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: z} }

	var polys []Polygon
	add := func(verts []r3.Vec) {
		if p, ok := NewPolygon(verts); ok {
			polys = append(polys, p)
		}
	}

	var caps [][]int
	if isConvex(o) {
		idx := make([]int, len(o))
		for i := range idx {
			idx[i] = i
		}
		caps = [][]int{idx}
	} else {
		for _, t := range triangulate(o) {
			caps = append(caps, []int{t[0], t[1], t[2]})
		}
	}
	for _, c := range caps {
		top := make([]r3.Vec, len(c))
		bottom := make([]r3.Vec, len(c))
		for i, k := range c {
			top[i] = at(o[k], z1)
			bottom[len(c)-1-i] = at(o[k], z0)
		}
		add(top)
		add(bottom)
	}

	n := len(o)
	for i := 0; i < n; i++ {
		p, q := o[i], o[(i+1)%n]
		add([]r3.Vec{at(p, z0), at(q, z0), at(q, z1), at(p, z1)})
	}
	return &Solid{polygons: polys}
}

// Ring builds a rectangular frame: the outer rectangle minus the rectangle
// inset by width.
func Ring(outerMin, outerMax model.Point2D, width, z0, z1 float64) *Solid {
	outer := Box(r3.Vec{X: outerMin.X, Y: outerMin.Y, Z: z0}, r3.Vec{X: outerMax.X, Y: outerMax.Y, Z: z1})
	if width <= Epsilon || 2*width >= outerMax.X-outerMin.X || 2*width >= outerMax.Y-outerMin.Y {
		return outer
	}
	inner := Box(
		r3.Vec{X: outerMin.X + width, Y: outerMin.Y + width, Z: z0 - 1},
		r3.Vec{X: outerMax.X - width, Y: outerMax.Y - width, Z: z1 + 1},
	)
	return outer.Subtract(inner)
}
