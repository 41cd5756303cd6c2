// Package solid is the boolean geometry layer the builders drive: closed
// polygon solids with union, subtract and intersect implemented on BSP trees,
// plus the box, prism and cylinder primitives.
//
// Solids are immutable values; every operation returns a fresh Solid.
package solid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/TrayForge/internal/mesh"
)

// Solid is a closed boundary made of convex polygons.
type Solid struct {
	polygons []Polygon
}

// FromPolygons wraps an existing polygon list.
func FromPolygons(polys []Polygon) *Solid {
	return &Solid{polygons: append([]Polygon(nil), polys...)}
}

// Polygons returns a copy of the boundary polygons.
func (s *Solid) Polygons() []Polygon {
	return append([]Polygon(nil), s.polygons...)
}

// IsEmpty reports whether the solid has no faces.
func (s *Solid) IsEmpty() bool {
	return s == nil || len(s.polygons) == 0
}

// Bounds returns the axis-aligned bounding box of the solid.
func (s *Solid) Bounds() (min, max r3.Vec) {
	if s.IsEmpty() {
		return r3.Vec{}, r3.Vec{}
	}
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range s.polygons {
		for _, v := range p.Vertices {
			min = r3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = r3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
		}
	}
	return min, max
}

func (s *Solid) overlaps(o *Solid) bool {
	amin, amax := s.Bounds()
	bmin, bmax := o.Bounds()
	return amin.X < bmax.X+Epsilon && bmin.X < amax.X+Epsilon &&
		amin.Y < bmax.Y+Epsilon && bmin.Y < amax.Y+Epsilon &&
		amin.Z < bmax.Z+Epsilon && bmin.Z < amax.Z+Epsilon
}

// Merge concatenates solids without any boolean work. The inputs must not
// overlap; use Union when they might.
func Merge(solids ...*Solid) *Solid {
	var polys []Polygon
	for _, s := range solids {
		if s != nil {
			polys = append(polys, s.polygons...)
		}
	}
	return &Solid{polygons: polys}
}

// Union returns the space covered by either solid.
func (s *Solid) Union(o *Solid) *Solid {
	if o.IsEmpty() {
		return FromPolygons(s.polygons)
	}
	if s.IsEmpty() {
		return FromPolygons(o.polygons)
	}
	if !s.overlaps(o) {
		return Merge(s, o)
	}
	a := newNode(s.Polygons())
	b := newNode(o.Polygons())
	a.clipTo(b)
	b.clipTo(a)
	b.invert()
	b.clipTo(a)
	b.invert()
	a.build(b.allPolygons())
	return &Solid{polygons: a.allPolygons()}
}

// Subtract returns the space of s not covered by o.
func (s *Solid) Subtract(o *Solid) *Solid {
	if s.IsEmpty() {
		return &Solid{}
	}
	if o.IsEmpty() || !s.overlaps(o) {
		return FromPolygons(s.polygons)
	}
	a := newNode(s.Polygons())
	b := newNode(o.Polygons())
	a.invert()
	a.clipTo(b)
	b.clipTo(a)
	b.invert()
	b.clipTo(a)
	b.invert()
	a.build(b.allPolygons())
	a.invert()
	return &Solid{polygons: a.allPolygons()}
}

// Intersect returns the space covered by both solids.
func (s *Solid) Intersect(o *Solid) *Solid {
	if s.IsEmpty() || o.IsEmpty() || !s.overlaps(o) {
		return &Solid{}
	}
	a := newNode(s.Polygons())
	b := newNode(o.Polygons())
	a.invert()
	b.clipTo(a)
	b.invert()
	a.clipTo(b)
	b.clipTo(a)
	a.build(b.allPolygons())
	a.invert()
	return &Solid{polygons: a.allPolygons()}
}

// Translate moves the solid by d.
func (s *Solid) Translate(d r3.Vec) *Solid {
	polys := make([]Polygon, len(s.polygons))
	for i, p := range s.polygons {
		polys[i] = p.translate(d)
	}
	return &Solid{polygons: polys}
}

// ToMesh triangulates the boundary into flat-shaded render buffers. BSP
// splits leave vertices on the edges of neighbouring faces, so the faces are
// made to share edges exactly first (see conform) and every face is cut into
// triangles that keep its edge vertices.
func (s *Solid) ToMesh(name string) *mesh.Mesh {
	w, loops := conform(s.polygons)
	var faces [][]r3.Vec
	for i, loop := range loops {
		if loop == nil {
			continue
		}
		for _, tri := range clipEars(w.pts, loop, s.polygons[i].Plane.Normal) {
			faces = append(faces, []r3.Vec{w.pts[tri[0]], w.pts[tri[1]], w.pts[tri[2]]})
		}
	}
	m := mesh.FromPolygons(faces)
	m.Name = name
	return m
}
