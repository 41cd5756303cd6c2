package solid

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the distance within which a vertex counts as lying on a plane.
const Epsilon = 1e-5

// Plane is the set of points p with Dot(Normal, p) == W.
type Plane struct {
	Normal r3.Vec
	W      float64
}

// newPlane fits a plane through a vertex loop using Newell's method, which
// stays stable when the first vertices are nearly collinear.
func newPlane(verts []r3.Vec) (Plane, bool) {
	var n, c r3.Vec
	for i, v := range verts {
		w := verts[(i+1)%len(verts)]
		n.X += (v.Y - w.Y) * (v.Z + w.Z)
		n.Y += (v.Z - w.Z) * (v.X + w.X)
		n.Z += (v.X - w.X) * (v.Y + w.Y)
		c = r3.Add(c, v)
	}
	l := r3.Norm(n)
	if l < 1e-12 {
		return Plane{}, false
	}
	n = r3.Scale(1/l, n)
	c = r3.Scale(1/float64(len(verts)), c)
	return Plane{Normal: n, W: r3.Dot(n, c)}, true
}

func (p Plane) flip() Plane {
	return Plane{Normal: r3.Scale(-1, p.Normal), W: -p.W}
}

const (
	coplanar = 0
	front    = 1
	back     = 2
	spanning = 3
)

// split sorts poly relative to the plane. Coplanar polygons go to coFront or
// coBack by facing; spanning polygons are cut in two.
func (p Plane) split(poly Polygon, coFront, coBack, fr, bk *[]Polygon) {
	polyType := 0
	types := make([]int, len(poly.Vertices))
	for i, v := range poly.Vertices {
		t := r3.Dot(p.Normal, v) - p.W
		typ := coplanar
		if t < -Epsilon {
			typ = back
		} else if t > Epsilon {
			typ = front
		}
		polyType |= typ
		types[i] = typ
	}

	switch polyType {
	case coplanar:
		if r3.Dot(p.Normal, poly.Plane.Normal) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case front:
		*fr = append(*fr, poly)
	case back:
		*bk = append(*bk, poly)
	case spanning:
		var f, b []r3.Vec
		n := len(poly.Vertices)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.Vertices[i], poly.Vertices[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if ti|tj == spanning {
				d := r3.Sub(vj, vi)
				t := (p.W - r3.Dot(p.Normal, vi)) / r3.Dot(p.Normal, d)
				v := r3.Add(vi, r3.Scale(t, d))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*fr = append(*fr, Polygon{Vertices: f, Plane: poly.Plane})
		}
		if len(b) >= 3 {
			*bk = append(*bk, Polygon{Vertices: b, Plane: poly.Plane})
		}
	}
}

// Polygon is a convex planar face with outward-facing winding (CCW seen from
// outside the solid).
type Polygon struct {
	Vertices []r3.Vec
	Plane    Plane
}

// NewPolygon builds a polygon from a convex vertex loop. It reports false for
// loops with fewer than three vertices or no area.
func NewPolygon(verts []r3.Vec) (Polygon, bool) {
	if len(verts) < 3 {
		return Polygon{}, false
	}
	pl, ok := newPlane(verts)
	if !ok {
		return Polygon{}, false
	}
	return Polygon{Vertices: verts, Plane: pl}, true
}

func (p Polygon) flip() Polygon {
	n := len(p.Vertices)
	verts := make([]r3.Vec, n)
	for i, v := range p.Vertices {
		verts[n-1-i] = v
	}
	return Polygon{Vertices: verts, Plane: p.Plane.flip()}
}

func (p Polygon) translate(d r3.Vec) Polygon {
	verts := make([]r3.Vec, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = r3.Add(v, d)
	}
	return Polygon{Vertices: verts, Plane: Plane{Normal: p.Plane.Normal, W: p.Plane.W + r3.Dot(p.Plane.Normal, d)}}
}
