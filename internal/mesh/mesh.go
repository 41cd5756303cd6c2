// Package mesh holds triangulated render buffers and the binary STL codec
// plus the mesh statistics used to sanity-check generated parts.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a flat-shaded triangle soup. Positions and Normals hold three
// float32 per vertex and three vertices per triangle; every vertex of a
// triangle carries that triangle's normal.
type Mesh struct {
	Name      string    `msgpack:"name" json:"name"`
	Positions []float32 `msgpack:"positions" json:"positions"`
	Normals   []float32 `msgpack:"normals" json:"normals"`
}

// FromPolygons fan-triangulates each planar face from its first vertex.
// Faces with fewer than three vertices are skipped.
func FromPolygons(faces [][]r3.Vec) *Mesh {
	m := &Mesh{}
	for _, f := range faces {
		if len(f) < 3 {
			continue
		}
		for i := 1; i+1 < len(f); i++ {
			m.addTriangle(f[0], f[i], f[i+1])
		}
	}
	return m
}

func (m *Mesh) addTriangle(a, b, c r3.Vec) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if l := r3.Norm(n); l > 0 {
		n = r3.Scale(1/l, n)
	}
	for _, v := range [3]r3.Vec{a, b, c} {
		m.Positions = append(m.Positions, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

// TriangleCount returns the number of triangles in the buffers.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions) / 9
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	var t [3]r3.Vec
	for k := 0; k < 3; k++ {
		o := i*9 + k*3
		t[k] = r3.Vec{X: float64(m.Positions[o]), Y: float64(m.Positions[o+1]), Z: float64(m.Positions[o+2])}
	}
	return t
}

// Append adds all triangles of o to m.
func (m *Mesh) Append(o *Mesh) {
	if o == nil {
		return
	}
	m.Positions = append(m.Positions, o.Positions...)
	m.Normals = append(m.Normals, o.Normals...)
}

// Translated returns a copy of the mesh moved by (dx, dy, dz).
func (m *Mesh) Translated(dx, dy, dz float64) *Mesh {
	out := &Mesh{
		Name:      m.Name,
		Positions: make([]float32, len(m.Positions)),
		Normals:   append([]float32(nil), m.Normals...),
	}
	for i := 0; i+2 < len(m.Positions); i += 3 {
		out.Positions[i] = m.Positions[i] + float32(dx)
		out.Positions[i+1] = m.Positions[i+1] + float32(dy)
		out.Positions[i+2] = m.Positions[i+2] + float32(dz)
	}
	return out
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Positions) < 3 {
		return r3.Vec{}, r3.Vec{}
	}
	min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i+2 < len(m.Positions); i += 3 {
		x, y, z := float64(m.Positions[i]), float64(m.Positions[i+1]), float64(m.Positions[i+2])
		min = r3.Vec{X: math.Min(min.X, x), Y: math.Min(min.Y, y), Z: math.Min(min.Z, z)}
		max = r3.Vec{X: math.Max(max.X, x), Y: math.Max(max.Y, y), Z: math.Max(max.Z, z)}
	}
	return min, max
}
