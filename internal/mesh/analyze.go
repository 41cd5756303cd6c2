package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateArea is the triangle area at or below which a face is counted as
// degenerate.
const degenerateArea = 1e-12

// Stats summarizes a mesh the way a slicer would see it.
type Stats struct {
	Triangles   int     `json:"triangles"`
	Vertices    int     `json:"vertices"` // distinct positions
	Min         r3.Vec  `json:"min"`
	Max         r3.Vec  `json:"max"`
	Size        r3.Vec  `json:"size"`
	Volume      float64 `json:"volume"` // signed-tetrahedron volume; meaningful when closed
	SurfaceArea float64 `json:"surfaceArea"`
	Degenerate  int     `json:"degenerate"`
	Watertight  bool    `json:"watertight"` // every edge shared by exactly two triangles
}

func vec(v []float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

type vkey [3]float32

// Analyze computes Stats for m.
func Analyze(m *Mesh) Stats {
	s := Stats{Triangles: m.TriangleCount()}
	if s.Triangles == 0 {
		return s
	}
	s.Min, s.Max = m.Bounds()
	s.Size = r3.Sub(s.Max, s.Min)

	ids := make(map[vkey]int)
	id := func(i int) int {
		k := vkey{m.Positions[i], m.Positions[i+1], m.Positions[i+2]}
		if v, ok := ids[k]; ok {
			return v
		}
		ids[k] = len(ids)
		return ids[k]
	}
	edges := make(map[[2]int]int)

	for i := 0; i < s.Triangles; i++ {
		t := m.Triangle(i)
		c := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		area := r3.Norm(c) / 2
		s.SurfaceArea += area
		if area <= degenerateArea {
			s.Degenerate++
		}
		s.Volume += r3.Dot(t[0], r3.Cross(t[1], t[2])) / 6

		var v [3]int
		for k := 0; k < 3; k++ {
			v[k] = id(i*9 + k*3)
		}
		for k := 0; k < 3; k++ {
			a, b := v[k], v[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}]++
		}
	}
	s.Vertices = len(ids)
	s.Volume = math.Abs(s.Volume)

	s.Watertight = true
	for _, n := range edges {
		if n != 2 {
			s.Watertight = false
			break
		}
	}
	return s
}

// FitReport says whether a tray's bounds sit inside a box interior.
type FitReport struct {
	FitsWidth  bool     `json:"fitsWidth"`
	FitsDepth  bool     `json:"fitsDepth"`
	FitsHeight bool     `json:"fitsHeight"`
	Issues     []string `json:"issues,omitempty"`
}

// Fits reports whether every axis fits.
func (r FitReport) Fits() bool {
	return r.FitsWidth && r.FitsDepth && r.FitsHeight
}

// fitSlack absorbs float32 rounding in exported meshes.
const fitSlack = 0.1

// CheckFit compares a part's size against an interior size.
func CheckFit(part, interior r3.Vec) FitReport {
	r := FitReport{
		FitsWidth:  interior.X >= part.X-fitSlack,
		FitsDepth:  interior.Y >= part.Y-fitSlack,
		FitsHeight: interior.Z >= part.Z-fitSlack,
	}
	if !r.FitsWidth {
		r.Issues = append(r.Issues, fmt.Sprintf("width %.2f mm exceeds interior %.2f mm", part.X, interior.X))
	}
	if !r.FitsDepth {
		r.Issues = append(r.Issues, fmt.Sprintf("depth %.2f mm exceeds interior %.2f mm", part.Y, interior.Y))
	}
	if !r.FitsHeight {
		r.Issues = append(r.Issues, fmt.Sprintf("height %.2f mm exceeds interior %.2f mm", part.Z, interior.Z))
	}
	return r
}

// overlapSlack treats parts that merely touch as not overlapping.
const overlapSlack = 0.5

// Overlaps reports whether two placed bounding boxes intersect by more than
// the touching slack on every axis.
func Overlaps(aMin, aMax, bMin, bMax r3.Vec) bool {
	return aMax.X > bMin.X+overlapSlack && bMax.X > aMin.X+overlapSlack &&
		aMax.Y > bMin.Y+overlapSlack && bMax.Y > aMin.Y+overlapSlack &&
		aMax.Z > bMin.Z+overlapSlack && bMax.Z > aMin.Z+overlapSlack
}
