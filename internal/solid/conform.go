package solid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// weldTol merges vertices that separate BSP splits computed for the same
	// point.
	weldTol = Epsilon
	// earTol is the smallest triangle area kept when cutting a face. Faces
	// whose whole area is below it are dropped.
	earTol = 1e-9
)

type cell [3]int64

// weld assigns one index to every distinct vertex position.
type weld struct {
	pts   []r3.Vec
	cells map[cell][]int
	// byAxis holds the vertex indices sorted by X, Y and Z.
	byAxis [3][]int
}

func cellOf(v r3.Vec) cell {
	return cell{
		int64(math.Floor(v.X / weldTol)),
		int64(math.Floor(v.Y / weldTol)),
		int64(math.Floor(v.Z / weldTol)),
	}
}

func coord(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func (w *weld) index(v r3.Vec) int {
	c := cellOf(v)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.cells[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if r3.Norm(r3.Sub(w.pts[i], v)) <= weldTol {
						return i
					}
				}
			}
		}
	}
	i := len(w.pts)
	w.pts = append(w.pts, v)
	w.cells[c] = append(w.cells[c], i)
	return i
}

func (w *weld) sortAxes() {
	for axis := range w.byAxis {
		idx := make([]int, len(w.pts))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			ca, cb := coord(w.pts[idx[a]], axis), coord(w.pts[idx[b]], axis)
			if ca != cb {
				return ca < cb
			}
			return idx[a] < idx[b]
		})
		w.byAxis[axis] = idx
	}
}

// between returns the vertices lying strictly inside the segment a→b, in
// order from a.
func (w *weld) between(a, b int) []int {
	pa, pb := w.pts[a], w.pts[b]
	d := r3.Sub(pb, pa)
	l2 := r3.Dot(d, d)
	if l2 == 0 {
		return nil
	}

	// Scan the axis along which the segment is shortest.
	axis := 0
	for k := 1; k < 3; k++ {
		if math.Abs(coord(d, k)) < math.Abs(coord(d, axis)) {
			axis = k
		}
	}
	lo := math.Min(coord(pa, axis), coord(pb, axis)) - weldTol
	hi := math.Max(coord(pa, axis), coord(pb, axis)) + weldTol
	sorted := w.byAxis[axis]
	start := sort.Search(len(sorted), func(i int) bool { return coord(w.pts[sorted[i]], axis) >= lo })

	type hit struct {
		t float64
		k int
	}
	var hits []hit
	for _, k := range sorted[start:] {
		p := w.pts[k]
		if coord(p, axis) > hi {
			break
		}
		if k == a || k == b {
			continue
		}
		t := r3.Dot(r3.Sub(p, pa), d) / l2
		if t <= 0 || t >= 1 {
			continue
		}
		if r3.Norm(r3.Sub(p, r3.Add(pa, r3.Scale(t, d)))) > weldTol {
			continue
		}
		hits = append(hits, hit{t: t, k: k})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].t != hits[j].t {
			return hits[i].t < hits[j].t
		}
		return hits[i].k < hits[j].k
	})
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.k
	}
	return out
}

// conform welds the polygon vertices and inserts into every edge the
// vertices of other faces that lie on it, so that neighbouring faces meet
// along identical edges. It returns one index loop per polygon; loops that
// collapse to no area are nil.
func conform(polys []Polygon) (*weld, [][]int) {
	w := &weld{cells: make(map[cell][]int)}
	loops := make([][]int, len(polys))
	for i, p := range polys {
		var loop []int
		for _, v := range p.Vertices {
			k := w.index(v)
			if len(loop) > 0 && loop[len(loop)-1] == k {
				continue
			}
			loop = append(loop, k)
		}
		for len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		if len(loop) >= 3 {
			loops[i] = loop
		}
	}
	w.sortAxes()

	for i, loop := range loops {
		if loop == nil {
			continue
		}
		out := make([]int, 0, len(loop))
		for j, a := range loop {
			out = append(out, a)
			out = append(out, w.between(a, loop[(j+1)%len(loop)])...)
		}
		if loopArea(w.pts, out, polys[i].Plane.Normal) <= earTol {
			out = nil
		}
		loops[i] = out
	}
	return w, loops
}

// loopArea is the area of a planar loop measured along normal.
func loopArea(pts []r3.Vec, loop []int, normal r3.Vec) float64 {
	var sum r3.Vec
	for i, k := range loop {
		sum = r3.Add(sum, r3.Cross(pts[k], pts[loop[(i+1)%len(loop)]]))
	}
	return r3.Dot(sum, normal) / 2
}

func earArea(a, b, c, normal r3.Vec) float64 {
	return r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, b)), normal) / 2
}

// clipEars cuts a convex loop into triangles, keeping every vertex on its
// edges. It always takes the largest ear whose removal leaves area behind,
// so collinear runs never produce empty triangles.
func clipEars(pts []r3.Vec, loop []int, normal r3.Vec) [][3]int {
	ring := append([]int(nil), loop...)
	area := loopArea(pts, ring, normal)
	tris := make([][3]int, 0, len(ring)-2)
	for len(ring) > 3 {
		n := len(ring)
		best, bestArea := -1, 0.0
		for i := range ring {
			a := earArea(pts[ring[(i+n-1)%n]], pts[ring[i]], pts[ring[(i+1)%n]], normal)
			if a <= earTol || area-a <= earTol {
				continue
			}
			if a > bestArea {
				best, bestArea = i, a
			}
		}
		if best < 0 {
			for i := 1; i+1 < n; i++ {
				tris = append(tris, [3]int{ring[0], ring[i], ring[i+1]})
			}
			return tris
		}
		tris = append(tris, [3]int{ring[(best+n-1)%n], ring[best], ring[(best+1)%n]})
		ring = append(ring[:best], ring[best+1:]...)
		area -= bestArea
	}
	return append(tris, [3]int{ring[0], ring[1], ring[2]})
}
