package solid

import (
	"math"

	"github.com/piwi3910/TrayForge/internal/model"
)

// cleanOutline drops repeated and collinear vertices from a loop.
func cleanOutline(o model.Outline) model.Outline {
	var pts model.Outline
	for _, p := range o {
		if len(pts) > 0 && near(pts[len(pts)-1], p) {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && near(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	for i := 0; len(pts) > 3 && i < len(pts); {
		n := len(pts)
		if math.Abs(cross(pts[(i+n-1)%n], pts[i], pts[(i+1)%n])) < 1e-10 {
			pts = append(pts[:i], pts[i+1:]...)
			i = 0
			continue
		}
		i++
	}
	return pts
}

func near(a, b model.Point2D) bool {
	return math.Abs(a.X-b.X) < 1e-7 && math.Abs(a.Y-b.Y) < 1e-7
}

// cross is the z component of (b-a) x (c-b); positive for a left turn.
func cross(a, b, c model.Point2D) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

func isConvex(o model.Outline) bool {
	n := len(o)
	for i := 0; i < n; i++ {
		if cross(o[(i+n-1)%n], o[i], o[(i+1)%n]) < 0 {
			return false
		}
	}
	return true
}

// triangulate ear-clips a simple CCW polygon into CCW triangles.
func triangulate(o model.Outline) [][3]int {
	idx := make([]int, len(o))
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]int
	for len(idx) > 3 {
		m := len(idx)
		clipped := false
		for i := 0; i < m; i++ {
			a, b, c := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			if cross(o[a], o[b], o[c]) <= 1e-12 {
				continue
			}
			ear := true
			for _, j := range idx {
				if j == a || j == b || j == c {
					continue
				}
				if inTriangle(o[j], o[a], o[b], o[c]) {
					ear = false
					break
				}
			}
			if ear {
				tris = append(tris, [3]int{a, b, c})
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			// Numerically degenerate remainder: drop the flattest vertex so
			// the loop still terminates.
			best, bestAbs := 0, math.Inf(1)
			for i := 0; i < m; i++ {
				v := math.Abs(cross(o[idx[(i+m-1)%m]], o[idx[i]], o[idx[(i+1)%m]]))
				if v < bestAbs {
					best, bestAbs = i, v
				}
			}
			idx = append(idx[:best], idx[best+1:]...)
		}
	}
	if len(idx) == 3 && cross(o[idx[0]], o[idx[1]], o[idx[2]]) > 1e-12 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func inTriangle(p, a, b, c model.Point2D) bool {
	return cross(a, b, p) > 0 && cross(b, c, p) > 0 && cross(c, a, p) > 0
}
