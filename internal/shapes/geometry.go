package shapes

import (
	"math"

	"github.com/piwi3910/TrayForge/internal/model"
)

// RoundCorners replaces every vertex of a CCW outline with a circular fillet
// of FilletSegments segments. The tangent distance at each corner is clamped
// to half the shorter adjacent edge, which shrinks the radius on tight
// corners instead of letting neighbouring fillets cross.
func RoundCorners(o model.Outline, radius float64) model.Outline {
	n := len(o)
	if radius <= epsilon || n < 3 {
		return o
	}
	var result model.Outline
	for i := 0; i < n; i++ {
		a, b, c := o[(i+n-1)%n], o[i], o[(i+1)%n]
		lab, lcb := dist(a, b), dist(c, b)
		if lab < epsilon || lcb < epsilon {
			result = append(result, b)
			continue
		}
		u := model.Point2D{X: (a.X - b.X) / lab, Y: (a.Y - b.Y) / lab}
		v := model.Point2D{X: (c.X - b.X) / lcb, Y: (c.Y - b.Y) / lcb}
		theta := math.Acos(math.Max(-1, math.Min(1, u.X*v.X+u.Y*v.Y)))
		if theta < 1e-6 || math.Pi-theta < 1e-6 {
			result = append(result, b)
			continue
		}
		half := math.Tan(theta / 2)
		d := math.Min(radius/half, math.Min(lab, lcb)/2)
		r := d * half

		p1 := model.Point2D{X: b.X + u.X*d, Y: b.Y + u.Y*d}
		p2 := model.Point2D{X: b.X + v.X*d, Y: b.Y + v.Y*d}
		bis := model.Point2D{X: u.X + v.X, Y: u.Y + v.Y}
		bl := math.Hypot(bis.X, bis.Y)
		off := r / math.Sin(theta/2)
		center := model.Point2D{X: b.X + bis.X/bl*off, Y: b.Y + bis.Y/bl*off}

		a1 := math.Atan2(p1.Y-center.Y, p1.X-center.X)
		a2 := math.Atan2(p2.Y-center.Y, p2.X-center.X)
		sweep := a2 - a1
		for sweep > math.Pi {
			sweep -= 2 * math.Pi
		}
		for sweep < -math.Pi {
			sweep += 2 * math.Pi
		}
		for k := 0; k <= FilletSegments; k++ {
			ang := a1 + sweep*float64(k)/FilletSegments
			result = append(result, model.Point2D{X: center.X + r*math.Cos(ang), Y: center.Y + r*math.Sin(ang)})
		}
	}
	return cleanOutline(result)
}

// Offset grows a CCW outline outward by d using mitered corners. Miters
// longer than 4·d are cut back to that length so spikes stay bounded.
func Offset(o model.Outline, d float64) model.Outline {
	n := len(o)
	if n < 3 || d == 0 {
		return append(model.Outline(nil), o...)
	}
	normals := make([]model.Point2D, n)
	for i := 0; i < n; i++ {
		p, q := o[i], o[(i+1)%n]
		l := dist(p, q)
		if l < 1e-12 {
			continue
		}
		normals[i] = model.Point2D{X: (q.Y - p.Y) / l, Y: -(q.X - p.X) / l}
	}
	result := make(model.Outline, n)
	for i := 0; i < n; i++ {
		n1, n2 := normals[(i+n-1)%n], normals[i]
		mx, my := n1.X+n2.X, n1.Y+n2.Y
		denom := 1 + n1.X*n2.X + n1.Y*n2.Y
		var k float64
		if denom > 1e-9 {
			k = d / denom
		}
		if ml := math.Hypot(mx, my) * math.Abs(k); ml > 4*math.Abs(d) {
			k *= 4 * math.Abs(d) / ml
		}
		result[i] = model.Point2D{X: o[i].X + mx*k, Y: o[i].Y + my*k}
	}
	return result
}

// cleanOutline drops repeated and collinear vertices.
func cleanOutline(o model.Outline) model.Outline {
	var pts model.Outline
	for _, p := range o {
		if len(pts) > 0 && dist(pts[len(pts)-1], p) < 1e-6 {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && dist(pts[0], pts[len(pts)-1]) < 1e-6 {
		pts = pts[:len(pts)-1]
	}
	changed := true
	for changed && len(pts) > 3 {
		changed = false
		for i := 0; i < len(pts); i++ {
			n := len(pts)
			a, b, c := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
			cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
			if math.Abs(cross) < 1e-9 {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				break
			}
		}
	}
	return pts
}

func dist(a, b model.Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
