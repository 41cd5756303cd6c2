package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/shapes"
)

const (
	// arcSegments is the number of chords used per DXF arc or bulge.
	arcSegments = 32
	// joinTolerance is how far apart two LINE/ARC endpoints may be and
	// still be chained into one contour.
	joinTolerance = 0.01
	// minShapeSize drops contours thinner than this in either direction.
	minShapeSize = 0.5
)

// ShapeImportResult holds the custom shapes read from a drawing.
type ShapeImportResult struct {
	Shapes   []model.CustomShape
	Errors   []string
	Warnings []string
}

type segment struct {
	a, b model.Point2D
}

// ImportDXF reads every closed contour of a drawing (LWPOLYLINE, CIRCLE, or
// LINE/ARC chains) and turns each outer contour into a custom shape named
// after baseName. Contours lying inside another contour are holes in a
// piece, which a pocket does not need, and are skipped with a warning.
// Shapes come out largest first.
func ImportDXF(path, baseName string) ShapeImportResult {
	var res ShapeImportResult

	drawing, err := dxf.Open(path)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return res
	}
	entities := drawing.Entities()
	if len(entities) == 0 {
		res.Errors = append(res.Errors, "DXF file contains no entities")
		return res
	}

	var contours []model.Outline
	var loose []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if o := polylineContour(e); len(o) >= 3 {
				contours = append(contours, o)
			} else {
				res.Warnings = append(res.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			contours = append(contours, circleContour(e.Center[0], e.Center[1], e.Radius))
		case *entity.Arc:
			loose = append(loose, toSegments(arcPoints(e))...)
		case *entity.Line:
			loose = append(loose, segment{
				a: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				b: model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	contours = append(contours, chain(loose, joinTolerance)...)

	sort.SliceStable(contours, func(i, j int) bool {
		return math.Abs(contours[i].SignedArea()) > math.Abs(contours[j].SignedArea())
	})

	var outers []model.Outline
	for _, c := range contours {
		min, max := c.BoundingBox()
		if max.X-min.X < minShapeSize || max.Y-min.Y < minShapeSize {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("Skipped degenerate contour (%.2f x %.2f mm)", max.X-min.X, max.Y-min.Y))
			continue
		}
		if insideAny(c, outers) {
			res.Warnings = append(res.Warnings, "Skipped inner contour")
			continue
		}
		outers = append(outers, c)
	}
	if len(outers) == 0 {
		res.Errors = append(res.Errors, "No closed shapes found in DXF file")
		return res
	}

	for i, o := range outers {
		name := baseName
		if len(outers) > 1 {
			name = fmt.Sprintf("%s %d", baseName, i+1)
		}
		o = o.Normalize().CCW()
		_, max := o.BoundingBox()
		s := model.NewCustomShape(name, model.ShapeRectangle, max.X, max.Y)
		s.Outline = o
		res.Shapes = append(res.Shapes, s)
	}
	return res
}

// polylineContour flattens an LWPOLYLINE, replacing every bulged edge with
// arc chords.
func polylineContour(lw *entity.LwPolyline) model.Outline {
	var out model.Outline
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		p := model.Point2D{X: lw.Vertices[i][0], Y: lw.Vertices[i][1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			out = append(out, p)
			continue
		}
		next := lw.Vertices[(i+1)%n]
		arc := bulgeArc(p, model.Point2D{X: next[0], Y: next[1]}, bulge)
		out = append(out, arc[:len(arc)-1]...)
	}
	return out
}

// bulgeArc returns the points of the arc from p to q whose bulge is the
// tangent of a quarter of its included angle; positive bulges turn
// counter-clockwise.
func bulgeArc(p, q model.Point2D, bulge float64) model.Outline {
	dx, dy := q.X-p.X, q.Y-p.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p, q}
	}
	theta := 4 * math.Atan(bulge) // signed included angle
	r := chord / (2 * math.Sin(math.Abs(theta)/2))

	// The centre sits on the chord's perpendicular bisector, left of p→q for
	// minor counter-clockwise arcs. cos(θ/2) turns negative for major arcs.
	h := r * math.Cos(theta/2)
	if bulge < 0 {
		h = -h
	}
	mx, my := (p.X+q.X)/2, (p.Y+q.Y)/2
	cx, cy := mx-dy/chord*h, my+dx/chord*h

	start := math.Atan2(p.Y-cy, p.X-cx)
	pts := make(model.Outline, arcSegments+1)
	for i := 0; i <= arcSegments; i++ {
		a := start + theta*float64(i)/arcSegments
		pts[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	pts[arcSegments] = q
	return pts
}

func circleContour(cx, cy, r float64) model.Outline {
	o := make(model.Outline, shapes.CircleSegments)
	for i := range o {
		a := 2 * math.Pi * float64(i) / shapes.CircleSegments
		o[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return o
}

// arcPoints flattens a DXF ARC, which always runs counter-clockwise from
// its start angle to its end angle in degrees.
func arcPoints(a *entity.Arc) []model.Point2D {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	from := a.Angle[0] * math.Pi / 180
	to := a.Angle[1] * math.Pi / 180
	if to <= from {
		to += 2 * math.Pi
	}
	pts := make([]model.Point2D, arcSegments+1)
	for i := range pts {
		ang := from + (to-from)*float64(i)/arcSegments
		pts[i] = model.Point2D{X: cx + r*math.Cos(ang), Y: cy + r*math.Sin(ang)}
	}
	return pts
}

func toSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts))
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{a: pts[i-1], b: pts[i]})
	}
	return segs
}

// chain joins segments end to end into closed contours. Chains that do not
// close are dropped.
func chain(segs []segment, tol float64) []model.Outline {
	used := make([]bool, len(segs))
	var out []model.Outline
	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		pts := []model.Point2D{segs[first].a, segs[first].b}

		for extended := true; extended; {
			extended = false
			tail := pts[len(pts)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.a, tol):
					pts = append(pts, s.b)
				case near(tail, s.b, tol):
					pts = append(pts, s.a)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(pts) >= 4 && near(pts[0], pts[len(pts)-1], tol) {
			out = append(out, model.Outline(pts[:len(pts)-1]))
		}
	}
	return out
}

func near(a, b model.Point2D, tol float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tol
}

// insideAny reports whether the first vertex of c lies inside any of the
// given contours.
func insideAny(c model.Outline, contours []model.Outline) bool {
	for _, o := range contours {
		if contains(o, c[0]) {
			return true
		}
	}
	return false
}

func contains(o model.Outline, p model.Point2D) bool {
	in := false
	for i, j := 0, len(o)-1; i < len(o); j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
