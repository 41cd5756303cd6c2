// Package shapes defines the pocket cross-sections a stack can use and the
// footprint/outline/area math the layout engine and solid builders share.
//
// Every outline is counter-clockwise, implicitly closed and normalized so its
// bounding box starts at the origin.
package shapes

import (
	"math"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/model"
)

const (
	// CircleSegments is the polygon count used for circles. The chord error
	// r·(1−cos(π/64)) stays under 0.05 mm up to a 41 mm radius.
	CircleSegments = 64

	// FilletSegments is the arc resolution of each rounded corner.
	FilletSegments = 8

	epsilon = 0.001
)

// Shape is a resolved pocket cross-section.
type Shape struct {
	Kind    model.ShapeKind
	Ref     model.ShapeRef
	Name    string
	Width   float64 // footprint along X
	Length  float64 // footprint along Y
	outline model.Outline
}

// Footprint returns the axis-aligned size of the shape.
func Footprint(s Shape) (w, l float64) {
	return s.Width, s.Length
}

// Outline returns a copy of the shape's CCW outline.
func Outline(s Shape) model.Outline {
	return append(model.Outline(nil), s.outline...)
}

// Area returns the enclosed area of the outline.
func Area(s Shape) float64 {
	return math.Abs(s.outline.SignedArea())
}

// Square builds an axis-aligned rectangle with optionally rounded corners.
// The radius is clamped to half the shorter side.
func Square(w, l, radius float64) Shape {
	o := model.Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: l}, {X: 0, Y: l}}
	radius = math.Min(radius, math.Min(w, l)/2)
	return newShape(model.ShapeSquare, RoundCorners(o, radius))
}

// Hex builds a regular hexagon sized by its flat-to-flat distance. The
// default orientation has a flat edge on top; pointy-top rotates by 30°.
func Hex(flatToFlat float64, pointyTop bool) Shape {
	r := flatToFlat / math.Sqrt(3)
	start := 0.0
	if pointyTop {
		start = math.Pi / 6
	}
	o := make(model.Outline, 6)
	for i := range o {
		a := start + float64(i)*math.Pi/3
		o[i] = model.Point2D{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return newShape(model.ShapeHex, o)
}

// Circle builds a CircleSegments-gon whose vertices lie on the circle of the
// given diameter.
func Circle(diameter float64) Shape {
	return newShape(model.ShapeCircle, ellipse(diameter, diameter))
}

// Triangle builds an equilateral triangle with its base on the X axis.
func Triangle(side, radius float64) Shape {
	h := side * math.Sqrt(3) / 2
	o := model.Outline{{X: 0, Y: 0}, {X: side, Y: 0}, {X: side / 2, Y: h}}
	return newShape(model.ShapeTriangle, RoundCorners(o, radius))
}

// Custom wraps an arbitrary polygon, forcing CCW winding and origin alignment.
func Custom(name string, o model.Outline, radius float64) Shape {
	s := newShape(model.ShapeCustom, RoundCorners(cleanOutline(o.CCW()), radius))
	s.Name = name
	return s
}

func ellipse(w, l float64) model.Outline {
	o := make(model.Outline, CircleSegments)
	for i := range o {
		a := 2 * math.Pi * float64(i) / CircleSegments
		o[i] = model.Point2D{X: w / 2 * math.Cos(a), Y: l / 2 * math.Sin(a)}
	}
	return o
}

func newShape(kind model.ShapeKind, o model.Outline) Shape {
	o = o.Normalize()
	_, max := o.BoundingBox()
	return Shape{Kind: kind, Ref: model.ShapeRef(kind), Width: max.X, Length: max.Y, outline: o}
}

// Resolve turns a stack's shape reference into a concrete shape using the
// tray's shape settings, the project's custom shapes and the card table.
// An unknown reference yields an INVALID_SHAPE_REF error; the caller decides
// how to recover.
func Resolve(ref model.ShapeRef, params model.ResolvedParams, cardSizes map[string]model.CardSize) (Shape, error) {
	ss := params.Tray.Shapes
	var s Shape
	switch ref.Kind() {
	case model.ShapeSquare:
		s = Square(ss.SquareWidth, ss.SquareLength, ss.SquareCornerRadius)
	case model.ShapeHex:
		s = Hex(ss.HexFlatToFlat, ss.HexPointyTop)
	case model.ShapeCircle:
		s = Circle(ss.CircleDiameter)
	case model.ShapeTriangle:
		s = Triangle(ss.TriangleSide, ss.TriangleCornerRadius)
	case model.ShapeCustom:
		cs, ok := params.Global.FindCustomShape(ref.Key())
		if !ok {
			return Shape{}, faults.New(faults.ErrCodeInvalidShapeRef, "custom shape %q not found", ref.Key())
		}
		s = FromCustom(cs)
	case model.ShapeCard:
		size, ok := model.LookupCardSize(ref.Key(), cardSizes)
		if !ok {
			return Shape{}, faults.New(faults.ErrCodeInvalidShapeRef, "card size %q not found", ref.Key())
		}
		s = Square(size.Width, size.Length, 0)
		s.Kind = model.ShapeCard
		s.Name = ref.Key()
	default:
		return Shape{}, faults.New(faults.ErrCodeInvalidShapeRef, "unknown shape %q", string(ref))
	}
	if s.Width <= epsilon || s.Length <= epsilon {
		return Shape{}, faults.Validation([]string{"shape " + string(ref) + " has a zero-sized footprint"})
	}
	s.Ref = ref
	return s, nil
}

// Fallback is the shape substituted for a missing reference: the tray's
// configured square.
func Fallback(params model.ResolvedParams) Shape {
	ss := params.Tray.Shapes
	return Square(ss.SquareWidth, ss.SquareLength, ss.SquareCornerRadius)
}

// FromCustom builds a custom shape from its stored polygon, or from its
// base-shape hint stretched to Width x Length when no polygon is stored.
func FromCustom(cs model.CustomShape) Shape {
	if len(cs.Outline) >= 3 {
		return Custom(cs.Name, cs.Outline, cs.CornerRadius)
	}
	var o model.Outline
	switch cs.BaseShape {
	case model.ShapeCircle:
		o = ellipse(cs.Width, cs.Length)
	case model.ShapeHex:
		o = Hex(1, false).outline
	case model.ShapeTriangle:
		o = Triangle(1, 0).outline
	default:
		o = model.Outline{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	}
	o = fitTo(o, cs.Width, cs.Length)
	return Custom(cs.Name, o, cs.CornerRadius)
}

// fitTo scales an outline so its bounding box is exactly w x l.
func fitTo(o model.Outline, w, l float64) model.Outline {
	o = o.Normalize()
	_, max := o.BoundingBox()
	if max.X <= 0 || max.Y <= 0 {
		return o
	}
	sx, sy := w/max.X, l/max.Y
	result := make(model.Outline, len(o))
	for i, p := range o {
		result[i] = model.Point2D{X: p.X * sx, Y: p.Y * sy}
	}
	return result
}
