package shapes

import (
	"math"
	"testing"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() model.ResolvedParams {
	return model.ResolvedParams{Global: model.DefaultGlobalParams(), Tray: model.DefaultTrayParams()}
}

func TestSquareFootprintAndArea(t *testing.T) {
	s := Square(20, 10, 0)
	w, l := Footprint(s)
	assert.Equal(t, 20.0, w)
	assert.Equal(t, 10.0, l)
	assert.InDelta(t, 200, Area(s), 1e-9)
	assert.Len(t, Outline(s), 4)
}

func TestSquareRadiusIsClamped(t *testing.T) {
	s := Square(10, 4, 50)
	w, l := Footprint(s)
	assert.InDelta(t, 10, w, 1e-9)
	assert.InDelta(t, 4, l, 1e-9)
	// Stadium: 6x4 rectangle plus a circle of radius 2.
	want := 6*4 + math.Pi*4
	assert.InDelta(t, want, Area(s), 0.2)
}

func TestHexOrientation(t *testing.T) {
	flat := Hex(20, false)
	w, l := Footprint(flat)
	assert.InDelta(t, 40/math.Sqrt(3), w, 1e-9)
	assert.InDelta(t, 20, l, 1e-9)

	pointy := Hex(20, true)
	w, l = Footprint(pointy)
	assert.InDelta(t, 20, w, 1e-9)
	assert.InDelta(t, 40/math.Sqrt(3), l, 1e-9)

	// Regular hexagon area: (√3/2)·F²
	assert.InDelta(t, math.Sqrt(3)/2*400, Area(flat), 1e-6)
}

func TestCircleChordError(t *testing.T) {
	c := Circle(30)
	o := Outline(c)
	require.Len(t, o, CircleSegments)
	w, l := Footprint(c)
	assert.InDelta(t, 30, w, 1e-9)
	assert.InDelta(t, 30, l, 0.05)

	// Mid-chord distance from the centre differs from r by the chord error.
	mid := model.Point2D{X: (o[0].X + o[1].X) / 2, Y: (o[0].Y + o[1].Y) / 2}
	r := math.Hypot(mid.X-15, mid.Y-l/2)
	assert.Less(t, 15-r, 0.05)
}

func TestTriangleOutlineIsCCW(t *testing.T) {
	tri := Triangle(10, 0)
	assert.Greater(t, Outline(tri).SignedArea(), 0.0)
	assert.InDelta(t, math.Sqrt(3)/4*100, Area(tri), 1e-9)
}

func TestCustomForcesCCWAndOrigin(t *testing.T) {
	cw := model.Outline{{X: 5, Y: 5}, {X: 5, Y: 15}, {X: 25, Y: 15}, {X: 25, Y: 5}}
	s := Custom("plate", cw, 0)
	o := Outline(s)
	assert.Greater(t, o.SignedArea(), 0.0)
	min, _ := o.BoundingBox()
	assert.Equal(t, model.Point2D{}, min)
	w, l := Footprint(s)
	assert.Equal(t, 20.0, w)
	assert.Equal(t, 10.0, l)
}

func TestResolveBuiltins(t *testing.T) {
	p := testParams()
	for _, ref := range []model.ShapeRef{"square", "hex", "circle", "triangle"} {
		s, err := Resolve(ref, p, nil)
		require.NoError(t, err, ref)
		assert.Equal(t, ref, s.Ref)
		assert.Greater(t, Area(s), 0.0)
	}
}

func TestResolveCustomByIDAndName(t *testing.T) {
	p := testParams()
	cs := model.NewCustomShape("Tile", model.ShapeRectangle, 30, 20)
	p.Global.CustomShapes = []model.CustomShape{cs}

	byID, err := Resolve(model.CustomRef(cs.ID), p, nil)
	require.NoError(t, err)
	byName, err := Resolve(model.CustomRef("Tile"), p, nil)
	require.NoError(t, err)

	assert.Equal(t, Outline(byID), Outline(byName))
	w, l := Footprint(byID)
	assert.InDelta(t, 30, w, 1e-9)
	assert.InDelta(t, 20, l, 1e-9)
}

func TestResolveMissingCustomShape(t *testing.T) {
	_, err := Resolve(model.CustomRef("ghost"), testParams(), nil)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.ErrCodeInvalidShapeRef))
	assert.Contains(t, err.Error(), "ghost")
}

func TestResolveCardWithOverride(t *testing.T) {
	s, err := Resolve(model.CardRef("mini-euro"), testParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.ShapeCard, s.Kind)
	w, l := Footprint(s)
	assert.Equal(t, 44.0, w)
	assert.Equal(t, 68.0, l)

	s, err = Resolve(model.CardRef("custom-deck"), testParams(), map[string]model.CardSize{"custom-deck": {Width: 50, Length: 80}})
	require.NoError(t, err)
	w, _ = Footprint(s)
	assert.Equal(t, 50.0, w)
}

func TestFallbackIsTraySquare(t *testing.T) {
	p := testParams()
	p.Tray.Shapes.SquareWidth = 22
	w, _ := Footprint(Fallback(p))
	assert.InDelta(t, 22, w, 1e-9)
}

func TestOffsetGrowsSquare(t *testing.T) {
	o := Offset(Outline(Square(10, 10, 0)), 1)
	min, max := o.BoundingBox()
	assert.InDelta(t, -1, min.X, 1e-9)
	assert.InDelta(t, -1, min.Y, 1e-9)
	assert.InDelta(t, 11, max.X, 1e-9)
	assert.InDelta(t, 11, max.Y, 1e-9)
}

func TestOffsetMiterIsLimited(t *testing.T) {
	// A very sharp spike would otherwise push its tip far out.
	spike := model.Outline{{X: 0, Y: 0}, {X: 100, Y: 1}, {X: 0, Y: 2}}
	o := Offset(spike, 1)
	assert.LessOrEqual(t, o[1].X-100, 4.0+1e-9)
}
