package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/shapes"
)

const epsilon = 0.001

// Rect is an axis-aligned rectangle in mm. X/Y is the corner nearest the
// origin; W runs along X and D along Y.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	D float64 `json:"d"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() model.Point2D {
	return model.Point2D{X: r.X + r.W/2, Y: r.Y + r.D/2}
}

// OpenSide names the tray wall an edge-loaded slot passes through.
type OpenSide string

const (
	OpenNone  OpenSide = ""
	OpenFront OpenSide = "front" // y = 0 wall
	OpenBack  OpenSide = "back"  // y = depth wall
	OpenLeft  OpenSide = "left"  // x = 0 wall
	OpenRight OpenSide = "right" // x = width wall
)

// maxEdgeLanes is one lane per tray wall.
const maxEdgeLanes = 4

// Pocket is one placed stack in tray-local coordinates (origin at the outer
// corner of the tray, walls included).
type Pocket struct {
	Seq       int             `json:"seq"` // 1-based over TopLoaded ++ EdgeLoaded
	Stack     model.StackSpec `json:"stack"`
	Shape     shapes.Shape    `json:"-"`
	Slot      Rect            `json:"slot"`    // footprint including clearance
	Outline   model.Outline   `json:"outline"` // carve outline, clearance applied
	Depth     float64         `json:"depth"`   // stack depth below the rim
	Open      OpenSide        `json:"open,omitempty"`
	Thickness float64         `json:"thickness"` // per piece
}

// TrayLayout is the 2D result of laying out one tray's stacks.
type TrayLayout struct {
	Width         float64  `json:"width"`
	Depth         float64  `json:"depth"`
	NaturalHeight float64  `json:"naturalHeight"`
	Pockets       []Pocket `json:"pockets"` // reference order
	Warnings      []string `json:"warnings,omitempty"`
}

// PieceCount returns the number of pieces the layout holds.
func (l *TrayLayout) PieceCount() int {
	n := 0
	for _, p := range l.Pockets {
		n += p.Stack.Count
	}
	return n
}

// item is a stack waiting to be shelf-packed.
type item struct {
	pocket *Pocket
	w, d   float64
}

// shelf is a row (top-loaded) or lane (edge-loaded) of items.
type shelf struct {
	items []item
	width float64
	depth float64
	open  OpenSide
}

// LayoutTray places every stack of a tray and derives the tray footprint and
// natural height. Edge-loaded lanes are reserved first: lane 0 against the
// front wall, lane 1 against the back wall, lane 2 as a column against the
// left wall and lane 3 against the right wall; every lane opens through the
// wall it sits against. Stacks in a side column are turned a quarter so they
// run along the wall. Top-loaded rows fill the space between the front and
// back lanes. Needing a fifth lane is a validation error.
//
// A missing custom shape is replaced by the tray's square and reported in
// Warnings; dimension problems are returned as a VALIDATION error listing
// every violation.
func LayoutTray(params model.ResolvedParams, cardSizes map[string]model.CardSize) (*TrayLayout, error) {
	tp := params.Tray
	violations := checkParams(params)

	layout := &TrayLayout{}
	usable := params.Global.PrintBedSize - 2*tp.WallThickness

	stacks := append(append([]model.StackSpec(nil), tp.TopLoaded...), tp.EdgeLoaded...)
	pockets := make([]Pocket, len(stacks))
	var topItems, edgeItems []item

	for i, st := range stacks {
		edge := i >= len(tp.TopLoaded)
		if edge {
			st.Loading = model.LoadingEdge
		} else {
			st.Loading = model.LoadingTop
		}
		if st.Count < 1 {
			violations = append(violations, fmt.Sprintf("stack %d (%s): count must be at least 1", i+1, st.Shape))
		}

		shape, err := shapes.Resolve(st.Shape, params, cardSizes)
		if err != nil {
			if !faults.Is(err, faults.ErrCodeInvalidShapeRef) {
				violations = append(violations, faults.Details(err)...)
				continue
			}
			layout.Warnings = append(layout.Warnings,
				fmt.Sprintf("stack %d: %v; using square", i+1, err))
			shape = shapes.Fallback(params)
		}

		thickness := params.Global.CounterThickness
		if shape.Kind == model.ShapeCard {
			thickness = tp.CardThickness
		}
		sw, sl := shapes.Footprint(shape)
		p := &pockets[i]
		*p = Pocket{Seq: i + 1, Stack: st, Shape: shape, Thickness: thickness}

		if !edge {
			p.Depth = float64(st.Count) * thickness
			topItems = append(topItems, item{pocket: p, w: sw + 2*tp.Clearance, d: sl + 2*tp.Clearance})
			continue
		}

		axis := float64(st.Count)*thickness + 2*tp.Clearance
		cross := sw + 2*tp.Clearance
		p.Depth = sl
		it := item{pocket: p, w: axis, d: cross}
		if st.Orientation == model.OrientWidthwise {
			it.w, it.d = cross, axis
		}
		edgeItems = append(edgeItems, it)
	}

	for _, it := range append(append([]item(nil), edgeItems...), topItems...) {
		if it.w > usable+epsilon {
			violations = append(violations, fmt.Sprintf(
				"stack %d (%s): footprint %.1f mm is wider than the usable bed width %.1f mm",
				it.pocket.Seq, it.pocket.Stack.Shape, it.w, usable))
		}
	}
	if len(violations) > 0 {
		return nil, faults.Validation(violations)
	}

	wall := tp.WallThickness
	lanes := packShelves(edgeItems, usable, wall)
	if len(lanes) > maxEdgeLanes {
		return nil, faults.Validation([]string{fmt.Sprintf(
			"edge-loaded stacks need %d lanes but a tray has only %d walls to open them through",
			len(lanes), maxEdgeLanes)})
	}

	var left, right *column
	if len(lanes) > 2 {
		left = newColumn(lanes[2], OpenLeft, wall)
	}
	if len(lanes) > 3 {
		right = newColumn(lanes[3], OpenRight, wall)
	}

	// Side columns narrow the space left for the front, back and top rows,
	// so those are packed again into what remains.
	middle := usable
	x0 := wall
	for _, c := range []*column{left, right} {
		if c == nil {
			continue
		}
		middle -= c.width + wall
		if c.length > usable+epsilon {
			violations = append(violations, fmt.Sprintf(
				"%s lane is %.1f mm long, more than the usable bed depth %.1f mm", c.open, c.length, usable))
		}
	}
	if left != nil {
		x0 += left.width + wall
	}
	rows := packShelves(topItems, usable, wall)
	if left != nil || right != nil {
		front, back := lanes[0].items, lanes[1].items
		for _, it := range append(append(append([]item(nil), front...), back...), topItems...) {
			if it.w > middle+epsilon {
				violations = append(violations, fmt.Sprintf(
					"stack %d (%s): footprint %.1f mm does not fit the %.1f mm left between the side lanes",
					it.pocket.Seq, it.pocket.Stack.Shape, it.w, middle))
			}
		}
		if len(violations) > 0 {
			return nil, faults.Validation(violations)
		}
		fl, bl := packShelves(front, middle, wall), packShelves(back, middle, wall)
		if len(fl) > 1 || len(bl) > 1 {
			return nil, faults.Validation([]string{fmt.Sprintf(
				"front and back lanes no longer fit in the %.1f mm left between the side lanes", middle)})
		}
		lanes[0], lanes[1] = fl[0], bl[0]
		rows = packShelves(topItems, middle, wall)
	}
	if len(violations) > 0 {
		return nil, faults.Validation(violations)
	}

	// Front lane, top rows, back lane.
	var order []*shelf
	if len(lanes) > 0 {
		lanes[0].open = OpenFront
		order = append(order, lanes[0])
	}
	order = append(order, rows...)
	if len(lanes) > 1 {
		lanes[1].open = OpenBack
		order = append(order, lanes[1])
	}

	if len(order) == 0 {
		sq := shapes.Fallback(params)
		w, l := shapes.Footprint(sq)
		layout.Width = w + 2*tp.Clearance + 2*wall
		layout.Depth = l + 2*tp.Clearance + 2*wall
		layout.NaturalHeight = tp.FloorThickness + tp.RimHeight
		layout.Pockets = []Pocket{}
		return layout, nil
	}

	y := wall
	maxWidth, maxDepth := 0.0, 0.0
	for _, sh := range order {
		x := x0
		for _, it := range sh.items {
			p := it.pocket
			p.Slot = Rect{X: x, Y: y, W: it.w, D: it.d}
			p.Open = sh.open
			p.Outline = carveOutline(p, tp.Clearance)
			maxDepth = math.Max(maxDepth, p.Depth)
			x += it.w + wall
		}
		maxWidth = math.Max(maxWidth, sh.width)
		y += sh.depth + wall
	}

	width := x0 + maxWidth + wall
	if right != nil {
		width += right.width + wall
	}
	depth := y
	for _, c := range []*column{left, right} {
		if c == nil {
			continue
		}
		cy := wall
		for _, it := range c.items {
			x := wall
			if c == right {
				x = width - wall - it.w
			}
			p := it.pocket
			p.Slot = Rect{X: x, Y: cy, W: it.w, D: it.d}
			p.Open = c.open
			p.Outline = carveOutline(p, tp.Clearance)
			maxDepth = math.Max(maxDepth, p.Depth)
			cy += it.d + wall
		}
		depth = math.Max(depth, cy)
	}

	layout.Width = width
	layout.Depth = depth
	layout.NaturalHeight = tp.FloorThickness + maxDepth + tp.RimHeight
	layout.Pockets = pockets
	return layout, nil
}

// column is a side lane: its stacks are turned a quarter and placed one
// behind the other along the wall they open through.
type column struct {
	items  []item
	width  float64
	length float64
	open   OpenSide
}

func newColumn(sh *shelf, open OpenSide, wall float64) *column {
	c := &column{open: open}
	for i, it := range sh.items {
		it.w, it.d = it.d, it.w
		if i > 0 {
			c.length += wall
		}
		c.length += it.d
		c.width = math.Max(c.width, it.w)
		c.items = append(c.items, it)
	}
	return c
}

// packShelves fills shelves left to right in list order, wrapping when the
// running width would exceed the usable width. Items are separated by one
// wall thickness.
func packShelves(items []item, usable, wall float64) []*shelf {
	var shelves []*shelf
	var cur *shelf
	for _, it := range items {
		if cur != nil && cur.width+wall+it.w > usable+epsilon {
			cur = nil
		}
		if cur == nil {
			cur = &shelf{}
			shelves = append(shelves, cur)
		} else {
			cur.width += wall
		}
		cur.items = append(cur.items, it)
		cur.width += it.w
		cur.depth = math.Max(cur.depth, it.d)
	}
	return shelves
}

// carveOutline returns the outline that is cut for a pocket: the shape grown
// by the clearance and centred in its slot for top-loaded stacks, the slot
// rectangle itself for edge-loaded ones.
func carveOutline(p *Pocket, clearance float64) model.Outline {
	s := p.Slot
	if p.Stack.Loading == model.LoadingEdge {
		return model.Outline{{X: s.X, Y: s.Y}, {X: s.X + s.W, Y: s.Y}, {X: s.X + s.W, Y: s.Y + s.D}, {X: s.X, Y: s.Y + s.D}}
	}
	o := shapes.Offset(shapes.Outline(p.Shape), clearance)
	min, max := o.BoundingBox()
	c := s.Center()
	return o.Translate(c.X-(min.X+max.X)/2, c.Y-(min.Y+max.Y)/2)
}

func checkParams(params model.ResolvedParams) []string {
	return append(checkGlobals(params.Global), checkTray(params.Tray)...)
}

func checkGlobals(g model.GlobalParams) []string {
	var v []string
	if g.PrintBedSize <= 0 {
		v = append(v, "print bed size must be positive")
	}
	if g.CounterThickness <= 0 {
		v = append(v, "counter thickness must be positive")
	}
	return v
}

func checkTray(tp model.TrayParams) []string {
	var v []string
	if tp.WallThickness <= 0 {
		v = append(v, "tray wall thickness must be positive")
	}
	if tp.FloorThickness <= 0 {
		v = append(v, "tray floor thickness must be positive")
	}
	if tp.Clearance < 0 {
		v = append(v, "clearance must not be negative")
	}
	if tp.RimHeight < 0 {
		v = append(v, "rim height must not be negative")
	}
	if tp.CardThickness <= 0 {
		v = append(v, "card thickness must be positive")
	}
	return v
}
