package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Rotate rotates the outline by angle radians around the origin.
func (o Outline) Rotate(angle float64) Outline {
	sin, cos := math.Sincos(angle)
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	}
	return result
}

// SignedArea returns the shoelace area; positive for counter-clockwise loops.
func (o Outline) SignedArea() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return area / 2
}

// CCW returns the outline with counter-clockwise winding.
func (o Outline) CCW() Outline {
	if o.SignedArea() >= 0 {
		return o
	}
	result := make(Outline, len(o))
	for i, p := range o {
		result[len(o)-1-i] = p
	}
	return result
}

// Normalize translates the outline so its bounding box starts at (0, 0).
func (o Outline) Normalize() Outline {
	if len(o) == 0 {
		return o
	}
	min, _ := o.BoundingBox()
	return o.Translate(-min.X, -min.Y)
}

// ShapeKind names a pocket cross-section family.
type ShapeKind string

const (
	ShapeSquare    ShapeKind = "square"
	ShapeHex       ShapeKind = "hex"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeCustom    ShapeKind = "custom"
	ShapeCard      ShapeKind = "card"
	ShapeRectangle ShapeKind = "rectangle" // base-shape hint for custom shapes only
)

// ShapeRef points a stack at a shape: a bare kind ("hex"), a custom shape
// ("custom:<id or name>") or a card size ("card:<size name>").
type ShapeRef string

// CustomRef builds a reference to a custom shape.
func CustomRef(key string) ShapeRef { return ShapeRef(string(ShapeCustom) + ":" + key) }

// CardRef builds a reference to a card size.
func CardRef(size string) ShapeRef { return ShapeRef(string(ShapeCard) + ":" + size) }

// Kind returns the shape family of the reference.
func (r ShapeRef) Kind() ShapeKind {
	kind, _, _ := strings.Cut(string(r), ":")
	return ShapeKind(kind)
}

// Key returns the part after the colon, or "" for bare kinds.
func (r ShapeRef) Key() string {
	_, key, _ := strings.Cut(string(r), ":")
	return key
}

// Loading describes how pieces enter a pocket.
type Loading string

const (
	LoadingTop  Loading = "top"
	LoadingEdge Loading = "edge"
)

// Orientation sets the stack axis of an edge-loaded stack.
type Orientation string

const (
	OrientLengthwise Orientation = "lengthwise" // stack axis along tray width (X)
	OrientWidthwise  Orientation = "widthwise"  // stack axis along tray depth (Y)
)

// StackSpec is a requested pile of one shape. Its position in its list is the
// placement priority and the basis of its reference code.
type StackSpec struct {
	Shape       ShapeRef    `json:"shape"`
	Count       int         `json:"count"`
	Label       string      `json:"label,omitempty"`
	Loading     Loading     `json:"loading"`
	Orientation Orientation `json:"orientation,omitempty"`
}

func NewTopStack(shape ShapeRef, count int, label string) StackSpec {
	return StackSpec{Shape: shape, Count: count, Label: label, Loading: LoadingTop}
}

func NewEdgeStack(shape ShapeRef, count int, orient Orientation, label string) StackSpec {
	return StackSpec{Shape: shape, Count: count, Label: label, Loading: LoadingEdge, Orientation: orient}
}

// ShapeSettings holds the nominal sizes of the built-in shapes for one tray.
type ShapeSettings struct {
	SquareWidth          float64 `json:"squareWidth"`
	SquareLength         float64 `json:"squareLength"`
	SquareCornerRadius   float64 `json:"squareCornerRadius"`
	HexFlatToFlat        float64 `json:"hexFlatToFlat"`
	HexPointyTop         bool    `json:"hexPointyTop"`
	CircleDiameter       float64 `json:"circleDiameter"`
	TriangleSide         float64 `json:"triangleSide"`
	TriangleCornerRadius float64 `json:"triangleCornerRadius"`
}

// CustomShape is a user-defined pocket cross-section shared by the project.
// ID is stable across renames; stacks should reference it by ID.
type CustomShape struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BaseShape    ShapeKind `json:"baseShape"` // packing approximation hint
	Width        float64   `json:"width"`
	Length       float64   `json:"length"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
	Outline      Outline   `json:"outline,omitempty"` // explicit polygon; generated from BaseShape when empty
}

func NewCustomShape(name string, base ShapeKind, w, l float64) CustomShape {
	return CustomShape{
		ID:        uuid.New().String()[:8],
		Name:      name,
		BaseShape: base,
		Width:     w,
		Length:    l,
	}
}

// GlobalParams are project-scoped: every tray reads the same record.
type GlobalParams struct {
	PrintBedSize     float64       `json:"printBedSize"`     // mm, square bed
	CounterThickness float64       `json:"counterThickness"` // mm per piece
	CustomShapes     []CustomShape `json:"customShapes"`
}

// FindCustomShape resolves a custom shape by ID first, then by name.
func (g GlobalParams) FindCustomShape(key string) (CustomShape, bool) {
	for _, s := range g.CustomShapes {
		if s.ID == key {
			return s, true
		}
	}
	for _, s := range g.CustomShapes {
		if s.Name == key {
			return s, true
		}
	}
	return CustomShape{}, false
}

// TrayParams are the parameters owned by a single tray.
type TrayParams struct {
	Shapes         ShapeSettings `json:"shapes"`
	Clearance      float64       `json:"clearance"`      // fit tolerance around each pocket outline
	WallThickness  float64       `json:"wallThickness"`  // perimeter and between pockets
	FloorThickness float64       `json:"floorThickness"` // minimum material under every pocket
	RimHeight      float64       `json:"rimHeight"`      // headroom above the tallest stack
	CardThickness  float64       `json:"cardThickness"`  // per card, used by card: stacks
	TopLoaded      []StackSpec   `json:"topLoaded"`
	EdgeLoaded     []StackSpec   `json:"edgeLoaded"`
}

// Clone returns a deep copy so callers can edit stacks independently.
func (p TrayParams) Clone() TrayParams {
	cp := p
	cp.TopLoaded = append([]StackSpec(nil), p.TopLoaded...)
	cp.EdgeLoaded = append([]StackSpec(nil), p.EdgeLoaded...)
	return cp
}

// Clone returns a deep copy, outlines included.
func (g GlobalParams) Clone() GlobalParams {
	cp := g
	cp.CustomShapes = make([]CustomShape, len(g.CustomShapes))
	for i, cs := range g.CustomShapes {
		cs.Outline = append(Outline(nil), cs.Outline...)
		cp.CustomShapes[i] = cs
	}
	return cp
}

// ResolvedParams is the read view handed to the engine for one tray.
type ResolvedParams struct {
	Global GlobalParams
	Tray   TrayParams
}

// Tray is one printable insert.
type Tray struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Color  string     `json:"color"`
	Params TrayParams `json:"params"`
}

func NewTray(name string, colorIndex int) Tray {
	return Tray{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Color:  PaletteColor(colorIndex).Hex(),
		Params: DefaultTrayParams(),
	}
}

// FillMode selects how unused box interior is printed.
type FillMode string

const (
	FillWallsOnly FillMode = "walls-only"
	FillSolid     FillMode = "solid-fill"
)

// LidParams configures the snap-fit lid and the matching box groove.
type LidParams struct {
	Thickness    float64 `json:"thickness"`
	RailHeight   float64 `json:"railHeight"`
	RailWidth    float64 `json:"railWidth"`
	RailInset    float64 `json:"railInset"` // exterior edge to rail outer face
	LedgeHeight  float64 `json:"ledgeHeight"`
	NotchRadius  float64 `json:"notchRadius"`
	NotchDepth   float64 `json:"notchDepth"`
	SnapLock     bool    `json:"snapLock"`
	BumpHeight   float64 `json:"bumpHeight"` // outward protrusion
	BumpWidth    float64 `json:"bumpWidth"`  // along the rail
	Engagement   float64 `json:"engagement"` // fraction of rail height, measured from the rail bottom
	EmbossName   bool    `json:"embossName"`
	EmbossHeight float64 `json:"embossHeight"`
}

// Box holds an ordered list of trays plus shell and lid parameters.
// Custom dimensions are exterior sizes; zero means auto-size.
type Box struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Trays          []Tray    `json:"trays"`
	WallThickness  float64   `json:"wallThickness"`
	FloorThickness float64   `json:"floorThickness"`
	Tolerance      float64   `json:"tolerance"`
	CustomWidth    float64   `json:"customWidth,omitempty"`
	CustomDepth    float64   `json:"customDepth,omitempty"`
	CustomHeight   float64   `json:"customHeight,omitempty"`
	Fill           FillMode  `json:"fill"`
	Lid            LidParams `json:"lid"`
}

func NewBox(name string) Box {
	return Box{
		ID:             uuid.New().String()[:8],
		Name:           name,
		Trays:          []Tray{},
		WallThickness:  3.0,
		FloorThickness: 2.0,
		Tolerance:      0.5,
		Fill:           FillWallsOnly,
		Lid:            DefaultLidParams(),
	}
}

// Placement locates a tray inside its box interior. Derived, never persisted.
type Placement struct {
	TrayID string  `json:"trayId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// SpacerInfo is the floor riser that brings a tray up to the box height.
type SpacerInfo struct {
	TrayID        string  `json:"trayId"`
	NaturalHeight float64 `json:"naturalHeight"`
	Spacer        float64 `json:"spacer"`
}

// Project ties everything together for save/load.
type Project struct {
	Name           string       `json:"name"`
	Globals        GlobalParams `json:"globals"`
	Boxes          []Box        `json:"boxes"`
	NextColorIndex int          `json:"nextColorIndex"`
}

// Clone returns a deep copy that shares no slices with p.
func (p Project) Clone() Project {
	cp := p
	cp.Globals = p.Globals.Clone()
	cp.Boxes = make([]Box, len(p.Boxes))
	for i, b := range p.Boxes {
		b.Trays = make([]Tray, len(p.Boxes[i].Trays))
		for j, t := range p.Boxes[i].Trays {
			t.Params = t.Params.Clone()
			b.Trays[j] = t
		}
		cp.Boxes[i] = b
	}
	return cp
}

func NewProject() Project {
	return Project{
		Name:    "Untitled",
		Globals: DefaultGlobalParams(),
		Boxes:   []Box{},
	}
}

func DefaultGlobalParams() GlobalParams {
	return GlobalParams{
		PrintBedSize:     256.0,
		CounterThickness: 1.3,
		CustomShapes:     []CustomShape{},
	}
}

func DefaultShapeSettings() ShapeSettings {
	return ShapeSettings{
		SquareWidth:          15.9,
		SquareLength:         15.9,
		SquareCornerRadius:   0.5,
		HexFlatToFlat:        15.9,
		HexPointyTop:         false,
		CircleDiameter:       15.9,
		TriangleSide:         15.9,
		TriangleCornerRadius: 0.5,
	}
}

func DefaultTrayParams() TrayParams {
	return TrayParams{
		Shapes:         DefaultShapeSettings(),
		Clearance:      0.3,
		WallThickness:  2.0,
		FloorThickness: 2.0,
		RimHeight:      2.0,
		CardThickness:  0.5,
		TopLoaded:      []StackSpec{},
		EdgeLoaded:     []StackSpec{},
	}
}

func DefaultLidParams() LidParams {
	return LidParams{
		Thickness:    2.0,
		RailHeight:   4.0,
		RailWidth:    1.2,
		RailInset:    1.5,
		LedgeHeight:  1.0,
		NotchRadius:  8.0,
		NotchDepth:   1.5,
		SnapLock:     true,
		BumpHeight:   0.7,
		BumpWidth:    6.0,
		Engagement:   0.5,
		EmbossName:   true,
		EmbossHeight: 0.6,
	}
}
