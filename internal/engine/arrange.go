package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/model"
)

// minFillRegion drops slivers too small to print as a fill block.
const minFillRegion = 1.0

// Arrangement is the placement of a box's trays and the box size derived
// from it. Placement coordinates are measured from the outer corner of the
// box; Z = 0 is the top of the box floor.
type Arrangement struct {
	Placements     []model.Placement `json:"placements"`
	InteriorWidth  float64           `json:"interiorWidth"`
	InteriorDepth  float64           `json:"interiorDepth"`
	ExteriorWidth  float64           `json:"exteriorWidth"`
	ExteriorDepth  float64           `json:"exteriorDepth"`
	ExteriorHeight float64           `json:"exteriorHeight"`
	TrayHeight     float64           `json:"trayHeight"`  // height every tray is raised to
	FillRegions    []Rect            `json:"fillRegions"` // interior left uncovered by trays
	Warnings       []string          `json:"warnings,omitempty"`
}

// ValidationReport lists every violation found in a box's custom dimensions.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Arrange packs the trays of a box into rows, left to right in list order,
// wrapping when the next tray would exceed the available width. layouts must
// be index-aligned with box.Trays. An empty box yields a zero-sized
// arrangement without error.
func Arrange(box model.Box, layouts []*TrayLayout, bed float64) (*Arrangement, error) {
	arr, violations := arrange(box, layouts, bed)
	if len(violations) > 0 {
		return nil, faults.Validation(violations)
	}
	return arr, nil
}

// ValidateCustomDimensions checks the box's declared exterior width, depth
// and height against what its trays need. The caller must not build
// geometry when the report is not valid.
func ValidateCustomDimensions(box model.Box, layouts []*TrayLayout, bed float64) ValidationReport {
	_, violations := arrange(box, layouts, bed)
	return ValidationReport{Valid: len(violations) == 0, Errors: append([]string{}, violations...)}
}

// ValidateBox checks the shell, lid, project and tray parameters of a box
// before any layout work. Tray problems are prefixed with the tray name.
func ValidateBox(box model.Box, globals model.GlobalParams) []string {
	v := checkBox(box)
	v = append(v, checkGlobals(globals)...)
	for _, t := range box.Trays {
		for _, msg := range checkTray(t.Params) {
			v = append(v, fmt.Sprintf("tray %q: %s", t.Name, msg))
		}
	}
	return v
}

func checkBox(box model.Box) []string {
	var v []string
	if box.WallThickness <= 0 {
		v = append(v, "box wall thickness must be positive")
	}
	if box.FloorThickness <= 0 {
		v = append(v, "box floor thickness must be positive")
	}
	if box.Tolerance < 0 {
		v = append(v, "box tolerance must not be negative")
	}
	return append(v, checkLid(box.Lid)...)
}

func arrange(box model.Box, layouts []*TrayLayout, bed float64) (*Arrangement, []string) {
	violations := checkBox(box)
	if len(layouts) != len(box.Trays) {
		violations = append(violations, fmt.Sprintf("have %d tray layouts for %d trays", len(layouts), len(box.Trays)))
	}
	if len(violations) > 0 {
		return nil, violations
	}

	arr := &Arrangement{Placements: []model.Placement{}, FillRegions: []Rect{}}
	if len(box.Trays) == 0 {
		return arr, nil
	}

	wallTol := box.WallThickness + box.Tolerance
	available := bed - 2*wallTol
	if box.CustomWidth > 0 {
		available = box.CustomWidth - 2*wallTol
	}

	// Rows, mirroring the per-tray shelf packing one level up.
	x, y, rowDepth, extentW := 0.0, 0.0, 0.0, 0.0
	maxNatural := 0.0
	for i, l := range layouts {
		if x > 0 && x+l.Width > available+epsilon {
			y += rowDepth
			x, rowDepth = 0, 0
		}
		arr.Placements = append(arr.Placements, model.Placement{
			TrayID: box.Trays[i].ID,
			X:      wallTol + x,
			Y:      wallTol + y,
			Width:  l.Width,
			Depth:  l.Depth,
			Height: l.NaturalHeight,
		})
		x += l.Width
		extentW = math.Max(extentW, x)
		rowDepth = math.Max(rowDepth, l.Depth)
		maxNatural = math.Max(maxNatural, l.NaturalHeight)
	}
	extentD := y + rowDepth

	arr.TrayHeight = maxNatural
	overhead := box.FloorThickness + box.Tolerance + box.Lid.RailHeight
	if box.CustomHeight > 0 {
		implied := box.CustomHeight - overhead
		if implied < maxNatural-epsilon {
			violations = append(violations, fmt.Sprintf(
				"custom height %.1f mm is smaller than the required %.1f mm (tallest tray %.1f mm + floor %.1f mm + tolerance %.1f mm + lid rail %.1f mm)",
				box.CustomHeight, maxNatural+overhead, maxNatural, box.FloorThickness, box.Tolerance, box.Lid.RailHeight))
		} else {
			arr.TrayHeight = implied
		}
	}

	arr.ExteriorWidth = extentW + 2*wallTol
	arr.ExteriorDepth = extentD + 2*wallTol
	if box.CustomWidth > 0 {
		if box.CustomWidth < arr.ExteriorWidth-epsilon {
			violations = append(violations, fmt.Sprintf(
				"custom width %.1f mm is smaller than the required %.1f mm (trays %.1f mm + 2 × (wall %.1f mm + tolerance %.1f mm))",
				box.CustomWidth, arr.ExteriorWidth, extentW, box.WallThickness, box.Tolerance))
		}
		arr.ExteriorWidth = box.CustomWidth
	}
	if box.CustomDepth > 0 {
		if box.CustomDepth < arr.ExteriorDepth-epsilon {
			violations = append(violations, fmt.Sprintf(
				"custom depth %.1f mm is smaller than the required %.1f mm (trays %.1f mm + 2 × (wall %.1f mm + tolerance %.1f mm))",
				box.CustomDepth, arr.ExteriorDepth, extentD, box.WallThickness, box.Tolerance))
		}
		arr.ExteriorDepth = box.CustomDepth
	}
	if len(violations) > 0 {
		return nil, violations
	}

	arr.InteriorWidth = arr.ExteriorWidth - 2*box.WallThickness
	arr.InteriorDepth = arr.ExteriorDepth - 2*box.WallThickness
	arr.ExteriorHeight = arr.TrayHeight + overhead

	if arr.ExteriorWidth > bed+epsilon || arr.ExteriorDepth > bed+epsilon {
		arr.Warnings = append(arr.Warnings, fmt.Sprintf(
			"box %.1f x %.1f mm is larger than the %.0f mm print bed", arr.ExteriorWidth, arr.ExteriorDepth, bed))
	}

	arr.FillRegions = fillRegions(box, arr)
	return arr, nil
}

func checkLid(lid model.LidParams) []string {
	var v []string
	if lid.Thickness <= 0 {
		v = append(v, "lid thickness must be positive")
	}
	if lid.RailHeight <= 0 || lid.RailWidth <= 0 {
		v = append(v, "lid rail height and width must be positive")
	}
	if lid.RailInset < 0 {
		v = append(v, "lid rail inset must not be negative")
	}
	if lid.Engagement < 0 || lid.Engagement > 1 {
		v = append(v, "snap engagement must be between 0 and 1")
	}
	return v
}

// fillRegions returns the interior left uncovered once every placement,
// grown by the tolerance, has been cut away.
func fillRegions(box model.Box, arr *Arrangement) []Rect {
	free := []Rect{{X: box.WallThickness, Y: box.WallThickness, W: arr.InteriorWidth, D: arr.InteriorDepth}}
	for _, p := range arr.Placements {
		used := Rect{
			X: p.X - box.Tolerance,
			Y: p.Y - box.Tolerance,
			W: p.Width + 2*box.Tolerance,
			D: p.Depth + 2*box.Tolerance,
		}
		var next []Rect
		for _, f := range free {
			next = append(next, subtractRect(f, used)...)
		}
		free = next
	}

	result := []Rect{}
	for _, r := range free {
		if r.W > minFillRegion && r.D > minFillRegion {
			result = append(result, r)
		}
	}
	return result
}

// subtractRect cuts sub out of base and returns the up-to-four remaining
// pieces: full-depth strips left and right of the cut, then the strips in
// front of and behind it between them. The pieces never overlap.
func subtractRect(base, sub Rect) []Rect {
	if !intersects(base, sub) {
		return []Rect{base}
	}

	ix := math.Max(base.X, sub.X)
	iy := math.Max(base.Y, sub.Y)
	iw := math.Min(base.X+base.W, sub.X+sub.W) - ix
	id := math.Min(base.Y+base.D, sub.Y+sub.D) - iy
	if iw <= 0 || id <= 0 {
		return []Rect{base}
	}

	var result []Rect
	if ix > base.X {
		result = append(result, Rect{X: base.X, Y: base.Y, W: ix - base.X, D: base.D})
	}
	if right := base.X + base.W; ix+iw < right {
		result = append(result, Rect{X: ix + iw, Y: base.Y, W: right - (ix + iw), D: base.D})
	}
	if iy > base.Y {
		result = append(result, Rect{X: ix, Y: base.Y, W: iw, D: iy - base.Y})
	}
	if back := base.Y + base.D; iy+id < back {
		result = append(result, Rect{X: ix, Y: iy + id, W: iw, D: back - (iy + id)})
	}
	return result
}

func intersects(a, b Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X &&
		a.Y < b.Y+b.D && a.Y+a.D > b.Y
}
