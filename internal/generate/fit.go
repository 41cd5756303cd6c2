package generate

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/TrayForge/internal/mesh"
)

// CheckFit measures the built tray meshes against the box cavity: every
// tray must fit the interior and no two placed trays may overlap. It
// returns one message per problem; trays without a mesh are skipped.
func (r *BoxResult) CheckFit() []string {
	arr := r.Arrangement
	if arr == nil {
		return nil
	}
	interior := r3.Vec{
		X: arr.InteriorWidth,
		Y: arr.InteriorDepth,
		Z: arr.ExteriorHeight - r.Box.FloorThickness,
	}

	type placed struct {
		name     string
		min, max r3.Vec
	}
	var parts []placed
	var issues []string
	for _, tr := range r.Trays {
		if tr.Mesh == nil {
			continue
		}
		lo, hi := tr.Mesh.Bounds()
		for _, msg := range mesh.CheckFit(r3.Sub(hi, lo), interior).Issues {
			issues = append(issues, fmt.Sprintf("tray %q: %s", tr.Tray.Name, msg))
		}
		offset := r3.Vec{X: tr.Placement.X, Y: tr.Placement.Y, Z: r.Box.FloorThickness}
		parts = append(parts, placed{name: tr.Tray.Name, min: r3.Add(lo, offset), max: r3.Add(hi, offset)})
	}
	for i := range parts {
		for j := i + 1; j < len(parts); j++ {
			a, b := parts[i], parts[j]
			if mesh.Overlaps(a.min, a.max, b.min, b.max) {
				issues = append(issues, fmt.Sprintf("trays %q and %q overlap", a.name, b.name))
			}
		}
	}
	return issues
}
