// Package build turns layouts and arrangements into solids: trays with
// carved pockets, the box shell with its lid groove, and the snap-fit lid.
//
// Every builder is a pure function of its arguments.
package build

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/faults"
	"github.com/piwi3910/TrayForge/internal/mesh"
	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/solid"
)

const (
	// overcut pushes cutters past the faces they open so no cut ends
	// coplanar with the face it pierces.
	overcut = 1.0

	// maxPushHole caps the radius of the push-out hole under each top pocket.
	maxPushHole = 10.0
	// minPushHole is the smallest push-out hole worth cutting.
	minPushHole = 1.5

	holeSegments = 32
)

// BuildTray builds one tray: a block of the layout footprint and
// targetHeight, with every pocket carved from the top. The lowest
// spacerHeight mm are the riser that lifts the tray to the box height; at
// least FloorThickness always remains above it.
func BuildTray(params model.ResolvedParams, layout *engine.TrayLayout, name string, targetHeight, spacerHeight float64) (*mesh.Mesh, error) {
	s, err := TraySolid(params, layout, targetHeight, spacerHeight)
	if err != nil {
		return nil, faults.Wrap(faults.ErrCodeGeneration, err, "tray %q", name)
	}
	return s.ToMesh(name), nil
}

// TraySolid is BuildTray without the final triangulation.
func TraySolid(params model.ResolvedParams, layout *engine.TrayLayout, targetHeight, spacerHeight float64) (*solid.Solid, error) {
	if layout == nil {
		return nil, fmt.Errorf("no layout")
	}
	tp := params.Tray
	minTarget := spacerHeight + tp.FloorThickness
	if targetHeight < minTarget {
		return nil, fmt.Errorf("target height %.2f mm leaves no floor above the %.2f mm spacer", targetHeight, spacerHeight)
	}

	block := solid.Box(r3.Vec{}, r3.Vec{X: layout.Width, Y: layout.Depth, Z: targetHeight})
	floorTop := spacerHeight + tp.FloorThickness

	var pockets, holes []*solid.Solid
	for _, p := range layout.Pockets {
		bottom := math.Max(floorTop, targetHeight-(p.Depth+tp.RimHeight))
		if p.Stack.Loading == model.LoadingEdge {
			pockets = append(pockets, edgeSlot(p, layout.Width, layout.Depth, bottom, targetHeight))
			continue
		}
		pockets = append(pockets, solid.Prism(p.Outline, bottom, targetHeight+overcut))

		r := math.Min(maxPushHole, math.Min(p.Slot.W, p.Slot.D)/4)
		if r >= minPushHole {
			c := p.Slot.Center()
			holes = append(holes, solid.Cylinder(c.X, c.Y, r, -overcut, bottom+overcut, holeSegments))
		}
	}

	// Pockets are separated by walls, so each group is disjoint and can be
	// cut in one pass.
	tray := block.Subtract(solid.Merge(pockets...))
	tray = tray.Subtract(solid.Merge(holes...))
	if tray.IsEmpty() {
		return nil, fmt.Errorf("carving left no material")
	}
	return tray, nil
}

// edgeSlot is the rectangular cutter of an edge-loaded pocket, run through
// the wall on its lane's open side.
func edgeSlot(p engine.Pocket, trayWidth, trayDepth, bottom, top float64) *solid.Solid {
	s := p.Slot
	x0, x1 := s.X, s.X+s.W
	y0, y1 := s.Y, s.Y+s.D
	switch p.Open {
	case engine.OpenFront:
		y0 = -overcut
	case engine.OpenBack:
		y1 = trayDepth + overcut
	case engine.OpenLeft:
		x0 = -overcut
	case engine.OpenRight:
		x1 = trayWidth + overcut
	}
	return solid.Box(
		r3.Vec{X: x0, Y: y0, Z: bottom},
		r3.Vec{X: x1, Y: y1, Z: top + overcut},
	)
}
