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

// detentClearance is the gap left around a snap bump seated in its detent.
const detentClearance = 0.1

// minLip is the thinnest outer lip a detent may leave behind.
const minLip = 0.4

// BuildBox builds the box shell for an arrangement. An empty arrangement
// yields an empty mesh.
func BuildBox(box model.Box, arr *engine.Arrangement) (*mesh.Mesh, error) {
	s, err := BoxSolid(box, arr)
	if err != nil {
		return nil, faults.Wrap(faults.ErrCodeGeneration, err, "box %q", box.Name)
	}
	return s.ToMesh(box.Name), nil
}

// BoxSolid builds the shell: an exterior block with the cavity and the lid
// groove cut out. In solid-fill mode only the space above the trays and a
// well per tray placement (grown by the tolerance) are cut, leaving the rest
// of the interior solid.
func BoxSolid(box model.Box, arr *engine.Arrangement) (*solid.Solid, error) {
	if arr == nil {
		return nil, fmt.Errorf("no arrangement")
	}
	if len(arr.Placements) == 0 {
		return &solid.Solid{}, nil
	}
	w, d, h := arr.ExteriorWidth, arr.ExteriorDepth, arr.ExteriorHeight
	wall, floor, tol := box.WallThickness, box.FloorThickness, box.Tolerance

	shell := solid.Box(r3.Vec{}, r3.Vec{X: w, Y: d, Z: h})

	var cavity *solid.Solid
	if box.Fill == model.FillSolid {
		trayTop := floor + arr.TrayHeight
		cavity = solid.Box(r3.Vec{X: wall, Y: wall, Z: trayTop}, r3.Vec{X: w - wall, Y: d - wall, Z: h + overcut})
		for _, p := range arr.Placements {
			well := solid.Box(
				r3.Vec{X: math.Max(wall, p.X-tol), Y: math.Max(wall, p.Y-tol), Z: floor},
				r3.Vec{X: math.Min(w-wall, p.X+p.Width+tol), Y: math.Min(d-wall, p.Y+p.Depth+tol), Z: trayTop + overcut},
			)
			cavity = cavity.Union(well)
		}
	} else {
		cavity = solid.Box(r3.Vec{X: wall, Y: wall, Z: floor}, r3.Vec{X: w - wall, Y: d - wall, Z: h + overcut})
	}
	shell = shell.Subtract(cavity)
	shell = shell.Subtract(groove(box, w, d, h))

	if box.Lid.SnapLock {
		shell = shell.Subtract(detents(box, w, d, h))
	}
	if shell.IsEmpty() {
		return nil, fmt.Errorf("cutting the cavity left no material")
	}
	return shell, nil
}

// groove is the channel the lid rail seats into: a ring band between insets
// railInset−tol and railInset+railWidth+tol, from railHeight+tol below the
// rim up through the top.
func groove(box model.Box, w, d, h float64) *solid.Solid {
	lid, tol := box.Lid, box.Tolerance
	outer := math.Max(0, lid.RailInset-tol)
	inner := lid.RailInset + lid.RailWidth + tol
	return solid.Ring(
		model.Point2D{X: outer, Y: outer},
		model.Point2D{X: w - outer, Y: d - outer},
		inner-outer,
		h-lid.RailHeight-tol, h+overcut,
	)
}

// detents are the recesses in the groove's outer lip that the lid's snap
// bumps click into, one at the midpoint of each side.
func detents(box model.Box, w, d, h float64) *solid.Solid {
	lid, tol := box.Lid, box.Tolerance
	lip := lid.RailInset - tol
	reach := lid.RailInset - lid.BumpHeight - detentClearance
	if lid.BumpHeight <= tol || reach < minLip || lip <= reach {
		return &solid.Solid{}
	}
	zc := h - lid.RailHeight + bumpCenter(lid)
	half := bumpSpan(lid)/2 + detentClearance
	z0, z1 := zc-half, zc+half
	along := lid.BumpWidth/2 + detentClearance

	return solid.Merge(
		solid.Box(r3.Vec{X: w/2 - along, Y: reach, Z: z0}, r3.Vec{X: w/2 + along, Y: lip + overcut, Z: z1}),
		solid.Box(r3.Vec{X: w/2 - along, Y: d - lip - overcut, Z: z0}, r3.Vec{X: w/2 + along, Y: d - reach, Z: z1}),
		solid.Box(r3.Vec{X: reach, Y: d/2 - along, Z: z0}, r3.Vec{X: lip + overcut, Y: d/2 + along, Z: z1}),
		solid.Box(r3.Vec{X: w - lip - overcut, Y: d/2 - along, Z: z0}, r3.Vec{X: w - reach, Y: d/2 + along, Z: z1}),
	)
}

// bumpSpan is the vertical size of a snap bump.
func bumpSpan(lid model.LidParams) float64 {
	return lid.RailHeight / 3
}

// bumpCenter is the height of a bump's centre above the rail bottom, kept
// far enough from either end that the whole bump stays on the rail.
func bumpCenter(lid model.LidParams) float64 {
	span := bumpSpan(lid)
	return math.Min(math.Max(lid.Engagement*lid.RailHeight, span/2), lid.RailHeight-span/2)
}
