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
	notchSegments = 48

	// bumpRoot is how far a snap bump reaches back into the rail it sits on.
	bumpRoot = 0.2

	// embossSink buries the text this deep in the plate so the union has
	// overlapping volume to work with.
	embossSink = 0.2
)

// Emboss limits, as fractions of the plate and an absolute cap.
const (
	embossWidthFraction = 0.8
	embossDepthFraction = 0.25
	embossMaxHeight     = 12.0
)

// LidTop returns the height of the lid's top face in installed orientation.
func LidTop(lid model.LidParams) float64 {
	return lid.RailHeight + lid.LedgeHeight + lid.Thickness
}

// BuildLid builds the lid for an arrangement. An empty arrangement yields an
// empty mesh.
func BuildLid(box model.Box, arr *engine.Arrangement) (*mesh.Mesh, error) {
	s, err := LidSolid(box, arr)
	if err != nil {
		return nil, faults.Wrap(faults.ErrCodeGeneration, err, "lid for %q", box.Name)
	}
	return s.ToMesh(box.Name + " lid"), nil
}

// LidSolid builds the lid in installed orientation with z = 0 at the rail
// bottom: the rail ring, the ledge ring resting on the box rim, the plate,
// the finger notches, the snap bumps and the embossed name.
func LidSolid(box model.Box, arr *engine.Arrangement) (*solid.Solid, error) {
	if arr == nil {
		return nil, fmt.Errorf("no arrangement")
	}
	if len(arr.Placements) == 0 {
		return &solid.Solid{}, nil
	}
	lid := box.Lid
	w, d := arr.ExteriorWidth, arr.ExteriorDepth
	ri, rw, rh := lid.RailInset, lid.RailWidth, lid.RailHeight
	ledgeTop := rh + lid.LedgeHeight
	top := LidTop(lid)

	body := solid.Box(r3.Vec{Z: rh}, r3.Vec{X: w, Y: d, Z: top})
	if lid.LedgeHeight > solid.Epsilon {
		inner := ri + rw
		body = body.Subtract(solid.Box(
			r3.Vec{X: inner, Y: inner, Z: rh - overcut},
			r3.Vec{X: w - inner, Y: d - inner, Z: ledgeTop},
		))
	}

	// The rail reaches halfway into the part above it so the union overlaps.
	reach := lid.LedgeHeight
	if reach <= solid.Epsilon {
		reach = lid.Thickness
	}
	rail := solid.Ring(model.Point2D{X: ri, Y: ri}, model.Point2D{X: w - ri, Y: d - ri}, rw, 0, rh+reach/2)
	body = body.Union(rail)

	if lid.SnapLock && lid.BumpHeight > 0 && lid.BumpWidth > 0 {
		for _, b := range snapBumps(lid, w, d) {
			body = body.Union(b)
		}
	}

	if lid.NotchRadius > 0 && lid.NotchDepth > 0 {
		z0 := top - math.Min(lid.NotchDepth, top-rh)
		notches := solid.Merge(
			solid.Cylinder(0, d/2, lid.NotchRadius, z0, top+overcut, notchSegments),
			solid.Cylinder(w, d/2, lid.NotchRadius, z0, top+overcut, notchSegments),
		)
		body = body.Subtract(notches)
	}

	if lid.EmbossName && lid.EmbossHeight > 0 && box.Name != "" {
		text, err := embossText(box.Name, w, d, top, lid.EmbossHeight)
		if err != nil {
			return nil, err
		}
		body = body.Union(text)
	}
	return body, nil
}

// snapBumps returns one bump at the midpoint of each rail side, protruding
// outward from the rail face and centred at the engagement height.
func snapBumps(lid model.LidParams, w, d float64) []*solid.Solid {
	ri, bh := lid.RailInset, lid.BumpHeight
	span := bumpSpan(lid)
	zc := bumpCenter(lid)
	z0, z1 := zc-span/2, zc+span/2
	half := lid.BumpWidth / 2

	return []*solid.Solid{
		solid.Box(r3.Vec{X: w/2 - half, Y: ri - bh, Z: z0}, r3.Vec{X: w/2 + half, Y: ri + bumpRoot, Z: z1}),
		solid.Box(r3.Vec{X: w/2 - half, Y: d - ri - bumpRoot, Z: z0}, r3.Vec{X: w/2 + half, Y: d - ri + bh, Z: z1}),
		solid.Box(r3.Vec{X: ri - bh, Y: d/2 - half, Z: z0}, r3.Vec{X: ri + bumpRoot, Y: d/2 + half, Z: z1}),
		solid.Box(r3.Vec{X: w - ri - bumpRoot, Y: d/2 - half, Z: z0}, r3.Vec{X: w - ri + bh, Y: d/2 + half, Z: z1}),
	}
}
