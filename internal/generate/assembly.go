package generate

import "github.com/piwi3910/TrayForge/internal/mesh"

// Assembly returns one mesh with every tray placed in the box. With lid
// set, the lid is added in its closed position. Parts that were not built
// are skipped.
func (r *BoxResult) Assembly(lid bool) *mesh.Mesh {
	out := &mesh.Mesh{Name: r.Box.Name}
	out.Append(r.BoxMesh)
	for _, tr := range r.Trays {
		if tr.Mesh == nil {
			continue
		}
		out.Append(tr.Mesh.Translated(tr.Placement.X, tr.Placement.Y, r.Box.FloorThickness))
	}
	if lid && r.LidMesh != nil && r.Arrangement != nil {
		// The ledge rests on the rim, so the rail bottom sits one rail
		// height below the top of the box.
		out.Append(r.LidMesh.Translated(0, 0, r.Arrangement.ExteriorHeight-r.Box.Lid.RailHeight))
	}
	return out
}
