package engine

import (
	"math"

	"github.com/piwi3910/TrayForge/internal/model"
)

// ComputeSpacers returns, per tray, the floor riser that lifts its natural
// height up to boxMaxHeight. Spacers are never negative. trays and layouts
// are index-aligned.
func ComputeSpacers(trays []model.Tray, layouts []*TrayLayout, boxMaxHeight float64) []model.SpacerInfo {
	infos := make([]model.SpacerInfo, len(layouts))
	for i, l := range layouts {
		infos[i] = model.SpacerInfo{
			TrayID:        trays[i].ID,
			NaturalHeight: l.NaturalHeight,
			Spacer:        math.Max(0, boxMaxHeight-l.NaturalHeight),
		}
	}
	return infos
}

// MaxNaturalHeight returns the tallest natural height among layouts.
func MaxNaturalHeight(layouts []*TrayLayout) float64 {
	h := 0.0
	for _, l := range layouts {
		h = math.Max(h, l.NaturalHeight)
	}
	return h
}
