package engine

import (
	"fmt"
	"strings"

	"github.com/piwi3910/TrayForge/internal/model"
)

// TrayLetter returns the letter code for a tray's cumulative index across
// all boxes: A..Z, then AA, BB, .., ZZ, then AAA. The letter repeats rather
// than carrying, so 27 is "BB", not "AB".
func TrayLetter(index int) string {
	if index < 0 {
		return ""
	}
	ch := rune('A' + index%26)
	return strings.Repeat(string(ch), index/26+1)
}

// RefCode joins a tray letter and a 1-based pocket sequence number.
func RefCode(letter string, seq int) string {
	return fmt.Sprintf("%s%d", letter, seq)
}

// RefLabel is one entry of the reference-label feed consumed by printed
// documentation. Position is the slot centre in tray-local coordinates.
type RefLabel struct {
	RefCode  string        `json:"refCode"`
	Shape    string        `json:"shape"`
	Count    int           `json:"count"`
	Position model.Point2D `json:"position"`
	Label    string        `json:"label,omitempty"`
	TrayName string        `json:"trayName"`
	Loading  model.Loading `json:"loading"`
}

// RefLabels builds the label feed for one tray in reference order.
func RefLabels(trayName, letter string, layout *TrayLayout) []RefLabel {
	labels := make([]RefLabel, 0, len(layout.Pockets))
	for _, p := range layout.Pockets {
		labels = append(labels, RefLabel{
			RefCode:  RefCode(letter, p.Seq),
			Shape:    string(p.Stack.Shape),
			Count:    p.Stack.Count,
			Position: p.Slot.Center(),
			Label:    p.Stack.Label,
			TrayName: trayName,
			Loading:  p.Stack.Loading,
		})
	}
	return labels
}
