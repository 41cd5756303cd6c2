package model

import "fmt"

// RGB is an 8-bit color.
type RGB struct {
	R, G, B int
}

// Hex formats the color as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Palette is the fixed set of tray colors. Trays take the next entry by
// cumulative creation index so colors stay stable when trays are deleted.
var Palette = []RGB{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// PaletteColor returns the palette entry for a creation index.
func PaletteColor(index int) RGB {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// ParseHex reads a #RRGGBB string; malformed input yields mid grey.
func ParseHex(s string) RGB {
	var c RGB
	if _, err := fmt.Sscanf(s, "#%02X%02X%02X", &c.R, &c.G, &c.B); err != nil {
		return RGB{R: 128, G: 128, B: 128}
	}
	return c
}
