package model

import "math"

// PrintEstimate holds the filament needed to print a set of solids.
type PrintEstimate struct {
	VolumeMM3      float64 `json:"volume_mm3"`      // Total solid volume (cubic mm)
	FilamentLength float64 `json:"filament_length"` // Filament length in metres
	FilamentGrams  float64 `json:"filament_grams"`  // Filament weight in grams
	EstimatedCost  float64 `json:"estimated_cost"`  // Cost at the configured price per kg
	InfillPercent  float64 `json:"infill_percent"`  // Infill factor applied (e.g., 20 for 20%)
}

// shellFraction is the share of a solid printed as perimeters and skins
// regardless of infill, a rough figure for small box-like parts.
const shellFraction = 0.35

// CalculatePrintEstimate converts solid volume into filament length, weight
// and cost. Volume inside the shells is scaled by the infill percentage.
func CalculatePrintEstimate(volumeMM3, filamentDiameter, densityGCM3, pricePerKg, infillPercent float64) PrintEstimate {
	est := PrintEstimate{VolumeMM3: volumeMM3, InfillPercent: infillPercent}
	if volumeMM3 <= 0 || filamentDiameter <= 0 {
		return est
	}

	infill := math.Max(0, math.Min(infillPercent, 100)) / 100.0
	printed := volumeMM3 * (shellFraction + (1-shellFraction)*infill)

	crossSection := math.Pi * math.Pow(filamentDiameter/2, 2)
	est.FilamentLength = printed / crossSection / 1000.0
	est.FilamentGrams = printed / 1000.0 * densityGCM3
	est.EstimatedCost = est.FilamentGrams / 1000.0 * pricePerKg
	return est
}
