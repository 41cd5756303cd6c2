package model

// CardSize is the face size of a card in mm.
type CardSize struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// CardSizes are the built-in card formats addressable as "card:<name>".
var CardSizes = map[string]CardSize{
	"standard":      {Width: 63.5, Length: 88.9},
	"american":      {Width: 56, Length: 87},
	"mini-american": {Width: 41, Length: 63},
	"euro":          {Width: 59, Length: 92},
	"mini-euro":     {Width: 44, Length: 68},
	"tarot":         {Width: 70, Length: 120},
	"square":        {Width: 70, Length: 70},
}

// LookupCardSize resolves a card format, preferring the override table.
func LookupCardSize(name string, overrides map[string]CardSize) (CardSize, bool) {
	if s, ok := overrides[name]; ok {
		return s, true
	}
	s, ok := CardSizes[name]
	return s, ok
}
