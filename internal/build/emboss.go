package build

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/piwi3910/TrayForge/internal/model"
	"github.com/piwi3910/TrayForge/internal/solid"
)

// curveSteps is the number of line segments per quadratic or cubic segment.
const curveSteps = 6

var (
	fontOnce sync.Once
	textFont *sfnt.Font
	fontErr  error
)

func loadFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		textFont, fontErr = sfnt.Parse(goregular.TTF)
	})
	return textFont, fontErr
}

// TextContours lays text out along a baseline and returns every glyph
// contour in font units with Y pointing up.
func TextContours(text string) ([]model.Outline, error) {
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	var buf sfnt.Buffer
	ppem := fixed.I(int(f.UnitsPerEm()))

	var contours []model.Outline
	var x fixed.Int26_6
	var prev sfnt.GlyphIndex
	for i, r := range []rune(text) {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph for %q: %w", r, err)
		}
		if i > 0 {
			if k, err := f.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				x += k
			}
		}
		segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("outline for %q: %w", r, err)
		}
		contours = append(contours, flattenGlyph(segs, toFloat(x))...)

		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("advance for %q: %w", r, err)
		}
		x += adv
		prev = idx
	}
	return contours, nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func flattenGlyph(segs sfnt.Segments, dx float64) []model.Outline {
	pt := func(p fixed.Point26_6) model.Point2D {
		return model.Point2D{X: toFloat(p.X) + dx, Y: -toFloat(p.Y)}
	}
	var out []model.Outline
	var cur model.Outline
	flush := func() {
		if len(cur) >= 3 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			cur = model.Outline{pt(s.Args[0])}
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p0, c, p1 := last(cur), pt(s.Args[0]), pt(s.Args[1])
			for k := 1; k <= curveSteps; k++ {
				t := float64(k) / curveSteps
				u := 1 - t
				cur = append(cur, model.Point2D{
					X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
					Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
				})
			}
		case sfnt.SegmentOpCubeTo:
			p0, c1, c2, p1 := last(cur), pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for k := 1; k <= curveSteps; k++ {
				t := float64(k) / curveSteps
				u := 1 - t
				cur = append(cur, model.Point2D{
					X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*p1.X,
					Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*p1.Y,
				})
			}
		}
	}
	flush()
	return out
}

func last(o model.Outline) model.Point2D {
	if len(o) == 0 {
		return model.Point2D{}
	}
	return o[len(o)-1]
}

// embossText builds the raised lettering for the lid: glyph contours scaled
// to fit the plate limits, centred on the plate and extruded from slightly
// below the top face to height mm above it.
func embossText(text string, w, d, top, height float64) (*solid.Solid, error) {
	contours, err := TextContours(text)
	if err != nil {
		return nil, err
	}
	if len(contours) == 0 {
		return &solid.Solid{}, nil
	}

	var all model.Outline
	for _, c := range contours {
		all = append(all, c...)
	}
	min, max := all.BoundingBox()
	bw, bh := max.X-min.X, max.Y-min.Y
	if bw <= 0 || bh <= 0 {
		return &solid.Solid{}, nil
	}
	scale := math.Min(embossWidthFraction*w/bw, embossDepthFraction*d/bh)
	scale = math.Min(scale, embossMaxHeight/bh)

	cx, cy := (min.X+max.X)/2, (min.Y+max.Y)/2
	placed := make([]model.Outline, len(contours))
	for i, c := range contours {
		p := make(model.Outline, len(c))
		for k, pt := range c {
			p[k] = model.Point2D{X: (pt.X-cx)*scale + w/2, Y: (pt.Y-cy)*scale + d/2}
		}
		placed[i] = p
	}

	z0, z1 := top-embossSink, top+height
	letters := &solid.Solid{}
	for _, g := range groupContours(placed) {
		s := solid.Prism(g.outer, z0, z1)
		var holes []*solid.Solid
		for _, h := range g.holes {
			holes = append(holes, solid.Prism(h, z0-overcut, z1+overcut))
		}
		s = s.Subtract(solid.Merge(holes...))
		letters = letters.Union(s)
	}
	return letters, nil
}

type contourGroup struct {
	outer model.Outline
	holes []model.Outline
}

// groupContours pairs every hole with the outline that directly encloses it.
// A contour nested inside an odd number of others is a hole.
func groupContours(contours []model.Outline) []contourGroup {
	n := len(contours)
	depth := make([]int, n)
	parent := make([]int, n)
	for i := range contours {
		parent[i] = -1
		probe := contours[i][0]
		bestArea := math.Inf(1)
		for j := range contours {
			if i == j || !pointInPolygon(probe, contours[j]) {
				continue
			}
			depth[i]++
			if a := math.Abs(contours[j].SignedArea()); a < bestArea {
				bestArea, parent[i] = a, j
			}
		}
	}

	groups := make(map[int]*contourGroup)
	var order []int
	for i := range contours {
		if depth[i]%2 == 0 {
			groups[i] = &contourGroup{outer: contours[i]}
			order = append(order, i)
		}
	}
	for i := range contours {
		if depth[i]%2 == 1 && parent[i] >= 0 {
			if g, ok := groups[parent[i]]; ok {
				g.holes = append(g.holes, contours[i])
			}
		}
	}
	result := make([]contourGroup, 0, len(order))
	for _, i := range order {
		result = append(result, *groups[i])
	}
	return result
}

func pointInPolygon(p model.Point2D, o model.Outline) bool {
	inside := false
	for i, j := 0, len(o)-1; i < len(o); j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
