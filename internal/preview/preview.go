// Package preview renders a top-down PNG of a generated box: walls, fill
// regions, tray placements in their colours and every pocket outline
// marked with its reference code.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/piwi3910/TrayForge/internal/engine"
	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
)

// Options controls the rendered image.
type Options struct {
	// PixelsPerMM is the drawing scale; 0 means 4.
	PixelsPerMM float64
	// Margin is the border around the box in pixels; 0 means 20.
	Margin int
	// NoLabels skips the reference codes.
	NoLabels bool
}

const (
	// maxPixels caps either image side so a huge box cannot exhaust memory.
	maxPixels = 8192
	emptySize = 64
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

func (o *Options) setDefaults() {
	if o.PixelsPerMM <= 0 {
		o.PixelsPerMM = 4
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
}

// Size returns the image size Render will produce for an arrangement.
func Size(arr *engine.Arrangement, opts Options) (w, h int, scale float64) {
	opts.setDefaults()
	scale = opts.PixelsPerMM
	longest := math.Max(arr.ExteriorWidth, arr.ExteriorDepth)
	if avail := float64(maxPixels - 2*opts.Margin); longest*scale > avail {
		scale = avail / longest
	}
	w = int(math.Ceil(arr.ExteriorWidth*scale)) + 2*opts.Margin
	h = int(math.Ceil(arr.ExteriorDepth*scale)) + 2*opts.Margin
	if arr.ExteriorWidth <= 0 || arr.ExteriorDepth <= 0 {
		w, h = emptySize, emptySize
	}
	return w, h, scale
}

// Render draws the box arrangement of res and encodes it as PNG to w. The
// front wall (y = 0) is at the bottom of the image.
func Render(w io.Writer, res *generate.BoxResult, opts Options) error {
	if res == nil || res.Arrangement == nil {
		return fmt.Errorf("box has no arrangement to render")
	}
	opts.setDefaults()
	arr := res.Arrangement
	width, height, scale := Size(arr, opts)

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.SetHexColor("#FFFFFF")
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	if err := dc.Fill(); err != nil {
		return err
	}
	if arr.ExteriorWidth <= 0 || arr.ExteriorDepth <= 0 {
		return dc.EncodePNG(w)
	}

	m := float64(opts.Margin)
	// toPx maps box millimetres to image pixels.
	toPx := func(x, y float64) (float64, float64) {
		return m + x*scale, m + (arr.ExteriorDepth-y)*scale
	}
	rect := func(x, y, rw, rd float64) {
		px, py := toPx(x, y+rd)
		dc.DrawRectangle(px, py, rw*scale, rd*scale)
	}

	// Walls, then the interior cut out of them.
	dc.SetHexColor("#9E9E9E")
	rect(0, 0, arr.ExteriorWidth, arr.ExteriorDepth)
	if err := dc.Fill(); err != nil {
		return err
	}
	wall := res.Box.WallThickness
	dc.SetHexColor("#F5F5F5")
	rect(wall, wall, arr.InteriorWidth, arr.InteriorDepth)
	if err := dc.Fill(); err != nil {
		return err
	}

	if res.Box.Fill == model.FillSolid {
		dc.SetHexColor("#C8C8C8")
		for _, r := range arr.FillRegions {
			rect(r.X, r.Y, r.W, r.D)
			if err := dc.Fill(); err != nil {
				return err
			}
		}
	}

	var face text.Face
	if !opts.NoLabels {
		src, err := loadFont()
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		face = src.Face(math.Max(8, math.Min(3.5*scale, 24)))
	}

	for _, tr := range res.Trays {
		if err := drawTray(dc, tr, rect, toPx, face); err != nil {
			return fmt.Errorf("tray %q: %w", tr.Tray.Name, err)
		}
	}

	dc.SetHexColor("#424242")
	dc.SetLineWidth(2)
	rect(0, 0, arr.ExteriorWidth, arr.ExteriorDepth)
	if err := dc.Stroke(); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func drawTray(dc *gg.Context, tr generate.TrayResult, rect func(x, y, w, d float64), toPx func(x, y float64) (float64, float64), face text.Face) error {
	p := tr.Placement
	dc.SetHexColor(tr.Tray.Color)
	rect(p.X, p.Y, p.Width, p.Depth)
	if err := dc.Fill(); err != nil {
		return err
	}

	for _, pk := range tr.Layout.Pockets {
		if len(pk.Outline) < 3 {
			continue
		}
		for i, v := range pk.Outline {
			x, y := toPx(p.X+v.X, p.Y+v.Y)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetHexColor("#FFFFFF")
		if err := dc.FillPreserve(); err != nil {
			return err
		}
		dc.SetHexColor("#303030")
		dc.SetLineWidth(1)
		if err := dc.Stroke(); err != nil {
			return err
		}

		if face != nil {
			c := pk.Slot.Center()
			x, y := toPx(p.X+c.X, p.Y+c.Y)
			dc.SetFont(face)
			dc.SetHexColor("#000000")
			dc.DrawStringAnchored(engine.RefCode(tr.Letter, pk.Seq), x, y, 0.5, 0.5)
		}
	}

	dc.SetHexColor("#202020")
	dc.SetLineWidth(1.5)
	rect(p.X, p.Y, p.Width, p.Depth)
	return dc.Stroke()
}

// SavePNG renders res to a PNG file at path.
func SavePNG(path string, res *generate.BoxResult, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, res, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
