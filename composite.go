package whiteboard

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Composite flattens the background fill, the background pattern and the
// committed surface into a single opaque image the size of committed, at
// 1:1 world scale. The result depends only on its inputs, so repeated calls
// with unchanged state encode to identical bytes.
func Composite(committed *Surface, bg BackgroundSpec) (*image.RGBA, error) {
	if !committed.Ready() {
		return nil, fmt.Errorf("%w: committed surface is not initialized", ErrInvalidDimensions)
	}
	w, h := committed.Width(), committed.Height()
	out, err := paintBackground(w, h, bg, 0, 0, float64(w), float64(h), PanOffset{}, 1)
	if err != nil {
		return nil, err
	}
	draw.Draw(out, out.Bounds(), committed.RGBA(), image.Point{}, draw.Over)
	return out, nil
}

// RenderView draws what a viewport shows: background and pattern, then the
// committed and preview surfaces, all through the viewport's zoom and pan.
// Surfaces are resampled bilinearly; committed pixels are never re-rasterized.
func RenderView(committed, preview *Surface, bg BackgroundSpec, v ViewportState) (*image.RGBA, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, v.Width, v.Height)
	}
	tl := v.ScreenToWorld(Pt(0, 0))
	br := v.ScreenToWorld(Pt(float64(v.Width), float64(v.Height)))
	out, err := paintBackground(v.Width, v.Height, bg, tl.X, tl.Y, br.X, br.Y, v.Pan, v.Zoom)
	if err != nil {
		return nil, err
	}
	m := ViewMatrix(v.Pan, v.Zoom)
	aff := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	for _, s := range []*Surface{committed, preview} {
		if !s.Ready() {
			continue
		}
		draw.ApproxBiLinear.Transform(out, aff, s.RGBA(), s.Bounds(), draw.Over, nil)
	}
	return out, nil
}

// paintBackground fills a w x h image with the background color and draws
// the pattern over the world rectangle [x0,x1)x[y0,y1).
func paintBackground(w, h int, bg BackgroundSpec, x0, y0, x1, y1 float64, pan PanOffset, zoom float64) (*image.RGBA, error) {
	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(bg.fill())
	if err := paintPattern(dc, bg.Pattern, bg.stroke(), x0, y0, x1, y1, pan, zoom); err != nil {
		return nil, fmt.Errorf("whiteboard: paint %s pattern: %w", bg.Pattern, err)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(out.Pix, dc.ResizeTarget().Data())
	return out, nil
}
