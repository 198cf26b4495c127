package whiteboard

import (
	"math"

	"github.com/gogpu/gg"
)

// Background pattern metrics, in world units.
const (
	PatternSize      = 20.0
	PatternLineWidth = 0.5
	PatternDotRadius = 1.0
)

// paintPattern draws p over the world rectangle [x0,x1)x[y0,y1) mapped to
// the screen by pan and zoom. Grid lines sit on multiples of PatternSize;
// the lines pattern omits y=0; dots sit at the cell centres. Stroke width
// and dot radius are in screen pixels.
func paintPattern(dc *gg.Context, p Pattern, col gg.RGBA, x0, y0, x1, y1 float64, pan PanOffset, zoom float64) error {
	if p == PatternNone {
		return nil
	}
	dc.SetColor(col.Color())
	dc.SetLineWidth(PatternLineWidth)
	dc.SetLineCap(gg.LineCapButt)

	sx := func(x float64) float64 { return x*zoom + pan.X }
	sy := func(y float64) float64 { return y*zoom + pan.Y }
	first := func(v float64) float64 { return math.Ceil(v/PatternSize) * PatternSize }

	switch p {
	case PatternGrid:
		for x := first(x0); x < x1; x += PatternSize {
			dc.DrawLine(sx(x), sy(y0), sx(x), sy(y1))
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
		for y := first(y0); y < y1; y += PatternSize {
			dc.DrawLine(sx(x0), sy(y), sx(x1), sy(y))
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
	case PatternLines:
		for y := first(y0); y < y1; y += PatternSize {
			if y == 0 {
				continue
			}
			dc.DrawLine(sx(x0), sy(y), sx(x1), sy(y))
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
	case PatternDotted:
		half := PatternSize / 2
		for x := first(x0-half) + half; x < x1; x += PatternSize {
			for y := first(y0-half) + half; y < y1; y += PatternSize {
				dc.DrawCircle(sx(x), sy(y), PatternDotRadius)
				if err := dc.Fill(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
