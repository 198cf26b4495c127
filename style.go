package whiteboard

import (
	"strings"

	"github.com/gogpu/gg"
)

// Default colors.
const (
	DefaultBackgroundColor = "#FFFFFF"
	DefaultPenColor        = "#000000"
	DefaultPatternColor    = "#E4E4E7"
	DefaultBrushSize       = 5
)

// Style holds the ambient parameters applied to the next paint operation.
type Style struct {
	// Color is a hex color ("#RGB", "#RRGGBB" or "#RRGGBBAA").
	Color string
	// BrushSize is the logical brush size in screen pixels.
	BrushSize float64
}

// DefaultStyle returns a black pen of DefaultBrushSize.
func DefaultStyle() Style {
	return Style{Color: DefaultPenColor, BrushSize: DefaultBrushSize}
}

// FontSize returns the logical text size derived from the brush size.
func (s Style) FontSize() float64 {
	return s.BrushSize * 3
}

// LineWidth returns the stroke width for tool t at the given zoom. Dividing by
// zoom keeps the visual thickness constant across zoom levels.
func (s Style) LineWidth(t Tool, zoom float64) float64 {
	if t == ToolEraser {
		return s.BrushSize * 2 / zoom
	}
	return s.BrushSize / zoom
}

func (s Style) rgba() gg.RGBA {
	return parseColor(s.Color)
}

// BackgroundSpec describes the page background. It affects only compositing
// and never the committed surface.
type BackgroundSpec struct {
	Pattern Pattern
	// Color is the fill color, DefaultBackgroundColor when empty.
	Color string
	// PatternColor is the grid/line/dot color, DefaultPatternColor when empty.
	PatternColor string
}

// DefaultBackground returns a plain white background.
func DefaultBackground() BackgroundSpec {
	return BackgroundSpec{Pattern: PatternNone, Color: DefaultBackgroundColor, PatternColor: DefaultPatternColor}
}

func (b BackgroundSpec) fill() gg.RGBA {
	if b.Color == "" {
		return parseColor(DefaultBackgroundColor)
	}
	return parseColor(b.Color)
}

func (b BackgroundSpec) stroke() gg.RGBA {
	if b.PatternColor == "" {
		return parseColor(DefaultPatternColor)
	}
	return parseColor(b.PatternColor)
}

// IsWhite reports whether the background color is white.
func (b BackgroundSpec) IsWhite() bool {
	c := b.fill()
	return c.R == 1 && c.G == 1 && c.B == 1
}

// PenColorFor returns the default pen color that contrasts with bg.
func PenColorFor(bg BackgroundSpec) string {
	if bg.IsWhite() {
		return DefaultPenColor
	}
	return "#FFFFFF"
}

func parseColor(hex string) gg.RGBA {
	return gg.Hex(strings.TrimSpace(hex))
}
