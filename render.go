package whiteboard

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// LineHeightFactor is the distance between text baselines as a multiple of
// the font size.
const LineHeightFactor = 1.2

// Pen is the stroke and fill state for a single paint operation.
type Pen struct {
	Color gg.RGBA
	Width float64
}

func (p Pen) apply(dc *gg.Context) {
	dc.SetColor(p.Color.Color())
	dc.SetLineWidth(p.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
}

// PaintSegment strokes a single round-capped line segment onto s.
func PaintSegment(s *Surface, from, to Point, pen Pen) error {
	return s.Draw(func(dc *gg.Context) error {
		pen.apply(dc)
		dc.MoveTo(from.X, from.Y)
		dc.LineTo(to.X, to.Y)
		return dc.Stroke()
	})
}

// EraseSegment removes the pixels of s covered by a round-capped segment of
// the given width. The segment is rasterized onto scratch and its coverage
// is applied to s as destination-out. scratch must be the size of s and
// transparent; only the segment's bounds are read back and cleared.
func EraseSegment(s, scratch *Surface, from, to Point, width float64) error {
	if !s.Ready() || !scratch.Ready() {
		return nil
	}
	r := segmentBounds(from, to, width).Intersect(s.Bounds())
	if r.Empty() {
		return nil
	}
	defer scratch.ClearRect(r)
	err := PaintSegment(scratch, from, to, Pen{Color: gg.White, Width: width})
	if err != nil {
		return err
	}
	mask := gg.NewMask(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.Set(x-r.Min.X, y-r.Min.Y, scratch.Alpha(x, y))
		}
	}
	s.Erase(mask, r.Min.X, r.Min.Y)
	return nil
}

func segmentBounds(from, to Point, width float64) image.Rectangle {
	pad := width/2 + 2
	return image.Rect(
		int(math.Floor(math.Min(from.X, to.X)-pad)),
		int(math.Floor(math.Min(from.Y, to.Y)-pad)),
		int(math.Ceil(math.Max(from.X, to.X)+pad)),
		int(math.Ceil(math.Max(from.Y, to.Y)+pad)),
	)
}

// PaintShape strokes the outline of shape spanning start to end onto s.
func PaintShape(s *Surface, shape ShapeType, start, end Point, pen Pen) error {
	return s.Draw(func(dc *gg.Context) error {
		pen.apply(dc)
		switch shape {
		case ShapeRectangle:
			r := RectBetween(start, end)
			dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		case ShapeCircle:
			e := EllipseBetween(start, end)
			if e.RX == 0 && e.RY == 0 {
				return nil
			}
			dc.DrawEllipse(e.Center.X, e.Center.Y, e.RX, e.RY)
		case ShapeLine:
			dc.MoveTo(start.X, start.Y)
			dc.LineTo(end.X, end.Y)
		case ShapeTriangle:
			t := TriangleBetween(start, end)
			dc.MoveTo(t[0].X, t[0].Y)
			dc.LineTo(t[1].X, t[1].Y)
			dc.LineTo(t[2].X, t[2].Y)
			dc.ClosePath()
		default:
			return nil
		}
		return dc.Stroke()
	})
}

// PaintArrow strokes a line from start to end and fills an arrowhead at end.
// radius scales the arrowhead; pixelRatio bounds its minimum length.
func PaintArrow(s *Surface, start, end Point, pen Pen, radius, pixelRatio float64) error {
	return s.Draw(func(dc *gg.Context) error {
		pen.apply(dc)
		dc.MoveTo(start.X, start.Y)
		dc.LineTo(end.X, end.Y)
		if err := dc.Stroke(); err != nil {
			return err
		}
		head := ArrowheadBetween(start, end, radius, pixelRatio)
		dc.MoveTo(head[0].X, head[0].Y)
		dc.LineTo(head[1].X, head[1].Y)
		dc.LineTo(head[2].X, head[2].Y)
		dc.ClosePath()
		return dc.Fill()
	})
}

// TextLineOrigins returns the top-left corner of each line of a text block
// placed at the given point: line i starts LineHeightFactor*fontSize*i below
// the first.
func TextLineOrigins(at Point, lines int, fontSize float64) []Point {
	origins := make([]Point, lines)
	for i := range origins {
		origins[i] = Pt(at.X, at.Y+float64(i)*fontSize*LineHeightFactor)
	}
	return origins
}

// PaintText draws lines left-aligned with their tops at the origins given by
// TextLineOrigins.
func PaintText(s *Surface, src *text.FontSource, lines []string, at Point, col gg.RGBA, fontSize float64) error {
	if src == nil || fontSize <= 0 {
		return nil
	}
	face := src.Face(fontSize)
	ascent := face.Metrics().Ascent
	return s.Draw(func(dc *gg.Context) error {
		dc.SetFont(face)
		dc.SetColor(col.Color())
		for i, o := range TextLineOrigins(at, len(lines), fontSize) {
			dc.DrawString(lines[i], o.X, o.Y+ascent)
		}
		return nil
	})
}
