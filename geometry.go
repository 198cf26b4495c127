package whiteboard

import "math"

// Rect is an axis-aligned box. W and H may be negative when the box was
// dragged up or left; the box still spans (X, Y) to (X+W, Y+H).
type Rect struct {
	X, Y, W, H float64
}

// Min returns the top-left corner regardless of the sign of W and H.
func (r Rect) Min() Point {
	return Pt(math.Min(r.X, r.X+r.W), math.Min(r.Y, r.Y+r.H))
}

// Max returns the bottom-right corner regardless of the sign of W and H.
func (r Rect) Max() Point {
	return Pt(math.Max(r.X, r.X+r.W), math.Max(r.Y, r.Y+r.H))
}

// Ellipse is an axis-aligned ellipse.
type Ellipse struct {
	Center Point
	RX, RY float64
}

// RectBetween returns the box spanning start to end.
func RectBetween(start, end Point) Rect {
	return Rect{X: start.X, Y: start.Y, W: end.X - start.X, H: end.Y - start.Y}
}

// EllipseBetween returns the ellipse inscribed in the box spanning start to end.
func EllipseBetween(start, end Point) Ellipse {
	w, h := end.X-start.X, end.Y-start.Y
	return Ellipse{
		Center: Pt(start.X+w/2, start.Y+h/2),
		RX:     math.Abs(w / 2),
		RY:     math.Abs(h / 2),
	}
}

// TriangleBetween returns the isosceles triangle inscribed in the box
// spanning start to end: apex centred on the start edge, base on the end edge.
func TriangleBetween(start, end Point) [3]Point {
	w := end.X - start.X
	return [3]Point{
		Pt(start.X+w/2, start.Y),
		Pt(start.X, end.Y),
		Pt(end.X, end.Y),
	}
}

// Arrowhead geometry.
const (
	arrowHalfAngle = math.Pi / 8
	arrowMinLength = 5.0
)

// ArrowheadLength returns the arm length for an arrowhead of the given
// radius on a display with the given device pixel ratio.
func ArrowheadLength(radius, pixelRatio float64) float64 {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return math.Max(arrowMinLength/pixelRatio, radius*1.5)
}

// ArrowheadBetween returns the filled triangle of an arrowhead at to, pointing
// along from -> to. The first point is the tip.
func ArrowheadBetween(from, to Point, radius, pixelRatio float64) [3]Point {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	l := ArrowheadLength(radius, pixelRatio)
	return [3]Point{
		to,
		Pt(to.X-l*math.Cos(angle-arrowHalfAngle), to.Y-l*math.Sin(angle-arrowHalfAngle)),
		Pt(to.X-l*math.Cos(angle+arrowHalfAngle), to.Y-l*math.Sin(angle+arrowHalfAngle)),
	}
}
