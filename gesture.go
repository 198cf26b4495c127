package whiteboard

// InteractionState is the gesture a Session is currently in. Exactly one is
// active at a time: Idle, Drawing, Panning, Pinching or TextEditing.
type InteractionState interface {
	interactionState() string
}

// Idle is the resting state.
type Idle struct{}

// Drawing is an active pen, eraser, shape or arrow drag. Pen parameters are
// captured when the drag starts.
type Drawing struct {
	Tool  Tool
	Shape ShapeType
	Start Point
	Last  Point
	Pen   Pen
	// Radius scales the arrowhead of ToolArrow.
	Radius float64
}

// Panning is an active hand-tool drag.
type Panning struct {
	StartClient Point
	StartPan    PanOffset
}

// Pinching is an active two-finger zoom. Anchor is the screen midpoint of
// the two touches when the pinch began; it does not move with the fingers.
type Pinching struct {
	StartDistance float64
	StartZoom     float64
	StartPan      PanOffset
	Anchor        Point
}

// TextEditing is an open text editor at a world position.
type TextEditing struct {
	Position Point
	Buffer   string
}

func (Idle) interactionState() string        { return "idle" }
func (Drawing) interactionState() string     { return "drawing" }
func (Panning) interactionState() string     { return "panning" }
func (Pinching) interactionState() string    { return "pinching" }
func (TextEditing) interactionState() string { return "text-editing" }

// StateName returns a short lowercase name for st.
func StateName(st InteractionState) string {
	if st == nil {
		return Idle{}.interactionState()
	}
	return st.interactionState()
}

// tapTolerance is how far, in world units on each axis, a touch may travel
// between start and end and still count as a tap.
const tapTolerance = 10

// pinchScale returns the zoom multiplier for a pinch that started with the
// fingers d0 apart and now has them d apart. A degenerate start distance
// yields 1.
func pinchScale(d0, d float64) float64 {
	if d0 <= 0 {
		return 1
	}
	return d / d0
}

func touchMidpoint(touches []Point) Point {
	return touches[0].Midpoint(touches[1])
}

func touchDistance(touches []Point) float64 {
	return touches[0].Distance(touches[1])
}
