package whiteboard

import "math"

// Zoom bounds and the step used by the zoom in/out controls.
const (
	MinZoom  = 0.2
	MaxZoom  = 5.0
	ZoomStep = 0.1
)

// ClampZoom limits z to [MinZoom, MaxZoom]. NaN resets to 1.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ZoomAt changes the zoom factor while keeping the world point under anchor
// (a screen point) visually fixed. newZoomRaw is clamped first:
//
//	worldAnchor = (anchor - pan) / oldZoom
//	newPan      = anchor - worldAnchor * newZoom
func ZoomAt(anchor Point, oldZoom, newZoomRaw float64, pan PanOffset) (float64, PanOffset) {
	newZoom := ClampZoom(newZoomRaw)
	worldAnchor := ScreenToWorld(anchor, pan, oldZoom)
	return newZoom, panFromPoint(anchor.Sub(worldAnchor.Mul(newZoom)))
}

// ViewportState is the zoom/pan state of a canvas plus the pixel size of
// the viewport it is shown in. It is a value type; change it with Reduce.
type ViewportState struct {
	Zoom   float64
	Pan    PanOffset
	Width  int
	Height int
}

// NewViewportState returns a viewport of the given size at zoom 1 with no pan.
func NewViewportState(width, height int) ViewportState {
	return ViewportState{Zoom: 1, Width: width, Height: height}
}

// Center returns the screen-space centre of the viewport.
func (v ViewportState) Center() Point {
	return Pt(float64(v.Width)/2, float64(v.Height)/2)
}

// ScreenToWorld maps a client point through this viewport.
func (v ViewportState) ScreenToWorld(client Point) Point {
	return ScreenToWorld(client, v.Pan, v.Zoom)
}

// WorldToScreen maps a world point through this viewport.
func (v ViewportState) WorldToScreen(world Point) Point {
	return WorldToScreen(world, v.Pan, v.Zoom)
}

// ViewportAction is a state transition for a ViewportState.
type ViewportAction interface {
	reduce(ViewportState) ViewportState
}

// Reduce applies a to v and returns the resulting state. v is not modified.
// The returned zoom is always within [MinZoom, MaxZoom].
func (v ViewportState) Reduce(a ViewportAction) ViewportState {
	if a == nil {
		return v
	}
	next := a.reduce(v)
	next.Zoom = ClampZoom(next.Zoom)
	return next
}

// ZoomInAction zooms in by ZoomStep around the viewport centre.
type ZoomInAction struct{}

func (ZoomInAction) reduce(v ViewportState) ViewportState {
	return v.zoomAtCenter(v.Zoom + ZoomStep)
}

// ZoomOutAction zooms out by ZoomStep around the viewport centre.
type ZoomOutAction struct{}

func (ZoomOutAction) reduce(v ViewportState) ViewportState {
	return v.zoomAtCenter(v.Zoom - ZoomStep)
}

// SetZoomAction sets an absolute zoom factor around the viewport centre.
type SetZoomAction struct {
	Zoom float64
}

func (a SetZoomAction) reduce(v ViewportState) ViewportState {
	return v.zoomAtCenter(a.Zoom)
}

// ZoomAtAction sets an absolute zoom factor around an arbitrary screen anchor.
type ZoomAtAction struct {
	Anchor Point
	Zoom   float64
}

func (a ZoomAtAction) reduce(v ViewportState) ViewportState {
	v.Zoom, v.Pan = ZoomAt(a.Anchor, v.Zoom, a.Zoom, v.Pan)
	return v
}

// ResetZoomAction returns to zoom 1 with the content re-centred.
type ResetZoomAction struct{}

func (ResetZoomAction) reduce(v ViewportState) ViewportState {
	const z = 1.0
	w, h := float64(v.Width), float64(v.Height)
	v.Zoom = z
	v.Pan = PanOffset{X: (w - w*z) / 2, Y: (h - h*z) / 2}
	return v
}

// SetPanAction replaces the pan offset.
type SetPanAction struct {
	Pan PanOffset
}

func (a SetPanAction) reduce(v ViewportState) ViewportState {
	v.Pan = a.Pan
	return v
}

// PinchAction applies a pinch gesture relative to the state captured when
// the gesture began. The anchor is fixed at gesture start.
type PinchAction struct {
	Anchor    Point
	StartZoom float64
	StartPan  PanOffset
	Scale     float64
}

func (a PinchAction) reduce(v ViewportState) ViewportState {
	v.Zoom, v.Pan = ZoomAt(a.Anchor, a.StartZoom, a.StartZoom*a.Scale, a.StartPan)
	return v
}

// ResizeAction changes the viewport pixel size. Zoom and pan are kept.
type ResizeAction struct {
	Width, Height int
}

func (a ResizeAction) reduce(v ViewportState) ViewportState {
	v.Width, v.Height = a.Width, a.Height
	return v
}

func (v ViewportState) zoomAtCenter(z float64) ViewportState {
	v.Zoom, v.Pan = ZoomAt(v.Center(), v.Zoom, z, v.Pan)
	return v
}
