// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package fynecanvas

import (
	"context"
	"errors"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/gogpu/whiteboard"
)

// ErrNilSession is returned when New is called without a session.
var ErrNilSession = errors.New("fynecanvas: nil session")

// Canvas is a Fyne widget showing a whiteboard.Session and feeding it
// mouse, scroll and keyboard input.
type Canvas struct {
	widget.BaseWidget

	session *whiteboard.Session
	raster  *canvas.Raster

	mu       sync.Mutex
	dragging bool
	last     whiteboard.Point
	shift    bool
	width    int
	height   int
}

var (
	_ fyne.Widget       = (*Canvas)(nil)
	_ fyne.Draggable    = (*Canvas)(nil)
	_ fyne.Tappable     = (*Canvas)(nil)
	_ fyne.Scrollable   = (*Canvas)(nil)
	_ fyne.Focusable    = (*Canvas)(nil)
	_ desktop.Hoverable = (*Canvas)(nil)
	_ desktop.Keyable   = (*Canvas)(nil)
	_ desktop.Mouseable = (*Canvas)(nil)
)

// New returns a widget bound to s. The session is resized to the widget
// size on layout.
func New(s *whiteboard.Session) (*Canvas, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	c := &Canvas{session: s}
	c.raster = canvas.NewRaster(c.draw)
	c.ExtendBaseWidget(c)
	return c, nil
}

// Session returns the bound session.
func (c *Canvas) Session() *whiteboard.Session {
	return c.session
}

// draw renders the session view. A failed render shows an empty frame.
func (c *Canvas) draw(w, h int) image.Image {
	img, err := c.session.RenderView()
	if err != nil {
		whiteboard.Logger().Debug("fynecanvas: render view", "err", err)
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return img
}

// Load loads a page into the session and refreshes once it is painted.
func (c *Canvas) Load(ctx context.Context, dataURI string) {
	c.Await(c.session.LoadPage(ctx, dataURI))
}

// Await refreshes the widget when done is closed.
func (c *Canvas) Await(done <-chan struct{}) {
	c.Refresh()
	go func() {
		<-done
		c.Refresh()
	}()
}

func toPoint(p fyne.Position) whiteboard.Point {
	return whiteboard.Pt(float64(p.X), float64(p.Y))
}

// resize keeps the session the size of the widget.
func (c *Canvas) resize(size fyne.Size) {
	w, h := int(size.Width), int(size.Height)
	c.mu.Lock()
	changed := w != c.width || h != c.height
	c.width, c.height = w, h
	c.mu.Unlock()
	if !changed || w <= 0 || h <= 0 {
		return
	}
	if err := c.session.Resize(w, h); err != nil {
		whiteboard.Logger().Warn("fynecanvas: resize", "err", err)
	}
}

// Dragged implements fyne.Draggable. The first event of a drag presses at
// the drag origin.
func (c *Canvas) Dragged(ev *fyne.DragEvent) {
	p := toPoint(ev.Position)
	c.mu.Lock()
	start := !c.dragging
	c.dragging = true
	c.last = p
	c.mu.Unlock()
	if start {
		c.session.PointerDown(p.Sub(whiteboard.Pt(float64(ev.Dragged.DX), float64(ev.Dragged.DY))))
	}
	c.session.PointerMove(p)
	c.Refresh()
}

// DragEnd implements fyne.Draggable.
func (c *Canvas) DragEnd() {
	c.mu.Lock()
	p := c.last
	c.dragging = false
	c.mu.Unlock()
	c.session.PointerUp(p)
	c.Refresh()
}

// MouseDown implements desktop.Mouseable.
func (c *Canvas) MouseDown(*desktop.MouseEvent) {}

// MouseUp implements desktop.Mouseable. A release without a drag still
// ends any gesture left open.
func (c *Canvas) MouseUp(*desktop.MouseEvent) {
	c.mu.Lock()
	dragging := c.dragging
	c.mu.Unlock()
	if !dragging {
		c.session.GlobalPointerUp()
		c.Refresh()
	}
}

// MouseIn implements desktop.Hoverable.
func (c *Canvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (c *Canvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable. Leaving the widget finishes the
// current drag.
func (c *Canvas) MouseOut() {
	c.mu.Lock()
	p := c.last
	c.mu.Unlock()
	c.session.PointerLeave(p)
	c.Refresh()
}

// Tapped implements fyne.Tappable. It opens or commits a text editor when
// the text tool is active.
func (c *Canvas) Tapped(ev *fyne.PointEvent) {
	size := c.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	c.session.Tap(toPoint(ev.Position))
	if c.session.Tool() == whiteboard.ToolText {
		if app := fyne.CurrentApp(); app != nil {
			if cv := app.Driver().CanvasForObject(c); cv != nil {
				cv.Focus(c)
			}
		}
	}
	c.Refresh()
}

// Scrolled implements fyne.Scrollable: the wheel zooms about the pointer.
func (c *Canvas) Scrolled(ev *fyne.ScrollEvent) {
	z := c.session.Viewport().Zoom
	switch {
	case ev.Scrolled.DY > 0:
		z += whiteboard.ZoomStep
	case ev.Scrolled.DY < 0:
		z -= whiteboard.ZoomStep
	default:
		return
	}
	err := c.session.Dispatch(whiteboard.ZoomAtCommand{Anchor: toPoint(ev.Position), Zoom: z})
	if err != nil {
		whiteboard.Logger().Debug("fynecanvas: wheel zoom", "err", err)
		return
	}
	c.Refresh()
}

// FocusGained implements fyne.Focusable.
func (c *Canvas) FocusGained() {}

// FocusLost implements fyne.Focusable. An open text editor is committed.
func (c *Canvas) FocusLost() {
	c.session.Blur()
	c.Refresh()
}

// TypedRune implements fyne.Focusable.
func (c *Canvas) TypedRune(r rune) {
	c.session.InsertText(string(r))
	c.Refresh()
}

// TypedKey implements fyne.Focusable.
func (c *Canvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		c.mu.Lock()
		shift := c.shift
		c.mu.Unlock()
		c.session.KeyEnter(shift)
	case fyne.KeyEscape:
		c.session.KeyEscape()
	case fyne.KeyBackspace:
		c.session.Backspace()
	default:
		return
	}
	c.Refresh()
}

// KeyDown implements desktop.Keyable to track the shift modifier.
func (c *Canvas) KeyDown(ev *fyne.KeyEvent) {
	c.setShift(ev.Name, true)
}

// KeyUp implements desktop.Keyable.
func (c *Canvas) KeyUp(ev *fyne.KeyEvent) {
	c.setShift(ev.Name, false)
}

func (c *Canvas) setShift(name fyne.KeyName, down bool) {
	if name != desktop.KeyShiftLeft && name != desktop.KeyShiftRight {
		return
	}
	c.mu.Lock()
	c.shift = down
	c.mu.Unlock()
}

// MinSize returns a small fixed minimum; the canvas grows with its container.
func (c *Canvas) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

// CreateRenderer implements fyne.Widget.
func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return &canvasRenderer{canvas: c}
}

type canvasRenderer struct {
	canvas *Canvas
}

func (r *canvasRenderer) Layout(size fyne.Size) {
	r.canvas.resize(size)
	r.canvas.raster.Resize(size)
}

func (r *canvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *canvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *canvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *canvasRenderer) Destroy() {}
