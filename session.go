package whiteboard

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gg/text"
)

// Session is the editing session of one visible canvas. It owns the
// committed and preview surfaces, the viewport and the gesture state, and
// turns pointer, touch and keyboard input into painting.
//
// Session is safe for concurrent use. Handlers registered with
// SessionOption are invoked after the session's lock is released, in the
// order their events occurred, so they may call back into the Session.
type Session struct {
	mu   sync.Mutex
	opts sessionOptions

	committed *Surface
	preview   *Surface
	scratch   *Surface

	tool       Tool
	shape      ShapeType
	style      Style
	background BackgroundSpec
	locked     bool

	viewport ViewportState
	state    InteractionState

	// touchOrigin is the world point where a single text-tool touch began.
	touchOrigin *Point

	// generation increments on every LoadPage; decodes finishing under an
	// older generation are dropped.
	generation uint64
	closed     bool

	pending []func()
}

// NewSession creates a session with transparent surfaces of the given size,
// zoom 1 and no pan.
func NewSession(width, height int, opts ...SessionOption) (*Session, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		opts:       o,
		committed:  NewSurface(width, height),
		preview:    NewSurface(width, height),
		scratch:    NewSurface(width, height),
		tool:       ToolPen,
		shape:      ShapeRectangle,
		style:      o.style,
		background: o.background,
		viewport:   NewViewportState(width, height),
		state:      Idle{},
	}
	return s, nil
}

func (s *Session) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return Logger()
}

// do runs fn under the session lock, then fires the events fn queued.
func (s *Session) do(fn func()) {
	s.mu.Lock()
	if !s.closed {
		fn()
	}
	events := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, ev := range events {
		ev()
	}
}

// doErr is do for operations that can fail.
func (s *Session) doErr(fn func() error) error {
	err := ErrClosed
	s.do(func() { err = fn() })
	return err
}

// queue schedules fn to run once the lock is released.
func (s *Session) queue(fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *Session) setState(next InteractionState) {
	prev := s.state
	s.state = next
	if StateName(prev) != StateName(next) {
		s.logger().Debug("whiteboard: gesture", "from", StateName(prev), "to", StateName(next))
	}
}

// setViewport applies a viewport transition and queues change events.
func (s *Session) setViewport(a ViewportAction) {
	prev := s.viewport
	next := prev.Reduce(a)
	s.viewport = next
	if next.Zoom != prev.Zoom && s.opts.onZoom != nil {
		fn, z := s.opts.onZoom, next.Zoom
		s.queue(func() { fn(z) })
	}
	if next.Pan != prev.Pan && s.opts.onPan != nil {
		fn, p := s.opts.onPan, next.Pan
		s.queue(func() { fn(p) })
	}
}

// emitCommit serializes the committed surface and queues the commit event.
func (s *Session) emitCommit() {
	uri, err := EncodeDataURI(s.committed.NRGBA())
	if err != nil {
		s.logger().Warn("whiteboard: serialize committed surface", "err", err)
		return
	}
	s.logger().Info("whiteboard: commit", "bytes", len(uri))
	if fn := s.opts.onCommit; fn != nil {
		s.queue(func() { fn(uri) })
	}
}

func (s *Session) world(client Point) Point {
	return s.viewport.ScreenToWorld(client)
}

func (s *Session) fontSource() *text.FontSource {
	if s.opts.font != nil {
		return s.opts.font
	}
	src, err := defaultFontSource()
	if err != nil {
		s.logger().Warn("whiteboard: load default font", "err", err)
		return nil
	}
	return src
}

// --- parameters ---

// SetTool selects the active tool. An open text editor is committed when
// switching away from ToolText, and an active drag is finished at its last
// point.
func (s *Session) SetTool(t Tool) {
	s.do(func() {
		if t == s.tool {
			return
		}
		s.endGesture()
		s.tool = t
	})
}

// Tool returns the active tool.
func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetShapeType selects the geometry drawn by ToolShape.
func (s *Session) SetShapeType(t ShapeType) {
	s.do(func() { s.shape = t })
}

// ShapeType returns the geometry drawn by ToolShape.
func (s *Session) ShapeType() ShapeType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shape
}

// SetStyle replaces color and brush size for subsequent paint operations.
func (s *Session) SetStyle(st Style) {
	s.do(func() { s.style = st })
}

// SetColor sets the paint color.
func (s *Session) SetColor(hex string) {
	s.do(func() { s.style.Color = hex })
}

// SetBrushSize sets the logical brush size. Non-positive sizes are ignored.
func (s *Session) SetBrushSize(size float64) {
	s.do(func() {
		if size > 0 {
			s.style.BrushSize = size
		}
	})
}

// Style returns the current paint style.
func (s *Session) Style() Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// SetBackground sets the background used by export and the on-screen view.
func (s *Session) SetBackground(bg BackgroundSpec) {
	s.do(func() { s.background = bg })
}

// Background returns the current background.
func (s *Session) Background() BackgroundSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

// SetLocked locks or unlocks the canvas. A locked canvas refuses content
// mutation and navigation. Locking ends the active gesture: a drag is
// finished at its last point and an open text editor is committed.
func (s *Session) SetLocked(locked bool) {
	s.do(func() {
		if locked == s.locked {
			return
		}
		if locked {
			s.endGesture()
		}
		s.locked = locked
		s.logger().Debug("whiteboard: lock", "locked", locked)
	})
}

// Locked reports whether the canvas is locked.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Resize changes the viewport and surface size. Committed content keeps its
// world position; content outside the new size is dropped.
func (s *Session) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	return s.doErr(func() error {
		s.committed.Resize(width, height)
		s.preview.Resize(width, height)
		s.scratch.Resize(width, height)
		s.setViewport(ResizeAction{Width: width, Height: height})
		return nil
	})
}

// Viewport returns the current viewport state.
func (s *Session) Viewport() ViewportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// State returns the current gesture state.
func (s *Session) State() InteractionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// endGesture finishes whatever gesture is active as if its input ended.
func (s *Session) endGesture() {
	switch st := s.state.(type) {
	case Drawing:
		s.finishDrawing(st, st.Last)
	case TextEditing:
		s.commitText(st)
	case Panning, Pinching:
		s.setState(Idle{})
	}
	s.touchOrigin = nil
}

// --- pointer input ---

// PointerDown handles a primary button press at a client point.
func (s *Session) PointerDown(client Point) {
	s.do(func() { s.press(client) })
}

// PointerMove handles pointer motion.
func (s *Session) PointerMove(client Point) {
	s.do(func() { s.move(client) })
}

// PointerUp handles a primary button release.
func (s *Session) PointerUp(client Point) {
	s.do(func() { s.release(client) })
}

// PointerLeave handles the pointer leaving the canvas. A drag is finished at
// its last point.
func (s *Session) PointerLeave(Point) {
	s.do(func() {
		switch st := s.state.(type) {
		case Drawing:
			s.finishDrawing(st, st.Last)
		case Panning:
			s.setState(Idle{})
		}
	})
}

// GlobalPointerUp handles a button release observed outside the canvas. It
// prevents a drag from staying active after the pointer left and released.
func (s *Session) GlobalPointerUp() {
	s.do(func() {
		switch st := s.state.(type) {
		case Drawing:
			s.finishDrawing(st, st.Last)
		case Panning:
			s.setState(Idle{})
		}
	})
}

// Tap handles a click. Only the text tool reacts: it opens an editor at the
// tapped point, or commits the open one.
func (s *Session) Tap(client Point) {
	s.do(func() { s.tap(s.world(client)) })
}

func (s *Session) press(client Point) {
	if s.tool == ToolHand {
		if s.locked {
			s.logger().Debug("whiteboard: pan refused", "err", ErrLocked)
			return
		}
		if _, idle := s.state.(Idle); !idle {
			return
		}
		s.setState(Panning{StartClient: client, StartPan: s.viewport.Pan})
		return
	}
	if !s.tool.draws() {
		return
	}
	if s.locked {
		s.logger().Debug("whiteboard: draw refused", "tool", s.tool, "err", ErrLocked)
		return
	}
	if st, ok := s.state.(TextEditing); ok {
		s.commitText(st)
	}
	if _, idle := s.state.(Idle); !idle {
		return
	}
	p := s.world(client)
	z := s.viewport.Zoom
	s.setState(Drawing{
		Tool:   s.tool,
		Shape:  s.shape,
		Start:  p,
		Last:   p,
		Pen:    Pen{Color: s.style.rgba(), Width: s.style.LineWidth(s.tool, z)},
		Radius: s.style.FontSize() / z,
	})
}

func (s *Session) move(client Point) {
	switch st := s.state.(type) {
	case Panning:
		if s.locked {
			return
		}
		delta := client.Sub(st.StartClient)
		s.setViewport(SetPanAction{Pan: panFromPoint(st.StartPan.Point().Add(delta))})
	case Drawing:
		if s.locked {
			return
		}
		p := s.world(client)
		s.paintDrag(st, p)
		st.Last = p
		s.state = st
	}
}

func (s *Session) release(client Point) {
	switch st := s.state.(type) {
	case Drawing:
		s.finishDrawing(st, s.world(client))
	case Panning:
		s.setState(Idle{})
	}
}

// paintDrag paints one drag step from st.Last to p.
func (s *Session) paintDrag(st Drawing, p Point) {
	var err error
	switch st.Tool {
	case ToolPen:
		err = PaintSegment(s.committed, st.Last, p, st.Pen)
	case ToolEraser:
		err = EraseSegment(s.committed, s.scratch, st.Last, p, st.Pen.Width)
	case ToolShape, ToolArrow:
		s.preview.Clear()
		err = s.paintFinal(s.preview, st, p)
	}
	if err != nil {
		s.logger().Warn("whiteboard: paint", "tool", st.Tool, "err", err)
	}
}

// paintFinal draws the shape or arrow of st ending at end onto dst.
func (s *Session) paintFinal(dst *Surface, st Drawing, end Point) error {
	if st.Tool == ToolArrow {
		return PaintArrow(dst, st.Start, end, st.Pen, st.Radius, s.opts.pixelRatio)
	}
	return PaintShape(dst, st.Shape, st.Start, end, st.Pen)
}

// finishDrawing ends a drag at end: preview is cleared, shapes and arrows
// are committed, and the committed surface is emitted.
func (s *Session) finishDrawing(st Drawing, end Point) {
	s.preview.Clear()
	switch st.Tool {
	case ToolPen, ToolEraser:
		if end != st.Last && !s.locked {
			s.paintDrag(st, end)
		}
	case ToolShape, ToolArrow:
		if err := s.paintFinal(s.committed, st, end); err != nil {
			s.logger().Warn("whiteboard: commit shape", "tool", st.Tool, "err", err)
		}
	}
	s.setState(Idle{})
	s.emitCommit()
}

// --- touch input ---

// TouchStart handles the touches currently on the canvas after a touch
// began, in client coordinates.
func (s *Session) TouchStart(touches []Point) {
	if len(touches) == 0 {
		return
	}
	s.do(func() {
		switch s.tool {
		case ToolHand:
			if s.locked {
				s.logger().Debug("whiteboard: touch navigation refused", "err", ErrLocked)
				return
			}
			if len(touches) >= 2 {
				s.setState(Pinching{
					StartDistance: touchDistance(touches),
					StartZoom:     s.viewport.Zoom,
					StartPan:      s.viewport.Pan,
					Anchor:        touchMidpoint(touches),
				})
				return
			}
			if _, idle := s.state.(Idle); idle {
				s.setState(Panning{StartClient: touches[0], StartPan: s.viewport.Pan})
			}
		case ToolText:
			if len(touches) == 1 {
				p := s.world(touches[0])
				s.touchOrigin = &p
			} else {
				s.touchOrigin = nil
			}
		default:
			if len(touches) == 1 {
				s.press(touches[0])
			}
		}
	})
}

// TouchMove handles the touches currently on the canvas after they moved.
func (s *Session) TouchMove(touches []Point) {
	if len(touches) == 0 {
		return
	}
	s.do(func() {
		switch st := s.state.(type) {
		case Pinching:
			if s.locked || len(touches) < 2 {
				return
			}
			s.setViewport(PinchAction{
				Anchor:    st.Anchor,
				StartZoom: st.StartZoom,
				StartPan:  st.StartPan,
				Scale:     pinchScale(st.StartDistance, touchDistance(touches)),
			})
		case Panning, Drawing:
			s.move(touches[0])
		}
	})
}

// TouchEnd handles a touch ending. remaining are the touches still on the
// canvas; changed is the point where the touch lifted.
func (s *Session) TouchEnd(remaining []Point, changed Point) {
	s.do(func() {
		switch s.state.(type) {
		case Pinching:
			if len(remaining) < 2 {
				s.setState(Idle{})
			}
			return
		case Panning:
			if len(remaining) == 0 {
				s.setState(Idle{})
			}
			return
		case Drawing:
			s.release(changed)
			return
		}
		if s.tool == ToolText && s.touchOrigin != nil {
			origin := *s.touchOrigin
			s.touchOrigin = nil
			if p := s.world(changed); p.Near(origin, tapTolerance) {
				s.tap(p)
			}
		}
	})
}

// --- text ---

func (s *Session) tap(p Point) {
	if s.tool != ToolText {
		return
	}
	if st, ok := s.state.(TextEditing); ok {
		s.commitText(st)
		return
	}
	if s.locked {
		s.logger().Debug("whiteboard: text refused", "err", ErrLocked)
		return
	}
	if _, idle := s.state.(Idle); !idle {
		return
	}
	s.setState(TextEditing{Position: p})
}

// editText applies fn to the open editor's buffer. It reports whether an
// editor was open.
func (s *Session) editText(fn func(string) string) bool {
	st, ok := s.state.(TextEditing)
	if !ok {
		return false
	}
	st.Buffer = fn(st.Buffer)
	s.state = st
	return true
}

// SetText replaces the open editor's buffer. It is a no-op without an
// open editor.
func (s *Session) SetText(buf string) {
	s.do(func() { s.editText(func(string) string { return buf }) })
}

// InsertText appends str to the open editor's buffer.
func (s *Session) InsertText(str string) {
	s.do(func() { s.editText(func(b string) string { return b + str }) })
}

// Backspace deletes the last rune of the open editor's buffer.
func (s *Session) Backspace() {
	s.do(func() { s.editText(dropLastRune) })
}

// KeyEnter commits the open editor, or inserts a newline when shift is held.
func (s *Session) KeyEnter(shift bool) {
	s.do(func() {
		if shift {
			s.editText(func(b string) string { return b + "\n" })
			return
		}
		if st, ok := s.state.(TextEditing); ok {
			s.commitText(st)
		}
	})
}

// KeyEscape discards the open editor without committing.
func (s *Session) KeyEscape() {
	s.do(func() {
		if _, ok := s.state.(TextEditing); ok {
			s.setState(Idle{})
		}
	})
}

// Blur commits the open editor, as losing focus does.
func (s *Session) Blur() {
	s.CommitText()
}

// CommitText rasterizes the open editor's buffer onto the committed surface
// and emits it. Blank buffers are discarded silently.
func (s *Session) CommitText() {
	s.do(func() {
		if st, ok := s.state.(TextEditing); ok {
			s.commitText(st)
		}
	})
}

func (s *Session) commitText(st TextEditing) {
	s.setState(Idle{})
	lines := TextLines(st.Buffer)
	if lines == nil {
		return
	}
	size := s.style.FontSize() / s.viewport.Zoom
	if err := PaintText(s.committed, s.fontSource(), lines, st.Position, s.style.rgba(), size); err != nil {
		s.logger().Warn("whiteboard: paint text", "err", err)
		return
	}
	s.emitCommit()
}

// --- commands ---

// Dispatch handles a command. ClearCommand and the navigation commands
// return ErrLocked on a locked canvas; ExportCommand is always allowed.
func (s *Session) Dispatch(cmd Command) error {
	return s.doErr(func() error {
		if cmd == nil {
			return ErrUnknownCommand
		}
		s.logger().Debug("whiteboard: dispatch", "command", cmd.commandName())
		switch cmd.(type) {
		case ClearCommand:
			return s.clear()
		case ExportCommand:
			return s.export()
		}
		a, ok := viewportAction(cmd)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
		}
		if s.locked {
			return fmt.Errorf("%w: %s", ErrLocked, cmd.commandName())
		}
		s.setViewport(a)
		return nil
	})
}

func (s *Session) clear() error {
	if s.locked {
		return fmt.Errorf("%w: clear", ErrLocked)
	}
	if _, ok := s.state.(TextEditing); ok {
		s.setState(Idle{})
	}
	s.committed.Clear()
	s.emitCommit()
	return nil
}

func (s *Session) export() error {
	img, err := Composite(s.committed, s.background)
	if err != nil {
		return err
	}
	uri, err := EncodeDataURI(img)
	if err != nil {
		return err
	}
	s.logger().Info("whiteboard: export", "bytes", len(uri))
	if fn := s.opts.onExport; fn != nil {
		s.queue(func() { fn(uri) })
	}
	return nil
}

// --- page content ---

// LoadPage replaces the committed surface with a serialized page image.
// The surface is cleared before LoadPage returns; the image is decoded in
// the background and painted when ready. The returned channel is closed
// once the load has finished or been discarded.
//
// A load is discarded when a later LoadPage was issued, when ctx is done
// before decoding finishes, or when the session was closed. An empty uri
// leaves the page blank. Decode failures are logged and leave the page blank.
func (s *Session) LoadPage(ctx context.Context, uri string) <-chan struct{} {
	done := make(chan struct{})
	var gen uint64
	s.do(func() {
		s.generation++
		gen = s.generation
		s.cancelGesture()
		s.committed.Clear()
	})
	if uri == "" {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		img, err := DecodeDataURI(uri)
		s.mu.Lock()
		defer s.mu.Unlock()
		switch {
		case s.closed || gen != s.generation:
			s.logger().Debug("whiteboard: stale page load discarded", "generation", gen)
		case ctx.Err() != nil:
			s.logger().Debug("whiteboard: page load canceled", "err", ctx.Err())
		case err != nil:
			s.logger().Warn("whiteboard: page image decode failed, page left blank", "err", err)
		default:
			s.committed.Load(img)
			s.logger().Info("whiteboard: page loaded", "generation", gen)
		}
	}()
	return done
}

// cancelGesture drops any active gesture without committing it.
func (s *Session) cancelGesture() {
	s.preview.Clear()
	s.touchOrigin = nil
	s.setState(Idle{})
}

// Snapshot serializes the committed surface as a PNG data URI.
func (s *Session) Snapshot() (string, error) {
	var uri string
	err := s.doErr(func() error {
		var err error
		uri, err = EncodeDataURI(s.committed.NRGBA())
		return err
	})
	return uri, err
}

// Committed returns a copy of the committed surface.
func (s *Session) Committed() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.NRGBA()
}

// Preview returns a copy of the preview surface.
func (s *Session) Preview() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview.NRGBA()
}

// Composite returns the flattened export image without emitting it.
func (s *Session) Composite() (*image.RGBA, error) {
	var img *image.RGBA
	err := s.doErr(func() error {
		var err error
		img, err = Composite(s.committed, s.background)
		return err
	})
	return img, err
}

// RenderView returns the frame a host should show for the current viewport.
func (s *Session) RenderView() (*image.RGBA, error) {
	var img *image.RGBA
	err := s.doErr(func() error {
		var err error
		img, err = RenderView(s.committed, s.preview, s.background, s.viewport)
		return err
	})
	return img, err
}

// Close releases the surfaces. Later calls are no-ops and pending page
// loads are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil
	s.committed.Close()
	s.preview.Close()
	s.scratch.Close()
	return nil
}
