package whiteboard

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"
)

// recorder collects events emitted by a Session.
type recorder struct {
	mu      sync.Mutex
	commits []string
	exports []string
	zooms   []float64
	pans    []PanOffset
}

func (r *recorder) options() []SessionOption {
	return []SessionOption{
		WithCommitHandler(func(uri string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.commits = append(r.commits, uri)
		}),
		WithExportHandler(func(uri string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.exports = append(r.exports, uri)
		}),
		WithZoomHandler(func(z float64) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.zooms = append(r.zooms, z)
		}),
		WithPanHandler(func(p PanOffset) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.pans = append(r.pans, p)
		}),
	}
}

func (r *recorder) commitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commits)
}

func newTestSession(t *testing.T, w, h int, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(w, h, opts...)
	if err != nil {
		t.Fatalf("NewSession(%d, %d): %v", w, h, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRecordedSession(t *testing.T, w, h int) (*Session, *recorder) {
	t.Helper()
	r := &recorder{}
	return newTestSession(t, w, h, r.options()...), r
}

func drag(s *Session, from, to Point) {
	s.PointerDown(from)
	s.PointerMove(from.Midpoint(to))
	s.PointerMove(to)
	s.PointerUp(to)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("page load did not finish")
	}
}

func blank(img *image.NRGBA) bool {
	_, ok := inkBounds(img)
	return !ok
}

func TestNewSessionInvalidDimensions(t *testing.T) {
	for _, d := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := NewSession(d[0], d[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewSession(%d,%d) err = %v, want ErrInvalidDimensions", d[0], d[1], err)
		}
	}
}

func TestPenStrokeCommits(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	drag(s, Pt(10, 10), Pt(90, 10))

	if _, ok := s.State().(Idle); !ok {
		t.Errorf("state = %s, want idle", StateName(s.State()))
	}
	if s.Committed().NRGBAAt(50, 10).A == 0 {
		t.Error("pen stroke left no ink")
	}
	if rec.commitCount() != 1 {
		t.Fatalf("commits = %d, want 1", rec.commitCount())
	}
	img, err := DecodeDataURI(rec.commits[0])
	if err != nil {
		t.Fatalf("commit payload: %v", err)
	}
	if _, _, _, a := img.At(50, 10).RGBA(); a == 0 {
		t.Error("commit payload does not contain the stroke")
	}
}

func TestShapeDragPreviewsThenCommits(t *testing.T) {
	s, rec := newRecordedSession(t, 200, 100)
	s.SetTool(ToolShape)
	s.SetShapeType(ShapeRectangle)
	s.SetStyle(Style{Color: "#000000", BrushSize: 2})

	s.PointerDown(Pt(10, 10))
	s.PointerMove(Pt(150, 90))
	s.PointerMove(Pt(110, 60))

	if !blank(s.Committed()) {
		t.Error("shape committed before release")
	}
	r, ok := inkBounds(s.Preview())
	if !ok {
		t.Fatal("no preview while dragging")
	}
	if r.Max.X > 113 || r.Max.Y > 63 {
		t.Errorf("preview bounds = %v, accumulated an earlier drag position", r)
	}

	s.PointerUp(Pt(110, 60))
	if !blank(s.Preview()) {
		t.Error("preview not cleared after commit")
	}
	r, ok = inkBounds(s.Committed())
	if !ok {
		t.Fatal("rectangle not committed")
	}
	if !within(r.Min.X, 10, 2) || !within(r.Min.Y, 10, 2) || !within(r.Max.X, 110, 2) || !within(r.Max.Y, 60, 2) {
		t.Errorf("committed bounds = %v, want (10,10)-(110,60)", r)
	}
	if rec.commitCount() != 1 {
		t.Errorf("commits = %d, want 1", rec.commitCount())
	}
}

func TestCircleScenario(t *testing.T) {
	s := newTestSession(t, 100, 100)
	s.SetTool(ToolShape)
	s.SetShapeType(ShapeCircle)
	s.SetStyle(Style{Color: "#000000", BrushSize: 2})
	drag(s, Pt(0, 0), Pt(40, 20))

	img := s.Committed()
	for _, p := range []image.Point{{39, 10}, {0, 10}, {20, 0}, {20, 19}} {
		if img.NRGBAAt(p.X, p.Y).A == 0 {
			t.Errorf("no ink at %v on ellipse centred (20,10) with radii (20,10)", p)
		}
	}
	if a := img.NRGBAAt(20, 10).A; a != 0 {
		t.Errorf("centre alpha = %d, want 0", a)
	}
}

func TestArrowCommits(t *testing.T) {
	s := newTestSession(t, 120, 60)
	s.SetTool(ToolArrow)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	drag(s, Pt(10, 30), Pt(100, 30))

	// radius = 4*3 = 12, arm length 18.
	if s.Committed().NRGBAAt(92, 32).A == 0 {
		t.Error("arrowhead not committed")
	}
}

func TestEraserRemovesInsteadOfPaintingWhite(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	drag(s, Pt(10, 50), Pt(90, 50))

	s.SetTool(ToolEraser)
	drag(s, Pt(10, 50), Pt(90, 50))

	img := s.Committed()
	for x := 12; x < 88; x++ {
		for y := 46; y < 54; y++ {
			c := img.NRGBAAt(x, y)
			if c.A != 0 {
				t.Fatalf("pixel (%d,%d) = %v after erase, want transparent", x, y, c)
			}
		}
	}
	if rec.commitCount() != 2 {
		t.Errorf("commits = %d, want 2", rec.commitCount())
	}

	// Normal painting resumes after the eraser.
	s.SetTool(ToolPen)
	drag(s, Pt(10, 20), Pt(90, 20))
	if img := s.Committed(); img.NRGBAAt(50, 20) != (color.NRGBA{A: 255}) {
		t.Errorf("pen after eraser = %v, want opaque black", img.NRGBAAt(50, 20))
	}
}

func TestEraserStrokeWidthScalesWithZoom(t *testing.T) {
	s := newTestSession(t, 100, 100)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	drag(s, Pt(10, 50), Pt(90, 50))

	if err := s.Dispatch(SetZoomCommand{Zoom: 2}); err != nil {
		t.Fatal(err)
	}
	s.SetTool(ToolEraser)
	s.PointerDown(Pt(0, 0))
	st, ok := s.State().(Drawing)
	if !ok {
		t.Fatalf("state = %s, want drawing", StateName(s.State()))
	}
	if st.Pen.Width != 4 {
		t.Errorf("eraser width at zoom 2 = %v, want 4", st.Pen.Width)
	}
	s.PointerUp(Pt(0, 0))
}

func TestPointerLeaveAndGlobalUpFinishDrawing(t *testing.T) {
	for name, end := range map[string]func(*Session){
		"leave":     func(s *Session) { s.PointerLeave(Pt(-5, -5)) },
		"global up": func(s *Session) { s.GlobalPointerUp() },
		"touch end": func(s *Session) { s.TouchEnd(nil, Pt(60, 60)) },
	} {
		t.Run(name, func(t *testing.T) {
			s, rec := newRecordedSession(t, 100, 100)
			s.SetTool(ToolShape)
			s.PointerDown(Pt(10, 10))
			s.PointerMove(Pt(60, 60))
			end(s)
			if _, ok := s.State().(Idle); !ok {
				t.Errorf("state = %s, want idle", StateName(s.State()))
			}
			if rec.commitCount() != 1 {
				t.Errorf("commits = %d, want 1", rec.commitCount())
			}
			if blank(s.Committed()) {
				t.Error("shape not committed")
			}
			if !blank(s.Preview()) {
				t.Error("preview not cleared")
			}
		})
	}
}

func TestHandPan(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	s.SetTool(ToolHand)
	s.PointerDown(Pt(10, 10))
	if _, ok := s.State().(Panning); !ok {
		t.Fatalf("state = %s, want panning", StateName(s.State()))
	}
	s.PointerMove(Pt(20, 30))
	s.PointerMove(Pt(30, 50))
	s.PointerUp(Pt(30, 50))

	v := s.Viewport()
	if v.Pan != (PanOffset{X: 20, Y: 40}) || v.Zoom != 1 {
		t.Errorf("viewport = %+v, want pan (20,40) zoom 1", v)
	}
	if len(rec.pans) != 2 || len(rec.zooms) != 0 {
		t.Errorf("events: pans=%d zooms=%d, want 2 and 0", len(rec.pans), len(rec.zooms))
	}
	if !blank(s.Committed()) || rec.commitCount() != 0 {
		t.Error("hand tool painted")
	}
}

func TestPinchZoomKeepsAnchor(t *testing.T) {
	s, rec := newRecordedSession(t, 400, 300)
	s.SetTool(ToolHand)

	s.TouchStart([]Point{Pt(100, 100), Pt(200, 100)})
	st, ok := s.State().(Pinching)
	if !ok {
		t.Fatalf("state = %s, want pinching", StateName(s.State()))
	}
	if st.Anchor != Pt(150, 100) || st.StartDistance != 100 {
		t.Errorf("pinch start = %+v", st)
	}
	before := s.Viewport().ScreenToWorld(st.Anchor)

	s.TouchMove([]Point{Pt(50, 100), Pt(250, 100)})
	v := s.Viewport()
	if math.Abs(v.Zoom-2) > 1e-9 {
		t.Errorf("zoom = %v, want 2", v.Zoom)
	}
	if after := v.ScreenToWorld(st.Anchor); !after.Near(before, 1e-9) {
		t.Errorf("anchor world point moved from %v to %v", before, after)
	}

	// Fingers drifting sideways do not move the anchor.
	s.TouchMove([]Point{Pt(80, 100), Pt(280, 100)})
	if after := s.Viewport().ScreenToWorld(st.Anchor); !after.Near(before, 1e-9) {
		t.Errorf("anchor drifted to %v", after)
	}

	s.TouchMove([]Point{Pt(149, 100), Pt(151, 100)})
	if z := s.Viewport().Zoom; z != MinZoom {
		t.Errorf("zoom = %v, want clamped to %v", z, MinZoom)
	}

	s.TouchEnd([]Point{Pt(151, 100)}, Pt(149, 100))
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("state = %s, want idle", StateName(s.State()))
	}
	if len(rec.zooms) == 0 {
		t.Error("no zoom events")
	}
}

func TestSingleTouchPanThenPinch(t *testing.T) {
	s := newTestSession(t, 300, 300)
	s.SetTool(ToolHand)
	s.TouchStart([]Point{Pt(10, 10)})
	s.TouchMove([]Point{Pt(15, 20)})
	if p := s.Viewport().Pan; p != (PanOffset{X: 5, Y: 10}) {
		t.Errorf("pan = %v, want (5,10)", p)
	}
	s.TouchStart([]Point{Pt(15, 20), Pt(115, 20)})
	if _, ok := s.State().(Pinching); !ok {
		t.Errorf("state = %s, want pinching", StateName(s.State()))
	}
	s.TouchEnd(nil, Pt(115, 20))
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("state = %s, want idle", StateName(s.State()))
	}
}

func TestTextScenario(t *testing.T) {
	s, rec := newRecordedSession(t, 200, 120)
	s.SetTool(ToolText)
	s.SetStyle(Style{Color: "#000000", BrushSize: 10})

	s.Tap(Pt(5, 5))
	st, ok := s.State().(TextEditing)
	if !ok || st.Position != Pt(5, 5) || st.Buffer != "" {
		t.Fatalf("state = %#v, want empty editor at (5,5)", s.State())
	}
	s.InsertText("Hi")
	s.KeyEnter(true)
	s.InsertText("There")
	s.KeyEnter(false)

	if _, ok := s.State().(Idle); !ok {
		t.Errorf("state = %s, want idle", StateName(s.State()))
	}
	if rec.commitCount() != 1 {
		t.Fatalf("commits = %d, want 1", rec.commitCount())
	}
	fontSize := s.Style().FontSize()
	origins := TextLineOrigins(Pt(5, 5), 2, fontSize)
	if math.Abs(origins[1].Y-origins[0].Y-fontSize*1.2) > 1e-9 {
		t.Errorf("line spacing = %v, want %v", origins[1].Y-origins[0].Y, fontSize*1.2)
	}
	img := s.Committed()
	if inkInRows(img, 0, 5) {
		t.Error("ink above the tap point")
	}
	if !inkInRows(img, 5, 41) || !inkInRows(img, 41, 77) {
		t.Error("expected one line of ink starting at y=5 and one at y=41")
	}
}

func TestTextEditorLifecycle(t *testing.T) {
	tests := []struct {
		name       string
		act        func(*Session)
		wantCommit bool
	}{
		{"escape discards", func(s *Session) { s.SetText("gone"); s.KeyEscape() }, false},
		{"blank discarded", func(s *Session) { s.SetText("  \n "); s.Blur() }, false},
		{"blur commits", func(s *Session) { s.SetText("kept"); s.Blur() }, true},
		{"second tap commits", func(s *Session) { s.SetText("kept"); s.Tap(Pt(80, 80)) }, true},
		{"tool change commits", func(s *Session) { s.SetText("kept"); s.SetTool(ToolPen) }, true},
		{"backspace to blank", func(s *Session) { s.SetText("a"); s.Backspace(); s.CommitText() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newRecordedSession(t, 120, 120)
			s.SetTool(ToolText)
			s.Tap(Pt(10, 10))
			tt.act(s)
			if _, ok := s.State().(Idle); !ok {
				t.Errorf("state = %s, want idle", StateName(s.State()))
			}
			if got := rec.commitCount() == 1; got != tt.wantCommit {
				t.Errorf("committed = %v, want %v", got, tt.wantCommit)
			}
			if blank(s.Committed()) == tt.wantCommit {
				t.Errorf("surface blank = %v, want %v", blank(s.Committed()), !tt.wantCommit)
			}
		})
	}
}

func TestTextTouchTap(t *testing.T) {
	s := newTestSession(t, 100, 100)
	s.SetTool(ToolText)

	s.TouchStart([]Point{Pt(20, 20)})
	s.TouchEnd(nil, Pt(45, 20))
	if _, ok := s.State().(Idle); !ok {
		t.Fatalf("a 25 unit swipe opened an editor")
	}

	s.TouchStart([]Point{Pt(20, 20)})
	s.TouchEnd(nil, Pt(26, 17))
	st, ok := s.State().(TextEditing)
	if !ok {
		t.Fatalf("state = %s, want text-editing", StateName(s.State()))
	}
	if st.Position != Pt(26, 17) {
		t.Errorf("editor at %v, want (26,17)", st.Position)
	}
}

func TestLockBlocksMutationAndNavigation(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	s.SetLocked(true)
	start := s.Viewport()

	for _, tool := range []Tool{ToolPen, ToolEraser, ToolShape, ToolArrow, ToolText, ToolHand} {
		s.SetTool(tool)
		drag(s, Pt(10, 10), Pt(80, 70))
		s.Tap(Pt(30, 30))
		s.InsertText("nope")
		s.CommitText()
		s.TouchStart([]Point{Pt(10, 10)})
		s.TouchMove([]Point{Pt(50, 50)})
		s.TouchEnd(nil, Pt(50, 50))
		s.TouchStart([]Point{Pt(10, 10), Pt(60, 10)})
		s.TouchMove([]Point{Pt(0, 10), Pt(90, 10)})
		s.TouchEnd(nil, Pt(90, 10))
	}
	for _, cmd := range []Command{ZoomInCommand{}, ZoomOutCommand{}, ResetZoomCommand{}, SetZoomCommand{Zoom: 3}, SetPanCommand{Pan: PanOffset{X: 9}}, ClearCommand{}} {
		if err := s.Dispatch(cmd); !errors.Is(err, ErrLocked) {
			t.Errorf("Dispatch(%T) err = %v, want ErrLocked", cmd, err)
		}
	}

	if !blank(s.Committed()) {
		t.Error("locked canvas content changed")
	}
	if got := s.Viewport(); got != start {
		t.Errorf("locked viewport changed: %+v -> %+v", start, got)
	}
	if rec.commitCount() != 0 || len(rec.zooms) != 0 || len(rec.pans) != 0 {
		t.Errorf("events while locked: commits=%d zooms=%d pans=%d", rec.commitCount(), len(rec.zooms), len(rec.pans))
	}

	if err := s.Dispatch(ExportCommand{}); err != nil {
		t.Errorf("export while locked = %v, want allowed", err)
	}

	s.SetLocked(false)
	s.SetTool(ToolPen)
	drag(s, Pt(10, 10), Pt(80, 10))
	if blank(s.Committed()) {
		t.Error("unlocked canvas did not accept a stroke")
	}
}

func TestLockingEndsActiveGesture(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	s.SetTool(ToolShape)
	s.PointerDown(Pt(10, 10))
	s.PointerMove(Pt(50, 50))
	s.SetLocked(true)

	if _, ok := s.State().(Idle); !ok {
		t.Errorf("state = %s, want idle", StateName(s.State()))
	}
	if rec.commitCount() != 1 {
		t.Errorf("commits = %d, want 1", rec.commitCount())
	}
	committed := s.Committed()
	s.PointerMove(Pt(90, 90))
	s.PointerUp(Pt(90, 90))
	if got := s.Committed(); string(got.Pix) != string(committed.Pix) {
		t.Error("surface changed after locking")
	}
}

func TestDispatchZoomCommands(t *testing.T) {
	s, rec := newRecordedSession(t, 800, 600)
	for i := 0; i < 100; i++ {
		if err := s.Dispatch(ZoomInCommand{}); err != nil {
			t.Fatal(err)
		}
	}
	if z := s.Viewport().Zoom; z != MaxZoom {
		t.Errorf("zoom = %v, want %v", z, MaxZoom)
	}
	if err := s.Dispatch(SetZoomCommand{Zoom: 0.01}); err != nil {
		t.Fatal(err)
	}
	if z := s.Viewport().Zoom; z != MinZoom {
		t.Errorf("zoom = %v, want %v", z, MinZoom)
	}
	if err := s.Dispatch(ResetZoomCommand{}); err != nil {
		t.Fatal(err)
	}
	if v := s.Viewport(); v.Zoom != 1 || v.Pan != (PanOffset{}) {
		t.Errorf("after reset: %+v", v)
	}
	if len(rec.zooms) == 0 || rec.zooms[len(rec.zooms)-1] != 1 {
		t.Errorf("zoom events = %v, want last 1", rec.zooms)
	}
	if err := s.Dispatch(nil); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Dispatch(nil) = %v, want ErrUnknownCommand", err)
	}
}

func TestDrawingAfterZoomUsesWorldCoordinates(t *testing.T) {
	s := newTestSession(t, 200, 200)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	if err := s.Dispatch(SetPanCommand{Pan: PanOffset{X: 20, Y: 20}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Dispatch(ZoomAtCommand{Anchor: Pt(20, 20), Zoom: 2}); err != nil {
		t.Fatal(err)
	}
	// Screen (60,40) -> world (20,10); screen (180,40) -> world (80,10).
	drag(s, Pt(60, 40), Pt(180, 40))
	r, ok := inkBounds(s.Committed())
	if !ok {
		t.Fatal("no ink")
	}
	if !within(r.Min.X, 19, 2) || !within(r.Max.X, 81, 2) || !within(r.Min.Y, 9, 2) {
		t.Errorf("ink bounds = %v, want world span (20,10)-(80,10)", r)
	}
	// Line width is brush/zoom = 2 world units.
	if r.Dy() > 4 {
		t.Errorf("stroke height = %d, want about 2", r.Dy())
	}
}

func TestClearCommand(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 100)
	drag(s, Pt(10, 10), Pt(90, 90))
	s.SetTool(ToolText)
	s.Tap(Pt(5, 5))
	s.SetText("pending")

	if err := s.Dispatch(ClearCommand{}); err != nil {
		t.Fatal(err)
	}
	if !blank(s.Committed()) {
		t.Error("clear left ink")
	}
	if _, ok := s.State().(Idle); !ok {
		t.Errorf("clear left state %s", StateName(s.State()))
	}
	if rec.commitCount() != 2 {
		t.Fatalf("commits = %d, want 2", rec.commitCount())
	}
	img, err := DecodeDataURI(rec.commits[1])
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := img.At(50, 50).RGBA(); a != 0 {
		t.Error("clear commit is not blank")
	}
}

func TestExportCommandDeterministic(t *testing.T) {
	s, rec := newRecordedSession(t, 100, 80)
	s.SetBackground(BackgroundSpec{Pattern: PatternDotted, Color: "#fafafa"})
	drag(s, Pt(10, 10), Pt(90, 70))

	for i := 0; i < 2; i++ {
		if err := s.Dispatch(ExportCommand{}); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.exports) != 2 {
		t.Fatalf("exports = %d, want 2", len(rec.exports))
	}
	if rec.exports[0] != rec.exports[1] {
		t.Error("export output differs for unchanged state")
	}
	img, err := DecodeDataURI(rec.exports[0])
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("export size = %v, want 100x80", b)
	}

	// Export ignores the viewport.
	if err := s.Dispatch(SetZoomCommand{Zoom: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Dispatch(ExportCommand{}); err != nil {
		t.Fatal(err)
	}
	if rec.exports[2] != rec.exports[0] {
		t.Error("export depends on zoom")
	}
}

func TestLoadPageRoundTrip(t *testing.T) {
	src := newTestSession(t, 80, 60)
	src.SetStyle(Style{Color: "#ff000080", BrushSize: 3})
	drag(src, Pt(5, 5), Pt(70, 50))
	uri, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	dst := newTestSession(t, 80, 60)
	waitDone(t, dst.LoadPage(context.Background(), uri))
	again, err := dst.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if again != uri {
		t.Error("snapshot after load differs from the loaded image")
	}
}

func TestLoadPageClearsSynchronously(t *testing.T) {
	s := newTestSession(t, 50, 50)
	drag(s, Pt(5, 5), Pt(45, 45))
	done := s.LoadPage(context.Background(), "")
	if !blank(s.Committed()) {
		t.Error("surface not cleared when LoadPage returned")
	}
	waitDone(t, done)
}

func TestLoadPageDiscardsStaleDecode(t *testing.T) {
	mk := func(c color.NRGBA) string {
		img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
		for i := 0; i < 100; i++ {
			img.SetNRGBA(i%10, i/10, c)
		}
		uri, err := EncodeDataURI(img)
		if err != nil {
			t.Fatal(err)
		}
		return uri
	}
	red := mk(color.NRGBA{R: 255, A: 255})
	blue := mk(color.NRGBA{B: 255, A: 255})

	for i := 0; i < 20; i++ {
		s := newTestSession(t, 10, 10)
		first := s.LoadPage(context.Background(), red)
		second := s.LoadPage(context.Background(), blue)
		waitDone(t, first)
		waitDone(t, second)
		if got := s.Committed().NRGBAAt(5, 5); got != (color.NRGBA{B: 255, A: 255}) {
			t.Fatalf("iteration %d: pixel = %v, want the later page (blue)", i, got)
		}
	}
}

func TestLoadPageBadImageLeavesBlank(t *testing.T) {
	s := newTestSession(t, 20, 20)
	drag(s, Pt(1, 1), Pt(19, 19))
	waitDone(t, s.LoadPage(context.Background(), "data:image/png;base64,bm90IGEgcG5n"))
	if !blank(s.Committed()) {
		t.Error("failed decode left content on the page")
	}
}

func TestLoadPageCanceledContext(t *testing.T) {
	uri, err := EncodeDataURI(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	s := newTestSession(t, 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waitDone(t, s.LoadPage(ctx, uri))
}

func TestHandlersMayReenterSession(t *testing.T) {
	var s *Session
	var zoomSeen float64
	s = newTestSession(t, 50, 50, WithCommitHandler(func(string) {
		zoomSeen = s.Viewport().Zoom
	}))
	drag(s, Pt(1, 1), Pt(40, 40))
	if zoomSeen != 1 {
		t.Errorf("handler saw zoom %v, want 1", zoomSeen)
	}
}

func TestResize(t *testing.T) {
	s := newTestSession(t, 50, 50)
	drag(s, Pt(5, 5), Pt(45, 5))
	if err := s.Resize(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0,10) = %v", err)
	}
	if err := s.Resize(100, 80); err != nil {
		t.Fatal(err)
	}
	v := s.Viewport()
	if v.Width != 100 || v.Height != 80 {
		t.Errorf("viewport = %+v", v)
	}
	if s.Committed().NRGBAAt(25, 5).A == 0 {
		t.Error("content lost on resize")
	}
}

func TestClosedSession(t *testing.T) {
	s, err := NewSession(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Dispatch(ExportCommand{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Dispatch after Close = %v, want ErrClosed", err)
	}
	s.PointerDown(Pt(1, 1))
	s.PointerUp(Pt(5, 5))
	if _, err := s.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Errorf("Snapshot after Close = %v, want ErrClosed", err)
	}
	waitDone(t, s.LoadPage(context.Background(), "data:image/png;base64,AAAA"))
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestRenderViewShowsPreview(t *testing.T) {
	s := newTestSession(t, 100, 100)
	s.SetTool(ToolShape)
	s.SetShapeType(ShapeLine)
	s.SetStyle(Style{Color: "#000000", BrushSize: 4})
	s.PointerDown(Pt(10, 50))
	s.PointerMove(Pt(90, 50))

	img, err := s.RenderView()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(50, 50); got.R > 64 {
		t.Errorf("view pixel = %v, want preview ink", got)
	}
	s.PointerUp(Pt(90, 50))
}
