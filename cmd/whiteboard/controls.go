package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/gogpu/whiteboard"
	"github.com/gogpu/whiteboard/board"
	"github.com/gogpu/whiteboard/integration/fynecanvas"
)

var (
	tools    = []whiteboard.Tool{whiteboard.ToolPen, whiteboard.ToolEraser, whiteboard.ToolShape, whiteboard.ToolArrow, whiteboard.ToolText, whiteboard.ToolHand}
	shapes   = []whiteboard.ShapeType{whiteboard.ShapeRectangle, whiteboard.ShapeCircle, whiteboard.ShapeLine, whiteboard.ShapeTriangle}
	patterns = []whiteboard.Pattern{whiteboard.PatternNone, whiteboard.PatternGrid, whiteboard.PatternLines, whiteboard.PatternDotted}
	palette  = []string{"#000000", "#FFFFFF", "#E53935", "#1E88E5", "#43A047", "#FDD835", "#8E24AA"}
	paper    = []string{"#FFFFFF", "#FFFDE7", "#ECEFF1", "#263238", "#000000"}
)

func names[T fmt.Stringer](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func zoomText(z float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(z*100)))
}

// controls holds the toolbar and page bar widgets of the main window.
type controls struct {
	ws     *board.Workspace
	canvas *fynecanvas.Canvas
	status *widget.Label
	zoom   *widget.Label

	color   *widget.Select
	pattern *widget.Select
	boards  *widget.Select
	pages   *widget.Select
	name    *widget.Entry

	// syncing suppresses select callbacks while options are rebuilt.
	syncing bool
}

func newControls(ws *board.Workspace, c *fynecanvas.Canvas, status, zoom *widget.Label) *controls {
	return &controls{ws: ws, canvas: c, status: status, zoom: zoom}
}

func (u *controls) session() *whiteboard.Session {
	return u.ws.Session()
}

// report shows err in the status bar. Refusals of a locked canvas are
// reported as such.
func (u *controls) report(err error) {
	switch {
	case err == nil:
		u.status.SetText("")
	case errors.Is(err, whiteboard.ErrLocked):
		u.status.SetText("Canvas is locked")
	default:
		u.status.SetText(err.Error())
	}
}

func (u *controls) dispatch(cmd whiteboard.Command) {
	u.report(u.session().Dispatch(cmd))
	u.canvas.Refresh()
}

// switched shows the result of a page or board switch.
func (u *controls) switched(done <-chan struct{}, err error) {
	u.report(err)
	if err != nil {
		return
	}
	u.canvas.Await(done)
	u.sync()
}

func (u *controls) toolbar() fyne.CanvasObject {
	tool := widget.NewSelect(names(tools), func(s string) {
		t, err := whiteboard.ParseTool(s)
		if err != nil {
			u.report(err)
			return
		}
		u.session().SetTool(t)
		u.canvas.Refresh()
	})
	tool.SetSelected(whiteboard.ToolPen.String())

	shape := widget.NewSelect(names(shapes), func(s string) {
		st, err := whiteboard.ParseShapeType(s)
		if err != nil {
			u.report(err)
			return
		}
		u.session().SetShapeType(st)
		tool.SetSelected(whiteboard.ToolShape.String())
	})
	shape.PlaceHolder = "shape"

	u.color = widget.NewSelect(palette, func(s string) {
		if u.syncing {
			return
		}
		u.session().SetColor(s)
	})

	brush := widget.NewSlider(1, 50)
	brush.Step = 1
	brush.SetValue(whiteboard.DefaultBrushSize)
	brush.OnChanged = func(v float64) {
		u.session().SetBrushSize(v)
	}

	u.pattern = widget.NewSelect(names(patterns), func(s string) {
		if u.syncing {
			return
		}
		p, err := whiteboard.ParsePattern(s)
		if err != nil {
			u.report(err)
			return
		}
		bg := u.ws.Store().Active().Background
		bg.Pattern = p
		u.setBackground(bg)
	})

	fill := widget.NewSelect(paper, func(s string) {
		bg := u.ws.Store().Active().Background
		bg.Color = s
		u.setBackground(bg)
	})
	fill.PlaceHolder = "paper"

	lock := widget.NewCheck("Lock", func(on bool) {
		u.session().SetLocked(on)
		u.canvas.Refresh()
	})

	return container.NewHBox(
		tool, shape, u.color, brush,
		widget.NewSeparator(),
		u.pattern, fill,
		widget.NewSeparator(),
		lock,
		widget.NewButton("-", func() { u.dispatch(whiteboard.ZoomOutCommand{}) }),
		u.zoom,
		widget.NewButton("+", func() { u.dispatch(whiteboard.ZoomInCommand{}) }),
		widget.NewButton("1:1", func() { u.dispatch(whiteboard.ResetZoomCommand{}) }),
		widget.NewSeparator(),
		widget.NewButton("Export", func() { u.report(u.ws.Export()) }),
		widget.NewButton("Clear", func() {
			u.report(u.ws.Clear())
			u.canvas.Refresh()
		}),
	)
}

func (u *controls) setBackground(bg whiteboard.BackgroundSpec) {
	u.report(u.ws.SetBackground(bg))
	u.syncColor()
	u.canvas.Refresh()
}

func (u *controls) syncColor() {
	if u.color == nil {
		return
	}
	prev := u.syncing
	u.syncing = true
	u.color.SetSelected(u.session().Style().Color)
	u.syncing = prev
}

func (u *controls) pageBar() fyne.CanvasObject {
	ctx := context.Background()
	u.boards = widget.NewSelect(nil, func(string) {
		if u.syncing {
			return
		}
		i := u.boards.SelectedIndex()
		list := u.ws.Store().List()
		if i < 0 || i >= len(list) {
			return
		}
		u.switched(u.ws.SelectWhiteboard(ctx, list[i].ID))
	})
	u.pages = widget.NewSelect(nil, func(string) {
		if u.syncing {
			return
		}
		u.switched(u.ws.SelectPage(ctx, u.pages.SelectedIndex()))
	})
	u.name = widget.NewEntry()
	u.name.OnSubmitted = func(s string) {
		u.report(u.ws.Rename(s))
		u.sync()
	}
	u.sync()

	return container.NewHBox(
		u.boards,
		widget.NewButton("New board", func() { u.switched(u.ws.NewWhiteboard(ctx)) }),
		widget.NewButton("Delete board", func() {
			u.switched(u.ws.DeleteWhiteboard(ctx, u.ws.Store().Active().ID))
		}),
		u.name,
		u.pages,
		widget.NewButton("Add page", func() { u.switched(u.ws.AddPage(ctx)) }),
	)
}

// sync rebuilds the board and page selectors from the store.
func (u *controls) sync() {
	u.syncing = true
	defer func() { u.syncing = false }()

	st := u.ws.Store()
	active := st.Active()
	var boardNames []string
	selected := 0
	for i, wb := range st.List() {
		boardNames = append(boardNames, wb.Name)
		if wb.ID == active.ID {
			selected = i
		}
	}
	u.boards.Options = boardNames
	u.boards.SetSelectedIndex(selected)

	pageNames := make([]string, len(active.Pages))
	for i := range active.Pages {
		pageNames[i] = fmt.Sprintf("Page %d / %d", i+1, len(active.Pages))
	}
	u.pages.Options = pageNames
	u.pages.SetSelectedIndex(active.ActivePage)
	u.name.SetText(active.Name)

	if u.pattern != nil {
		u.pattern.SetSelected(active.Background.Pattern.String())
	}
	u.zoom.SetText(zoomText(u.session().Viewport().Zoom))
	u.syncColor()
}
