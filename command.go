package whiteboard

// Command is a request sent to a Session with Dispatch. Each dispatched
// command is handled exactly once, in order.
type Command interface {
	commandName() string
}

// ClearCommand erases all committed content on the current page and emits
// the blank surface through the commit handler.
type ClearCommand struct{}

// ExportCommand flattens background, pattern and committed content and
// emits the result through the export handler.
type ExportCommand struct{}

// ZoomInCommand zooms in by ZoomStep around the viewport centre.
type ZoomInCommand struct{}

// ZoomOutCommand zooms out by ZoomStep around the viewport centre.
type ZoomOutCommand struct{}

// ResetZoomCommand restores zoom 1 with the content re-centred.
type ResetZoomCommand struct{}

// SetZoomCommand sets an absolute zoom around the viewport centre.
type SetZoomCommand struct {
	Zoom float64
}

// ZoomAtCommand sets an absolute zoom around a screen anchor, as a scroll
// wheel over the canvas does.
type ZoomAtCommand struct {
	Anchor Point
	Zoom   float64
}

// SetPanCommand replaces the pan offset.
type SetPanCommand struct {
	Pan PanOffset
}

func (ClearCommand) commandName() string     { return "clear" }
func (ExportCommand) commandName() string    { return "export" }
func (ZoomInCommand) commandName() string    { return "zoom-in" }
func (ZoomOutCommand) commandName() string   { return "zoom-out" }
func (ResetZoomCommand) commandName() string { return "reset-zoom" }
func (SetZoomCommand) commandName() string   { return "set-zoom" }
func (ZoomAtCommand) commandName() string    { return "zoom-at" }
func (SetPanCommand) commandName() string    { return "set-pan" }

// viewportAction returns the viewport transition for navigation commands.
func viewportAction(c Command) (ViewportAction, bool) {
	switch c := c.(type) {
	case ZoomInCommand:
		return ZoomInAction{}, true
	case ZoomOutCommand:
		return ZoomOutAction{}, true
	case ResetZoomCommand:
		return ResetZoomAction{}, true
	case SetZoomCommand:
		return SetZoomAction(c), true
	case ZoomAtCommand:
		return ZoomAtAction(c), true
	case SetPanCommand:
		return SetPanAction(c), true
	default:
		return nil, false
	}
}
