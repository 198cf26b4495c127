package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/whiteboard"
)

// Script is a recorded whiteboard session: a canvas size, a background and
// the input events to replay. JSON is accepted as well as YAML.
type Script struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Background Background `yaml:"background"`
	// Page is an optional data URI loaded before the events run.
	Page   string  `yaml:"page"`
	Events []Event `yaml:"events"`
}

// Background is the textual form of whiteboard.BackgroundSpec.
type Background struct {
	Pattern      string `yaml:"pattern"`
	Color        string `yaml:"color"`
	PatternColor string `yaml:"patternColor"`
}

// Event is one input event. Type selects the fields that apply.
//
//	tool, shape, color          Value
//	brush                       Size
//	down, move, up, leave, tap  X, Y
//	globalup, escape, backspace, blur, commit
//	touchstart, touchmove       Touches
//	touchend                    Touches (remaining), X, Y (lifted)
//	text                        Value (appended to the editor)
//	enter                       Shift
//	lock                        Locked
//	command                     Value: clear, export, zoom-in, zoom-out, reset-zoom
//	zoom                        Zoom, optionally X, Y as the anchor when Anchor is set
//	pan                         X, Y
type Event struct {
	Type    string       `yaml:"type"`
	X       float64      `yaml:"x"`
	Y       float64      `yaml:"y"`
	Touches [][2]float64 `yaml:"touches"`
	Value   string       `yaml:"value"`
	Size    float64      `yaml:"size"`
	Zoom    float64      `yaml:"zoom"`
	Anchor  bool         `yaml:"anchor"`
	Shift   bool         `yaml:"shift"`
	Locked  bool         `yaml:"locked"`
}

// ParseScript decodes a script and applies defaults.
func ParseScript(r io.Reader) (*Script, error) {
	var sc Script
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("wbreplay: decode script: %w", err)
	}
	if sc.Width == 0 {
		sc.Width = 800
	}
	if sc.Height == 0 {
		sc.Height = 600
	}
	return &sc, nil
}

// BackgroundSpec converts the script background.
func (sc *Script) BackgroundSpec() (whiteboard.BackgroundSpec, error) {
	bg := whiteboard.DefaultBackground()
	if sc.Background.Pattern != "" {
		p, err := whiteboard.ParsePattern(sc.Background.Pattern)
		if err != nil {
			return bg, err
		}
		bg.Pattern = p
	}
	if sc.Background.Color != "" {
		bg.Color = sc.Background.Color
	}
	if sc.Background.PatternColor != "" {
		bg.PatternColor = sc.Background.PatternColor
	}
	return bg, nil
}

// Replay creates a session for the script and feeds it every event.
// The caller owns the returned session.
func Replay(ctx context.Context, sc *Script, opts ...whiteboard.SessionOption) (*whiteboard.Session, error) {
	bg, err := sc.BackgroundSpec()
	if err != nil {
		return nil, err
	}
	opts = append([]whiteboard.SessionOption{whiteboard.WithBackground(bg)}, opts...)
	s, err := whiteboard.NewSession(sc.Width, sc.Height, opts...)
	if err != nil {
		return nil, err
	}
	if sc.Page != "" {
		select {
		case <-s.LoadPage(ctx, sc.Page):
		case <-ctx.Done():
			_ = s.Close()
			return nil, ctx.Err()
		}
	}
	for i, ev := range sc.Events {
		err := apply(s, ev)
		if errors.Is(err, whiteboard.ErrLocked) {
			whiteboard.Logger().Warn("wbreplay: event refused", "index", i, "type", ev.Type, "err", err)
			continue
		}
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("wbreplay: event %d (%s): %w", i, ev.Type, err)
		}
	}
	return s, nil
}

func points(ts [][2]float64) []whiteboard.Point {
	out := make([]whiteboard.Point, len(ts))
	for i, t := range ts {
		out[i] = whiteboard.Pt(t[0], t[1])
	}
	return out
}

var commands = map[string]whiteboard.Command{
	"clear":      whiteboard.ClearCommand{},
	"export":     whiteboard.ExportCommand{},
	"zoom-in":    whiteboard.ZoomInCommand{},
	"zoom-out":   whiteboard.ZoomOutCommand{},
	"reset-zoom": whiteboard.ResetZoomCommand{},
}

func apply(s *whiteboard.Session, ev Event) error {
	p := whiteboard.Pt(ev.X, ev.Y)
	switch ev.Type {
	case "tool":
		t, err := whiteboard.ParseTool(ev.Value)
		if err != nil {
			return err
		}
		s.SetTool(t)
	case "shape":
		st, err := whiteboard.ParseShapeType(ev.Value)
		if err != nil {
			return err
		}
		s.SetShapeType(st)
	case "color":
		s.SetColor(ev.Value)
	case "brush":
		s.SetBrushSize(ev.Size)
	case "down":
		s.PointerDown(p)
	case "move":
		s.PointerMove(p)
	case "up":
		s.PointerUp(p)
	case "leave":
		s.PointerLeave(p)
	case "globalup":
		s.GlobalPointerUp()
	case "tap":
		s.Tap(p)
	case "touchstart":
		s.TouchStart(points(ev.Touches))
	case "touchmove":
		s.TouchMove(points(ev.Touches))
	case "touchend":
		s.TouchEnd(points(ev.Touches), p)
	case "text":
		s.InsertText(ev.Value)
	case "enter":
		s.KeyEnter(ev.Shift)
	case "escape":
		s.KeyEscape()
	case "backspace":
		s.Backspace()
	case "blur":
		s.Blur()
	case "commit":
		s.CommitText()
	case "lock":
		s.SetLocked(ev.Locked)
	case "command":
		cmd, ok := commands[ev.Value]
		if !ok {
			return fmt.Errorf("%w: %q", whiteboard.ErrUnknownCommand, ev.Value)
		}
		return s.Dispatch(cmd)
	case "zoom":
		if ev.Anchor {
			return s.Dispatch(whiteboard.ZoomAtCommand{Anchor: p, Zoom: ev.Zoom})
		}
		return s.Dispatch(whiteboard.SetZoomCommand{Zoom: ev.Zoom})
	case "pan":
		return s.Dispatch(whiteboard.SetPanCommand{Pan: whiteboard.PanOffset{X: ev.X, Y: ev.Y}})
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}
