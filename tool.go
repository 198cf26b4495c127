package whiteboard

import (
	"fmt"
	"strings"
)

// Tool selects how pointer input is interpreted and rendered.
type Tool int

// Tools.
const (
	ToolPen Tool = iota
	ToolEraser
	ToolShape
	ToolArrow
	ToolText
	ToolHand
)

var toolNames = [...]string{"pen", "eraser", "shape", "arrow", "text", "hand"}

// String returns the tool name.
func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// draws reports whether the tool enters the Drawing state on pointer-down.
func (t Tool) draws() bool {
	switch t {
	case ToolPen, ToolEraser, ToolShape, ToolArrow:
		return true
	default:
		return false
	}
}

// previews reports whether the tool paints a preview while dragging and
// commits on release.
func (t Tool) previews() bool {
	return t == ToolShape || t == ToolArrow
}

// ParseTool parses a tool name as returned by Tool.String.
func ParseTool(s string) (Tool, error) {
	for i, name := range toolNames {
		if strings.EqualFold(s, name) {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("%w: tool %q", ErrUnknownName, s)
}

// ShapeType is the geometry drawn by ToolShape.
type ShapeType int

// Shape types.
const (
	ShapeRectangle ShapeType = iota
	ShapeCircle
	ShapeLine
	ShapeTriangle
)

var shapeNames = [...]string{"rectangle", "circle", "line", "triangle"}

// String returns the shape name.
func (s ShapeType) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("ShapeType(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShapeType parses a shape name as returned by ShapeType.String.
func ParseShapeType(s string) (ShapeType, error) {
	for i, name := range shapeNames {
		if strings.EqualFold(s, name) {
			return ShapeType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: shape %q", ErrUnknownName, s)
}

// Pattern is the background pattern painted under committed content.
type Pattern int

// Background patterns.
const (
	PatternNone Pattern = iota
	PatternGrid
	PatternLines
	PatternDotted
)

var patternNames = [...]string{"none", "grid", "lines", "dotted"}

// String returns the pattern name.
func (p Pattern) String() string {
	if p < 0 || int(p) >= len(patternNames) {
		return fmt.Sprintf("Pattern(%d)", int(p))
	}
	return patternNames[p]
}

// ParsePattern parses a pattern name as returned by Pattern.String.
func ParsePattern(s string) (Pattern, error) {
	for i, name := range patternNames {
		if strings.EqualFold(s, name) {
			return Pattern(i), nil
		}
	}
	return 0, fmt.Errorf("%w: pattern %q", ErrUnknownName, s)
}
