// Package whiteboard implements the drawing engine of a multi-page
// whiteboard.
//
// # Overview
//
// A Session owns one visible canvas: a committed surface holding the page
// content, a preview surface for shapes being dragged, the viewport (zoom
// and pan) and the gesture state. Hosts feed it pointer, touch and keyboard
// input and render the frame returned by RenderView.
//
//	s, err := whiteboard.NewSession(800, 600,
//		whiteboard.WithCommitHandler(func(uri string) { save(uri) }),
//	)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.SetTool(whiteboard.ToolPen)
//	s.PointerDown(whiteboard.Pt(10, 10))
//	s.PointerMove(whiteboard.Pt(50, 40))
//	s.PointerUp(whiteboard.Pt(50, 40))
//
// # Coordinates
//
// Content is stored in world coordinates. A client point maps to world
// coordinates as (client - pan) / zoom. Zoom is clamped to [MinZoom, MaxZoom]
// and every zoom change keeps the world point under its anchor fixed.
//
// # Surfaces
//
// Surfaces are rasterized with github.com/gogpu/gg and hold premultiplied
// RGBA pixels, the layout of gg.Pixmap. Serialization converts to straight
// alpha with rounding, so a committed page survives a PNG data URI round
// trip unchanged.
// The background is never painted onto the committed surface; Composite
// flattens background, pattern and content for export.
//
// # Events
//
// Commit, export, zoom and pan events are delivered to the handlers given
// as SessionOption values, after the session lock is released.
//
// # GPU
//
// Rendering runs on the CPU by default. Importing github.com/gogpu/gg/gpu
// for side effects enables the GPU accelerator.
package whiteboard
