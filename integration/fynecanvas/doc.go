// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package fynecanvas shows a whiteboard.Session in a Fyne window.
//
// Canvas is a widget that renders Session.RenderView through a
// canvas.Raster and translates Fyne input into session calls:
//
//   - drags become PointerDown, PointerMove and PointerUp
//   - leaving the widget finishes the current drag
//   - taps open and commit the text editor
//   - the scroll wheel zooms about the pointer
//   - typed runes and Enter, Shift+Enter, Escape, Backspace edit text
//
// # Usage
//
//	s, _ := whiteboard.NewSession(800, 600)
//	c, _ := fynecanvas.New(s)
//	w.SetContent(c)
//
// Page loads finish in the background; pass the channel returned by
// Session.LoadPage to Await to refresh when the page is painted.
package fynecanvas
