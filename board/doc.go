// Package board keeps whiteboards and their pages in memory and binds them
// to a whiteboard.Session.
//
// A Store holds up to MaxWhiteboards whiteboards of up to
// MaxPagesPerWhiteboard pages each. Every page stores its committed surface
// as a PNG data URI. A Workspace persists each commit to the active page and
// loads the target page when the user switches pages or whiteboards.
package board
