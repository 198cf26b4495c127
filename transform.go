package whiteboard

import "github.com/gogpu/gg"

// ScreenToWorld maps a client point (relative to the canvas origin) to world
// space for the given pan offset and zoom factor:
//
//	world = (client - pan) / zoom
func ScreenToWorld(client Point, pan PanOffset, zoom float64) Point {
	return client.Sub(pan.Point()).Div(zoom)
}

// WorldToScreen is the inverse of ScreenToWorld:
//
//	client = world*zoom + pan
func WorldToScreen(world Point, pan PanOffset, zoom float64) Point {
	return world.Mul(zoom).Add(pan.Point())
}

// ViewMatrix returns the world-to-screen transform as an affine matrix:
// scale by zoom, then translate by pan.
func ViewMatrix(pan PanOffset, zoom float64) gg.Matrix {
	return gg.Translate(pan.X, pan.Y).Multiply(gg.Scale(zoom, zoom))
}
