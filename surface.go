package whiteboard

import (
	"image"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

// Surface is a raster buffer backed by a gg drawing context. Pixels are
// stored as premultiplied RGBA, the layout of gg.Pixmap.
//
// A nil Surface, or one created with non-positive dimensions, has no backing
// buffer: every paint operation is a no-op and reads return empty results.
type Surface struct {
	dc     *gg.Context
	width  int
	height int
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	if width <= 0 || height <= 0 {
		return &Surface{}
	}
	return &Surface{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
	}
}

// Ready reports whether the surface has a backing buffer.
func (s *Surface) Ready() bool {
	return s != nil && s.dc != nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	if s == nil {
		return 0
	}
	return s.height
}

// Bounds returns the pixel bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width(), s.Height())
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	if !s.Ready() {
		return
	}
	s.dc.Clear()
}

// ClearRect makes the pixels inside r transparent.
func (s *Surface) ClearRect(r image.Rectangle) {
	if !s.Ready() {
		return
	}
	r = r.Intersect(s.Bounds())
	pix := s.Pixels()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := pix[(y*s.width+r.Min.X)*4 : (y*s.width+r.Max.X)*4]
		clear(row)
	}
}

// Draw runs fn against the backing context with a fresh path and identity
// transform. State changes made by fn do not leak into later calls.
func (s *Surface) Draw(fn func(dc *gg.Context) error) error {
	if !s.Ready() {
		return nil
	}
	s.dc.Push()
	defer s.dc.Pop()
	s.dc.ClearPath()
	s.dc.Identity()
	return fn(s.dc)
}

// Pixels returns the backing premultiplied RGBA bytes, row-major with a
// stride of 4*Width. The slice aliases the surface; nil when not ready.
func (s *Surface) Pixels() []uint8 {
	if !s.Ready() {
		return nil
	}
	return s.dc.ResizeTarget().Data()
}

// RGBA returns a copy of the surface as an *image.RGBA.
func (s *Surface) RGBA() *image.RGBA {
	img := image.NewRGBA(s.Bounds())
	copy(img.Pix, s.Pixels())
	return img
}

// NRGBA returns a copy of the surface with straight alpha. Channels are
// rounded, so loading the result back restores the surface exactly.
func (s *Surface) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(s.Bounds())
	pix := s.Pixels()
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		img.Pix[i+3] = a
		if a == 0 {
			continue
		}
		img.Pix[i+0] = unpremultiply(pix[i+0], a)
		img.Pix[i+1] = unpremultiply(pix[i+1], a)
		img.Pix[i+2] = unpremultiply(pix[i+2], a)
	}
	return img
}

// Alpha returns the alpha of the pixel at (x, y), 0 outside the surface.
func (s *Surface) Alpha(x, y int) uint8 {
	if !s.Ready() || x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0
	}
	return s.Pixels()[(y*s.width+x)*4+3]
}

// Load replaces the surface content with img, anchored at the top-left
// corner and clipped to the surface. RGBA sources are copied byte for byte;
// NRGBA sources are premultiplied with rounding, the inverse of NRGBA.
func (s *Surface) Load(img image.Image) {
	if !s.Ready() {
		return
	}
	s.dc.Clear()
	if img == nil {
		return
	}
	src := toRGBA(img)
	dst := s.Pixels()
	b := src.Bounds()
	w := min(b.Dx(), s.width)
	h := min(b.Dy(), s.height)
	for y := 0; y < h; y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := y * s.width * 4
		copy(dst[do:do+w*4], src.Pix[so:so+w*4])
	}
}

// toRGBA returns img in premultiplied form.
func toRGBA(img image.Image) *image.RGBA {
	switch src := img.(type) {
	case *image.RGBA:
		return src
	case *image.NRGBA:
		b := src.Bounds()
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := out.PixOffset(0, y)
			for x := 0; x < b.Dx()*4; x += 4 {
				a := src.Pix[so+x+3]
				out.Pix[do+x+0] = scale8(src.Pix[so+x+0], a)
				out.Pix[do+x+1] = scale8(src.Pix[so+x+1], a)
				out.Pix[do+x+2] = scale8(src.Pix[so+x+2], a)
				out.Pix[do+x+3] = a
			}
		}
		return out
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// scale8 returns v*k/255 rounded to nearest.
func scale8(v, k uint8) uint8 {
	return uint8((2*uint32(v)*uint32(k) + 255) / 510)
}

// unpremultiply returns c*255/a rounded to nearest, clamped to 255.
func unpremultiply(c, a uint8) uint8 {
	v := (2*uint32(c)*255 + uint32(a)) / (2 * uint32(a))
	return uint8(min(v, 255))
}

// Erase removes destination pixels under mask (destination-out): every
// channel of a pixel is scaled by 1 - coverage. mask is placed with its
// origin at (ox, oy).
func (s *Surface) Erase(mask *gg.Mask, ox, oy int) {
	if !s.Ready() || mask == nil {
		return
	}
	pix := s.Pixels()
	for my := 0; my < mask.Height(); my++ {
		y := oy + my
		if y < 0 || y >= s.height {
			continue
		}
		for mx := 0; mx < mask.Width(); mx++ {
			x := ox + mx
			if x < 0 || x >= s.width {
				continue
			}
			m := mask.At(mx, my)
			if m == 0 {
				continue
			}
			keep := 255 - m
			i := (y*s.width + x) * 4
			pix[i+0] = scale8(pix[i+0], keep)
			pix[i+1] = scale8(pix[i+1], keep)
			pix[i+2] = scale8(pix[i+2], keep)
			pix[i+3] = scale8(pix[i+3], keep)
		}
	}
}

// Resize changes the surface size, keeping existing content anchored at
// the top-left corner.
func (s *Surface) Resize(width, height int) {
	if s == nil || (width == s.width && height == s.height) {
		return
	}
	var old *image.RGBA
	if s.Ready() {
		old = s.RGBA()
		_ = s.dc.Close()
	}
	*s = *NewSurface(width, height)
	if old != nil {
		s.Load(old)
	}
}

// Close releases the backing context.
func (s *Surface) Close() {
	if !s.Ready() {
		return
	}
	_ = s.dc.Close()
	s.dc = nil
}
