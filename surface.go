package slippy

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// RasterSurface is the offscreen composited map image. Writes are
// serialized through its lock; readers take the read lock via View or
// Snapshot.
type RasterSurface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewRasterSurface allocates a transparent surface of the given size.
func NewRasterSurface(width, height int) *RasterSurface {
	return &RasterSurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the surface dimensions in pixels.
func (s *RasterSurface) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Bounds returns the surface rectangle.
func (s *RasterSurface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// tileRect returns the TileSize square whose top-left corner is dest.
func tileRect(dest image.Point) image.Rectangle {
	return image.Rectangle{Min: dest, Max: dest.Add(image.Pt(TileSize, TileSize))}
}

// DrawTile copies src into the tile square at dest. Sources that are not
// TileSize pixels square (for example high-DPI tiles) are resampled to fit.
// Pixels falling outside the surface are clipped.
func (s *RasterSurface) DrawTile(src image.Image, dest image.Point) {
	r := tileRect(dest)
	s.mu.Lock()
	defer s.mu.Unlock()
	sb := src.Bounds()
	if sb.Dx() == TileSize && sb.Dy() == TileSize {
		draw.Draw(s.img, r, src, sb.Min, draw.Src)
		return
	}
	draw.BiLinear.Scale(s.img, r, src, sb, draw.Src, nil)
}

// FillTile paints the tile square at dest with a solid colour.
func (s *RasterSurface) FillTile(dest image.Point, c color.Color) {
	r := tileRect(dest)
	s.mu.Lock()
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
	s.mu.Unlock()
}

// View calls fn with the live image while holding the read lock. fn must
// not retain the image or write to it.
func (s *RasterSurface) View(fn func(img *image.RGBA)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.img)
}

// Snapshot returns a copy of the current pixels.
func (s *RasterSurface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := image.NewRGBA(s.img.Bounds())
	copy(cp.Pix, s.img.Pix)
	return cp
}

// At returns the colour of one pixel.
func (s *RasterSurface) At(x, y int) color.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.RGBAAt(x, y)
}
