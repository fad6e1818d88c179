package slippy

import (
	"image"
	"image/color"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// MapConfig holds the initial state of a Map. The zero value shows the
// world origin at MinZoom.
type MapConfig struct {
	Center WorldPoint
	Zoom   int

	// MaxConcurrentTiles bounds concurrent tile lookups per render pass.
	MaxConcurrentTiles int

	// Placeholder fills tiles the cache has not delivered yet. Nil means white.
	Placeholder color.Color
}

// Map is the top-level object: it owns the viewport, the renderer that keeps
// the raster in sync with it, pointer interaction state and change handlers.
//
// Map methods are not safe for concurrent use; call them from the goroutine
// that runs Update and Draw. Rendering happens on background goroutines.
type Map struct {
	view     Viewport
	renderer *Renderer
	handlers handlerRegistry
	debug    bool

	// Interaction
	pointer     pointerState
	injectQueue []syntheticEvent
	flight      *flight

	// Scripted testing
	testRunner      *TestRunner
	screenshotQueue []string

	// ScreenshotDir is the directory screenshots are written to.
	// Default "screenshots".
	ScreenshotDir string

	// Display
	screenImg   *ebiten.Image
	hudImg      *ebiten.Image
	rasterDirty atomic.Bool
}

// NewMap creates a map that draws tiles from cache. No raster exists until
// SetViewportSize is called with a non-zero size.
func NewMap(cache TileCache, cfg MapConfig) *Map {
	m := &Map{
		view: Viewport{
			Center: cfg.Center,
			Zoom:   ClampZoom(cfg.Zoom),
		},
		ScreenshotDir: "screenshots",
	}
	m.renderer = NewRenderer(cache, RendererConfig{
		MaxConcurrentTiles: cfg.MaxConcurrentTiles,
		Placeholder:        cfg.Placeholder,
		OnDirty:            m.markDirty,
	})
	// Seed the renderer with the initial view so the first Resize draws it.
	m.renderer.Invalidate(m.view)
	return m
}

// Viewport returns the current view.
func (m *Map) Viewport() Viewport { return m.view }

// Center returns the world point at the centre of the view.
func (m *Map) Center() WorldPoint { return m.view.Center }

// Zoom returns the current zoom level.
func (m *Map) Zoom() int { return m.view.Zoom }

// Renderer returns the map's renderer.
func (m *Map) Renderer() *Renderer { return m.renderer }

// CurrentRaster returns the composited raster for blitting, or nil if no
// size has been set yet.
func (m *Map) CurrentRaster() *RasterSurface { return m.renderer.Surface() }

// SetViewportSize resizes the view. The raster is reallocated and redrawn
// only when the size actually changes; zero sizes are recorded but not
// rendered.
func (m *Map) SetViewportSize(width, height int) {
	if width == m.view.Width && height == m.view.Height && m.renderer.Surface() != nil {
		return
	}
	m.view.Width, m.view.Height = width, height
	m.renderer.Resize(width, height)
}

// SetCenter moves the view to p and stops any FlyTo animation.
func (m *Map) SetCenter(p WorldPoint) {
	m.flight = nil
	m.moveCenter(p)
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom]. The centre
// stays fixed.
func (m *Map) SetZoom(z int) {
	m.view.Zoom = ClampZoom(z)
	m.fireZoomChanged()
	m.invalidate()
}

// moveCenter updates the centre without touching animations.
func (m *Map) moveCenter(p WorldPoint) {
	m.view.Center = p
	m.fireCenterChanged()
	m.invalidate()
}

// applyView replaces centre and zoom together with a single render.
func (m *Map) applyView(v Viewport) {
	zoomChanged := v.Zoom != m.view.Zoom
	m.view.Center = v.Center
	m.view.Zoom = ClampZoom(v.Zoom)
	if zoomChanged {
		m.fireZoomChanged()
	}
	m.fireCenterChanged()
	m.invalidate()
}

func (m *Map) invalidate() {
	m.renderer.Invalidate(m.view)
}

// markDirty is the renderer's repaint callback. It runs on render goroutines.
func (m *Map) markDirty() {
	m.rasterDirty.Store(true)
}

// SetDebugMode enables per-pass render statistics (logged at debug level
// through Logger) and the on-screen HUD.
func (m *Map) SetDebugMode(enabled bool) {
	m.debug = enabled
	m.renderer.SetDebug(enabled)
}

// Close stops rendering and waits for passes in flight.
func (m *Map) Close() {
	m.renderer.Close()
}

// Update advances animations and scripted tests and processes input.
// Call it once per tick.
func (m *Map) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	if m.testRunner != nil {
		m.testRunner.step(m)
	}
	m.updateFlight(dt)
	m.processInput()
	m.flushScreenshots()
}

// Draw blits the raster onto screen. The raster is uploaded to the GPU only
// after the renderer has drawn something new.
func (m *Map) Draw(screen *ebiten.Image) {
	surface := m.renderer.Surface()
	if surface == nil {
		return
	}
	w, h := surface.Size()
	if m.screenImg == nil || m.screenImg.Bounds().Dx() != w || m.screenImg.Bounds().Dy() != h {
		if m.screenImg != nil {
			m.screenImg.Deallocate()
		}
		m.screenImg = ebiten.NewImage(w, h)
		m.rasterDirty.Store(true)
	}
	if m.rasterDirty.Swap(false) {
		surface.View(func(img *image.RGBA) {
			m.screenImg.WritePixels(img.Pix)
		})
	}
	screen.DrawImage(m.screenImg, nil)
	if m.debug {
		m.drawHUD(screen)
	}
}
