package slippy

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb/maptile"
)

// fakeCache is an in-memory TileCache. When gate is non-nil, lookups block
// until it is closed.
type fakeCache struct {
	mu        sync.Mutex
	tiles     map[TileKey]image.Image
	listeners map[int]func()
	nextID    int
	gate      chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		tiles:     make(map[TileKey]image.Image),
		listeners: make(map[int]func()),
	}
}

func (c *fakeCache) TryGetImage(key TileKey) (image.Image, bool) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.tiles[key]
	return img, ok
}

func (c *fakeCache) OnDownloadFinished(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *fakeCache) put(key TileKey, img image.Image) {
	c.mu.Lock()
	c.tiles[key] = img
	c.mu.Unlock()
}

func (c *fakeCache) finish() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *fakeCache) listenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// originView is a 2x2 tile view whose top-left tile is 511/511/10.
func originView() Viewport {
	return Viewport{Width: 512, Height: 512, Center: Zero, Zoom: 10}
}

func newTestRenderer(cache TileCache, onDirty func()) *Renderer {
	r := NewRenderer(cache, RendererConfig{OnDirty: onDirty})
	r.Invalidate(originView())
	return r
}

func TestRendererPlaceholder(t *testing.T) {
	var dirty atomic.Int32
	r := newTestRenderer(nil, func() { dirty.Add(1) })
	defer r.Close()

	r.Resize(512, 512)
	r.Wait()

	s := r.Surface()
	for _, p := range []image.Point{{0, 0}, {300, 10}, {10, 300}, {511, 511}} {
		if got := s.At(p.X, p.Y); got != PlaceholderWhite {
			t.Errorf("At(%v) = %v, want white", p, got)
		}
	}
	if got := dirty.Load(); got != 4 {
		t.Errorf("dirty callbacks = %d, want 4", got)
	}
}

func TestRendererCustomPlaceholder(t *testing.T) {
	grey := color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	r := NewRenderer(nil, RendererConfig{Placeholder: grey})
	defer r.Close()
	r.Invalidate(originView())
	r.Resize(256, 256)
	r.Wait()
	if got := r.Surface().At(100, 100); got != grey {
		t.Errorf("At(100,100) = %v, want %v", got, grey)
	}
}

func TestRendererDrawsCachedTiles(t *testing.T) {
	cache := newFakeCache()
	cache.put(maptile.New(511, 511, 10), solidImage(TileSize, TileSize, red))
	r := newTestRenderer(cache, nil)
	defer r.Close()

	r.Resize(512, 512)
	r.Wait()

	s := r.Surface()
	if got := s.At(10, 10); got != red {
		t.Errorf("At(10,10) = %v, want red", got)
	}
	if got := s.At(300, 300); got != PlaceholderWhite {
		t.Errorf("At(300,300) = %v, want white", got)
	}
}

func TestRendererCoalescesPasses(t *testing.T) {
	cache := newFakeCache()
	cache.gate = make(chan struct{})

	var mu sync.Mutex
	var passes []*renderPass
	r := NewRenderer(cache, RendererConfig{})
	r.passHook = func(p *renderPass) {
		mu.Lock()
		passes = append(passes, p)
		mu.Unlock()
	}
	defer r.Close()

	r.Invalidate(originView())
	r.Resize(512, 512)
	for i := 1; i <= 5; i++ {
		v := originView()
		v.Center.Lon = float64(i)
		r.Invalidate(v)
	}
	close(cache.gate)
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(passes) != 6 {
		t.Fatalf("passes = %d, want 6", len(passes))
	}
	for i, p := range passes[:len(passes)-1] {
		if !p.cancelled() {
			t.Errorf("pass %d not cancelled", i+1)
		}
		if n := p.drawn.Load(); n != 0 {
			t.Errorf("superseded pass %d drew %d tiles, want 0", i+1, n)
		}
	}
	last := passes[len(passes)-1]
	if last.cancelled() {
		t.Error("last pass cancelled")
	}
	want := int32(len(PlanTiles(Viewport{Width: 512, Height: 512, Center: WorldPoint{Lon: 5}, Zoom: 10}).Tiles))
	if n := last.drawn.Load(); n != want {
		t.Errorf("last pass drew %d tiles, want %d", n, want)
	}
	if g := r.Generation(); g != 6 {
		t.Errorf("Generation = %d, want 6", g)
	}
}

func TestRendererRecoversDirtyPanic(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	r := newTestRenderer(nil, func() { panic("boom") })
	defer r.Close()

	r.Resize(256, 256)
	r.Wait()

	if got := r.Surface().At(0, 0); got != PlaceholderWhite {
		t.Errorf("At(0,0) = %v, want white", got)
	}
	if !strings.Contains(buf.String(), "repaint callback panicked") {
		t.Errorf("log = %q, want recovered panic warning", buf.String())
	}
}

func TestRendererResizeZeroIgnored(t *testing.T) {
	r := newTestRenderer(nil, nil)
	defer r.Close()

	r.Resize(0, 600)
	r.Resize(800, 0)
	if r.Surface() != nil {
		t.Error("zero resize allocated a surface")
	}
	if g := r.Generation(); g != 0 {
		t.Errorf("Generation = %d, want 0", g)
	}
}

func TestRendererResizeReallocates(t *testing.T) {
	r := newTestRenderer(nil, nil)
	defer r.Close()

	r.Resize(256, 256)
	first := r.Surface()
	r.Resize(640, 480)
	r.Wait()
	if r.Surface() == first {
		t.Error("Resize kept the old surface")
	}
	if w, h := r.Surface().Size(); w != 640 || h != 480 {
		t.Errorf("Size = %dx%d, want 640x480", w, h)
	}
	if got := r.Surface().At(639, 479); got != PlaceholderWhite {
		t.Errorf("At(639,479) = %v, want white", got)
	}
}

func TestRendererEmptyViewportNoPass(t *testing.T) {
	r := newTestRenderer(nil, nil)
	defer r.Close()
	r.Resize(256, 256)
	r.Wait()
	before := r.Generation()

	r.Invalidate(Viewport{Width: 0, Height: 256, Zoom: 5})
	if g := r.Generation(); g != before {
		t.Errorf("Generation = %d, want %d", g, before)
	}
}

func TestRendererDownloadFinishedRerenders(t *testing.T) {
	cache := newFakeCache()
	r := newTestRenderer(cache, nil)
	defer r.Close()

	r.Resize(512, 512)
	r.Wait()
	if got := r.Surface().At(10, 10); got != PlaceholderWhite {
		t.Fatalf("At(10,10) = %v, want white before download", got)
	}

	before := r.Generation()
	cache.put(maptile.New(511, 511, 10), solidImage(TileSize, TileSize, red))
	cache.finish()
	r.Wait()

	if g := r.Generation(); g != before+1 {
		t.Errorf("Generation = %d, want %d", g, before+1)
	}
	if got := r.Surface().At(10, 10); got != red {
		t.Errorf("At(10,10) = %v, want red after download", got)
	}
}

func TestRendererClose(t *testing.T) {
	cache := newFakeCache()
	r := newTestRenderer(cache, nil)
	r.Resize(256, 256)
	r.Close()

	if n := cache.listenerCount(); n != 0 {
		t.Errorf("listeners after Close = %d, want 0", n)
	}
	before := r.Generation()
	r.Invalidate(originView())
	if g := r.Generation(); g != before {
		t.Errorf("Generation after Close = %d, want %d", g, before)
	}
	r.Close() // idempotent
}

func TestRendererWaitDuringInvalidate(t *testing.T) {
	cache := newFakeCache()
	r := newTestRenderer(cache, nil)
	defer r.Close()
	r.Resize(256, 256)

	// Download notifications keep starting passes while Wait is called.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			cache.finish()
		}
	}()
	for i := 0; i < 200; i++ {
		r.Wait()
	}
	<-done
	r.Wait()

	if g := r.Generation(); g != 201 {
		t.Errorf("Generation = %d, want 201", g)
	}
	r.mu.Lock()
	active := r.active
	r.mu.Unlock()
	if active != 0 {
		t.Errorf("active passes after Wait = %d, want 0", active)
	}
}
