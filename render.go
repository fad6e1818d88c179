package slippy

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// TileCache resolves tile keys to decoded images. It is supplied by the
// host; slippy only reads from it.
type TileCache interface {
	// TryGetImage returns the image for key if it is available now. It must
	// not block; a miss means the tile is not available yet.
	TryGetImage(key TileKey) (image.Image, bool)

	// OnDownloadFinished registers fn to be called whenever any tile
	// download completes. The returned func unregisters it.
	OnDownloadFinished(fn func()) (remove func())
}

// defaultMaxConcurrentTiles bounds the per-pass tile lookups in flight.
const defaultMaxConcurrentTiles = 16

// RendererConfig configures a Renderer. The zero value is usable.
type RendererConfig struct {
	// MaxConcurrentTiles bounds concurrent tile lookups within one pass.
	// Zero means 16.
	MaxConcurrentTiles int

	// Placeholder fills tiles the cache cannot serve yet. Nil means white.
	Placeholder color.Color

	// OnDirty is called after each tile is drawn so the host can repaint.
	// It may be called from any goroutine. Panics are recovered and logged.
	OnDirty func()
}

// renderPass is one cancellable "plan, fetch, composite" run.
type renderPass struct {
	gen      uint64
	canceled atomic.Bool
	drawn    atomic.Int32
}

func (p *renderPass) cancel()         { p.canceled.Store(true) }
func (p *renderPass) cancelled() bool { return p.canceled.Load() }

// Renderer keeps a RasterSurface in sync with a Viewport. Each Invalidate
// supersedes the pass in flight; passes take turns writing to the surface.
type Renderer struct {
	cache       TileCache
	placeholder color.Color
	limit       int
	onDirty     func()
	unsubscribe func()

	// passMu is held by the pass currently allowed to write to the surface.
	passMu sync.Mutex

	mu      sync.Mutex
	surface *RasterSurface
	view    Viewport
	current *renderPass
	gen     uint64
	closed  bool

	// active counts passes not yet settled; settled is broadcast when it
	// drops to zero. Invalidate may run on download goroutines while Wait
	// blocks.
	active  int
	settled *sync.Cond

	debug atomic.Bool

	// passHook, when set, observes every pass as it is created.
	passHook func(*renderPass)
}

// NewRenderer creates a renderer drawing tiles from cache. Nothing is drawn
// until Resize gives it a non-empty surface.
func NewRenderer(cache TileCache, cfg RendererConfig) *Renderer {
	if cache == nil {
		cache = emptyCache{}
	}
	r := &Renderer{
		cache:       cache,
		placeholder: cfg.Placeholder,
		limit:       cfg.MaxConcurrentTiles,
		onDirty:     cfg.OnDirty,
	}
	r.settled = sync.NewCond(&r.mu)
	if r.placeholder == nil {
		r.placeholder = PlaceholderWhite
	}
	if r.limit <= 0 {
		r.limit = defaultMaxConcurrentTiles
	}
	// Any finished download may affect any visible tile.
	r.unsubscribe = cache.OnDownloadFinished(r.refresh)
	return r
}

// SetDebug enables per-pass statistics logging at debug level.
func (r *Renderer) SetDebug(enabled bool) {
	r.debug.Store(enabled)
}

// Surface returns the current raster, or nil before the first Resize.
func (r *Renderer) Surface() *RasterSurface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface
}

// Generation returns the number of passes started so far.
func (r *Renderer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Resize discards the raster, allocates a new one of the given size and
// re-renders the last viewport at that size. Zero dimensions are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	r.surface = NewRasterSurface(width, height)
	v := r.view
	r.mu.Unlock()

	v.Width, v.Height = width, height
	r.Invalidate(v)
}

// Invalidate starts a new render pass for v, cancelling the pass in flight.
// It returns immediately; the pass runs on its own goroutine.
func (r *Renderer) Invalidate(v Viewport) {
	r.mu.Lock()
	r.view = v
	if r.closed || r.surface == nil || v.Empty() {
		r.mu.Unlock()
		return
	}
	if r.current != nil {
		r.current.cancel()
	}
	r.gen++
	p := &renderPass{gen: r.gen}
	r.current = p
	surface := r.surface
	hook := r.passHook
	r.active++
	r.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	// Plan against the surface actually being drawn.
	v.Width, v.Height = surface.Size()
	go r.run(p, surface, v)
}

// refresh re-renders the last viewport.
func (r *Renderer) refresh() {
	r.mu.Lock()
	v := r.view
	r.mu.Unlock()
	r.Invalidate(v)
}

// Wait blocks until every started pass has settled. Passes started while
// waiting are waited for too. It is safe to call concurrently with
// Invalidate.
func (r *Renderer) Wait() {
	r.mu.Lock()
	for r.active > 0 {
		r.settled.Wait()
	}
	r.mu.Unlock()
}

// passDone marks one pass as settled.
func (r *Renderer) passDone() {
	r.mu.Lock()
	r.active--
	if r.active == 0 {
		r.settled.Broadcast()
	}
	r.mu.Unlock()
}

// Close cancels the pass in flight, stops listening to the cache and waits
// for outstanding passes. Invalidate is a no-op afterwards.
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.current != nil {
		r.current.cancel()
	}
	r.mu.Unlock()

	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.Wait()
}

// run executes one pass. Tile lookups run concurrently; each tile checks the
// pass token right before it draws.
func (r *Renderer) run(p *renderPass, surface *RasterSurface, v Viewport) {
	defer r.passDone()

	r.passMu.Lock()
	defer r.passMu.Unlock()

	stats := passStats{gen: p.gen}
	if p.cancelled() {
		stats.skipped = true
		r.debugLog(stats)
		return
	}

	t0 := time.Now()
	grid := PlanTiles(v)
	stats.planTime = time.Since(t0)
	stats.tiles = len(grid.Tiles)

	t0 = time.Now()
	var hits, misses atomic.Int32
	var g errgroup.Group
	g.SetLimit(r.limit)
	for _, t := range grid.Tiles {
		if p.cancelled() {
			break
		}
		g.Go(func() error {
			img, ok := r.cache.TryGetImage(t.Key)
			if p.cancelled() {
				return nil
			}
			if ok {
				surface.DrawTile(img, t.Dest)
				hits.Add(1)
			} else {
				surface.FillTile(t.Dest, r.placeholder)
				misses.Add(1)
			}
			p.drawn.Add(1)
			r.markDirty()
			return nil
		})
	}
	_ = g.Wait()

	stats.drawTime = time.Since(t0)
	stats.hits = int(hits.Load())
	stats.misses = int(misses.Load())
	stats.cancelled = p.cancelled()
	r.debugLog(stats)
}

// markDirty asks the host to repaint. A panicking callback is logged and
// otherwise ignored.
func (r *Renderer) markDirty() {
	if r.onDirty == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			Logger().Warn("slippy: repaint callback panicked", "panic", rec)
		}
	}()
	r.onDirty()
}

// emptyCache never has a tile.
type emptyCache struct{}

func (emptyCache) TryGetImage(TileKey) (image.Image, bool) { return nil, false }
func (emptyCache) OnDownloadFinished(func()) func()      { return func() {} }
