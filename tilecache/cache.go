package tilecache

import (
	"context"
	"errors"
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/semaphore"

	"github.com/phanxgames/slippy"
)

// Errors returned by fetchers and the cache.
var (
	ErrNotFound = errors.New("tilecache: tile not found")
	ErrClosed   = errors.New("tilecache: closed")
)

// Default configuration values.
const (
	DefaultCapacity     = 512
	DefaultMaxDownloads = 4
)

// Fetcher loads one tile image.
type Fetcher interface {
	Fetch(ctx context.Context, key maptile.Tile) (image.Image, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key maptile.Tile) (image.Image, error)

// Fetch calls f(ctx, key).
func (f FetcherFunc) Fetch(ctx context.Context, key maptile.Tile) (image.Image, error) {
	return f(ctx, key)
}

// Config configures a Cache. Zero fields take the defaults.
type Config struct {
	// Capacity is the maximum number of decoded tiles kept in memory.
	Capacity int
	// MaxDownloads bounds concurrent fetches.
	MaxDownloads int64
}

type listener struct {
	id uint64
	fn func()
}

// Cache stores decoded tiles and downloads missing ones in the background.
// It is safe for concurrent use.
type Cache struct {
	store   *lru.Cache[maptile.Tile, image.Image]
	fetcher Fetcher
	sem     *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	pending   map[maptile.Tile]struct{}
	listeners []listener
	nextID    uint64
	closed    bool
}

var _ slippy.TileCache = (*Cache)(nil)

// New creates a cache that loads tiles with f.
func New(cfg Config, f Fetcher) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.MaxDownloads <= 0 {
		cfg.MaxDownloads = DefaultMaxDownloads
	}
	// lru.New only fails for a non-positive size.
	store, _ := lru.New[maptile.Tile, image.Image](cfg.Capacity)
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		store:   store,
		fetcher: f,
		sem:     semaphore.NewWeighted(cfg.MaxDownloads),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[maptile.Tile]struct{}),
	}
}

// TryGetImage returns the cached image for key. On a miss it schedules a
// download (unless one is already pending) and returns false.
func (c *Cache) TryGetImage(key maptile.Tile) (image.Image, bool) {
	if img, ok := c.store.Get(key); ok {
		return img, true
	}
	c.request(key)
	return nil, false
}

// Put stores img for key without downloading it.
func (c *Cache) Put(key maptile.Tile, img image.Image) {
	c.store.Add(key, img)
}

// Len returns the number of cached tiles.
func (c *Cache) Len() int {
	return c.store.Len()
}

// OnDownloadFinished registers fn to run after every successful download.
// fn runs on a download goroutine. The returned func unregisters it.
func (c *Cache) OnDownloadFinished(fn func()) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close cancels pending downloads and waits for them to return.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// request starts a download for key unless one is pending.
func (c *Cache) request(key maptile.Tile) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return
	}
	c.pending[key] = struct{}{}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.download(key)
}

func (c *Cache) download(key maptile.Tile) {
	defer c.wg.Done()

	img, err := c.fetch(key)

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()

	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrClosed) {
			slippy.Logger().Warn("tilecache: download failed", "tile", key, "err", err)
		}
		// No notification: a re-render would only request it again.
		return
	}
	c.notify()
}

// fetch loads and stores one tile while holding a download slot.
func (c *Cache) fetch(key maptile.Tile) (image.Image, error) {
	if err := c.sem.Acquire(c.ctx, 1); err != nil {
		return nil, ErrClosed
	}
	defer c.sem.Release(1)

	img, err := c.fetcher.Fetch(c.ctx, key)
	if err != nil {
		return nil, err
	}
	c.store.Add(key, img)
	return img, nil
}

func (c *Cache) notify() {
	c.mu.Lock()
	fns := make([]func(), len(c.listeners))
	for i, l := range c.listeners {
		fns[i] = l.fn
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
