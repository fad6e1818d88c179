// Package tilecache is a small in-memory tile cache with HTTP downloading
// that satisfies [slippy.TileCache].
//
// Lookups never block: a miss schedules a download and returns at once.
// When a download succeeds the image is stored and every OnDownloadFinished
// listener is called, which makes the map re-render and pick it up. Failed
// downloads are logged through [slippy.Logger] and retried the next time the
// tile is looked up.
//
// Eviction is plain LRU by entry count. There is no disk persistence.
package tilecache
