package slippy

import "time"

// passStats holds timing and tile counts for one render pass.
// Only logged when debug is enabled.
type passStats struct {
	gen       uint64
	tiles     int
	hits      int
	misses    int
	planTime  time.Duration
	drawTime  time.Duration
	skipped   bool // superseded before it started drawing
	cancelled bool // superseded while drawing
}

// debugLog writes pass statistics at debug level.
func (r *Renderer) debugLog(s passStats) {
	if !r.debug.Load() {
		return
	}
	if s.skipped {
		Logger().Debug("slippy: pass skipped", "gen", s.gen)
		return
	}
	Logger().Debug("slippy: pass",
		"gen", s.gen,
		"tiles", s.tiles,
		"hits", s.hits,
		"misses", s.misses,
		"plan", s.planTime,
		"draw", s.drawTime,
		"cancelled", s.cancelled,
	)
}
