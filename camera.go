package slippy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// flight is an active FlyTo animation. Positions are in tile space at the
// zoom the flight started at; the tween drives progress from 0 to 1.
type flight struct {
	from, to TilePoint
	zoom     int
	tween    *gween.Tween
}

// ZoomIn increases the zoom level by one, keeping the centre fixed.
func (m *Map) ZoomIn() {
	m.SetZoom(m.view.Zoom + 1)
}

// ZoomOut decreases the zoom level by one, keeping the centre fixed.
func (m *Map) ZoomOut() {
	m.SetZoom(m.view.Zoom - 1)
}

// FlyTo animates the centre to target over duration seconds. The path takes
// the short way around the antimeridian. A non-positive duration jumps
// immediately. Pointer presses, wheel zooms and SetCenter cancel the flight.
func (m *Map) FlyTo(target WorldPoint, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		m.SetCenter(target)
		return
	}
	if easeFn == nil {
		easeFn = ease.InOutQuad
	}
	z := m.view.Zoom
	from := WorldToTile(m.view.Center, z)
	to := WorldToTile(target, z)

	n := float64(NumTiles(z))
	switch dx := to.X - from.X; {
	case dx > n/2:
		to.X -= n
	case dx < -n/2:
		to.X += n
	}

	m.flight = &flight{
		from:  from,
		to:    to,
		zoom:  z,
		tween: gween.New(0, 1, duration, easeFn),
	}
}

// Flying reports whether a FlyTo animation is in progress.
func (m *Map) Flying() bool {
	return m.flight != nil
}

// updateFlight advances the FlyTo animation by dt seconds.
func (m *Map) updateFlight(dt float32) {
	f := m.flight
	if f == nil {
		return
	}
	p, done := f.tween.Update(dt)
	t := float64(p)
	pos := TilePoint{
		X: f.from.X + (f.to.X-f.from.X)*t,
		Y: f.from.Y + (f.to.Y-f.from.Y)*t,
	}
	if done {
		m.flight = nil
		pos = f.to
	}
	m.moveCenter(TileToWorld(pos, f.zoom))
}
