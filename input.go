package slippy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pointerPhase is the interaction state: idle or dragging the map.
type pointerPhase uint8

const (
	pointerIdle pointerPhase = iota
	pointerDragging
)

type pointerState struct {
	phase  pointerPhase
	startX float64
	startY float64
	lastX  float64
	lastY  float64
}

// Dragging reports whether a pointer drag is in progress.
func (m *Map) Dragging() bool {
	return m.pointer.phase == pointerDragging
}

// PointerPress starts a drag at viewport pixel (x, y). It cancels any FlyTo
// animation.
func (m *Map) PointerPress(x, y float64) {
	m.flight = nil
	m.pointer = pointerState{
		phase:  pointerDragging,
		startX: x, startY: y,
		lastX: x, lastY: y,
	}
}

// PointerMove pans the map by the pointer motion since the last event while
// dragging. Moving right moves the visible world left, so the point under
// the pointer follows it. Ignored when idle.
func (m *Map) PointerMove(x, y float64) {
	if m.pointer.phase != pointerDragging {
		return
	}
	from := ScreenPoint{X: m.pointer.lastX, Y: m.pointer.lastY}
	to := ScreenPoint{X: x, Y: y}
	m.pointer.lastX, m.pointer.lastY = x, y
	if from == to {
		return
	}
	m.moveCenter(dragView(m.view, from, to).Center)
}

// PointerRelease ends the drag.
func (m *Map) PointerRelease(x, y float64) {
	m.pointer.phase = pointerIdle
}

// Wheel zooms by delta levels keeping the world point under viewport pixel
// (x, y) fixed on screen.
func (m *Map) Wheel(x, y float64, delta int) {
	if delta == 0 {
		return
	}
	m.flight = nil
	m.applyView(anchorZoom(m.view, ScreenPoint{X: x, Y: y}, delta))
}

// dragView returns v with its centre shifted against the pointer motion
// from -> to, computed in tile space at v's zoom.
func dragView(v Viewport, from, to ScreenPoint) Viewport {
	d := ScreenToTile(to.Sub(from))
	c := WorldToTile(v.Center, v.Zoom).Sub(d)
	v.Center = TileToWorld(c, v.Zoom)
	return v
}

// anchorZoom returns v zoomed by delta levels such that the world point under
// cursor before the zoom is under cursor after it. Everything is derived from
// the pre-zoom v, never from state mutated mid-computation.
func anchorZoom(v Viewport, cursor ScreenPoint, delta int) Viewport {
	anchor := v.ScreenToWorld(cursor)

	next := v
	next.Zoom = ClampZoom(v.Zoom + delta)

	// Where the anchor lands if only the zoom changed, and how far that is
	// from where it must stay.
	drift := ScreenToTile(next.WorldToScreen(anchor).Sub(cursor))

	c := WorldToTile(v.Center, next.Zoom).Add(drift)
	next.Center = TileToWorld(c, next.Zoom)
	return next
}

// processInput is called from Update. Injected events take priority over
// real input for the frame they are consumed in.
func (m *Map) processInput() {
	if m.processInjectedInput() {
		return
	}
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	m.processPointer(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	if _, dy := ebiten.Wheel(); dy != 0 {
		m.Wheel(x, y, wheelSteps(dy))
	}
	m.processKeys()
}

// processKeys steps the zoom with the +/- keys, like the zoom buttons of a
// map control.
func (m *Map) processKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		m.ZoomIn()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		m.ZoomOut()
	}
}

// processPointer turns a sampled button state into press/move/release
// transitions.
func (m *Map) processPointer(x, y float64, pressed bool) {
	switch {
	case pressed && m.pointer.phase == pointerIdle:
		m.PointerPress(x, y)
	case pressed:
		m.PointerMove(x, y)
	case m.pointer.phase == pointerDragging:
		m.PointerRelease(x, y)
	}
}

// wheelSteps maps a wheel offset to one zoom level in its direction.
// Trackpads report fractional offsets that would otherwise truncate to zero.
func wheelSteps(dy float64) int {
	switch {
	case dy > 0:
		return 1
	case dy < 0:
		return -1
	}
	return 0
}
