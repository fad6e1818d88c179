package slippy

// EventType identifies a kind of map change notification.
type EventType uint8

const (
	EventCenterChanged EventType = iota // fires when the view centre is written
	EventZoomChanged                    // fires when the zoom level is written
)

type centerHandler struct {
	id uint32
	fn func(WorldPoint)
}

type zoomHandler struct {
	id uint32
	fn func(int)
}

type handlerRegistry struct {
	center []centerHandler
	zoom   []zoomHandler
	nextID uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventCenterChanged:
		h.reg.center = removeHandler(h.reg.center, func(c centerHandler) bool { return c.id == h.id })
	case EventZoomChanged:
		h.reg.zoom = removeHandler(h.reg.zoom, func(z zoomHandler) bool { return z.id == h.id })
	}
}

func removeHandler[T any](s []T, match func(T) bool) []T {
	for i := range s {
		if match(s[i]) {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnCenterChanged registers fn to be called with the new centre whenever it
// is written, by a setter or by interaction.
func (m *Map) OnCenterChanged(fn func(WorldPoint)) CallbackHandle {
	m.handlers.nextID++
	id := m.handlers.nextID
	m.handlers.center = append(m.handlers.center, centerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &m.handlers, event: EventCenterChanged}
}

// OnZoomChanged registers fn to be called with the new zoom level whenever
// it is written.
func (m *Map) OnZoomChanged(fn func(int)) CallbackHandle {
	m.handlers.nextID++
	id := m.handlers.nextID
	m.handlers.zoom = append(m.handlers.zoom, zoomHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &m.handlers, event: EventZoomChanged}
}

func (m *Map) fireCenterChanged() {
	c := m.view.Center
	for _, h := range m.handlers.center {
		h.fn(c)
	}
}

func (m *Map) fireZoomChanged() {
	z := m.view.Zoom
	for _, h := range m.handlers.zoom {
		h.fn(z)
	}
}
