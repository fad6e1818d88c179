package slippy

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticWheel
)

// syntheticEvent is a single injected input event in viewport pixels.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	pressed bool
	delta   int
}

// InjectPress queues a pointer press at viewport pixel (x, y). Each queued
// event is consumed by one Update, in place of real input for that frame.
func (m *Map) InjectPress(x, y float64) {
	m.injectQueue = append(m.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use it between
// InjectPress and InjectRelease to simulate a drag.
func (m *Map) InjectMove(x, y float64) {
	m.injectQueue = append(m.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y, pressed: true})
}

// InjectRelease queues a pointer release at (x, y).
func (m *Map) InjectRelease(x, y float64) {
	m.injectQueue = append(m.injectQueue, syntheticEvent{kind: syntheticPointer, x: x, y: y})
}

// InjectWheel queues a wheel zoom of delta levels with the cursor at (x, y).
func (m *Map) InjectWheel(x, y float64, delta int) {
	m.injectQueue = append(m.injectQueue, syntheticEvent{kind: syntheticWheel, x: x, y: y, delta: delta})
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2 linearly
// interpolated moves, and a move plus release at (toX, toY). The sequence
// consumes frames+1 frames. Minimum frames is 2.
func (m *Map) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	m.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		m.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	// Land on the end point before releasing so the full distance is panned.
	m.InjectMove(toX, toY)
	m.InjectRelease(toX, toY)
}

// processInjectedInput pops one queued event and applies it. It reports
// whether an event was consumed.
func (m *Map) processInjectedInput() bool {
	if len(m.injectQueue) == 0 {
		return false
	}
	evt := m.injectQueue[0]
	copy(m.injectQueue, m.injectQueue[1:])
	m.injectQueue = m.injectQueue[:len(m.injectQueue)-1]

	switch evt.kind {
	case syntheticWheel:
		m.Wheel(evt.x, evt.y, evt.delta)
	default:
		m.processPointer(evt.x, evt.y, evt.pressed)
	}
	return true
}
