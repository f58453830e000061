// Package link tracks the BLE connection state. The stack's connect and
// disconnect callbacks enqueue events; the notify loop drains them once per
// iteration and reacts to the edges.
package link

// State is the connection state seen by the loop.
type State int

const (
	// Disconnected is the initial state.
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Event is a connection change reported by the BLE stack.
type Event struct {
	Connected bool
}

// Action is what the loop should do after a Poll.
type Action int

const (
	ActionNone Action = iota
	// ActionConnected fires once on the tick after a client connects.
	ActionConnected
	// ActionReadvertise fires once on the tick after the last client left.
	ActionReadvertise
)

func (a Action) String() string {
	switch a {
	case ActionConnected:
		return "connected"
	case ActionReadvertise:
		return "readvertise"
	default:
		return "none"
	}
}

const defaultBuffer = 8

// Tracker holds the current and previous connection flags. OnConnect and
// OnDisconnect may be called from the stack's goroutine; every other method
// belongs to the single loop goroutine.
type Tracker struct {
	events   chan Event
	current  bool
	previous bool
}

// NewTracker returns a Tracker in the Disconnected state. buffer <= 0 picks
// a small default.
func NewTracker(buffer int) *Tracker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Tracker{events: make(chan Event, buffer)}
}

// OnConnect records that a client connected.
func (t *Tracker) OnConnect() { t.push(Event{Connected: true}) }

// OnDisconnect records that a client disconnected.
func (t *Tracker) OnDisconnect() { t.push(Event{Connected: false}) }

// push never blocks the caller. When the buffer is full the oldest event is
// dropped so the most recent state always gets through.
func (t *Tracker) push(ev Event) {
	for {
		select {
		case t.events <- ev:
			return
		default:
		}
		select {
		case <-t.events:
		default:
		}
	}
}

// Poll drains pending events into the current flag, then handles the edge
// against the previous flag and synchronises the two.
func (t *Tracker) Poll() Action {
	t.drain()

	switch {
	case !t.current && t.previous:
		t.previous = t.current
		return ActionReadvertise
	case t.current && !t.previous:
		t.previous = t.current
		return ActionConnected
	}
	return ActionNone
}

func (t *Tracker) drain() {
	for {
		select {
		case ev := <-t.events:
			t.current = ev.Connected
		default:
			return
		}
	}
}

// Connected reports the state as of the last Poll.
func (t *Tracker) Connected() bool { return t.current }

// State reports the state as of the last Poll.
func (t *Tracker) State() State {
	if t.current {
		return Connected
	}
	return Disconnected
}
