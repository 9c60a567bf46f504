package dawcore

import "sync"

// TransportState is one of the four states of the transport state
// machine.
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	Paused
	Recording
)

func (s TransportState) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Recording:
		return "Recording"
	default:
		return "Unknown"
	}
}

// Transport is the session's play/pause/stop/record state machine and
// position counter. It holds a non-owning reference to a Clock used
// only to annotate position-change notifications with musical time;
// Clock lifetime must outlive the Transport's.
//
// All mutating methods are guarded by a short critical section (mu), per
// the "Asynchronous transport operations" design note: the source's
// async play/pause/stop/record become plain synchronous methods here,
// with change notifications delivered via EventBus instead of callbacks.
type Transport struct {
	mu sync.Mutex

	clock *Clock
	bus   *EventBus

	state        TransportState
	position     int64
	stopPosition int64

	isLooping bool
	loopStart int64
	loopEnd   int64
}

// NewTransport creates a Stopped transport at position 0, referencing
// clock for musical-time annotations on position events.
func NewTransport(clock *Clock, bus *EventBus) *Transport {
	return &Transport{clock: clock, bus: bus}
}

// State returns the current transport state.
func (t *Transport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Position returns the current sample position.
func (t *Transport) Position() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// LoopWindow returns whether looping is enabled and its bounds.
func (t *Transport) LoopWindow() (enabled bool, start, end int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isLooping, t.loopStart, t.loopEnd
}

// Play transitions to Playing from any state, preserving the current
// position when coming from Paused or Recording.
func (t *Transport) Play() {
	t.mu.Lock()
	prev := t.state
	t.state = Playing
	t.mu.Unlock()
	t.emitStateChange(prev, Playing)
}

// Pause transitions Playing or Recording to Paused without changing
// position. Called from any other state it is a no-op, since the state
// diagram defines pause only out of Playing/Recording.
func (t *Transport) Pause() {
	t.mu.Lock()
	prev := t.state
	if prev != Playing && prev != Recording {
		t.mu.Unlock()
		return
	}
	t.state = Paused
	t.mu.Unlock()
	t.emitStateChange(prev, Paused)
}

// Stop transitions to Stopped from any state and restores position to
// stop_position — the position last set by an explicit Seek while
// Stopped (or 0, if Seek was never called while Stopped).
func (t *Transport) Stop() {
	t.mu.Lock()
	prev := t.state
	t.state = Stopped
	t.position = t.stopPosition
	t.mu.Unlock()
	t.emitStateChange(prev, Stopped)
	t.emitPositionChange()
}

// Record transitions to Recording from any state without changing
// position.
func (t *Transport) Record() {
	t.mu.Lock()
	prev := t.state
	t.state = Recording
	t.mu.Unlock()
	t.emitStateChange(prev, Recording)
}

// Seek sets the position directly. While Stopped, it also updates
// stop_position, so a subsequent Stop restores to this point.
func (t *Transport) Seek(p int64) error {
	if p < 0 {
		return invalidArgf("seek position %d must be non-negative", p)
	}
	t.mu.Lock()
	t.position = p
	if t.state == Stopped {
		t.stopPosition = p
	}
	t.mu.Unlock()
	t.emitPositionChange()
	return nil
}

// Rewind is equivalent to Seek(0).
func (t *Transport) Rewind() error {
	return t.Seek(0)
}

// SetLoop configures the loop window. If start >= end, end is
// auto-adjusted to start plus one bar, per the invariant that a
// violating assignment auto-corrects the other bound.
func (t *Transport) SetLoop(enabled bool, start, end int64) error {
	if start < 0 {
		return invalidArgf("loop start %d must be non-negative", start)
	}
	if end < 0 {
		return invalidArgf("loop end %d must be non-negative", end)
	}
	if start >= end {
		end = start + t.clock.BarLengthSamples()
	}
	t.mu.Lock()
	t.isLooping = enabled
	t.loopStart = start
	t.loopEnd = end
	t.mu.Unlock()
	return nil
}

// Advance moves the position forward by n samples while Playing or
// Recording, wrapping at the loop window if one is active; it is a
// no-op in any other state or when n == 0.
func (t *Transport) Advance(n int64) {
	if n < 0 {
		return
	}
	t.mu.Lock()
	if t.state != Playing && t.state != Recording {
		t.mu.Unlock()
		return
	}
	newPos := t.position + n
	if t.isLooping && t.loopEnd > t.loopStart && newPos >= t.loopEnd {
		overflow := newPos - t.loopEnd
		loopLen := t.loopEnd - t.loopStart
		newPos = t.loopStart + overflow%loopLen
	}
	t.position = newPos
	t.mu.Unlock()
	if n > 0 {
		t.emitPositionChange()
	}
}

func (t *Transport) emitStateChange(prev, next TransportState) {
	if prev == next || t.bus == nil {
		return
	}
	t.bus.publish(Event{
		Kind:  EventTransportState,
		Field: "State",
		Value: next,
	})
}

func (t *Transport) emitPositionChange() {
	if t.bus == nil {
		return
	}
	t.mu.Lock()
	pos := t.position
	t.mu.Unlock()

	mt := t.clock.SamplesToMusicalTime(pos)
	t.bus.publish(Event{
		Kind:  EventTransportPosition,
		Field: "Position",
		Value: pos,
		Position: &PositionEvent{
			Sample:  pos,
			Seconds: t.clock.SamplesToSeconds(pos),
			Bar:     mt.Bar,
			Beat:    mt.Beat,
			Tick:    mt.Tick,
		},
	})
}
