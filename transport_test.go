package dawcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func newTestTransport(t *testing.T) *Transport {
	clock := newTestClock(t)
	return NewTransport(clock, NewEventBus(16))
}

func TestTransportInitialState(t *testing.T) {
	tr := newTestTransport(t)
	if tr.State() != Stopped {
		t.Errorf("initial state = %v, want Stopped", tr.State())
	}
	if tr.Position() != 0 {
		t.Errorf("initial position = %d, want 0", tr.Position())
	}
}

func TestTransportPlayPreservesPositionFromPause(t *testing.T) {
	tr := newTestTransport(t)
	tr.Play()
	tr.Advance(1000)
	tr.Pause()
	if tr.Position() != 1000 {
		t.Fatalf("position after pause = %d, want 1000", tr.Position())
	}
	tr.Play()
	if tr.Position() != 1000 {
		t.Errorf("position after resuming play = %d, want 1000", tr.Position())
	}
}

func TestTransportPauseNoopOutsidePlayingOrRecording(t *testing.T) {
	tr := newTestTransport(t)
	tr.Pause()
	if tr.State() != Stopped {
		t.Errorf("Pause() from Stopped changed state to %v", tr.State())
	}
}

func TestTransportStopRestoresStopPosition(t *testing.T) {
	tr := newTestTransport(t)
	if err := tr.Seek(500); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	tr.Play()
	tr.Advance(10000)
	tr.Stop()
	if tr.Position() != 500 {
		t.Errorf("position after Stop = %d, want 500 (last Stopped-state seek)", tr.Position())
	}
}

func TestTransportStopWithoutPriorSeekRestoresZero(t *testing.T) {
	tr := newTestTransport(t)
	tr.Play()
	tr.Advance(5000)
	tr.Stop()
	if tr.Position() != 0 {
		t.Errorf("position after Stop = %d, want 0", tr.Position())
	}
}

func TestTransportSeekRejectsNegative(t *testing.T) {
	tr := newTestTransport(t)
	if err := tr.Seek(-1); err == nil {
		t.Error("Seek(-1) did not fail")
	}
}

func TestTransportAdvanceNoopWhenStopped(t *testing.T) {
	tr := newTestTransport(t)
	tr.Advance(100)
	if tr.Position() != 0 {
		t.Errorf("Advance while Stopped moved position to %d", tr.Position())
	}
}

func TestTransportLoopWrapAround(t *testing.T) {
	tr := newTestTransport(t)
	if err := tr.SetLoop(true, 0, 1000); err != nil {
		t.Fatalf("SetLoop: %v", err)
	}
	if err := tr.Seek(900); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	tr.Play()
	tr.Advance(200)
	if tr.Position() != 100 {
		t.Errorf("position after loop wrap = %d, want 100", tr.Position())
	}
}

func TestTransportLoopWrapAroundProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := newTestTransport(t)
		loopStart := rapid.Int64Range(0, 10000).Draw(rt, "loopStart")
		loopLen := rapid.Int64Range(1, 10000).Draw(rt, "loopLen")
		loopEnd := loopStart + loopLen

		assert.NoError(rt, tr.SetLoop(true, loopStart, loopEnd))
		startPos := rapid.Int64Range(loopStart, loopEnd-1).Draw(rt, "startPos")
		assert.NoError(rt, tr.Seek(startPos))
		tr.Play()

		n := rapid.Int64Range(0, 100000).Draw(rt, "advance")
		tr.Advance(n)

		pos := tr.Position()
		assert.GreaterOrEqual(rt, pos, loopStart)
		assert.Less(rt, pos, loopEnd)
	})
}
