package dawcore

import (
	"math"
	"sync/atomic"
)

// meterHistoryFrames is the depth of the peak-hold ring kept per track,
// fed once per ProcessAudio call on an unmuted track.
const meterHistoryFrames = 64

// levelMeter is a fixed-capacity ring over recent per-buffer peak
// values, the same "allocate once, overwrite in place" idiom as the
// teacher's comb.Comb ring over raw audio, repurposed here from
// reverb-tail storage to peak history: an observer thread can read
// recent peaks without ever touching the audio thread's hot path,
// because the write side is a single atomic store per slot.
type levelMeter struct {
	ring   []atomic.Uint64 // bit-punned float64 peak values
	cursor atomic.Uint64
}

func newLevelMeter(capacity int) *levelMeter {
	if capacity <= 0 {
		capacity = 1
	}
	return &levelMeter{ring: make([]atomic.Uint64, capacity)}
}

// record computes the peak absolute value in buf and stores it in the
// next ring slot. Called once per ProcessAudio invocation on the audio
// thread (a muted track returns before recording); never allocates.
func (m *levelMeter) record(buf []float32) {
	var peak float64
	for _, v := range buf {
		av := math.Abs(float64(v))
		if av > peak {
			peak = av
		}
	}
	idx := m.cursor.Add(1) - 1
	slot := &m.ring[int(idx)%len(m.ring)]
	slot.Store(math.Float64bits(peak))
}

// RecentPeaks returns up to capacity recent per-buffer peak values,
// oldest first. Safe to call from any thread.
func (m *levelMeter) RecentPeaks() []float64 {
	n := int(m.cursor.Load())
	count := len(m.ring)
	if n < count {
		count = n
	}
	out := make([]float64, count)
	start := n - count
	for i := 0; i < count; i++ {
		idx := (start + i) % len(m.ring)
		out[i] = math.Float64frombits(m.ring[idx].Load())
	}
	return out
}
