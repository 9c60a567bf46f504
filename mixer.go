package dawcore

import "math"

// Mixer is the real-time core: it renders every audible track into an
// interleaved output buffer once per hardware callback.
//
// The track list is published as a copy-on-write snapshot behind an
// atomic pointer (atomicTrackSlice), mirroring Track's clip-list
// pattern, so ProcessBuffer never blocks on a control-thread edit.
type Mixer struct {
	sampleRate   int
	channelCount int

	transport *Transport
	tracks    atomicTrackSlice

	masterVolume atomicFloat64
	masterMuted  atomicBool

	mixScratch   []float32
	trackScratch []float32
	readScratch  []float32
}

// NewMixer creates a mixer for the given sample rate and output
// channel count (1-8), pre-allocating scratch buffers sized for
// maxExpectedFrames so ProcessBuffer never allocates.
func NewMixer(sampleRate, channelCount int, transport *Transport, maxExpectedFrames int) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, invalidArgf("mixer sample rate %d must be positive", sampleRate)
	}
	if channelCount < 1 || channelCount > 8 {
		return nil, invalidArgf("mixer channel count %d must be in [1, 8]", channelCount)
	}
	m := &Mixer{
		sampleRate:   sampleRate,
		channelCount: channelCount,
		transport:    transport,
	}
	m.masterVolume.Store(1.0)
	m.tracks.Store(&[]*Track{})

	capacity := maxExpectedFrames * channelCount
	m.mixScratch = make([]float32, capacity)
	m.trackScratch = make([]float32, capacity)
	m.readScratch = make([]float32, capacity)
	return m, nil
}

// SampleRate returns the mixer's sample rate.
func (m *Mixer) SampleRate() int { return m.sampleRate }

// ChannelCount returns the mixer's output channel count.
func (m *Mixer) ChannelCount() int { return m.channelCount }

// MasterVolume returns the current master volume.
func (m *Mixer) MasterVolume() float64 { return m.masterVolume.Load() }

// SetMasterVolume sets the master volume, clamped to [0.0, 10.0].
func (m *Mixer) SetMasterVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 10 {
		v = 10
	}
	m.masterVolume.Store(v)
}

// IsMasterMuted returns whether the master bus is muted.
func (m *Mixer) IsMasterMuted() bool { return m.masterMuted.Load() }

// SetMasterMuted sets the master mute state.
func (m *Mixer) SetMasterMuted(muted bool) { m.masterMuted.Store(muted) }

// AddTrack appends a track to the mix.
func (m *Mixer) AddTrack(t *Track) {
	old := *m.tracks.Load()
	next := make([]*Track, len(old), len(old)+1)
	copy(next, old)
	next = append(next, t)
	m.tracks.Store(&next)
}

// RemoveTrack removes t from the mix, returning true if it was found.
func (m *Mixer) RemoveTrack(t *Track) bool {
	old := *m.tracks.Load()
	idx := -1
	for i, tr := range old {
		if tr == t || tr.ID == t.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	next := make([]*Track, 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	m.tracks.Store(&next)
	return true
}

// ClearTracks removes every track from the mix.
func (m *Mixer) ClearTracks() {
	m.tracks.Store(&[]*Track{})
}

// GetTracks returns the current track snapshot.
func (m *Mixer) GetTracks() []*Track {
	snap := *m.tracks.Load()
	out := make([]*Track, len(snap))
	copy(out, snap)
	return out
}

// Reset clears the mixer's internal scratch state only; it does not
// touch the transport or any track/clip position.
func (m *Mixer) Reset() {
	clearF32(m.mixScratch)
	clearF32(m.trackScratch)
	clearF32(m.readScratch)
}

// ProcessBuffer is the hot path: it renders frameCount frames of
// channelCount-interleaved audio into out, starting from the
// transport's current position. It never allocates, never blocks, and
// never panics — internal failures degrade to silence for that buffer.
//
// The transport is NOT advanced here; the hardware-callback collaborator
// (cmd/dawplay, Session.RenderCallback) advances it by frameCount after
// this returns, iff the transport was Playing.
func (m *Mixer) ProcessBuffer(out []float32, frameCount int) error {
	if frameCount == 0 {
		return nil
	}
	needed := frameCount * m.channelCount
	if len(out) < needed {
		return resourceExhaustedf("output buffer of length %d cannot hold %d frames at channel count %d", len(out), frameCount, m.channelCount)
	}

	snap := *m.tracks.Load()

	state := m.transport.State()
	position := m.transport.Position()

	if m.masterMuted.Load() || state != Playing {
		clearF32(out[:needed])
		return nil
	}
	if len(snap) == 0 {
		clearF32(out[:needed])
		return nil
	}

	anySolo := false
	for _, t := range snap {
		if t.IsSolo() {
			anySolo = true
			break
		}
	}

	if needed > len(m.mixScratch) {
		clearF32(out[:needed])
		return resourceExhaustedf("mix scratch of length %d cannot hold %d samples", len(m.mixScratch), needed)
	}
	mix := m.mixScratch[:needed]
	clearF32(mix)

	trackBuf := m.trackScratch[:needed]
	readBuf := m.readScratch[:needed]

	for _, t := range snap {
		if t.IsMuted() {
			continue
		}
		audible := t.IsSolo() || !anySolo
		if !audible {
			continue
		}

		clearF32(trackBuf)
		if err := t.ProcessAudio(trackBuf, 0, needed, position, readBuf); err != nil {
			clearF32(out[:needed])
			return err
		}
		m.applyPan(mix, trackBuf, frameCount, t.Pan())
	}

	masterVol := float32(m.masterVolume.Load())
	for i := 0; i < needed; i++ {
		out[i] = mix[i] * masterVol
	}
	return nil
}

// applyPan mixes src into mix. src has already been scaled by track
// volume inside Track.ProcessAudio (spec.md §4.4), so this stage
// applies pan only: the stereo constant-power law (left_gain =
// cos(theta), right_gain = sin(theta)) when channelCount == 2, or a
// plain scalar accumulate otherwise — pan is only defined for the
// stereo path; mono and >2-channel outputs pass src through unpanned.
func (m *Mixer) applyPan(mix, src []float32, frameCount int, pan float64) {
	switch m.channelCount {
	case 2:
		theta := (pan + 1) * math.Pi / 4
		leftGain := float32(math.Cos(theta))
		rightGain := float32(math.Sin(theta))
		for f := 0; f < frameCount; f++ {
			i := f * 2
			mix[i] += src[i] * leftGain
			mix[i+1] += src[i+1] * rightGain
		}
	default:
		n := frameCount * m.channelCount
		for i := 0; i < n; i++ {
			mix[i] += src[i]
		}
	}
}
