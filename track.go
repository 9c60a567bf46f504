package dawcore

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// TrackID opaquely identifies a Track.
type TrackID string

// NewTrackID mints a fresh opaque track identifier.
func NewTrackID() TrackID {
	return TrackID(uuid.NewString())
}

// Track is an ordered container of clips with its own volume, pan,
// mute/solo/arm state. Clips belong to exactly one track at a time;
// dropping a track drops its clips (spec.md's "Track <-> clip
// back-references" design note: tracks own clips exclusively, clips
// carry no back-pointer).
//
// The clip list is published as a copy-on-write snapshot behind an
// atomic pointer: control-thread edits (add/remove/move/trim/split)
// build a new slice and swap the pointer; Track.ProcessAudio, running
// on the audio thread, only ever does an atomic load.
type Track struct {
	ID    TrackID
	Name  string
	Color string

	channels int
	bus      *EventBus

	mu sync.Mutex

	volume  atomicFloat64
	pan     atomicFloat64
	muted   atomicBool
	solo    atomicBool
	armed   atomicBool
	clips   atomicClipSlice
	meter   *levelMeter
}

// NewTrack creates an empty track with channels matching the session's
// channel count; clips added to it must share that channel count (the
// channel-normalization required by spec.md §6 happens at the WAV
// import boundary, before a clip ever reaches a track).
func NewTrack(name string, channels int, bus *EventBus) *Track {
	t := &Track{
		Name:     name,
		ID:       NewTrackID(),
		channels: channels,
		bus:      bus,
		meter:    newLevelMeter(meterHistoryFrames),
	}
	t.volume.Store(1.0)
	t.pan.Store(0.0)
	t.clips.Store(&[]*AudioClip{})
	return t
}

// Volume returns the track's current volume.
func (t *Track) Volume() float64 { return t.volume.Load() }

// SetVolume sets the track's volume; must be non-negative.
func (t *Track) SetVolume(v float64) error {
	if v < 0 {
		return invalidArgf("track volume %g must be non-negative", v)
	}
	t.volume.Store(v)
	t.emitProperty("Volume", v)
	return nil
}

// Pan returns the track's current pan, in [-1, 1].
func (t *Track) Pan() float64 { return t.pan.Load() }

// SetPan sets the track's pan; must be in [-1, 1].
func (t *Track) SetPan(p float64) error {
	if p < -1 || p > 1 {
		return invalidArgf("track pan %g must be in [-1, 1]", p)
	}
	t.pan.Store(p)
	t.emitProperty("Pan", p)
	return nil
}

// IsMuted returns whether the track is muted.
func (t *Track) IsMuted() bool { return t.muted.Load() }

// SetMuted sets the track's mute state.
func (t *Track) SetMuted(m bool) {
	t.muted.Store(m)
	t.emitProperty("IsMuted", m)
}

// IsSolo returns whether the track is soloed.
func (t *Track) IsSolo() bool { return t.solo.Load() }

// SetSolo sets the track's solo state.
func (t *Track) SetSolo(s bool) {
	t.solo.Store(s)
	t.emitProperty("IsSolo", s)
}

// IsArmed returns whether the track is armed for recording.
func (t *Track) IsArmed() bool { return t.armed.Load() }

// SetArmed sets the track's record-arm state.
func (t *Track) SetArmed(a bool) {
	t.armed.Store(a)
	t.emitProperty("IsArmed", a)
}

// Clips returns a read-only snapshot of the track's clips, in
// insertion order.
func (t *Track) Clips() []*AudioClip {
	snap := t.clips.Load()
	out := make([]*AudioClip, len(*snap))
	copy(out, *snap)
	return out
}

// AddClip appends clip to the track. It fails with
// ErrPreconditionFailed if the clip's channel count does not match the
// track's.
func (t *Track) AddClip(clip *AudioClip) error {
	if clip.Channels() != t.channels {
		return preconditionf("clip channel count %d does not match track channel count %d", clip.Channels(), t.channels)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.clips.Load()
	next := make([]*AudioClip, len(old), len(old)+1)
	copy(next, old)
	next = append(next, clip)
	t.clips.Store(&next)
	t.emitClip(EventClipAdded, clip.ID)
	return nil
}

// RemoveClip removes the clip with the given id, returning true if a
// clip was found and removed.
func (t *Track) RemoveClip(id ClipID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.clips.Load()
	idx := -1
	for i, c := range old {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	next := make([]*AudioClip, 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	t.clips.Store(&next)
	t.emitClip(EventClipRemoved, id)
	return true
}

// ClearClips removes every clip from the track.
func (t *Track) ClearClips() {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.clips.Load()
	ids := make([]ClipID, len(old))
	for i, c := range old {
		ids[i] = c.ID
	}
	t.clips.Store(&[]*AudioClip{})
	for _, id := range ids {
		t.emitClip(EventClipRemoved, id)
	}
}

// GetClipsInRange returns every clip whose span intersects
// [start, end), sorted by StartPosition ascending. It fails with
// ErrInvalidArgument if end < start.
func (t *Track) GetClipsInRange(start, end int64) ([]*AudioClip, error) {
	if end < start {
		return nil, invalidArgf("range end %d must be >= start %d", end, start)
	}
	snap := *t.clips.Load()
	out := make([]*AudioClip, 0, len(snap))
	for _, c := range snap {
		if c.EndPosition() > start && c.StartPosition < end {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartPosition < out[j].StartPosition })
	return out, nil
}

// findClip looks up a clip owned by this track by id.
func (t *Track) findClip(id ClipID) (*AudioClip, error) {
	snap := *t.clips.Load()
	for _, c := range snap {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, preconditionf("clip %s is not owned by track %s", id, t.ID)
}

// MoveClip relocates a clip owned by this track to a new start
// position.
func (t *Track) MoveClip(id ClipID, newStart int64) error {
	clip, err := t.findClip(id)
	if err != nil {
		return err
	}
	return clip.SetStartPosition(newStart)
}

// TrimClip adjusts a clip's start position and/or length in place.
// Passing nil for either leaves that field unchanged.
func (t *Track) TrimClip(id ClipID, newStart, newLength *int64) error {
	clip, err := t.findClip(id)
	if err != nil {
		return err
	}
	if newStart != nil {
		if err := clip.SetStartPosition(*newStart); err != nil {
			return err
		}
	}
	if newLength != nil {
		if *newLength < 0 {
			return invalidArgf("clip length %d must be non-negative", *newLength)
		}
		clip.Length = *newLength
		clip.emitProperty("Length", *newLength)
		clip.emitProperty("EndPosition", clip.EndPosition())
	}
	return nil
}

// SplitClip splits the clip at splitPosition (an absolute timeline
// position), shortening the original clip to end there and returning a
// new clip covering the remainder. The two clips share the same
// backing sample storage without copying it; WriteSamples on either
// clip writes into that shared storage. Right after the split their
// windows into it are disjoint, but a TrimClip that lengthens one clip
// back over the cut makes them overlap.
func (t *Track) SplitClip(id ClipID, splitPosition int64) (*AudioClip, error) {
	clip, err := t.findClip(id)
	if err != nil {
		return nil, err
	}
	if splitPosition <= clip.StartPosition || splitPosition >= clip.EndPosition() {
		return nil, invalidArgf("split position %d must be strictly inside clip span [%d, %d)", splitPosition, clip.StartPosition, clip.EndPosition())
	}

	leftLength := splitPosition - clip.StartPosition
	rightLength := clip.Length - leftLength

	right := &AudioClip{
		ClipHeader: ClipHeader{
			ID:            NewClipID(),
			Name:          clip.Name,
			StartPosition: splitPosition,
			Length:        rightLength,
			SourceOffset:  clip.SourceOffset + leftLength,
			Gain:          clip.Gain,
			IsMuted:       clip.IsMuted,
			FadeInLength:  0,
			FadeOutLength: clip.FadeOutLength,
			Color:         clip.Color,
		},
		channels:   clip.channels,
		sampleRate: clip.sampleRate,
		samples:    clip.samples,
		bus:        clip.bus,
	}

	clip.Length = leftLength
	clip.FadeOutLength = 0
	clip.emitProperty("Length", leftLength)
	clip.emitProperty("EndPosition", clip.EndPosition())

	if err := t.AddClip(right); err != nil {
		return nil, err
	}
	return right, nil
}

// RecentPeaks returns the track's recent per-buffer peak history, as
// recorded by the most recent ProcessAudio calls.
func (t *Track) RecentPeaks() []float64 {
	return t.meter.RecentPeaks()
}

// PeakAmplitude returns the maximum peak across all non-muted clips
// intersecting the window, scaled by track volume.
func (t *Track) PeakAmplitude(position int64, window int64) float64 {
	snap := *t.clips.Load()
	var peak float64
	for _, c := range snap {
		if c.IsMuted {
			continue
		}
		p := c.PeakAmplitude(position, window)
		if p > peak {
			peak = p
		}
	}
	return peak * t.volume.Load()
}

// ProcessAudio zeroes dst[offset : offset+count], mixes every
// intersecting clip additively into it, then scales the summed window by the
// track's volume. count is a sample count, not a frame count, matching
// Track.process_audio's pinned-down semantics. scratch must have
// capacity >= count and is used as the per-call clip-read temporary;
// it is caller-owned so the audio thread never allocates here.
func (t *Track) ProcessAudio(dst []float32, offset, count int, timelinePosition int64, scratch []float32) error {
	if offset < 0 || count < 0 {
		return invalidArgf("process offset %d and count %d must be non-negative", offset, count)
	}
	if offset+count > len(dst) {
		return invalidArgf("destination buffer of length %d cannot hold %d samples at offset %d", len(dst), count, offset)
	}
	window := dst[offset : offset+count]

	if t.muted.Load() {
		for i := range window {
			window[i] = 0
		}
		return nil
	}
	for i := range window {
		window[i] = 0
	}

	if len(scratch) < count {
		return resourceExhaustedf("scratch buffer of length %d cannot hold %d samples", len(scratch), count)
	}
	tmp := scratch[:count]

	frameCount := int64(count / t.channels)
	rangeStart := timelinePosition
	rangeEnd := timelinePosition + frameCount

	snap := *t.clips.Load()
	contributed := false
	for _, clip := range snap {
		if clip.EndPosition() <= rangeStart || clip.StartPosition >= rangeEnd {
			continue
		}
		n, err := clip.ReadSamples(tmp, 0, count, timelinePosition)
		if err != nil {
			return err
		}
		if n > 0 {
			contributed = true
		}
		for i := 0; i < count; i++ {
			window[i] += tmp[i]
		}
	}

	if contributed {
		vol := float32(t.volume.Load())
		for i := range window {
			window[i] *= vol
		}
	}

	t.meter.record(window)
	return nil
}

func (t *Track) emitProperty(field string, value any) {
	if t.bus == nil {
		return
	}
	t.bus.publish(Event{
		Kind:     EventTrackProperty,
		EntityID: string(t.ID),
		Field:    field,
		Value:    value,
	})
}

func (t *Track) emitClip(kind EventKind, id ClipID) {
	if t.bus == nil {
		return
	}
	t.bus.publish(Event{
		Kind:     kind,
		EntityID: string(t.ID),
		Field:    "ClipID",
		Value:    id,
	})
}
