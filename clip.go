package dawcore

import (
	"math"

	"github.com/google/uuid"
)

// ClipID opaquely identifies a Clip, scoped to the track that owns it.
type ClipID string

// NewClipID mints a fresh opaque clip identifier.
func NewClipID() ClipID {
	return ClipID(uuid.NewString())
}

// ClipHeader is the shared state of every clip variant (spec.md's
// "Polymorphic clip variants" design note models Clip as a tagged
// variant with a shared header; AudioClip is the only variant this
// engine implements, MIDI clips being an explicit non-goal).
type ClipHeader struct {
	ID            ClipID
	Name          string
	StartPosition int64
	Length        int64
	SourceOffset  int64
	Gain          float64
	IsMuted       bool
	FadeInLength  int64
	FadeOutLength int64
	Color         string
}

// EndPosition returns StartPosition + Length.
func (h *ClipHeader) EndPosition() int64 {
	return h.StartPosition + h.Length
}

func (h *ClipHeader) validate() error {
	if h.StartPosition < 0 {
		return invalidArgf("clip start position %d must be non-negative", h.StartPosition)
	}
	if h.Length < 0 {
		return invalidArgf("clip length %d must be non-negative", h.Length)
	}
	if h.SourceOffset < 0 {
		return invalidArgf("clip source offset %d must be non-negative", h.SourceOffset)
	}
	if h.Gain < 0 {
		return invalidArgf("clip gain %g must be non-negative", h.Gain)
	}
	if h.FadeInLength < 0 {
		return invalidArgf("clip fade-in length %d must be non-negative", h.FadeInLength)
	}
	if h.FadeOutLength < 0 {
		return invalidArgf("clip fade-out length %d must be non-negative", h.FadeOutLength)
	}
	return nil
}

// AudioClip is the sole clip variant this engine implements: a span of
// interleaved float32 samples placed on a track's timeline.
type AudioClip struct {
	ClipHeader

	channels   int
	sampleRate int
	samples    []float32

	bus *EventBus
}

// NewAudioClip creates a clip over a pre-allocated, zeroed buffer of
// frameCount frames. channels must be in [1, 8] and sampleRate must be
// positive.
func NewAudioClip(name string, channels, sampleRate int, frameCount int64, bus *EventBus) (*AudioClip, error) {
	if frameCount < 0 {
		return nil, invalidArgf("clip frame count %d must be non-negative", frameCount)
	}
	return newAudioClipWithSamples(name, channels, sampleRate, make([]float32, frameCount*int64(channels)), bus)
}

// NewAudioClipFromSamples creates a clip that takes ownership of an
// existing interleaved sample buffer.
func NewAudioClipFromSamples(name string, channels, sampleRate int, samples []float32, bus *EventBus) (*AudioClip, error) {
	return newAudioClipWithSamples(name, channels, sampleRate, samples, bus)
}

func newAudioClipWithSamples(name string, channels, sampleRate int, samples []float32, bus *EventBus) (*AudioClip, error) {
	if channels <= 0 || channels > 8 {
		return nil, invalidArgf("clip channel count %d must be in [1, 8]", channels)
	}
	if sampleRate <= 0 {
		return nil, invalidArgf("clip sample rate %d must be positive", sampleRate)
	}
	if len(samples)%channels != 0 {
		return nil, invalidArgf("sample buffer length %d is not a multiple of channel count %d", len(samples), channels)
	}
	c := &AudioClip{
		ClipHeader: ClipHeader{
			ID:     NewClipID(),
			Name:   name,
			Gain:   1.0,
			Length: int64(len(samples) / channels),
		},
		channels:   channels,
		sampleRate: sampleRate,
		samples:    samples,
		bus:        bus,
	}
	return c, nil
}

// Channels returns the clip's interleaved channel count.
func (c *AudioClip) Channels() int { return c.channels }

// SampleRate returns the clip's backing sample rate.
func (c *AudioClip) SampleRate() int { return c.sampleRate }

// FramesInStorage returns the number of frames held in backing storage.
func (c *AudioClip) FramesInStorage() int64 {
	return int64(len(c.samples)) / int64(c.channels)
}

// SetStartPosition relocates the clip on the timeline, emitting
// StartPosition and EndPosition change notifications.
func (c *AudioClip) SetStartPosition(pos int64) error {
	if pos < 0 {
		return invalidArgf("clip start position %d must be non-negative", pos)
	}
	c.StartPosition = pos
	c.emitProperty("StartPosition", pos)
	c.emitProperty("EndPosition", c.EndPosition())
	return nil
}

// SetGain sets the clip's playback gain.
func (c *AudioClip) SetGain(gain float64) error {
	if gain < 0 {
		return invalidArgf("clip gain %g must be non-negative", gain)
	}
	c.Gain = gain
	c.emitProperty("Gain", gain)
	return nil
}

// SetMuted sets whether the clip is silenced on read.
func (c *AudioClip) SetMuted(muted bool) {
	c.IsMuted = muted
	c.emitProperty("IsMuted", muted)
}

// SetFades sets the fade-in and fade-out lengths. Their sum may exceed
// Length; both envelopes then apply multiplicatively where they
// overlap.
func (c *AudioClip) SetFades(fadeIn, fadeOut int64) error {
	if fadeIn < 0 {
		return invalidArgf("fade-in length %d must be non-negative", fadeIn)
	}
	if fadeOut < 0 {
		return invalidArgf("fade-out length %d must be non-negative", fadeOut)
	}
	c.FadeInLength = fadeIn
	c.FadeOutLength = fadeOut
	return nil
}

// fadeEnvelope computes the multiplicative fade gain at offset r within
// [0, Length).
func (c *AudioClip) fadeEnvelope(r int64) float64 {
	e := 1.0
	if c.FadeInLength > 0 && r < c.FadeInLength {
		e *= float64(r) / float64(c.FadeInLength)
	}
	if c.FadeOutLength > 0 && r >= c.Length-c.FadeOutLength {
		e *= 1 - float64(r-(c.Length-c.FadeOutLength))/float64(c.FadeOutLength)
	}
	return e
}

// ReadSamples writes up to count individual float samples (count must
// be a multiple of Channels) into dst starting at dstOffset, sourced
// from the clip at timelinePosition. It returns the number of samples
// actually written with nonzero data; the remainder of the requested
// window is zeroed.
func (c *AudioClip) ReadSamples(dst []float32, dstOffset int, count int, timelinePosition int64) (int, error) {
	if dstOffset < 0 || count < 0 {
		return 0, invalidArgf("read offset %d and count %d must be non-negative", dstOffset, count)
	}
	if count%c.channels != 0 {
		return 0, invalidArgf("read count %d must be a multiple of channel count %d", count, c.channels)
	}
	if dstOffset+count > len(dst) {
		return 0, invalidArgf("destination buffer of length %d cannot hold %d samples at offset %d", len(dst), count, dstOffset)
	}

	window := dst[dstOffset : dstOffset+count]
	for i := range window {
		window[i] = 0
	}

	if c.IsMuted || count == 0 {
		return 0, nil
	}

	relative := timelinePosition - c.StartPosition
	if relative < 0 || relative >= c.Length {
		return 0, nil
	}

	sourceFrame := relative + c.SourceOffset
	framesInStorage := c.FramesInStorage()
	if sourceFrame >= framesInStorage {
		return 0, nil
	}

	requestedFrames := int64(count / c.channels)
	available := min64(c.Length-relative, framesInStorage-sourceFrame, requestedFrames)

	for i := int64(0); i < available; i++ {
		e := c.fadeEnvelope(relative + i)
		scale := c.Gain * e
		srcBase := (sourceFrame + i) * int64(c.channels)
		dstBase := i * int64(c.channels)
		for ch := 0; ch < c.channels; ch++ {
			window[dstBase+int64(ch)] = float32(float64(c.samples[srcBase+int64(ch)]) * scale)
		}
	}

	return int(available) * c.channels, nil
}

// WriteSamples copies frameCount frames from src (starting at
// srcOffset frames) into backing storage at the frame position implied
// by timelinePosition, bounded by clip length and storage capacity. It
// returns the number of frames actually written.
func (c *AudioClip) WriteSamples(src []float32, srcOffset int, frameCount int64, timelinePosition int64) (int64, error) {
	if srcOffset < 0 || frameCount < 0 {
		return 0, invalidArgf("write offset %d and frame count %d must be non-negative", srcOffset, frameCount)
	}
	if (srcOffset+int(frameCount))*c.channels > len(src) {
		return 0, invalidArgf("source buffer of length %d cannot supply %d frames at offset %d", len(src), frameCount, srcOffset)
	}

	relative := timelinePosition - c.StartPosition
	if relative < 0 || relative >= c.Length {
		return 0, nil
	}

	sourceFrame := relative + c.SourceOffset
	framesInStorage := c.FramesInStorage()
	if sourceFrame >= framesInStorage {
		return 0, nil
	}

	available := min64(c.Length-relative, framesInStorage-sourceFrame, frameCount)
	for i := int64(0); i < available; i++ {
		dstBase := (sourceFrame + i) * int64(c.channels)
		srcBase := (int64(srcOffset) + i) * int64(c.channels)
		for ch := 0; ch < c.channels; ch++ {
			c.samples[dstBase+int64(ch)] = src[srcBase+int64(ch)]
		}
	}
	return available, nil
}

// PeakAmplitude returns the maximum absolute sample value in the
// window, scaled by gain and the fade envelope at the window start. It
// returns 0 if muted or entirely out of bounds.
func (c *AudioClip) PeakAmplitude(timelinePosition int64, windowFrames int64) float64 {
	if c.IsMuted || windowFrames <= 0 {
		return 0
	}
	relative := timelinePosition - c.StartPosition
	if relative < 0 || relative >= c.Length {
		return 0
	}
	sourceFrame := relative + c.SourceOffset
	framesInStorage := c.FramesInStorage()
	if sourceFrame >= framesInStorage {
		return 0
	}
	available := min64(c.Length-relative, framesInStorage-sourceFrame, windowFrames)

	var peak float64
	for i := int64(0); i < available; i++ {
		base := (sourceFrame + i) * int64(c.channels)
		for ch := 0; ch < c.channels; ch++ {
			v := math.Abs(float64(c.samples[base+int64(ch)]))
			if v > peak {
				peak = v
			}
		}
	}
	return peak * c.Gain * c.fadeEnvelope(relative)
}

// RMSAmplitude returns the root-mean-square sample value over the
// window, with the same scaling as PeakAmplitude.
func (c *AudioClip) RMSAmplitude(timelinePosition int64, windowFrames int64) float64 {
	if c.IsMuted || windowFrames <= 0 {
		return 0
	}
	relative := timelinePosition - c.StartPosition
	if relative < 0 || relative >= c.Length {
		return 0
	}
	sourceFrame := relative + c.SourceOffset
	framesInStorage := c.FramesInStorage()
	if sourceFrame >= framesInStorage {
		return 0
	}
	available := min64(c.Length-relative, framesInStorage-sourceFrame, windowFrames)
	if available <= 0 {
		return 0
	}

	var sumSquares float64
	var n int64
	for i := int64(0); i < available; i++ {
		base := (sourceFrame + i) * int64(c.channels)
		for ch := 0; ch < c.channels; ch++ {
			v := float64(c.samples[base+int64(ch)])
			sumSquares += v * v
			n++
		}
	}
	rms := math.Sqrt(sumSquares / float64(n))
	return rms * c.Gain * c.fadeEnvelope(relative)
}

func (c *AudioClip) emitProperty(field string, value any) {
	if c.bus == nil {
		return
	}
	c.bus.publish(Event{
		Kind:     EventClipProperty,
		EntityID: string(c.ID),
		Field:    field,
		Value:    value,
	})
}

func min64(vs ...int64) int64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
