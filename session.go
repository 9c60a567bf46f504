package dawcore

// Session ties Clock, Transport, and Mixer into the single
// well-defined object graph spec.md §9 calls for in place of any
// global state: "the session (Mixer + Transport + Clock) is a
// per-instance object graph with a well-defined root."
type Session struct {
	Clock     *Clock
	Transport *Transport
	Mixer     *Mixer
	Events    *EventBus
}

// SessionOptions configures a new Session.
type SessionOptions struct {
	SampleRate          int
	ChannelCount         int
	Tempo               float64
	TimeSignature       TimeSignature
	TicksPerQuarterNote int64
	MaxExpectedFrames   int
	EventBacklog        int
}

// NewSession builds a Session's object graph: a Clock, a Transport
// referencing it, a Mixer referencing the Transport, and a shared
// EventBus. The Transport publishes its change notifications through
// the bus, as do tracks created with Session.NewTrack and clips given
// the bus on import; the Clock and the Mixer publish nothing, so tempo,
// time-signature and master-bus changes produce no events.
func NewSession(opts SessionOptions) (*Session, error) {
	bus := NewEventBus(opts.EventBacklog)

	clock, err := NewClock(opts.SampleRate, opts.Tempo, opts.TimeSignature, opts.TicksPerQuarterNote)
	if err != nil {
		return nil, err
	}
	transport := NewTransport(clock, bus)
	mixer, err := NewMixer(opts.SampleRate, opts.ChannelCount, transport, opts.MaxExpectedFrames)
	if err != nil {
		return nil, err
	}

	return &Session{
		Clock:     clock,
		Transport: transport,
		Mixer:     mixer,
		Events:    bus,
	}, nil
}

// NewTrack creates a track sized to this session's channel count and
// wired to the session's event bus, without adding it to the mixer.
func (s *Session) NewTrack(name string) *Track {
	return NewTrack(name, s.Mixer.ChannelCount(), s.Events)
}

// RenderCallback implements the hardware callback contract of
// spec.md §6: it renders frameCount frames into out via the mixer,
// then advances the transport by frameCount iff the transport was
// Playing at the start of the call. It is the single entry point a
// hardware audio backend (cmd/dawplay's PortAudio stream) or an
// offline renderer (cmd/dawrender) drives on every buffer period.
func (s *Session) RenderCallback(out []float32, frameCount int) error {
	wasPlaying := s.Transport.State() == Playing
	if err := s.Mixer.ProcessBuffer(out, frameCount); err != nil {
		return err
	}
	if wasPlaying {
		s.Transport.Advance(int64(frameCount))
	}
	return nil
}
