package dawcore

import "testing"

func newTestSessionOpts() SessionOptions {
	return SessionOptions{
		SampleRate:          48000,
		ChannelCount:        2,
		Tempo:               120,
		TimeSignature:       TimeSignature{Numerator: 4, Denominator: 4},
		TicksPerQuarterNote: 480,
		MaxExpectedFrames:   512,
		EventBacklog:        16,
	}
}

func TestNewSessionBuildsWiredGraph(t *testing.T) {
	s, err := NewSession(newTestSessionOpts())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Clock == nil || s.Transport == nil || s.Mixer == nil || s.Events == nil {
		t.Fatal("NewSession left a nil field in the object graph")
	}
	if s.Mixer.SampleRate() != 48000 || s.Mixer.ChannelCount() != 2 {
		t.Errorf("mixer not wired to session options: %+v", s.Mixer)
	}
}

func TestRenderCallbackAdvancesOnlyWhenPlaying(t *testing.T) {
	s, err := NewSession(newTestSessionOpts())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	out := make([]float32, 256*2)
	if err := s.RenderCallback(out, 256); err != nil {
		t.Fatalf("RenderCallback: %v", err)
	}
	if s.Transport.Position() != 0 {
		t.Errorf("position advanced while Stopped: %d", s.Transport.Position())
	}

	s.Transport.Play()
	if err := s.RenderCallback(out, 256); err != nil {
		t.Fatalf("RenderCallback: %v", err)
	}
	if s.Transport.Position() != 256 {
		t.Errorf("position = %d, want 256", s.Transport.Position())
	}
}

func TestSessionNewTrackMatchesChannelCount(t *testing.T) {
	s, err := NewSession(newTestSessionOpts())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	track := s.NewTrack("t")
	if err := track.AddClip(mustClip(t, 2, 48000, 10)); err != nil {
		t.Fatalf("AddClip should accept a matching-channel clip: %v", err)
	}
}

func mustClip(t *testing.T, channels, sampleRate int, frames int64) *AudioClip {
	c, err := NewAudioClip("c", channels, sampleRate, frames, nil)
	if err != nil {
		t.Fatalf("NewAudioClip: %v", err)
	}
	return c
}
