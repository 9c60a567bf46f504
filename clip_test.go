package dawcore

import (
	"errors"
	"testing"

	clone "github.com/huandu/go-clone/generic"
	"github.com/stretchr/testify/assert"
)

// baseClipFixture is a 1000-frame, 2-channel, 48kHz clip of constant
// 1.0 samples placed at the timeline origin, cloned per-test via
// go-clone to produce variants without field-by-field copy
// boilerplate, matching the teacher's own use of clone.Clone(testSong)
// in helpers_test.go.
var baseClipFixture = AudioClip{
	ClipHeader: ClipHeader{
		Name:   "fixture",
		Length: 1000,
		Gain:   1.0,
	},
	channels:   2,
	sampleRate: 48000,
	samples:    constantSamples(1000, 2, 1.0),
}

func constantSamples(frames, channels int, v float32) []float32 {
	s := make([]float32, frames*channels)
	for i := range s {
		s[i] = v
	}
	return s
}

func newFixtureClip(t *testing.T) *AudioClip {
	c := clone.Clone(baseClipFixture)
	c.ID = NewClipID()
	return &c
}

func TestAudioClipReadSamplesBasic(t *testing.T) {
	c := newFixtureClip(t)
	dst := make([]float32, 8)
	n, err := c.ReadSamples(dst, 0, 8, 0)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if n != 8 {
		t.Errorf("samples written = %d, want 8", n)
	}
	for i, v := range dst {
		if v != 1.0 {
			t.Errorf("dst[%d] = %v, want 1.0", i, v)
		}
	}
}

func TestAudioClipReadSamplesMutedZeroesAndReturnsZero(t *testing.T) {
	c := newFixtureClip(t)
	c.SetMuted(true)
	dst := make([]float32, 8)
	n, err := c.ReadSamples(dst, 0, 8, 0)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if n != 0 {
		t.Errorf("samples written = %d, want 0", n)
	}
	for _, v := range dst {
		if v != 0 {
			t.Errorf("muted clip wrote nonzero sample %v", v)
		}
	}
}

func TestAudioClipReadSamplesOutOfRangeZeroes(t *testing.T) {
	c := newFixtureClip(t)
	dst := []float32{9, 9}
	n, err := c.ReadSamples(dst, 0, 2, -100)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if n != 0 || dst[0] != 0 || dst[1] != 0 {
		t.Errorf("out-of-range read = %v (n=%d), want zeros", dst, n)
	}
}

func TestAudioClipReadSamplesRejectsNonMultipleOfChannels(t *testing.T) {
	c := newFixtureClip(t)
	dst := make([]float32, 4)
	_, err := c.ReadSamples(dst, 0, 3, 0)
	if err == nil {
		t.Error("expected error for count not a multiple of channels")
	}
}

func TestAudioClipFadeInEnvelope(t *testing.T) {
	c := newFixtureClip(t)
	if err := c.SetFades(100, 0); err != nil {
		t.Fatalf("SetFades: %v", err)
	}
	dst := make([]float32, 2)
	_, err := c.ReadSamples(dst, 0, 2, 50)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if dst[0] < 0.45 || dst[0] > 0.55 {
		t.Errorf("fade-in midpoint sample = %v, want in [0.45, 0.55]", dst[0])
	}
}

func TestAudioClipFadeOverlapMultiplicative(t *testing.T) {
	c := newFixtureClip(t)
	// fade_in + fade_out exceeds length; both should apply at the midpoint.
	if err := c.SetFades(600, 600); err != nil {
		t.Fatalf("SetFades: %v", err)
	}
	dst := make([]float32, 2)
	_, err := c.ReadSamples(dst, 0, 2, 500)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	fadeIn := 500.0 / 600.0
	fadeOut := 1 - float64(500-(1000-600))/600.0
	want := fadeIn * fadeOut
	assert.InDelta(t, want, float64(dst[0]), 1e-6)
}

func TestAudioClipPeakAndRMSAmplitude(t *testing.T) {
	c := newFixtureClip(t)
	peak := c.PeakAmplitude(0, 100)
	rms := c.RMSAmplitude(0, 100)
	if peak != 1.0 {
		t.Errorf("PeakAmplitude = %v, want 1.0", peak)
	}
	assert.InDelta(t, 1.0, rms, 1e-9)
}

func TestAudioClipPeakAmplitudeMutedIsZero(t *testing.T) {
	c := newFixtureClip(t)
	c.SetMuted(true)
	if got := c.PeakAmplitude(0, 100); got != 0 {
		t.Errorf("PeakAmplitude on muted clip = %v, want 0", got)
	}
}

func TestAudioClipWriteSamplesThenRead(t *testing.T) {
	c := newFixtureClip(t)
	src := constantSamples(4, 2, 0.5)
	n, err := c.WriteSamples(src, 0, 4, 0)
	if err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if n != 4 {
		t.Errorf("frames written = %d, want 4", n)
	}
	dst := make([]float32, 8)
	if _, err := c.ReadSamples(dst, 0, 8, 0); err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	for _, v := range dst {
		if v != 0.5 {
			t.Errorf("readback sample = %v, want 0.5", v)
		}
	}
}

func TestNewAudioClipRejectsInvalidChannels(t *testing.T) {
	if _, err := NewAudioClip("x", 0, 48000, 10, nil); err == nil {
		t.Error("expected error for zero channels")
	}
	if _, err := NewAudioClip("x", 9, 48000, 10, nil); err == nil {
		t.Error("expected error for channels > 8")
	}
}

func TestNewAudioClipRejectsNegativeFrameCount(t *testing.T) {
	_, err := NewAudioClip("x", 2, 48000, -1, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
