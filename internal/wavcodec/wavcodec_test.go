package wavcodec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTripPCM16(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 0.25, -0.25, 0}
	var buf bytes.Buffer
	err := Encode(&buf, samples, EncodeOptions{Channels: 2, SampleRate: 44100, BitsPerSample: 16})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ChannelCount != 2 || decoded.SampleRate != 44100 {
		t.Fatalf("metadata mismatch: %+v", decoded)
	}
	if len(decoded.Samples) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(decoded.Samples), len(samples))
	}
	for i, want := range samples {
		assert.InDelta(t, want, decoded.Samples[i], 1.0/32767)
	}
}

func TestEncodeDecodeRoundTripFloat32(t *testing.T) {
	samples := []float32{0, 0.123456, -0.987654, 1, -1}
	var buf bytes.Buffer
	err := Encode(&buf, samples, EncodeOptions{Channels: 1, SampleRate: 48000, BitsPerSample: 32, Float: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range samples {
		assert.InDelta(t, want, decoded.Samples[i], 1e-6)
	}
}

func TestEncodeDecodeRoundTripPCM24(t *testing.T) {
	samples := []float32{0, 0.75, -0.75, 1, -1}
	var buf bytes.Buffer
	err := Encode(&buf, samples, EncodeOptions{Channels: 1, SampleRate: 48000, BitsPerSample: 24})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, want := range samples {
		assert.InDelta(t, want, decoded.Samples[i], 1.0/8388607)
	}
}

func TestDecodeRejectsMissingRIFFMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a wav file at all!!")))
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("RIFF")))
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}

func TestDecodeRejectsMissingDataChunk(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	buf.Write([]byte{16, 0, 0, 0})
	buf.Write([]byte{1, 0, 2, 0, 0x44, 0xAC, 0, 0, 0, 0, 0, 0, 4, 0, 16, 0})

	_, err := Decode(&buf)
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}

func TestEncodeRejectsInvalidChannelCount(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []float32{0, 1}, EncodeOptions{Channels: 0, SampleRate: 48000, BitsPerSample: 16})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEncodeClampsOutOfRangeSamples(t *testing.T) {
	samples := []float32{2.0, -2.0}
	var buf bytes.Buffer
	if err := Encode(&buf, samples, EncodeOptions{Channels: 1, SampleRate: 48000, BitsPerSample: 16}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assert.InDelta(t, 1.0, decoded.Samples[0], 1.0/32767)
	assert.InDelta(t, -1.0, decoded.Samples[1], 1.0/32767)
}
