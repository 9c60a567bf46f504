package wavcodec

import (
	"encoding/binary"
	"io"
	"math"
)

// EncodeOptions selects the target bit depth and format tag for Encode.
type EncodeOptions struct {
	Channels      int
	SampleRate    int
	BitsPerSample int // 16, 24, or 32
	Float         bool // true selects 32-bit IEEE float (BitsPerSample must be 32)
}

// Encode writes interleaved float samples (clamped to [-1, 1]) as a
// RIFF/WAVE stream to w: a 12-byte RIFF header, a 16-byte canonical
// fmt chunk, and a data chunk sized to the sample payload. It follows
// the teacher's own wav.Writer idiom of writing zero-length placeholder
// sizes up front and patching them in at Finish, generalized here to
// run in a single pass against a pre-known sample count instead of a
// seek-and-patch stream writer, since the caller always has the full
// rendered buffer in hand before export.
func Encode(w io.Writer, samples []float32, opts EncodeOptions) error {
	if opts.Channels <= 0 {
		return invalidArgf("channel count %d must be positive", opts.Channels)
	}
	if opts.SampleRate <= 0 {
		return invalidArgf("sample rate %d must be positive", opts.SampleRate)
	}

	bytesPerSample := opts.BitsPerSample / 8
	blockAlign := bytesPerSample * opts.Channels
	dataSize := len(samples) * bytesPerSample
	byteRate := opts.SampleRate * blockAlign

	formatTag := uint16(formatTagPCM)
	if opts.Float {
		formatTag = formatTagFloat
	}

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}

	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	fmtChunk := struct {
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{
		AudioFormat:   formatTag,
		Channels:      uint16(opts.Channels),
		SampleRate:    uint32(opts.SampleRate),
		ByteRate:      uint32(byteRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(opts.BitsPerSample),
	}
	if err := binary.Write(w, binary.LittleEndian, fmtChunk); err != nil {
		return err
	}

	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dataSize)); err != nil {
		return err
	}

	return encodeSamples(w, samples, opts)
}

func encodeSamples(w io.Writer, samples []float32, opts EncodeOptions) error {
	switch {
	case opts.Float && opts.BitsPerSample == 32:
		buf := make([]byte, 4)
		for _, s := range samples {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(s))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	case !opts.Float && opts.BitsPerSample == 16:
		buf := make([]byte, 2)
		for _, s := range samples {
			v := int16(clamp(s) * 32767)
			binary.LittleEndian.PutUint16(buf, uint16(v))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	case !opts.Float && opts.BitsPerSample == 24:
		buf := make([]byte, 3)
		for _, s := range samples {
			v := int32(clamp(s) * 8388607)
			buf[0] = byte(v)
			buf[1] = byte(v >> 8)
			buf[2] = byte(v >> 16)
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	case !opts.Float && opts.BitsPerSample == 32:
		buf := make([]byte, 4)
		for _, s := range samples {
			v := int32(float64(clamp(s)) * 2147483647)
			binary.LittleEndian.PutUint32(buf, uint32(v))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	default:
		return invalidArgf("unsupported encode bit depth %d (float=%v)", opts.BitsPerSample, opts.Float)
	}
	return nil
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
