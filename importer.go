package dawcore

import (
	"errors"
	"io"
	"os"

	"github.com/kjthorne/dawcore/internal/wavcodec"
)

// ImportAudioClipFromWAV decodes a RIFF/WAVE stream, normalizes it to
// stereo per spec.md §6's channel-count rules, and wraps the result in
// a new AudioClip ready to add to a track. The clip's sample rate is
// the file's own; callers mixing it against a session at a different
// rate get the documented, undetected pitch shift (spec.md §6
// "Sample-rate consistency").
func ImportAudioClipFromWAV(name string, r io.Reader, bus *EventBus) (*AudioClip, error) {
	decoded, err := wavcodec.Decode(r)
	if err != nil {
		if errors.Is(err, wavcodec.ErrInvalidData) {
			return nil, invalidDataf("%v", err)
		}
		return nil, err
	}

	stereo, err := NormalizeToStereo(decoded.Samples, decoded.ChannelCount)
	if err != nil {
		return nil, err
	}

	return NewAudioClipFromSamples(name, 2, decoded.SampleRate, stereo, bus)
}

// ImportAudioClipFromWAVFile opens path and imports it, reporting
// ErrNotFound if the file does not exist.
func ImportAudioClipFromWAVFile(path string, bus *EventBus) (*AudioClip, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFoundf("%s", path)
		}
		return nil, err
	}
	defer f.Close()
	return ImportAudioClipFromWAV(path, f, bus)
}

// ExportWAV renders samples (interleaved, at the given channel count
// and sample rate) to w as a 16-bit PCM RIFF/WAVE stream.
func ExportWAV(w io.Writer, samples []float32, channels, sampleRate int) error {
	return wavcodec.Encode(w, samples, wavcodec.EncodeOptions{
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	})
}

// ExportWAVFloat renders samples as 32-bit IEEE float RIFF/WAVE,
// avoiding the quantization bound of PCM export entirely.
func ExportWAVFloat(w io.Writer, samples []float32, channels, sampleRate int) error {
	return wavcodec.Encode(w, samples, wavcodec.EncodeOptions{
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: 32,
		Float:         true,
	})
}
