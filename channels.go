package dawcore

// NormalizeToStereo maps arbitrary-channel interleaved float samples to
// interleaved stereo, per the importer's channel-count normalization
// contract (spec.md §6):
//
//   - mono is duplicated to L=R;
//   - stereo passes through unchanged;
//   - three or more channels are downmixed by averaging even-indexed
//     channels into L and odd-indexed channels into R.
func NormalizeToStereo(samples []float32, channels int) ([]float32, error) {
	if channels <= 0 {
		return nil, invalidArgf("channel count %d must be positive", channels)
	}
	if len(samples)%channels != 0 {
		return nil, invalidArgf("sample buffer length %d is not a multiple of channel count %d", len(samples), channels)
	}
	frames := len(samples) / channels

	switch {
	case channels == 1:
		out := make([]float32, frames*2)
		for i := 0; i < frames; i++ {
			out[i*2] = samples[i]
			out[i*2+1] = samples[i]
		}
		return out, nil
	case channels == 2:
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	default:
		evenCount := (channels + 1) / 2
		oddCount := channels / 2
		out := make([]float32, frames*2)
		for f := 0; f < frames; f++ {
			base := f * channels
			var lSum, rSum float32
			for ch := 0; ch < channels; ch++ {
				if ch%2 == 0 {
					lSum += samples[base+ch]
				} else {
					rSum += samples[base+ch]
				}
			}
			out[f*2] = lSum / float32(evenCount)
			out[f*2+1] = rSum / float32(oddCount)
		}
		return out, nil
	}
}
