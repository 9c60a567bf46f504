package dawcore

import "math"

// TimeSignature is a musical time signature: Numerator beats of length
// 1/Denominator per bar. Denominator must be a positive power of two.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// MusicalTime is a 1-based bar and beat with a 0-based tick offset
// within the beat, per the glossary's Bar/Beat/Tick convention.
type MusicalTime struct {
	Bar  int
	Beat int
	Tick int64
}

// Clock is a stateless function of (sample_rate, tempo, time_signature):
// it converts between sample positions, seconds, and musical time. It
// holds no position of its own — Transport owns the position, Clock
// only the tempo and signature it is interpreted against.
type Clock struct {
	sampleRate          int
	tempo               float64
	signature           TimeSignature
	ticksPerQuarterNote int64
}

// NewClock builds a Clock for the given sample rate, tempo (BPM), time
// signature, and ticks-per-quarter-note resolution. ticksPerQuarterNote
// must be positive; a value of 0 defaults to 480, matching common MIDI
// practice.
func NewClock(sampleRate int, tempo float64, signature TimeSignature, ticksPerQuarterNote int64) (*Clock, error) {
	if ticksPerQuarterNote == 0 {
		ticksPerQuarterNote = 480
	}
	c := &Clock{
		sampleRate:          sampleRate,
		tempo:               tempo,
		signature:           signature,
		ticksPerQuarterNote: ticksPerQuarterNote,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clock) validate() error {
	if c.sampleRate <= 0 {
		return invalidArgf("sample rate %d must be positive", c.sampleRate)
	}
	if c.tempo <= 0 {
		return invalidArgf("tempo %g must be positive", c.tempo)
	}
	if c.signature.Numerator <= 0 {
		return invalidArgf("time signature numerator %d must be positive", c.signature.Numerator)
	}
	if !isPowerOfTwo(c.signature.Denominator) {
		return invalidArgf("time signature denominator %d must be a positive power of two", c.signature.Denominator)
	}
	if c.ticksPerQuarterNote <= 0 {
		return invalidArgf("ticks per quarter note %d must be positive", c.ticksPerQuarterNote)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// SampleRate returns the sample rate this clock was configured with.
func (c *Clock) SampleRate() int { return c.sampleRate }

// Tempo returns the current tempo in beats per minute.
func (c *Clock) Tempo() float64 { return c.tempo }

// SetTempo changes the tempo. Positions previously derived from the
// clock are not retroactively adjusted; callers holding a sample
// position are unaffected, only future musical-time conversions.
func (c *Clock) SetTempo(tempo float64) error {
	if tempo <= 0 {
		return invalidArgf("tempo %g must be positive", tempo)
	}
	c.tempo = tempo
	return nil
}

// TimeSignature returns the current time signature.
func (c *Clock) TimeSignature() TimeSignature { return c.signature }

// SetTimeSignature changes the time signature.
func (c *Clock) SetTimeSignature(sig TimeSignature) error {
	if sig.Numerator <= 0 {
		return invalidArgf("time signature numerator %d must be positive", sig.Numerator)
	}
	if !isPowerOfTwo(sig.Denominator) {
		return invalidArgf("time signature denominator %d must be a positive power of two", sig.Denominator)
	}
	c.signature = sig
	return nil
}

// ticksPerBeat is the tick resolution of one time-signature beat. This
// clock treats a beat (after the 4/denominator scaling below) as
// carrying the same tick count as a quarter note, matching the literal
// reading of the conversion formula.
func (c *Clock) ticksPerBeat() int64 { return c.ticksPerQuarterNote }

// SamplesToSeconds converts a sample position to elapsed seconds.
func (c *Clock) SamplesToSeconds(s int64) float64 {
	return float64(s) / float64(c.sampleRate)
}

// SecondsToSamples converts elapsed seconds to a sample position,
// flooring to the nearest sample.
func (c *Clock) SecondsToSamples(t float64) int64 {
	return int64(math.Floor(t * float64(c.sampleRate)))
}

// SamplesToMusicalTime converts a sample position to (bar, beat, tick).
func (c *Clock) SamplesToMusicalTime(s int64) MusicalTime {
	// seconds * (tempo/60) * (4/denominator) beats, times ticks per
	// quarter note; multiplied out before the single division so that
	// exact tick boundaries are not lost to rounding.
	totalTicks := int64(math.Floor(float64(s) * c.tempo * float64(c.ticksPerQuarterNote) * 4.0 /
		(60.0 * float64(c.sampleRate) * float64(c.signature.Denominator))))

	ticksPerBeat := c.ticksPerBeat()
	ticksPerBar := ticksPerBeat * int64(c.signature.Numerator)

	bar := totalTicks/ticksPerBar + 1
	remainder := totalTicks % ticksPerBar
	beat := remainder/ticksPerBeat + 1
	tick := remainder % ticksPerBeat

	return MusicalTime{Bar: int(bar), Beat: int(beat), Tick: tick}
}

// MusicalTimeToSamples converts (bar, beat, tick) to a sample position.
// It is the inverse of SamplesToMusicalTime and fails with
// ErrInvalidArgument if bar/beat/tick are out of bounds. The result is
// floored to a whole sample, so when a tick is not a whole number of
// samples long the returned position can fall just before the tick's
// start and convert back to the previous tick.
func (c *Clock) MusicalTimeToSamples(bar, beat int, tick int64) (int64, error) {
	if bar < 1 {
		return 0, invalidArgf("bar %d must be >= 1", bar)
	}
	if beat < 1 || beat > c.signature.Numerator {
		return 0, invalidArgf("beat %d must be in [1, %d]", beat, c.signature.Numerator)
	}
	ticksPerBeat := c.ticksPerBeat()
	if tick < 0 || tick >= ticksPerBeat {
		return 0, invalidArgf("tick %d must be in [0, %d)", tick, ticksPerBeat)
	}

	ticksPerBar := ticksPerBeat * int64(c.signature.Numerator)
	totalTicks := int64(bar-1)*ticksPerBar + int64(beat-1)*ticksPerBeat + tick

	samples := float64(totalTicks) * float64(c.signature.Denominator) * 60.0 * float64(c.sampleRate) /
		(float64(c.ticksPerQuarterNote) * 4.0 * c.tempo)
	return int64(math.Floor(samples)), nil
}

// BeatLengthSamples returns the length of one time-signature beat in
// samples: round((60/tempo) * (4/denominator) * sample_rate).
func (c *Clock) BeatLengthSamples() int64 {
	beatSeconds := (60.0 / c.tempo) * (4.0 / float64(c.signature.Denominator))
	return int64(math.Round(beatSeconds * float64(c.sampleRate)))
}

// BarLengthSamples returns the length of one bar in samples.
func (c *Clock) BarLengthSamples() int64 {
	return c.BeatLengthSamples() * int64(c.signature.Numerator)
}
