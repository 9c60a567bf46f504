package dawcore

import (
	"errors"
	"fmt"
)

// Error taxonomy per the engine's failure-handling design: every error
// returned across the public API is (or wraps) exactly one of these five
// sentinels, so callers can branch with errors.Is instead of string
// matching.
var (
	// ErrInvalidArgument marks rejection at the API boundary before any
	// state change: negative positions/lengths/counts, out-of-range pan,
	// a non-positive tempo, a non-power-of-two time signature
	// denominator, and similar caller mistakes.
	ErrInvalidArgument = errors.New("dawcore: invalid argument")

	// ErrPreconditionFailed marks an edit that refers to a clip or track
	// the operation does not actually own.
	ErrPreconditionFailed = errors.New("dawcore: precondition failed")

	// ErrInvalidData marks malformed codec input (bad RIFF/WAVE magic,
	// unsupported format tag, missing chunk).
	ErrInvalidData = errors.New("dawcore: invalid data")

	// ErrNotFound marks a missing import path or unresolvable lookup.
	ErrNotFound = errors.New("dawcore: not found")

	// ErrResourceExhausted marks an output or scratch buffer too small
	// to hold the requested samples. On the control path this is
	// reported to the caller; on the audio path the mixer substitutes
	// silence and returns this error for the caller to log, never
	// panicking.
	ErrResourceExhausted = errors.New("dawcore: resource exhausted")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrInvalidArgument, args)...)
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrPreconditionFailed, args)...)
}

func invalidDataf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrInvalidData, args)...)
}

func resourceExhaustedf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrResourceExhausted, args)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrNotFound, args)...)
}

func prepend(e error, args []any) []any {
	out := make([]any, 0, len(args)+1)
	out = append(out, e)
	out = append(out, args...)
	return out
}
