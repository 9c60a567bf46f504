package wavcodec

import (
	"errors"
	"fmt"
)

// ErrInvalidData marks malformed RIFF/WAVE input: missing magic,
// unsupported format tag, or a missing required chunk.
var ErrInvalidData = errors.New("wavcodec: invalid data")

// ErrInvalidArgument marks an invalid Encode option.
var ErrInvalidArgument = errors.New("wavcodec: invalid argument")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
