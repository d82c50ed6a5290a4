package material

import "errors"

var (
	// ErrInvalidParameters is wrapped by every constructor that rejects its input.
	ErrInvalidParameters = errors.New("invalid material parameters")
	ErrUnknownPreset     = errors.New("unknown material preset")
)
