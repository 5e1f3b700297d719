package engine

import "errors"

var (
	// ErrUnknownMechanism is the UnknownMechanism code, so CodeOf recovers
	// it from Start errors.
	ErrUnknownMechanism   error = UnknownMechanism
	ErrDuplicateMechanism       = errors.New("duplicate mechanism")
)
