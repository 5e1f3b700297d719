package sasl

import "errors"

var (
	ErrMechanismNotSupported = errors.New("SASL mechanism not supported")
	ErrMissingChannelBinding = errors.New("channel binding data required")
	ErrBadResponse           = errors.New("malformed client response")
)
