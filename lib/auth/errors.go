package auth

import "errors"

var (
	ErrUnauthorizedRealm    = errors.New("Unauthorized realm")
	ErrUnauthorizedHostname = errors.New("Unauthorized hostname")
	ErrFailed               = errors.New("authentication failed")
)
