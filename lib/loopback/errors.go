package loopback

import "errors"

var (
	ErrUnexpectedResponse = errors.New("client responded after the server finished")
	ErrIncomplete         = errors.New("client finished before the server")
)
