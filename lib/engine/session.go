package engine

import (
	"encoding/base64"
	"errors"

	"go.uber.org/zap"
)

// Session is one client exchange. It is not safe for concurrent use.
type Session struct {
	engine    *Engine
	name      string
	mechanism Mechanism

	done     bool
	finished bool
}

func (T *Session) Mechanism() string {
	return T.name
}

// Step runs one step with a raw challenge.
func (T *Session) Step(challenge []byte) ([]byte, Code) {
	if T.finished || T.done {
		return nil, MechanismCalledTooManyTimes
	}

	response, done, err := T.mechanism.Step(T.engine.callback, challenge)
	if err != nil {
		code := CodeOf(err)
		T.engine.log.Debug(
			"client step failed",
			zap.String("mechanism", T.name),
			zap.Stringer("code", code),
			zap.Error(err),
		)
		return nil, code
	}

	if done {
		T.done = true
		return response, OK
	}
	return response, NeedsMore
}

// Step64 runs one step with a base64 challenge and returns a base64
// response. An empty challenge is a zero length one.
func (T *Session) Step64(challenge string) (string, Code) {
	in, err := base64.StdEncoding.DecodeString(challenge)
	if err != nil {
		return "", Base64Error
	}

	out, code := T.Step(in)
	if code.Failed() {
		return "", code
	}
	return base64.StdEncoding.EncodeToString(out), code
}

// Finish releases the session. Further steps fail.
func (T *Session) Finish() {
	T.finished = true
	T.mechanism = nil
}

// CodeOf returns the failure code carried by err. Errors without one are
// reported as AuthenticationError.
func CodeOf(err error) Code {
	var code Code
	if errors.As(err, &code) && code.Failed() {
		return code
	}
	return AuthenticationError
}
