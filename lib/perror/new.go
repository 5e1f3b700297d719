package perror

import (
	"errors"
	"fmt"
)

func New(code Code, message string) Error {
	return err{
		code:    code,
		message: message,
	}
}

func Newf(code Code, format string, args ...any) Error {
	return New(code, fmt.Sprintf(format, args...))
}

type err struct {
	code    Code
	message string
	cause   error
}

func (T err) Code() Code {
	return T.code
}

func (T err) Message() string {
	return T.message
}

func (T err) Error() string {
	return T.code.String() + ": " + T.message
}

func (T err) Is(target error) bool {
	var code Code
	if errors.As(target, &code) {
		return code == T.code
	}
	return false
}

func (T err) Unwrap() error {
	return T.cause
}

var _ Error = err{}
