package perror

import "fmt"

// Wrap reports cause under code with a formatted message. The cause stays
// reachable through errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) Error {
	if cause == nil {
		return nil
	}
	return err{
		code:    code,
		message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}
