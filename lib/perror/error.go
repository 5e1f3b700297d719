// Package perror defines the errors a plugin reports through its error event.
package perror

type Error interface {
	error

	Code() Code
	Message() string
}
