package fsm

import "errors"

var (
	ErrMachineNotInitialized  = errors.New("the machine has no states added")
	ErrTransitionNotPermitted = errors.New("transition not permitted")
	ErrStateUndefined         = errors.New("state has not been registered")
)
