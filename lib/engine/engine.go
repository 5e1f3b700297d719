// Package engine is the client side SASL mechanism library. It creates
// per-exchange sessions and resolves the values mechanisms need through a
// Callback.
package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

type Engine struct {
	callback  Callback
	names     []string
	factories map[string]Factory

	log *zap.Logger
}

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithMechanisms replaces the default mechanism set.
func WithMechanisms(registrations ...Registration) Option {
	return func(e *Engine) {
		e.names = nil
		e.factories = make(map[string]Factory, len(registrations))
		for _, registration := range registrations {
			e.add(registration)
		}
	}
}

// New creates an engine. callback may be nil, in which case no property is
// ever available.
func New(callback Callback, options ...Option) (*Engine, error) {
	if callback == nil {
		callback = noCallback{}
	}
	e := &Engine{
		callback:  callback,
		factories: make(map[string]Factory),
		log:       zap.NewNop(),
	}
	for _, registration := range DefaultMechanisms() {
		e.add(registration)
	}
	for _, option := range options {
		option(e)
	}

	if len(e.names) != len(e.factories) {
		return nil, ErrDuplicateMechanism
	}

	return e, nil
}

func (T *Engine) add(registration Registration) {
	T.names = append(T.names, registration.Name)
	T.factories[registration.Name] = registration.New
}

// Mechanisms returns the names of the supported client mechanisms.
func (T *Engine) Mechanisms() []string {
	return slices.Clone(T.names)
}

func (T *Engine) Supports(name string) bool {
	_, ok := T.factories[name]
	return ok
}

// Start creates a client session for the named mechanism.
func (T *Engine) Start(name string) (*Session, error) {
	factory, ok := T.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMechanism, name)
	}

	T.log.Debug("starting client session", zap.String("mechanism", name))

	return &Session{
		engine:    T,
		name:      name,
		mechanism: factory(),
	}, nil
}
