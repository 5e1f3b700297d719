// Package fsm is a small finite state machine with an explicit set of
// permitted transitions.
package fsm

import (
	"fmt"
	"sync"
)

// TransitionRuleSet is the set of states a state may move to.
type TransitionRuleSet[S comparable] map[S]struct{}

// Copy copies the TransitionRuleSet in to a different TransitionRuleSet.
func (trs TransitionRuleSet[S]) Copy() TransitionRuleSet[S] {
	srt := make(TransitionRuleSet[S], len(trs))

	for rule, value := range trs {
		srt[rule] = value
	}

	return srt
}

// Callback is called synchronously after every successful transition,
// outside the machine's lock.
type Callback[S comparable] func(from, to S)

// Machine is the state machine. The zero value has no states.
type Machine[S comparable] struct {
	state       S
	initialized bool
	mu          sync.RWMutex

	transitions map[S]TransitionRuleSet[S]

	callback Callback[S]
}

// New creates a machine in the initial state with the given rules.
func New[S comparable](initial S, rules map[S][]S) *Machine[S] {
	m := &Machine[S]{}
	for source, destinations := range rules {
		m.AddStateTransitionRules(source, destinations...)
	}
	m.AddStateTransitionRules(initial)
	m.state = initial
	m.initialized = true
	return m
}

// CurrentState returns the machine's current state.
func (m *Machine[S]) CurrentState() S {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// Is reports whether the machine is in state.
func (m *Machine[S]) Is(state S) bool {
	return m.CurrentState() == state
}

// StateTransitionRules returns the states that state may move to.
func (m *Machine[S]) StateTransitionRules(state S) (TransitionRuleSet[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.transitions == nil {
		return nil, ErrMachineNotInitialized
	}

	// ensure the state has been registered
	rules, ok := m.transitions[state]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrStateUndefined, state)
	}

	return rules.Copy(), nil
}

// AddStateTransitionRules defines which states sourceState may move to.
func (m *Machine[S]) AddStateTransitionRules(sourceState S, destinationStates ...S) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transitions == nil {
		m.transitions = make(map[S]TransitionRuleSet[S])
	}

	if m.transitions[sourceState] == nil {
		m.transitions[sourceState] = make(TransitionRuleSet[S])
	}

	mp := m.transitions[sourceState]

	for _, dest := range destinationStates {
		mp[dest] = struct{}{}
	}
}

func (m *Machine[S]) SetStateTransitionCallback(callback Callback[S]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callback = callback
}

// StateTransition moves the machine to toState. The first call on a zero
// machine sets the initial state.
func (m *Machine[S]) StateTransition(toState S) error {
	m.mu.Lock()

	if m.transitions == nil {
		m.mu.Unlock()
		return ErrMachineNotInitialized
	}

	if !m.initialized {
		if _, ok := m.transitions[toState]; !ok {
			m.mu.Unlock()
			return fmt.Errorf("%w: initial state %v", ErrStateUndefined, toState)
		}
		m.state = toState
		m.initialized = true
		m.mu.Unlock()
		return nil
	}

	if _, ok := m.transitions[m.state][toState]; !ok {
		from := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: %v to %v", ErrTransitionNotPermitted, from, toState)
	}

	if _, ok := m.transitions[toState]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrStateUndefined, toState)
	}

	from := m.state
	m.state = toState
	callback := m.callback
	m.mu.Unlock()

	if callback != nil {
		callback(from, toState)
	}

	return nil
}
