// Package plugin adapts the SASL engine to the generic authentication
// session interface: initiate, continue and cancel, with results reported as
// events.
package plugin

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/auth"
	"gfx.cafe/gfx/saslplug/lib/engine"
	"gfx.cafe/gfx/saslplug/lib/instrumentation/prom"
	"gfx.cafe/gfx/saslplug/lib/perror"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
	"gfx.cafe/gfx/saslplug/lib/util/decorator"
	"gfx.cafe/gfx/saslplug/lib/util/fsm"
)

// TypeSASL is the protocol family reported by Type.
const TypeSASL = "sasl"

const tracerName = "gfx.cafe/gfx/saslplug/lib/plugin"

type state int

const (
	stateIdle state = iota
	stateActive

	stateCount
)

var stateString = [stateCount]string{
	stateIdle:   "idle",
	stateActive: "active",
}

func (T state) String() string {
	if T < 0 || T >= stateCount {
		return "unknown"
	}
	return stateString[T]
}

// Plugin runs at most one session at a time. It is not safe for concurrent
// use; sinks run on the calling goroutine and may call back in.
type Plugin struct {
	noCopy decorator.NoCopy

	engine    *engine.Engine
	newEngine EngineFactory
	sinks     []Sink

	machine *fsm.Machine[state]
	session *engine.Session
	data    sessiondata.SessionData
	id      uuid.UUID
	span    trace.Span
	labels  prom.SessionLabels

	log     *zap.Logger
	tracer  trace.Tracer
	metrics bool
}

func New(options ...Option) *Plugin {
	p := &Plugin{
		machine: fsm.New(stateIdle, map[state][]state{
			stateIdle:   {stateActive},
			stateActive: {stateIdle},
		}),
		log:     zap.NewNop(),
		metrics: true,
	}
	for _, option := range options {
		option(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	if p.newEngine == nil {
		p.newEngine = func(callback engine.Callback) (*engine.Engine, error) {
			return engine.New(callback, engine.WithLogger(p.log))
		}
	}

	var err error
	p.engine, err = p.newEngine(p)
	if err != nil {
		p.log.Error("couldn't initialize sasl library", zap.Error(err))
		p.engine = nil
	}

	p.machine.SetStateTransitionCallback(func(from, to state) {
		p.log.Debug(
			"session state changed",
			zap.Stringer("session", p.id),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	})

	return p
}

// Type returns "sasl", or "" when the engine could not be created.
func (T *Plugin) Type() string {
	if T.engine == nil {
		return ""
	}
	return TypeSASL
}

// Mechanisms lists the mechanisms the engine supports, independent of
// session state.
func (T *Plugin) Mechanisms() []string {
	if T.engine == nil {
		return []string{}
	}
	return T.engine.Mechanisms()
}

// Mechanism returns the mechanism of the active session, or "" when idle.
func (T *Plugin) Mechanism() string {
	if T.session == nil {
		return ""
	}
	return T.session.Mechanism()
}

func (T *Plugin) Active() bool {
	return T.machine.Is(stateActive)
}

// Subscribe adds a sink. Sinks receive events in the order they were added.
func (T *Plugin) Subscribe(sink Sink) {
	T.sinks = append(T.sinks, sink)
}

// Initiate validates the session's domain, starts mechanism and runs the
// first step with the data's ChallengeBase64. An active session is replaced
// once validation passes.
func (T *Plugin) Initiate(mechanism string, data sessiondata.SessionData) Event {
	if err := auth.CheckSessionDomain(data); err != nil {
		T.log.Info("session domain rejected", zap.String("mechanism", mechanism), zap.Error(err))
		return T.emit(errorEvent(perror.New(perror.NotAuthorized, err.Error())))
	}

	if T.engine == nil {
		return T.emit(errorEvent(perror.New(perror.OperationNotSupported, "Couldn't initialize sasl library")))
	}

	if T.Active() {
		T.log.Info("replacing active session", zap.Stringer("session", T.id))
		T.release()
	}

	session, err := T.engine.Start(mechanism)
	if err != nil {
		T.log.Info("couldn't initialize sasl session", zap.String("mechanism", mechanism), zap.Error(err))
		return T.emit(errorEvent(perror.Wrap(
			perror.OperationNotSupported,
			err,
			"Couldn't initialize sasl session, error %d",
			int(engine.CodeOf(err)),
		)))
	}

	T.session = session
	if data == nil {
		T.data = sessiondata.New()
	} else {
		T.data = data.Clone()
	}
	T.id = uuid.New()
	T.labels = prom.SessionLabels{Mechanism: mechanism}
	_, T.span = T.tracer.Start(
		context.Background(),
		"sasl session",
		trace.WithAttributes(
			attribute.String("sasl.mechanism", mechanism),
			attribute.String("sasl.session_id", T.id.String()),
		),
	)
	if T.metrics {
		prom.Session.Initiated(T.labels).Inc()
		prom.Session.Active(T.labels).Inc()
	}
	if err = T.machine.StateTransition(stateActive); err != nil {
		T.log.Error("session state", zap.Error(err))
	}

	T.log.Info("session initiated", zap.Stringer("session", T.id), zap.String("mechanism", mechanism))

	challenge, _ := T.data.String(sessiondata.KeyChallengeBase64)
	return T.step(challenge)
}

// Continue runs the next step with the data's ChallengeBase64. The data
// retained at Initiate is not replaced.
func (T *Plugin) Continue(data sessiondata.SessionData) Event {
	if !T.Active() {
		return T.emit(errorEvent(perror.New(perror.WrongState, "Initiate needs to be issued first")))
	}

	challenge, _ := data.String(sessiondata.KeyChallengeBase64)
	return T.step(challenge)
}

// Cancel always reports SessionCanceled and releases an active session.
func (T *Plugin) Cancel() Event {
	if T.Active() {
		T.span.SetStatus(codes.Error, "canceled")
		T.log.Info("session canceled", zap.Stringer("session", T.id))
		T.release()
	}
	return T.emit(errorEvent(perror.New(perror.SessionCanceled, "Session canceled")))
}

func (T *Plugin) UserActionFinished(sessiondata.SessionData) Event {
	return T.emit(errorEvent(perror.New(perror.WrongState, "SASL plugin doesn't support user actions")))
}

func (T *Plugin) Refresh(sessiondata.SessionData) Event {
	return T.emit(errorEvent(perror.New(perror.WrongState, "SASL plugin doesn't support refresh")))
}

// release finishes the engine session and drops the session data.
func (T *Plugin) release() {
	if T.session != nil {
		T.session.Finish()
		T.session = nil
	}
	T.data = nil
	if T.span != nil {
		T.span.End()
		T.span = nil
	}
	if T.metrics {
		prom.Session.Active(T.labels).Dec()
	}
	if err := T.machine.StateTransition(stateIdle); err != nil {
		T.log.Error("session state", zap.Error(err))
	}
}

func (T *Plugin) emit(event Event) Event {
	if T.metrics {
		var code string
		if event.Err != nil {
			code = event.Err.Code().String()
		}
		prom.Session.Events(T.labels.ToEvent(event.Kind.String(), code)).Inc()
	}

	for _, sink := range slices.Clone(T.sinks) {
		sink(event)
	}
	return event
}
