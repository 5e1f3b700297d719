package plugin

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/engine"
)

// EngineFactory creates the plugin's engine. callback resolves properties
// from the active session.
type EngineFactory func(callback engine.Callback) (*engine.Engine, error)

type Option func(*Plugin)

func WithLogger(log *zap.Logger) Option {
	return func(p *Plugin) {
		p.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Plugin) {
		p.tracer = tracer
	}
}

func WithEngine(factory EngineFactory) Option {
	return func(p *Plugin) {
		p.newEngine = factory
	}
}

// WithMetrics toggles prometheus metrics. They are on by default.
func WithMetrics(enabled bool) Option {
	return func(p *Plugin) {
		p.metrics = enabled
	}
}

func WithSink(sink Sink) Option {
	return func(p *Plugin) {
		p.sinks = append(p.sinks, sink)
	}
}
