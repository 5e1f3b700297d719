package plugin

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/engine"
	"gfx.cafe/gfx/saslplug/lib/instrumentation/prom"
	"gfx.cafe/gfx/saslplug/lib/perror"
)

// step runs one engine step. A completed exchange is released before its
// event is emitted; a failed step keeps the session until Cancel or the next
// Initiate.
func (T *Plugin) step(challenge string) Event {
	start := time.Now()
	response, code := T.session.Step64(challenge)
	elapsed := time.Since(start)

	if T.metrics {
		prom.Step.Duration(T.labels.ToStep(code.String())).Observe(float64(elapsed) / float64(time.Millisecond))
	}
	T.span.AddEvent("step", trace.WithAttributes(
		attribute.Int("sasl.code", int(code)),
		attribute.String("sasl.result", code.String()),
	))
	T.log.Debug(
		"step",
		zap.Stringer("session", T.id),
		zap.Stringer("result", code),
		zap.Duration("elapsed", elapsed),
	)

	switch code {
	case engine.NeedsMore:
		return T.emit(responseEvent(KindResponse, response))
	case engine.OK:
		T.span.SetStatus(codes.Ok, "")
		T.log.Info("session complete", zap.Stringer("session", T.id))
		T.release()
		return T.emit(responseEvent(KindResponseFinal, response))
	default:
		T.span.RecordError(code)
		T.log.Warn("step failed", zap.Stringer("session", T.id), zap.Int("code", int(code)), zap.Stringer("result", code))
		return T.emit(errorEvent(perror.Newf(perror.NotAuthorized, "Authorization error %d", int(code))))
	}
}
