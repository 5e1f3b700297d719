package prom

import (
	"gfx.cafe/open/gotoprom"
	"github.com/prometheus/client_golang/prometheus"
)

type SessionLabels struct {
	Mechanism string `label:"mechanism"`
}

// ToEvent returns the labels of an emitted event. code is the error kind or
// "" for responses.
func (s *SessionLabels) ToEvent(kind, code string) EventLabels {
	return EventLabels{
		Mechanism: s.Mechanism,
		Kind:      kind,
		Code:      code,
	}
}

func (s *SessionLabels) ToStep(result string) StepLabels {
	return StepLabels{
		Mechanism: s.Mechanism,
		Result:    result,
	}
}

type EventLabels struct {
	Mechanism string `label:"mechanism"`
	Kind      string `label:"kind"`
	Code      string `label:"code"`
}

type StepLabels struct {
	Mechanism string `label:"mechanism"`
	Result    string `label:"result"`
}

var Session struct {
	Initiated func(SessionLabels) prometheus.Counter `name:"initiated" help:"sessions initiated"`
	Active    func(SessionLabels) prometheus.Gauge   `name:"active" help:"current active sessions"`
	Events    func(EventLabels) prometheus.Counter   `name:"events" help:"events emitted to sinks"`
}

var Step struct {
	Duration func(StepLabels) prometheus.Histogram `name:"duration_ms" buckets:"0.005,0.01,0.1,0.25,0.5,0.75,1,5,10,100,500,1000" help:"ms spent in a mechanism step"`
}

func init() {
	gotoprom.MustInit(&Session, "saslplug_session", prometheus.Labels{})
	gotoprom.MustInit(&Step, "saslplug_step", prometheus.Labels{})
}
