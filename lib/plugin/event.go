package plugin

import (
	"gfx.cafe/gfx/saslplug/lib/perror"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

type Kind int

const (
	// KindResponse carries an intermediate response. More challenges follow.
	KindResponse Kind = iota
	// KindResponseFinal carries the last response of a completed exchange.
	KindResponseFinal
	KindError

	kindCount
)

var kindString = [kindCount]string{
	KindResponse:      "response",
	KindResponseFinal: "response_final",
	KindError:         "error",
}

func (T Kind) String() string {
	if T < 0 || T >= kindCount {
		return "unknown"
	}
	return kindString[T]
}

// Event is the only observable output of the plugin. Responses carry
// ResponseBase64 in Data, errors carry Err.
type Event struct {
	Kind Kind
	Data sessiondata.SessionData
	Err  perror.Error
}

func (T Event) ResponseBase64() (string, bool) {
	return T.Data.String(sessiondata.KeyResponseBase64)
}

// Sink receives events synchronously. It may call back into the plugin.
type Sink func(Event)

func responseEvent(kind Kind, responseBase64 string) Event {
	data := sessiondata.New()
	data.SetString(sessiondata.KeyResponseBase64, responseBase64)
	return Event{
		Kind: kind,
		Data: data,
	}
}

func errorEvent(err perror.Error) Event {
	return Event{
		Kind: KindError,
		Err:  err,
	}
}
