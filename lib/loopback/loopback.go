// Package loopback relays a plugin's responses to an in-process server peer
// and feeds the server's challenges back until the exchange ends.
package loopback

import (
	"encoding/base64"
	"fmt"

	"gfx.cafe/gfx/saslplug/lib/auth/sasl"
	"gfx.cafe/gfx/saslplug/lib/plugin"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

type Result struct {
	// Rounds is the number of events the plugin emitted.
	Rounds int
	// Final is the terminal event.
	Final plugin.Event
}

// Run initiates mechanism on p with data and drives it against srv. The
// returned error is the plugin's error event or a server rejection.
func Run(p *plugin.Plugin, srv sasl.Server, mechanism string, data sessiondata.SessionData) (Result, error) {
	data = data.Clone()
	if data == nil {
		data = sessiondata.New()
	}

	if srv.ServerFirst() {
		challenge, _, err := srv.Next(nil)
		if err != nil {
			return Result{}, fmt.Errorf("server: %w", err)
		}
		data.SetString(sessiondata.KeyChallengeBase64, base64.StdEncoding.EncodeToString(challenge))
	}

	var result Result
	var serverDone bool

	event := p.Initiate(mechanism, data)
	for {
		result.Rounds++
		result.Final = event

		switch event.Kind {
		case plugin.KindResponse:
			if serverDone {
				return result, ErrUnexpectedResponse
			}
			response, err := decode(event)
			if err != nil {
				return result, err
			}
			challenge, done, err := srv.Next(response)
			if err != nil {
				return result, fmt.Errorf("server: %w", err)
			}
			serverDone = done

			next := sessiondata.New()
			next.SetString(sessiondata.KeyChallengeBase64, base64.StdEncoding.EncodeToString(challenge))
			event = p.Continue(next)
		case plugin.KindResponseFinal:
			response, err := decode(event)
			if err != nil {
				return result, err
			}
			if serverDone {
				if len(response) != 0 {
					return result, ErrUnexpectedResponse
				}
				return result, nil
			}
			_, done, err := srv.Next(response)
			if err != nil {
				return result, fmt.Errorf("server: %w", err)
			}
			if !done {
				return result, ErrIncomplete
			}
			return result, nil
		default:
			return result, event.Err
		}
	}
}

func decode(event plugin.Event) ([]byte, error) {
	value, _ := event.ResponseBase64()
	return base64.StdEncoding.DecodeString(value)
}
