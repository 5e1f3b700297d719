package sasl

import (
	"github.com/emersion/go-sasl"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type loginState int

const (
	loginUsername loginState = iota
	loginPassword
	loginDone
)

// loginServer is the server side of LOGIN. The client sends the username as
// its initial response.
type loginServer struct {
	creds    Credentials
	state    loginState
	username string
}

func (T *loginServer) Next(response []byte) ([]byte, bool, error) {
	switch T.state {
	case loginUsername:
		if response == nil {
			return []byte("Username:"), false, nil
		}
		T.username = string(response)
		T.state = loginPassword
		return []byte("Password:"), false, nil
	case loginPassword:
		T.state = loginDone
		if T.username != T.creds.Username || string(response) != T.creds.Password {
			return nil, true, auth.ErrFailed
		}
		return nil, true, nil
	default:
		return nil, false, sasl.ErrUnexpectedClientResponse
	}
}
