package engine

import (
	"errors"
	"fmt"

	"github.com/emersion/go-sasl"
)

// goSASL drives a go-sasl client. rounds is the number of responses the
// client sends in a complete exchange.
type goSASL struct {
	connect func(props Callback) (sasl.Client, error)
	rounds  int

	client sasl.Client
	round  int
}

func (T *goSASL) Step(props Callback, challenge []byte) ([]byte, bool, error) {
	if T.client == nil {
		client, err := T.connect(props)
		if err != nil {
			return nil, false, err
		}
		_, ir, err := client.Start()
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", AuthenticationError, err)
		}
		T.client = client
		T.round = 1
		return ir, T.round == T.rounds, nil
	}

	if T.round >= T.rounds {
		return nil, false, MechanismCalledTooManyTimes
	}

	response, err := T.client.Next(challenge)
	if err != nil {
		if errors.Is(err, sasl.ErrUnexpectedServerChallenge) {
			return nil, false, fmt.Errorf("%w: %v", MechanismParseError, err)
		}
		return nil, false, err
	}
	T.round++
	return response, T.round == T.rounds, nil
}

func newAnonymous() Mechanism {
	return &goSASL{
		connect: func(props Callback) (sasl.Client, error) {
			token, ok := props.Property(PropertyAnonymousToken)
			if !ok {
				return nil, NoAnonymousToken
			}
			return sasl.NewAnonymousClient(token), nil
		},
		rounds: 1,
	}
}

func newExternal() Mechanism {
	return &goSASL{
		connect: func(props Callback) (sasl.Client, error) {
			authzid, _ := props.Property(PropertyAuthzID)
			return sasl.NewExternalClient(authzid), nil
		},
		rounds: 1,
	}
}

func newPlain() Mechanism {
	return &goSASL{
		connect: func(props Callback) (sasl.Client, error) {
			authzid, _ := props.Property(PropertyAuthzID)
			authid, ok := props.Property(PropertyAuthID)
			if !ok {
				return nil, NoAuthID
			}
			password, ok := props.Property(PropertyPassword)
			if !ok {
				return nil, NoPassword
			}
			return sasl.NewPlainClient(authzid, authid, password), nil
		},
		rounds: 1,
	}
}

func newLogin() Mechanism {
	return &goSASL{
		connect: func(props Callback) (sasl.Client, error) {
			authid, ok := props.Property(PropertyAuthID)
			if !ok {
				return nil, NoAuthID
			}
			password, ok := props.Property(PropertyPassword)
			if !ok {
				return nil, NoPassword
			}
			return sasl.NewLoginClient(authid, password), nil
		},
		rounds: 2,
	}
}
