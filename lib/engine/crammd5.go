package engine

import (
	"github.com/xdg-go/stringprep"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type cramMD5 struct {
	done bool
}

func newCRAMMD5() Mechanism {
	return &cramMD5{}
}

func (T *cramMD5) Step(props Callback, challenge []byte) ([]byte, bool, error) {
	if T.done {
		return nil, false, MechanismCalledTooManyTimes
	}
	// the server speaks first
	if len(challenge) == 0 {
		return []byte{}, false, nil
	}

	authid, ok := props.Property(PropertyAuthID)
	if !ok {
		return nil, false, NoAuthID
	}
	password, ok := props.Property(PropertyPassword)
	if !ok {
		return nil, false, NoPassword
	}

	authid, err := stringprep.SASLprep.Prepare(authid)
	if err != nil {
		return nil, false, SASLPrepError
	}
	password, err = stringprep.SASLprep.Prepare(password)
	if err != nil {
		return nil, false, SASLPrepError
	}

	T.done = true
	return []byte(authid + " " + auth.CRAMMD5(password, challenge)), true, nil
}
