package sasl

import (
	"crypto/rand"
	"hash"

	"github.com/xdg-go/scram"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type scramServer struct {
	conversation *scram.ServerConversation
	started      bool
}

func newScramServer(creds Credentials, hashGenerator func() hash.Hash, plus bool) (Server, error) {
	generator := scram.HashGeneratorFcn(hashGenerator)

	client, err := generator.NewClient(creds.Username, creds.Password, "")
	if err != nil {
		return nil, err
	}

	var salt [16]byte
	if _, err = rand.Read(salt[:]); err != nil {
		return nil, err
	}
	kf := scram.KeyFactors{
		Salt:  string(salt[:]),
		Iters: 4096,
	}
	stored := client.GetStoredCredentials(kf)

	s, err := generator.NewServer(
		func(username string) (scram.StoredCredentials, error) {
			if username != creds.Username {
				return scram.StoredCredentials{}, auth.ErrFailed
			}
			return stored, nil
		},
	)
	if err != nil {
		return nil, err
	}

	var conversation *scram.ServerConversation
	if plus {
		if len(creds.ChannelBinding) == 0 {
			return nil, ErrMissingChannelBinding
		}
		conversation = s.NewConversationWithChannelBindingRequired(scram.NewTLSUniqueBinding(creds.ChannelBinding))
	} else {
		conversation = s.NewConversation()
	}

	return server{
		Server: &scramServer{
			conversation: conversation,
		},
	}, nil
}

func (T *scramServer) Next(response []byte) ([]byte, bool, error) {
	// no initial response, send an empty challenge
	if response == nil && !T.started {
		return []byte{}, false, nil
	}
	T.started = true

	msg, err := T.conversation.Step(string(response))
	if err != nil {
		return nil, false, err
	}

	if T.conversation.Done() {
		// check if conversation params are valid
		if !T.conversation.Valid() {
			return nil, false, auth.ErrFailed
		}

		// done
		return []byte(msg), true, nil
	}

	// there is more
	return []byte(msg), false, nil
}
