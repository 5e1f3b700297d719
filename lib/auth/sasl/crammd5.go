package sasl

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type cramMD5Server struct {
	creds     Credentials
	challenge []byte
	done      bool
}

func newCRAMMD5Server(creds Credentials) (*cramMD5Server, error) {
	var random [8]byte
	if _, err := rand.Read(random[:]); err != nil {
		return nil, err
	}
	hostname := creds.Hostname
	if hostname == "" {
		hostname = "localhost"
	}
	return &cramMD5Server{
		creds:     creds,
		challenge: []byte(fmt.Sprintf("<%s.%d@%s>", hex.EncodeToString(random[:]), time.Now().Unix(), hostname)),
	}, nil
}

func (T *cramMD5Server) Next(response []byte) ([]byte, bool, error) {
	if T.done {
		return nil, false, sasl.ErrUnexpectedClientResponse
	}
	if response == nil {
		return T.challenge, false, nil
	}
	T.done = true

	username, digest, ok := strings.Cut(string(response), " ")
	if !ok {
		return nil, true, ErrBadResponse
	}
	if username != T.creds.Username || !auth.CheckDigestResponse(auth.CRAMMD5(T.creds.Password, T.challenge), digest) {
		return nil, true, auth.ErrFailed
	}
	return nil, true, nil
}
