// Package sasl implements the server side of the mechanisms the engine
// speaks. The plugin never needs these; they exist to exercise exchanges end
// to end.
package sasl

import (
	"crypto/sha1" //nolint:gosec // SCRAM-SHA-1
	"slices"

	"github.com/emersion/go-sasl"
	"github.com/minio/sha256-simd"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

// Credentials are what the server expects the client to prove.
type Credentials struct {
	Username string
	Password string
	Authzid  string

	// AnonymousToken, if set, is the only trace ANONYMOUS accepts.
	AnonymousToken string

	Realm    string
	Service  string
	Hostname string

	// ChannelBinding is the tls-unique data of the connection. Required by the
	// -PLUS variants.
	ChannelBinding []byte
}

type Server interface {
	sasl.Server

	// ServerFirst reports whether the exchange starts with a server challenge
	// instead of a client initial response.
	ServerFirst() bool
}

type server struct {
	sasl.Server
	first bool
}

func (T server) ServerFirst() bool {
	return T.first
}

var Mechanisms = []string{
	sasl.Anonymous,
	sasl.External,
	sasl.Login,
	sasl.Plain,
	"DIGEST-MD5",
	"CRAM-MD5",
	"SCRAM-SHA-1",
	"SCRAM-SHA-1-PLUS",
	"SCRAM-SHA-256",
	"SCRAM-SHA-256-PLUS",
}

func Supported(mechanism string) bool {
	return slices.Contains(Mechanisms, mechanism)
}

func NewServer(mechanism string, creds Credentials) (Server, error) {
	switch mechanism {
	case sasl.Anonymous:
		return server{
			Server: sasl.NewAnonymousServer(func(trace string) error {
				if creds.AnonymousToken != "" && trace != creds.AnonymousToken {
					return auth.ErrFailed
				}
				return nil
			}),
		}, nil
	case sasl.External:
		return server{
			Server: sasl.NewExternalServer(func(identity string) error {
				if identity != creds.Authzid {
					return auth.ErrFailed
				}
				return nil
			}),
		}, nil
	case sasl.Plain:
		return server{
			Server: sasl.NewPlainServer(func(identity, username, password string) error {
				if identity != creds.Authzid || username != creds.Username || password != creds.Password {
					return auth.ErrFailed
				}
				return nil
			}),
		}, nil
	case sasl.Login:
		return server{
			Server: &loginServer{creds: creds},
		}, nil
	case "CRAM-MD5":
		s, err := newCRAMMD5Server(creds)
		if err != nil {
			return nil, err
		}
		return server{Server: s, first: true}, nil
	case "DIGEST-MD5":
		s, err := newDigestMD5Server(creds)
		if err != nil {
			return nil, err
		}
		return server{Server: s, first: true}, nil
	case "SCRAM-SHA-1":
		return newScramServer(creds, sha1.New, false)
	case "SCRAM-SHA-1-PLUS":
		return newScramServer(creds, sha1.New, true)
	case "SCRAM-SHA-256":
		return newScramServer(creds, sha256.New, false)
	case "SCRAM-SHA-256-PLUS":
		return newScramServer(creds, sha256.New, true)
	default:
		return nil, ErrMechanismNotSupported
	}
}
