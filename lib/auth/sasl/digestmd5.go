package sasl

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"strings"

	"github.com/emersion/go-sasl"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type digestMD5State int

const (
	digestMD5Challenge digestMD5State = iota
	digestMD5Response
	digestMD5Done
)

var digestMD5QOPs = []string{"auth", "auth-int"}

type digestMD5Server struct {
	creds Credentials
	nonce string
	state digestMD5State
}

func newDigestMD5Server(creds Credentials) (*digestMD5Server, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return &digestMD5Server{
		creds: creds,
		nonce: base64.RawStdEncoding.EncodeToString(nonce[:]),
	}, nil
}

func (T *digestMD5Server) Next(response []byte) ([]byte, bool, error) {
	switch T.state {
	case digestMD5Challenge:
		T.state = digestMD5Response
		var b strings.Builder
		if T.creds.Realm != "" {
			b.WriteString("realm=")
			b.WriteString(auth.QuoteDirective(T.creds.Realm))
			b.WriteString(",")
		}
		b.WriteString("nonce=")
		b.WriteString(auth.QuoteDirective(T.nonce))
		b.WriteString(",qop=")
		b.WriteString(auth.QuoteDirective(strings.Join(digestMD5QOPs, ",")))
		b.WriteString(",charset=utf-8,algorithm=md5-sess")
		return []byte(b.String()), false, nil
	case digestMD5Response:
		T.state = digestMD5Done
		rspauth, err := T.verify(response)
		if err != nil {
			return nil, true, err
		}
		return []byte("rspauth=" + rspauth), true, nil
	default:
		return nil, false, sasl.ErrUnexpectedClientResponse
	}
}

func (T *digestMD5Server) verify(response []byte) (string, error) {
	directives, err := auth.ParseDirectives(string(response))
	if err != nil {
		return "", err
	}

	get := func(key string) string {
		value, _ := directives.Get(key)
		return value
	}

	params := auth.DigestParams{
		Username:  get("username"),
		Realm:     get("realm"),
		Nonce:     get("nonce"),
		CNonce:    get("cnonce"),
		NC:        get("nc"),
		QOP:       get("qop"),
		DigestURI: get("digest-uri"),
		Authzid:   get("authzid"),
	}
	if params.QOP == "" {
		params.QOP = "auth"
	}

	if params.Nonce != T.nonce || params.CNonce == "" || params.NC != "00000001" {
		return "", ErrBadResponse
	}
	if !slices.Contains(digestMD5QOPs, params.QOP) {
		return "", ErrBadResponse
	}
	if params.Realm != T.creds.Realm {
		return "", auth.ErrFailed
	}
	if params.DigestURI != T.creds.Service+"/"+T.creds.Hostname {
		return "", auth.ErrFailed
	}
	if params.Username != T.creds.Username || params.Authzid != T.creds.Authzid {
		return "", auth.ErrFailed
	}

	hashed := auth.DigestHashedPassword(T.creds.Username, T.creds.Realm, T.creds.Password)
	if !auth.CheckDigestResponse(auth.DigestResponse(hashed, params, true), get("response")) {
		return "", auth.ErrFailed
	}

	return auth.DigestResponse(hashed, params, false), nil
}
