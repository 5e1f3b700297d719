package engine

import (
	"crypto/md5" //nolint:gosec // DIGEST-MD5
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"gfx.cafe/gfx/saslplug/lib/auth"
)

type digestMD5State int

const (
	digestMD5Challenge digestMD5State = iota
	digestMD5ResponseAuth
	digestMD5Done
)

type digestMD5 struct {
	state  digestMD5State
	params auth.DigestParams
	hashed [md5.Size]byte
}

func newDigestMD5() Mechanism {
	return &digestMD5{}
}

func (T *digestMD5) Step(props Callback, challenge []byte) ([]byte, bool, error) {
	switch T.state {
	case digestMD5Challenge:
		// the server speaks first
		if len(challenge) == 0 {
			return []byte{}, false, nil
		}
		response, err := T.respond(props, challenge)
		if err != nil {
			return nil, false, err
		}
		T.state = digestMD5ResponseAuth
		return response, false, nil
	case digestMD5ResponseAuth:
		directives, err := auth.ParseDirectives(string(challenge))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", MechanismParseError, err)
		}
		rspauth, ok := directives.Get("rspauth")
		if !ok {
			return nil, false, MechanismParseError
		}
		if !auth.CheckDigestResponse(auth.DigestResponse(T.hashed, T.params, false), rspauth) {
			return nil, false, AuthenticationError
		}
		T.state = digestMD5Done
		return []byte{}, true, nil
	default:
		return nil, false, MechanismCalledTooManyTimes
	}
}

func (T *digestMD5) respond(props Callback, challenge []byte) ([]byte, error) {
	directives, err := auth.ParseDirectives(string(challenge))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", MechanismParseError, err)
	}

	nonce, ok := directives.Get("nonce")
	if !ok || nonce == "" {
		return nil, MechanismParseError
	}
	if algorithm, _ := directives.Get("algorithm"); algorithm != "md5-sess" {
		return nil, MechanismParseError
	}

	offered := []string{"auth"}
	if qops, ok := directives.Get("qop"); ok {
		offered = offered[:0]
		for _, qop := range strings.Split(qops, ",") {
			offered = append(offered, strings.TrimSpace(qop))
		}
	}
	qop := "auth"
	if value, ok := props.Property(PropertyQOP); ok {
		qop = strings.TrimPrefix(value, "qop-")
		if qop == "int" || qop == "conf" {
			qop = "auth-" + qop
		}
	}
	// confidentiality needs a negotiated cipher, which is not supported
	if qop == "auth-conf" || !slices.Contains(offered, qop) {
		return nil, AuthenticationError
	}

	authid, ok := props.Property(PropertyAuthID)
	if !ok {
		return nil, NoAuthID
	}
	service, ok := props.Property(PropertyService)
	if !ok {
		return nil, NoService
	}
	hostname, ok := props.Property(PropertyHostname)
	if !ok {
		return nil, NoHostname
	}
	authzid, _ := props.Property(PropertyAuthzID)

	realm, ok := props.Property(PropertyRealm)
	if !ok {
		realm, _ = directives.Get("realm")
	}

	if hashed, ok := props.Property(PropertyDigestMD5HashedPassword); ok {
		raw, err := hex.DecodeString(hashed)
		if err != nil || len(raw) != md5.Size {
			return nil, AuthenticationError
		}
		copy(T.hashed[:], raw)
	} else {
		password, ok := props.Property(PropertyPassword)
		if !ok {
			return nil, NoPassword
		}
		T.hashed = auth.DigestHashedPassword(authid, realm, password)
	}

	var cnonce [16]byte
	if _, err = rand.Read(cnonce[:]); err != nil {
		return nil, CryptoError
	}

	T.params = auth.DigestParams{
		Username:  authid,
		Realm:     realm,
		Nonce:     nonce,
		CNonce:    base64.RawStdEncoding.EncodeToString(cnonce[:]),
		NC:        "00000001",
		QOP:       qop,
		DigestURI: service + "/" + hostname,
		Authzid:   authzid,
	}

	var b strings.Builder
	b.WriteString("username=")
	b.WriteString(auth.QuoteDirective(T.params.Username))
	if realm != "" {
		b.WriteString(",realm=")
		b.WriteString(auth.QuoteDirective(realm))
	}
	b.WriteString(",nonce=")
	b.WriteString(auth.QuoteDirective(T.params.Nonce))
	b.WriteString(",cnonce=")
	b.WriteString(auth.QuoteDirective(T.params.CNonce))
	b.WriteString(",nc=")
	b.WriteString(T.params.NC)
	b.WriteString(",qop=")
	b.WriteString(T.params.QOP)
	b.WriteString(",digest-uri=")
	b.WriteString(auth.QuoteDirective(T.params.DigestURI))
	b.WriteString(",response=")
	b.WriteString(auth.DigestResponse(T.hashed, T.params, true))
	if charset, _ := directives.Get("charset"); charset == "utf-8" {
		b.WriteString(",charset=utf-8")
	}
	if authzid != "" {
		b.WriteString(",authzid=")
		b.WriteString(auth.QuoteDirective(authzid))
	}

	return []byte(b.String()), nil
}
