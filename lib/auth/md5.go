package auth

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // MD5 required by the CRAM-MD5 and DIGEST-MD5 mechanisms
	"encoding/hex"
	"strings"
)

// CRAMMD5 returns the hex encoded HMAC-MD5 of challenge keyed by password.
func CRAMMD5(password string, challenge []byte) string {
	mac := hmac.New(md5.New, []byte(password))
	mac.Write(challenge)
	return hex.EncodeToString(mac.Sum(nil))
}

// DigestParams are the directives that enter the DIGEST-MD5 response value.
type DigestParams struct {
	Username  string
	Realm     string
	Nonce     string
	CNonce    string
	NC        string
	QOP       string
	DigestURI string
	Authzid   string
}

// DigestHashedPassword returns H(username ":" realm ":" password).
func DigestHashedPassword(username, realm, password string) [md5.Size]byte {
	return md5.Sum([]byte(username + ":" + realm + ":" + password))
}

// DigestResponse computes the response directive. The client sends the
// initial value, the server answers with the non-initial one as rspauth.
func DigestResponse(hashed [md5.Size]byte, params DigestParams, initial bool) string {
	hash := md5.New()
	hash.Write(hashed[:])
	hash.Write([]byte(":" + params.Nonce + ":" + params.CNonce))
	if params.Authzid != "" {
		hash.Write([]byte(":" + params.Authzid))
	}
	ha1 := hex.EncodeToString(hash.Sum(nil))
	hash.Reset()

	if initial {
		hash.Write([]byte("AUTHENTICATE"))
	}
	hash.Write([]byte(":" + params.DigestURI))
	if params.QOP == "auth-int" || params.QOP == "auth-conf" {
		hash.Write([]byte(":00000000000000000000000000000000"))
	}
	ha2 := hex.EncodeToString(hash.Sum(nil))
	hash.Reset()

	var kd strings.Builder
	kd.Grow(len(ha1) + len(params.Nonce) + len(params.NC) + len(params.CNonce) + len(params.QOP) + len(ha2) + 5)
	kd.WriteString(ha1)
	kd.WriteString(":")
	kd.WriteString(params.Nonce)
	kd.WriteString(":")
	kd.WriteString(params.NC)
	kd.WriteString(":")
	kd.WriteString(params.CNonce)
	kd.WriteString(":")
	kd.WriteString(params.QOP)
	kd.WriteString(":")
	kd.WriteString(ha2)
	hash.Write([]byte(kd.String()))
	return hex.EncodeToString(hash.Sum(nil))
}

// CheckDigestResponse compares two response values in constant time.
func CheckDigestResponse(expected, value string) bool {
	return hmac.Equal([]byte(expected), []byte(value))
}
