package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // SCRAM-SHA-1
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/xdg-go/stringprep"
	"golang.org/x/crypto/pbkdf2"
)

type scramState int

const (
	scramClientFirst scramState = iota
	scramClientFinal
	scramServerFinal
	scramDone
)

type scram struct {
	hash func() hash.Hash
	plus bool

	state           scramState
	gs2Header       string
	channelBinding  []byte
	nonce           string
	clientFirstBare string
	serverSignature []byte
}

func newScramSHA1() Mechanism {
	return &scram{hash: sha1.New}
}

func newScramSHA1Plus() Mechanism {
	return &scram{hash: sha1.New, plus: true}
}

func newScramSHA256() Mechanism {
	return &scram{hash: sha256.New}
}

func newScramSHA256Plus() Mechanism {
	return &scram{hash: sha256.New, plus: true}
}

func (T *scram) Step(props Callback, challenge []byte) ([]byte, bool, error) {
	switch T.state {
	case scramClientFirst:
		response, err := T.clientFirst(props)
		if err != nil {
			return nil, false, err
		}
		T.state = scramClientFinal
		return response, false, nil
	case scramClientFinal:
		response, err := T.clientFinal(props, string(challenge))
		if err != nil {
			return nil, false, err
		}
		T.state = scramServerFinal
		return response, false, nil
	case scramServerFinal:
		if err := T.verify(string(challenge)); err != nil {
			return nil, false, err
		}
		T.state = scramDone
		return []byte{}, true, nil
	default:
		return nil, false, MechanismCalledTooManyTimes
	}
}

func (T *scram) clientFirst(props Callback) ([]byte, error) {
	authid, ok := props.Property(PropertyAuthID)
	if !ok {
		return nil, NoAuthID
	}
	authid, err := stringprep.SASLprep.Prepare(authid)
	if err != nil {
		return nil, SASLPrepError
	}

	authzid, hasAuthzid := props.Property(PropertyAuthzID)
	if hasAuthzid {
		authzid, err = stringprep.SASLprep.Prepare(authzid)
		if err != nil {
			return nil, SASLPrepError
		}
	}

	cb, hasCB := props.Property(PropertyCBTLSUnique)
	if hasCB {
		T.channelBinding, err = base64.StdEncoding.DecodeString(cb)
		if err != nil {
			return nil, Base64Error
		}
	}

	var flag string
	switch {
	case T.plus:
		if !hasCB {
			return nil, NoCBTLSUnique
		}
		flag = "p=tls-unique"
	case hasCB:
		// we could bind, but the server did not offer it
		flag = "y"
	default:
		flag = "n"
	}
	T.gs2Header = flag + ","
	if hasAuthzid && authzid != "" {
		T.gs2Header += "a=" + scramEscape(authzid)
	}
	T.gs2Header += ","

	var nonce [18]byte
	if _, err = rand.Read(nonce[:]); err != nil {
		return nil, CryptoError
	}
	T.nonce = base64.RawStdEncoding.EncodeToString(nonce[:])
	T.clientFirstBare = "n=" + scramEscape(authid) + ",r=" + T.nonce

	return []byte(T.gs2Header + T.clientFirstBare), nil
}

func (T *scram) clientFinal(props Callback, serverFirst string) ([]byte, error) {
	attributes, err := scramAttributes(serverFirst)
	if err != nil {
		return nil, err
	}
	if _, ok := attributes['m']; ok {
		return nil, fmt.Errorf("%w: unsupported mandatory extension", MechanismParseError)
	}

	nonce := attributes['r']
	if len(nonce) <= len(T.nonce) || !strings.HasPrefix(nonce, T.nonce) {
		return nil, fmt.Errorf("%w: bad server nonce", MechanismParseError)
	}
	salt, err := base64.StdEncoding.DecodeString(attributes['s'])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: bad salt", MechanismParseError)
	}
	iterations, err := strconv.Atoi(attributes['i'])
	if err != nil || iterations <= 0 {
		return nil, fmt.Errorf("%w: bad iteration count", MechanismParseError)
	}

	var saltedPassword []byte
	if salted, ok := props.Property(PropertyScramSaltedPassword); ok {
		saltedPassword, err = hex.DecodeString(salted)
		if err != nil || len(saltedPassword) != T.hash().Size() {
			return nil, CryptoError
		}
	} else {
		password, ok := props.Property(PropertyPassword)
		if !ok {
			return nil, NoPassword
		}
		password, err = stringprep.SASLprep.Prepare(password)
		if err != nil {
			return nil, SASLPrepError
		}
		saltedPassword = pbkdf2.Key([]byte(password), salt, iterations, T.hash().Size(), T.hash)
	}

	cbind := []byte(T.gs2Header)
	if T.plus {
		cbind = append(cbind, T.channelBinding...)
	}
	withoutProof := "c=" + base64.StdEncoding.EncodeToString(cbind) + ",r=" + nonce
	authMessage := T.clientFirstBare + "," + serverFirst + "," + withoutProof

	clientKey := T.hmac(saltedPassword, "Client Key")
	storedKey := T.hash()
	storedKey.Write(clientKey)
	clientSignature := T.hmac(storedKey.Sum(nil), authMessage)
	proof := make([]byte, len(clientKey))
	for i := range proof {
		proof[i] = clientKey[i] ^ clientSignature[i]
	}

	serverKey := T.hmac(saltedPassword, "Server Key")
	T.serverSignature = T.hmac(serverKey, authMessage)

	return []byte(withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof)), nil
}

func (T *scram) verify(serverFinal string) error {
	attributes, err := scramAttributes(serverFinal)
	if err != nil {
		return err
	}
	if e, ok := attributes['e']; ok {
		return fmt.Errorf("%w: %s", AuthenticationError, e)
	}
	signature, err := base64.StdEncoding.DecodeString(attributes['v'])
	if err != nil {
		return fmt.Errorf("%w: bad server signature", MechanismParseError)
	}
	if !hmac.Equal(signature, T.serverSignature) {
		return AuthenticationError
	}
	return nil
}

func (T *scram) hmac(key []byte, message string) []byte {
	mac := hmac.New(T.hash, key)
	mac.Write([]byte(message))
	return mac.Sum(nil)
}

func scramAttributes(message string) (map[byte]string, error) {
	attributes := make(map[byte]string)
	for _, field := range strings.Split(message, ",") {
		if len(field) < 2 || field[1] != '=' {
			return nil, fmt.Errorf("%w: malformed attribute %q", MechanismParseError, field)
		}
		attributes[field[0]] = field[2:]
	}
	return attributes, nil
}

var scramEscaper = strings.NewReplacer("=", "=3D", ",", "=2C")

func scramEscape(name string) string {
	return scramEscaper.Replace(name)
}
