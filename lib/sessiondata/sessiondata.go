// Package sessiondata holds the generic key-value description of an
// authentication session exchanged between the host and a plugin.
package sessiondata

import "slices"

const (
	KeyUsername      = "UserName"
	KeySecret        = "Secret"
	KeyRealm         = "Realm"
	KeyAllowedRealms = "AllowedRealms"

	KeyChallengeBase64 = "ChallengeBase64"
	KeyResponseBase64  = "ResponseBase64"

	KeyAuthzid                 = "Authzid"
	KeyAnonymousToken          = "AnonymousToken"
	KeyService                 = "Service"
	KeyHostname                = "Hostname"
	KeyGssapiDisplayName       = "GssapiDisplayName"
	KeyPasscode                = "Passcode"
	KeySuggestedPin            = "SuggestedPin"
	KeyPin                     = "Pin"
	KeyDigestMd5HashedPassword = "DigestMd5HashedPassword"
	KeyQops                    = "Qops"
	KeyQop                     = "Qop"
	KeyScramIter               = "ScramIter"
	KeyScramSalt               = "ScramSalt"
	KeyScramSaltedPassword     = "ScramSaltedPassword"
	KeyCbTlsUnique             = "CbTlsUnique"
)

// SessionData maps keys to either string or []string values.
type SessionData map[string]any

func New() SessionData {
	return make(SessionData)
}

func (T SessionData) String(key string) (string, bool) {
	if T == nil {
		return "", false
	}
	v, ok := T[key].(string)
	return v, ok
}

func (T SessionData) SetString(key, value string) {
	T[key] = value
}

func (T SessionData) StringList(key string) ([]string, bool) {
	if T == nil {
		return nil, false
	}
	switch v := T[key].(type) {
	case []string:
		return v, true
	case []any:
		// decoded from yaml/json
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func (T SessionData) SetStringList(key string, value []string) {
	T[key] = slices.Clone(value)
}

// Has reports whether key holds a non-nil value of any type.
func (T SessionData) Has(key string) bool {
	return T[key] != nil
}

func (T SessionData) Delete(key string) {
	delete(T, key)
}

func (T SessionData) Username() (string, bool) {
	return T.String(KeyUsername)
}

func (T SessionData) SetUsername(username string) {
	T.SetString(KeyUsername, username)
}

func (T SessionData) Secret() (string, bool) {
	return T.String(KeySecret)
}

func (T SessionData) SetSecret(secret string) {
	T.SetString(KeySecret, secret)
}

func (T SessionData) Realm() (string, bool) {
	return T.String(KeyRealm)
}

func (T SessionData) SetRealm(realm string) {
	T.SetString(KeyRealm, realm)
}

func (T SessionData) AllowedRealms() ([]string, bool) {
	return T.StringList(KeyAllowedRealms)
}

func (T SessionData) SetAllowedRealms(realms []string) {
	T.SetStringList(KeyAllowedRealms, realms)
}

// Clone returns a shallow copy. List values are copied too.
func (T SessionData) Clone() SessionData {
	if T == nil {
		return nil
	}
	m := make(SessionData, len(T))
	for k, v := range T {
		if list, ok := v.([]string); ok {
			v = slices.Clone(list)
		}
		m[k] = v
	}
	return m
}
