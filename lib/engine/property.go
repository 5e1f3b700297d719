package engine

// Property names a value a mechanism may request from the engine's callback.
type Property int

const (
	PropertyAuthID Property = iota
	PropertyAuthzID
	PropertyPassword
	PropertyAnonymousToken
	PropertyService
	PropertyHostname
	PropertyGSSAPIDisplayName
	PropertyPasscode
	PropertySuggestedPin
	PropertyPin
	PropertyRealm
	PropertyDigestMD5HashedPassword
	PropertyQOPs
	PropertyQOP
	PropertyScramIter
	PropertyScramSalt
	PropertyScramSaltedPassword
	PropertyCBTLSUnique

	PropertyCount
)

var propertyString = [PropertyCount]string{
	PropertyAuthID:                  "authid",
	PropertyAuthzID:                 "authzid",
	PropertyPassword:                "password",
	PropertyAnonymousToken:          "anonymous token",
	PropertyService:                 "service",
	PropertyHostname:                "hostname",
	PropertyGSSAPIDisplayName:       "gssapi display name",
	PropertyPasscode:                "passcode",
	PropertySuggestedPin:            "suggested pin",
	PropertyPin:                     "pin",
	PropertyRealm:                   "realm",
	PropertyDigestMD5HashedPassword: "digest-md5 hashed password",
	PropertyQOPs:                    "qops",
	PropertyQOP:                     "qop",
	PropertyScramIter:               "scram iter",
	PropertyScramSalt:               "scram salt",
	PropertyScramSaltedPassword:     "scram salted password",
	PropertyCBTLSUnique:             "cb tls-unique",
}

func (T Property) String() string {
	if T < 0 || T >= PropertyCount {
		return "unknown"
	}
	return propertyString[T]
}

// Callback supplies property values while a step runs. A false result means
// no value is available; the mechanism decides whether that is fatal.
type Callback interface {
	Property(property Property) (string, bool)
}

type CallbackFunc func(property Property) (string, bool)

func (T CallbackFunc) Property(property Property) (string, bool) {
	return T(property)
}

var _ Callback = CallbackFunc(nil)

type noCallback struct{}

func (noCallback) Property(Property) (string, bool) {
	return "", false
}
