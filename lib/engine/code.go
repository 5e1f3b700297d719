package engine

// Code is the result of a step. OK and NeedsMore are successes, everything
// else is a failure. Failure codes are also errors so mechanisms can return
// them directly.
type Code int

const (
	OK                          Code = 0
	NeedsMore                   Code = 1
	UnknownMechanism            Code = 2
	MechanismCalledTooManyTimes Code = 3
	Base64Error                 Code = 8
	CryptoError                 Code = 9
	SASLPrepError               Code = 29
	MechanismParseError         Code = 30
	AuthenticationError         Code = 31
	NoAnonymousToken            Code = 51
	NoAuthID                    Code = 52
	NoAuthzID                   Code = 53
	NoPassword                  Code = 54
	NoService                   Code = 57
	NoHostname                  Code = 58
	NoCBTLSUnique               Code = 64
)

var codeString = map[Code]string{
	OK:                          "ok",
	NeedsMore:                   "needs more",
	UnknownMechanism:            "unknown mechanism",
	MechanismCalledTooManyTimes: "mechanism called too many times",
	Base64Error:                 "base64 error",
	CryptoError:                 "crypto error",
	SASLPrepError:               "saslprep error",
	MechanismParseError:         "mechanism parse error",
	AuthenticationError:         "authentication error",
	NoAnonymousToken:            "no anonymous token",
	NoAuthID:                    "no authid",
	NoAuthzID:                   "no authzid",
	NoPassword:                  "no password",
	NoService:                   "no service",
	NoHostname:                  "no hostname",
	NoCBTLSUnique:               "no tls-unique channel binding",
}

func (T Code) String() string {
	if s, ok := codeString[T]; ok {
		return s
	}
	return "unknown"
}

func (T Code) Error() string {
	return "sasl: " + T.String()
}

func (T Code) Failed() bool {
	return T != OK && T != NeedsMore
}
