package engine

// Mechanism is the client side of one SASL mechanism for one exchange.
// Step consumes the peer's challenge and returns the next response. done
// reports that no further steps are expected. A Code returned as err is
// reported unchanged, other errors become AuthenticationError.
type Mechanism interface {
	Step(props Callback, challenge []byte) (response []byte, done bool, err error)
}

type Factory func() Mechanism

type Registration struct {
	Name string
	New  Factory
}

// DefaultMechanisms returns every mechanism the engine implements, in the
// order they are advertised.
func DefaultMechanisms() []Registration {
	return []Registration{
		{Name: "ANONYMOUS", New: newAnonymous},
		{Name: "EXTERNAL", New: newExternal},
		{Name: "LOGIN", New: newLogin},
		{Name: "PLAIN", New: newPlain},
		{Name: "DIGEST-MD5", New: newDigestMD5},
		{Name: "CRAM-MD5", New: newCRAMMD5},
		{Name: "SCRAM-SHA-1", New: newScramSHA1},
		{Name: "SCRAM-SHA-1-PLUS", New: newScramSHA1Plus},
		{Name: "SCRAM-SHA-256", New: newScramSHA256},
		{Name: "SCRAM-SHA-256-PLUS", New: newScramSHA256Plus},
	}
}
