package perror

type Code int

const (
	// NotAuthorized means the data provided for authorization was rejected,
	// either by domain validation or by the mechanism itself.
	NotAuthorized Code = iota + 1
	// OperationNotSupported means the mechanism engine or a session could not
	// be created.
	OperationNotSupported
	// WrongState means an operation was called out of order or is not
	// supported by the plugin.
	WrongState
	// SessionCanceled is reported for every cancellation.
	SessionCanceled

	codeCount
)

var codeString = [codeCount]string{
	NotAuthorized:         "not authorized",
	OperationNotSupported: "operation not supported",
	WrongState:            "wrong state",
	SessionCanceled:       "session canceled",
}

func (T Code) String() string {
	if T <= 0 || T >= codeCount {
		return "unknown"
	}
	return codeString[T]
}

// Error lets a Code be used as an errors.Is target.
func (T Code) Error() string {
	return T.String()
}
