package transmission

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError reports a credential the daemon will not accept: basic auth was
// rejected outright, or the session id was refused twice in a row.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	if e.Status == http.StatusConflict {
		return "daemon rejected the session id twice in a row"
	}
	return fmt.Sprintf("daemon rejected credentials (HTTP %d)", e.Status)
}

// TransientError wraps connection-level failures (refused, reset, timeout).
// The client never retries these itself; the poller's next tick does.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ProtocolError is a non-success result the daemon returned for one specific
// request. It never affects other in-flight state.
type ProtocolError struct {
	Method string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Reason)
}

// ValidationError rejects a request before it reaches the transport.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
