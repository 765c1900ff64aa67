package clients

import (
	"errors"
	"fmt"
)

// APIError is an application error reported by the resource API as
// {"error": "..."} in the response body.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
}

// TransportError covers network failures and non-2xx responses that carry no
// application error. StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return e.Op + ": transport failure"
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means the response arrived but did not have the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}
