package places

import (
	"errors"
	"fmt"
)

// TransportError means no response body was obtained (DNS, refused
// connection, reset, context cancelled). It is never retried here.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("places transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means the response body did not match the expected schema.
// Decoding is all-or-nothing so no places accompany this error.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("places decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError is a soft error: the service answered and the body decoded, but
// it reported a failure status. Results, possibly empty, are returned with it.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("UrlRequest error %q (status: %s)", e.Message, e.Status)
}

// IsTransportError reports whether err is or wraps a TransportError
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsDecodeError reports whether err is or wraps a DecodeError
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// AsAPIError returns the APIError in err's chain, if any
func AsAPIError(err error) (*APIError, bool) {
	var target *APIError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
