package api

import "fmt"

// NetworkError reports a transport-level failure: the backend was never
// reached (connection refused, DNS, timeout).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable (%s): %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Message carries the body's
// "error" field when present, a generic text otherwise.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// DecodeError reports a 2xx response whose body did not parse as the
// expected JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports a client-side guard failure before any request
// is issued (invalid quantity, missing selection, unknown side).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
