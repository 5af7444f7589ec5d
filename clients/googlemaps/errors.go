package googlemaps

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrNotFound     = errors.New("no match")
	ErrUnavailable  = errors.New("service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

type Error struct {
	Service string
	Status  string
	Err     error
	kind    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Service, e.kind)
	if e.Status != "" {
		msg = fmt.Sprintf("%s (status %s)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns the sentinel this error is classified as.
func (e *Error) Kind() error {
	return e.kind
}

func newError(kind error, service string, status string, err error) *Error {
	return &Error{Service: service, Status: status, Err: err, kind: kind}
}

// errorForStatus classifies a non-OK status reported in the response body.
func errorForStatus(service string, status string) *Error {
	switch status {
	case "ZERO_RESULTS":
		return newError(ErrNotFound, service, status, nil)
	case "REQUEST_DENIED":
		return newError(ErrUnauthorized, service, status, nil)
	default:
		return newError(ErrUnavailable, service, status, nil)
	}
}
