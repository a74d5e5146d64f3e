package graphql

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkError reports that a query did not complete: the request could not
// be sent, the server answered with a non-2xx status, or the body could not
// be read.
type NetworkError struct {
	// Query is the name of the query, e.g. "getCommunity".
	Query string

	// StatusCode is the HTTP status if a response was received, else 0.
	StatusCode int

	Err error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: unexpected status %d", ErrNetwork, e.Query, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", ErrNetwork, e.Query, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// MalformedResponseError reports a response body that is not JSON or lacks
// an expected field.
type MalformedResponseError struct {
	Query string

	// Field is the dotted path of the missing or invalid field, if known.
	Field string

	Err error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Query)
	if e.Field != "" {
		msg += ": missing " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func missing(query, field string) error {
	return &MalformedResponseError{Query: query, Field: field}
}
