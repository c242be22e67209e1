package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched by *APIError through errors.Is.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized: server key rejected")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("transaction expired")
	ErrPreconditionFailed = errors.New("transaction state does not allow this action")
	ErrServerError        = errors.New("payment gateway server error")
)

var (
	// ErrMissingTransactionID is wrapped when a notification has no string transaction_id.
	ErrMissingTransactionID = errors.New("notification has no string transaction_id")

	// ErrMissingField is wrapped when a success response lacks an expected field.
	ErrMissingField = errors.New("response is missing an expected field")
)

// Kind tags the closed set of error kinds a call can fail with.
type Kind int

const (
	KindNone Kind = iota
	KindTransport
	KindParse
	KindJSONDecode
	KindAPI
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindJSONDecode:
		return "json_decode"
	case KindAPI:
		return "api"
	default:
		return "other"
	}
}

// TransportError is a network, TLS, or client construction failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("request error: %v", e.Err)
	}
	return fmt.Sprintf("request error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError is a malformed status_code value.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse int error: status_code %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// JSONDecodeError is a malformed JSON document. Source names which document:
// "parameters", "response", or "notification".
type JSONDecodeError struct {
	Source string
	Err    error
}

func (e *JSONDecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("fail to decode JSON string: %v", e.Err)
	}
	return fmt.Sprintf("fail to decode JSON string (%s): %v", e.Source, e.Err)
}

func (e *JSONDecodeError) Unwrap() error { return e.Err }

// APIError is a failure reported by the gateway (status_code >= 400).
type APIError struct {
	StatusCode int
	Message    string
	Response   Response
	Header     http.Header
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusMessage returns the gateway's status_message field, if any.
func (e *APIError) StatusMessage() string {
	return e.Response.String("status_message")
}

// Is matches the status sentinels.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == ErrBadRequest
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusProxyAuthRequired:
		// The gateway reuses 407 for expired transactions.
		return target == ErrExpired
	case http.StatusPreconditionFailed:
		return target == ErrPreconditionFailed
	}
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return target == ErrServerError
	}
	return false
}

// KindOf reports which kind err belongs to.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return KindAPI
	}
	var decodeErr *JSONDecodeError
	if errors.As(err, &decodeErr) {
		return KindJSONDecode
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return KindParse
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}
	return KindOther
}

// IsAPIError checks if the error is an API error.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsJSONDecodeError checks if the error is a JSON decode error.
func IsJSONDecodeError(err error) bool {
	var e *JSONDecodeError
	return errors.As(err, &e)
}

// IsParseError checks if the error is a status code parse error.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// StatusCodeOf returns the gateway status code carried by err, or 0.
func StatusCodeOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
