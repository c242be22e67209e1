package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents machine-readable error codes for scripted error handling.
type ErrorCode string

const (
	// CodeBadRequest indicates the gateway rejected the request body (HTTP 400).
	CodeBadRequest ErrorCode = "bad_request"
	// CodeUnauthorized indicates the server key was rejected (HTTP 401).
	CodeUnauthorized ErrorCode = "unauthorized"
	// CodeNotFound indicates the transaction or resource does not exist (HTTP 404).
	CodeNotFound ErrorCode = "not_found"
	// CodeExpired indicates the transaction has expired (HTTP 407).
	CodeExpired ErrorCode = "expired"
	// CodePreconditionFailed indicates the transaction state forbids the action (HTTP 412).
	CodePreconditionFailed ErrorCode = "precondition_failed"
	// CodeConflict indicates a duplicate order or conflicting state (HTTP 406, 409).
	CodeConflict ErrorCode = "conflict"
	// CodeServerError indicates a gateway-side failure (HTTP 5xx).
	CodeServerError ErrorCode = "server_error"
	// CodeTransport indicates the request never produced a response.
	CodeTransport ErrorCode = "transport"
	// CodeDecode indicates a JSON document or status code could not be decoded.
	CodeDecode ErrorCode = "decode"
	// CodeValidation indicates local input validation failed.
	CodeValidation ErrorCode = "validation_failed"
	// CodeUnknown indicates an unknown or unclassified error.
	CodeUnknown ErrorCode = "unknown"
)

// IsRetryable reports whether repeating the same call may succeed.
// The library itself never retries.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case CodeServerError, CodeTransport:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case CodeUnauthorized:
		return "Run 'midtrans auth login' or check that the server key matches the environment"
	case CodeNotFound:
		return "Verify the order ID or transaction ID exists in this environment"
	case CodeExpired:
		return "The transaction has expired; create a new one"
	case CodePreconditionFailed:
		return "Check the transaction status before retrying this action"
	case CodeConflict:
		return "Use a new order ID"
	case CodeBadRequest:
		return "Check the request parameters"
	case CodeServerError:
		return "The gateway encountered an error; try again later"
	case CodeTransport:
		return "Check network connectivity and proxy settings"
	case CodeDecode:
		return "Check that the input is a JSON object"
	case CodeValidation:
		return "Check the input values"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps a gateway status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return CodeBadRequest
	case 401:
		return CodeUnauthorized
	case 404:
		return CodeNotFound
	case 406, 409:
		return CodeConflict
	case 407:
		return CodeExpired
	case 412:
		return CodePreconditionFailed
	default:
		if statusCode >= 500 && statusCode < 600 {
			return CodeServerError
		}
		return CodeUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError creates a StructuredError for input validation failures,
// including the list of allowed values.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          CodeValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Retryable:     false,
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError. The
// gateway's status_message is preferred over the full diagnostic message.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.StatusCode)
	ctx := map[string]any{
		"status_code": apiErr.StatusCode,
	}
	if id := apiErr.Response.String("id"); id != "" {
		ctx["id"] = id
	}
	if msgs, ok := apiErr.Response["validation_messages"]; ok {
		ctx["validation_messages"] = msgs
	}
	msg := apiErr.StatusMessage()
	if msg == "" {
		msg = apiErr.Message
	}
	return &StructuredError{
		Code:       code,
		Message:    msg,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	switch KindOf(err) {
	case KindTransport:
		return NewStructuredError(CodeTransport, err.Error())
	case KindJSONDecode, KindParse:
		return NewStructuredError(CodeDecode, err.Error())
	}

	return &StructuredError{
		Code:    CodeUnknown,
		Message: err.Error(),
	}
}
