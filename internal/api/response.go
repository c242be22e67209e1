package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StatusCodeKey is the reconciled status field present in every Response.
const StatusCodeKey = "status_code"

// Response is a decoded JSON object returned by the gateway. Numbers are kept
// as json.Number.
type Response map[string]any

// String returns the value at key rendered as a string. Strings and numbers
// are returned verbatim; anything else yields "".
func (r Response) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// StatusCode returns the reconciled status_code.
func (r Response) StatusCode() string {
	return r.String(StatusCodeKey)
}

// TransactionStatus returns the transaction_status field.
func (r Response) TransactionStatus() string {
	return r.String("transaction_status")
}

// decodeObject decodes data as a single JSON object, keeping numbers exact.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level JSON object")
	}
	if m == nil {
		return nil, fmt.Errorf("expected a JSON object, got null")
	}
	return m, nil
}

// DecodeParameters parses a JSON request document. The empty string is an
// empty object.
func DecodeParameters(parameters string) (map[string]any, error) {
	if parameters == "" {
		return map[string]any{}, nil
	}
	m, err := decodeObject([]byte(parameters))
	if err != nil {
		return nil, &JSONDecodeError{Source: "parameters", Err: err}
	}
	return m, nil
}

// EncodeParameters renders v as a parameters document for the client methods.
func EncodeParameters(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal parameters: %w", err)
	}
	return string(data), nil
}
