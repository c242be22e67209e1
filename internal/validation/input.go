package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits checked before anything is sent to the gateway.
const (
	MaxIdentifierLength = 255
	MaxJSONPayload      = 1048576 // 1MB for JSON payloads
	MaxHeaderValue      = 4096
)

// ValidateIdentifier checks an order ID, transaction ID, token, subscription ID,
// or account ID used in a URL path. kind names the argument in errors.
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	length := utf8.RuneCountInString(id)
	if length > MaxIdentifierLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", kind, MaxIdentifierLength, length)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%s %q contains whitespace or control characters", kind, id)
		}
	}
	return nil
}

// ValidateJSONPayload checks that payload is a JSON object within the size limit.
func ValidateJSONPayload(payload string) error {
	if strings.TrimSpace(payload) == "" {
		return fmt.Errorf("JSON payload cannot be empty")
	}

	// Use byte length for JSON payloads as they're transmitted as UTF-8
	length := len(payload)
	if length > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, length)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return fmt.Errorf("JSON payload must be an object: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("JSON payload must be an object, got null")
	}
	return nil
}

// ParseHeader parses a "Name: value" or "Name=value" header flag.
func ParseHeader(raw string) (string, string, error) {
	sep := strings.IndexAny(raw, ":=")
	if sep <= 0 {
		return "", "", fmt.Errorf("invalid header %q: expected Name: value or Name=value", raw)
	}
	name := strings.TrimSpace(raw[:sep])
	value := strings.TrimSpace(raw[sep+1:])
	if name == "" {
		return "", "", fmt.Errorf("invalid header %q: empty name", raw)
	}
	for _, r := range name {
		if !isTokenRune(r) {
			return "", "", fmt.Errorf("invalid header name %q: contains %q", name, r)
		}
	}
	if len(value) > MaxHeaderValue {
		return "", "", fmt.Errorf("header %s exceeds maximum size of %d bytes", name, MaxHeaderValue)
	}
	if strings.ContainsAny(value, "\r\n") {
		return "", "", fmt.Errorf("header %s value contains a line break", name)
	}
	return name, value, nil
}

// isTokenRune reports whether r may appear in an HTTP header field name.
func isTokenRune(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune("!#$%&'*+-.^_`|~", r)
}
