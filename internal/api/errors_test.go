package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{400, ErrBadRequest},
		{401, ErrUnauthorized},
		{404, ErrNotFound},
		{407, ErrExpired},
		{412, ErrPreconditionFailed},
		{500, ErrServerError},
		{503, ErrServerError},
	}
	for _, tt := range tests {
		err := fmt.Errorf("wrapped: %w", &APIError{StatusCode: tt.status})
		if !errors.Is(err, tt.target) {
			t.Errorf("status %d should match %v", tt.status, tt.target)
		}
	}
	if errors.Is(&APIError{StatusCode: 404}, ErrUnauthorized) {
		t.Error("404 should not match ErrUnauthorized")
	}
	if errors.Is(&APIError{StatusCode: 418}, ErrServerError) {
		t.Error("418 should not match ErrServerError")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"transport", &TransportError{Op: "send", Err: errors.New("refused")}, KindTransport},
		{"parse", &ParseError{Value: "abc", Err: strconv.ErrSyntax}, KindParse},
		{"decode", &JSONDecodeError{Source: "response", Err: errors.New("bad")}, KindJSONDecode},
		{"api", &APIError{StatusCode: 400}, KindAPI},
		{"wrapped api", fmt.Errorf("charge: %w", &APIError{StatusCode: 400}), KindAPI},
		{"other", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&TransportError{Op: "send", Err: errors.New("refused")}, "request error (send): refused"},
		{&TransportError{Err: errors.New("refused")}, "request error: refused"},
		{&JSONDecodeError{Source: "parameters", Err: errors.New("eof")}, "fail to decode JSON string (parameters): eof"},
		{&APIError{StatusCode: 404, Message: "not here"}, "not here"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsHelpers(t *testing.T) {
	inner := errors.New("inner")
	transport := &TransportError{Op: "send", Err: inner}
	if !IsTransportError(transport) || IsAPIError(transport) {
		t.Error("IsTransportError/IsAPIError mismatch")
	}
	if !errors.Is(transport, inner) {
		t.Error("TransportError should unwrap")
	}
	if !IsJSONDecodeError(&JSONDecodeError{}) || !IsParseError(&ParseError{}) {
		t.Error("decode/parse helpers mismatch")
	}
	if StatusCodeOf(errors.New("x")) != 0 {
		t.Error("StatusCodeOf should be 0 for non-API errors")
	}
	if StatusCodeOf(&APIError{StatusCode: http.StatusPreconditionFailed}) != 412 {
		t.Error("StatusCodeOf should return the API status")
	}
}

func TestKind_String(t *testing.T) {
	if KindJSONDecode.String() != "json_decode" || KindAPI.String() != "api" || Kind(99).String() != "other" {
		t.Error("unexpected Kind strings")
	}
}
