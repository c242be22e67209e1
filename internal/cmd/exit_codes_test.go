package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"not configured", config.ErrNotConfigured, exitAuth},
		{"bad request", &api.APIError{StatusCode: 400}, exitUsage},
		{"unauthorized", &api.APIError{StatusCode: 401}, exitAuth},
		{"not found", &api.APIError{StatusCode: 404}, exitNotFound},
		{"expired", &api.APIError{StatusCode: 407}, exitState},
		{"duplicate order", &api.APIError{StatusCode: 409}, exitState},
		{"precondition", &api.APIError{StatusCode: 412}, exitState},
		{"server", &api.APIError{StatusCode: 503}, exitServer},
		{"wrapped api error", fmt.Errorf("refund: %w", &api.APIError{StatusCode: 404}), exitNotFound},
		{"transport", &api.TransportError{Op: "send", Err: errors.New("dial tcp: connection refused")}, exitNetwork},
		{"decode", &api.JSONDecodeError{Source: "response", Err: errors.New("bad")}, exitDecode},
		{"parse", &api.ParseError{Value: "abc", Err: errors.New("invalid syntax")}, exitDecode},
		{"validation", api.NewValidationError("surface", "x", []string{"core", "snap"}), exitUsage},
		{"usage", errors.New("unknown command \"nope\""), exitUsage},
		{"usage shorthand", errors.New("unknown shorthand flag: 'a' in -a"), exitUsage},
		{"missing body", errors.New("charge requires a request body (--body, --input, --field, or --raw-field)"), exitUsage},
		{"network", errors.New("dial tcp: connection refused"), exitNetwork},
		{"generic", errors.New("boom"), exitGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.code {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.code)
			}
		})
	}
}

func TestExitCode_HandledErrorUsesStoredCode(t *testing.T) {
	err := &handledError{err: errors.New("wrapped"), exitCode: exitNotFound}
	if got := ExitCode(err); got != exitNotFound {
		t.Fatalf("ExitCode(handled) = %d, want %d", got, exitNotFound)
	}
}

func TestExitCode_HandledErrorWithoutCodeInspectsCause(t *testing.T) {
	err := &handledError{err: &api.APIError{StatusCode: 401}}
	if got := ExitCode(err); got != exitAuth {
		t.Fatalf("ExitCode(handled 401) = %d, want %d", got, exitAuth)
	}
}
