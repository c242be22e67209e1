package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
	"github.com/midtrans/midtrans-cli/internal/resolve"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var transportErr *api.TransportError
	var decodeErr *api.JSONDecodeError
	var parseErr *api.ParseError
	var ambiguous *resolve.AmbiguousError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No server key configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: midtrans auth login --server-key <key>\n")
		msg.WriteString("  - Or set MIDTRANS_SERVER_KEY\n")
		msg.WriteString("  - Or pass --env-file with MIDTRANS_* values\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (status %d)", apiErr.StatusCode)
		if m := apiErr.StatusMessage(); m != "" {
			fmt.Fprintf(&msg, ": %s", m)
		}
		msg.WriteString("\n")
		if details := validationMessages(apiErr.Response); len(details) > 0 {
			for _, d := range details {
				fmt.Fprintf(&msg, "  %s\n", d)
			}
		}
		msg.WriteString("\n")
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))
		if id := apiErr.Response.String("id"); id != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", id)
		}

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %v\n\n", transportErr.Err)
		msg.WriteString("Suggestions:\n")
		switch lower := strings.ToLower(transportErr.Error()); {
		case strings.Contains(lower, "no such host"):
			msg.WriteString("  - DNS resolution failed; check your network and proxy settings\n")
		case strings.Contains(lower, "certificate"):
			msg.WriteString("  - TLS certificate error; check for an intercepting proxy\n")
		case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
			msg.WriteString("  - The request timed out; raise --timeout and retry\n")
		default:
			msg.WriteString("  - Check your network connection\n")
		}
		msg.WriteString("  - Verify the proxy: midtrans auth status\n")
		msg.WriteString("  - Check the transaction status before retrying a charge\n")

	case errors.As(err, &decodeErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", decodeErr.Error())
		msg.WriteString("Suggestions:\n")
		switch decodeErr.Source {
		case "response":
			msg.WriteString("  - The gateway answered with something other than a JSON object\n")
			msg.WriteString("  - Use --debug to see the request\n")
		default:
			msg.WriteString("  - Check that the input is a single JSON object\n")
		}

	case errors.As(err, &parseErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", parseErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The gateway returned an unexpected status_code; use --debug for details\n")

	case errors.As(err, &ambiguous):
		fmt.Fprintf(&msg, "Error: %s\n\n", ambiguous.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Type more of the profile name\n")
		msg.WriteString("  - List profiles: midtrans auth list\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

// validationMessages returns the gateway's validation_messages as strings.
func validationMessages(resp api.Response) []string {
	raw, ok := resp["validation_messages"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 400:
		suggestions.WriteString("  - Check the request parameters\n")
		suggestions.WriteString("  - Preview the request with --dry-run\n")

	case code == 401:
		suggestions.WriteString("  - The server key was rejected\n")
		suggestions.WriteString("  - Sandbox keys start with SB-; use --production only with production keys\n")
		suggestions.WriteString("  - Run: midtrans auth status\n")

	case code == 404:
		suggestions.WriteString("  - The transaction doesn't exist in this environment\n")
		suggestions.WriteString("  - Check the order ID or transaction ID\n")

	case code == 406 || code == 409:
		suggestions.WriteString("  - The order ID was already used; create a new one\n")

	case code == 407:
		suggestions.WriteString("  - The transaction has expired; create a new one\n")

	case code == 412:
		suggestions.WriteString("  - The transaction state does not allow this action\n")
		suggestions.WriteString("  - Check it first: midtrans tx status <id>\n")

	case code >= 500:
		suggestions.WriteString("  - Gateway error; wait and retry\n")
		suggestions.WriteString("  - Check the transaction status before retrying a charge\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
