package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_UnknownCommandSuggestion(t *testing.T) {
	res := runCLI(t, "chrage")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, `Did you mean "charge"?`)
	assert.Equal(t, exitUsage, ExitCode(res.err))

	res = runCLI(t, "notifcation")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, `Did you mean "notification"?`)
}

func TestRoot_UnknownFlagSuggestion(t *testing.T) {
	res := runCLI(t, "charge", "--dry-rn")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, `Did you mean "--dry-run"?`)
	assert.Contains(t, res.stderr, `Run "midtrans charge --help"`)
}

func TestRoot_OutputFlagConflicts(t *testing.T) {
	setupGateway(t, newRouteHandler())

	res := runCLI(t, "tx", "status", "o-1", "--json", "-o", "jsonl")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--json conflicts with --output jsonl")
	assert.Equal(t, exitUsage, ExitCode(res.err))

	res = runCLI(t, "tx", "status", "o-1", "--jq", ".x", "-o", "text")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--jq/--query require")

	res = runCLI(t, "tx", "status", "o-1", "-o", "yaml")
	require.Error(t, res.err)

	res = runCLI(t, "tx", "status", "o-1", "--timeout", "-1s")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--timeout must be >= 0")
}

func TestRoot_QuietSuppressesText(t *testing.T) {
	handler := newRouteHandler().On("GET", "/v2/o-1/status", jsonResponse(200, statusBody("o-1", "settlement")))
	setupGateway(t, handler)

	res := runCLI(t, "tx", "status", "o-1", "--quiet")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	res = runCLI(t, "tx", "status", "o-1", "-Q", "--json")
	require.NoError(t, res.err)
	assert.Equal(t, "o-1", decodeJSON(t, res.stdout)["order_id"])
}

func TestRoot_NotConfigured(t *testing.T) {
	useMemoryKeyring(t)

	res := runCLI(t, "tx", "status", "o-1")
	require.Error(t, res.err)
	assert.Equal(t, exitAuth, ExitCode(res.err))
	assert.Contains(t, res.stderr, "No server key configured.")
}

func TestRoot_ServerKeyFlagWins(t *testing.T) {
	handler := newRouteHandler().On("GET", "/v2/o-1/status", jsonResponse(200, statusBody("o-1", "settlement")))
	setupGateway(t, handler)

	res := runCLI(t, "tx", "status", "o-1", "--sk", "SB-Mid-server-FLAGKEY")
	require.NoError(t, res.err, res.stderr)

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	user, _, ok := (&http.Request{Header: reqs[0].Header}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "SB-Mid-server-FLAGKEY", user)
}

func TestRoot_HelpListsCommands(t *testing.T) {
	res := runCLI(t, "--help")
	require.NoError(t, res.err)
	for _, name := range []string{"auth", "charge", "capture", "card", "subscriptions", "pay-account", "tx", "notification", "snap", "api", "schema", "version"} {
		assert.True(t, strings.Contains(res.stdout, "  "+name+" "), "help missing %s", name)
	}
}
