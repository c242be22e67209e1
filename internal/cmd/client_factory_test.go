package cmd

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
)

type executorCall struct {
	Method    string
	ServerKey string
	URL       string
	Params    string
	Headers   http.Header
	Proxy     string
}

// recordingExecutor answers every call with a settled status.
type recordingExecutor struct {
	mu    sync.Mutex
	calls []executorCall
}

func (r *recordingExecutor) Request(_ context.Context, method, serverKey, apiURL, parameters string, headers http.Header, proxy string) (api.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, executorCall{method, serverKey, apiURL, parameters, headers.Clone(), proxy})
	return api.Response{"status_code": "200", "transaction_status": "settlement"}, nil
}

func useRecordingExecutor(t *testing.T) *recordingExecutor {
	t.Helper()
	rec := &recordingExecutor{}
	testExecutor = rec
	t.Cleanup(func() { testExecutor = nil })
	t.Setenv(config.EnvServerKey, testServerKey)
	return rec
}

func TestClientFactory_Environments(t *testing.T) {
	rec := useRecordingExecutor(t)

	require.NoError(t, runCLI(t, "tx", "status", "o-1").err)
	require.NoError(t, runCLI(t, "tx", "status", "o-1", "--production").err)
	require.NoError(t, runCLI(t, "tx", "status", "o-1", "--snap").err)

	require.Len(t, rec.calls, 3)
	assert.Equal(t, "https://api.sandbox.midtrans.com/v2/o-1/status", rec.calls[0].URL)
	assert.Equal(t, "https://api.midtrans.com/v2/o-1/status", rec.calls[1].URL)
	assert.Equal(t, "https://api.sandbox.midtrans.com/v2/o-1/status", rec.calls[2].URL)
	for _, c := range rec.calls {
		assert.Equal(t, testServerKey, c.ServerKey)
		assert.Equal(t, http.MethodGet, c.Method)
	}
}

func TestClientFactory_HeadersAndProxy(t *testing.T) {
	rec := useRecordingExecutor(t)

	res := runCLI(t, "tx", "cancel", "o-1",
		"-H", "X-Append-Notification: https://example.com/a,https://example.com/b",
		"--idempotency-key", "cancel-o-1",
		"--proxy", "http://proxy.example.com:3128")
	require.NoError(t, res.err, res.stderr)

	require.Len(t, rec.calls, 1)
	c := rec.calls[0]
	assert.Equal(t, "https://example.com/a,https://example.com/b", c.Headers.Get("X-Append-Notification"))
	assert.Equal(t, "cancel-o-1", c.Headers.Get("Idempotency-Key"))
	assert.Equal(t, "http://proxy.example.com:3128", c.Proxy)
}

func TestClientFactory_RejectsBadSettings(t *testing.T) {
	rec := useRecordingExecutor(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad header", []string{"-H", "no-colon"}, "header"},
		{"private notification url", []string{"-H", "X-Override-Notification: http://127.0.0.1/hook"}, "invalid X-Override-Notification header"},
		{"bad proxy scheme", []string{"--proxy", "ftp://proxy.example.com"}, "invalid proxy"},
		{"metadata proxy", []string{"--proxy", "http://169.254.169.254"}, "invalid proxy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, append([]string{"tx", "status", "o-1"}, tt.args...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.want)
		})
	}
	assert.Empty(t, rec.calls)
}

func TestClientFactory_AllowPrivate(t *testing.T) {
	rec := useRecordingExecutor(t)

	res := runCLI(t, "tx", "status", "o-1", "--allow-private", "-H", "X-Override-Notification: http://localhost:8080/hook")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "allowing private/localhost notification URLs")
	require.Len(t, rec.calls, 1)
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "", idempotencyKey(""))
	assert.Equal(t, "order-101-charge", idempotencyKey("  order-101-charge "))

	first := idempotencyKey("auto")
	second := idempotencyKey("AUTO")
	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestIdempotencyKey_AutoGeneratedOncePerRequest(t *testing.T) {
	rec := useRecordingExecutor(t)

	var generated []string
	orig := newIdempotencyKey
	newIdempotencyKey = func() string {
		key := fmt.Sprintf("key-%d", len(generated)+1)
		generated = append(generated, key)
		return key
	}
	t.Cleanup(func() { newIdempotencyKey = orig })

	res := runCLI(t, "charge", "-f", "payment_type=gopay", "--idempotency-key", "auto")
	require.NoError(t, res.err, res.stderr)

	require.Len(t, rec.calls, 1)
	require.Equal(t, []string{"key-1"}, generated)
	assert.Equal(t, "key-1", rec.calls[0].Headers.Get("Idempotency-Key"))
}
