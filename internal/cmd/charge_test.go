package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chargeResponse = `{
	"status_code": "201",
	"status_message": "Success, Bank Transfer transaction is created",
	"transaction_id": "9aed5972-5b6a-401e-894b-a32c91ed1a3a",
	"order_id": "order-101",
	"gross_amount": "200000.00",
	"payment_type": "bank_transfer",
	"transaction_status": "pending",
	"va_numbers": [{"bank": "bca", "va_number": "91019021579"}]
}`

func TestChargeCommand_SendsFieldsAsJSONBody(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(201, chargeResponse))
	setupGateway(t, handler)

	res := runCLI(t, "charge",
		"-f", "payment_type=bank_transfer",
		"-f", "bank_transfer.bank=bca",
		"-f", "transaction_details.order_id=order-101",
		"-F", "transaction_details.gross_amount=200000",
	)
	require.NoError(t, res.err, res.stderr)

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "bank_transfer", reqs[0].Body["payment_type"])
	details, ok := reqs[0].Body["transaction_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "order-101", details["order_id"])
	assert.Equal(t, float64(200000), details["gross_amount"])

	user, _, ok := (&http.Request{Header: reqs[0].Header}).BasicAuth()
	require.True(t, ok)
	assert.Equal(t, testServerKey, user)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Accept"))

	assert.Contains(t, res.stdout, "transaction_status")
	assert.Contains(t, res.stdout, "pending")
}

func TestChargeCommand_JSONOutputAndJQ(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(201, chargeResponse))
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-d", `{"payment_type":"bank_transfer"}`, "-o", "json")
	require.NoError(t, res.err)
	out := decodeJSON(t, res.stdout)
	assert.Equal(t, "201", out["status_code"])
	assert.Equal(t, "order-101", out["order_id"])

	res = runCLI(t, "charge", "-d", `{"payment_type":"bank_transfer"}`, "--jq", ".va_numbers[0].va_number")
	require.NoError(t, res.err)
	assert.Equal(t, `"91019021579"`, strings.TrimSpace(res.stdout))
}

func TestChargeCommand_RequiresBody(t *testing.T) {
	handler := newRouteHandler()
	setupGateway(t, handler)

	res := runCLI(t, "charge")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "requires a request body")
	assert.Equal(t, exitUsage, ExitCode(res.err))
	assert.Empty(t, handler.Requests())
}

func TestChargeCommand_BodyFromStdin(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(201, chargeResponse))
	setupGateway(t, handler)

	res := runCLIWithInput(t, `{"payment_type":"gopay","transaction_details":{"order_id":"o-1","gross_amount":10000}}`,
		"charge", "-i", "-", "-f", "transaction_details.order_id=o-2")
	require.NoError(t, res.err, res.stderr)

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	details := reqs[0].Body["transaction_details"].(map[string]any)
	assert.Equal(t, "o-2", details["order_id"], "fields override the input document")
	assert.Equal(t, float64(10000), details["gross_amount"])
}

func TestChargeCommand_GatewayErrorJSON(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(200, `{
		"status_code": "400",
		"status_message": "One or more parameters in the payload is invalid.",
		"validation_messages": ["transaction_details.gross_amount must be greater than or equal to 0.01"],
		"id": "a1b2c3"
	}`))
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-d", `{"payment_type":"gopay"}`, "-o", "json")
	require.Error(t, res.err)
	assert.Equal(t, exitUsage, ExitCode(res.err))
	assert.Empty(t, res.stdout)

	var structured map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &structured), res.stderr)
	assert.Equal(t, "bad_request", structured["code"])
	assert.Equal(t, "One or more parameters in the payload is invalid.", structured["message"])
	ctx := structured["context"].(map[string]any)
	assert.Equal(t, float64(400), ctx["status_code"])
	assert.Equal(t, "a1b2c3", ctx["id"])
}

func TestChargeCommand_GatewayErrorText(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(401, `{
		"status_code": "401",
		"status_message": "Unknown Merchant server_key/id"
	}`))
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-d", `{"payment_type":"gopay"}`)
	require.Error(t, res.err)
	assert.Equal(t, exitAuth, ExitCode(res.err))
	assert.Contains(t, res.stderr, "API error (status 401): Unknown Merchant server_key/id")
	assert.Contains(t, res.stderr, "midtrans auth status")
}

func TestChargeCommand_DryRunSendsNothing(t *testing.T) {
	handler := newRouteHandler()
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-f", "payment_type=gopay", "--dry-run", "-o", "json")
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, handler.Requests())

	preview := decodeJSON(t, res.stdout)
	assert.Equal(t, true, preview["dry_run"])
	assert.Equal(t, "POST", preview["method"])
	assert.True(t, strings.HasSuffix(preview["url"].(string), "/v2/charge"))
	assert.Equal(t, "sandbox", preview["environment"])
	assert.Equal(t, "gopay", preview["parameters"].(map[string]any)["payment_type"])

	headers, _ := json.Marshal(preview["headers"])
	assert.NotContains(t, string(headers), testServerKey)
	assert.Contains(t, string(headers), "1234")
}

func TestChargeCommand_DryRunWithoutCredentials(t *testing.T) {
	res := runCLI(t, "charge", "-f", "payment_type=gopay", "--dry-run")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "[DRY-RUN] Would charge a transaction")
	assert.Contains(t, res.stdout, "https://api.sandbox.midtrans.com/v2/charge")
	assert.Contains(t, res.stdout, "no server key configured")
}

func TestChargeCommand_DryRunProductionWarning(t *testing.T) {
	res := runCLI(t, "charge", "-f", "payment_type=gopay", "--dry-run", "--production", "--server-key", "Mid-server-PROD9999")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "https://api.midtrans.com/v2/charge")
	assert.Contains(t, res.stdout, "production environment")
}

func TestChargeCommand_IdempotencyAndCustomHeaders(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(201, chargeResponse))
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-f", "payment_type=gopay",
		"--idempotency-key", "order-101-charge",
		"-H", "X-Append-Notification: https://shop.example.com/notify",
	)
	require.NoError(t, res.err, res.stderr)

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "order-101-charge", reqs[0].Header.Get("Idempotency-Key"))
	assert.Equal(t, "https://shop.example.com/notify", reqs[0].Header.Get("X-Append-Notification"))
}

func TestChargeCommand_AutoIdempotencyKey(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/charge", jsonResponse(201, chargeResponse))
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-f", "payment_type=gopay", "--idempotency-key", "auto")
	require.NoError(t, res.err, res.stderr)

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Header.Get("Idempotency-Key"), 36)
}

func TestChargeCommand_RejectsPrivateNotificationURL(t *testing.T) {
	handler := newRouteHandler()
	setupGateway(t, handler)

	res := runCLI(t, "charge", "-f", "payment_type=gopay", "-H", "X-Override-Notification: http://localhost:8080/notify")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "X-Override-Notification")
	assert.Empty(t, handler.Requests())
}

func TestCaptureCommand(t *testing.T) {
	handler := newRouteHandler().On("POST", "/v2/capture", jsonResponse(200, `{
		"status_code": "200",
		"transaction_id": "t-1",
		"transaction_status": "capture"
	}`))
	setupGateway(t, handler)

	res := runCLI(t, "capture", "-f", "transaction_id=t-1", "-F", "gross_amount=145000", "-o", "json")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "capture", decodeJSON(t, res.stdout)["transaction_status"])

	reqs := handler.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "t-1", reqs[0].Body["transaction_id"])
	assert.Equal(t, float64(145000), reqs[0].Body["gross_amount"])
}
