package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midtrans/midtrans-cli/internal/iocontext"
)

func buildBody(t *testing.T, ctx context.Context, b bodyFlags) map[string]any {
	t.Helper()
	params, err := b.build(ctx)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(params), &out))
	return out
}

func TestBodyFlags_Empty(t *testing.T) {
	var b bodyFlags
	params, err := b.build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", params)
}

func TestBodyFlags_FieldsNest(t *testing.T) {
	b := bodyFlags{
		Fields:    []string{"transaction_details.order_id=order-101", "bank_transfer.bank=bca", "payment_type=bank_transfer"},
		RawFields: []string{"transaction_details.gross_amount=10000", `item_details=[{"id":"a","price":10000,"quantity":1}]`},
	}
	body := buildBody(t, context.Background(), b)

	assert.Equal(t, "bank_transfer", body["payment_type"])
	assert.Equal(t, map[string]any{"order_id": "order-101", "gross_amount": float64(10000)}, body["transaction_details"])
	assert.Equal(t, map[string]any{"bank": "bca"}, body["bank_transfer"])
	assert.Len(t, body["item_details"], 1)
}

func TestBodyFlags_FieldsOverrideBody(t *testing.T) {
	b := bodyFlags{
		Body:   `{"payment_type":"gopay","transaction_details":{"order_id":"old","gross_amount":1}}`,
		Fields: []string{"transaction_details.order_id=new"},
	}
	body := buildBody(t, context.Background(), b)

	details := body["transaction_details"].(map[string]any)
	assert.Equal(t, "new", details["order_id"])
	assert.Equal(t, float64(1), details["gross_amount"])
	assert.Equal(t, "gopay", body["payment_type"])
}

func TestBodyFlags_InputFileAndStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charge.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"payment_type":"qris"}`), 0o600))

	body := buildBody(t, context.Background(), bodyFlags{Input: path})
	assert.Equal(t, "qris", body["payment_type"])

	ctx := iocontext.WithIO(context.Background(), &iocontext.IO{In: strings.NewReader(`{"payment_type":"echannel"}`)})
	body = buildBody(t, ctx, bodyFlags{Input: "-"})
	assert.Equal(t, "echannel", body["payment_type"])
}

func TestBodyFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    bodyFlags
		want string
	}{
		{"body and input", bodyFlags{Body: "{}", Input: "-"}, "cannot use both --body and --input"},
		{"not an object", bodyFlags{Body: `["a"]`}, ""},
		{"field without equals", bodyFlags{Fields: []string{"order_id"}}, "must be key=value"},
		{"empty key", bodyFlags{Fields: []string{"=x"}}, "must be key=value"},
		{"bad raw json", bodyFlags{RawFields: []string{"amount=12,3"}}, "invalid JSON in raw field"},
		{"raw trailing data", bodyFlags{RawFields: []string{"amount=1 2"}}, "trailing data"},
		{"empty segment", bodyFlags{Fields: []string{"a..b=x"}}, "empty path segment"},
		{"through scalar", bodyFlags{Fields: []string{"a=x", "a.b=y"}}, `"a" is not an object`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.build(context.Background())
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestParseRawField_KeepsNumberPrecision(t *testing.T) {
	key, value, err := parseRawField("gross_amount=12345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, "gross_amount", key)
	assert.Equal(t, json.Number("12345678901234567890"), value)
}

func TestSetPath(t *testing.T) {
	body := map[string]any{"customer_details": map[string]any{"email": "a@example.com"}}
	require.NoError(t, setPath(body, "customer_details.billing_address.city", "Jakarta"))

	customer := body["customer_details"].(map[string]any)
	assert.Equal(t, "a@example.com", customer["email"])
	assert.Equal(t, map[string]any{"city": "Jakarta"}, customer["billing_address"])
}
