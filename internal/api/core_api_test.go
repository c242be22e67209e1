package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoreAPI_Endpoints(t *testing.T) {
	exec := &recordingExecutor{}
	core, err := NewCoreAPI(false, "k").Executor(exec).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := context.Background()
	base := CoreSandboxBaseURL

	tests := []struct {
		name   string
		call   func() (Response, error)
		method string
		url    string
		params string
	}{
		{"charge", func() (Response, error) { return core.Charge(ctx, `{"payment_type":"bank_transfer"}`) }, http.MethodPost, base + "/v2/charge", `{"payment_type":"bank_transfer"}`},
		{"capture", func() (Response, error) { return core.Capture(ctx, `{"transaction_id":"t"}`) }, http.MethodPost, base + "/v2/capture", `{"transaction_id":"t"}`},
		{"card register", func() (Response, error) { return core.CardRegister(ctx, `{"card_number":"4811"}`) }, http.MethodGet, base + "/v2/card/register", `{"card_number":"4811"}`},
		{"card token", func() (Response, error) { return core.CardToken(ctx, `{"card_number":"4811"}`) }, http.MethodGet, base + "/v2/token", `{"card_number":"4811"}`},
		{"point inquiry", func() (Response, error) { return core.CardPointInquiry(ctx, "tok-1") }, http.MethodGet, base + "/v2/point_inquiry/tok-1", ""},
		{"create subscription", func() (Response, error) { return core.CreateSubscription(ctx, `{"name":"s"}`) }, http.MethodPost, base + "/v1/subscriptions", `{"name":"s"}`},
		{"get subscription", func() (Response, error) { return core.GetSubscription(ctx, "sub-1") }, http.MethodGet, base + "/v1/subscriptions/sub-1", ""},
		{"disable subscription", func() (Response, error) { return core.DisableSubscription(ctx, "sub-1") }, http.MethodPost, base + "/v1/subscriptions/sub-1/disable", ""},
		{"enable subscription", func() (Response, error) { return core.EnableSubscription(ctx, "sub-1") }, http.MethodPost, base + "/v1/subscriptions/sub-1/enable", ""},
		{"update subscription", func() (Response, error) { return core.UpdateSubscription(ctx, "sub-1", `{"amount":"100"}`) }, http.MethodPatch, base + "/v1/subscriptions/sub-1", `{"amount":"100"}`},
		{"link account", func() (Response, error) { return core.LinkPaymentAccount(ctx, `{"payment_type":"gopay"}`) }, http.MethodPost, base + "/v2/pay/account", `{"payment_type":"gopay"}`},
		{"get account", func() (Response, error) { return core.GetPaymentAccount(ctx, "acc-1") }, http.MethodGet, base + "/v2/pay/account/acc-1", ""},
		{"unlink account", func() (Response, error) { return core.UnlinkPaymentAccount(ctx, "acc-1") }, http.MethodPost, base + "/v2/pay/account/acc-1/unbind", ""},
		{"raw", func() (Response, error) { return core.Do(ctx, http.MethodGet, "/v2/bins/4811", "") }, http.MethodGet, base + "/v2/bins/4811", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.call(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := exec.last(t)
			if got.method != tt.method || got.url != tt.url || got.parameters != tt.params {
				t.Errorf("call = %s %s %q, want %s %s %q", got.method, got.url, got.parameters, tt.method, tt.url, tt.params)
			}
		})
	}
}

func TestCoreAPIBuilder(t *testing.T) {
	core, err := NewCoreAPI(true, "Mid-server-key").
		ClientKey("Mid-client-key").
		Header("X-Idempotency-Key", "abc").
		Proxy("https://proxy.local:443").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cfg := core.Config()
	if !cfg.IsProduction || cfg.ServerKey != "Mid-server-key" || cfg.ClientKey != "Mid-client-key" {
		t.Errorf("unexpected config: %s", cfg)
	}
	if cfg.CustomHeaders.Get("X-Idempotency-Key") != "abc" {
		t.Errorf("headers = %v", cfg.CustomHeaders)
	}
	if core.corePath("/v2/charge") != CoreProductionBaseURL+"/v2/charge" {
		t.Errorf("corePath = %q", core.corePath("/v2/charge"))
	}

	_, err = NewCoreAPI(false, "k").Proxy("gopher://nope").Build()
	if !IsTransportError(err) {
		t.Errorf("expected transport error for bad proxy, got %v", err)
	}
}

func TestCoreAPI_ChargeValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":"400","status_message":"One or more parameters in the payload is invalid.","validation_messages":["transaction_details.gross_amount must be greater than or equal to 0.01"]}`))
	}))
	defer server.Close()
	defer SetBaseURLsForTesting(server.URL, server.URL)()

	core := NewCoreAPIFromConfig(NewConfig(false, "k").Build())
	_, err := core.Charge(context.Background(), `{"payment_type":"bank_transfer","transaction_details":{"gross_amount":0,"order_id":"o"}}`)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	se := StructuredErrorFromError(err)
	if se.Context["validation_messages"] == nil {
		t.Errorf("expected validation_messages in context: %v", se.Context)
	}
}

func TestCoreAPI_ChargeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":"401","status_message":"Unknown Merchant server_key/id"}`))
	}))
	defer server.Close()
	defer SetBaseURLsForTesting(server.URL, server.URL)()

	core, _ := NewCoreAPI(false, "dummy").Build()
	_, err := core.Charge(context.Background(), `{}`)
	if StatusCodeOf(err) != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}
