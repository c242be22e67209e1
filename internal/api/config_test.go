package api

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestConfig_BaseURL(t *testing.T) {
	tests := []struct {
		production bool
		surface    Surface
		want       string
	}{
		{false, SurfaceCore, "https://api.sandbox.midtrans.com"},
		{true, SurfaceCore, "https://api.midtrans.com"},
		{false, SurfaceSnap, "https://app.sandbox.midtrans.com"},
		{true, SurfaceSnap, "https://app.midtrans.com"},
	}
	for _, tt := range tests {
		cfg := NewConfig(tt.production, "key").Build()
		if got := cfg.BaseURL(tt.surface); got != tt.want {
			t.Errorf("BaseURL(production=%v, %s) = %q, want %q", tt.production, tt.surface, got, tt.want)
		}
	}

	cfg := NewConfig(false, "key").Build()
	if cfg.CoreBaseURL() != CoreSandboxBaseURL || cfg.SnapBaseURL() != SnapSandboxBaseURL {
		t.Error("CoreBaseURL/SnapBaseURL disagree with BaseURL")
	}
	cfg.IsProduction = true
	if cfg.CoreBaseURL() != CoreProductionBaseURL {
		t.Error("changing IsProduction should switch the base URL")
	}
}

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfig(false, "SB-Mid-server-abc").Build()
	if cfg.ClientKey != "" || cfg.Proxy != "" || cfg.CustomHeaders != nil || cfg.Timeout != 0 {
		t.Errorf("unexpected optional defaults: %+v", cfg)
	}
	if cfg.EffectiveTimeout() != DefaultTimeout {
		t.Errorf("EffectiveTimeout = %v, want %v", cfg.EffectiveTimeout(), DefaultTimeout)
	}
}

func TestConfigBuilder_Optionals(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Append-Notification", "https://example.com/a")

	cfg := NewConfig(true, "Mid-server-abc").
		ClientKey("Mid-client-xyz").
		CustomHeaders(headers).
		Header("X-Override-Notification", "https://example.com/b").
		Proxy("http://proxy.local:3128").
		Timeout(5 * time.Second).
		Build()

	if cfg.ClientKey != "Mid-client-xyz" {
		t.Errorf("ClientKey = %q", cfg.ClientKey)
	}
	if cfg.CustomHeaders.Get("X-Append-Notification") == "" || cfg.CustomHeaders.Get("X-Override-Notification") == "" {
		t.Errorf("CustomHeaders = %v", cfg.CustomHeaders)
	}
	if cfg.Proxy != "http://proxy.local:3128" {
		t.Errorf("Proxy = %q", cfg.Proxy)
	}
	if cfg.EffectiveTimeout() != 5*time.Second {
		t.Errorf("EffectiveTimeout = %v", cfg.EffectiveTimeout())
	}

	headers.Set("X-Append-Notification", "mutated")
	if cfg.CustomHeaders.Get("X-Append-Notification") != "https://example.com/a" {
		t.Error("builder should copy the caller's headers")
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := NewConfig(false, "key").Header("X-A", "1").Build()
	clone := cfg.Clone()
	clone.CustomHeaders.Set("X-A", "2")
	clone.ServerKey = "other"
	if cfg.CustomHeaders.Get("X-A") != "1" || cfg.ServerKey != "key" {
		t.Error("Clone shares state with the original")
	}
}

func TestConfig_StringMasksServerKey(t *testing.T) {
	cfg := NewConfig(false, "SB-Mid-server-SECRET1234").ClientKey("SB-Mid-client-pub").Build()
	s := cfg.String()
	if strings.Contains(s, "SECRET") {
		t.Errorf("String() leaks the server key: %s", s)
	}
	for _, want := range []string{"production=false", "1234", "client_key=SB-Mid-client-pub", "headers=none", "proxy=none"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"abc":       "***",
		"abcd":      "****",
		"abcdefgh":  "****efgh",
		"SB-Mid-12": "*****d-12",
	}
	for in, want := range tests {
		if got := MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSurface(t *testing.T) {
	for in, want := range map[string]Surface{"": SurfaceCore, "core": SurfaceCore, "SNAP": SurfaceSnap} {
		got, err := ParseSurface(in)
		if err != nil || got != want {
			t.Errorf("ParseSurface(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSurface("iris"); err == nil {
		t.Error("expected error for unknown surface")
	}
}

func TestSetBaseURLsForTesting(t *testing.T) {
	restore := SetBaseURLsForTesting("http://core.test", "http://snap.test")
	cfg := NewConfig(true, "key").Build()
	if cfg.CoreBaseURL() != "http://core.test" || cfg.SnapBaseURL() != "http://snap.test" {
		t.Errorf("override not applied: %s %s", cfg.CoreBaseURL(), cfg.SnapBaseURL())
	}
	restore()
	if cfg.CoreBaseURL() != CoreProductionBaseURL {
		t.Error("restore did not reset base URLs")
	}
}

func TestDefaultHeaders(t *testing.T) {
	h := DefaultHeaders(http.Header{"x-custom": []string{"v"}, "Empty": nil})
	if h.Get("Content-Type") != "application/json" || h.Get("Accept") != "application/json" {
		t.Errorf("missing JSON headers: %v", h)
	}
	if h.Get("User-Agent") != "midtrans-cli-go/"+Version {
		t.Errorf("User-Agent = %q", h.Get("User-Agent"))
	}
	if h.Get("X-Custom") != "v" {
		t.Errorf("custom header not canonicalized: %v", h)
	}
	if _, ok := h["Empty"]; ok {
		t.Error("empty custom header should be skipped")
	}
}

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient(nil, "socks5://127.0.0.1:1080", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want default", client.Timeout)
	}
	if _, ok := client.Transport.(*headerTransport); !ok {
		t.Errorf("Transport = %T, want *headerTransport", client.Transport)
	}
}
