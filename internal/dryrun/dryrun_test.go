package dryrun

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Operation:   "charge",
		Method:      "POST",
		URL:         "https://api.sandbox.midtrans.com/v2/charge",
		Environment: "sandbox",
		Parameters:  map[string]any{"payment_type": "bank_transfer"},
		Headers:     []string{"X-Override-Notification"},
		Warnings:    []string{"production key detected"},
	}

	var buf bytes.Buffer
	p.Write(&buf)

	out := buf.String()
	for _, want := range []string{"[DRY-RUN] Would charge", "POST https://api.sandbox.midtrans.com/v2/charge", "bank_transfer", "X-Override-Notification", "Warnings:", "No request sent"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview output missing %q:\n%s", want, out)
		}
	}
}

func TestPreview_WriteMinimal(t *testing.T) {
	p := &Preview{Operation: "expire transaction", Method: "POST", URL: "https://example.test/v2/o/expire"}

	var buf bytes.Buffer
	p.Write(&buf)

	out := buf.String()
	if strings.Contains(out, "parameters:") || strings.Contains(out, "Warnings:") {
		t.Errorf("unexpected sections in minimal preview:\n%s", out)
	}
}

func TestPreview_MarshalJSON(t *testing.T) {
	p := &Preview{Operation: "status", Method: "GET", URL: "u"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["dry_run"] != true || decoded["method"] != "GET" {
		t.Errorf("decoded = %v", decoded)
	}
	if _, ok := decoded["parameters"]; ok {
		t.Error("empty parameters should be omitted")
	}
}
