// Package dryrun previews gateway calls without sending them.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes a call that would have been sent.
type Preview struct {
	Operation   string
	Method      string
	URL         string
	Environment string
	Parameters  map[string]any
	Headers     []string
	Warnings    []string
}

// MarshalJSON renders the preview for --output json.
func (p *Preview) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"dry_run":     true,
		"operation":   p.Operation,
		"method":      p.Method,
		"url":         p.URL,
		"environment": p.Environment,
	}
	if len(p.Parameters) > 0 {
		out["parameters"] = p.Parameters
	}
	if len(p.Headers) > 0 {
		out["headers"] = p.Headers
	}
	if len(p.Warnings) > 0 {
		out["warnings"] = p.Warnings
	}
	return json.Marshal(out)
}

// Write outputs the preview to the writer.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would %s\n", p.Operation)
	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintf(w, "  %s %s\n", p.Method, p.URL)
	if p.Environment != "" {
		_, _ = fmt.Fprintf(w, "  environment: %s\n", p.Environment)
	}
	if len(p.Headers) > 0 {
		sorted := append([]string(nil), p.Headers...)
		sort.Strings(sorted)
		for _, h := range sorted {
			_, _ = fmt.Fprintf(w, "  header: %s\n", h)
		}
	}
	if len(p.Parameters) > 0 {
		data, err := json.MarshalIndent(p.Parameters, "  ", "  ")
		if err == nil {
			_, _ = fmt.Fprintf(w, "  parameters: %s\n", data)
		}
	}
	_, _ = fmt.Fprintln(w)

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "───────────────────────────────────────\n")
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}
