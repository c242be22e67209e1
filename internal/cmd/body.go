package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

// bodyFlags are the request body inputs shared by every mutating command.
type bodyFlags struct {
	Body      string
	Input     string
	Fields    []string
	RawFields []string
}

func (b *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.Body, "body", "d", "", "Request body as inline JSON")
	cmd.Flags().StringVarP(&b.Input, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringArrayVarP(&b.Fields, "field", "f", nil, "Body field as key=value (string; dotted keys nest)")
	cmd.Flags().StringArrayVarP(&b.RawFields, "raw-field", "F", nil, "Body field as key=<json> (dotted keys nest)")
}

func (b *bodyFlags) empty() bool {
	return b.Body == "" && b.Input == "" && len(b.Fields) == 0 && len(b.RawFields) == 0
}

// build returns the parameters document, or "" when no body input was given.
// Fields are applied on top of --body/--input.
func (b *bodyFlags) build(ctx context.Context) (string, error) {
	if b.Body != "" && b.Input != "" {
		return "", fmt.Errorf("cannot use both --body and --input flags")
	}
	if b.empty() {
		return "", nil
	}

	body := map[string]any{}
	raw := b.Body
	if b.Input != "" {
		data, err := iocontext.ReadInput(ctx, b.Input)
		if err != nil {
			return "", err
		}
		raw = string(data)
	}
	if raw != "" {
		if err := validation.ValidateJSONPayload(raw); err != nil {
			return "", err
		}
		decoded, err := api.DecodeParameters(raw)
		if err != nil {
			return "", err
		}
		body = decoded
	}

	for _, field := range b.Fields {
		key, value, err := parseField(field)
		if err != nil {
			return "", err
		}
		if err := setPath(body, key, value); err != nil {
			return "", err
		}
	}
	for _, field := range b.RawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return "", err
		}
		if err := setPath(body, key, value); err != nil {
			return "", err
		}
	}

	return api.EncodeParameters(body)
}

// parseField parses a key=value field where value is a string
func parseField(field string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return strings.TrimSpace(key), value, nil
}

// parseRawField parses a key=value field where value is JSON
func parseRawField(field string) (string, any, error) {
	key, raw, ok := strings.Cut(field, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
	}
	if dec.More() {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: trailing data", key)
	}
	return strings.TrimSpace(key), value, nil
}

// setPath assigns value at a dotted key, creating intermediate objects.
// "transaction_details.order_id" sets body["transaction_details"]["order_id"].
func setPath(body map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	current := body
	for i, part := range parts {
		if part == "" {
			return fmt.Errorf("invalid field key %q: empty path segment", key)
		}
		if i == len(parts)-1 {
			current[part] = value
			return nil
		}
		next, exists := current[part]
		if !exists {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("invalid field key %q: %q is not an object", key, strings.Join(parts[:i+1], "."))
		}
		current = child
	}
	return nil
}
