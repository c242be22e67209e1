package cmd

import (
	"strings"

	"github.com/google/uuid"
)

// newIdempotencyKey generates the value for "auto".
var newIdempotencyKey = uuid.NewString

// idempotencyKey returns the Idempotency-Key header value for a request.
// "auto" generates a fresh random UUID per invocation.
func idempotencyKey(flagValue string) string {
	flagValue = strings.TrimSpace(flagValue)
	if strings.EqualFold(flagValue, "auto") {
		return newIdempotencyKey()
	}
	return flagValue
}
