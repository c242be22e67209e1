package api

import (
	"context"
	"net/http"
)

// Executor performs one authenticated call against the gateway.
//
// *Requester is the production implementation. Clients depend on this
// interface so tests can observe calls without a network.
type Executor interface {
	// Request sends method to apiURL with the given JSON parameters document
	// and returns the decoded, status-reconciled response.
	Request(ctx context.Context, method, serverKey, apiURL, parameters string, headers http.Header, proxy string) (Response, error)
}

// PathResolver builds absolute endpoint URLs for the configured environment.
type PathResolver interface {
	// corePath returns the Core API URL for path.
	// Example: corePath("/v2/charge") -> "https://api.sandbox.midtrans.com/v2/charge"
	corePath(path string) string

	// snapPath returns the Snap API URL for path.
	// Example: snapPath("/snap/v1/transactions") -> "https://app.sandbox.midtrans.com/snap/v1/transactions"
	snapPath(path string) string
}

// Transactions is the transaction lifecycle shared by CoreAPI and Snap.
//
// All methods address the Core API origin, whichever client they are called on.
type Transactions interface {
	Status(ctx context.Context, transactionID string) (Response, error)
	StatusB2B(ctx context.Context, transactionID string) (Response, error)
	Approve(ctx context.Context, transactionID string) (Response, error)
	Deny(ctx context.Context, transactionID string) (Response, error)
	Cancel(ctx context.Context, transactionID string) (Response, error)
	Expire(ctx context.Context, transactionID string) (Response, error)
	Refund(ctx context.Context, transactionID, parameters string) (Response, error)
	RefundDirect(ctx context.Context, transactionID, parameters string) (Response, error)
	NotificationFromJSON(ctx context.Context, notification map[string]any) (Response, error)
	NotificationFromString(ctx context.Context, notification string) (Response, error)
}
