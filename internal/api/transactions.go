package api

import (
	"context"
	"net/http"
	"net/url"
)

// baseClient carries the configuration and executor shared by CoreAPI and
// Snap, and implements the transaction lifecycle for both.
type baseClient struct {
	config   *Config
	executor Executor
}

// Config returns the client's configuration. Fields may be changed between
// calls, for example to rotate the server key.
func (c *baseClient) Config() *Config {
	return c.config
}

func (c *baseClient) corePath(path string) string {
	return c.config.CoreBaseURL() + path
}

func (c *baseClient) snapPath(path string) string {
	return c.config.SnapBaseURL() + path
}

// request runs one call with the configuration as it is right now.
func (c *baseClient) request(ctx context.Context, method, apiURL, parameters string) (Response, error) {
	cfg := c.config
	exec := c.executor
	if exec == nil {
		exec = &Requester{Timeout: cfg.EffectiveTimeout()}
	}
	return exec.Request(ctx, method, cfg.ServerKey, apiURL, parameters, cfg.CustomHeaders, cfg.Proxy)
}

func transactionPath(transactionID, suffix string) string {
	return "/v2/" + url.PathEscape(transactionID) + suffix
}

// Status fetches the current state of a transaction by order ID or transaction ID.
func (c *baseClient) Status(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath(transactionPath(transactionID, "/status")), "")
}

// StatusB2B fetches the B2B status of a transaction.
func (c *baseClient) StatusB2B(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath(transactionPath(transactionID, "/status/b2b")), "")
}

// Approve accepts a transaction held for fraud review.
func (c *baseClient) Approve(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/approve")), "")
}

// Deny rejects a transaction held for fraud review.
func (c *baseClient) Deny(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/deny")), "")
}

// Cancel cancels a transaction before settlement.
func (c *baseClient) Cancel(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/cancel")), "")
}

// Expire expires a pending transaction.
func (c *baseClient) Expire(ctx context.Context, transactionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/expire")), "")
}

// Refund requests a refund of a settled transaction.
func (c *baseClient) Refund(ctx context.Context, transactionID, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/refund")), parameters)
}

// RefundDirect requests an online direct refund.
func (c *baseClient) RefundDirect(ctx context.Context, transactionID, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(transactionPath(transactionID, "/refund/online/direct")), parameters)
}

// NotificationFromJSON re-queries the status of the transaction named by a
// decoded HTTP notification. Notification content is never trusted as-is.
func (c *baseClient) NotificationFromJSON(ctx context.Context, notification map[string]any) (Response, error) {
	transactionID, ok := notification["transaction_id"].(string)
	if !ok {
		return nil, &JSONDecodeError{Source: "notification", Err: ErrMissingTransactionID}
	}
	return c.Status(ctx, transactionID)
}

// NotificationFromString decodes a raw notification body and re-queries the
// transaction status.
func (c *baseClient) NotificationFromString(ctx context.Context, notification string) (Response, error) {
	decoded, err := decodeObject([]byte(notification))
	if err != nil {
		return nil, &JSONDecodeError{Source: "notification", Err: err}
	}
	return c.NotificationFromJSON(ctx, decoded)
}

// clientOptions collects the optional settings shared by both builders.
type clientOptions struct {
	config   *ConfigBuilder
	executor Executor
}

func (o *clientOptions) build() (baseClient, error) {
	cfg := o.config.Build()
	if _, err := ParseProxy(cfg.Proxy); err != nil {
		return baseClient{}, &TransportError{Op: "build client", Err: err}
	}
	return baseClient{config: cfg, executor: o.executor}, nil
}
