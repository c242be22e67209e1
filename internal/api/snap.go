package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Snap is the client for the hosted checkout API. It also exposes the
// transaction lifecycle, which always goes to the Core API origin.
type Snap struct {
	baseClient
}

// Compile-time interface implementation checks
var (
	_ Transactions = (*Snap)(nil)
	_ PathResolver = (*Snap)(nil)
)

// SnapBuilder configures a Snap client.
type SnapBuilder struct {
	opts clientOptions
}

// NewSnap starts building a Snap client.
func NewSnap(isProduction bool, serverKey string) *SnapBuilder {
	return &SnapBuilder{opts: clientOptions{config: NewConfig(isProduction, serverKey)}}
}

// NewSnapFromConfig wraps an existing configuration. The client owns cfg afterwards.
func NewSnapFromConfig(cfg *Config) *Snap {
	return &Snap{baseClient{config: cfg}}
}

func (b *SnapBuilder) ClientKey(key string) *SnapBuilder {
	b.opts.config.ClientKey(key)
	return b
}

func (b *SnapBuilder) CustomHeaders(h http.Header) *SnapBuilder {
	b.opts.config.CustomHeaders(h)
	return b
}

func (b *SnapBuilder) Header(key, value string) *SnapBuilder {
	b.opts.config.Header(key, value)
	return b
}

func (b *SnapBuilder) Proxy(proxy string) *SnapBuilder {
	b.opts.config.Proxy(proxy)
	return b
}

func (b *SnapBuilder) Timeout(d time.Duration) *SnapBuilder {
	b.opts.config.Timeout(d)
	return b
}

// Executor replaces the default *Requester.
func (b *SnapBuilder) Executor(e Executor) *SnapBuilder {
	b.opts.executor = e
	return b
}

// Build returns the client. It fails with *TransportError when the proxy is malformed.
func (b *SnapBuilder) Build() (*Snap, error) {
	base, err := b.opts.build()
	if err != nil {
		return nil, err
	}
	return &Snap{base}, nil
}

// CreateTransaction opens a hosted checkout session. The response carries
// token and redirect_url.
func (s *Snap) CreateTransaction(ctx context.Context, parameters string) (Response, error) {
	return s.request(ctx, http.MethodPost, s.snapPath("/snap/v1/transactions"), parameters)
}

// CreateTransactionToken returns only the checkout token.
func (s *Snap) CreateTransactionToken(ctx context.Context, parameters string) (string, error) {
	return s.createTransactionField(ctx, parameters, "token")
}

// CreateTransactionRedirectURL returns only the checkout redirect URL.
func (s *Snap) CreateTransactionRedirectURL(ctx context.Context, parameters string) (string, error) {
	return s.createTransactionField(ctx, parameters, "redirect_url")
}

// Do sends an arbitrary call to the Snap API origin. path is joined to the base URL as-is.
func (s *Snap) Do(ctx context.Context, method, path, parameters string) (Response, error) {
	return s.request(ctx, method, s.snapPath(path), parameters)
}

func (s *Snap) createTransactionField(ctx context.Context, parameters, field string) (string, error) {
	resp, err := s.CreateTransaction(ctx, parameters)
	if err != nil {
		return "", err
	}
	value, ok := resp[field].(string)
	if !ok {
		return "", &JSONDecodeError{Source: "response", Err: fmt.Errorf("%w: %s", ErrMissingField, field)}
	}
	return value, nil
}
