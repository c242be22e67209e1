package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// CoreAPI is the client for the direct transaction API.
type CoreAPI struct {
	baseClient
}

// Compile-time interface implementation checks
var (
	_ Transactions = (*CoreAPI)(nil)
	_ PathResolver = (*CoreAPI)(nil)
)

// CoreAPIBuilder configures a CoreAPI.
type CoreAPIBuilder struct {
	opts clientOptions
}

// NewCoreAPI starts building a Core API client.
func NewCoreAPI(isProduction bool, serverKey string) *CoreAPIBuilder {
	return &CoreAPIBuilder{opts: clientOptions{config: NewConfig(isProduction, serverKey)}}
}

// NewCoreAPIFromConfig wraps an existing configuration. The client owns cfg afterwards.
func NewCoreAPIFromConfig(cfg *Config) *CoreAPI {
	return &CoreAPI{baseClient{config: cfg}}
}

func (b *CoreAPIBuilder) ClientKey(key string) *CoreAPIBuilder {
	b.opts.config.ClientKey(key)
	return b
}

func (b *CoreAPIBuilder) CustomHeaders(h http.Header) *CoreAPIBuilder {
	b.opts.config.CustomHeaders(h)
	return b
}

func (b *CoreAPIBuilder) Header(key, value string) *CoreAPIBuilder {
	b.opts.config.Header(key, value)
	return b
}

func (b *CoreAPIBuilder) Proxy(proxy string) *CoreAPIBuilder {
	b.opts.config.Proxy(proxy)
	return b
}

func (b *CoreAPIBuilder) Timeout(d time.Duration) *CoreAPIBuilder {
	b.opts.config.Timeout(d)
	return b
}

// Executor replaces the default *Requester.
func (b *CoreAPIBuilder) Executor(e Executor) *CoreAPIBuilder {
	b.opts.executor = e
	return b
}

// Build returns the client. It fails with *TransportError when the proxy is malformed.
func (b *CoreAPIBuilder) Build() (*CoreAPI, error) {
	base, err := b.opts.build()
	if err != nil {
		return nil, err
	}
	return &CoreAPI{base}, nil
}

// Charge creates a transaction.
func (c *CoreAPI) Charge(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath("/v2/charge"), parameters)
}

// Capture captures an authorized card transaction.
func (c *CoreAPI) Capture(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath("/v2/capture"), parameters)
}

// CardRegister registers a card for one-click or recurring use.
func (c *CoreAPI) CardRegister(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath("/v2/card/register"), parameters)
}

// CardToken tokenizes card details.
func (c *CoreAPI) CardToken(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath("/v2/token"), parameters)
}

// CardPointInquiry reports the reward point balance of a tokenized card.
func (c *CoreAPI) CardPointInquiry(ctx context.Context, tokenID string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath("/v2/point_inquiry/"+url.PathEscape(tokenID)), "")
}

func (c *CoreAPI) CreateSubscription(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath("/v1/subscriptions"), parameters)
}

func (c *CoreAPI) GetSubscription(ctx context.Context, subscriptionID string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath(subscriptionPath(subscriptionID, "")), "")
}

func (c *CoreAPI) DisableSubscription(ctx context.Context, subscriptionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(subscriptionPath(subscriptionID, "/disable")), "")
}

func (c *CoreAPI) EnableSubscription(ctx context.Context, subscriptionID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath(subscriptionPath(subscriptionID, "/enable")), "")
}

func (c *CoreAPI) UpdateSubscription(ctx context.Context, subscriptionID, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPatch, c.corePath(subscriptionPath(subscriptionID, "")), parameters)
}

// LinkPaymentAccount binds an e-wallet account for tokenized payments.
func (c *CoreAPI) LinkPaymentAccount(ctx context.Context, parameters string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath("/v2/pay/account"), parameters)
}

func (c *CoreAPI) GetPaymentAccount(ctx context.Context, accountID string) (Response, error) {
	return c.request(ctx, http.MethodGet, c.corePath("/v2/pay/account/"+url.PathEscape(accountID)), "")
}

func (c *CoreAPI) UnlinkPaymentAccount(ctx context.Context, accountID string) (Response, error) {
	return c.request(ctx, http.MethodPost, c.corePath("/v2/pay/account/"+url.PathEscape(accountID)+"/unbind"), "")
}

// Do sends an arbitrary call to the Core API origin. path is joined to the base URL as-is.
func (c *CoreAPI) Do(ctx context.Context, method, path, parameters string) (Response, error) {
	return c.request(ctx, method, c.corePath(path), parameters)
}

func subscriptionPath(subscriptionID, suffix string) string {
	return "/v1/subscriptions/" + url.PathEscape(subscriptionID) + suffix
}
