package api

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// Version is the library version reported in the User-Agent header.
	Version = "1.0.0"

	// UserAgent identifies this library to the gateway.
	UserAgent = "midtrans-cli-go/" + Version

	contentTypeJSON = "application/json"
)

// ParseProxy validates a proxy descriptor. An empty string means no proxy.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("invalid proxy URL %q: scheme must be http, https, or socks5", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: missing host", raw)
	}
	return u, nil
}

// headerTransport fills in the default and custom headers on every request.
// Headers the request already carries, such as Basic auth, are kept.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if _, ok := r.Header[k]; ok {
			continue
		}
		r.Header[k] = append([]string(nil), v...)
	}
	return t.base.RoundTrip(r)
}

func (t *headerTransport) CloseIdleConnections() {
	if c, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// DefaultHeaders returns the headers every request carries, with custom
// headers applied on top. Custom headers win on key collision.
func DefaultHeaders(custom http.Header) http.Header {
	h := http.Header{}
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Accept", contentTypeJSON)
	h.Set("User-Agent", UserAgent)
	for k, v := range custom {
		if len(v) == 0 {
			continue
		}
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return h
}

// NewHTTPClient builds an HTTP client carrying the default headers plus the
// given custom headers, optionally routed through proxy.
func NewHTTPClient(custom http.Header, proxy string, timeout time.Duration) (*http.Client, error) {
	proxyURL, err := ParseProxy(proxy)
	if err != nil {
		return nil, &TransportError{Op: "build client", Err: err}
	}

	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &headerTransport{
			base:    transport,
			headers: DefaultHeaders(custom),
		},
	}, nil
}
