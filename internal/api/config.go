package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Surface identifies one of the two Midtrans API products.
type Surface int

const (
	// SurfaceCore is the direct transaction API.
	SurfaceCore Surface = iota
	// SurfaceSnap is the hosted checkout API.
	SurfaceSnap
)

func (s Surface) String() string {
	switch s {
	case SurfaceSnap:
		return "snap"
	default:
		return "core"
	}
}

// ParseSurface parses "core" or "snap".
func ParseSurface(s string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "core":
		return SurfaceCore, nil
	case "snap":
		return SurfaceSnap, nil
	default:
		return SurfaceCore, fmt.Errorf("invalid surface %q: must be one of core, snap", s)
	}
}

const (
	CoreSandboxBaseURL    = "https://api.sandbox.midtrans.com"
	CoreProductionBaseURL = "https://api.midtrans.com"
	SnapSandboxBaseURL    = "https://app.sandbox.midtrans.com"
	SnapProductionBaseURL = "https://app.midtrans.com"
)

type baseURLSet struct {
	coreSandbox, coreProduction string
	snapSandbox, snapProduction string
}

var baseURLs = baseURLSet{
	coreSandbox:    CoreSandboxBaseURL,
	coreProduction: CoreProductionBaseURL,
	snapSandbox:    SnapSandboxBaseURL,
	snapProduction: SnapProductionBaseURL,
}

// SetBaseURLsForTesting points both environments of both surfaces at the given
// origins (typically httptest servers). Returns a function restoring the defaults.
func SetBaseURLsForTesting(core, snap string) func() {
	original := baseURLs
	baseURLs = baseURLSet{
		coreSandbox:    core,
		coreProduction: core,
		snapSandbox:    snap,
		snapProduction: snap,
	}
	return func() { baseURLs = original }
}

// Config holds credentials and transport settings shared by every call a client makes.
//
// Fields may be changed between calls (for example to rotate the server key).
// Changing them while a call is in flight is not synchronized.
type Config struct {
	IsProduction  bool
	ServerKey     string
	ClientKey     string
	CustomHeaders http.Header
	Proxy         string
	Timeout       time.Duration
}

// ConfigBuilder collects optional Config settings.
type ConfigBuilder struct {
	cfg Config
}

// NewConfig starts a Config with the two required settings.
func NewConfig(isProduction bool, serverKey string) *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{IsProduction: isProduction, ServerKey: serverKey}}
}

// ClientKey sets the public client key.
func (b *ConfigBuilder) ClientKey(key string) *ConfigBuilder {
	b.cfg.ClientKey = key
	return b
}

// CustomHeaders replaces the custom header set.
func (b *ConfigBuilder) CustomHeaders(h http.Header) *ConfigBuilder {
	b.cfg.CustomHeaders = h.Clone()
	return b
}

// Header adds a single custom header, replacing earlier values for the same key.
func (b *ConfigBuilder) Header(key, value string) *ConfigBuilder {
	if b.cfg.CustomHeaders == nil {
		b.cfg.CustomHeaders = make(http.Header)
	}
	b.cfg.CustomHeaders.Set(key, value)
	return b
}

// Proxy routes requests through the given proxy URL.
func (b *ConfigBuilder) Proxy(proxy string) *ConfigBuilder {
	b.cfg.Proxy = proxy
	return b
}

// Timeout bounds each request. Zero selects DefaultTimeout.
func (b *ConfigBuilder) Timeout(d time.Duration) *ConfigBuilder {
	b.cfg.Timeout = d
	return b
}

// Build returns the configured Config.
func (b *ConfigBuilder) Build() *Config {
	cfg := b.cfg
	cfg.CustomHeaders = b.cfg.CustomHeaders.Clone()
	return &cfg
}

// BaseURL returns the origin for the given surface in the configured environment.
func (c *Config) BaseURL(surface Surface) string {
	switch {
	case surface == SurfaceSnap && c.IsProduction:
		return baseURLs.snapProduction
	case surface == SurfaceSnap:
		return baseURLs.snapSandbox
	case c.IsProduction:
		return baseURLs.coreProduction
	default:
		return baseURLs.coreSandbox
	}
}

// CoreBaseURL returns the Core API origin.
func (c *Config) CoreBaseURL() string {
	return c.BaseURL(SurfaceCore)
}

// SnapBaseURL returns the Snap API origin.
func (c *Config) SnapBaseURL() string {
	return c.BaseURL(SurfaceSnap)
}

// EffectiveTimeout returns Timeout, or DefaultTimeout when unset.
func (c *Config) EffectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.CustomHeaders = c.CustomHeaders.Clone()
	return &clone
}

func (c *Config) String() string {
	headers := "none"
	if len(c.CustomHeaders) > 0 {
		keys := make([]string, 0, len(c.CustomHeaders))
		for k := range c.CustomHeaders {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		headers = strings.Join(keys, ",")
	}
	proxy := c.Proxy
	if proxy == "" {
		proxy = "none"
	}
	return fmt.Sprintf("<Config(production=%t, server_key=%s, client_key=%s, headers=%s, proxy=%s)>",
		c.IsProduction, MaskKey(c.ServerKey), c.ClientKey, headers, proxy)
}

// MaskKey hides all but the last four characters of a credential.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
