package cmd

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

// clientFactory turns the resolved profile and global flags into gateway clients.
type clientFactory struct {
	timeout  time.Duration
	executor api.Executor
}

// testExecutor, when set, replaces the HTTP executor for every client.
var testExecutor api.Executor

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:  flags.Timeout,
		executor: testExecutor,
	}
}

// overrides collects the credential flags that were set on the command line.
func (f *clientFactory) overrides(productionSet bool) (config.Overrides, error) {
	o := config.Overrides{
		Profile:   flags.Profile,
		EnvFile:   flags.EnvFile,
		ServerKey: flags.ServerKey,
		ClientKey: flags.ClientKey,
		Proxy:     flags.Proxy,
	}
	if productionSet {
		prod := flags.Production
		o.IsProduction = &prod
	}
	if len(flags.Headers) > 0 {
		o.Headers = make(map[string]string, len(flags.Headers))
		for _, raw := range flags.Headers {
			name, value, err := validation.ParseHeader(raw)
			if err != nil {
				return config.Overrides{}, err
			}
			o.Headers[name] = value
		}
	}
	return o, nil
}

// resolve returns the effective profile with request headers validated.
func (f *clientFactory) resolve(productionSet bool) (config.Resolved, error) {
	o, err := f.overrides(productionSet)
	if err != nil {
		return config.Resolved{}, err
	}
	res, err := config.Resolve(o)
	if err != nil {
		return config.Resolved{}, err
	}
	if res.Proxy != "" {
		if err := validation.ValidateProxyURL(res.Proxy); err != nil {
			return config.Resolved{}, fmt.Errorf("invalid proxy: %w", err)
		}
	}
	for name, value := range res.CustomHeaders {
		switch strings.ToLower(name) {
		case "x-override-notification", "x-append-notification":
			if err := validation.ValidateNotificationURLs(value); err != nil {
				return config.Resolved{}, fmt.Errorf("invalid %s header: %w", name, err)
			}
		}
	}
	return res, nil
}

// apiConfig builds the client configuration including the idempotency header.
func (f *clientFactory) apiConfig(res config.Resolved) *api.Config {
	cfg := res.APIConfig(f.timeout)
	if key := idempotencyKey(flags.IdempotencyKey); key != "" {
		if cfg.CustomHeaders == nil {
			cfg.CustomHeaders = make(http.Header)
		}
		cfg.CustomHeaders.Set("Idempotency-Key", key)
	}
	return cfg
}

func (f *clientFactory) core(res config.Resolved) (*api.CoreAPI, error) {
	cfg := f.apiConfig(res)
	b := api.NewCoreAPI(cfg.IsProduction, cfg.ServerKey).
		ClientKey(cfg.ClientKey).
		CustomHeaders(cfg.CustomHeaders).
		Proxy(cfg.Proxy).
		Timeout(cfg.Timeout)
	if f.executor != nil {
		b = b.Executor(f.executor)
	}
	return b.Build()
}

func (f *clientFactory) snap(res config.Resolved) (*api.Snap, error) {
	cfg := f.apiConfig(res)
	b := api.NewSnap(cfg.IsProduction, cfg.ServerKey).
		ClientKey(cfg.ClientKey).
		CustomHeaders(cfg.CustomHeaders).
		Proxy(cfg.Proxy).
		Timeout(cfg.Timeout)
	if f.executor != nil {
		b = b.Executor(f.executor)
	}
	return b.Build()
}
