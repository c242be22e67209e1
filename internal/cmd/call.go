package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
	"github.com/midtrans/midtrans-cli/internal/dryrun"
)

// gatewayCall describes one gateway request for previews.
type gatewayCall struct {
	Operation string
	Method    string
	Surface   api.Surface
	Path      string
	Params    string
}

// session is the resolved profile plus the factory that builds clients from it.
type session struct {
	resolved config.Resolved
	factory  *clientFactory
	warnings []string
}

func newSession(cmd *cobra.Command) (*session, error) {
	f := newClientFactory()
	res, err := f.resolve(flagOrAliasChanged(cmd, "production"))
	if err != nil {
		// Previews work without credentials.
		if dryrun.IsEnabled(cmd.Context()) && errors.Is(err, config.ErrNotConfigured) {
			return &session{factory: f, warnings: []string{"no server key configured"}}, nil
		}
		return nil, err
	}
	return &session{resolved: res, factory: f}, nil
}

func (s *session) core() (*api.CoreAPI, error) {
	return s.factory.core(s.resolved)
}

func (s *session) snap() (*api.Snap, error) {
	return s.factory.snap(s.resolved)
}

// transactions returns the lifecycle client for the chosen surface.
func (s *session) transactions(viaSnap bool) (api.Transactions, error) {
	if viaSnap {
		client, err := s.snap()
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	client, err := s.core()
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *session) preview(call gatewayCall) *dryrun.Preview {
	cfg := s.factory.apiConfig(s.resolved)
	p := &dryrun.Preview{
		Operation:   call.Operation,
		Method:      call.Method,
		URL:         cfg.BaseURL(call.Surface) + call.Path,
		Environment: s.resolved.Environment(),
		Warnings:    s.warnings,
	}
	if call.Params != "" {
		if params, err := api.DecodeParameters(call.Params); err == nil {
			p.Parameters = params
		}
	}
	if cfg.ServerKey != "" {
		p.Headers = append(p.Headers, "Authorization: Basic (server key "+api.MaskKey(cfg.ServerKey)+")")
	}
	names := make([]string, 0, len(cfg.CustomHeaders))
	for name := range cfg.CustomHeaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Headers = append(p.Headers, name+": "+cfg.CustomHeaders.Get(name))
	}
	if s.resolved.IsProduction && call.Method != http.MethodGet {
		p.Warnings = append(p.Warnings, "this request targets the production environment")
	}
	return p
}

// dryRun prints the preview of call when --dry-run is set. The preview is
// only built then, so --idempotency-key auto is generated once per request.
func (s *session) dryRun(cmd *cobra.Command, call gatewayCall) (bool, error) {
	if !dryrun.IsEnabled(cmdContext(cmd)) {
		return false, nil
	}
	return maybeDryRun(cmd, s.preview(call))
}

// runCall resolves credentials, honors --dry-run, runs fn, and prints its result.
func runCall(cmd *cobra.Command, call gatewayCall, fn func(ctx context.Context, s *session) (any, error)) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if ok, err := s.dryRun(cmd, call); ok || err != nil {
		return err
	}
	result, err := fn(cmdContext(cmd), s)
	if err != nil {
		return err
	}
	return printResponse(cmd, result)
}

// requireBody builds the body and fails when none was given.
func requireBody(ctx context.Context, b *bodyFlags, operation string) (string, error) {
	params, err := b.build(ctx)
	if err != nil {
		return "", err
	}
	if params == "" {
		return "", fmt.Errorf("%s requires a request body (--body, --input, --field, or --raw-field)", operation)
	}
	return params, nil
}
