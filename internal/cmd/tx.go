package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

func newTxCmd() *cobra.Command {
	var viaSnap bool

	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Query and manage transactions by order ID or transaction ID",
		Long: `Query and manage transactions by order ID or transaction ID.

Every subcommand calls the Core API origin. --snap sends the call through a
Snap client instead, which reaches the same endpoints with the same key.`,
	}
	cmd.PersistentFlags().BoolVar(&viaSnap, "snap", false, "Send the call through a Snap client")

	cmd.AddCommand(newTxStatusCmd(&viaSnap))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "status-b2b",
		short:  "Show the B2B status of a transaction",
		method: http.MethodGet,
		suffix: "/status/b2b",
		call: func(ctx context.Context, t api.Transactions, id, _ string) (api.Response, error) {
			return t.StatusB2B(ctx, id)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "approve",
		short:  "Approve a transaction held for fraud review",
		method: http.MethodPost,
		suffix: "/approve",
		call: func(ctx context.Context, t api.Transactions, id, _ string) (api.Response, error) {
			return t.Approve(ctx, id)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "deny",
		short:  "Deny a transaction held for fraud review",
		method: http.MethodPost,
		suffix: "/deny",
		call: func(ctx context.Context, t api.Transactions, id, _ string) (api.Response, error) {
			return t.Deny(ctx, id)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "cancel",
		short:  "Cancel a pending or authorized transaction",
		method: http.MethodPost,
		suffix: "/cancel",
		call: func(ctx context.Context, t api.Transactions, id, _ string) (api.Response, error) {
			return t.Cancel(ctx, id)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "expire",
		short:  "Expire a pending transaction",
		method: http.MethodPost,
		suffix: "/expire",
		call: func(ctx context.Context, t api.Transactions, id, _ string) (api.Response, error) {
			return t.Expire(ctx, id)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:    "refund",
		short:   "Refund a settled transaction",
		method:  http.MethodPost,
		suffix:  "/refund",
		body:    true,
		example: `  midtrans tx refund order-101 -f refund_key=order-101-ref1 -F amount=5000 -f reason="item out of stock"`,
		call: func(ctx context.Context, t api.Transactions, id, params string) (api.Response, error) {
			return t.Refund(ctx, id, params)
		},
	}))
	cmd.AddCommand(newTxActionCmd(&viaSnap, txAction{
		name:   "refund-direct",
		short:  "Refund directly through the payment provider",
		method: http.MethodPost,
		suffix: "/refund/online/direct",
		body:   true,
		call: func(ctx context.Context, t api.Transactions, id, params string) (api.Response, error) {
			return t.RefundDirect(ctx, id, params)
		},
	}))
	return cmd
}

func txURLPath(id, suffix string) string {
	return "/v2/" + url.PathEscape(id) + suffix
}

// txAction describes a single-ID transaction subcommand.
type txAction struct {
	name    string
	short   string
	example string
	method  string
	suffix  string
	body    bool
	call    func(ctx context.Context, t api.Transactions, id, params string) (api.Response, error)
}

func newTxActionCmd(viaSnap *bool, action txAction) *cobra.Command {
	var body bodyFlags

	cmd := &cobra.Command{
		Use:     action.name + " <order-or-transaction-id>",
		Short:   action.short,
		Example: action.example,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("transaction ID", id); err != nil {
				return err
			}
			params := ""
			if action.body {
				var err error
				if params, err = body.build(cmdContext(cmd)); err != nil {
					return err
				}
			}
			call := gatewayCall{
				Operation: action.name + " transaction " + id,
				Method:    action.method,
				Surface:   api.SurfaceCore,
				Path:      txURLPath(id, action.suffix),
				Params:    params,
			}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.transactions(*viaSnap)
				if err != nil {
					return nil, err
				}
				return action.call(ctx, client, id, params)
			})
		}),
	}
	if action.body {
		body.register(cmd)
	}
	return cmd
}

func newTxStatusCmd(viaSnap *bool) *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "status <order-or-transaction-id>...",
		Short: "Show the status of one or more transactions",
		Long: `Show the status of one or more transactions.

Several IDs are queried concurrently (see --concurrency); results are printed
in the order the IDs were given. With --output jsonl each result is one line.`,
		Example: `  midtrans tx status order-101
  midtrans tx status order-101 order-102 order-103 -o jsonl --jq '.transaction_status'`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := validation.ValidateIdentifier("transaction ID", id); err != nil {
					return err
				}
			}
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			if len(args) == 1 {
				id := args[0]
				call := gatewayCall{Operation: "get transaction status", Method: http.MethodGet, Surface: api.SurfaceCore, Path: txURLPath(id, "/status")}
				return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
					client, err := s.transactions(*viaSnap)
					if err != nil {
						return nil, err
					}
					return client.Status(ctx, id)
				})
			}
			return runStatusFanOut(cmd, args, concurrency, *viaSnap)
		}),
	}
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum number of status queries in flight")
	flagAlias(cmd.Flags(), "concurrency", "conc")
	return cmd
}

func runStatusFanOut(cmd *cobra.Command, ids []string, concurrency int64, viaSnap bool) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	handled := false
	for _, id := range ids {
		call := gatewayCall{Operation: "get transaction status", Method: http.MethodGet, Surface: api.SurfaceCore, Path: txURLPath(id, "/status")}
		ok, err := s.dryRun(cmd, call)
		if err != nil {
			return err
		}
		handled = handled || ok
	}
	if handled {
		return nil
	}

	client, err := s.transactions(viaSnap)
	if err != nil {
		return err
	}
	results := runBulk(cmdContext(cmd), ids, concurrency, client.Status)

	items := make([]any, 0, len(results))
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			items = append(items, map[string]any{
				"id":    r.ID,
				"error": api.StructuredErrorFromError(r.Err),
			})
			continue
		}
		items = append(items, r.Response)
	}
	if err := formatter(cmd).OutputAll(items); err != nil {
		return err
	}

	if _, failure := countResults(results); failure > 0 {
		return fmt.Errorf("%d of %d status queries failed: %w", failure, len(results), firstErr)
	}
	return nil
}
