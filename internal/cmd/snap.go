package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
)

const snapTransactionsPath = "/snap/v1/transactions"

func newSnapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Create hosted checkout (Snap) transactions",
		Long: `Create hosted checkout (Snap) transactions.

All three subcommands send the same request (POST /snap/v1/transactions).
create prints the whole response; token and redirect-url print one field.`,
	}
	cmd.AddCommand(newSnapCreateCmd())
	cmd.AddCommand(newSnapFieldCmd("token", "token", "Create a transaction and print its checkout token",
		func(ctx context.Context, s *api.Snap, params string) (string, error) {
			return s.CreateTransactionToken(ctx, params)
		}))
	cmd.AddCommand(newSnapFieldCmd("redirect-url", "redirect_url", "Create a transaction and print its checkout URL",
		func(ctx context.Context, s *api.Snap, params string) (string, error) {
			return s.CreateTransactionRedirectURL(ctx, params)
		}))
	return cmd
}

func newSnapCreateCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Snap transaction",
		Example: `  midtrans snap create -f transaction_details.order_id=order-101 -F transaction_details.gross_amount=200000 \
    -F credit_card='{"secure":true}' -f customer_details.email=budi@example.com`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "snap create")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "create a snap transaction", Method: http.MethodPost, Surface: api.SurfaceSnap, Path: snapTransactionsPath, Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.snap()
				if err != nil {
					return nil, err
				}
				return client.CreateTransaction(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}

func newSnapFieldCmd(name, field, short string, fn func(context.Context, *api.Snap, string) (string, error)) *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:     name,
		Short:   short,
		Example: fmt.Sprintf(`  midtrans snap %s -f transaction_details.order_id=order-101 -F transaction_details.gross_amount=200000`, name),
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "snap "+name)
			if err != nil {
				return err
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "create a snap transaction", Method: http.MethodPost, Surface: api.SurfaceSnap, Path: snapTransactionsPath, Params: params}
			if ok, err := s.dryRun(cmd, call); ok || err != nil {
				return err
			}
			client, err := s.snap()
			if err != nil {
				return err
			}
			value, err := fn(cmdContext(cmd), client, params)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{field: value})
			}
			_, _ = fmt.Fprintln(iocontext.GetIO(cmdContext(cmd)).Out, value)
			return nil
		}),
	}
	body.register(cmd)
	return cmd
}
