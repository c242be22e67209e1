package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
)

var validAPIMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

func newAPICmd() *cobra.Command {
	var method string
	var surface string
	var silent bool
	var body bodyFlags

	cmd := &cobra.Command{
		Use:   "api [METHOD] <path>",
		Short: "Make raw requests to any Core API or Snap endpoint",
		Long: `Make raw requests to any Core API or Snap endpoint.

The path is joined to the base URL of the chosen surface and environment:
  core  https://api.sandbox.midtrans.com  (production: https://api.midtrans.com)
  snap  https://app.sandbox.midtrans.com  (production: https://app.midtrans.com)

The method may be given as the first argument or with --method. GET requests
send the body fields as query parameters; other methods send them as JSON.`,
		Example: `  # GET request (default)
  midtrans api /v2/order-101/status

  # Method as an argument
  midtrans api POST /v2/order-101/cancel

  # Snap transaction with fields
  midtrans api POST /snap/v1/transactions --surface snap \
    -f transaction_details.order_id=order-102 -F transaction_details.gross_amount=10000

  # Read body from stdin
  echo '{"amount":"5000"}' | midtrans api -X POST /v2/order-101/refund -i -

  # Filter response with jq
  midtrans api /v2/order-101/status --jq '.transaction_status'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := args[len(args)-1]
			if len(args) == 2 {
				if flagOrAliasChanged(cmd, "method") && !strings.EqualFold(method, args[0]) {
					return fmt.Errorf("method %s conflicts with --method %s", args[0], method)
				}
				method = args[0]
			}
			method = strings.ToUpper(method)
			if !isValidAPIMethod(method) {
				return api.NewValidationError("method", method, validAPIMethods)
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			target, err := api.ParseSurface(surface)
			if err != nil {
				return api.NewValidationError("surface", surface, []string{"core", "snap"})
			}

			params, err := body.build(cmdContext(cmd))
			if err != nil {
				return err
			}

			call := gatewayCall{
				Operation: "raw " + target.String() + " request",
				Method:    method,
				Surface:   target,
				Path:      path,
				Params:    params,
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if ok, err := s.dryRun(cmd, call); ok || err != nil {
				return err
			}

			resp, err := doRawCall(cmdContext(cmd), s, call)
			if err != nil {
				return err
			}
			if silent {
				return nil
			}
			return printResponse(cmd, resp)
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	cmd.Flags().StringVar(&surface, "surface", "core", "API surface: core or snap")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress output")
	body.register(cmd)
	flagAlias(cmd.Flags(), "surface", "sf")

	return cmd
}

func doRawCall(ctx context.Context, s *session, call gatewayCall) (api.Response, error) {
	if call.Surface == api.SurfaceSnap {
		client, err := s.snap()
		if err != nil {
			return nil, err
		}
		return client.Do(ctx, call.Method, call.Path, call.Params)
	}
	client, err := s.core()
	if err != nil {
		return nil, err
	}
	return client.Do(ctx, call.Method, call.Path, call.Params)
}

func isValidAPIMethod(method string) bool {
	for _, m := range validAPIMethods {
		if m == method {
			return true
		}
	}
	return false
}
