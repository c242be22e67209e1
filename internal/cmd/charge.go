package cmd

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
)

func newChargeCmd() *cobra.Command {
	var body bodyFlags

	cmd := &cobra.Command{
		Use:   "charge",
		Short: "Create a transaction through the Core API",
		Long: `Create a transaction through the Core API (POST /v2/charge).

The request body is passed to the gateway unchanged; payment_type decides
which other fields are required.`,
		Example: `  # Bank transfer virtual account
  midtrans charge -f payment_type=bank_transfer -f bank_transfer.bank=bca \
    -f transaction_details.order_id=order-101 -F transaction_details.gross_amount=200000

  # Card charge from a file, with an idempotency key
  midtrans charge -i charge.json --idempotency-key auto

  # Preview without sending
  midtrans charge -d '{"payment_type":"gopay","transaction_details":{"order_id":"o-1","gross_amount":10000}}' --dry-run`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "charge")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "charge a transaction", Method: http.MethodPost, Surface: api.SurfaceCore, Path: "/v2/charge", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.Charge(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}

func newCaptureCmd() *cobra.Command {
	var body bodyFlags

	cmd := &cobra.Command{
		Use:     "capture",
		Short:   "Capture an authorized card transaction",
		Example: `  midtrans capture -f transaction_id=be4f3e44-d6ee-4355-8c64-c1d1dc7f4590 -F gross_amount=145000`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "capture")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "capture a transaction", Method: http.MethodPost, Surface: api.SurfaceCore, Path: "/v2/capture", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.Capture(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}
