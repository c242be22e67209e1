package cmd

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

func newPayAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pay-account",
		Aliases: []string{"pay-accounts"},
		Short:   "Link and unlink e-wallet payment accounts",
	}
	cmd.AddCommand(newPayAccountLinkCmd())
	cmd.AddCommand(newPayAccountGetCmd())
	cmd.AddCommand(newPayAccountUnlinkCmd())
	return cmd
}

func newPayAccountLinkCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link an e-wallet account",
		Example: `  midtrans pay-account link -f payment_type=gopay -f gopay_partner.phone_number=81212345678 \
    -f gopay_partner.country_code=62 -f gopay_partner.redirect_url=https://shop.example.com/linked`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "pay-account link")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "link a payment account", Method: http.MethodPost, Surface: api.SurfaceCore, Path: "/v2/pay/account", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.LinkPaymentAccount(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}

func newPayAccountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show a linked payment account",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("account ID", id); err != nil {
				return err
			}
			call := gatewayCall{Operation: "get a payment account", Method: http.MethodGet, Surface: api.SurfaceCore, Path: "/v2/pay/account/" + url.PathEscape(id)}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.GetPaymentAccount(ctx, id)
			})
		}),
	}
}

func newPayAccountUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unlink <account-id>",
		Aliases: []string{"unbind"},
		Short:   "Unlink a payment account",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("account ID", id); err != nil {
				return err
			}
			call := gatewayCall{Operation: "unlink a payment account", Method: http.MethodPost, Surface: api.SurfaceCore, Path: "/v2/pay/account/" + url.PathEscape(id) + "/unbind"}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.UnlinkPaymentAccount(ctx, id)
			})
		}),
	}
}
