package cmd

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Register and tokenize cards",
		Long: `Register and tokenize cards.

Card details travel as query parameters of a GET request, exactly as the
gateway expects. Prefer tokenizing in the browser with the client key; these
commands exist for testing with sandbox card numbers.`,
	}
	cmd.AddCommand(newCardRegisterCmd())
	cmd.AddCommand(newCardTokenCmd())
	cmd.AddCommand(newCardPointInquiryCmd())
	return cmd
}

func newCardRegisterCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Register a card for one-click or recurring payments",
		Example: `  midtrans card register -f card_number=4811111111111114 -f card_exp_month=12 -f card_exp_year=2030 -f client_key=SB-Mid-client-xxx`,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "card register")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "register a card", Method: http.MethodGet, Surface: api.SurfaceCore, Path: "/v2/card/register", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.CardRegister(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}

func newCardTokenCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Tokenize card details",
		Example: `  midtrans card token -f card_number=4811111111111114 -f card_exp_month=12 \
    -f card_exp_year=2030 -f card_cvv=123 -f client_key=SB-Mid-client-xxx`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := requireBody(cmdContext(cmd), &body, "card token")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "tokenize a card", Method: http.MethodGet, Surface: api.SurfaceCore, Path: "/v2/token", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.CardToken(ctx, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}

func newCardPointInquiryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "point-inquiry <token-id>",
		Short: "Show the reward point balance of a tokenized card",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			tokenID := args[0]
			if err := validation.ValidateIdentifier("token ID", tokenID); err != nil {
				return err
			}
			call := gatewayCall{Operation: "query card points", Method: http.MethodGet, Surface: api.SurfaceCore, Path: "/v2/point_inquiry/" + url.PathEscape(tokenID)}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.CardPointInquiry(ctx, tokenID)
			})
		}),
	}
}
