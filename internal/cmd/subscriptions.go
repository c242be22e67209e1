package cmd

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/cli"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subscription", "subs"},
		Short:   "Manage recurring subscriptions",
	}
	cmd.AddCommand(newSubscriptionCreateCmd())
	cmd.AddCommand(newSubscriptionGetCmd())
	cmd.AddCommand(newSubscriptionToggleCmd("enable", "Resume charging a subscription", func(ctx context.Context, c *api.CoreAPI, id string) (api.Response, error) {
		return c.EnableSubscription(ctx, id)
	}))
	cmd.AddCommand(newSubscriptionToggleCmd("disable", "Stop charging a subscription", func(ctx context.Context, c *api.CoreAPI, id string) (api.Response, error) {
		return c.DisableSubscription(ctx, id)
	}))
	cmd.AddCommand(newSubscriptionUpdateCmd())
	return cmd
}

func subscriptionURLPath(id, suffix string) string {
	return "/v1/subscriptions/" + url.PathEscape(id) + suffix
}

func newSubscriptionCreateCmd() *cobra.Command {
	var body bodyFlags
	var startTime string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a subscription",
		Example: `  midtrans subscriptions create -f name=MONTHLY_2025 -F amount=14000 -f currency=IDR \
    -f payment_type=credit_card -f token=48111111-1114-xxx -F schedule='{"interval":1,"interval_unit":"month"}'

  # First charge next Monday
  midtrans subscriptions create -i subscription.json --start-time "next mon"`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if startTime != "" {
				t, err := cli.ParseScheduleTime(startTime, time.Now())
				if err != nil {
					return err
				}
				// Applied last so it survives a -F schedule={...} object.
				body.RawFields = append(body.RawFields, "schedule.start_time="+strconv.Quote(cli.FormatGatewayTime(t)))
			}
			params, err := requireBody(cmdContext(cmd), &body, "subscriptions create")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "create a subscription", Method: http.MethodPost, Surface: api.SurfaceCore, Path: "/v1/subscriptions", Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.CreateSubscription(ctx, params)
			})
		}),
	}
	body.register(cmd)
	cmd.Flags().StringVar(&startTime, "start-time", "", "First charge time (e.g. tomorrow, 2d, next mon, 2026-11-01 09:00)")
	return cmd
}

func newSubscriptionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <subscription-id>",
		Short: "Show a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("subscription ID", id); err != nil {
				return err
			}
			call := gatewayCall{Operation: "get a subscription", Method: http.MethodGet, Surface: api.SurfaceCore, Path: subscriptionURLPath(id, "")}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.GetSubscription(ctx, id)
			})
		}),
	}
}

func newSubscriptionToggleCmd(action, short string, fn func(context.Context, *api.CoreAPI, string) (api.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <subscription-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("subscription ID", id); err != nil {
				return err
			}
			call := gatewayCall{Operation: action + " a subscription", Method: http.MethodPost, Surface: api.SurfaceCore, Path: subscriptionURLPath(id, "/"+action)}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return fn(ctx, client, id)
			})
		}),
	}
}

func newSubscriptionUpdateCmd() *cobra.Command {
	var body bodyFlags
	cmd := &cobra.Command{
		Use:     "update <subscription-id>",
		Short:   "Update a subscription",
		Example: `  midtrans subscriptions update sub-123 -F amount=20000`,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateIdentifier("subscription ID", id); err != nil {
				return err
			}
			params, err := requireBody(cmdContext(cmd), &body, "subscriptions update")
			if err != nil {
				return err
			}
			call := gatewayCall{Operation: "update a subscription", Method: http.MethodPatch, Surface: api.SurfaceCore, Path: subscriptionURLPath(id, ""), Params: params}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.core()
				if err != nil {
					return nil, err
				}
				return client.UpdateSubscription(ctx, id, params)
			})
		}),
	}
	body.register(cmd)
	return cmd
}
