package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

const (
	defaultListenAddr       = ":8080"
	defaultNotificationPath = "/notifications"
	maxNotificationBytes    = 1 << 20
	shutdownTimeout         = 10 * time.Second
)

func newNotificationCmd() *cobra.Command {
	var viaSnap bool

	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications", "notif"},
		Short:   "Verify HTTP notifications by re-querying transaction status",
		Long: `Verify HTTP notifications by re-querying transaction status.

A notification body is never trusted as-is: its transaction_id is used to
fetch the current status from the gateway, and that status is what gets
printed or returned.`,
	}
	cmd.PersistentFlags().BoolVar(&viaSnap, "snap", false, "Re-query through a Snap client")

	cmd.AddCommand(newNotificationHandleCmd(&viaSnap))
	cmd.AddCommand(newNotificationListenCmd(&viaSnap))
	return cmd
}

func newNotificationHandleCmd(viaSnap *bool) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Re-query the status named by a notification payload",
		Example: `  midtrans notification handle -i notification.json
  cat notification.json | midtrans notification handle --jq '.transaction_status'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			data, err := iocontext.ReadInput(cmdContext(cmd), input)
			if err != nil {
				return err
			}
			payload := string(data)
			if err := validation.ValidateJSONPayload(payload); err != nil {
				return err
			}
			params, err := api.DecodeParameters(payload)
			if err != nil {
				return err
			}
			id, _ := params["transaction_id"].(string)
			if id == "" {
				return &api.JSONDecodeError{Source: "notification", Err: api.ErrMissingTransactionID}
			}
			call := gatewayCall{
				Operation: "verify a notification",
				Method:    http.MethodGet,
				Surface:   api.SurfaceCore,
				Path:      txURLPath(id, "/status"),
			}
			return runCall(cmd, call, func(ctx context.Context, s *session) (any, error) {
				client, err := s.transactions(*viaSnap)
				if err != nil {
					return nil, err
				}
				return client.NotificationFromString(ctx, payload)
			})
		}),
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Read the notification from a file (- for stdin)")
	return cmd
}

func newNotificationListenCmd(viaSnap *bool) *cobra.Command {
	var addr, path, redisURL string
	var dedupTTL time.Duration

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Serve an HTTP endpoint that verifies notifications",
		Long: `Serve an HTTP endpoint that verifies notifications.

POST a notification to --path and the listener answers with the fresh
transaction status (200). A malformed payload gets 400; a gateway failure gets
502 with a structured error body. GET /health answers "ok". The server stops
cleanly on interrupt.

With --redis-url, each verified (transaction_id, transaction_status) pair is
recorded for --dedup-ttl. Repeats are still answered 200 but carry the
X-Notification-Duplicate: true header.`,
		Example: `  midtrans notification listen --addr :8080 --path /notifications
  midtrans notification listen --redis-url redis://localhost:6379/0 --dedup-ttl 48h`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("--path must start with /")
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			client, err := s.transactions(*viaSnap)
			if err != nil {
				return err
			}

			streams := iocontext.GetIO(cmdContext(cmd))
			logger := slog.New(slog.NewTextHandler(streams.ErrOut, &slog.HandlerOptions{Level: slog.LevelInfo}))

			var dedup *notificationDeduper
			if redisURL != "" {
				dedup, err = newNotificationDeduper(cmdContext(cmd), redisURL, dedupTTL)
				if err != nil {
					return err
				}
				defer func() { _ = dedup.Close() }()
			}

			e := newNotificationRouter(client, path, logger, dedup)
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			e.Listener = listener
			logger.Info("listening for notifications",
				"addr", listener.Addr().String(),
				"path", path,
				"environment", s.resolved.Environment(),
				"dedup", dedup != nil,
			)
			return serveNotifications(cmdContext(cmd), e)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", defaultListenAddr, "Address to listen on")
	cmd.Flags().StringVar(&path, "path", defaultNotificationPath, "Path that accepts POSTed notifications")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for flagging repeated notifications (redis://host:port/db)")
	cmd.Flags().DurationVar(&dedupTTL, "dedup-ttl", defaultDedupTTL, "How long a verified notification is remembered")
	return cmd
}

// serveNotifications runs e until ctx is done, then shuts it down.
func serveNotifications(ctx context.Context, e *echo.Echo) error {
	errgrp, ctx := errgroup.WithContext(ctx)

	errgrp.Go(func() error {
		err := e.Start("")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errgrp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return errgrp.Wait()
}

// notificationHandler verifies notifications against the gateway.
type notificationHandler struct {
	client api.Transactions
	logger *slog.Logger
	dedup  *notificationDeduper
}

// newNotificationRouter builds the listener routes. dedup may be nil.
func newNotificationRouter(client api.Transactions, path string, logger *slog.Logger, dedup *notificationDeduper) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := notificationHandler{client: client, logger: logger, dedup: dedup}
	e.POST(path, h.PostNotification)

	return e
}

func (h notificationHandler) PostNotification(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxNotificationBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read notification body")
	}
	if len(body) > maxNotificationBytes {
		return c.JSON(http.StatusRequestEntityTooLarge,
			api.NewStructuredError(api.CodeBadRequest, "notification body exceeds 1 MiB"))
	}

	status, err := h.client.NotificationFromString(c.Request().Context(), string(body))
	if err != nil {
		if isNotificationDecodeError(err) {
			h.logger.Warn("rejected notification", "error", err)
			return c.JSON(http.StatusBadRequest, api.StructuredErrorFromError(err))
		}
		h.logger.Error("notification status query failed",
			"error", err,
			"upstream_status", api.StatusCodeOf(err),
		)
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":           api.StructuredErrorFromError(err),
			"upstream_status": api.StatusCodeOf(err),
		})
	}

	duplicate := false
	if h.dedup != nil {
		first, err := h.dedup.FirstSeen(c.Request().Context(), status)
		if err != nil {
			h.logger.Warn("notification dedup unavailable", "error", err)
		} else if !first {
			duplicate = true
			c.Response().Header().Set(duplicateHeaderKey, "true")
		}
	}

	h.logger.Info("notification verified",
		"order_id", status.String("order_id"),
		"transaction_id", status.String("transaction_id"),
		"transaction_status", status.TransactionStatus(),
		"fraud_status", status.String("fraud_status"),
		"duplicate", duplicate,
	)
	return c.JSON(http.StatusOK, status)
}

// isNotificationDecodeError reports whether err blames the notification body
// rather than the gateway's answer.
func isNotificationDecodeError(err error) bool {
	var decodeErr *api.JSONDecodeError
	return errors.As(err, &decodeErr) && decodeErr.Source == "notification"
}
