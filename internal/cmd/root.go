package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/debug"
	"github.com/midtrans/midtrans-cli/internal/dryrun"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
	"github.com/midtrans/midtrans-cli/internal/outfmt"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output         string
	JSON           bool
	Compact        bool
	Query          string
	JQ             string
	Debug          bool
	DryRun         bool
	Quiet          bool
	AllowPrivate   bool
	Timeout        time.Duration
	IdempotencyKey string

	Profile    string
	EnvFile    string
	ServerKey  string
	ClientKey  string
	Production bool
	Headers    []string
	Proxy      string
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call. Code that reads
// flags outside of a command's RunE sees the previous call's values.
var flags = rootFlags{
	Output:  defaultOutput(),
	Timeout: api.DefaultTimeout,
}

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv("MIDTRANS_OUTPUT"))
	if value != "" {
		return value
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv("MIDTRANS_ALLOW_PRIVATE"),
		Timeout:      api.DefaultTimeout,
	}

	root := &cobra.Command{
		Use:                "midtrans",
		Short:              "CLI for the Midtrans payment gateway (Core API and Snap)",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // did-you-mean comes from enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			jqQuery := getJQQuery()
			if jqQuery != "" && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--jq/--query require --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if jqQuery != "" {
				ctx = outfmt.WithQuery(ctx, jqQuery)
			}

			// Streams injected by the caller (tests) win over the process streams.
			base := iocontext.GetIO(ctx)
			ioStreams := &iocontext.IO{Out: base.Out, ErrOut: base.ErrOut, In: base.In}
			if flags.Quiet {
				ioStreams.ErrOut = io.Discard
				if mode == outfmt.Text {
					ioStreams.Out = io.Discard
				}
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			validation.SetAllowPrivate(flags.AllowPrivate)
			if flags.AllowPrivate && !flags.Quiet {
				_, _ = fmt.Fprintln(ioStreams.ErrOut, "Warning: allowing private/localhost notification URLs (use only with trusted targets).")
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	if ioStreams, ok := injectedIO(ctx); ok {
		root.SetOut(ioStreams.Out)
		root.SetErr(ioStreams.ErrOut)
		root.SetIn(ioStreams.In)
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|ndjson (env MIDTRANS_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests and responses to stderr")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the request that would be sent without sending it")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost notification URLs (env MIDTRANS_ALLOW_PRIVATE)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.IdempotencyKey, "idempotency-key", "", "Idempotency-Key header for the request (use 'auto' to generate one)")
	pf.StringVarP(&flags.Profile, "profile", "p", "", "Credential profile to use (env MIDTRANS_PROFILE)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load MIDTRANS_* variables from a dotenv file (env MIDTRANS_ENV_FILE)")
	pf.StringVar(&flags.ServerKey, "server-key", "", "Server key (overrides profile and MIDTRANS_SERVER_KEY)")
	pf.StringVar(&flags.ClientKey, "client-key", "", "Client key (overrides profile and MIDTRANS_CLIENT_KEY)")
	pf.BoolVar(&flags.Production, "production", false, "Use the production environment instead of sandbox")
	pf.StringArrayVarP(&flags.Headers, "header", "H", nil, "Extra request header 'Name: value' (repeatable)")
	pf.StringVar(&flags.Proxy, "proxy", "", "Proxy URL for gateway requests (http, https, or socks5)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "query", "qr")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "idempotency-key", "idem")
	flagAlias(pf, "allow-private", "ap")
	flagAlias(pf, "server-key", "sk")
	flagAlias(pf, "client-key", "ck")
	flagAlias(pf, "production", "prod")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newChargeCmd())
	root.AddCommand(newCaptureCmd())
	root.AddCommand(newCardCmd())
	root.AddCommand(newSubscriptionsCmd())
	root.AddCommand(newPayAccountCmd())
	root.AddCommand(newTxCmd())
	root.AddCommand(newNotificationCmd())
	root.AddCommand(newSnapCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			enhanced := enhanceUnknownError(err, root, targetCmd)
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanced)
		}
		return err
	}
	return nil
}

// injectedIO reports streams placed in ctx by the caller.
func injectedIO(ctx context.Context) (*iocontext.IO, bool) {
	if ctx == nil {
		return nil, false
	}
	streams := iocontext.GetIO(ctx)
	if streams.Out == os.Stdout && streams.ErrOut == os.Stderr && streams.In == os.Stdin {
		return nil, false
	}
	return streams, true
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		parent := root
		if targetCmd != nil {
			parent = targetCmd
		}
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					for _, name := range []string{"--" + f.Name, shorthand(f)} {
						if name != "" && !seen[name] {
							seen[name] = true
							flagNames = append(flagNames, name)
						}
					}
				})
			}
			helpCmd := "midtrans --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

func shorthand(f *pflag.Flag) string {
	if f.Shorthand == "" {
		return ""
	}
	return "-" + f.Shorthand
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo" or "-x") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}
