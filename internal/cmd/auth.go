package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/midtrans/midtrans-cli/internal/api"
	"github.com/midtrans/midtrans-cli/internal/config"
	"github.com/midtrans/midtrans-cli/internal/iocontext"
	"github.com/midtrans/midtrans-cli/internal/resolve"
	"github.com/midtrans/midtrans-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage credential profiles",
		Long:    "Store Midtrans server keys as named profiles in your OS keychain and switch between them.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthListCmd())
	cmd.AddCommand(newAuthUseCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var keyFromStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a server key as a profile",
		Long: strings.TrimSpace(`
Save Midtrans credentials securely to your OS keychain.

Credentials come from the global flags (--server-key, --client-key,
--production, --header, --proxy) or from an env file given with --env-file
(MIDTRANS_SERVER_KEY, MIDTRANS_CLIENT_KEY, MIDTRANS_IS_PRODUCTION,
MIDTRANS_PROXY). Flags win over the env file.

The profile is named by --profile (default "default") and becomes the active
profile.
`),
		Example: strings.TrimSpace(`
  # Sandbox profile
  midtrans auth login --server-key SB-Mid-server-xxx --client-key SB-Mid-client-xxx

  # Production profile, key read from stdin
  pass show midtrans/prod | midtrans auth login --server-key-stdin --production --profile prod

  # Load credentials from a .env file
  midtrans auth login --env-file .env --profile staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			p, err := loginProfile(cmd, keyFromStdin)
			if err != nil {
				return err
			}
			if p.ServerKey == "" {
				return fmt.Errorf("--server-key is required (or use --server-key-stdin or --env-file)")
			}
			if p.Proxy != "" {
				if err := validation.ValidateProxyURL(p.Proxy); err != nil {
					return fmt.Errorf("invalid proxy: %w", err)
				}
			}

			name := flags.Profile
			if name == "" {
				name = config.DefaultProfile
			}
			if err := config.SaveProfile(name, p); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"saved":       true,
					"profile":     name,
					"environment": p.Environment(),
					"server_key":  api.MaskKey(p.ServerKey),
				})
			}
			printIfNotQuiet(cmd, "Credentials saved to profile %s.\n", name)
			printIfNotQuiet(cmd, "  Environment: %s\n", p.Environment())
			printIfNotQuiet(cmd, "  Server key: %s\n", api.MaskKey(p.ServerKey))
			return nil
		}),
	}

	cmd.Flags().BoolVar(&keyFromStdin, "server-key-stdin", false, "Read the server key from stdin")
	flagAlias(cmd.Flags(), "server-key-stdin", "sks")

	return cmd
}

// loginProfile assembles the profile to store from the env file and flags.
func loginProfile(cmd *cobra.Command, keyFromStdin bool) (config.Profile, error) {
	var p config.Profile

	if flags.EnvFile != "" {
		envVars, err := loadAuthEnvFile(flags.EnvFile)
		if err != nil {
			return p, err
		}
		p.ServerKey = strings.TrimSpace(envVars[config.EnvServerKey])
		p.ClientKey = strings.TrimSpace(envVars[config.EnvClientKey])
		p.Proxy = strings.TrimSpace(envVars[config.EnvProxy])
		if raw := strings.TrimSpace(envVars[config.EnvIsProduction]); raw != "" {
			prod, err := strconv.ParseBool(raw)
			if err != nil {
				return p, fmt.Errorf("invalid %s in %q: must be a boolean", config.EnvIsProduction, flags.EnvFile)
			}
			p.IsProduction = prod
		}
	}

	if keyFromStdin {
		if flags.ServerKey != "" {
			return p, fmt.Errorf("--server-key and --server-key-stdin conflict; set only one of them")
		}
		key, err := readKeyFromStdin(cmd)
		if err != nil {
			return p, err
		}
		p.ServerKey = key
	}
	if v := strings.TrimSpace(flags.ServerKey); v != "" {
		p.ServerKey = v
	}
	if v := strings.TrimSpace(flags.ClientKey); v != "" {
		p.ClientKey = v
	}
	if v := strings.TrimSpace(flags.Proxy); v != "" {
		p.Proxy = v
	}
	if flagOrAliasChanged(cmd, "production") {
		p.IsProduction = flags.Production
	}
	for _, raw := range flags.Headers {
		name, value, err := validation.ParseHeader(raw)
		if err != nil {
			return p, err
		}
		if p.CustomHeaders == nil {
			p.CustomHeaders = map[string]string{}
		}
		p.CustomHeaders[name] = value
	}
	return p, nil
}

func readKeyFromStdin(cmd *cobra.Command) (string, error) {
	in := iocontext.GetIO(cmdContext(cmd)).In
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read server key from stdin: %w", err)
		}
		return "", fmt.Errorf("no server key on stdin")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the credentials commands would use",
		Long:  "Display the effective credentials after applying profiles, env file, environment variables, and flags. The server key is masked.",
		Example: strings.TrimSpace(`
  # Check authentication status
  midtrans auth status

  # JSON output for scripting
  midtrans auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			res, err := newClientFactory().resolve(flagOrAliasChanged(cmd, "production"))
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'midtrans auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'midtrans auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			headers := make([]string, 0, len(res.CustomHeaders))
			for k := range res.CustomHeaders {
				headers = append(headers, k)
			}
			sort.Strings(headers)

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"environment":   res.Environment(),
					"server_key":    api.MaskKey(res.ServerKey),
					"source":        res.Source,
				}
				if res.Name != "" {
					payload["profile"] = res.Name
				}
				if res.ClientKey != "" {
					payload["client_key"] = res.ClientKey
				}
				if res.Proxy != "" {
					payload["proxy"] = res.Proxy
				}
				if len(headers) > 0 {
					payload["headers"] = headers
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Environment: %s\n", res.Environment())
			_, _ = fmt.Fprintf(out, "  Server key: %s\n", api.MaskKey(res.ServerKey))
			if res.ClientKey != "" {
				_, _ = fmt.Fprintf(out, "  Client key: %s\n", res.ClientKey)
			}
			if res.Name != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", res.Name)
			}
			if res.Proxy != "" {
				_, _ = fmt.Fprintf(out, "  Proxy: %s\n", res.Proxy)
			}
			if len(headers) > 0 {
				_, _ = fmt.Fprintf(out, "  Headers: %s\n", strings.Join(headers, ", "))
			}
			_, _ = fmt.Fprintf(out, "  Source: %s\n", res.Source)
			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove a profile from the keychain",
		Long:  "Delete the stored credentials of --profile, or of the active profile when --profile is not set.",
		Example: strings.TrimSpace(`
  # Remove the active profile
  midtrans auth logout

  # Remove a named profile
  midtrans auth logout --profile staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return fmt.Errorf("failed to read active profile: %w", err)
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
					return nil
				}
				return err
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": true, "profile": profile})
			}
			printAction(cmd, "Removed", "profile", profile)
			return nil
		}),
	}

	return cmd
}

type profileEntry struct {
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	Environment string `json:"environment,omitempty"`
	ServerKey   string `json:"server_key,omitempty"`
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			active, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			entries := make([]profileEntry, 0, len(names))
			for _, name := range names {
				entry := profileEntry{Name: name, Active: name == active}
				if p, err := config.LoadProfile(name); err == nil {
					entry.Environment = p.Environment()
					entry.ServerKey = api.MaskKey(p.ServerKey)
				}
				entries = append(entries, entry)
			}

			if isJSON(cmd) {
				return printJSON(cmd, entries)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles. Run 'midtrans auth login' to add one.")
				return nil
			}
			for _, e := range entries {
				marker := " "
				if e.Active {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", marker, e.Name, e.Environment, e.ServerKey)
			}
			return nil
		}),
	}
}

func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Switch the active profile",
		Long: `Switch the active profile.

The name may be abbreviated: an exact match wins, otherwise the best fuzzy
match is used. Ambiguous abbreviations are rejected with the candidates.`,
		Example: `  midtrans auth use staging
  midtrans auth use prod`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			name, err := resolve.Profile(args[0], names)
			if err != nil {
				if errors.Is(err, resolve.ErrEmptyItems) {
					return fmt.Errorf("no profiles stored; run 'midtrans auth login' first")
				}
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"active": name})
			}
			printIfNotQuiet(cmd, "Switched to profile %s.\n", name)
			return nil
		}),
	}
}
