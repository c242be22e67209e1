package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/midtrans/midtrans-cli/internal/api"
)

const (
	EnvServerKey    = "MIDTRANS_SERVER_KEY"
	EnvClientKey    = "MIDTRANS_CLIENT_KEY"
	EnvIsProduction = "MIDTRANS_IS_PRODUCTION"
	EnvProxy        = "MIDTRANS_PROXY"
	EnvProfile      = "MIDTRANS_PROFILE"
	EnvFile         = "MIDTRANS_ENV_FILE"
)

// Overrides are the command-line values that take precedence over every
// stored or environment setting. Zero values mean "not set".
type Overrides struct {
	Profile      string
	EnvFile      string
	ServerKey    string
	ClientKey    string
	IsProduction *bool
	Headers      map[string]string
	Proxy        string
}

// Resolved is the effective profile plus where its server key came from.
type Resolved struct {
	Profile
	Name   string `json:"profile"`
	Source string `json:"source"`
}

// LoadEnvFile loads KEY=VALUE pairs from path without overriding variables
// that are already set.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// Resolve builds the effective profile. Precedence, lowest first: keyring
// profile, env file, environment, overrides. The keyring is skipped entirely
// when a server key comes from the environment or flags and no profile was
// named explicitly.
func Resolve(o Overrides) (Resolved, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = os.Getenv(EnvFile)
	}
	if err := LoadEnvFile(envFile); err != nil {
		return Resolved{}, err
	}

	name := strings.TrimSpace(o.Profile)
	explicit := name != ""
	if !explicit {
		if env := strings.TrimSpace(os.Getenv(EnvProfile)); env != "" {
			name = env
			explicit = true
		}
	}

	envKey := strings.TrimSpace(os.Getenv(EnvServerKey))
	keyOutsideKeyring := envKey != "" || strings.TrimSpace(o.ServerKey) != ""

	var res Resolved
	if explicit || !keyOutsideKeyring {
		if !explicit {
			current, err := CurrentProfile()
			if err != nil {
				if !keyOutsideKeyring {
					return Resolved{}, err
				}
			} else {
				name = current
			}
		}
		p, err := LoadProfile(name)
		switch {
		case err == nil:
			res.Profile = p
			res.Name = normalizeName(name)
			res.Source = "profile"
		case explicit:
			return Resolved{}, err
		case !errors.Is(err, ErrProfileNotFound) && !keyOutsideKeyring:
			return Resolved{}, err
		}
	}

	if err := applyEnv(&res); err != nil {
		return Resolved{}, err
	}
	applyOverrides(&res, o)

	if strings.TrimSpace(res.ServerKey) == "" {
		return Resolved{}, ErrNotConfigured
	}
	return res, nil
}

func applyEnv(res *Resolved) error {
	if v := strings.TrimSpace(os.Getenv(EnvServerKey)); v != "" {
		res.ServerKey = v
		res.Source = "env"
	}
	if v := strings.TrimSpace(os.Getenv(EnvClientKey)); v != "" {
		res.ClientKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIsProduction)); v != "" {
		prod, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvIsProduction, v)
		}
		res.IsProduction = prod
	}
	if v := strings.TrimSpace(os.Getenv(EnvProxy)); v != "" {
		res.Proxy = v
	}
	return nil
}

func applyOverrides(res *Resolved, o Overrides) {
	if v := strings.TrimSpace(o.ServerKey); v != "" {
		res.ServerKey = v
		res.Source = "flag"
	}
	if v := strings.TrimSpace(o.ClientKey); v != "" {
		res.ClientKey = v
	}
	if o.IsProduction != nil {
		res.IsProduction = *o.IsProduction
	}
	if v := strings.TrimSpace(o.Proxy); v != "" {
		res.Proxy = v
	}
	if len(o.Headers) > 0 {
		merged := make(map[string]string, len(res.CustomHeaders)+len(o.Headers))
		for k, v := range res.CustomHeaders {
			merged[k] = v
		}
		for k, v := range o.Headers {
			merged[k] = v
		}
		res.CustomHeaders = merged
	}
}

// APIConfig converts the profile into a client configuration.
func (p Profile) APIConfig(timeout time.Duration) *api.Config {
	b := api.NewConfig(p.IsProduction, p.ServerKey).
		ClientKey(p.ClientKey).
		Proxy(p.Proxy).
		Timeout(timeout)

	keys := make([]string, 0, len(p.CustomHeaders))
	for k := range p.CustomHeaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Header(k, p.CustomHeaders[k])
	}
	return b.Build()
}
