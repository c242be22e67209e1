// Package config stores Midtrans credential profiles in the system keyring
// and resolves the effective client settings for a command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName      = "midtrans-cli"
	DefaultProfile   = "default"
	profilePrefix    = "profile/"
	profileIndexKey  = "profiles"
	activeProfileKey = "active_profile"

	envKeyringBackend  = "MIDTRANS_KEYRING_BACKEND"
	envKeyringPassword = "MIDTRANS_KEYRING_PASSWORD"
	envCredentialsDir  = "MIDTRANS_CREDENTIALS_DIR"

	keyringBackendAuto   = "auto"
	keyringBackendFile   = "file"
	keyringBackendSystem = "system"
)

// openKeyring can be replaced in tests to use an in-memory keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// SetOpenKeyring allows replacing the keyring opener for testing.
// Returns a cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Profile holds the credentials and client options for one merchant account.
type Profile struct {
	IsProduction  bool              `json:"is_production"`
	ServerKey     string            `json:"server_key"`
	ClientKey     string            `json:"client_key,omitempty"`
	CustomHeaders map[string]string `json:"custom_headers,omitempty"`
	Proxy         string            `json:"proxy,omitempty"`
}

// Environment returns "production" or "sandbox".
func (p Profile) Environment() string {
	if p.IsProduction {
		return "production"
	}
	return "sandbox"
}

// ErrNotConfigured is returned when no server key can be resolved.
var ErrNotConfigured = errors.New("midtrans not configured - run 'midtrans auth login' or set MIDTRANS_SERVER_KEY")

// ErrProfileNotFound is returned when a named profile is not in the keyring.
var ErrProfileNotFound = errors.New("profile not found")

func keyringConfig() keyring.Config {
	cfg := keyring.Config{
		ServiceName: serviceName,
	}

	backend := keyringBackendMode()
	if backend == keyringBackendSystem {
		return cfg
	}

	// auto mode keeps the file backend configured so keyring.Open can fall
	// through to it when no native backend is available.
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword

	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func keyringBackendMode() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envKeyringBackend))) {
	case keyringBackendFile:
		return keyringBackendFile
	case keyringBackendSystem, "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

// shouldForceFileBackend reports whether only the encrypted file backend may
// be used. Headless Linux has no secret service to talk to.
func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	switch backend {
	case keyringBackendFile:
		return true
	case keyringBackendAuto:
		return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
	default:
		return false
	}
}

func keyringFileDir() string {
	base := strings.TrimSpace(os.Getenv(envCredentialsDir))
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(envKeyringPassword); ok && strings.TrimSpace(password) != "" {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using the file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

func profileKey(name string) string {
	return profilePrefix + normalizeName(name)
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultProfile
	}
	return name
}

func open() (keyring.Keyring, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return ring, nil
}

func loadIndex(ring keyring.Keyring) ([]string, error) {
	item, err := ring.Get(profileIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile index: %w", err)
	}
	var names []string
	if err := json.Unmarshal(item.Data, &names); err != nil {
		return nil, fmt.Errorf("failed to decode profile index: %w", err)
	}
	return names, nil
}

func saveIndex(ring keyring.Keyring, names []string) error {
	names = uniqueSorted(names)
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode profile index: %w", err)
	}
	return ring.Set(keyring.Item{Key: profileIndexKey, Data: data})
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SaveProfile stores p under name and makes it the active profile.
func SaveProfile(name string, p Profile) error {
	name = normalizeName(name)
	if strings.TrimSpace(p.ServerKey) == "" {
		return fmt.Errorf("profile %q: server key is required", name)
	}

	ring, err := open()
	if err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := ring.Set(keyring.Item{
		Key:         profileKey(name),
		Data:        data,
		Label:       "Midtrans (" + name + ")",
		Description: "Midtrans server key",
	}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	names, err := loadIndex(ring)
	if err != nil {
		return err
	}
	if err := saveIndex(ring, append(names, name)); err != nil {
		return err
	}
	return setActive(ring, name)
}

// LoadProfile reads a stored profile. A missing profile yields ErrProfileNotFound.
func LoadProfile(name string) (Profile, error) {
	name = normalizeName(name)
	ring, err := open()
	if err != nil {
		return Profile{}, err
	}
	item, err := ring.Get(profileKey(name))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(item.Data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile %q: %w", name, err)
	}
	return p, nil
}

// DeleteProfile removes a profile. When it was active, the first remaining
// profile (or the default name) becomes active.
func DeleteProfile(name string) error {
	name = normalizeName(name)
	ring, err := open()
	if err != nil {
		return err
	}
	if err := ring.Remove(profileKey(name)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile: %w", err)
	}

	names, err := loadIndex(ring)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			remaining = append(remaining, n)
		}
	}
	if err := saveIndex(ring, remaining); err != nil {
		return err
	}

	active, err := activeProfile(ring)
	if err == nil && active == name {
		next := DefaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		return setActive(ring, next)
	}
	return nil
}

// ListProfiles returns the stored profile names in sorted order.
func ListProfiles() ([]string, error) {
	ring, err := open()
	if err != nil {
		return nil, err
	}
	names, err := loadIndex(ring)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(names), nil
}

// CurrentProfile returns the active profile name.
func CurrentProfile() (string, error) {
	ring, err := open()
	if err != nil {
		return "", err
	}
	return activeProfile(ring)
}

// SetCurrentProfile marks name as the active profile. The profile must exist.
func SetCurrentProfile(name string) error {
	name = normalizeName(name)
	ring, err := open()
	if err != nil {
		return err
	}
	if _, err := ring.Get(profileKey(name)); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return fmt.Errorf("failed to read profile: %w", err)
	}
	return setActive(ring, name)
}

func activeProfile(ring keyring.Keyring) (string, error) {
	item, err := ring.Get(activeProfileKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return DefaultProfile, nil
		}
		return "", fmt.Errorf("failed to read active profile: %w", err)
	}
	return normalizeName(string(item.Data)), nil
}

func setActive(ring keyring.Keyring, name string) error {
	if err := ring.Set(keyring.Item{Key: activeProfileKey, Data: []byte(name)}); err != nil {
		return fmt.Errorf("failed to set active profile: %w", err)
	}
	return nil
}
