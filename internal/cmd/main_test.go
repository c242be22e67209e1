package cmd

import (
	"os"
	"testing"

	"github.com/99designs/keyring"

	"github.com/midtrans/midtrans-cli/internal/config"
)

func TestMain(m *testing.M) {
	// Shell settings must not leak into tests.
	_ = os.Setenv("MIDTRANS_OUTPUT", "text")
	for _, key := range []string{
		config.EnvServerKey, config.EnvClientKey, config.EnvIsProduction,
		config.EnvProxy, config.EnvProfile, config.EnvFile, "MIDTRANS_ALLOW_PRIVATE",
	} {
		_ = os.Unsetenv(key)
	}

	cleanup := config.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	})
	checkCleanup := stubUpdateCheck()
	code := m.Run()
	checkCleanup()
	cleanup()
	os.Exit(code)
}
