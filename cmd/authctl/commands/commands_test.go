package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

// run executes authctl with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// configFile writes a config using a fresh sqlite database.
func configFile(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	body := strings.Join([]string{
		"auth:",
		"  secret: 0123456789abcdef0123456789abcdef",
		"database:",
		"  file: " + filepath.Join(dir, "auth.db"),
		"hash:",
		"  memory_kib: 1024",
		"  iterations: 1",
		"pepper_file: " + filepath.Join(dir, "pepper"),
	}, "\n")

	path := filepath.Join(dir, "auth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestPasswordGenerate(t *testing.T) {
	t.Parallel()

	out, err := run(t, "password", "generate", "--length", "24")
	require.NoError(t, err)

	password := strings.TrimSpace(out)
	require.Len(t, password, 24)
	require.True(t, cryptox.Strength(password).Valid)

	_, err = run(t, "password", "generate", "--length", "4")
	require.Error(t, err)
}

func TestSecretGenerate(t *testing.T) {
	t.Parallel()

	out, err := run(t, "secret", "generate")
	require.NoError(t, err)
	require.Len(t, strings.TrimSpace(out), 86)
}

func TestAccountsLifecycle(t *testing.T) {
	t.Parallel()

	cfg := configFile(t)

	out, err := run(t, "-c", cfg, "accounts", "create", "Root@Example.com", "--role", "admin")
	require.NoError(t, err)
	require.Contains(t, out, "created admin account root@example.com")
	require.Contains(t, out, "password: ")

	_, err = run(t, "-c", cfg, "accounts", "create", "root@example.com", "--password", "Passw0rd1")
	require.Error(t, err, "duplicate email")

	out, err = run(t, "-c", cfg, "accounts", "create", "mod@example.com", "--password", "Passw0rd1", "--role", "moderator")
	require.NoError(t, err)
	require.NotContains(t, out, "password: ")

	_, err = run(t, "-c", cfg, "accounts", "create", "x@example.com", "--password", "Passw0rd1", "--role", "owner")
	require.Error(t, err)

	out, err = run(t, "-c", cfg, "accounts", "set-status", "mod@example.com", "suspended")
	require.NoError(t, err)
	require.Contains(t, out, "mod@example.com is now suspended")

	_, err = run(t, "-c", cfg, "accounts", "set-status", "mod@example.com", "frozen")
	require.Error(t, err)

	_, err = run(t, "-c", cfg, "accounts", "set-status", "nobody@example.com", "active")
	require.Error(t, err)
}

func TestSessions(t *testing.T) {
	t.Parallel()

	cfg := configFile(t)

	_, err := run(t, "-c", cfg, "accounts", "create", "alice@example.com", "--password", "Passw0rd1")
	require.NoError(t, err)

	out, err := run(t, "-c", cfg, "sessions", "revoke-all", "alice@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "revoked 0 sessions")

	out, err = run(t, "-c", cfg, "sessions", "sweep")
	require.NoError(t, err)
	require.Contains(t, out, "removed 0 expired sessions")
}

func TestMissingConfig(t *testing.T) {
	t.Parallel()

	_, err := run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "sessions", "sweep")
	require.Error(t, err)
}
