package tests

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/config"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := cli.NewRootCmd("1.0.0", "2026-01-16")

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"register", "login", "logout", "me", "expenses", "summary", "export", "seed", "version"} {
		require.True(t, names[want], "expected subcommand %q", want)
	}
}

// Адрес сервера берётся из файла учётных данных, если --server не задан.
func TestNewRootCmd_UsesServerFromCredentials(t *testing.T) {
	t.Setenv(cli.EnvServerURL, "")

	hit := false
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		hit = true
		if !requireBearer(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, sharedModels.User{ID: "u1", Email: "ann@example.com"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, config.Save(p, &config.Credentials{Token: "tok-1", ServerURL: srv.URL}))

	out, err := run(cli.NewRootCmd("1.0.0", "2026-01-16"), "--credentials", p, "me")
	require.NoError(t, err)
	require.True(t, hit)
	require.Contains(t, out, "ann@example.com")
}

func TestNewRootCmd_CredentialsFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "creds.json")
	t.Setenv(config.EnvCredentialsPath, p)
	require.NoError(t, config.Save(p, &config.Credentials{Token: "tok-1"}))

	out, err := run(cli.NewRootCmd("1.0.0", "2026-01-16"), "logout")
	require.NoError(t, err)
	require.Contains(t, out, "logged out")

	_, statErr := os.Stat(p)
	require.True(t, os.IsNotExist(statErr))
}

func TestNewRootCmd_BadCredentialsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(p, []byte("{not-json"), 0o600))

	_, err := run(cli.NewRootCmd("1.0.0", "2026-01-16"), "--credentials", p, "version")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "load credentials"))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(cli.NewVersionCmd("1.2.3", "2026-01-16"))
	require.NoError(t, err)
	require.Contains(t, out, "version=1.2.3")
	require.Contains(t, out, "build_date=2026-01-16")

	out, err = run(cli.NewVersionCmd("1.2.3", "2026-01-16"), "--short")
	require.NoError(t, err)
	require.Equal(t, "1.2.3\n", out)
}
