package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/config"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// newApp возвращает App с пустыми учётными данными во временной директории.
func newApp(t *testing.T, serverURL string) *cli.App {
	t.Helper()
	return &cli.App{
		ServerURL: serverURL,
		CredsPath: filepath.Join(t.TempDir(), "creds.json"),
		Creds:     &config.Credentials{},
	}
}

// loggedInApp — то же, но с сохранённым токеном "tok-1".
func loggedInApp(t *testing.T, serverURL string) *cli.App {
	t.Helper()
	app := newApp(t, serverURL)
	app.Creds.Token = "tok-1"
	return app
}

func run(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, msg string, fields ...sharedModels.FieldError) {
	writeJSON(w, status, sharedModels.ErrorResponse{Message: msg, Errors: fields})
}

// requireBearer проверяет заголовок и отвечает 401, если токен не тот.
func requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer tok-1" {
		writeAPIError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}
