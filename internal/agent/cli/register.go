package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/config"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// NewRegisterCmd создаёт команду регистрации нового пользователя.
//
// Сервер сразу выдаёт токен, поэтому после регистрации пользователь
// считается вошедшим: токен сохраняется так же, как при login.
//
// Пример использования:
//
//	expensectl register --name Ann --email ann@example.com
func NewRegisterCmd(app *App) *cobra.Command {
	var name, email, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация нового пользователя",
		Long: `Регистрация нового пользователя на сервере.

Если --password не указан, пароль запрашивается без отображения ввода.

Пример:
  expensectl register --name Ann --email ann@example.com
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password, passwordStdin)
			if err != nil {
				return err
			}

			resp, err := app.client().Register(cmd.Context(), name, email, pw)
			if err != nil {
				return explain(err)
			}

			if err := saveSession(app, resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (token saved)\n", resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email for registration")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// saveSession сохраняет токен и сведения о пользователе после register/login.
func saveSession(app *App, resp sharedModels.AuthResponse) error {
	app.Creds = &config.Credentials{
		Token:     resp.Token,
		ServerURL: app.ServerURL,
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
	}
	if err := config.Save(app.CredsPath, app.Creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
