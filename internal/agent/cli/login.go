package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/config"
)

// NewLoginCmd создаёт команду входа.
//
// При успехе токен сохраняется в файл учётных данных. При ошибке файл
// не создаётся и не перезаписывается.
//
// Пример использования:
//
//	expensectl login --email ann@example.com
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход пользователя",
		Long: `Вход по email и паролю.

Токен сохраняется в ~/.expensetracker/credentials.json.
Если --password не указан, пароль запрашивается без отображения ввода.

Пример:
  expensectl login --email ann@example.com
  echo "$PASSWORD" | expensectl login --email ann@example.com --password-stdin
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password, passwordStdin)
			if err != nil {
				return err
			}

			resp, err := app.client().Login(cmd.Context(), email, pw)
			if err != nil {
				return explain(err)
			}

			if err := saveSession(app, resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (token saved)\n", resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCmd создаёт команду, удаляющую сохранённый токен.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Remove(app.CredsPath); err != nil {
				return err
			}
			app.Creds = &config.Credentials{}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

// NewMeCmd создаёт команду, показывающую владельца сохранённого токена.
func NewMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Показать текущего пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			u, err := app.client().Me(cmd.Context(), token)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", u.ID)
			fmt.Fprintf(out, "name:    %s\n", u.Name)
			fmt.Fprintf(out, "email:   %s\n", u.Email)
			fmt.Fprintf(out, "created: %s\n", u.CreatedAt.Format(dateTimeLayout))
			return nil
		},
	}
}
