// Package cli реализует командный интерфейс клиента трекера расходов (expensectl).
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - разбор аргументов и флагов командной строки;
//   - загрузку сохранённого токена из локального файла учётных данных;
//   - выполнение запросов к API и вывод результата пользователю.
//
// Точка входа пакета — функция Execute.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/api"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/config"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

// EnvServerURL — переменная окружения с адресом API.
const EnvServerURL = "EXPENSETRACKER_SERVER"

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL — базовый URL API вместе с префиксом (например, "http://127.0.0.1:8080/api/v1").
	ServerURL string
	// Insecure отключает проверку TLS-сертификата сервера.
	Insecure bool
	// Timeout — таймаут одного HTTP-запроса.
	Timeout time.Duration

	// CredsPath — путь к файлу с сохранённым токеном.
	CredsPath string
	// Creds — загруженные учётные данные. Может быть nil до PersistentPreRunE.
	Creds *config.Credentials
}

// client создаёт API-клиент с учётом флагов приложения.
func (a *App) client() *api.Client {
	var opts []api.Option
	if a.Insecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	if a.Timeout > 0 {
		opts = append(opts, api.WithTimeout(a.Timeout))
	}
	return NewAPIClient(a.ServerURL, opts...)
}

// token возвращает сохранённый токен или ошибку с подсказкой.
func (a *App) token() (string, error) {
	if !a.Creds.LoggedIn() {
		return "", errors.New("not logged in, run: expensectl login")
	}
	return a.Creds.Token, nil
}

// explain дополняет ошибку API подсказкой для пользователя.
func explain(err error) error {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, serr.ErrUnauthorized):
		return fmt.Errorf("%w (token missing or expired, run: expensectl login)", err)
	case errors.As(err, &apiErr) && apiErr.RetryAfter > 0:
		return fmt.Errorf("%w (retry in %s)", err, apiErr.RetryAfter)
	}
	return err
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// В PersistentPreRunE определяется путь к файлу учётных данных, загружается
// сохранённый токен и выбирается адрес сервера: флаг --server, затем
// EXPENSETRACKER_SERVER, затем адрес из файла учётных данных, затем адрес по умолчанию.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{
		ServerURL: api.DefaultServerURL,
	}

	cmd := &cobra.Command{
		Use:   "expensectl",
		Short: "expensectl — консольный клиент трекера расходов",
		Long: `expensectl — консольный клиент трекера расходов.

Команды:
  register  Регистрация нового пользователя
  login     Вход (токен сохраняется локально)
  logout    Удалить сохранённый токен
  me        Текущий пользователь
  expenses  Список, добавление, изменение и удаление расходов
  summary   Сводка относительно бюджета
  export    Выгрузить расходы в JSON-файл
  seed      Создать случайные расходы для демонстрации
  version   Версия и дата сборки

Примеры:
  expensectl register --name Ann --email ann@example.com
  expensectl login --email ann@example.com
  expensectl expenses add --title Taxi --amount 15.20 --category Transport
  expensectl expenses update <id> --amount 20
  expensectl summary --budget 500
  expensectl export --out expenses.json
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.CredsPath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				app.CredsPath = p
			}

			creds, err := config.Load(app.CredsPath)
			if err != nil {
				return fmt.Errorf("load credentials %s: %w", app.CredsPath, err)
			}
			app.Creds = creds

			if !cmd.Flags().Changed("server") {
				if env := os.Getenv(EnvServerURL); env != "" {
					app.ServerURL = env
				} else if creds.ServerURL != "" {
					app.ServerURL = creds.ServerURL
				}
			}
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ServerURL, "server", api.DefaultServerURL, "API base URL including prefix")
	pf.StringVar(&app.CredsPath, "credentials", "", "path to credentials file (default ~/.expensetracker/credentials.json)")
	pf.BoolVar(&app.Insecure, "insecure", false, "skip TLS certificate verification")
	pf.DurationVar(&app.Timeout, "timeout", 10*time.Second, "HTTP request timeout")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewMeCmd(app))
	cmd.AddCommand(NewExpensesCmd(app))
	cmd.AddCommand(NewSummaryCmd(app))
	cmd.AddCommand(NewExportCmd(app))
	cmd.AddCommand(NewSeedCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке сообщение выводится в stderr, процесс завершается с кодом 1.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
