package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// expenseFlags — флаги полей расхода, общие для add и update.
type expenseFlags struct {
	title    string
	amount   string
	category string
	date     string
	notes    string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "title, 1-100 characters")
	fl.StringVar(&f.amount, "amount", "", "amount, at least 0.01")
	fl.StringVar(&f.category, "category", "", "one of: "+categoryList())
	fl.StringVar(&f.date, "date", "", "date in YYYY-MM-DD or RFC3339 format")
	fl.StringVar(&f.notes, "notes", "", "notes, up to 500 characters")
}

// request собирает тело запроса только из явно заданных флагов.
// Остальные проверки выполняет сервер.
func (f *expenseFlags) request(cmd *cobra.Command) (sharedModels.ExpenseRequest, int, error) {
	var req sharedModels.ExpenseRequest
	set := 0
	changed := cmd.Flags().Changed

	if changed("title") {
		req.Title = &f.title
		set++
	}
	if changed("amount") {
		d, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return req, 0, fmt.Errorf("invalid --amount %q: must be a number", f.amount)
		}
		req.Amount = &d
		set++
	}
	if changed("category") {
		req.Category = &f.category
		set++
	}
	if changed("date") {
		req.Date = &f.date
		set++
	}
	if changed("notes") {
		req.Notes = &f.notes
		set++
	}
	return req, set, nil
}

func categoryList() string {
	cats := sharedModels.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// NewExpensesCmd создаёт группу команд для работы с расходами.
func NewExpensesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Управление расходами",
	}

	cmd.AddCommand(newExpensesListCmd(app))
	cmd.AddCommand(newExpensesGetCmd(app))
	cmd.AddCommand(newExpensesAddCmd(app))
	cmd.AddCommand(newExpensesUpdateCmd(app))
	cmd.AddCommand(newExpensesDeleteCmd(app))

	return cmd
}

func newExpensesListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Список расходов, новые первыми",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			list, err := app.client().ListExpenses(cmd.Context(), token)
			if err != nil {
				return explain(err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no expenses yet")
				return nil
			}
			return printExpenses(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newExpensesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Показать расход",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			e, err := app.client().GetExpense(cmd.Context(), token, args[0])
			if err != nil {
				return explain(err)
			}
			printExpense(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func newExpensesAddCmd(app *App) *cobra.Command {
	var f expenseFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Добавить расход",
		Long: `Добавить расход.

Категория по умолчанию Other, дата по умолчанию текущий момент.

Пример:
  expensectl expenses add --title Taxi --amount 15.20 --category Transport --date 2024-02-01
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			req, _, err := f.request(cmd)
			if err != nil {
				return err
			}

			e, err := app.client().CreateExpense(cmd.Context(), token, req)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created expense %s\n", e.ID)
			printExpense(cmd.OutOrStdout(), e)
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpensesUpdateCmd(app *App) *cobra.Command {
	var f expenseFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить расход",
		Long: `Изменить расход. Меняются только переданные поля.

Пример:
  expensectl expenses update 3f0c... --amount 20 --notes "with tip"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			req, set, err := f.request(cmd)
			if err != nil {
				return err
			}
			if set == 0 {
				return errors.New("nothing to update: pass at least one of --title, --amount, --category, --date, --notes")
			}

			e, err := app.client().UpdateExpense(cmd.Context(), token, args[0], req)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated expense %s\n", e.ID)
			printExpense(cmd.OutOrStdout(), e)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newExpensesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Удалить расход",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			resp, err := app.client().DeleteExpense(cmd.Context(), token, args[0])
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.Message, resp.ID)
			return nil
		},
	}
}

func printExpenses(w io.Writer, list []sharedModels.Expense) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tTITLE")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date.Format(dateLayout), e.Category, e.Amount.StringFixed(2), e.Title)
	}
	return tw.Flush()
}

func printExpense(w io.Writer, e sharedModels.Expense) {
	fmt.Fprintf(w, "  title:    %s\n", e.Title)
	fmt.Fprintf(w, "  amount:   %s\n", e.Amount.StringFixed(2))
	fmt.Fprintf(w, "  category: %s\n", e.Category)
	fmt.Fprintf(w, "  date:     %s\n", e.Date.Format(dateLayout))
	if e.Notes != "" {
		fmt.Fprintf(w, "  notes:    %s\n", e.Notes)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
