package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/export"
)

// NewExportCmd создаёт команду выгрузки всех расходов в локальный JSON-файл.
//
// Пример использования:
//
//	expensectl export --out expenses.json
func NewExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Выгрузить расходы в JSON-файл",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			list, err := app.client().ListExpenses(cmd.Context(), token)
			if err != nil {
				return explain(err)
			}

			dump := export.NewDump(list, Now())
			if err := SaveExport(out, dump); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d expenses (total %s) to %s\n",
				dump.Count, dump.Total.StringFixed(2), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
