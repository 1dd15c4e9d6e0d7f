package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/agent/seed"
)

// NewSeedCmd создаёт команду наполнения аккаунта случайными расходами.
//
// Расходы создаются по одному через обычный API, поэтому на них действует
// лимит запросов сервера. При первой ошибке команда останавливается и
// сообщает, сколько записей успела создать.
//
// Пример использования:
//
//	expensectl seed --count 25
func NewSeedCmd(app *App) *cobra.Command {
	var count int
	var rnd int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Создать случайные расходы",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			c := app.client()
			gen := seed.New(rnd, Now)

			for i, req := range gen.Expenses(count) {
				if _, err := c.CreateExpense(cmd.Context(), token, req); err != nil {
					return fmt.Errorf("seeded %d of %d: %w", i, count, explain(err))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d expenses\n", count)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "number of expenses to create")
	cmd.Flags().Int64Var(&rnd, "seed", 0, "random seed, 0 means random")
	return cmd
}
