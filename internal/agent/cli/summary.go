package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSummaryCmd создаёт команду сводки расходов относительно бюджета.
//
// Пример использования:
//
//	expensectl summary --budget 500
func NewSummaryCmd(app *App) *cobra.Command {
	var budget string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Сводка расходов и остаток бюджета",
		Long: `Сводка расходов: итог, остаток бюджета, статус и разбивка по категориям и месяцам.

Без --budget используется бюджет сервера по умолчанию (1000).
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			s, err := app.client().Summary(cmd.Context(), token, strings.TrimSpace(budget))
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, s)
			}

			fmt.Fprintf(out, "total:     %s (%d expenses)\n", s.Total.StringFixed(2), s.Count)
			fmt.Fprintf(out, "budget:    %s\n", s.Budget.StringFixed(2))
			fmt.Fprintf(out, "remaining: %s\n", s.Remaining.StringFixed(2))
			fmt.Fprintf(out, "spent:     %.1f%%\n", s.SpentPercentage)
			fmt.Fprintf(out, "status:    %s\n", s.Status)

			if len(s.ByCategory) > 0 {
				fmt.Fprintln(out)
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "CATEGORY\tTOTAL\tCOUNT\tSHARE")
				for _, c := range s.ByCategory {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\n", c.Category, c.Total.StringFixed(2), c.Count, c.Percentage)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if len(s.ByMonth) > 0 {
				fmt.Fprintln(out)
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MONTH\tTOTAL\tCOUNT")
				for _, m := range s.ByMonth {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Month, m.Total.StringFixed(2), m.Count)
				}
				return tw.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&budget, "budget", "", "budget to compare against (positive number)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}
