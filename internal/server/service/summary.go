package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Статусы бюджета в сводке.
const (
	BudgetOnTrack      = "On Track"
	BudgetGettingClose = "Getting Close"
	BudgetAlmostOver   = "Almost Over"
	BudgetOverBudget   = "Over Budget"
)

var hundred = decimal.NewFromInt(100)

// Summary считает сводку расходов userID относительно бюджета.
//
// budget == nil — используется бюджет по умолчанию из конфига.
func (s *ExpensesService) Summary(ctx context.Context, userID uuid.UUID, budget *decimal.Decimal) (sharedModels.Summary, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return sharedModels.Summary{}, err
	}

	b := s.defaultBudget
	if budget != nil {
		b = *budget
	}
	return Summarize(list, b), nil
}

// Summarize — чистая функция подсчёта сводки по уже загруженным расходам.
//
// Категории идут в порядке sharedModels.Categories() (только непустые),
// месяцы (YYYY-MM, UTC) — по возрастанию.
func Summarize(list []models.Expense, budget decimal.Decimal) sharedModels.Summary {
	total := decimal.Zero
	byCategory := map[sharedModels.Category]*sharedModels.CategoryTotal{}
	byMonth := map[string]*sharedModels.MonthTotal{}

	for _, e := range list {
		total = total.Add(e.Amount)

		c, ok := byCategory[e.Category]
		if !ok {
			c = &sharedModels.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = c
		}
		c.Total = c.Total.Add(e.Amount)
		c.Count++

		month := e.Date.UTC().Format("2006-01")
		m, ok := byMonth[month]
		if !ok {
			m = &sharedModels.MonthTotal{Month: month, Total: decimal.Zero}
			byMonth[month] = m
		}
		m.Total = m.Total.Add(e.Amount)
		m.Count++
	}

	summary := sharedModels.Summary{
		Total:           total,
		Count:           len(list),
		Budget:          budget,
		Remaining:       budget.Sub(total),
		SpentPercentage: percent(total, budget),
		ByCategory:      make([]sharedModels.CategoryTotal, 0, len(byCategory)),
		ByMonth:         make([]sharedModels.MonthTotal, 0, len(byMonth)),
	}
	summary.Status = budgetStatus(summary.SpentPercentage)

	for _, cat := range sharedModels.Categories() {
		c, ok := byCategory[cat]
		if !ok {
			continue
		}
		c.Percentage = percent(c.Total, total)
		summary.ByCategory = append(summary.ByCategory, *c)
	}

	for _, m := range byMonth {
		summary.ByMonth = append(summary.ByMonth, *m)
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})

	return summary
}

// percent — part/whole*100 с округлением до двух знаков; 0 при нулевом whole.
func percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	p, _ := part.Mul(hundred).DivRound(whole, 2).Float64()
	return p
}

func budgetStatus(spent float64) string {
	switch {
	case spent >= 100:
		return BudgetOverBudget
	case spent >= 90:
		return BudgetAlmostOver
	case spent >= 75:
		return BudgetGettingClose
	default:
		return BudgetOnTrack
	}
}
