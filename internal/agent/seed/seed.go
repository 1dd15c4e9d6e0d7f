// Package seed генерирует случайные расходы для наполнения демо-аккаунта.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Window — глубина, на которую в прошлое разбрасываются даты расходов.
const Window = 90 * 24 * time.Hour

// Generator выдаёт случайные запросы на создание расхода.
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// New создаёт генератор. seed == 0 означает случайное зерно,
// любое другое значение даёт воспроизводимую последовательность.
func New(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{faker: gofakeit.New(seed), now: now}
}

// Expense возвращает один заполненный запрос.
//
// Сумма в диапазоне 1..250 с двумя знаками, категория из фиксированного
// набора, дата в пределах Window до текущего момента.
func (g *Generator) Expense() sharedModels.ExpenseRequest {
	f := g.faker
	now := g.now().UTC()

	title := f.Word()
	amount := decimal.NewFromFloat(f.Price(1, 250)).Round(2)

	cats := sharedModels.Categories()
	category := string(cats[f.Number(0, len(cats)-1)])

	date := f.DateRange(now.Add(-Window), now).UTC().Format("2006-01-02")

	req := sharedModels.ExpenseRequest{
		Title:    &title,
		Amount:   &amount,
		Category: &category,
		Date:     &date,
	}
	// примерно у половины записей есть заметка
	if f.Bool() {
		notes := f.Sentence(5)
		req.Notes = &notes
	}
	return req
}

// Expenses возвращает n запросов.
func (g *Generator) Expenses(n int) []sharedModels.ExpenseRequest {
	if n <= 0 {
		return nil
	}
	out := make([]sharedModels.ExpenseRequest, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Expense())
	}
	return out
}
