package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Expense — расход, как его хранит сервер.
//
// UserID — единственный владелец записи. Сравнение владельца
// всегда выполняется по uuid.UUID.
type Expense struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Category  sharedModels.Category
	Date      time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy сообщает, принадлежит ли расход пользователю.
func (e Expense) OwnedBy(userID uuid.UUID) bool {
	return e.UserID == userID
}

// Public возвращает представление расхода для API.
func (e Expense) Public() sharedModels.Expense {
	return sharedModels.Expense{
		ID:        e.ID.String(),
		UserID:    e.UserID.String(),
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		Date:      e.Date,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// PublicExpenses конвертирует срез расходов для ответа API.
// Для пустого списка возвращает пустой срез, а не nil, чтобы в JSON был [].
func PublicExpenses(list []Expense) []sharedModels.Expense {
	out := make([]sharedModels.Expense, 0, len(list))
	for _, e := range list {
		out = append(out, e.Public())
	}
	return out
}

// ExpenseDraft — провалидированные данные для создания расхода.
type ExpenseDraft struct {
	Title    string
	Amount   decimal.Decimal
	Category sharedModels.Category
	Date     time.Time
	Notes    string
}

// ExpensePatch — провалидированные данные частичного обновления.
// nil означает "поле не менять".
type ExpensePatch struct {
	Title    *string
	Amount   *decimal.Decimal
	Category *sharedModels.Category
	Date     *time.Time
	Notes    *string
}

// Empty сообщает, что в патче нет ни одного поля.
func (p ExpensePatch) Empty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil && p.Date == nil && p.Notes == nil
}

// Apply применяет патч к расходу. Владельца патч не меняет никогда.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
}
