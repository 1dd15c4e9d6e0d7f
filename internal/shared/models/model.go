package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// суммы в API отдаём числом, а не строкой
	decimal.MarshalJSONWithoutQuotes = true
}

// Category — категория расхода. Набор фиксирован.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// Categories возвращает все допустимые категории в порядке отображения.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
		CategoryOther,
	}
}

// Valid сообщает, входит ли категория в фиксированный набор.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// User — публичное представление пользователя в HTTP API.
//
// Хэш пароля сюда никогда не попадает.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest — тело запроса регистрации.
//
// Используется в:
//
//	POST /users/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest — тело запроса входа.
//
// Используется в:
//
//	POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — ответ регистрации и входа: пользователь и bearer-токен.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Expense — запись о расходе в том виде, в котором её отдаёт API.
//
// Поля:
//   - ID: UUID расхода
//   - UserID: UUID владельца (проставляется сервером, от клиента игнорируется)
//   - Amount: сумма, минимум 0.01, два знака после запятой
//   - Date: дата расхода (по умолчанию — момент создания)
//   - Notes: необязательная заметка, до 500 символов
type Expense struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpenseRequest — тело запросов создания и обновления расхода со стороны клиента.
//
// Используется в:
//
//	POST /expenses
//	PUT  /expenses/{id}
//
// Все поля — указатели, чтобы при обновлении передавать только изменяемые.
type ExpenseRequest struct {
	Title    *string          `json:"title,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category *string          `json:"category,omitempty"`
	Date     *string          `json:"date,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// DeleteExpenseResponse — подтверждение удаления.
type DeleteExpenseResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// CategoryTotal — агрегат по одной категории.
type CategoryTotal struct {
	Category   Category        `json:"category"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// MonthTotal — агрегат по месяцу в формате YYYY-MM.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summary — сводка расходов пользователя относительно бюджета.
//
// Используется в:
//
//	GET /expenses/summary?budget=N
type Summary struct {
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	Budget          decimal.Decimal `json:"budget"`
	Remaining       decimal.Decimal `json:"remaining"`
	SpentPercentage float64         `json:"spent_percentage"`
	Status          string          `json:"status"`
	ByCategory      []CategoryTotal `json:"by_category"`
	ByMonth         []MonthTotal    `json:"by_month"`
}

// ErrorResponse — единый формат ошибки API.
//
//	{"message": "...", "errors": [{"field": "...", "message": "..."}]}
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError — нарушение правила валидации для одного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HealthResponse — ответ liveness-проверки.
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}
