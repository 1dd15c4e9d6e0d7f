// Package service содержит бизнес-логику трекера расходов.
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
//
// Сервисы получают уже провалидированные данные (пакет validation)
// и ID пользователя из контекста запроса, и никогда не знают про HTTP.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/config"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
)

//go:generate mockgen -source=service.go -destination=mocks/repos_mock.go -package=mocks

// Repositories — набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users    UsersRepo
	Expenses ExpensesRepo
	Health   HealthRepo
}

// Services — агрегатор всех сервисов приложения.
type Services struct {
	Auth     *AuthService
	Expenses *ExpensesService
	Health   HealthRepo
}

// NewServices собирает все сервисы приложения.
// cfg нужен для параметров токенов, хэшера паролей и бюджета по умолчанию.
func NewServices(repos Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:     NewAuthService(repos.Users, cfg.PasswordHasher(), cfg.JWT()),
		Expenses: NewExpensesService(repos.Expenses, cfg.DefaultBudget()),
		Health:   repos.Health,
	}
}

// HealthRepo — минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo — репозиторий пользователей (нужен для register/login/me).
type UsersRepo interface {
	// Create сохраняет пользователя; занятый email — ErrAlreadyExists.
	Create(ctx context.Context, u models.User) error
	// GetByEmail ищет по нормализованному email; нет такого — ErrNotFound.
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// ExpensesRepo — репозиторий расходов.
//
// Update и Delete дополнительно фильтруют по userID: если запись исчезла
// или сменила владельца между чтением и записью, возвращается ErrNotFound.
type ExpensesRepo interface {
	Create(ctx context.Context, e models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Expense, error)
	// ListByUser — расходы пользователя по убыванию date, затем created_at.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error)
	Update(ctx context.Context, e models.Expense) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
