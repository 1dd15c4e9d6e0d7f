// Серверные модели пользователя и расхода
package models

import (
	"time"

	"github.com/google/uuid"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Public возвращает представление пользователя для API (без хэша пароля).
func (u User) Public() sharedModels.User {
	return sharedModels.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Registration — провалидированные и нормализованные данные регистрации.
type Registration struct {
	Name     string
	Email    string
	Password string
}
