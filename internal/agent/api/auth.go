// В этом файле описаны методы клиента для эндпоинтов пользователей:
// регистрация, вход и получение текущего профиля.
package api

import (
	"context"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Register регистрирует пользователя и возвращает его вместе с токеном.
//
// POST /users/register
func (c *Client) Register(ctx context.Context, name, email, password string) (sharedModels.AuthResponse, error) {
	var resp sharedModels.AuthResponse
	err := c.PostJSON(ctx, "/users/register", sharedModels.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &resp, "")
	return resp, err
}

// Login выполняет вход и возвращает пользователя с токеном.
//
// POST /users/login
func (c *Client) Login(ctx context.Context, email, password string) (sharedModels.AuthResponse, error) {
	var resp sharedModels.AuthResponse
	err := c.PostJSON(ctx, "/users/login", sharedModels.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp, "")
	return resp, err
}

// Me возвращает профиль владельца токена.
//
// GET /users/me
func (c *Client) Me(ctx context.Context, token string) (sharedModels.User, error) {
	var resp sharedModels.User
	err := c.GetJSON(ctx, "/users/me", &resp, token)
	return resp, err
}
