// HTTP-хендлеры регистрации, логина и профиля
package api

import (
	"errors"
	"net/http"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/validation"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// Register обрабатывает регистрацию пользователя.
//
// Ответы:
//   - 201 Created: регистрация успешна, в ответе пользователь и токен;
//   - 400 Bad Request: неверный JSON или невалидные входные данные;
//   - 409 Conflict: email уже зарегистрирован;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Register user
// @Description  Creates a user account and returns a bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body sharedModels.RegisterRequest true "Registration data"
// @Success      201 {object} sharedModels.AuthResponse
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid input or bad JSON"
// @Failure      409 {object} sharedModels.ErrorResponse "Email already registered"
// @Failure      429 {object} sharedModels.ErrorResponse "Too many requests"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req sharedModels.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	in, err := validation.Registration(req)
	if err != nil {
		h.writeServiceError(w, r, err, "register")
		return
	}

	user, token, err := h.Svc.Auth.Register(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err, "register")
		return
	}

	WriteJSON(w, http.StatusCreated, sharedModels.AuthResponse{
		User:  user.Public(),
		Token: token,
	})
}

// Login обрабатывает вход пользователя.
//
// На ошибку валидации отвечает только первым нарушением, без списка.
//
// @Summary      Login
// @Description  Authenticates by email and password and returns a bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body sharedModels.LoginRequest true "Credentials"
// @Success      200 {object} sharedModels.AuthResponse
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid input or bad JSON"
// @Failure      401 {object} sharedModels.ErrorResponse "Invalid credentials"
// @Failure      429 {object} sharedModels.ErrorResponse "Too many requests"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req sharedModels.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	email, password, err := validation.Login(req)
	if err != nil {
		var verr *serr.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			WriteError(w, http.StatusBadRequest, verr.Fields[0].Message)
			return
		}
		h.writeServiceError(w, r, err, "login")
		return
	}

	user, token, err := h.Svc.Auth.Login(r.Context(), email, password)
	if err != nil {
		h.writeServiceError(w, r, err, "login")
		return
	}

	WriteJSON(w, http.StatusOK, sharedModels.AuthResponse{
		User:  user.Public(),
		Token: token,
	})
}

// Me возвращает профиль текущего пользователя.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} sharedModels.User
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
		return
	}

	user, err := h.Svc.Auth.Me(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "me")
		return
	}

	WriteJSON(w, http.StatusOK, user.Public())
}
