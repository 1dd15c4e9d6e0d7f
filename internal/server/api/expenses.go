package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/validation"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// MessageExpenseDeleted — подтверждение в ответе DELETE /expenses/{id}.
const MessageExpenseDeleted = "expense deleted"

// CreateExpense создаёт расход для аутентифицированного пользователя.
//
// Владелец всегда берётся из токена; поле user в теле игнорируется.
// Отсутствующая категория становится Other, отсутствующая дата — текущим моментом.
//
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body sharedModels.ExpenseRequest true "Expense"
// @Success      201 {object} sharedModels.Expense
// @Failure      400 {object} sharedModels.ErrorResponse "Validation failed"
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      429 {object} sharedModels.ErrorResponse "Too many requests"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /expenses [post]
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
		return
	}

	var in validation.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	draft, err := validation.Expense(in, time.Now().UTC())
	if err != nil {
		h.writeServiceError(w, r, err, "create expense")
		return
	}

	e, err := h.Svc.Expenses.Create(r.Context(), userID, draft)
	if err != nil {
		h.writeServiceError(w, r, err, "create expense")
		return
	}

	WriteJSON(w, http.StatusCreated, e.Public())
}

// ListExpenses возвращает все расходы текущего пользователя,
// новые даты сначала.
//
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  sharedModels.Expense
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /expenses [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
		return
	}

	list, err := h.Svc.Expenses.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "list expenses")
		return
	}

	WriteJSON(w, http.StatusOK, models.PublicExpenses(list))
}

// GetExpense возвращает один расход.
//
// @Summary      Get expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID (UUID)"
// @Success      200 {object} sharedModels.Expense
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid id"
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      403 {object} sharedModels.ErrorResponse "Expense belongs to another user"
// @Failure      404 {object} sharedModels.ErrorResponse "Expense not found"
// @Router       /expenses/{id} [get]
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.expenseTarget(w, r)
	if !ok {
		return
	}

	e, err := h.Svc.Expenses.Get(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, r, err, "get expense")
		return
	}

	WriteJSON(w, http.StatusOK, e.Public())
}

// UpdateExpense частично обновляет расход: меняются только присланные поля.
//
// Порядок проверок: id → тело → существование → владелец.
//
// @Summary      Update expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                    true "Expense ID (UUID)"
// @Param        request body sharedModels.ExpenseRequest true "Fields to change"
// @Success      200 {object} sharedModels.Expense
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid id or validation failed"
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      403 {object} sharedModels.ErrorResponse "Expense belongs to another user"
// @Failure      404 {object} sharedModels.ErrorResponse "Expense not found"
// @Failure      429 {object} sharedModels.ErrorResponse "Too many requests"
// @Router       /expenses/{id} [put]
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.expenseTarget(w, r)
	if !ok {
		return
	}

	var in validation.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	patch, err := validation.ExpensePatch(in)
	if err != nil {
		h.writeServiceError(w, r, err, "update expense")
		return
	}

	e, err := h.Svc.Expenses.Update(r.Context(), userID, id, patch)
	if err != nil {
		h.writeServiceError(w, r, err, "update expense")
		return
	}

	WriteJSON(w, http.StatusOK, e.Public())
}

// DeleteExpense удаляет расход владельца.
//
// @Summary      Delete expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID (UUID)"
// @Success      200 {object} sharedModels.DeleteExpenseResponse
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid id"
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      403 {object} sharedModels.ErrorResponse "Expense belongs to another user"
// @Failure      404 {object} sharedModels.ErrorResponse "Expense not found"
// @Failure      429 {object} sharedModels.ErrorResponse "Too many requests"
// @Router       /expenses/{id} [delete]
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.expenseTarget(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Expenses.Delete(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, r, err, "delete expense")
		return
	}

	WriteJSON(w, http.StatusOK, sharedModels.DeleteExpenseResponse{
		Message: MessageExpenseDeleted,
		ID:      id.String(),
	})
}

// ExpenseSummary считает сводку расходов относительно бюджета.
//
// Бюджет берётся из ?budget=N, иначе из budget.default_monthly.
//
// @Summary      Expense summary
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        budget query number false "Monthly budget"
// @Success      200 {object} sharedModels.Summary
// @Failure      400 {object} sharedModels.ErrorResponse "Invalid budget"
// @Failure      401 {object} sharedModels.ErrorResponse "Unauthorized"
// @Failure      500 {object} sharedModels.ErrorResponse "Internal server error"
// @Router       /expenses/summary [get]
func (h *Handler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
		return
	}

	var budget *decimal.Decimal
	if raw := strings.TrimSpace(r.URL.Query().Get("budget")); raw != "" {
		b, err := validation.ParseDecimal(raw)
		if err != nil || !b.IsPositive() {
			h.writeServiceError(w, r, serr.NewValidationError("budget", "budget must be a positive number"), "summary")
			return
		}
		budget = &b
	}

	s, err := h.Svc.Expenses.Summary(r.Context(), userID, budget)
	if err != nil {
		h.writeServiceError(w, r, err, "summary")
		return
	}

	WriteJSON(w, http.StatusOK, s)
}

// expenseTarget достаёт пользователя из контекста и id расхода из URL.
// При ошибке ответ уже записан.
func (h *Handler) expenseTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized.Error())
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid expense id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
