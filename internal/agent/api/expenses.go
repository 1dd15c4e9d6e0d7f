package api

import (
	"context"
	"net/url"

	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

func expensePath(id string) string {
	return "/expenses/" + url.PathEscape(id)
}

// ListExpenses возвращает все расходы пользователя, новые первыми.
func (c *Client) ListExpenses(ctx context.Context, token string) ([]sharedModels.Expense, error) {
	resp := []sharedModels.Expense{}
	err := c.GetJSON(ctx, "/expenses", &resp, token)
	return resp, err
}

// GetExpense возвращает один расход по id.
func (c *Client) GetExpense(ctx context.Context, token, id string) (sharedModels.Expense, error) {
	var resp sharedModels.Expense
	err := c.GetJSON(ctx, expensePath(id), &resp, token)
	return resp, err
}

// CreateExpense создаёт расход.
func (c *Client) CreateExpense(ctx context.Context, token string, req sharedModels.ExpenseRequest) (sharedModels.Expense, error) {
	var resp sharedModels.Expense
	err := c.PostJSON(ctx, "/expenses", req, &resp, token)
	return resp, err
}

// UpdateExpense меняет только заданные в req поля расхода.
func (c *Client) UpdateExpense(ctx context.Context, token, id string, req sharedModels.ExpenseRequest) (sharedModels.Expense, error) {
	var resp sharedModels.Expense
	err := c.PutJSON(ctx, expensePath(id), req, &resp, token)
	return resp, err
}

// DeleteExpense удаляет расход.
func (c *Client) DeleteExpense(ctx context.Context, token, id string) (sharedModels.DeleteExpenseResponse, error) {
	var resp sharedModels.DeleteExpenseResponse
	err := c.DeleteJSON(ctx, expensePath(id), &resp, token)
	return resp, err
}

// Summary возвращает сводку относительно бюджета.
// Пустой budget означает бюджет сервера по умолчанию.
func (c *Client) Summary(ctx context.Context, token, budget string) (sharedModels.Summary, error) {
	path := "/expenses/summary"
	if budget != "" {
		path += "?" + url.Values{"budget": {budget}}.Encode()
	}
	var resp sharedModels.Summary
	err := c.GetJSON(ctx, path, &resp, token)
	return resp, err
}
