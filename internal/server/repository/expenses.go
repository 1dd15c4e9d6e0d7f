package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

const expenseColumns = `id, user_id, title, amount, category, date, notes, created_at, updated_at`

// ExpensesRepository реализует доступ к таблице expenses.
type ExpensesRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewExpensesRepository создаёт новый экземпляр ExpensesRepository.
func NewExpensesRepository(db *sql.DB, queryTimeout time.Duration) *ExpensesRepository {
	return &ExpensesRepository{db: db, timeout: queryTimeout}
}

func (r *ExpensesRepository) Create(ctx context.Context, e models.Expense) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		e.ID,
		e.UserID,
		e.Title,
		e.Amount,
		string(e.Category),
		e.Date,
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return translate(err)
}

func (r *ExpensesRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Expense, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`,
		id,
	)

	e, err := scanExpense(row)
	if err != nil {
		return models.Expense{}, translate(err)
	}
	return e, nil
}

// ListByUser возвращает расходы пользователя: новые даты сначала,
// при равной дате первыми идут недавно созданные.
func (r *ExpensesRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Update перезаписывает изменяемые поля. Фильтр по user_id гарантирует,
// что чужая запись не будет изменена даже при гонке. Если строк 0, ErrNotFound.
func (r *ExpensesRepository) Update(ctx context.Context, e models.Expense) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = $1, amount = $2, category = $3, date = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`,
		e.Title,
		e.Amount,
		string(e.Category),
		e.Date,
		e.Notes,
		e.UpdatedAt,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}

func (r *ExpensesRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return translate(err)
	}
	return affectedOne(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (models.Expense, error) {
	var (
		e        models.Expense
		category string
	)
	err := s.Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Amount,
		&category,
		&e.Date,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return models.Expense{}, err
	}
	e.Category = sharedModels.Category(category)
	return e, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return serr.ErrNotFound
	}
	return nil
}
