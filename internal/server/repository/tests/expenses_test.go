package tests

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

var expenseColumns = []string{
	"id", "user_id", "title", "amount", "category", "date", "notes", "created_at", "updated_at",
}

func newExpense(owner uuid.UUID) models.Expense {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Expense{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     "Groceries",
		Amount:    decimal.RequireFromString("42.10"),
		Category:  sharedModels.CategoryFood,
		Date:      ts,
		Notes:     "weekly",
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func expenseRow(rows *sqlmock.Rows, e models.Expense) *sqlmock.Rows {
	return rows.AddRow(
		e.ID.String(), e.UserID.String(), e.Title, e.Amount.String(), string(e.Category),
		e.Date, e.Notes, e.CreatedAt, e.UpdatedAt,
	)
}

func TestExpensesRepository_Create_OK(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)
	e := newExpense(uuid.New())

	mock.ExpectExec(`INSERT INTO expenses`).
		WithArgs(e.ID, e.UserID, e.Title, e.Amount, "Food", e.Date, e.Notes, e.CreatedAt, e.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), e))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Владелец удалён между проверкой токена и вставкой
func TestExpensesRepository_Create_UnknownOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)

	mock.ExpectExec(`INSERT INTO expenses`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err = repo.Create(context.Background(), newExpense(uuid.New()))
	require.ErrorIs(t, err, serr.ErrNotFound)
}

func TestExpensesRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)
	e := newExpense(uuid.New())

	mock.ExpectQuery(`FROM expenses WHERE id`).
		WithArgs(e.ID).
		WillReturnRows(expenseRow(sqlmock.NewRows(expenseColumns), e))

	got, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, e.UserID, got.UserID)
	require.True(t, e.Amount.Equal(got.Amount))
	require.Equal(t, sharedModels.CategoryFood, got.Category)
	require.Equal(t, "weekly", got.Notes)
}

func TestExpensesRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)

	mock.ExpectQuery(`FROM expenses WHERE id`).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, serr.ErrNotFound)
}

func TestExpensesRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)
	owner := uuid.New()
	a, b := newExpense(owner), newExpense(owner)
	b.Date = a.Date.AddDate(0, 0, -1)

	rows := sqlmock.NewRows(expenseColumns)
	expenseRow(rows, a)
	expenseRow(rows, b)

	mock.ExpectQuery(`WHERE user_id = \$1\s+ORDER BY date DESC, created_at DESC`).
		WithArgs(owner).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, a.ID, got[0].ID)
	require.Equal(t, b.ID, got[1].ID)
}

// Пустой результат: пустой срез, не nil
func TestExpensesRepository_ListByUser_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)

	mock.ExpectQuery(`FROM expenses`).
		WillReturnRows(sqlmock.NewRows(expenseColumns))

	got, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestExpensesRepository_ListByUser_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewExpensesRepository(db, time.Second)
	e := newExpense(uuid.New())

	rows := expenseRow(sqlmock.NewRows(expenseColumns), e).
		RowError(0, errors.New("broken row"))

	mock.ExpectQuery(`FROM expenses`).WillReturnRows(rows)

	_, err = repo.ListByUser(context.Background(), e.UserID)
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestExpensesRepository_Update(t *testing.T) {
	e := newExpense(uuid.New())

	t.Run("ok", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE expenses`).
			WithArgs(e.Title, e.Amount, "Food", e.Date, e.Notes, e.UpdatedAt, e.ID, e.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repository.NewExpensesRepository(db, time.Second).Update(context.Background(), e))
	})

	t.Run("no rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE expenses`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repository.NewExpensesRepository(db, time.Second).Update(context.Background(), e)
		require.ErrorIs(t, err, serr.ErrNotFound)
	})
}

func TestExpensesRepository_Delete(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	t.Run("ok", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM expenses WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id, owner).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repository.NewExpensesRepository(db, time.Second).Delete(context.Background(), owner, id))
	})

	t.Run("no rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM expenses`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repository.NewExpensesRepository(db, time.Second).Delete(context.Background(), owner, id)
		require.ErrorIs(t, err, serr.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM expenses`).
			WillReturnError(sql.ErrConnDone)

		err = repository.NewExpensesRepository(db, time.Second).Delete(context.Background(), owner, id)
		require.ErrorIs(t, err, serr.ErrInternal)
	})
}
