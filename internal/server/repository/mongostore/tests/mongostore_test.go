package tests

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/repository/mongostore"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
	sharedModels "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/models"
)

// testDB поднимает отдельную базу на каждый тест. Без TEST_MONGO_URI тесты пропускаются.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetTimeout(5 * time.Second))
	require.NoError(t, err)

	db := client.Database("expense_tracker_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	require.NoError(t, mongostore.EnsureIndexes(context.Background(), db))
	return db
}

func TestMongoUsers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := mongostore.NewUsersRepository(db)

	u := models.User{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "ann@mail.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Create(ctx, u))

	// уникальный индекс по email
	dup := u
	dup.ID = uuid.New()
	require.ErrorIs(t, repo.Create(ctx, dup), serr.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, serr.ErrNotFound)

	require.NoError(t, mongostore.NewHealthRepository(db).Ping(ctx))
}

func TestMongoExpenses(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := mongostore.NewExpensesRepository(db)

	owner := uuid.New()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	older := models.Expense{
		ID: uuid.New(), UserID: owner, Title: "Bus", Amount: decimal.RequireFromString("2.40"),
		Category: sharedModels.CategoryTransport, Date: day.AddDate(0, 0, -1), CreatedAt: day, UpdatedAt: day,
	}
	newer := models.Expense{
		ID: uuid.New(), UserID: owner, Title: "Lunch", Amount: decimal.RequireFromString("12.99"),
		Category: sharedModels.CategoryFood, Date: day, CreatedAt: day, UpdatedAt: day,
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.True(t, newer.Amount.Equal(list[0].Amount))

	// чужой пользователь не может обновить и удалить
	stranger := older
	stranger.UserID = uuid.New()
	require.ErrorIs(t, repo.Update(ctx, stranger), serr.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, stranger.UserID, older.ID), serr.ErrNotFound)

	older.Title = "Train"
	require.NoError(t, repo.Update(ctx, older))
	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, "Train", got.Title)

	require.NoError(t, repo.Delete(ctx, owner, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	require.ErrorIs(t, err, serr.ErrNotFound)
}
