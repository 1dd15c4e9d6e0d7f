// Package mongostore хранит пользователей и расходы в MongoDB.
//
// Репозитории реализуют те же интерфейсы сервиса, что и PostgreSQL-версия,
// и выбираются конфигом db.driver: mongo.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

const (
	UsersCollection    = "users"
	ExpensesCollection = "expenses"
)

// EnsureIndexes создаёт индексы, которые в PostgreSQL задаёт миграция:
// уникальный email и сортировку списка расходов.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_uidx"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(ExpensesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "date", Value: -1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("expenses_user_date_idx"),
	})
	if err != nil {
		return fmt.Errorf("create expenses index: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return serr.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return serr.ErrAlreadyExists
	default:
		return fmt.Errorf("%w: %v", serr.ErrInternal, err)
	}
}

type HealthRepository struct {
	db *mongo.Database
}

func NewHealthRepository(db *mongo.Database) *HealthRepository {
	return &HealthRepository{db: db}
}

func (r *HealthRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
