// Package repository реализует хранилище пользователей и расходов в PostgreSQL.
//
// Репозитории отвечают только за SQL: никакой бизнес-логики и проверок
// владельца, кроме фильтра user_id в UPDATE/DELETE. Ошибки драйвера
// переводятся в доменные ошибки из internal/shared/errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

// коды ошибок PostgreSQL
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// withTimeout ограничивает запрос к БД таймаутом db.query_timeout.
// timeout <= 0 означает "без отдельного таймаута".
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// translate переводит ошибку драйвера в доменную.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return serr.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return serr.ErrAlreadyExists
		case pgForeignKeyViolation:
			return serr.ErrNotFound
		}
	}
	return fmt.Errorf("%w: %v", serr.ErrInternal, err)
}

// HealthRepository проверяет доступность базы для /health.
type HealthRepository struct {
	db *sql.DB
}

func NewHealthRepository(db *sql.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

func (r *HealthRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
