package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
)

type UsersRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewUsersRepository(db *sql.DB, queryTimeout time.Duration) *UsersRepository {
	return &UsersRepository{db: db, timeout: queryTimeout}
}

// Create сохраняет пользователя. Уникальность email обеспечивает индекс
// users_email_uidx, нарушение превращается в ErrAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, u models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	return translate(err)
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	)
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.getOne(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`,
		id,
	)
}

func (r *UsersRepository) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}
