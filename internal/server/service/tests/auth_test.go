package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/config"
	crypt "github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/service"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Issuer:    "test",
			Audience:  "test",
			AccessTTL: time.Minute,
			JWT: config.JWTConfig{
				SigningKey: "supersecretkeysupersecretkey123456",
			},
		},
		Password: config.PasswordConfig{
			Hasher: "argon2id",
			Argon2: config.Argon2Config{
				Time:      1,
				MemoryKiB: 8 * 1024,
				Threads:   1,
				KeyLen:    32,
				SaltLen:   16,
			},
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

// создаём сервис
func newAuthService(t *testing.T) (*service.AuthService, *mocks.MockUsersRepo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)

	cfg := testConfig()
	return service.NewAuthService(users, cfg.PasswordHasher(), cfg.JWT()), users
}

func storedUser(t *testing.T, password string) models.User {
	t.Helper()

	hash, err := testConfig().PasswordHasher().Hash(password)
	require.NoError(t, err)

	return models.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestAuthService_Register_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	var saved models.User
	users.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) error {
			saved = u
			return nil
		})

	user, token, err := svc.Register(ctx, models.Registration{Name: "Alice", Email: "alice@example.com", Password: "Passw0rd1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Equal(t, saved.ID, user.ID)
	require.Equal(t, "alice@example.com", saved.Email)
	require.NotEqual(t, "Passw0rd1", saved.PasswordHash)

	ok, err := crypt.VerifyPassword("Passw0rd1", saved.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	// токен привязан к ID пользователя
	sub, err := crypt.ParseAccessToken(token, testConfig().JWT())
	require.NoError(t, err)
	require.Equal(t, user.ID, sub)
}

// Дубль email — 409, токен не выдаётся
func TestAuthService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().Create(ctx, gomock.Any()).Return(serr.ErrAlreadyExists)

	_, token, err := svc.Register(ctx, models.Registration{Name: "Alice", Email: "alice@example.com", Password: "Passw0rd1"})
	require.ErrorIs(t, err, serr.ErrAlreadyExists)
	require.Empty(t, token)
}

// Успех
func TestAuthService_Login_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	u := storedUser(t, "Passw0rd1")

	users.EXPECT().GetByEmail(ctx, u.Email).Return(u, nil)

	user, token, err := svc.Login(ctx, u.Email, "Passw0rd1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, u.ID, user.ID)
}

// Неверный пароль
func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	u := storedUser(t, "Passw0rd1")

	users.EXPECT().GetByEmail(ctx, u.Email).Return(u, nil)

	_, _, err := svc.Login(ctx, u.Email, "Wrong0ne1")
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
}

// Неизвестный email неотличим от неверного пароля
func TestAuthService_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(models.User{}, serr.ErrNotFound)

	_, _, err := svc.Login(ctx, "ghost@example.com", "Passw0rd1")
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
}

// countingHasher считает вызовы Hash поверх настоящего хэшера
type countingHasher struct {
	crypt.PasswordHasher
	calls int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.calls++
	return h.PasswordHasher.Hash(password)
}

// Для неизвестного email пароль всё равно проверяется против хэша-заглушки,
// заглушка считается один раз
func TestAuthService_Login_UnknownEmailVerifiesDummyHash(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)

	cfg := testConfig()
	hasher := &countingHasher{PasswordHasher: cfg.PasswordHasher()}
	svc := service.NewAuthService(users, hasher, cfg.JWT())

	users.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(models.User{}, serr.ErrNotFound).Times(3)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, "ghost@example.com", "Passw0rd1")
		require.ErrorIs(t, err, serr.ErrInvalidCredentials)
	}
	require.Equal(t, 1, hasher.calls)
}

func TestAuthService_Login_RepoError(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	dbErr := errors.New("db down")

	users.EXPECT().GetByEmail(ctx, "a@b.com").Return(models.User{}, dbErr)

	_, _, err := svc.Login(ctx, "a@b.com", "Passw0rd1")
	require.ErrorIs(t, err, dbErr)
}

// Битый хэш в базе — внутренняя ошибка
func TestAuthService_Login_CorruptedHash(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	u := storedUser(t, "Passw0rd1")
	u.PasswordHash = "garbage"

	users.EXPECT().GetByEmail(ctx, u.Email).Return(u, nil)

	_, _, err := svc.Login(ctx, u.Email, "Passw0rd1")
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	u := storedUser(t, "Passw0rd1")

	users.EXPECT().GetByID(ctx, u.ID).Return(u, nil)

	got, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
}

func TestAuthService_Me_DeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)
	id := uuid.New()

	users.EXPECT().GetByID(ctx, id).Return(models.User{}, serr.ErrNotFound)

	_, err := svc.Me(ctx, id)
	require.ErrorIs(t, err, serr.ErrUnauthorized)
}

func TestAuthService_Me_EmptyID(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Me(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, serr.ErrUserIDEmpty)
}
