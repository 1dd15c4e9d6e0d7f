package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/errors"
)

// AuthService реализует регистрацию, вход и выдачу access-токенов.
//
// Токены stateless: сервер их не хранит, logout выполняется на клиенте.
type AuthService struct {
	users  UsersRepo
	hasher crypto.PasswordHasher
	jwt    crypto.JWTConfig
	now    func() time.Time

	// хэш-заглушка для входа по неизвестному email, считается один раз
	dummyOnce sync.Once
	dummyHash string
}

// dummyPassword хэшируется теми же параметрами, что и настоящие пароли.
const dummyPassword = "expense-tracker-dummy-password"

// NewAuthService создаёт AuthService.
func NewAuthService(users UsersRepo, hasher crypto.PasswordHasher, jwt crypto.JWTConfig) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		jwt:    jwt,
		now:    time.Now,
	}
}

// Register создаёт пользователя и сразу выдаёт ему токен.
//
// Ошибки:
//   - ErrAlreadyExists — email уже зарегистрирован (дубль не создаётся)
//   - ErrInternal — не удалось захэшировать пароль или подписать токен
func (s *AuthService) Register(ctx context.Context, in models.Registration) (models.User, string, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, "", serr.ErrInternal
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, "", err
	}

	token, err := crypto.NewAccessToken(user.ID, s.jwt)
	if err != nil {
		return models.User{}, "", serr.ErrInternal
	}
	return user, token, nil
}

// Login аутентифицирует пользователя и выдаёт токен.
//
// Неизвестный email и неверный пароль дают одну и ту же ошибку
// ErrInvalidCredentials, чтобы не раскрывать факт существования email.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			// время ответа не должно выдавать, что email не зарегистрирован
			s.verifyDummy(password)
			return models.User{}, "", serr.ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return models.User{}, "", serr.ErrInternal
	}
	if !ok {
		return models.User{}, "", serr.ErrInvalidCredentials
	}

	token, err := crypto.NewAccessToken(user.ID, s.jwt)
	if err != nil {
		return models.User{}, "", serr.ErrInternal
	}
	return user, token, nil
}

// verifyDummy проверяет пароль против заглушки, чтобы потратить столько же
// времени, сколько проверка настоящего хэша. Результат не важен.
func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = crypto.VerifyPassword(password, s.dummyHash)
}

// Me возвращает профиль аутентифицированного пользователя.
//
// Если пользователя уже нет (токен пережил запись), возвращается ErrUnauthorized.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (models.User, error) {
	if userID == uuid.Nil {
		return models.User{}, serr.ErrUserIDEmpty
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.User{}, serr.ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}
