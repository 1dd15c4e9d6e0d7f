// Package crypto содержит криптографические примитивы сервера:
//   - выпуск JWT access-токенов (HS256);
//   - хэширование и проверку паролей (argon2id, bcrypt).
package crypto

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig описывает параметры генерации JWT access-токена.
type JWTConfig struct {
	// Issuer — значение поля iss (кто выдал токен).
	Issuer string
	// Audience — значение поля aud (для кого предназначен токен).
	Audience string
	// SigningKey — секретный ключ для подписи токена (HS256).
	SigningKey string
	// AccessTTL — срок жизни access-токена.
	AccessTTL time.Duration
}

// NewAccessToken создаёт и подписывает JWT access-токен для пользователя.
//
// Токен содержит стандартные RegisteredClaims: iss, aud, sub (userID), iat, exp.
// Сервер токены не хранит, отзыва нет: токен живёт до exp.
func NewAccessToken(userID uuid.UUID, cfg JWTConfig) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Audience:  []string{cfg.Audience},
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(cfg.SigningKey))
}

// ParseAccessToken проверяет подпись, срок жизни, issuer и audience
// и возвращает ID пользователя из sub.
//
// Пустые Issuer/Audience в cfg отключают соответствующую проверку.
func ParseAccessToken(tokenStr string, cfg JWTConfig) (uuid.UUID, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.SigningKey), nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(strings.TrimSpace(claims.Subject))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", jwt.ErrTokenInvalidClaims)
	}
	return id, nil
}
