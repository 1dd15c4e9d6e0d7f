// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/crypto"
)

// ctxKey используется как тип ключа для хранения значений в context.Context.
// Отдельный тип предотвращает коллизии ключей между пакетами.
type ctxKey string

// userIDKey — ключ контекста, под которым хранится ID аутентифицированного пользователя.
const userIDKey ctxKey = "user_id"

// JWTVerifier инкапсулирует параметры проверки JWT access-токенов.
//
// Используется в HTTP middleware для:
//   - проверки подписи и срока жизни токена
//   - валидации issuer и audience
//   - извлечения userID (UUID) из claims.Subject
type JWTVerifier struct {
	SigningKey string // симметричный ключ для подписи (HS256)
	Issuer     string // ожидаемый issuer (опционально)
	Audience   string // ожидаемая audience (опционально)
}

// NewJWTVerifier создаёт новый JWTVerifier с заданными параметрами.
func NewJWTVerifier(signingKey, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{SigningKey: signingKey, Issuer: issuer, Audience: audience}
}

// ContextWithUserID кладёт userID в контекст так же, как это делает AuthMiddleware.
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext извлекает userID аутентифицированного пользователя из контекста.
//
// Возвращает false, если пользователь не аутентифицирован.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Verify проверяет токен и возвращает ID пользователя.
func (v *JWTVerifier) Verify(tokenStr string) (uuid.UUID, error) {
	return crypto.ParseAccessToken(tokenStr, crypto.JWTConfig{
		Issuer:     v.Issuer,
		Audience:   v.Audience,
		SigningKey: v.SigningKey,
	})
}

// AuthMiddleware возвращает HTTP middleware для проверки JWT access-токенов.
//
// Middleware:
//   - ожидает заголовок Authorization: Bearer <token>
//   - валидирует подпись и claims токена
//   - сохраняет userID в context.Context
//
// В случае ошибки отвечает 401 с телом {"message": "..."}.
func (v *JWTVerifier) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ExtractBearer(r.Header.Get("Authorization"))
			if tokenStr == "" {
				writeMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := v.Verify(tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					writeMessage(w, http.StatusUnauthorized, "token expired")
				case errors.Is(err, jwt.ErrTokenInvalidIssuer):
					writeMessage(w, http.StatusUnauthorized, "invalid token issuer")
				case errors.Is(err, jwt.ErrTokenInvalidAudience):
					writeMessage(w, http.StatusUnauthorized, "invalid token audience")
				default:
					writeMessage(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// ExtractBearer извлекает JWT из заголовка Authorization.
//
// Ожидаемый формат:
//
//	Authorization: Bearer <token>
//
// Возвращает пустую строку, если формат некорректен.
func ExtractBearer(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
