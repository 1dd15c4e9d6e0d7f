package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/ratelimit"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// SessionHeader — необязательный идентификатор клиентской сессии.
//
// Значение целиком выбирает клиент, поэтому учитывается только при
// security.rate_limit.trust_session_header: true (например, если заголовок
// проставляет доверенный шлюз).
const SessionHeader = "X-Session-ID"

// KeyFunc выбирает ключ счётчика для запроса.
type KeyFunc func(r *http.Request) string

// RateLimitKey — ключ по умолчанию:
//   - user:<id>, если запрос уже прошёл AuthMiddleware;
//   - ip:<addr> по RemoteAddr.
//
// Адрес из X-Forwarded-For/X-Real-IP попадает в RemoteAddr только если
// роутер подключил chi middleware.RealIP (server.trust_proxy: true).
func RateLimitKey(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + id.String()
	}
	return "ip:" + clientIP(r)
}

// SessionRateLimitKey как RateLimitKey, но между пользователем и адресом
// учитывает X-Session-ID (session:<id>).
func SessionRateLimitKey(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + id.String()
	}
	if s := strings.TrimSpace(r.Header.Get(SessionHeader)); s != "" {
		return "session:" + s
	}
	return "ip:" + clientIP(r)
}

// RateLimitKeyFunc возвращает SessionRateLimitKey только для доверенного заголовка.
func RateLimitKeyFunc(trustSession bool) KeyFunc {
	if trustSession {
		return SessionRateLimitKey
	}
	return RateLimitKey
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit возвращает middleware ограничения частоты запросов.
//
// l == nil (лимитер выключен в конфиге) — middleware ничего не делает.
// keyFn == nil означает RateLimitKey.
// На каждый ответ ставятся RateLimit-Limit, RateLimit-Remaining и
// RateLimit-Reset; при превышении — 429 с Retry-After.
// Если политика пропускает успешные/неуспешные ответы, засчитанный
// запрос возвращается после выполнения хендлера.
// Ошибка хранилища счётчиков не блокирует запрос.
func RateLimit(l *ratelimit.Limiter, keyFn KeyFunc, log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if keyFn == nil {
		keyFn = RateLimitKey
	}
	if log == nil {
		log = logger.NewNop()
	}
	policy := l.Policy()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)

			res, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limit store failed",
					zap.String("policy", policy.Name),
					zap.String("key", key),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(seconds(res.ResetIn)))

			if !res.Allowed {
				h.Set("Retry-After", strconv.Itoa(seconds(res.ResetIn)))
				writeMessage(w, http.StatusTooManyRequests, policy.Message)
				return
			}

			if !policy.SkipSuccessful && !policy.SkipFailed {
				next.ServeHTTP(w, r)
				return
			}

			wr := WrapResponseWriter(w)
			next.ServeHTTP(wr, r)

			if policy.Skip(wr.StatusCode()) {
				if err := l.Undo(r.Context(), key, res.ResetAt); err != nil {
					log.Warn("rate limit undo failed", zap.String("policy", policy.Name), zap.Error(err))
				}
			}
		})
	}
}

// seconds округляет вверх: клиенту лучше подождать лишнюю секунду, чем получить 429.
func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
