// Package http реализует маршрутизацию HTTP-слоя сервера трекера расходов.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов под префиксом API (chi);
//   - порядок middleware: recover, request id, логирование, заголовки, CORS, лимиты;
//   - проверку JWT access-токенов на защищённых маршрутах.
package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/api"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/config"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/ratelimit"

	_ "github.com/IvanChernomyrdin/go-expense-tracker/swagger/docs"
)

// Limiters — лимитеры групп маршрутов. nil означает "без ограничения".
type Limiters struct {
	General  *ratelimit.Limiter
	Auth     *ratelimit.Limiter
	Expenses *ratelimit.Limiter
	// Key — выбор ключа счётчика, nil означает middleware.RateLimitKey.
	Key middleware.KeyFunc
}

// NewLimiters собирает лимитеры из конфига поверх общего хранилища.
// При security.rate_limit.enabled: false возвращает пустой Limiters.
func NewLimiters(cfg config.RateLimitConfig, store ratelimit.Store, clock ratelimit.Clock) Limiters {
	if !cfg.Enabled {
		return Limiters{}
	}
	return Limiters{
		General:  ratelimit.New(cfg.General.Policy("general"), store, clock),
		Auth:     ratelimit.New(cfg.Auth.Policy("auth"), store, clock),
		Expenses: ratelimit.New(cfg.Expenses.Policy("expenses"), store, clock),
		Key:      middleware.RateLimitKeyFunc(cfg.TrustSessionHeader),
	}
}

// Options — параметры роутера, не относящиеся к обработчикам.
type Options struct {
	APIPrefix      string
	TrustProxy     bool
	AllowedOrigins []string
	MaxBodyBytes   int64
	Pprof          bool
	PprofPrefix    string
	Limiters       Limiters
}

// OptionsFromConfig переносит в Options нужные роутеру поля конфига.
func OptionsFromConfig(cfg *config.Config, limiters Limiters) Options {
	return Options{
		APIPrefix:      cfg.Server.APIPrefix,
		TrustProxy:     cfg.Server.TrustProxy,
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Pprof:          cfg.Observability.Pprof.Enabled,
		PprofPrefix:    cfg.Observability.Pprof.PathPrefix,
		Limiters:       limiters,
	}
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер регистрирует:
//   - /health и /swagger/* вне префикса API и без лимитов;
//   - публичные /users/register и /users/login (лимиты general + auth);
//   - защищённые JWT /users/me и /expenses (мутации дополнительно под лимитом expenses).
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(h.Log))
	r.Use(chimw.RequestID)
	// X-Forwarded-For учитываем только за доверенным прокси
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.LoggerMiddleware(h.Log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodyBytes(opts.MaxBodyBytes))
	}

	r.Get("/health", h.Health)
	// добавляем swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	if opts.Pprof {
		r.Mount(pprofPrefix(opts.PprofPrefix), chimw.Profiler())
	}

	r.Route(apiPrefix(opts.APIPrefix), func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.Limiters.General, opts.Limiters.Key, h.Log))

		// Публичные пути
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.Limiters.Auth, opts.Limiters.Key, h.Log))
			r.Post("/users/register", h.Register)
			r.Post("/users/login", h.Login)
		})

		// защищены пути
		r.Group(func(r chi.Router) {
			// проверка access токена
			r.Use(h.Verifier.AuthMiddleware())

			r.Get("/users/me", h.Me)

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.ListExpenses)
				r.Get("/summary", h.ExpenseSummary)
				r.Get("/{id}", h.GetExpense)

				// мутации под отдельным лимитом, ключ уже по пользователю
				r.Group(func(r chi.Router) {
					r.Use(middleware.RateLimit(opts.Limiters.Expenses, opts.Limiters.Key, h.Log))
					r.Post("/", h.CreateExpense)
					r.Put("/{id}", h.UpdateExpense)
					r.Delete("/{id}", h.DeleteExpense)
				})
			})
		})
	})

	return r
}

func apiPrefix(p string) string {
	p = "/" + strings.Trim(strings.TrimSpace(p), "/")
	return p
}

func pprofPrefix(p string) string {
	if strings.TrimSpace(p) == "" {
		return "/debug"
	}
	return apiPrefix(p)
}
