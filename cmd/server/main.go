// @title           Expense Tracker API
// @version         1.0
// @description     Personal expense tracker backend.
// @description     Provides user authentication, expense CRUD and budget summary.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
//
// Package main содержит точку входа серверного приложения трекера расходов.
//
// Пакет отвечает за:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации из файла (по умолчанию ./configs/server.yaml);
//   - подключение к PostgreSQL или MongoDB по db.driver;
//   - создание репозиториев, сервисов, лимитеров и HTTP-обработчиков;
//   - запуск HTTP(S)-сервера и фоновой очистки счётчиков лимитов;
//   - корректное (graceful) завершение по SIGINT, SIGTERM, SIGQUIT.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/api"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/config"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-expense-tracker/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/ratelimit"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/repository"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/repository/mongostore"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/server/service"
	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

func main() {
	configPath := flag.String("config", "./configs/server.yaml", "path to server config")
	flag.Parse()

	boot := logger.NewHTTPLogger().Sugar()

	if err := godotenv.Load(); err != nil {
		boot.Warnf("no .env file loaded, error: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal(err)
	}

	log := logger.NewHTTPLoggerFromOptions(cfg.LoggerOptions())
	defer func() { _ = log.Sync() }()
	sugar := log.Sugar()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	repos, closeDB, err := openRepositories(ctx, cfg, log)
	if err != nil {
		sugar.Fatal(err)
	}
	defer closeDB()

	// создаём сервис
	svc := service.NewServices(repos, cfg)

	verifier := middleware.NewJWTVerifier(
		cfg.Auth.JWT.SigningKey,
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
	)
	handler := api.NewHandler(svc, log, verifier)

	// общее хранилище счётчиков для всех политик
	store := ratelimit.NewMemoryStore(ratelimit.SystemClock{})
	limiters := h.NewLimiters(cfg.Security.RateLimit, store, ratelimit.SystemClock{})

	router := h.NewRouter(handler, h.OptionsFromConfig(cfg, limiters))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(log.Logger),
	}
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{MinVersion: tlsVersion(cfg.TLS.MinVersion)}
	}

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		sugar.Infow("server started",
			"addr", cfg.Addr(),
			"api_prefix", cfg.Server.APIPrefix,
			"tls", cfg.TLS.Enabled,
			"db_driver", cfg.DB.Driver,
		)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// чистим истёкшие окна лимитов
	if cfg.Security.RateLimit.Enabled {
		g.Go(func() error {
			return store.Run(ctx, cfg.Security.RateLimit.SweepInterval)
		})
	}

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единная обработка ошибок
	if err := g.Wait(); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
	sugar.Info("server gracefully stopped")
}

// openRepositories подключает хранилище по db.driver и возвращает репозитории
// вместе с функцией закрытия соединения.
func openRepositories(ctx context.Context, cfg *config.Config, log *logger.HTTPLogger) (service.Repositories, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverMongo:
		db, err := config.OpenMongo(ctx, cfg.DB, log)
		if err != nil {
			return service.Repositories{}, nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return service.Repositories{}, nil, err
		}
		return service.Repositories{
			Users:    mongostore.NewUsersRepository(db),
			Expenses: mongostore.NewExpensesRepository(db),
			Health:   mongostore.NewHealthRepository(db),
		}, closeMongo(db, log), nil

	default:
		db, err := config.OpenPostgres(ctx, cfg.DB, cfg.Migrations, log)
		if err != nil {
			return service.Repositories{}, nil, err
		}
		return service.Repositories{
			Users:    repository.NewUsersRepository(db, cfg.DB.QueryTimeout),
			Expenses: repository.NewExpensesRepository(db, cfg.DB.QueryTimeout),
			Health:   repository.NewHealthRepository(db),
		}, closeSQL(db, log), nil
	}
}

func closeSQL(db *sql.DB, log *logger.HTTPLogger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func closeMongo(db *mongo.Database, log *logger.HTTPLogger) func() {
	return func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
