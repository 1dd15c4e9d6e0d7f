package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// OpenPostgres открывает подключение к PostgreSQL (драйвер pgx), настраивает пул,
// проверяет доступность базы (Ping) и, если включено, применяет миграции.
//
// Если миграции уже применены, migrate.ErrNoChange ошибкой не считается.
func OpenPostgres(ctx context.Context, db DBConfig, mig MigrationsConfig, log *logger.HTTPLogger) (*sql.DB, error) {
	sugar := log.Sugar()

	conn, err := sql.Open("pgx", db.DSN)
	if err != nil {
		sugar.Errorf("error to connect db: %v", err)
		return nil, err
	}

	if db.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(db.MaxOpenConns)
	}
	if db.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(db.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(db.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(db.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
	defer cancel()
	if err = conn.PingContext(pingCtx); err != nil {
		sugar.Errorf("error check db connection: %v", err)
		conn.Close()
		return nil, err
	}

	if mig.Enabled {
		if err := migrateUp(conn, mig.Path); err != nil {
			sugar.Errorf("error applying migrations: %v", err)
			conn.Close()
			return nil, err
		}
		sugar.Info("migrations applied successfully")
	}

	return conn, nil
}

func migrateUp(conn *sql.DB, path string) error {
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
