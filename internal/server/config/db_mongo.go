package config

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-expense-tracker/internal/shared/logger"
)

// OpenMongo подключается к MongoDB по db.dsn и проверяет доступность primary.
//
// Возвращает базу db.database; клиент закрывается через db.Client().Disconnect.
func OpenMongo(ctx context.Context, db DBConfig, log *logger.HTTPLogger) (*mongo.Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(db.DSN).
		SetServerAPIOptions(serverAPI).
		SetTimeout(db.QueryTimeout)
	if db.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(db.MaxOpenConns))
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Error("failed to ping MongoDB", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	log.Info("successfully connected to MongoDB", zap.String("database", db.Database))
	return client.Database(db.Database), nil
}
