package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/taskhub/internal/config"
	"github.com/hitoshi/taskhub/internal/database"
	"github.com/hitoshi/taskhub/internal/repository"
)

// storeConnectTimeout はストアへの接続確認の上限時間。
const storeConnectTimeout = 10 * time.Second

// openStore はDATABASE_URLのスキームに応じたストアに接続し、ユーザーリポジトリを返す。
// 返されたclose関数で接続を閉じる。
func openStore(ctx context.Context, cfg *config.Config) (repository.UserRepository, func() error, error) {
	driver, err := database.DetectDriver(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	switch driver {
	case database.DriverMongo:
		client, err := database.OpenMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		db := client.Database(cfg.DatabaseName)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}

		slog.Info("database connection established",
			slog.String("driver", string(driver)),
			slog.String("database", cfg.DatabaseName),
		)
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return repository.NewMongoUserRepo(client, db), closeFn, nil

	default:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		slog.Info("database connection established", slog.String("driver", string(driver)))
		return repository.NewPostgresUserRepo(db), db.Close, nil
	}
}

// migrateStore はストアのスキーマを準備する。
// PostgreSQLは未適用のマイグレーションを順番に適用し、MongoDBは必要なインデックスを作成する。
func migrateStore(ctx context.Context, cfg *config.Config) error {
	driver, err := database.DetectDriver(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	if driver != database.DriverMongo {
		return database.RunMigrations(cfg.DatabaseURL)
	}

	ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	client, err := database.OpenMongo(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())

	return database.EnsureMongoIndexes(ctx, client.Database(cfg.DatabaseName))
}
