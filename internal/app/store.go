package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/linkvault/internal/config"
	"github.com/hitoshi/linkvault/internal/database"
	"github.com/hitoshi/linkvault/internal/repository"
)

// stores はDATABASE_URLに応じて生成したリポジトリと接続の解放処理をまとめる。
type stores struct {
	users       repository.UserRepository
	collections repository.CollectionRepository
	close       func()
}

// openStores はデータストアに接続してリポジトリを生成する。
// 接続できない場合はエラーを返し、サーバーは起動しない。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established", slog.String("store", string(driver)))
		return &stores{
			users:       repository.NewPostgresUserRepo(db),
			collections: repository.NewPostgresCollectionRepo(db),
			close:       func() { db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		slog.Info("database connection established",
			slog.String("store", string(driver)),
			slog.String("database", cfg.MongoDatabase),
		)
		return &stores{
			users:       repository.NewMongoUserRepo(db),
			collections: repository.NewMongoCollectionRepo(db),
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		slog.Warn("using in-memory store, data is lost on restart")
		return &stores{
			users:       repository.NewMemoryUserRepo(),
			collections: repository.NewMemoryCollectionRepo(),
			close:       func() {},
		}, nil
	}
}
