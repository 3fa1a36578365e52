package main

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-forum-store/internal/config"
	"github.com/pribylovaa/go-forum-store/internal/pkg/redact"
	"github.com/pribylovaa/go-forum-store/internal/storage"
	"github.com/pribylovaa/go-forum-store/internal/storage/file"
	"github.com/pribylovaa/go-forum-store/internal/storage/minio"
	"github.com/pribylovaa/go-forum-store/internal/storage/mongo"
	"github.com/pribylovaa/go-forum-store/internal/storage/postgres"
	"github.com/pribylovaa/go-forum-store/internal/storage/redis"
	"github.com/pribylovaa/go-forum-store/internal/storage/sqlite"
)

// openBackend выбирает хранилище байтов документа по storage.driver.
func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return file.New(cfg.File.Path)
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.SQLite.Path, cfg.Document)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.Postgres.URL, cfg.Document)
	case config.DriverMongo:
		return mongo.New(ctx, cfg.Mongo.URL, cfg.Document)
	case config.DriverMinIO:
		return minio.New(ctx, minio.Options{
			Endpoint:     cfg.MinIO.Endpoint,
			RootUser:     cfg.MinIO.RootUser,
			RootPassword: cfg.MinIO.RootPassword,
			Bucket:       cfg.MinIO.Bucket,
			Object:       cfg.MinIO.Object,
		})
	case config.DriverRedis:
		return redis.New(ctx, cfg.Redis.URL, cfg.Redis.Key)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// storageTarget - где лежит документ, для логов. Пароли в DSN замаскированы.
func storageTarget(cfg config.StorageConfig) string {
	switch cfg.Driver {
	case config.DriverFile:
		return cfg.File.Path
	case config.DriverSQLite:
		return cfg.SQLite.Path + "#" + cfg.Document
	case config.DriverPostgres:
		return redact.URL(cfg.Postgres.URL) + "#" + cfg.Document
	case config.DriverMongo:
		return redact.URL(cfg.Mongo.URL) + "#" + cfg.Document
	case config.DriverMinIO:
		return cfg.MinIO.Endpoint + "/" + cfg.MinIO.Bucket + "/" + cfg.MinIO.Object
	case config.DriverRedis:
		return redact.URL(cfg.Redis.URL) + "#" + cfg.Redis.Key
	default:
		return ""
	}
}
