package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-forum-store/internal/config"
	"github.com/pribylovaa/go-forum-store/internal/storage/file"
	"github.com/pribylovaa/go-forum-store/internal/storage/sqlite"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := openBackend(ctx, config.StorageConfig{
		Driver: config.DriverFile,
		File:   config.FileConfig{Path: filepath.Join(dir, "posts.json")},
	})
	require.NoError(t, err)
	require.IsType(t, &file.Backend{}, b)

	b, err = openBackend(ctx, config.StorageConfig{
		Driver:   config.DriverSQLite,
		Document: "posts",
		SQLite:   config.SQLiteConfig{Path: filepath.Join(dir, "forum.db")},
	})
	require.NoError(t, err)
	require.IsType(t, &sqlite.Backend{}, b)
	require.NoError(t, b.Close(ctx))

	_, err = openBackend(ctx, config.StorageConfig{Driver: "cassandra"})
	require.Error(t, err)
}

func TestStorageTarget_HidesPasswords(t *testing.T) {
	got := storageTarget(config.StorageConfig{
		Driver:   config.DriverPostgres,
		Document: "posts",
		Postgres: config.PostgresConfig{URL: "postgres://forum:s3cret@db:5432/forum"},
	})
	require.Equal(t, "postgres://forum:***@db:5432/forum#posts", got)

	got = storageTarget(config.StorageConfig{
		Driver: config.DriverRedis,
		Redis:  config.RedisConfig{URL: "redis://:s3cret@cache:6379/0", Key: "forum:posts"},
	})
	require.NotContains(t, got, "s3cret")
}
