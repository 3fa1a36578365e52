// Package redis хранит документ форума строковым значением одного ключа Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Backend - storage.Backend поверх ключа key.
type Backend struct {
	rdb *goredis.Client
	key string
}

// New создаёт клиент из URL (например, redis://:pass@host:6379/0) и проверяет соединение.
func New(ctx context.Context, redisURL, key string) (*Backend, error) {
	const op = "storage/redis/New"

	if key == "" {
		return nil, fmt.Errorf("%s: empty key", op)
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{rdb: rdb, key: key}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/redis/Read"

	doc, err := b.rdb.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc, nil
}

// Write - storage.Backend. Значение хранится без TTL.
func (b *Backend) Write(ctx context.Context, doc []byte) error {
	const op = "storage/redis/Write"

	if err := b.rdb.Set(ctx, b.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - storage.Backend.
func (b *Backend) Close(context.Context) error {
	return b.rdb.Close()
}
