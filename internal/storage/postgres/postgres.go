// Package postgres хранит документ форума в PostgreSQL (jsonb-колонка одной строки).
// Схема - migrations/1_init_forest.up.sql.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Backend - storage.Backend поверх таблицы forest_documents.
type Backend struct {
	db   *pgxpool.Pool
	name string
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL, name string) (*Backend, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{db: db, name: name}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/postgres/Read"

	var payload []byte
	err := b.db.QueryRow(ctx, `SELECT payload FROM forest_documents WHERE name = $1`, b.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload, nil
}

// Write - storage.Backend.
func (b *Backend) Write(ctx context.Context, doc []byte) error {
	const op = "storage/postgres/Write"

	_, err := b.db.Exec(ctx, `
		INSERT INTO forest_documents (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		b.name, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает пул соединений.
func (b *Backend) Close(context.Context) error {
	b.db.Close()

	return nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Backend = (*Backend)(nil)
