// Package sqlite хранит документ форума в локальной базе SQLite (однопользовательский режим).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS forest_documents (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Backend - storage.Backend поверх одной строки таблицы forest_documents.
type Backend struct {
	db   *sqlx.DB
	name string
}

// New открывает (или создаёт) базу по path и готовит таблицу.
// name - ключ строки документа, позволяет держать несколько форумов в одной базе.
func New(ctx context.Context, path, name string) (*Backend, error) {
	const op = "storage/sqlite/New"

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Одна запись на документ, конкурентных писателей внутри процесса нет.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{db: db, name: name}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/sqlite/Read"

	var payload string
	err := b.db.GetContext(ctx, &payload, `SELECT payload FROM forest_documents WHERE name = ?`, b.name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return []byte(payload), nil
}

// Write - storage.Backend.
func (b *Backend) Write(ctx context.Context, doc []byte) error {
	const op = "storage/sqlite/Write"

	_, err := b.db.NamedExecContext(ctx, `
		INSERT INTO forest_documents (name, payload, updated_at)
		VALUES (:name, :payload, :updated_at)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		map[string]any{
			"name":       b.name,
			"payload":    string(doc),
			"updated_at": time.Now().UTC(),
		})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - storage.Backend.
func (b *Backend) Close(context.Context) error {
	return b.db.Close()
}

var _ storage.Backend = (*Backend)(nil)
