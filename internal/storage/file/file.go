// Package file хранит документ форума в одном файле на локальном диске.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Backend - storage.Backend поверх файла.
type Backend struct {
	path string
}

// New возвращает бэкенд для файла path. Каталог создаётся при первой записи.
func New(path string) (*Backend, error) {
	const op = "storage/file/New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	return &Backend{path: path}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/file/Read"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc, nil
}

// Write - storage.Backend. Документ пишется во временный файл рядом и переименовывается,
// так что читатель видит либо старую, либо новую версию целиком.
func (b *Backend) Write(ctx context.Context, doc []byte) error {
	const op = "storage/file/Write"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - storage.Backend.
func (b *Backend) Close(context.Context) error {
	return nil
}

var _ storage.Backend = (*Backend)(nil)
