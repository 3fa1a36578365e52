// Package minio хранит документ форума объектом в MinIO/S3.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Options - параметры подключения к объектному хранилищу.
type Options struct {
	Endpoint     string
	RootUser     string
	RootPassword string
	Bucket       string
	Object       string
}

// Backend - storage.Backend поверх одного объекта бакета.
type Backend struct {
	client *mclient.Client
	bucket string
	object string
}

// New создает клиент MinIO и проверяет наличие бакета.
// Endpoint может быть со схемой (http/https) - по ней выбирается Secure.
func New(ctx context.Context, opts Options) (*Backend, error) {
	const op = "storage/minio/New"

	endpoint := opts.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(opts.RootUser, opts.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, opts.Bucket)
	}

	return &Backend{client: client, bucket: opts.Bucket, object: opts.Object}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/minio/Read"

	obj, err := b.client.GetObject(ctx, b.bucket, b.object, mclient.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	defer obj.Close()

	// GetObject ленивый: отсутствие объекта проявляется только при чтении.
	doc, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	return doc, nil
}

// Write - storage.Backend.
func (b *Backend) Write(ctx context.Context, doc []byte) error {
	const op = "storage/minio/Write"

	_, err := b.client.PutObject(ctx, b.bucket, b.object, bytes.NewReader(doc), int64(len(doc)),
		mclient.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - storage.Backend.
func (b *Backend) Close(context.Context) error {
	return nil
}

func classify(err error) error {
	resp := mclient.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return storage.ErrDocumentNotFound
	}

	return err
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Backend = (*Backend)(nil)
