// Package mongo хранит документ форума в MongoDB: одна запись {_id: name, payload, updated_at}.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/go-forum-store/internal/storage"
)

const (
	documentsCollection = "documents"
	defaultDBName       = "forum"
)

// document - запись коллекции. Payload хранится JSON-текстом как есть.
type document struct {
	Name      string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Backend - storage.Backend поверх коллекции documents.
type Backend struct {
	client    *mongodriver.Client
	documents *mongodriver.Collection
	name      string
}

// New подключается к MongoDB и проверяет соединение.
// Имя базы берётся из пути URI, по умолчанию - "forum".
func New(ctx context.Context, uri, name string) (*Backend, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Backend{
		client:    cli,
		documents: cli.Database(databaseFromURI(uri)).Collection(documentsCollection),
		name:      name,
	}, nil
}

// Read - storage.Backend.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const op = "storage/mongo/Read"

	var doc document
	if err := b.documents.FindOne(ctx, bson.D{{Key: "_id", Value: b.name}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return []byte(doc.Payload), nil
}

// Write - storage.Backend. Документ заменяется целиком (upsert).
func (b *Backend) Write(ctx context.Context, payload []byte) error {
	const op = "storage/mongo/Write"

	doc := document{
		Name:      b.name,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := b.documents.ReplaceOne(ctx, bson.D{{Key: "_id", Value: b.name}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close - storage.Backend.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

var _ storage.Backend = (*Backend)(nil)
