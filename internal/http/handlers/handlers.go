package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-forum-store/internal/models"
	"github.com/pribylovaa/go-forum-store/internal/service"
)

// Forum - операции сервисного слоя, которые нужны HTTP-хендлерам.
// Реализуется *service.Service.
type Forum interface {
	AllPosts(ctx context.Context) ([]*models.Node, error)
	NodeByID(ctx context.Context, id int64) (*models.Node, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]*models.Node, error)
	CreatePost(ctx context.Context, in service.CreatePostInput) (*models.Node, error)
	AttachReply(ctx context.Context, in service.AttachReplyInput) (*models.Node, error)
	SetVotes(ctx context.Context, in service.SetVotesInput) (*models.Node, error)
	SetReference(ctx context.Context, in service.SetReferenceInput) (*models.Node, error)
	ClearReference(ctx context.Context, id int64) (*models.Node, error)
	EditContent(ctx context.Context, in service.EditContentInput) (*models.Node, error)
	Referenced(ctx context.Context, id int64) (*models.Node, error)
	Save(ctx context.Context) error
	Reload(ctx context.Context) (int, error)
}

var _ Forum = (*service.Service)(nil)

// FeedOptions - параметры Atom-ленты.
type FeedOptions struct {
	Title string
	Link  string
	Limit int
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	forum Forum
	feed  FeedOptions
}

func New(forum Forum, feed FeedOptions) *Handlers {
	return &Handlers{forum: forum, feed: feed}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict - строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument - локальная ошибка парсинга запроса -> 400.
func errInvalidArgument(reason string) error {
	return fmt.Errorf("handlers: %s: %w", reason, service.ErrInvalidArgument)
}

// pathID читает {id} из пути. Нечисловое значение - 400, знак проверяет сервис.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidArgument("bad id")
	}

	return id, nil
}
