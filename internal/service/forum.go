package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pribylovaa/go-forum-store/internal/models"
	"github.com/pribylovaa/go-forum-store/internal/pkg/log"
	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Входные структуры сервисного слоя.

// CreatePostInput - новый пост верхнего уровня. Все поля обязательны.
type CreatePostInput struct {
	Title    string
	Content  string
	Username string
}

// AttachReplyInput - ответ на пост или на другой ответ.
type AttachReplyInput struct {
	ParentID int64
	Content  string
	Username string
}

// SetVotesInput - абсолютные значения голосов (не инкремент).
type SetVotesInput struct {
	ID   int64
	Up   int
	Down int
}

// SetReferenceInput - ссылка узла ID на узел TargetID.
type SetReferenceInput struct {
	ID       int64
	TargetID int64
}

// EditContentInput - замена текста узла.
type EditContentInput struct {
	ID      int64
	Content string
}

// AllPosts - все посты верхнего уровня с ответами в порядке документа.
func (s *Service) AllPosts(ctx context.Context) ([]*models.Node, error) {
	const op = "service/forum/AllPosts"

	posts, err := s.storage.Posts(ctx)
	if err != nil {
		log.From(ctx).With("op", op).Error("storage error on Posts", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return posts, nil
}

// NodeByID - пост или ответ любой глубины.
//
// Поведение/ошибки:
//   - ErrInvalidArgument - id <= 0;
//   - ErrNotFound - узла нет;
//   - ErrInternal - иные ошибки стораджа.
func (s *Service) NodeByID(ctx context.Context, id int64) (*models.Node, error) {
	const op = "service/forum/NodeByID"

	lg := log.From(ctx).With("op", op, "id", id)

	if id <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.NodeByID(ctx, id)
	if err != nil {
		return nil, s.mapError(lg, op, "NodeByID", err)
	}

	return n, nil
}

// SearchByKeyword - регистронезависимый поиск по контенту, заголовкам постов и авторам.
// Пустой (после TrimSpace) keyword отклоняется до обращения к хранилищу.
func (s *Service) SearchByKeyword(ctx context.Context, keyword string) ([]*models.Node, error) {
	const op = "service/forum/SearchByKeyword"

	keyword = strings.TrimSpace(keyword)
	lg := log.From(ctx).With("op", op, "keyword", keyword)

	if keyword == "" {
		lg.Warn("invalid argument: empty keyword")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	found, err := s.storage.Search(ctx, keyword)
	if err != nil {
		return nil, s.mapError(lg, op, "Search", err)
	}

	return found, nil
}

// CreatePost - создание поста.
//
// Валидация: Title, Content, Username нормализуются (TrimSpace) и не должны быть пустыми.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*models.Node, error) {
	const op = "service/forum/CreatePost"

	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Username = strings.TrimSpace(in.Username)

	lg := log.From(ctx).With("op", op, "username", in.Username)

	if in.Title == "" {
		lg.Warn("invalid argument: empty title")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Username == "" {
		lg.Warn("invalid argument: empty username")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.CreatePost(ctx, models.Node{
		Title:    in.Title,
		Content:  in.Content,
		Username: in.Username,
	})

	return s.mutationResult(lg, op, "CreatePost", n, err)
}

// AttachReply - ответ последним ребёнком поста или ответа.
//
// Поведение/ошибки:
//   - ErrInvalidArgument - ParentID <= 0, пустые Content/Username;
//   - ErrParentNotFound - родителя нет, ничего не создаётся.
func (s *Service) AttachReply(ctx context.Context, in AttachReplyInput) (*models.Node, error) {
	const op = "service/forum/AttachReply"

	in.Content = strings.TrimSpace(in.Content)
	in.Username = strings.TrimSpace(in.Username)

	lg := log.From(ctx).With("op", op, "parent_id", in.ParentID, "username", in.Username)

	if in.ParentID <= 0 {
		lg.Warn("invalid argument: non-positive parent_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Username == "" {
		lg.Warn("invalid argument: empty username")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.AttachReply(ctx, in.ParentID, models.Node{
		Content:  in.Content,
		Username: in.Username,
	})

	return s.mutationResult(lg, op, "AttachReply", n, err)
}

// SetVotes - перезапись голосов узла абсолютными значениями.
// Ответы во всём лесу пересортировываются по score (стабильно).
//
// Поведение/ошибки:
//   - ErrInvalidArgument - id <= 0 или отрицательные голоса;
//   - ErrNotFound - узла нет, ничего не меняется.
func (s *Service) SetVotes(ctx context.Context, in SetVotesInput) (*models.Node, error) {
	const op = "service/forum/SetVotes"

	lg := log.From(ctx).With("op", op, "id", in.ID, "up", in.Up, "down", in.Down)

	if in.ID <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	votes := models.Votes{Up: in.Up, Down: in.Down}
	if !votes.Valid() {
		lg.Warn("invalid argument: negative votes")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.SetVotes(ctx, in.ID, votes)

	return s.mutationResult(lg, op, "SetVotes", n, err)
}

// SetReference - слабая ссылка узла на другой узел по id. Циклы допустимы.
//
// Поведение/ошибки:
//   - ErrInvalidArgument - id или target_id <= 0 (отклоняется до поиска);
//   - ErrNotFound - нет узла id;
//   - ErrReferenceNotFound - нет узла target_id.
func (s *Service) SetReference(ctx context.Context, in SetReferenceInput) (*models.Node, error) {
	const op = "service/forum/SetReference"

	lg := log.From(ctx).With("op", op, "id", in.ID, "target_id", in.TargetID)

	if in.ID <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.TargetID <= 0 {
		lg.Warn("invalid argument: non-positive target_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.SetReference(ctx, in.ID, in.TargetID)

	return s.mutationResult(lg, op, "SetReference", n, err)
}

// ClearReference - снятие ссылки узла.
func (s *Service) ClearReference(ctx context.Context, id int64) (*models.Node, error) {
	const op = "service/forum/ClearReference"

	lg := log.From(ctx).With("op", op, "id", id)

	if id <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.ClearReference(ctx, id)

	return s.mutationResult(lg, op, "ClearReference", n, err)
}

// EditContent - замена текста поста или ответа. Content не должен быть пустым.
func (s *Service) EditContent(ctx context.Context, in EditContentInput) (*models.Node, error) {
	const op = "service/forum/EditContent"

	in.Content = strings.TrimSpace(in.Content)
	lg := log.From(ctx).With("op", op, "id", in.ID)

	if in.ID <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.EditContent(ctx, in.ID, in.Content)

	return s.mutationResult(lg, op, "EditContent", n, err)
}

// Referenced - узел, на который ссылается id (разрешение по индексу в момент запроса).
func (s *Service) Referenced(ctx context.Context, id int64) (*models.Node, error) {
	const op = "service/forum/Referenced"

	lg := log.From(ctx).With("op", op, "id", id)

	if id <= 0 {
		lg.Warn("invalid argument: non-positive id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	target, err := s.storage.Referenced(ctx, id)
	if err != nil {
		return nil, s.mapError(lg, op, "Referenced", err)
	}

	return target, nil
}

// Save - явная перезапись документа текущим состоянием.
// В отличие от мутаций, ошибка записи здесь всегда возвращается.
func (s *Service) Save(ctx context.Context) error {
	const op = "service/forum/Save"

	if err := s.storage.Save(ctx); err != nil {
		log.From(ctx).With("op", op).Error("storage error on Save", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// Reload - перечитать документ, отбросив состояние в памяти. Возвращает число узлов.
func (s *Service) Reload(ctx context.Context) (int, error) {
	const op = "service/forum/Reload"

	lg := log.From(ctx).With("op", op)

	nodes, err := s.storage.Reload(ctx)
	if err != nil {
		lg.Error("storage error on Reload", "err", err)
		return 0, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("document reloaded", "nodes", nodes)

	return nodes, nil
}

// mutationResult применяет политику сохранения: при ErrSaveFailed изменение уже в памяти,
// и без strict_save клиент получает успешный результат, а сбой только логируется.
func (s *Service) mutationResult(lg *slog.Logger, op, method string, n *models.Node, err error) (*models.Node, error) {
	if err == nil {
		return n, nil
	}

	if errors.Is(err, storage.ErrSaveFailed) {
		if s.cfg.Storage.StrictSave {
			lg.Error("document save failed", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		lg.Warn("document save failed, change kept in memory", "err", err)

		return n, nil
	}

	return nil, s.mapError(lg, op, method, err)
}

// mapError переводит ошибки стораджа в сервисные.
func (s *Service) mapError(lg *slog.Logger, op, method string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("node not found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrParentNotFound):
		lg.Warn("parent not found")
		return fmt.Errorf("%s: %w", op, ErrParentNotFound)
	case errors.Is(err, storage.ErrReferenceNotFound):
		lg.Warn("reference not found")
		return fmt.Errorf("%s: %w", op, ErrReferenceNotFound)
	default:
		lg.Error("storage error on "+method, "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}
