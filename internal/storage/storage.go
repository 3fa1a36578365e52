package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-forum-store/internal/models"
)

var (
	// ErrNotFound - узла с таким id нет в лесу.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound - родитель для нового ответа не найден.
	ErrParentNotFound = errors.New("post not found")
	// ErrReferenceNotFound - ссылка не задана или указывает на отсутствующий узел.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrDocumentNotFound - бэкенд ещё не хранит документ (первый запуск).
	ErrDocumentNotFound = errors.New("document not found")
	// ErrSaveFailed - изменение применено в памяти, но документ не удалось перезаписать.
	ErrSaveFailed = errors.New("save failed")
)

// Backend хранит сырые байты единственного документа форума.
// Реализации: file, sqlite, postgres, mongo, minio.
type Backend interface {
	// Read возвращает документ целиком.
	// Если документ ещё не записывался - ErrDocumentNotFound.
	Read(ctx context.Context) ([]byte, error)

	// Write полностью заменяет документ.
	Write(ctx context.Context, doc []byte) error

	// Close освобождает соединения/ресурсы бэкенда.
	Close(ctx context.Context) error
}

// Storage описывает операции над лесом постов и ответов.
// Все возвращаемые узлы - копии: изменять их безопасно, на состояние хранилища это не влияет.
//
// Мутирующие методы завершаются полной перезаписью документа. Если запись не удалась,
// изменение остаётся в памяти, метод возвращает изменённый узел вместе с ошибкой ErrSaveFailed.
type Storage interface {
	// Posts возвращает все посты верхнего уровня с поддеревьями ответов в порядке документа.
	Posts(ctx context.Context) ([]*models.Node, error)

	// NodeByID возвращает пост или ответ любой глубины.
	// Если узла нет - ErrNotFound.
	NodeByID(ctx context.Context, id int64) (*models.Node, error)

	// Search - регистронезависимый поиск по контенту, заголовку (у постов) и имени автора.
	// Пустой результат - не ошибка.
	Search(ctx context.Context, keyword string) ([]*models.Node, error)

	// CreatePost выдаёт посту id, добавляет его в конец леса и сохраняет документ.
	// Входной Node должен содержать Title, Content, Username; ID и Replies игнорируются.
	CreatePost(ctx context.Context, post models.Node) (*models.Node, error)

	// AttachReply добавляет ответ последним ребёнком поста или ответа parentID.
	// Если родителя нет - ErrParentNotFound, ничего не создаётся.
	AttachReply(ctx context.Context, parentID int64, reply models.Node) (*models.Node, error)

	// SetVotes перезаписывает голоса узла и пересортировывает ответы по score.
	// Если узла нет - ErrNotFound, лес не меняется.
	SetVotes(ctx context.Context, id int64, votes models.Votes) (*models.Node, error)

	// SetReference связывает узел id с узлом targetID.
	// ErrNotFound - нет узла id; ErrReferenceNotFound - нет узла targetID.
	SetReference(ctx context.Context, id, targetID int64) (*models.Node, error)

	// ClearReference снимает ссылку узла. Если узла нет - ErrNotFound.
	ClearReference(ctx context.Context, id int64) (*models.Node, error)

	// EditContent заменяет текст узла. Если узла нет - ErrNotFound.
	EditContent(ctx context.Context, id int64, content string) (*models.Node, error)

	// Referenced разрешает ссылку узла id через индекс и возвращает узел-цель.
	// ErrNotFound - нет узла id; ErrReferenceNotFound - ссылки нет или цель отсутствует.
	Referenced(ctx context.Context, id int64) (*models.Node, error)

	// Save перезаписывает документ текущим состоянием.
	Save(ctx context.Context) error

	// Reload перечитывает документ, заменяя состояние в памяти. Возвращает число узлов.
	Reload(ctx context.Context) (int, error)

	// Close закрывает бэкенд.
	Close(ctx context.Context) error
}
