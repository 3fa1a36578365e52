// Package document - хранилище леса постов поверх одного JSON-документа.
//
// Состояние целиком живёт в памяти (лес + индекс id), документ перечитывается при загрузке
// и полностью перезаписывается после каждой мутации. Где физически лежат байты документа,
// решает storage.Backend.
package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pribylovaa/go-forum-store/internal/forest"
	"github.com/pribylovaa/go-forum-store/internal/models"
	"github.com/pribylovaa/go-forum-store/internal/pkg/log"
	"github.com/pribylovaa/go-forum-store/internal/storage"
)

// Observer получает сведения о сохранениях и размере леса (метрики).
type Observer interface {
	ObserveSave(d time.Duration, err error)
	ObserveNodes(n int)
}

// refreshTimeout - дедлайн перечитывания документа при промахе по индексу.
const refreshTimeout = 5 * time.Second

type nopObserver struct{}

func (nopObserver) ObserveSave(time.Duration, error) {}
func (nopObserver) ObserveNodes(int)                 {}

// Options - настройки хранилища.
type Options struct {
	// ReloadOnMiss - при промахе поиска по id один раз перечитать документ и повторить.
	ReloadOnMiss bool
	// Observer - приёмник метрик; nil означает "не собирать".
	Observer Observer
}

// Store - реализация storage.Storage.
// Важно:
//   - индекс принадлежит экземпляру, несколько хранилищ в одном процессе независимы;
//   - чтения разделяют RLock, мутации и перезагрузка исключительны;
//   - между процессами действует last-writer-wins, проверки версий нет.
type Store struct {
	backend storage.Backend
	opts    Options

	mu     sync.RWMutex
	posts  []*models.Node
	index  *forest.Index
	nextID int64
	// dirty - последнее сохранение не удалось, документ отстаёт от памяти.
	dirty bool
}

var _ storage.Storage = (*Store)(nil)

// New создаёт пустое хранилище. Документ читается вызовом LoadAll или Reload.
func New(backend storage.Backend, opts Options) *Store {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	return &Store{
		backend: backend,
		opts:    opts,
		index:   forest.NewIndex(),
		nextID:  1,
	}
}

// LoadAll читает документ и заменяет им состояние в памяти. Ошибкой не завершается:
//   - документа нет - пустой лес;
//   - сбой чтения - лог, пустой лес;
//   - битый документ - лог, остаются посты, прочитанные до сбоя.
//
// Возвращает копии постов верхнего уровня.
func (s *Store) LoadAll(ctx context.Context) []*models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx)

	return cloneAll(s.posts)
}

// SaveAll перезаписывает документ переданным лесом.
func (s *Store) SaveAll(ctx context.Context, posts []*models.Node) error {
	const op = "storage/document/SaveAll"

	doc, err := encode(posts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.backend.Write(ctx, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) loadLocked(ctx context.Context) {
	const op = "storage/document/LoadAll"

	lg := log.From(ctx).With("op", op)

	doc, err := s.backend.Read(ctx)
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound):
		lg.Info("document not found, starting with empty forest")
		doc = nil
	case err != nil:
		lg.Error("document read failed, starting with empty forest", "err", err)
		doc = nil
	}

	res, malformed := decode(ctx, doc)
	if malformed != nil {
		lg.Error("malformed document, keeping records decoded so far",
			"err", malformed, "posts_kept", len(res.posts))
	}

	s.applyLocked(ctx, res)
}

// refreshLocked - перечитывание при промахе по индексу. Состояние в памяти заменяется
// только целиком прочитанным документом: сбой чтения, отсутствие документа или битый
// документ оставляют текущий лес нетронутым. Чтение не зависит от отмены запроса.
func (s *Store) refreshLocked(ctx context.Context) bool {
	const op = "storage/document/refresh"

	lg := log.From(ctx).With("op", op)

	ctx = context.WithoutCancel(ctx)
	rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	doc, err := s.backend.Read(rctx)
	if err != nil {
		lg.Warn("document re-read failed, keeping forest in memory", "err", err)
		return false
	}

	if len(doc) == 0 {
		lg.Warn("document is empty on re-read, keeping forest in memory")
		return false
	}

	res, malformed := decode(ctx, doc)
	if malformed != nil {
		lg.Warn("malformed document on re-read, keeping forest in memory", "err", malformed)
		return false
	}

	s.applyLocked(ctx, res)

	return true
}

func (s *Store) applyLocked(ctx context.Context, res decoded) {
	s.posts = res.posts
	s.index = res.index
	s.nextID = maxID(res.posts) + 1
	s.dirty = false

	nodes := forest.Count(s.posts)
	s.opts.Observer.ObserveNodes(nodes)
	log.From(ctx).Debug("document loaded", "posts", len(s.posts), "nodes", nodes)
}

// saveLocked - общий хвост всех мутаций: синхронная полная перезапись документа.
func (s *Store) saveLocked(ctx context.Context) error {
	started := time.Now()
	err := s.SaveAll(ctx, s.posts)
	s.opts.Observer.ObserveSave(time.Since(started), err)
	s.opts.Observer.ObserveNodes(forest.Count(s.posts))

	if err != nil {
		s.dirty = true
		return fmt.Errorf("%w: %w", storage.ErrSaveFailed, err)
	}

	s.dirty = false

	return nil
}

// lookupLocked ищет узел по индексу; при промахе и включённом ReloadOnMiss один раз
// перечитывает документ. Если в памяти есть несохранённые изменения, перечитывания нет.
func (s *Store) lookupLocked(ctx context.Context, id int64) (*models.Node, bool) {
	if n, ok := s.index.Lookup(id); ok {
		return n, true
	}

	if !s.opts.ReloadOnMiss || s.dirty {
		return nil, false
	}

	log.From(ctx).Debug("index miss, reloading document", "id", id)
	if !s.refreshLocked(ctx) {
		return nil, false
	}

	return s.index.Lookup(id)
}

func (s *Store) assignID(n *models.Node) {
	n.ID = s.nextID
	s.nextID++
}

// Posts - storage.Storage.
func (s *Store) Posts(ctx context.Context) ([]*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.posts), nil
}

// NodeByID - storage.Storage.
func (s *Store) NodeByID(ctx context.Context, id int64) (*models.Node, error) {
	const op = "storage/document/NodeByID"

	s.mu.RLock()
	n, ok := s.index.Lookup(id)
	if ok {
		defer s.mu.RUnlock()
		return clone(n), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok = s.lookupLocked(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return clone(n), nil
}

// Search - storage.Storage.
func (s *Store) Search(ctx context.Context, keyword string) ([]*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(forest.Search(s.posts, keyword)), nil
}

// CreatePost - storage.Storage.
func (s *Store) CreatePost(ctx context.Context, post models.Node) (*models.Node, error) {
	const op = "storage/document/CreatePost"

	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.NewPost(post.Title, post.Content, post.Username)
	s.assignID(n)
	s.index.Register(n)
	s.posts = append(s.posts, n)

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// AttachReply - storage.Storage.
func (s *Store) AttachReply(ctx context.Context, parentID int64, reply models.Node) (*models.Node, error) {
	const op = "storage/document/AttachReply"

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.lookupLocked(ctx, parentID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
	}

	n := models.NewReply(reply.Content, reply.Username)
	s.assignID(n)
	s.index.Register(n)
	parent.AddReply(n)

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// SetVotes - storage.Storage. Узел ищется обходом леса, а не индексом: при коллизии id
// голос получает первый узел в порядке обхода.
func (s *Store) SetVotes(ctx context.Context, id int64, votes models.Votes) (*models.Node, error) {
	const op = "storage/document/SetVotes"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := forest.SetVotes(s.posts, id, votes)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	forest.SortReplies(s.posts)

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// SetReference - storage.Storage. Циклы (A -> B -> A) и ссылка на себя допустимы.
func (s *Store) SetReference(ctx context.Context, id, targetID int64) (*models.Node, error) {
	const op = "storage/document/SetReference"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.lookupLocked(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, ok := s.lookupLocked(ctx, targetID); !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrReferenceNotFound)
	}

	// Перезагрузка при промахе по цели могла заменить узлы, берём n заново.
	if n, ok = s.index.Lookup(id); !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	n.SetReference(targetID)

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// ClearReference - storage.Storage.
func (s *Store) ClearReference(ctx context.Context, id int64) (*models.Node, error) {
	const op = "storage/document/ClearReference"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.lookupLocked(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	n.ClearReference()

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// EditContent - storage.Storage.
func (s *Store) EditContent(ctx context.Context, id int64, content string) (*models.Node, error) {
	const op = "storage/document/EditContent"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.lookupLocked(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	n.SetContent(content)

	if err := s.saveLocked(ctx); err != nil {
		return clone(n), fmt.Errorf("%s: %w", op, err)
	}

	return clone(n), nil
}

// Referenced - storage.Storage.
func (s *Store) Referenced(ctx context.Context, id int64) (*models.Node, error) {
	const op = "storage/document/Referenced"

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.index.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if !n.HasReference() {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrReferenceNotFound)
	}

	target, ok := s.index.Lookup(n.RefID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrReferenceNotFound)
	}

	return clone(target), nil
}

// Save - storage.Storage.
func (s *Store) Save(ctx context.Context) error {
	const op = "storage/document/Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Reload - storage.Storage.
func (s *Store) Reload(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx)

	return forest.Count(s.posts), nil
}

// Dirty сообщает, что последнее сохранение не удалось и документ отстаёт от памяти.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dirty
}

// Close - storage.Storage.
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

// maxID - наибольший id во всём лесу, включая узлы, проигравшие коллизию в индексе.
func maxID(posts []*models.Node) int64 {
	var result int64
	for n := range forest.All(posts) {
		result = max(result, n.ID)
	}

	return result
}

// clone - глубокая копия поддерева.
func clone(n *models.Node) *models.Node {
	return forest.Fold(n, func(n *models.Node, replies []*models.Node) *models.Node {
		c := *n
		c.Replies = replies

		return &c
	})
}

func cloneAll(nodes []*models.Node) []*models.Node {
	out := make([]*models.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, clone(n))
	}

	return out
}
