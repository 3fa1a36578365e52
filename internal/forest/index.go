package forest

import "github.com/pribylovaa/go-forum-store/internal/models"

// Index - отображение id -> узел для всего леса (посты и ответы любой глубины).
// Принадлежит конкретному хранилищу, глобального состояния нет.
//
// Правило коллизий: пост всегда занимает слот, ответ регистрируется только если id
// свободен. Так пост никогда не перетирается ответом с тем же id.
type Index struct {
	nodes map[int64]*models.Node
}

// NewIndex создаёт пустой индекс.
func NewIndex() *Index {
	return &Index{nodes: make(map[int64]*models.Node)}
}

// Register добавляет узел в индекс. Возвращает false, если слот остался за другим узлом.
func (ix *Index) Register(n *models.Node) bool {
	existing, ok := ix.nodes[n.ID]
	if ok && existing != n && !n.IsPost() {
		return false
	}

	ix.nodes[n.ID] = n

	return true
}

// Lookup ищет узел по id. Отсутствие - обычный результат, а не ошибка.
func (ix *Index) Lookup(id int64) (*models.Node, bool) {
	n, ok := ix.nodes[id]

	return n, ok
}

// Rebuild полностью пересобирает индекс по лесу.
func (ix *Index) Rebuild(posts []*models.Node) {
	ix.nodes = make(map[int64]*models.Node, len(ix.nodes))
	for n := range All(posts) {
		ix.Register(n)
	}
}

// Len - число зарегистрированных идентификаторов.
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// MaxID - наибольший зарегистрированный id (0 для пустого индекса).
func (ix *Index) MaxID() int64 {
	var maxID int64
	for id := range ix.nodes {
		if id > maxID {
			maxID = id
		}
	}

	return maxID
}
