// Package forest реализует алгоритмы над лесом постов и ответов:
// индекс идентификаторов, единый обход в глубину, поиск и обновление голосов.
//
// Все операции работают с узлами, которыми владеет вызывающая сторона (хранилище),
// и не синхронизированы: блокировки - забота владельца.
package forest

import (
	"iter"

	"github.com/pribylovaa/go-forum-store/internal/models"
)

// All - единственный обход леса в глубину (pre-order): пост, затем его ответы,
// затем вложенные ответы каждого ответа. Поиск, голосование, перестройка индекса
// и разрешение ссылок используют именно его, поэтому порядок посещения у них общий.
func All(posts []*models.Node) iter.Seq[*models.Node] {
	return func(yield func(*models.Node) bool) {
		walk(posts, yield)
	}
}

func walk(nodes []*models.Node, yield func(*models.Node) bool) bool {
	for _, n := range nodes {
		if !yield(n) {
			return false
		}

		if !walk(n.Replies, yield) {
			return false
		}
	}

	return true
}

// Find возвращает первый в порядке обхода узел с данным id.
func Find(posts []*models.Node, id int64) (*models.Node, bool) {
	for n := range All(posts) {
		if n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// Count - общее число узлов в лесу.
func Count(posts []*models.Node) int {
	total := 0
	for range All(posts) {
		total++
	}

	return total
}

// Fold сворачивает поддерево снизу вверх: f получает узел и уже свёрнутые ответы
// в их текущем порядке. Используется для сериализации вложенной структуры.
func Fold[T any](n *models.Node, f func(n *models.Node, replies []T) T) T {
	replies := make([]T, 0, len(n.Replies))
	for _, r := range n.Replies {
		replies = append(replies, Fold(r, f))
	}

	return f(n, replies)
}
