package forest

import (
	"strings"

	"github.com/pribylovaa/go-forum-store/internal/models"
)

// Search возвращает узлы, у которых keyword без учёта регистра входит в контент,
// заголовок (только у постов) или имя автора. Результат плоский, в порядке обхода All;
// ранжирования и дедупликации нет. Пустой keyword совпадает со всем - валидация
// входа на стороне сервиса.
func Search(posts []*models.Node, keyword string) []*models.Node {
	kw := strings.ToLower(keyword)

	var out []*models.Node
	for n := range All(posts) {
		if matches(n, kw) {
			out = append(out, n)
		}
	}

	return out
}

func matches(n *models.Node, kw string) bool {
	if strings.Contains(strings.ToLower(n.Content), kw) {
		return true
	}

	if n.IsPost() && strings.Contains(strings.ToLower(n.Title), kw) {
		return true
	}

	return strings.Contains(strings.ToLower(n.Username), kw)
}
