package forest

import (
	"cmp"
	"slices"

	"github.com/pribylovaa/go-forum-store/internal/models"
)

// SetVotes находит первый в порядке обхода узел с id и перезаписывает его голоса.
// Если узла нет, лес не меняется и возвращается false.
func SetVotes(posts []*models.Node, id int64, v models.Votes) (*models.Node, bool) {
	n, ok := Find(posts, id)
	if !ok {
		return nil, false
	}

	n.SetVotes(v)

	return n, true
}

// SortReplies устойчиво сортирует каждый список ответов в лесу по убыванию score.
// Ответы с равным score сохраняют относительный порядок. Порядок постов не меняется.
func SortReplies(posts []*models.Node) {
	for n := range All(posts) {
		slices.SortStableFunc(n.Replies, byScoreDesc)
	}
}

func byScoreDesc(a, b *models.Node) int {
	return cmp.Compare(b.Score(), a.Score())
}
