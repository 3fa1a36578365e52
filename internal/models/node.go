// Package models содержит доменные сущности форума: посты и ответы.
package models

import (
	"time"
	"unicode/utf8"
)

// Kind - дискриминант варианта узла.
type Kind uint8

const (
	// KindPost - пост верхнего уровня (есть заголовок).
	KindPost Kind = iota + 1
	// KindReply - ответ на пост или на другой ответ.
	KindReply
)

// String возвращает имя варианта для логов и JSON-ответов.
func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindReply:
		return "reply"
	default:
		return "unknown"
	}
}

// displayTitleLimit - сколько символов контента ответа показывается вместо заголовка.
const displayTitleLimit = 50

// Votes - пара счётчиков голосов. Оба значения неотрицательны.
type Votes struct {
	Up   int
	Down int
}

// Valid сообщает, что оба счётчика неотрицательны.
func (v Votes) Valid() bool {
	return v.Up >= 0 && v.Down >= 0
}

// Node - узел леса: пост или ответ.
// Важно:
//   - ID уникален во всём лесу (посты и ответы любой глубины делят одно пространство id)
//     и не меняется после создания; 0 никогда не выдаётся;
//   - Title заполнен только у постов;
//   - RefID - слабая ссылка на любой узел леса по идентификатору (0 - ссылки нет);
//     узел-цель разрешается через индекс, циклы A->B->A допустимы;
//   - Replies принадлежат этому узлу; ответы только добавляются в конец и не переносятся.
type Node struct {
	ID        int64
	Kind      Kind
	Title     string
	Content   string
	Username  string
	CreatedAt time.Time
	Votes     Votes
	RefID     int64
	Replies   []*Node
}

// NewPost собирает пост без идентификатора: id выдаёт хранилище при вставке.
func NewPost(title, content, username string) *Node {
	return &Node{
		Kind:      KindPost,
		Title:     title,
		Content:   content,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// NewReply собирает ответ без идентификатора.
func NewReply(content, username string) *Node {
	return &Node{
		Kind:      KindReply,
		Content:   content,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// IsPost сообщает, что узел - пост верхнего уровня. Собственный заголовок есть
// только у постов, поэтому этот же признак решает, участвует ли Title в поиске,
// в DisplayTitle и в записи документа.
func (n *Node) IsPost() bool {
	return n.Kind == KindPost
}

// Score = upvotes - downvotes.
func (n *Node) Score() int {
	return n.Votes.Up - n.Votes.Down
}

// SetContent заменяет текст узла.
func (n *Node) SetContent(content string) {
	n.Content = content
}

// SetVotes перезаписывает счётчики абсолютными значениями (не инкремент).
func (n *Node) SetVotes(v Votes) {
	n.Votes = v
}

// SetReference запоминает идентификатор узла-цели.
func (n *Node) SetReference(targetID int64) {
	n.RefID = targetID
}

// ClearReference снимает ссылку.
func (n *Node) ClearReference() {
	n.RefID = 0
}

// HasReference сообщает, задана ли ссылка.
func (n *Node) HasReference() bool {
	return n.RefID != 0
}

// AddReply добавляет ответ в конец списка детей.
func (n *Node) AddReply(reply *Node) {
	n.Replies = append(n.Replies, reply)
}

// DisplayTitle - заголовок для показа, когда на узел кто-то ссылается.
// У поста это его заголовок. У ответа - контент, обрезанный до 50 символов
// с "..." в конце, если он длиннее; иначе контент как есть.
func (n *Node) DisplayTitle() string {
	if n.IsPost() {
		return n.Title
	}

	if utf8.RuneCountInString(n.Content) <= displayTitleLimit {
		return n.Content
	}

	runes := []rune(n.Content)

	return string(runes[:displayTitleLimit]) + "..."
}
