package handlers

import (
	"time"

	"github.com/pribylovaa/go-forum-store/internal/models"
)

type Votes struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// NodeSummary - поля узла без поддерева ответов.
type NodeSummary struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"` // "post" | "reply"
	Title        string    `json:"title,omitempty"`
	DisplayTitle string    `json:"display_title"`
	Content      string    `json:"content"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"created_at"`
	Votes        Votes     `json:"votes"`
	Score        int       `json:"score"`
	ReferencedID int64     `json:"referenced_id,omitempty"` // 0 - ссылки нет
	ReplyCount   int       `json:"reply_count"`             // только прямые ответы
}

// Node - пост или ответ в ответах API; replies вложены рекурсивно.
type Node struct {
	NodeSummary
	Replies []Node `json:"replies"`
}

type ListPostsResponse struct {
	Posts []Node `json:"posts"`
}

// SearchResponse - плоский список совпадений в порядке обхода (пост раньше своих
// ответов). Поддеревья не вкладываются: каждый найденный ответ - отдельный элемент.
type SearchResponse struct {
	Keyword string        `json:"keyword"`
	Nodes   []NodeSummary `json:"nodes"`
}

type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Username string `json:"username"`
}

type AttachReplyRequest struct {
	Content  string `json:"content"`
	Username string `json:"username"`
}

type SetVotesRequest struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

type SetReferenceRequest struct {
	TargetID int64 `json:"target_id"`
}

type EditContentRequest struct {
	Content string `json:"content"`
}

// ReferencedResponse - узел-цель ссылки, разрешённый в момент запроса.
type ReferencedResponse struct {
	ID           int64  `json:"id"`
	DisplayTitle string `json:"display_title"`
	Node         Node   `json:"node"`
}

type ReloadResponse struct {
	Nodes int `json:"nodes"`
}

func summaryFromModel(n *models.Node) NodeSummary {
	return NodeSummary{
		ID:           n.ID,
		Kind:         n.Kind.String(),
		Title:        n.Title,
		DisplayTitle: n.DisplayTitle(),
		Content:      n.Content,
		Username:     n.Username,
		CreatedAt:    n.CreatedAt,
		Votes:        Votes{Up: n.Votes.Up, Down: n.Votes.Down},
		Score:        n.Score(),
		ReferencedID: n.RefID,
		ReplyCount:   len(n.Replies),
	}
}

func summariesFromModel(ns []*models.Node) []NodeSummary {
	out := make([]NodeSummary, 0, len(ns))
	for _, n := range ns {
		out = append(out, summaryFromModel(n))
	}

	return out
}

func nodeFromModel(n *models.Node) Node {
	return Node{
		NodeSummary: summaryFromModel(n),
		Replies:     nodesFromModel(n.Replies),
	}
}

func nodesFromModel(ns []*models.Node) []Node {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		out = append(out, nodeFromModel(n))
	}

	return out
}
