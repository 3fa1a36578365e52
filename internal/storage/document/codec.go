package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pribylovaa/go-forum-store/internal/forest"
	"github.com/pribylovaa/go-forum-store/internal/models"
	"github.com/pribylovaa/go-forum-store/internal/pkg/log"
)

// dateLayout - формат даты в документе (MM/dd/yyyy), точность до дня.
const dateLayout = "01/02/2006"

// record - запись поста или ответа в документе.
// У ответа title отсутствует; referencedPostId пишется только при заданной ссылке.
type record struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title,omitempty"`
	Username string          `json:"username"`
	Content  string          `json:"content"`
	Date     string          `json:"date"`
	Votes    json.RawMessage `json:"votes,omitempty"`
	Replies  []record        `json:"replies"`
	RefID    *int64          `json:"referencedPostId,omitempty"`
}

// decoded - результат разбора документа: лес, его индекс и записи для второго прохода.
type decoded struct {
	posts   []*models.Node
	index   *forest.Index
	records []record
}

// decode разбирает документ в два прохода.
//
// Проход 1: записи постов читаются потоково по одной, из каждой рекурсивно строится
// пост с поддеревом ответов, каждый узел регистрируется в индексе.
// Проход 2: записи обходятся повторно, ссылки разрешаются по уже полному индексу,
// поэтому ссылки "вперёд" (A раньше B, A -> B) тоже находят цель.
//
// Битый документ не приводит к ошибке: сохраняются все посты, прочитанные до сбоя,
// а причина возвращается в malformed для логирования.
func decode(ctx context.Context, doc []byte) (res decoded, malformed error) {
	res.index = forest.NewIndex()

	dec := json.NewDecoder(bytes.NewReader(doc))

	tok, err := dec.Token()
	switch {
	case errors.Is(err, io.EOF):
		return res, nil
	case err != nil:
		return res, fmt.Errorf("read document start: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return res, fmt.Errorf("document is not an array: got %v", tok)
	}

	for dec.More() {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			malformed = fmt.Errorf("post record #%d: %w", len(res.records)+1, err)
			break
		}

		res.records = append(res.records, rec)
		res.posts = append(res.posts, buildNode(ctx, rec, models.KindPost, res.index))
	}

	resolveReferences(ctx, res.records, res.posts, res.index)

	return res, malformed
}

// buildNode строит узел и его поддерево, регистрируя каждый узел в индексе.
func buildNode(ctx context.Context, rec record, kind models.Kind, ix *forest.Index) *models.Node {
	n := &models.Node{
		ID:        rec.ID,
		Kind:      kind,
		Content:   rec.Content,
		Username:  rec.Username,
		CreatedAt: parseDate(ctx, rec.ID, rec.Date),
		Votes:     parseVotes(rec.Votes),
	}

	if kind == models.KindPost {
		n.Title = rec.Title
	}

	if !ix.Register(n) {
		log.From(ctx).Debug("id collision: slot kept by post", "id", n.ID)
	}

	for _, r := range rec.Replies {
		n.AddReply(buildNode(ctx, r, models.KindReply, ix))
	}

	return n
}

// resolveReferences - второй проход: записи и построенные узлы обходятся синхронно.
func resolveReferences(ctx context.Context, recs []record, nodes []*models.Node, ix *forest.Index) {
	for i, rec := range recs {
		n := nodes[i]

		if rec.RefID != nil {
			if _, ok := ix.Lookup(*rec.RefID); ok {
				n.SetReference(*rec.RefID)
			} else {
				log.From(ctx).Warn("dangling reference dropped", "id", n.ID, "referenced_id", *rec.RefID)
			}
		}

		resolveReferences(ctx, rec.Replies, n.Replies, ix)
	}
}

// parseVotes принимает только массив из двух неотрицательных целых; всё остальное - (0,0).
func parseVotes(raw json.RawMessage) models.Votes {
	if len(raw) == 0 {
		return models.Votes{}
	}

	var pair []int
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return models.Votes{}
	}

	v := models.Votes{Up: pair[0], Down: pair[1]}
	if !v.Valid() {
		return models.Votes{}
	}

	return v
}

func parseDate(ctx context.Context, id int64, s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		log.From(ctx).Warn("unparseable date", "id", id, "date", s, "err", err)
		return time.Time{}
	}

	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(dateLayout)
}

// encode сериализует лес целиком. Второй проход не нужен: ссылка пишется как id.
func encode(posts []*models.Node) ([]byte, error) {
	recs := make([]record, 0, len(posts))
	for _, p := range posts {
		recs = append(recs, forest.Fold(p, toRecord))
	}

	doc, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return doc, nil
}

func toRecord(n *models.Node, replies []record) record {
	rec := record{
		ID:       n.ID,
		Username: n.Username,
		Content:  n.Content,
		Date:     formatDate(n.CreatedAt),
		Votes:    json.RawMessage(fmt.Sprintf("[%d,%d]", n.Votes.Up, n.Votes.Down)),
		Replies:  replies,
	}

	if n.IsPost() {
		rec.Title = n.Title
	}

	if n.HasReference() {
		ref := n.RefID
		rec.RefID = &ref
	}

	return rec
}
