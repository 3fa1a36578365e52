package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	apierrors "github.com/pribylovaa/go-forum-store/internal/errors"
	"github.com/pribylovaa/go-forum-store/internal/models"
)

// Feed - Atom-лента самых новых постов (не более feed.Limit).
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.forum.AllPosts(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	atom, err := buildFeed(h.feed, posts).ToAtom()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(atom))
}

func buildFeed(opts FeedOptions, posts []*models.Node) *feeds.Feed {
	newest := slices.Clone(posts)
	slices.SortStableFunc(newest, func(a, b *models.Node) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Limit > 0 && len(newest) > opts.Limit {
		newest = newest[:opts.Limit]
	}

	base := strings.TrimRight(opts.Link, "/")
	feed := &feeds.Feed{
		Title:   opts.Title,
		Link:    &feeds.Link{Href: base},
		Created: time.Now(),
	}

	for _, p := range newest {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          strconv.FormatInt(p.ID, 10),
			Title:       p.DisplayTitle(),
			Link:        &feeds.Link{Href: base + "/nodes/" + strconv.FormatInt(p.ID, 10)},
			Author:      &feeds.Author{Name: p.Username},
			Description: p.Content,
			Created:     p.CreatedAt,
		})
	}

	return feed
}
