package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-forum-store/internal/errors"
	"github.com/pribylovaa/go-forum-store/internal/service"
)

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.forum.AllPosts(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ListPostsResponse{Posts: nodesFromModel(posts)})
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in CreatePostRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("bad body"))
		return
	}

	post, err := h.forum.CreatePost(r.Context(), service.CreatePostInput{
		Title:    in.Title,
		Content:  in.Content,
		Username: in.Username,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, nodeFromModel(post))
}

func (h *Handlers) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	n, err := h.forum.NodeByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeFromModel(n))
}

func (h *Handlers) AttachReply(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in AttachReplyRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("bad body"))
		return
	}

	reply, err := h.forum.AttachReply(r.Context(), service.AttachReplyInput{
		ParentID: parentID,
		Content:  in.Content,
		Username: in.Username,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, nodeFromModel(reply))
}

func (h *Handlers) SetVotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in SetVotesRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("bad body"))
		return
	}

	n, err := h.forum.SetVotes(r.Context(), service.SetVotesInput{ID: id, Up: in.Up, Down: in.Down})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeFromModel(n))
}

func (h *Handlers) EditContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in EditContentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("bad body"))
		return
	}

	n, err := h.forum.EditContent(r.Context(), service.EditContentInput{ID: id, Content: in.Content})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeFromModel(n))
}

func (h *Handlers) GetReference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	target, err := h.forum.Referenced(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ReferencedResponse{
		ID:           target.ID,
		DisplayTitle: target.DisplayTitle(),
		Node:         nodeFromModel(target),
	})
}

func (h *Handlers) SetReference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in SetReferenceRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument("bad body"))
		return
	}

	n, err := h.forum.SetReference(r.Context(), service.SetReferenceInput{ID: id, TargetID: in.TargetID})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeFromModel(n))
}

func (h *Handlers) ClearReference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	n, err := h.forum.ClearReference(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeFromModel(n))
}

func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")

	found, err := h.forum.SearchByKeyword(r.Context(), keyword)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Keyword: keyword, Nodes: summariesFromModel(found)})
}
