package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-forum-store/internal/errors"
)

// Save - принудительная запись документа. 204 без тела.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.forum.Save(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reload - перечитать документ; в ответе число узлов после загрузки.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.forum.Reload(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ReloadResponse{Nodes: nodes})
}
