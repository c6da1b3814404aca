package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mdshelf/mdshelf/internal/handler/dto"
)

// GetUser handles GET /users/{id}. Any authenticated caller may look up
// any user; only the public projection is returned.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToUserResponse(user), "")
}
