package article

import (
	"net/http"

	"news-api/internal/handler/http/pathutil"
	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

// DeleteHandler serves DELETE /news/{id}. Deleting a missing article is a
// 200 with affectedRows 0.
type DeleteHandler struct{ Svc artUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, UpdateResponse{Message: "Article deleted", AffectedRows: n})
}
