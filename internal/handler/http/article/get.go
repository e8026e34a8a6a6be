package article

import (
	"encoding/json"
	"net/http"

	"news-api/internal/handler/http/pathutil"
	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

// GetHandler serves GET /news/{id}. A missing article is 200 with a null body.
type GetHandler struct{ Svc artUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a == nil {
		respond.JSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(a))
}

// DetailsHandler serves GET /news/articleDetails/{id}; a missing article is 404.
type DetailsHandler struct{ Svc artUC.Service }

func (h DetailsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.Svc.GetDetails(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDetailsDTO(d))
}
