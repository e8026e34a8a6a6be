package article

import (
	"io"
	"net/http"

	"news-api/internal/domain/entity"
	"news-api/internal/handler/http/pathutil"
	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

// UpdateFieldHandler serves PUT /news/{field}/{id} for one annotation field.
// The body is {"<field>": "value"} or {"<field>": null} to clear it.
// Updating a missing article is a 200 with affectedRows 0.
type UpdateFieldHandler struct {
	Svc   artUC.Service
	Field entity.Field
}

func (h UpdateFieldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, decodeError(err))
		return
	}
	value, err := decodeFieldValue(body, h.Field)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.Svc.UpdateField(r.Context(), id, h.Field, value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, UpdateResponse{
		Message:      h.Field.Label() + " updated",
		AffectedRows: n,
	})
}
