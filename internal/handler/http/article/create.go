package article

import (
	"encoding/json"
	"net/http"

	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

// CreateHandler serves POST /news. Missing required columns are bound as NULL
// and rejected by the schema, which surfaces as a 500.
type CreateHandler struct{ Svc artUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, decodeError(err))
		return
	}

	id, err := h.Svc.Create(r.Context(), artUC.CreateInput{
		Name:           req.Name,
		Title:          req.Title,
		Date:           req.date(),
		Language:       req.Language,
		Summary:        req.Summary,
		Keyword:        req.Keyword,
		Classification: req.Classification,
		Background:     req.Background,
		Memo:           req.Memo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, CreateResponse{Message: "Article added", InsertID: id})
}
