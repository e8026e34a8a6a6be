package article

import (
	"net/http"

	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

// TodayHandler serves GET /news/today: articles dated on the server's current day.
type TodayHandler struct{ Svc artUC.Service }

func (h TodayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Svc.Today(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}
