package article

import (
	"net/http"
	"time"

	"news-api/internal/domain/entity"
	"news-api/internal/handler/http/respond"
	"news-api/internal/repository"
	artUC "news-api/internal/usecase/article"
)

// SearchHandler serves GET /news/search?keyword=. A missing keyword matches every title.
type SearchHandler struct{ Svc artUC.Service }

func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Svc.SearchByTitle(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

// FilterHandler serves the date-range filters:
//
//	GET /news/searchByNameAndDate?name=&startDate=&endDate=
//	GET /news/searchByLanguageAndDate?language=&startDate=&endDate=
//
// The value "all" for name or language drops that predicate.
type FilterHandler struct {
	Svc artUC.Service
	// Param is the query parameter filtered on: "name" or "language".
	Param string
}

func (h FilterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dr, err := parseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var articles []*entity.Article
	switch h.Param {
	case "language":
		articles, err = h.Svc.FilterByLanguageAndDate(r.Context(), q.Get("language"), dr)
	default:
		articles, err = h.Svc.FilterByNameAndDate(r.Context(), q.Get("name"), dr)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTOs(articles))
}

func parseDateRange(start, end string) (repository.DateRange, error) {
	s, err := parseQueryDate("startDate", start)
	if err != nil {
		return repository.DateRange{}, err
	}
	e, err := parseQueryDate("endDate", end)
	if err != nil {
		return repository.DateRange{}, err
	}
	return repository.DateRange{Start: s, End: e}, nil
}

func parseQueryDate(param, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, &entity.ValidationError{Field: param, Message: "is required"}
	}
	t, err := time.ParseInLocation(repository.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, &entity.ValidationError{Field: param, Message: "must be YYYY-MM-DD"}
	}
	return t, nil
}
