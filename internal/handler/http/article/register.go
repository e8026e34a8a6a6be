package article

import (
	"net/http"

	"news-api/internal/domain/entity"
	artUC "news-api/internal/usecase/article"
)

// Register mounts the article routes under /news on mux.
func Register(mux *http.ServeMux, svc artUC.Service) {
	mux.Handle("GET /news/today", TodayHandler{svc})
	mux.Handle("GET /news/search", SearchHandler{svc})
	mux.Handle("GET /news/searchByNameAndDate", FilterHandler{Svc: svc, Param: "name"})
	mux.Handle("GET /news/searchByLanguageAndDate", FilterHandler{Svc: svc, Param: "language"})
	mux.Handle("GET /news/articleDetails/{id}", DetailsHandler{svc})
	mux.Handle("GET /news/{id}", GetHandler{svc})

	for _, f := range entity.UpdatableFields {
		mux.Handle("PUT /news/"+f.Column()+"/{id}", UpdateFieldHandler{Svc: svc, Field: f})
	}

	mux.Handle("POST /news", CreateHandler{svc})
	mux.Handle("POST /news/{$}", CreateHandler{svc})
	mux.Handle("DELETE /news/{id}", DeleteHandler{svc})
}
