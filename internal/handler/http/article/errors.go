package article

import (
	"errors"
	"net/http"

	"news-api/internal/domain/entity"
	"news-api/internal/handler/http/pathutil"
	"news-api/internal/handler/http/respond"
	artUC "news-api/internal/usecase/article"
)

var errInvalidJSON = errors.New("invalid JSON body")

// writeError maps service and decoding errors onto the uniform error body.
// Anything unrecognized is a storage failure: 500, detail logged only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, artUC.ErrArticleNotFound):
		respond.SafeError(w, r, http.StatusNotFound, respond.NewAppError(http.StatusNotFound, "Article not found", err))
	case errors.As(err, &maxErr):
		code := http.StatusRequestEntityTooLarge
		respond.SafeError(w, r, code, respond.NewAppError(code, http.StatusText(code), err))
	case errors.Is(err, artUC.ErrInvalidArticleID),
		errors.Is(err, pathutil.ErrInvalidID),
		errors.Is(err, entity.ErrInvalidField),
		errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, errInvalidJSON),
		errors.Is(err, errDateFormat):
		respond.SafeError(w, r, http.StatusBadRequest, err)
	default:
		respond.SafeError(w, r, http.StatusInternalServerError, err)
	}
}

// decodeError classifies a json.Decoder failure on a request body.
func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, errDateFormat) {
		return err
	}
	return errInvalidJSON
}
