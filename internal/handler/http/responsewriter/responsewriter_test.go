package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Defaults(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.Zero(t, w.BytesWritten())
	assert.False(t, w.HeaderWritten())
	assert.Same(t, rec, w.Unwrap())
}

func TestWrap_ReusesExistingWrapper(t *testing.T) {
	outer := Wrap(httptest.NewRecorder())
	inner := Wrap(outer)

	inner.WriteHeader(http.StatusNotFound)
	assert.Same(t, outer, inner)
	assert.Equal(t, http.StatusNotFound, outer.StatusCode())
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	for _, code := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		w := Wrap(rec)
		w.WriteHeader(code)

		assert.Equal(t, code, w.StatusCode())
		assert.Equal(t, code, rec.Code)
		assert.True(t, w.HeaderWritten())
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, w.StatusCode())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	n, err := w.Write([]byte(`{"message":`))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	_, err = w.Write([]byte(`"ok"}`))
	require.NoError(t, err)

	assert.True(t, w.HeaderWritten())
	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.Equal(t, 16, w.BytesWritten())
	assert.Equal(t, `{"message":"ok"}`, rec.Body.String())
}

func TestResponseWriter_InHandlerChain(t *testing.T) {
	var captured *ResponseWriter
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Article not found"}`))
	})

	rec := httptest.NewRecorder()
	captured = Wrap(rec)
	h.ServeHTTP(captured, httptest.NewRequest(http.MethodGet, "/news/articleDetails/9", nil))

	assert.Equal(t, http.StatusNotFound, captured.StatusCode())
	assert.Equal(t, len(`{"message":"Article not found"}`), captured.BytesWritten())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
