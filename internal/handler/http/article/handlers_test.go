package article_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-api/internal/domain/entity"
	"news-api/internal/handler/http/article"
	"news-api/internal/infra/adapter/persistence/sqlite"
	"news-api/internal/infra/db"
	"news-api/internal/repository"
	artUC "news-api/internal/usecase/article"
)

/* ───────── helpers ───────── */

// newServer wires the article routes over a fresh in-memory SQLite store.
func newServer(t *testing.T, now time.Time) (*httptest.Server, repository.ArticleRepository) {
	t.Helper()
	sqlDB, err := sql.Open(string(db.DriverSQLite), ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	pool := db.NewPool(sqlDB, db.DriverSQLite)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), pool, db.DriverSQLite))

	repo := sqlite.NewArticleRepo(pool)
	return serve(t, repo, now), repo
}

func serve(t *testing.T, repo repository.ArticleRepository, now time.Time) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	article.Register(mux, artUC.Service{Repo: repo, Now: func() time.Time { return now }})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func message(t *testing.T, b []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	msg, _ := m["message"].(string)
	return msg
}

func seed(t *testing.T, repo repository.ArticleRepository, name, title, lang string, date time.Time) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), repository.InsertParams{
		Name: &name, Title: &title, Date: &date, Language: &lang,
	})
	require.NoError(t, err)
	return id
}

func decodeList(t *testing.T, b []byte) []article.DTO {
	t.Helper()
	var out []article.DTO
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func titlesOf(list []article.DTO) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Title)
	}
	return out
}

/* ───────── tests ───────── */

func TestLifecycle(t *testing.T) {
	srv, _ := newServer(t, time.Now())

	code, body := do(t, srv, http.MethodPost, "/news",
		`{"name":"reuters","title":"Rates hold","date":"2024-01-15T09:30:00Z","language":"en","summary":"s"}`)
	require.Equal(t, http.StatusCreated, code, string(body))
	var created article.CreateResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Article added", created.Message)
	require.Positive(t, created.InsertID)
	idPath := "/" + strconv.FormatInt(created.InsertID, 10)

	code, body = do(t, srv, http.MethodGet, "/news"+idPath, "")
	require.Equal(t, http.StatusOK, code)
	var got article.DTO
	require.NoError(t, json.Unmarshal(body, &got))
	summary := "s"
	want := article.DTO{
		ID: created.InsertID, Name: "reuters", Title: "Rates hold", Language: "en",
		Date:    time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		Summary: &summary,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("article mismatch (-want +got):\n%s", diff)
	}

	code, body = do(t, srv, http.MethodPut, "/news/memo"+idPath, `{"memo":"check later"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Memo updated","affectedRows":1}`, string(body))

	code, body = do(t, srv, http.MethodGet, "/news/articleDetails"+idPath, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"summary":"s","keyword":null,"classification":null,"background":null,"memo":"check later"}`, string(body))

	code, body = do(t, srv, http.MethodDelete, "/news"+idPath, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Article deleted","affectedRows":1}`, string(body))

	code, body = do(t, srv, http.MethodGet, "/news"+idPath, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))

	code, body = do(t, srv, http.MethodGet, "/news/articleDetails"+idPath, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"message":"Article not found"}`, string(body))
}

func TestUpdateField_AllRoutes(t *testing.T) {
	srv, repo := newServer(t, time.Now())
	id := seed(t, repo, "reuters", "t", "en", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	for _, f := range entity.UpdatableFields {
		t.Run(string(f), func(t *testing.T) {
			code, body := do(t, srv, http.MethodPut, "/news/"+f.Column()+"/"+strconv.FormatInt(id, 10), `{"`+f.Column()+`":"v"}`)
			require.Equal(t, http.StatusOK, code)

			var resp article.UpdateResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, f.Label()+" updated", resp.Message)
			assert.Equal(t, int64(1), resp.AffectedRows)
		})
	}
}

func TestMutations_NullClearsAndUnknownIDIsNoop(t *testing.T) {
	srv, repo := newServer(t, time.Now())
	id := seed(t, repo, "reuters", "t", "en", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	code, _ := do(t, srv, http.MethodPut, "/news/keyword/"+strconv.FormatInt(id, 10), `{"keyword":"rates"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, srv, http.MethodPut, "/news/keyword/"+strconv.FormatInt(id, 10), `{"keyword":null}`)
	require.Equal(t, http.StatusOK, code)

	a, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, a.Keyword)

	code, body := do(t, srv, http.MethodPut, "/news/keyword/999", `{"keyword":"x"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Keyword updated","affectedRows":0}`, string(body))

	code, body = do(t, srv, http.MethodDelete, "/news/999", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Article deleted","affectedRows":0}`, string(body))
}

func TestFilters(t *testing.T) {
	srv, repo := newServer(t, time.Now())
	seed(t, repo, "reuters", "en-jan", "en", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	seed(t, repo, "lemonde", "fr-jan", "fr", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	seed(t, repo, "reuters", "en-feb", "en", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "language fr january", path: "/news/searchByLanguageAndDate?language=fr&startDate=2024-01-01&endDate=2024-01-31", want: []string{"fr-jan"}},
		{name: "language all january", path: "/news/searchByLanguageAndDate?language=all&startDate=2024-01-01&endDate=2024-01-31", want: []string{"en-jan", "fr-jan"}},
		{name: "name reuters inclusive end", path: "/news/searchByNameAndDate?name=reuters&startDate=2024-01-15&endDate=2024-02-01", want: []string{"en-feb", "en-jan"}},
		{name: "name all", path: "/news/searchByNameAndDate?name=all&startDate=2024-01-01&endDate=2024-12-31", want: []string{"en-feb", "en-jan", "fr-jan"}},
		{name: "no match", path: "/news/searchByNameAndDate?name=ap&startDate=2024-01-01&endDate=2024-12-31", want: []string{}},
		{name: "search keyword", path: "/news/search?keyword=jan", want: []string{"en-jan", "fr-jan"}},
		{name: "search without keyword", path: "/news/search", want: []string{"en-feb", "en-jan", "fr-jan"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, code, string(body))
			assert.Equal(t, tt.want, titlesOf(decodeList(t, body)))
		})
	}
}

func TestFilters_EmptyValueMatchesExactly(t *testing.T) {
	srv, repo := newServer(t, time.Now())
	seed(t, repo, "", "unnamed", "en", time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local))
	seed(t, repo, "reuters", "named", "", time.Date(2024, 1, 16, 9, 0, 0, 0, time.Local))

	for _, tc := range []struct {
		path string
		want []string
	}{
		{"/news/searchByNameAndDate?name=&startDate=2024-01-01&endDate=2024-01-31", []string{"unnamed"}},
		{"/news/searchByNameAndDate?startDate=2024-01-01&endDate=2024-01-31", []string{"unnamed"}},
		{"/news/searchByLanguageAndDate?language=&startDate=2024-01-01&endDate=2024-01-31", []string{"named"}},
	} {
		code, body := do(t, srv, http.MethodGet, tc.path, "")
		require.Equal(t, http.StatusOK, code, string(body))
		assert.Equal(t, tc.want, titlesOf(decodeList(t, body)), tc.path)
	}
}

// withLocalZone swaps time.Local for the duration of a test.
func withLocalZone(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestBodyDatesAreStoredAsServerLocal(t *testing.T) {
	withLocalZone(t, time.FixedZone("JST", 9*60*60))
	srv, _ := newServer(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.Local))

	// 05:00 on March 5 in JST.
	code, body := do(t, srv, http.MethodPost, "/news",
		`{"name":"nhk","title":"morning","date":"2024-03-04T20:00:00Z","language":"ja"}`)
	require.Equal(t, http.StatusCreated, code, string(body))
	var created article.CreateResponse
	require.NoError(t, json.Unmarshal(body, &created))

	code, body = do(t, srv, http.MethodGet, "/news/today", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"morning"}, titlesOf(decodeList(t, body)))

	code, body = do(t, srv, http.MethodGet, "/news/searchByNameAndDate?name=nhk&startDate=2024-03-05&endDate=2024-03-05", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"morning"}, titlesOf(decodeList(t, body)))

	code, body = do(t, srv, http.MethodGet, "/news/"+strconv.FormatInt(created.InsertID, 10), "")
	require.Equal(t, http.StatusOK, code)
	var got article.DTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Date.Equal(time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)), "date round-trip: %v", got.Date)
}

func TestDateOnlyBodyIsLocalMidnight(t *testing.T) {
	withLocalZone(t, time.FixedZone("PST", -8*60*60))
	srv, _ := newServer(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))

	code, body := do(t, srv, http.MethodPost, "/news", `{"name":"ap","title":"x","date":"2024-03-01","language":"en"}`)
	require.Equal(t, http.StatusCreated, code, string(body))
	var created article.CreateResponse
	require.NoError(t, json.Unmarshal(body, &created))

	code, body = do(t, srv, http.MethodGet, "/news/"+strconv.FormatInt(created.InsertID, 10), "")
	require.Equal(t, http.StatusOK, code)
	var got article.DTO
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)), "got %v", got.Date)

	code, body = do(t, srv, http.MethodGet, "/news/today", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"x"}, titlesOf(decodeList(t, body)))
}

func TestEmptyListIsArray(t *testing.T) {
	srv, _ := newServer(t, time.Now())

	code, body := do(t, srv, http.MethodGet, "/news/today", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.Local)
	srv, repo := newServer(t, now)
	seed(t, repo, "reuters", "today-early", "en", time.Date(2024, 3, 5, 0, 0, 1, 0, time.Local))
	seed(t, repo, "reuters", "today-late", "en", time.Date(2024, 3, 5, 23, 59, 59, 0, time.Local))
	seed(t, repo, "reuters", "yesterday", "en", time.Date(2024, 3, 4, 23, 59, 59, 0, time.Local))

	code, body := do(t, srv, http.MethodGet, "/news/today", "")
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, []string{"today-early", "today-late"}, titlesOf(decodeList(t, body)))
}

func TestBadRequests(t *testing.T) {
	srv, _ := newServer(t, time.Now())

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantMsg string
	}{
		{name: "non-numeric id", method: http.MethodGet, path: "/news/abc", wantMsg: "id must be a positive integer"},
		{name: "zero id", method: http.MethodDelete, path: "/news/0", wantMsg: "id must be a positive integer"},
		{name: "details bad id", method: http.MethodGet, path: "/news/articleDetails/x", wantMsg: "id must be a positive integer"},
		{name: "missing startDate", method: http.MethodGet, path: "/news/searchByNameAndDate?name=all&endDate=2024-01-31", wantMsg: "validation error on field 'startDate': is required"},
		{name: "bad endDate", method: http.MethodGet, path: "/news/searchByLanguageAndDate?language=en&startDate=2024-01-01&endDate=31-01-2024", wantMsg: "validation error on field 'endDate': must be YYYY-MM-DD"},
		{name: "malformed json insert", method: http.MethodPost, path: "/news", body: `{"name":`, wantMsg: "invalid JSON body"},
		{name: "bad date insert", method: http.MethodPost, path: "/news", body: `{"name":"a","title":"b","language":"en","date":"yesterday"}`, wantMsg: "date must be YYYY-MM-DD or RFC 3339"},
		{name: "malformed json update", method: http.MethodPut, path: "/news/memo/1", body: `[1,2`, wantMsg: "invalid JSON body"},
		{name: "update missing key", method: http.MethodPut, path: "/news/memo/1", body: `{}`, wantMsg: "validation error on field 'memo': is required (use null to clear)"},
		{name: "update wrong type", method: http.MethodPut, path: "/news/memo/1", body: `{"memo":42}`, wantMsg: "validation error on field 'memo': must be a string or null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.wantMsg, message(t, body))
		})
	}
}

func TestInsertMissingRequiredColumnIsServerError(t *testing.T) {
	srv, _ := newServer(t, time.Now())

	code, body := do(t, srv, http.MethodPost, "/news", `{"name":"reuters","date":"2024-01-15","language":"en"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, string(body))
}

func TestInsertTrailingSlashAndDateOnly(t *testing.T) {
	srv, repo := newServer(t, time.Now())

	code, body := do(t, srv, http.MethodPost, "/news/", `{"name":"ap","title":"x","date":"2024-01-15","language":"en"}`)
	require.Equal(t, http.StatusCreated, code, string(body))

	list, err := repo.FilterByNameAndDate(context.Background(), "ap", repository.DateRange{
		Start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnmatchedRoutes(t *testing.T) {
	srv, _ := newServer(t, time.Now())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/unknown"},
		{http.MethodPatch, "/news/1"},
		{http.MethodPut, "/news/title/1"},
		{http.MethodPost, "/news/1"},
	} {
		code, body := do(t, srv, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, code, tc.method+" "+tc.path)
		assert.Equal(t, "Not Found", message(t, body))
	}
}

/* ───────── storage failures ───────── */

// failingRepo fails every call the way a lost database connection would.
type failingRepo struct {
	repository.ArticleRepository
	err error
}

func (f failingRepo) ListByDate(context.Context, time.Time) ([]*entity.Article, error) {
	return nil, f.err
}

func (f failingRepo) Get(context.Context, int64) (*entity.Article, error) {
	return nil, f.err
}

func (f failingRepo) UpdateField(context.Context, int64, entity.Field, *string) (int64, error) {
	return 0, f.err
}

func TestStorageFailureIsGeneric500(t *testing.T) {
	srv := serve(t, failingRepo{err: errors.New("dial tcp: postgres://app:hunter2@db:5432 refused")}, time.Now())

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/news/today", ""},
		{http.MethodGet, "/news/1", ""},
		{http.MethodPut, "/news/summary/1", `{"summary":"x"}`},
	} {
		code, body := do(t, srv, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.JSONEq(t, `{"message":"Internal Server Error"}`, string(body))
		assert.NotContains(t, string(body), "hunter2")
	}
}
