package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"news-api/internal/domain/entity"
	"news-api/internal/observability/metrics"
	"news-api/internal/observability/tracing"
	"news-api/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
// Nil fields are stored as NULL; the storage schema rejects missing required columns.
type CreateInput struct {
	Name           *string
	Title          *string
	Date           *time.Time
	Language       *string
	Summary        *string
	Keyword        *string
	Classification *string
	Background     *string
	Memo           *string
}

// Service provides article management use cases.
type Service struct {
	Repo repository.ArticleRepository
	// Now is the clock used by Today. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today retrieves the articles dated on the current server-local calendar day.
// The day is computed once per call.
func (s *Service) Today(ctx context.Context) (_ []*entity.Article, err error) {
	ctx, done := s.observe(ctx, "list_today")
	defer func() { done(err) }()

	articles, err := s.Repo.ListByDate(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list today's articles: %w", err)
	}
	return articles, nil
}

// SearchByTitle finds articles whose title contains keyword, newest first.
// An empty keyword matches every article.
func (s *Service) SearchByTitle(ctx context.Context, keyword string) (_ []*entity.Article, err error) {
	ctx, done := s.observe(ctx, "search_title")
	defer func() { done(err) }()

	articles, err := s.Repo.SearchByTitle(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search articles by title: %w", err)
	}
	return articles, nil
}

// FilterByNameAndDate returns articles from the named source dated within r.
// repository.MatchAll as name matches every source; any other value,
// including the empty string, matches exactly.
func (s *Service) FilterByNameAndDate(ctx context.Context, name string, r repository.DateRange) (_ []*entity.Article, err error) {
	ctx, done := s.observe(ctx, "filter_name_date", attribute.String("article.name", name))
	defer func() { done(err) }()

	articles, err := s.Repo.FilterByNameAndDate(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("filter articles by name and date: %w", err)
	}
	return articles, nil
}

// FilterByLanguageAndDate returns articles in language dated within r.
// repository.MatchAll as language matches every language; any other value,
// including the empty string, matches exactly.
func (s *Service) FilterByLanguageAndDate(ctx context.Context, language string, r repository.DateRange) (_ []*entity.Article, err error) {
	ctx, done := s.observe(ctx, "filter_language_date", attribute.String("article.language", language))
	defer func() { done(err) }()

	articles, err := s.Repo.FilterByLanguageAndDate(ctx, language, r)
	if err != nil {
		return nil, fmt.Errorf("filter articles by language and date: %w", err)
	}
	return articles, nil
}

// Get retrieves a single article by its ID.
// Returns (nil, nil) if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (_ *entity.Article, err error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	ctx, done := s.observe(ctx, "get", attribute.Int64("article.id", id))
	defer func() { done(err) }()

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// GetDetails retrieves the annotation fields of an article.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) GetDetails(ctx context.Context, id int64) (_ *entity.ArticleDetails, err error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}
	ctx, done := s.observe(ctx, "get_details", attribute.Int64("article.id", id))
	defer func() { done(err) }()

	details, err := s.Repo.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article details: %w", err)
	}
	if details == nil {
		return nil, ErrArticleNotFound
	}
	return details, nil
}

// UpdateField overwrites one annotation field of one article; a nil value clears it.
// It returns the number of affected rows. Zero means no article had that ID,
// which is not an error.
func (s *Service) UpdateField(ctx context.Context, id int64, field entity.Field, value *string) (_ int64, err error) {
	if id <= 0 {
		return 0, ErrInvalidArticleID
	}
	if !field.Valid() {
		return 0, fmt.Errorf("%w: %q", entity.ErrInvalidField, string(field))
	}
	op := "update_" + field.Column()
	ctx, done := s.observe(ctx, op, attribute.Int64("article.id", id))
	defer func() { done(err) }()

	n, err := s.Repo.UpdateField(ctx, id, field, value)
	if err != nil {
		return 0, fmt.Errorf("update article %s: %w", field, err)
	}
	metrics.RecordMutation(op, n)
	return n, nil
}

// Create inserts a new article and returns its generated ID.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ int64, err error) {
	ctx, done := s.observe(ctx, "create")
	defer func() { done(err) }()

	id, err := s.Repo.Create(ctx, repository.InsertParams{
		Name:           in.Name,
		Title:          in.Title,
		Date:           in.Date,
		Language:       in.Language,
		Summary:        in.Summary,
		Keyword:        in.Keyword,
		Classification: in.Classification,
		Background:     in.Background,
		Memo:           in.Memo,
	})
	if err != nil {
		return 0, fmt.Errorf("create article: %w", err)
	}
	return id, nil
}

// Delete removes an article by its ID and returns the number of affected rows.
// Deleting a missing article affects zero rows and is not an error.
func (s *Service) Delete(ctx context.Context, id int64) (_ int64, err error) {
	if id <= 0 {
		return 0, ErrInvalidArticleID
	}
	ctx, done := s.observe(ctx, "delete", attribute.Int64("article.id", id))
	defer func() { done(err) }()

	n, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete article: %w", err)
	}
	metrics.RecordMutation("delete", n)
	return n, nil
}

// Count returns the number of stored articles.
func (s *Service) Count(ctx context.Context) (_ int64, err error) {
	ctx, done := s.observe(ctx, "count")
	defer func() { done(err) }()

	n, err := s.Repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// observe opens a span for op and returns a func that records its latency and outcome.
func (s *Service) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracing.GetTracer().Start(ctx, "article."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	start := time.Now()
	return ctx, func(err error) {
		if errors.Is(err, ErrArticleNotFound) {
			err = nil
		}
		metrics.RecordDBQuery(op, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "article store operation failed")
		}
		span.End()
	}
}
