package repository

import (
	"context"
	"time"

	"news-api/internal/domain/entity"
)

// MatchAll is the filter value that removes the name or language predicate.
const MatchAll = "all"

// DateLayout is the calendar-date format used for date-range filtering.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar days.
// Only the year, month and day of Start and End are significant.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Bounds returns the range formatted as YYYY-MM-DD strings.
func (r DateRange) Bounds() (start, end string) {
	return r.Start.Format(DateLayout), r.End.Format(DateLayout)
}

// InsertParams carries the caller-supplied columns of a new article.
// A nil pointer is stored as NULL; required columns are enforced by the schema.
type InsertParams struct {
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

type ArticleRepository interface {
	// ListByDate returns the articles whose date falls on the calendar day of day.
	ListByDate(ctx context.Context, day time.Time) ([]*entity.Article, error)
	// SearchByTitle returns articles whose title contains keyword, newest first.
	SearchByTitle(ctx context.Context, keyword string) ([]*entity.Article, error)
	// FilterByNameAndDate returns articles from name within r, newest first.
	// name == MatchAll drops the name predicate.
	FilterByNameAndDate(ctx context.Context, name string, r DateRange) ([]*entity.Article, error)
	// FilterByLanguageAndDate is FilterByNameAndDate on the language column.
	FilterByLanguageAndDate(ctx context.Context, language string, r DateRange) ([]*entity.Article, error)
	// Get returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// GetDetails returns (nil, nil) if the article is not found.
	GetDetails(ctx context.Context, id int64) (*entity.ArticleDetails, error)
	// UpdateField sets one column and returns the affected-row count.
	UpdateField(ctx context.Context, id int64, field entity.Field, value *string) (int64, error)
	// Create inserts a row and returns the generated id.
	Create(ctx context.Context, p InsertParams) (int64, error)
	// Delete returns the affected-row count.
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
