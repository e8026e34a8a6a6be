// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"news-api/internal/domain/entity"
	"news-api/internal/pkg/search"
	"news-api/internal/repository"
)

// articleColumns is the column order every article SELECT scans in.
var articleColumns = []string{
	"id", "name", "title", "date", "language",
	"summary", "keyword", "classification", "background", "memo",
}

// ArticleQueryBuilder builds the article statements whose shape depends on input.
// It uses numbered placeholders ($1, $2, ...) and ILIKE for title search.
type ArticleQueryBuilder struct {
	sb sq.StatementBuilderType
}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (qb *ArticleQueryBuilder) selectArticles() sq.SelectBuilder {
	return qb.sb.Select(articleColumns...).From("news")
}

// SearchByTitle matches keyword as a literal, case-insensitive substring of title.
func (qb *ArticleQueryBuilder) SearchByTitle(keyword string) (string, []any, error) {
	return qb.selectArticles().
		Where("title ILIKE ? ESCAPE '"+search.LikeEscapeChar+"'", search.ContainsPattern(keyword)).
		OrderBy("date DESC").
		ToSql()
}

// FilterByColumnAndDate restricts column to value, unless value is the match-all
// sentinel, and the calendar date to r inclusive. column must be a trusted name.
func (qb *ArticleQueryBuilder) FilterByColumnAndDate(column, value string, r repository.DateRange) (string, []any, error) {
	b := qb.selectArticles()
	if value != repository.MatchAll {
		b = b.Where(sq.Eq{column: value})
	}
	start, end := r.Bounds()
	return b.
		Where("DATE(date) BETWEEN ? AND ?", start, end).
		OrderBy("date DESC").
		ToSql()
}

// UpdateField sets exactly one whitelisted column of one row.
func (qb *ArticleQueryBuilder) UpdateField(id int64, field entity.Field, value *string) (string, []any, error) {
	if !field.Valid() {
		return "", nil, fmt.Errorf("%w: %q", entity.ErrInvalidField, string(field))
	}
	return qb.sb.Update("news").
		Set(field.Column(), nullable(value)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

// nullable converts a nil pointer to an untyped NULL argument.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
