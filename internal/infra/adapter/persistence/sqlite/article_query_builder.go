package sqlite

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"news-api/internal/domain/entity"
	"news-api/internal/pkg/search"
	"news-api/internal/repository"
)

var articleColumns = []string{
	"id", "name", "title", "date", "language",
	"summary", "keyword", "classification", "background", "memo",
}

// ArticleQueryBuilder builds the article statements whose shape depends on input.
// SQLite takes "?" placeholders, and its LIKE is already case-insensitive for ASCII.
type ArticleQueryBuilder struct {
	sb sq.StatementBuilderType
}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (qb *ArticleQueryBuilder) selectArticles() sq.SelectBuilder {
	return qb.sb.Select(articleColumns...).From("news")
}

// SearchByTitle matches keyword as a literal substring of title.
func (qb *ArticleQueryBuilder) SearchByTitle(keyword string) (string, []any, error) {
	return qb.selectArticles().
		Where("title LIKE ? ESCAPE '"+search.LikeEscapeChar+"'", search.ContainsPattern(keyword)).
		OrderBy("date DESC").
		ToSql()
}

// FilterByColumnAndDate restricts column to value (skipped for the match-all
// sentinel) and DATE(date) to r inclusive.
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
	var arg any
	if value != nil {
		arg = *value
	}
	return qb.sb.Update("news").
		Set(field.Column(), arg).
		Where(sq.Eq{"id": id}).
		ToSql()
}
