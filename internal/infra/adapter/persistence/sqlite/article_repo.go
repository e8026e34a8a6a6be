// Package sqlite provides SQLite implementations of repository interfaces.
// It is selected with DB_DRIVER=sqlite for local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"news-api/internal/domain/entity"
	"news-api/internal/infra/db"
	"news-api/internal/repository"
)

// timestampLayout is how dates are written so DATE(date) and ORDER BY date work on the text value.
const timestampLayout = "2006-01-02 15:04:05"

// ArticleRepo implements the ArticleRepository interface using SQLite.
type ArticleRepo struct {
	db           db.Querier
	queryBuilder *ArticleQueryBuilder
}

// NewArticleRepo creates a new SQLite-backed article repository.
func NewArticleRepo(q db.Querier) repository.ArticleRepository {
	return &ArticleRepo{db: q, queryBuilder: NewArticleQueryBuilder()}
}

// ListByDate retrieves the articles dated on day's calendar date.
func (repo *ArticleRepo) ListByDate(ctx context.Context, day time.Time) ([]*entity.Article, error) {
	const query = `
SELECT id, name, title, date, language, summary, keyword, classification, background, memo
FROM news
WHERE DATE(date) = ?
`
	rows, err := repo.db.QueryContext(ctx, query, day.Format(repository.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("ListByDate: QueryContext: %w", err)
	}
	return scanArticles(rows, "ListByDate")
}

// SearchByTitle retrieves articles whose title contains keyword, newest first.
func (repo *ArticleRepo) SearchByTitle(ctx context.Context, keyword string) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.SearchByTitle(keyword)
	if err != nil {
		return nil, fmt.Errorf("SearchByTitle: ToSql: %w", err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchByTitle: QueryContext: %w", err)
	}
	return scanArticles(rows, "SearchByTitle")
}

// FilterByNameAndDate retrieves articles by source name within a date range.
func (repo *ArticleRepo) FilterByNameAndDate(ctx context.Context, name string, r repository.DateRange) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.FilterByColumnAndDate("name", name, r)
	if err != nil {
		return nil, fmt.Errorf("FilterByNameAndDate: ToSql: %w", err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FilterByNameAndDate: QueryContext: %w", err)
	}
	return scanArticles(rows, "FilterByNameAndDate")
}

// FilterByLanguageAndDate retrieves articles by language within a date range.
func (repo *ArticleRepo) FilterByLanguageAndDate(ctx context.Context, language string, r repository.DateRange) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.FilterByColumnAndDate("language", language, r)
	if err != nil {
		return nil, fmt.Errorf("FilterByLanguageAndDate: ToSql: %w", err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FilterByLanguageAndDate: QueryContext: %w", err)
	}
	return scanArticles(rows, "FilterByLanguageAndDate")
}

// Get retrieves a single article by ID. Returns nil if not found.
func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT id, name, title, date, language, summary, keyword, classification, background, memo
FROM news
WHERE id = ?
LIMIT 1
`
	var a entity.Article
	err := db.QueryOne(ctx, repo.db, query, []any{id},
		&a.ID, &a.Name, &a.Title, &a.Date, &a.Language,
		&a.Summary, &a.Keyword, &a.Classification, &a.Background, &a.Memo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: QueryOne: %w", err)
	}
	return &a, nil
}

// GetDetails retrieves the annotation columns of an article. Returns nil if not found.
func (repo *ArticleRepo) GetDetails(ctx context.Context, id int64) (*entity.ArticleDetails, error) {
	const query = `
SELECT summary, keyword, classification, background, memo
FROM news
WHERE id = ?
LIMIT 1
`
	var d entity.ArticleDetails
	err := db.QueryOne(ctx, repo.db, query, []any{id},
		&d.Summary, &d.Keyword, &d.Classification, &d.Background, &d.Memo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDetails: QueryOne: %w", err)
	}
	return &d, nil
}

// UpdateField sets one annotation column and reports how many rows changed.
func (repo *ArticleRepo) UpdateField(ctx context.Context, id int64, field entity.Field, value *string) (int64, error) {
	query, args, err := repo.queryBuilder.UpdateField(id, field, value)
	if err != nil {
		return 0, fmt.Errorf("UpdateField: %w", err)
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("UpdateField: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("UpdateField: RowsAffected: %w", err)
	}
	return n, nil
}

// Create inserts a new article and returns its generated ID.
func (repo *ArticleRepo) Create(ctx context.Context, p repository.InsertParams) (int64, error) {
	const query = `
INSERT INTO news (name, title, date, language, summary, keyword, classification, background, memo)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	var date any
	if p.Date != nil {
		date = p.Date.Format(timestampLayout)
	}
	res, err := repo.db.ExecContext(ctx, query,
		str(p.Name), str(p.Title), date, str(p.Language),
		str(p.Summary), str(p.Keyword), str(p.Classification),
		str(p.Background), str(p.Memo),
	)
	if err != nil {
		return 0, fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Create: LastInsertId: %w", err)
	}
	return id, nil
}

// Delete removes an article by ID and reports how many rows were removed.
func (repo *ArticleRepo) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM news WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	return n, nil
}

// Count returns the total number of stored articles.
func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news`
	var count int64
	if err := db.QueryOne(ctx, repo.db, query, nil, &count); err != nil {
		return 0, fmt.Errorf("Count: QueryOne: %w", err)
	}
	return count, nil
}

func scanArticles(rows *sql.Rows, op string) ([]*entity.Article, error) {
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 32)
	for rows.Next() {
		var a entity.Article
		err := rows.Scan(
			&a.ID, &a.Name, &a.Title, &a.Date, &a.Language,
			&a.Summary, &a.Keyword, &a.Classification, &a.Background, &a.Memo)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows.Err: %w", op, err)
	}
	return articles, nil
}

func str(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
