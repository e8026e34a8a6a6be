package postgres

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

type ArticleRepo struct {
	db           db.Querier
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(q db.Querier) repository.ArticleRepository {
	return &ArticleRepo{
		db:           q,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

func (repo *ArticleRepo) ListByDate(ctx context.Context, day time.Time) ([]*entity.Article, error) {
	const query = `
SELECT id, name, title, date, language, summary, keyword, classification, background, memo
FROM news
WHERE DATE(date) = $1`
	rows, err := repo.db.QueryContext(ctx, query, day.Format(repository.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("ListByDate: %w", err)
	}
	return collectArticles(rows, "ListByDate")
}

func (repo *ArticleRepo) SearchByTitle(ctx context.Context, keyword string) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.SearchByTitle(keyword)
	if err != nil {
		return nil, fmt.Errorf("SearchByTitle: build: %w", err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchByTitle: %w", err)
	}
	return collectArticles(rows, "SearchByTitle")
}

func (repo *ArticleRepo) FilterByNameAndDate(ctx context.Context, name string, r repository.DateRange) ([]*entity.Article, error) {
	return repo.filterByColumnAndDate(ctx, "FilterByNameAndDate", "name", name, r)
}

func (repo *ArticleRepo) FilterByLanguageAndDate(ctx context.Context, language string, r repository.DateRange) ([]*entity.Article, error) {
	return repo.filterByColumnAndDate(ctx, "FilterByLanguageAndDate", "language", language, r)
}

func (repo *ArticleRepo) filterByColumnAndDate(ctx context.Context, op, column, value string, r repository.DateRange) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.FilterByColumnAndDate(column, value, r)
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectArticles(rows, op)
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT id, name, title, date, language, summary, keyword, classification, background, memo
FROM news
WHERE id = $1
LIMIT 1`
	var article entity.Article
	err := db.QueryOne(ctx, repo.db, query, []any{id}, articleDest(&article)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &article, nil
}

func (repo *ArticleRepo) GetDetails(ctx context.Context, id int64) (*entity.ArticleDetails, error) {
	const query = `
SELECT summary, keyword, classification, background, memo
FROM news
WHERE id = $1
LIMIT 1`
	var d entity.ArticleDetails
	err := db.QueryOne(ctx, repo.db, query, []any{id},
		&d.Summary, &d.Keyword, &d.Classification, &d.Background, &d.Memo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetDetails: %w", err)
	}
	return &d, nil
}

func (repo *ArticleRepo) UpdateField(ctx context.Context, id int64, field entity.Field, value *string) (int64, error) {
	query, args, err := repo.queryBuilder.UpdateField(id, field, value)
	if err != nil {
		return 0, fmt.Errorf("UpdateField: %w", err)
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("UpdateField: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("UpdateField: RowsAffected: %w", err)
	}
	return n, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, p repository.InsertParams) (int64, error) {
	const query = `
INSERT INTO news
       (name, title, date, language, summary, keyword, classification, background, memo)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	// RETURNING goes through QueryContext so the pool's circuit breaker sees failures.
	rows, err := repo.db.QueryContext(ctx, query,
		nullable(p.Name), nullable(p.Title), nullable(p.Date), nullable(p.Language),
		nullable(p.Summary), nullable(p.Keyword), nullable(p.Classification),
		nullable(p.Background), nullable(p.Memo),
	)
	if err != nil {
		return 0, fmt.Errorf("Create: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("Create: %w", err)
		}
		return 0, fmt.Errorf("Create: no id returned")
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("Create: Scan: %w", err)
	}
	return id, nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM news WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	return n, nil
}

func (repo *ArticleRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news`
	var count int64
	if err := db.QueryOne(ctx, repo.db, query, nil, &count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

/* ───────── scanning ───────── */

// articleDest returns scan destinations in articleColumns order.
func articleDest(a *entity.Article) []any {
	return []any{
		&a.ID, &a.Name, &a.Title, &a.Date, &a.Language,
		&a.Summary, &a.Keyword, &a.Classification, &a.Background, &a.Memo,
	}
}

// collectArticles drains rows into a non-nil slice and closes them.
func collectArticles(rows *sql.Rows, op string) ([]*entity.Article, error) {
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 32)
	for rows.Next() {
		var article entity.Article
		if err := rows.Scan(articleDest(&article)...); err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, &article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return articles, nil
}
