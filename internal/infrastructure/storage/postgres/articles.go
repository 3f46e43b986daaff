package postgres

import (
	"context"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"ArticleGate/internal/domain"
)

var articleColumns = []string{
	"a.id", "a.domain_id", "d.name", "a.title", "a.content", "a.page_count",
	"a.points", "a.minimum_points", "a.file_ref", "a.created_at", "a.updated_at",
}

func scanArticle(row pgx.Row) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID, &a.DomainID, &a.DomainName, &a.Title, &a.Content, &a.PageCount,
		&a.Points, &a.MinimumPoints, &a.FileRef, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (s *Store) selectArticles() sq.SelectBuilder {
	return s.sb.Select(articleColumns...).
		From("articles a").
		Join("scientific_domains d ON d.id = a.domain_id")
}

// catalogPredicate builds one disjunction of per-domain threshold conditions so
// the whole catalog is filtered in a single statement.
func catalogPredicate(query domain.CatalogQuery) sq.Or {
	ids := make([]int64, 0, len(query.Points))
	for id := range query.Points {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pred := make(sq.Or, 0, len(ids))
	for _, id := range ids {
		points := query.Points[id]
		var threshold sq.Sqlizer
		if query.Mode == domain.CatalogLocked {
			threshold = sq.Gt{"a.minimum_points": points}
		} else {
			threshold = sq.Or{sq.Eq{"a.minimum_points": nil}, sq.LtOrEq{"a.minimum_points": points}}
		}
		pred = append(pred, sq.And{sq.Eq{"a.domain_id": id}, threshold})
	}
	return pred
}

// ListArticles returns the catalog filtered by the query, ordered by ID.
func (s *Store) ListArticles(ctx context.Context, query domain.CatalogQuery) ([]domain.Article, error) {
	b := s.selectArticles().OrderBy("a.id")
	switch query.Mode {
	case domain.CatalogUnlocked, domain.CatalogLocked:
		if len(query.Points) == 0 {
			return []domain.Article{}, nil
		}
		b = b.Where(catalogPredicate(query))
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, mapError("list articles", err, nil)
	}
	articles, err := collect(rows, func(r pgx.Rows) (domain.Article, error) { return scanArticle(r) })
	if err != nil {
		return nil, mapError("list articles", err, nil)
	}
	return articles, nil
}

// GetArticle returns one article with its domain name.
func (s *Store) GetArticle(ctx context.Context, id int64) (domain.Article, error) {
	row, err := s.queryRow(ctx, s.selectArticles().Where(sq.Eq{"a.id": id}))
	if err != nil {
		return domain.Article{}, mapError("get article", err, nil)
	}
	a, err := scanArticle(row)
	if err != nil {
		return domain.Article{}, mapError("get article", err, domain.NotFoundf("article %d not found", id))
	}
	return a, nil
}

// CreateArticle inserts an article and returns the stored row.
func (s *Store) CreateArticle(ctx context.Context, a domain.Article) (domain.Article, error) {
	row, err := s.queryRow(ctx, s.sb.Insert("articles").
		Columns("domain_id", "title", "content", "page_count", "points", "minimum_points", "file_ref").
		Values(a.DomainID, a.Title, a.Content, a.PageCount, a.Points, a.MinimumPoints, a.FileRef).
		Suffix("RETURNING id"))
	if err != nil {
		return domain.Article{}, mapError("create article", err, nil)
	}

	var id int64
	if err := row.Scan(&id); err != nil {
		return domain.Article{}, mapError("create article", err, nil)
	}
	return s.GetArticle(ctx, id)
}

// UpdateArticle overwrites the writable columns.
func (s *Store) UpdateArticle(ctx context.Context, a domain.Article) (domain.Article, error) {
	tag, err := s.exec(ctx, s.sb.Update("articles").
		SetMap(map[string]any{
			"domain_id":      a.DomainID,
			"title":          a.Title,
			"content":        a.Content,
			"page_count":     a.PageCount,
			"points":         a.Points,
			"minimum_points": a.MinimumPoints,
			"file_ref":       a.FileRef,
			"updated_at":     sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": a.ID}))
	if err != nil {
		return domain.Article{}, mapError("update article", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.Article{}, domain.NotFoundf("article %d not found", a.ID)
	}
	return s.GetArticle(ctx, a.ID)
}

// DeleteArticle removes an article; reading states and reviews cascade.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	tag, err := s.exec(ctx, s.sb.Delete("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return mapError("delete article", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("article %d not found", id)
	}
	return nil
}
