package memory

import (
	"context"
	"sort"

	"ArticleGate/internal/domain"
)

// GetArticle returns one article.
func (s *Store) GetArticle(_ context.Context, id int64) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.data.articles[id]
	if !ok {
		return domain.Article{}, domain.NotFoundf("article %d not found", id)
	}
	return a, nil
}

// ListArticles filters the catalog with the query predicate, ordered by ID.
func (s *Store) ListArticles(_ context.Context, query domain.CatalogQuery) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Article, 0)
	for _, a := range s.data.articles {
		if query.Matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateArticle inserts an article in an existing domain.
func (s *Store) CreateArticle(_ context.Context, article domain.Article) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.data.domains[article.DomainID]
	if !ok {
		return domain.Article{}, domain.NotFoundf("scientific domain %d not found", article.DomainID)
	}
	now := s.now()
	article.ID = s.nextID()
	article.DomainName = d.Name
	article.MinimumPoints = copyInt(article.MinimumPoints)
	article.CreatedAt = now
	article.UpdatedAt = now
	s.data.articles[article.ID] = article
	return article, nil
}

// UpdateArticle replaces an article's writable fields.
func (s *Store) UpdateArticle(_ context.Context, article domain.Article) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.articles[article.ID]
	if !ok {
		return domain.Article{}, domain.NotFoundf("article %d not found", article.ID)
	}
	d, ok := s.data.domains[article.DomainID]
	if !ok {
		return domain.Article{}, domain.NotFoundf("scientific domain %d not found", article.DomainID)
	}
	article.DomainName = d.Name
	article.MinimumPoints = copyInt(article.MinimumPoints)
	article.CreatedAt = existing.CreatedAt
	article.UpdatedAt = s.now()
	s.data.articles[article.ID] = article
	return article, nil
}

// DeleteArticle removes an article with its reading states and reviews.
func (s *Store) DeleteArticle(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.articles[id]; !ok {
		return domain.NotFoundf("article %d not found", id)
	}
	s.deleteArticleLocked(id)
	return nil
}

func (s *Store) deleteArticleLocked(id int64) {
	delete(s.data.articles, id)
	for key := range s.data.reading {
		if key.article == id {
			delete(s.data.reading, key)
		}
	}
	for key := range s.data.reviews {
		if key.article == id {
			delete(s.data.reviews, key)
		}
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
