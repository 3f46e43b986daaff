package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

// CatalogDeps wires the catalog's collaborators.
type CatalogDeps struct {
	Articles    ports.ArticleRepository
	Domains     *DomainRegistry
	Eligibility *Eligibility
	Blobs       ports.BlobResolver
	Content     ports.ContentPolicy
	Logger      *slog.Logger
}

// Catalog serves article CRUD and access-checked retrieval.
type Catalog struct {
	articles    ports.ArticleRepository
	domains     *DomainRegistry
	eligibility *Eligibility
	blobs       ports.BlobResolver
	content     ports.ContentPolicy
	logger      *slog.Logger
}

// ArticleView is an article enriched for presentation.
type ArticleView struct {
	domain.Article
	FileURL string
	Excerpt string
}

// ArticleInput carries the writable article fields. Nil fields are left
// unchanged on update and defaulted on create.
type ArticleInput struct {
	DomainName    *string
	Title         *string
	Content       *string
	PageCount     *int
	Points        *int
	MinimumPoints **int
	FileRef       *string
}

// NewCatalog constructs the catalog.
func NewCatalog(deps CatalogDeps) *Catalog {
	return &Catalog{
		articles:    deps.Articles,
		domains:     deps.Domains,
		eligibility: deps.Eligibility,
		blobs:       deps.Blobs,
		content:     deps.Content,
		logger:      orDiscard(deps.Logger),
	}
}

// Browse returns the caller's visible catalog.
func (c *Catalog) Browse(ctx context.Context, userID uuid.UUID) ([]ArticleView, error) {
	articles, err := c.eligibility.VisibleCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.views(articles)
}

// Upcoming returns the caller's locked articles.
func (c *Catalog) Upcoming(ctx context.Context, userID uuid.UUID) ([]ArticleView, error) {
	articles, err := c.eligibility.LockedCatalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.views(articles)
}

// Get returns one article if the principal may open it.
func (c *Catalog) Get(ctx context.Context, principal domain.Principal, id int64) (ArticleView, error) {
	if !principal.Authenticated() {
		return ArticleView{}, domain.Permissionf("authentication required")
	}

	article, err := c.articles.GetArticle(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}

	allowed, err := c.eligibility.CanAccess(ctx, principal, article)
	if err != nil {
		return ArticleView{}, err
	}
	if !allowed {
		return ArticleView{}, domain.Permissionf("article %d requires an active interest in %s and enough points", id, article.DomainName)
	}

	return c.view(article)
}

// Create adds an article. Admin only.
func (c *Catalog) Create(ctx context.Context, principal domain.Principal, input ArticleInput) (ArticleView, error) {
	if err := requireAdmin(principal); err != nil {
		return ArticleView{}, err
	}
	if input.DomainName == nil {
		return ArticleView{}, domain.Validationf("scientific_domain is required")
	}

	var article domain.Article
	if err := c.apply(ctx, &article, input); err != nil {
		return ArticleView{}, err
	}

	created, err := c.articles.CreateArticle(ctx, article)
	if err != nil {
		return ArticleView{}, fmt.Errorf("create article: %w", err)
	}
	c.logger.Info("article created", "article_id", created.ID, "domain", created.DomainName, "by", principal.UserID)
	return c.view(created)
}

// Update changes the supplied fields of an article. Admin only.
func (c *Catalog) Update(ctx context.Context, principal domain.Principal, id int64, input ArticleInput) (ArticleView, error) {
	if err := requireAdmin(principal); err != nil {
		return ArticleView{}, err
	}

	article, err := c.articles.GetArticle(ctx, id)
	if err != nil {
		return ArticleView{}, err
	}
	if err := c.apply(ctx, &article, input); err != nil {
		return ArticleView{}, err
	}

	updated, err := c.articles.UpdateArticle(ctx, article)
	if err != nil {
		return ArticleView{}, fmt.Errorf("update article: %w", err)
	}
	return c.view(updated)
}

// Delete removes an article and its ledger entries. Admin only.
func (c *Catalog) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := c.articles.DeleteArticle(ctx, id); err != nil {
		return err
	}
	c.logger.Info("article deleted", "article_id", id, "by", principal.UserID)
	return nil
}

func (c *Catalog) apply(ctx context.Context, article *domain.Article, input ArticleInput) error {
	if input.DomainName != nil {
		resolved, err := c.domains.Resolve(ctx, []string{*input.DomainName})
		if err != nil {
			return err
		}
		if len(resolved) == 0 {
			return domain.Validationf("scientific_domain is required")
		}
		article.DomainID = resolved[0].ID
		article.DomainName = resolved[0].Name
	}
	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Content != nil {
		article.Content = *input.Content
		if c.content != nil {
			article.Content = c.content.Sanitize(article.Content)
		}
	}
	if input.PageCount != nil {
		article.PageCount = *input.PageCount
	}
	if input.Points != nil {
		article.Points = *input.Points
	}
	if input.MinimumPoints != nil {
		article.MinimumPoints = *input.MinimumPoints
	}
	if input.FileRef != nil {
		article.FileRef = *input.FileRef
	}
	return article.Validate()
}

func (c *Catalog) views(articles []domain.Article) ([]ArticleView, error) {
	out := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		v, err := c.view(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Catalog) view(article domain.Article) (ArticleView, error) {
	v := ArticleView{Article: article}
	if article.FileRef != "" && c.blobs != nil {
		u, err := c.blobs.Resolve(article.FileRef)
		if err != nil {
			return ArticleView{}, fmt.Errorf("resolve file for article %d: %w", article.ID, err)
		}
		v.FileURL = u
	}
	if c.content != nil {
		v.Excerpt = c.content.Excerpt(article.Content)
	}
	return v, nil
}

func requireAdmin(principal domain.Principal) error {
	if !principal.Authenticated() {
		return domain.Permissionf("authentication required")
	}
	if !principal.Admin {
		return domain.Permissionf("admin privileges required")
	}
	return nil
}
