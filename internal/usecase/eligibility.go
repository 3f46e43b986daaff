package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

// EligibilityDeps wires the evaluator's collaborators.
type EligibilityDeps struct {
	Progress *ProgressTracker
	Records  ports.ProgressRepository
	Articles ports.ArticleRepository
	Metrics  ports.EligibilityMetrics
	Logger   *slog.Logger
}

// Eligibility decides which articles a user can open.
type Eligibility struct {
	progress *ProgressTracker
	records  ports.ProgressRepository
	articles ports.ArticleRepository
	metrics  ports.EligibilityMetrics
	logger   *slog.Logger
}

// NewEligibility constructs the evaluator.
func NewEligibility(deps EligibilityDeps) *Eligibility {
	return &Eligibility{
		progress: deps.Progress,
		records:  deps.Records,
		articles: deps.Articles,
		metrics:  deps.Metrics,
		logger:   orDiscard(deps.Logger),
	}
}

// VisibleCatalog returns the articles the user can open right now. A user
// without active interests sees nothing, thresholds or not.
func (e *Eligibility) VisibleCatalog(ctx context.Context, userID uuid.UUID) ([]domain.Article, error) {
	return e.catalog(ctx, userID, domain.CatalogUnlocked)
}

// LockedCatalog returns articles in active domains whose threshold is still above the user's points.
func (e *Eligibility) LockedCatalog(ctx context.Context, userID uuid.UUID) ([]domain.Article, error) {
	return e.catalog(ctx, userID, domain.CatalogLocked)
}

// CanAccess checks one article without materializing the catalog. Anonymous
// principals are denied.
func (e *Eligibility) CanAccess(ctx context.Context, principal domain.Principal, article domain.Article) (bool, error) {
	allowed, err := e.canAccess(ctx, principal, article)
	if err != nil {
		return false, err
	}
	if e.metrics != nil {
		e.metrics.ObserveAccess(allowed)
	}
	return allowed, nil
}

func (e *Eligibility) canAccess(ctx context.Context, principal domain.Principal, article domain.Article) (bool, error) {
	if !principal.Authenticated() {
		return false, nil
	}

	record, err := e.records.GetProgress(ctx, principal.UserID, article.DomainID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load progress: %w", err)
	}
	if !record.Active {
		return false, nil
	}
	if article.MinimumPoints == nil {
		return true, nil
	}

	points, err := e.progress.CurrentPoints(ctx, principal.UserID, article.DomainID)
	if err != nil {
		return false, err
	}
	return article.UnlockedAt(points), nil
}

func (e *Eligibility) catalog(ctx context.Context, userID uuid.UUID, mode domain.CatalogMode) ([]domain.Article, error) {
	points, err := e.progress.ActivePoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		e.observeCatalog(mode, 0)
		return []domain.Article{}, nil
	}

	articles, err := e.articles.ListArticles(ctx, domain.CatalogQuery{Mode: mode, Points: points})
	if err != nil {
		return nil, fmt.Errorf("list %s articles: %w", mode, err)
	}

	e.observeCatalog(mode, len(articles))
	e.logger.Debug("catalog evaluated", "user_id", userID, "mode", mode, "domains", len(points), "articles", len(articles))
	return articles, nil
}

func (e *Eligibility) observeCatalog(mode domain.CatalogMode, size int) {
	if e.metrics != nil {
		e.metrics.ObserveCatalog(mode, size)
	}
}
