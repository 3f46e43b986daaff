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

var errReviewRequiresRead = domain.Validationf("you can only review articles you have read")

// LedgerDeps wires the ledger's driven adapters.
type LedgerDeps struct {
	Tx       ports.Transactor
	Ledger   ports.LedgerRepository
	Articles ports.ArticleRepository
	Logger   *slog.Logger
}

// Ledger records per (user, article) reading progress and reviews.
type Ledger struct {
	tx       ports.Transactor
	ledger   ports.LedgerRepository
	articles ports.ArticleRepository
	logger   *slog.Logger
}

// ReadingUpdate carries the optional fields of a reading-state change.
type ReadingUpdate struct {
	Status      *domain.ReadingStatus
	PageLeftOff *int
}

// NewLedger constructs the ledger.
func NewLedger(deps LedgerDeps) *Ledger {
	return &Ledger{
		tx:       deps.Tx,
		ledger:   deps.Ledger,
		articles: deps.Articles,
		logger:   orDiscard(deps.Logger),
	}
}

// GetOrCreateReadingState returns the existing record untouched or creates one
// with the requested initial values. The boolean reports creation.
func (l *Ledger) GetOrCreateReadingState(ctx context.Context, userID uuid.UUID, articleID int64, initial ReadingUpdate) (domain.ReadingState, bool, error) {
	article, err := l.articles.GetArticle(ctx, articleID)
	if err != nil {
		return domain.ReadingState{}, false, err
	}

	state := domain.ReadingState{
		UserID:    userID,
		ArticleID: articleID,
		Status:    domain.StatusReading,
	}
	if initial.Status != nil {
		if _, err := domain.ParseReadingStatus(string(*initial.Status)); err != nil {
			return domain.ReadingState{}, false, err
		}
		state.Status = *initial.Status
	}
	if initial.PageLeftOff != nil {
		if err := validatePage(article, *initial.PageLeftOff); err != nil {
			return domain.ReadingState{}, false, err
		}
		state.PageLeftOff = *initial.PageLeftOff
	}

	stored, created, err := l.ledger.CreateReadingState(ctx, state)
	if err != nil {
		return domain.ReadingState{}, false, fmt.Errorf("create reading state: %w", err)
	}
	if created {
		l.logger.Debug("reading state created", "user_id", userID, "article_id", articleID, "status", stored.Status)
	}
	return stored, created, nil
}

// GetReadingState returns the caller's record for an article.
func (l *Ledger) GetReadingState(ctx context.Context, userID uuid.UUID, articleID int64) (domain.ReadingState, error) {
	return l.ledger.GetReadingState(ctx, userID, articleID)
}

// ListReadingStates returns every record owned by the user.
func (l *Ledger) ListReadingStates(ctx context.Context, userID uuid.UUID) ([]domain.ReadingState, error) {
	return l.ledger.ListReadingStates(ctx, userID)
}

// UpdateReadingState applies a status and/or position change. Status moves
// forward only: reading -> read -> reviewed.
func (l *Ledger) UpdateReadingState(ctx context.Context, userID uuid.UUID, articleID int64, update ReadingUpdate) (domain.ReadingState, error) {
	state, err := l.ledger.GetReadingState(ctx, userID, articleID)
	if err != nil {
		return domain.ReadingState{}, err
	}

	if update.Status != nil {
		next, err := domain.ParseReadingStatus(string(*update.Status))
		if err != nil {
			return domain.ReadingState{}, err
		}
		if !state.Status.CanAdvanceTo(next) {
			return domain.ReadingState{}, domain.Validationf("cannot move status from %s back to %s", state.Status, next)
		}
		state.Status = next
	}

	if update.PageLeftOff != nil {
		article, err := l.articles.GetArticle(ctx, articleID)
		if err != nil {
			return domain.ReadingState{}, err
		}
		if err := validatePage(article, *update.PageLeftOff); err != nil {
			return domain.ReadingState{}, err
		}
		state.PageLeftOff = *update.PageLeftOff
	}

	updated, err := l.ledger.UpdateReadingState(ctx, state)
	if err != nil {
		return domain.ReadingState{}, fmt.Errorf("update reading state: %w", err)
	}
	return updated, nil
}

// DeleteReadingState removes the caller's record for an article.
func (l *Ledger) DeleteReadingState(ctx context.Context, userID uuid.UUID, articleID int64) error {
	return l.ledger.DeleteReadingState(ctx, userID, articleID)
}

// SubmitReview upserts the caller's score. The reading state must be exactly "read".
func (l *Ledger) SubmitReview(ctx context.Context, userID uuid.UUID, articleID int64, score int) (domain.Review, error) {
	if err := domain.ValidateScore(score); err != nil {
		return domain.Review{}, err
	}

	var review domain.Review
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		state, err := l.ledger.GetReadingState(ctx, userID, articleID)
		if errors.Is(err, domain.ErrNotFound) {
			return errReviewRequiresRead
		}
		if err != nil {
			return err
		}
		if state.Status != domain.StatusRead {
			return errReviewRequiresRead
		}

		review, err = l.ledger.UpsertReview(ctx, domain.Review{
			UserID:    userID,
			ArticleID: articleID,
			Score:     score,
		})
		if err != nil {
			return fmt.Errorf("upsert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	l.logger.Debug("review submitted", "user_id", userID, "article_id", articleID, "score", score)
	return review, nil
}

// GetReview returns the caller's review of an article.
func (l *Ledger) GetReview(ctx context.Context, userID uuid.UUID, articleID int64) (domain.Review, error) {
	return l.ledger.GetReview(ctx, userID, articleID)
}

// ListReviews returns every review written by the user.
func (l *Ledger) ListReviews(ctx context.Context, userID uuid.UUID) ([]domain.Review, error) {
	return l.ledger.ListReviews(ctx, userID)
}

// DeleteReview removes the caller's review of an article.
func (l *Ledger) DeleteReview(ctx context.Context, userID uuid.UUID, articleID int64) error {
	return l.ledger.DeleteReview(ctx, userID, articleID)
}

func validatePage(article domain.Article, page int) error {
	if page < 0 || page > article.PageCount {
		return domain.Validationf("page_left_off must be between 0 and %d", article.PageCount)
	}
	return nil
}
