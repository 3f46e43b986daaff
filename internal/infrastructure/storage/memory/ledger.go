package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
)

// SumPoints totals finished articles per requested domain.
func (s *Store) SumPoints(_ context.Context, userID uuid.UUID, domainIDs []int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[int64]int, len(domainIDs))
	for _, id := range domainIDs {
		totals[id] = 0
	}
	for key, rs := range s.data.reading {
		if key.user != userID || !rs.Status.Finished() {
			continue
		}
		a, ok := s.data.articles[key.article]
		if !ok {
			continue
		}
		if _, wanted := totals[a.DomainID]; wanted {
			totals[a.DomainID] += a.Points
		}
	}
	return totals, nil
}

// CreateReadingState inserts unless a record exists for (user, article).
func (s *Store) CreateReadingState(_ context.Context, rs domain.ReadingState) (domain.ReadingState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userArticleKey{rs.UserID, rs.ArticleID}
	if existing, ok := s.data.reading[key]; ok {
		return existing, false, nil
	}
	if _, ok := s.data.articles[rs.ArticleID]; !ok {
		return domain.ReadingState{}, false, domain.NotFoundf("article %d not found", rs.ArticleID)
	}
	now := s.now()
	rs.ID = s.nextID()
	rs.CreatedAt = now
	rs.UpdatedAt = now
	s.data.reading[key] = rs
	return rs, true, nil
}

// GetReadingState returns the (user, article) record.
func (s *Store) GetReadingState(_ context.Context, userID uuid.UUID, articleID int64) (domain.ReadingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, ok := s.data.reading[userArticleKey{userID, articleID}]
	if !ok {
		return domain.ReadingState{}, domain.NotFoundf("no reading state for article %d", articleID)
	}
	return rs, nil
}

// ListReadingStates returns the user's records ordered by ID.
func (s *Store) ListReadingStates(_ context.Context, userID uuid.UUID) ([]domain.ReadingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ReadingState, 0)
	for key, rs := range s.data.reading {
		if key.user == userID {
			out = append(out, rs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateReadingState persists status and position.
func (s *Store) UpdateReadingState(_ context.Context, rs domain.ReadingState) (domain.ReadingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userArticleKey{rs.UserID, rs.ArticleID}
	existing, ok := s.data.reading[key]
	if !ok {
		return domain.ReadingState{}, domain.NotFoundf("no reading state for article %d", rs.ArticleID)
	}
	existing.Status = rs.Status
	existing.PageLeftOff = rs.PageLeftOff
	existing.UpdatedAt = s.now()
	s.data.reading[key] = existing
	return existing, nil
}

// DeleteReadingState removes the (user, article) record.
func (s *Store) DeleteReadingState(_ context.Context, userID uuid.UUID, articleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userArticleKey{userID, articleID}
	if _, ok := s.data.reading[key]; !ok {
		return domain.NotFoundf("no reading state for article %d", articleID)
	}
	delete(s.data.reading, key)
	return nil
}

// UpsertReview inserts or overwrites the score for (user, article).
func (s *Store) UpsertReview(_ context.Context, r domain.Review) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := userArticleKey{r.UserID, r.ArticleID}
	existing, ok := s.data.reviews[key]
	if !ok {
		existing = domain.Review{
			ID:        s.nextID(),
			UserID:    r.UserID,
			ArticleID: r.ArticleID,
			CreatedAt: now,
		}
	}
	existing.Score = r.Score
	existing.UpdatedAt = now
	s.data.reviews[key] = existing
	return existing, nil
}

// GetReview returns the (user, article) review.
func (s *Store) GetReview(_ context.Context, userID uuid.UUID, articleID int64) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data.reviews[userArticleKey{userID, articleID}]
	if !ok {
		return domain.Review{}, domain.NotFoundf("no review for article %d", articleID)
	}
	return r, nil
}

// ListReviews returns the user's reviews ordered by ID.
func (s *Store) ListReviews(_ context.Context, userID uuid.UUID) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Review, 0)
	for key, r := range s.data.reviews {
		if key.user == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteReview removes the (user, article) review.
func (s *Store) DeleteReview(_ context.Context, userID uuid.UUID, articleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userArticleKey{userID, articleID}
	if _, ok := s.data.reviews[key]; !ok {
		return domain.NotFoundf("no review for article %d", articleID)
	}
	delete(s.data.reviews, key)
	return nil
}
