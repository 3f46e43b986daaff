package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
)

// EnsureProfile inserts the profile unless it exists and returns the stored one.
func (s *Store) EnsureProfile(_ context.Context, profile domain.Profile) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data.profiles[profile.UserID]; ok {
		return existing, nil
	}
	profile.CreatedAt = s.now()
	s.data.profiles[profile.UserID] = profile
	return profile, nil
}

// GetProfile returns a provisioned profile.
func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.NotFoundf("profile for user %s not found", userID)
	}
	return p, nil
}

// ListProgress returns the user's records, optionally only the active ones.
func (s *Store) ListProgress(_ context.Context, userID uuid.UUID, activeOnly bool) ([]domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ProgressRecord, 0)
	for key, rec := range s.data.progress {
		if key.user != userID || (activeOnly && !rec.Active) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProgress returns the record for (user, domain) regardless of its state.
func (s *Store) GetProgress(_ context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data.progress[userDomainKey{userID, domainID}]
	if !ok {
		return domain.ProgressRecord{}, domain.NotFoundf("no progress for domain %d", domainID)
	}
	return rec, nil
}

// ActivateProgress creates or reactivates the (user, domain) record.
func (s *Store) ActivateProgress(_ context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.profiles[userID]; !ok {
		return domain.ProgressRecord{}, domain.NotFoundf("profile for user %s not found", userID)
	}
	d, ok := s.data.domains[domainID]
	if !ok {
		return domain.ProgressRecord{}, domain.NotFoundf("scientific domain %d not found", domainID)
	}

	now := s.now()
	key := userDomainKey{userID, domainID}
	rec, ok := s.data.progress[key]
	if !ok {
		rec = domain.ProgressRecord{
			ID:        s.nextID(),
			UserID:    userID,
			DomainID:  domainID,
			CreatedAt: now,
		}
	}
	rec.DomainName = d.Name
	rec.Active = true
	rec.UpdatedAt = now
	s.data.progress[key] = rec
	return rec, nil
}

// DeactivateProgress soft-deletes the listed records.
func (s *Store) DeactivateProgress(_ context.Context, userID uuid.UUID, domainIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, id := range domainIDs {
		key := userDomainKey{userID, id}
		if rec, ok := s.data.progress[key]; ok {
			rec.Active = false
			rec.UpdatedAt = now
			s.data.progress[key] = rec
		}
	}
	return nil
}

// PurgeProgress removes the record entirely.
func (s *Store) PurgeProgress(_ context.Context, userID uuid.UUID, domainID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userDomainKey{userID, domainID}
	if _, ok := s.data.progress[key]; !ok {
		return domain.NotFoundf("no progress for domain %d", domainID)
	}
	delete(s.data.progress, key)
	return nil
}
