// Package memory is an in-process Store used for local runs and tests. It
// enforces the same uniqueness constraints as the Postgres schema.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

type userDomainKey struct {
	user   uuid.UUID
	domain int64
}

type userArticleKey struct {
	user    uuid.UUID
	article int64
}

type state struct {
	seq      int64
	domains  map[int64]domain.ScientificDomain
	articles map[int64]domain.Article
	profiles map[uuid.UUID]domain.Profile
	progress map[userDomainKey]domain.ProgressRecord
	reading  map[userArticleKey]domain.ReadingState
	reviews  map[userArticleKey]domain.Review
}

func (s *state) clone() *state {
	return &state{
		seq:      s.seq,
		domains:  maps.Clone(s.domains),
		articles: maps.Clone(s.articles),
		profiles: maps.Clone(s.profiles),
		progress: maps.Clone(s.progress),
		reading:  maps.Clone(s.reading),
		reviews:  maps.Clone(s.reviews),
	}
}

// Store keeps every table in maps guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

var _ ports.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		data: &state{
			domains:  map[int64]domain.ScientificDomain{},
			articles: map[int64]domain.Article{},
			profiles: map[uuid.UUID]domain.Profile{},
			progress: map[userDomainKey]domain.ProgressRecord{},
			reading:  map[userArticleKey]domain.ReadingState{},
			reviews:  map[userArticleKey]domain.Review{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

// WithinTx serializes transactions and restores the previous snapshot when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

// ListDomains returns all domains.
func (s *Store) ListDomains(_ context.Context) ([]domain.ScientificDomain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ScientificDomain, 0, len(s.data.domains))
	for _, d := range s.data.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetDomain returns one domain.
func (s *Store) GetDomain(_ context.Context, id int64) (domain.ScientificDomain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.data.domains[id]
	if !ok {
		return domain.ScientificDomain{}, domain.NotFoundf("scientific domain %d not found", id)
	}
	return d, nil
}

// FindDomainsByName returns the domains whose names are listed.
func (s *Store) FindDomainsByName(_ context.Context, names []string) ([]domain.ScientificDomain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []domain.ScientificDomain
	for _, d := range s.data.domains {
		if _, ok := wanted[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// CreateDomain inserts a domain with a unique name.
func (s *Store) CreateDomain(_ context.Context, name string) (domain.ScientificDomain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.domainNameTaken(name, 0) {
		return domain.ScientificDomain{}, domain.Validationf("scientific domain %q already exists", name)
	}
	d := domain.ScientificDomain{ID: s.nextID(), Name: name}
	s.data.domains[d.ID] = d
	return d, nil
}

// RenameDomain changes a domain's name, keeping it unique.
func (s *Store) RenameDomain(_ context.Context, id int64, name string) (domain.ScientificDomain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.data.domains[id]
	if !ok {
		return domain.ScientificDomain{}, domain.NotFoundf("scientific domain %d not found", id)
	}
	if s.domainNameTaken(name, id) {
		return domain.ScientificDomain{}, domain.Validationf("scientific domain %q already exists", name)
	}
	d.Name = name
	s.data.domains[id] = d

	for aid, a := range s.data.articles {
		if a.DomainID == id {
			a.DomainName = name
			s.data.articles[aid] = a
		}
	}
	for key, rec := range s.data.progress {
		if rec.DomainID == id {
			rec.DomainName = name
			s.data.progress[key] = rec
		}
	}
	return d, nil
}

// DeleteDomain cascades to articles, their ledger rows and progress records.
func (s *Store) DeleteDomain(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.domains[id]; !ok {
		return domain.NotFoundf("scientific domain %d not found", id)
	}
	delete(s.data.domains, id)
	for aid, a := range s.data.articles {
		if a.DomainID == id {
			s.deleteArticleLocked(aid)
		}
	}
	for key := range s.data.progress {
		if key.domain == id {
			delete(s.data.progress, key)
		}
	}
	return nil
}

func (s *Store) domainNameTaken(name string, except int64) bool {
	for _, d := range s.data.domains {
		if d.Name == name && d.ID != except {
			return true
		}
	}
	return false
}
