package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

const maxDomainNameLength = 100

// DomainRegistry enumerates scientific domains and resolves them by name.
type DomainRegistry struct {
	repo   ports.DomainRepository
	logger *slog.Logger
}

// NewDomainRegistry wires the registry to its repository.
func NewDomainRegistry(repo ports.DomainRepository, logger *slog.Logger) *DomainRegistry {
	return &DomainRegistry{repo: repo, logger: orDiscard(logger)}
}

// List returns every domain ordered by name.
func (r *DomainRegistry) List(ctx context.Context) ([]domain.ScientificDomain, error) {
	domains, err := r.repo.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].Name < domains[j].Name })
	return domains, nil
}

// Get returns a single domain by ID.
func (r *DomainRegistry) Get(ctx context.Context, id int64) (domain.ScientificDomain, error) {
	return r.repo.GetDomain(ctx, id)
}

// Resolve maps names to domains, failing with NotFound on the first unknown name.
func (r *DomainRegistry) Resolve(ctx context.Context, names []string) ([]domain.ScientificDomain, error) {
	wanted := dedupeNames(names)
	if len(wanted) == 0 {
		return nil, nil
	}

	found, err := r.repo.FindDomainsByName(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("find domains: %w", err)
	}

	byName := make(map[string]domain.ScientificDomain, len(found))
	for _, d := range found {
		byName[d.Name] = d
	}

	resolved := make([]domain.ScientificDomain, 0, len(wanted))
	for _, name := range wanted {
		d, ok := byName[name]
		if !ok {
			return nil, domain.NotFoundf("scientific domain %q does not exist", name)
		}
		resolved = append(resolved, d)
	}
	return resolved, nil
}

// Create registers a new domain.
func (r *DomainRegistry) Create(ctx context.Context, name string) (domain.ScientificDomain, error) {
	name, err := normalizeDomainName(name)
	if err != nil {
		return domain.ScientificDomain{}, err
	}
	created, err := r.repo.CreateDomain(ctx, name)
	if err != nil {
		return domain.ScientificDomain{}, err
	}
	r.logger.Info("domain created", "domain_id", created.ID, "name", created.Name)
	return created, nil
}

// Rename changes a domain's unique name.
func (r *DomainRegistry) Rename(ctx context.Context, id int64, name string) (domain.ScientificDomain, error) {
	name, err := normalizeDomainName(name)
	if err != nil {
		return domain.ScientificDomain{}, err
	}
	return r.repo.RenameDomain(ctx, id, name)
}

// Delete removes a domain together with its articles and progress.
func (r *DomainRegistry) Delete(ctx context.Context, id int64) error {
	if err := r.repo.DeleteDomain(ctx, id); err != nil {
		return err
	}
	r.logger.Info("domain deleted", "domain_id", id)
	return nil
}

func normalizeDomainName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validationf("name is required")
	}
	if len(name) > maxDomainNameLength {
		return "", domain.Validationf("name must be at most %d characters", maxDomainNameLength)
	}
	return name, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
