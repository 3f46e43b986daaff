package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"ArticleGate/internal/domain"
)

func scanDomain(row pgx.Row) (domain.ScientificDomain, error) {
	var d domain.ScientificDomain
	err := row.Scan(&d.ID, &d.Name)
	return d, err
}

func (s *Store) listDomains(ctx context.Context, b sq.SelectBuilder, op string) ([]domain.ScientificDomain, error) {
	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	domains, err := collect(rows, func(r pgx.Rows) (domain.ScientificDomain, error) { return scanDomain(r) })
	if err != nil {
		return nil, mapError(op, err, nil)
	}
	return domains, nil
}

// ListDomains returns every domain ordered by ID.
func (s *Store) ListDomains(ctx context.Context) ([]domain.ScientificDomain, error) {
	b := s.sb.Select("id", "name").From("scientific_domains").OrderBy("id")
	return s.listDomains(ctx, b, "list domains")
}

// FindDomainsByName returns the domains with the given names.
func (s *Store) FindDomainsByName(ctx context.Context, names []string) ([]domain.ScientificDomain, error) {
	if len(names) == 0 {
		return []domain.ScientificDomain{}, nil
	}
	b := s.sb.Select("id", "name").From("scientific_domains").Where(sq.Eq{"name": names}).OrderBy("id")
	return s.listDomains(ctx, b, "find domains")
}

// GetDomain returns one domain.
func (s *Store) GetDomain(ctx context.Context, id int64) (domain.ScientificDomain, error) {
	row, err := s.queryRow(ctx, s.sb.Select("id", "name").From("scientific_domains").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.ScientificDomain{}, mapError("get domain", err, nil)
	}
	d, err := scanDomain(row)
	if err != nil {
		return domain.ScientificDomain{}, mapError("get domain", err, domain.NotFoundf("scientific domain %d not found", id))
	}
	return d, nil
}

// CreateDomain inserts a domain; duplicate names surface as validation errors.
func (s *Store) CreateDomain(ctx context.Context, name string) (domain.ScientificDomain, error) {
	row, err := s.queryRow(ctx, s.sb.Insert("scientific_domains").Columns("name").Values(name).Suffix("RETURNING id, name"))
	if err != nil {
		return domain.ScientificDomain{}, mapError("create domain", err, nil)
	}
	d, err := scanDomain(row)
	if err != nil {
		return domain.ScientificDomain{}, mapError("create domain", err, nil)
	}
	return d, nil
}

// RenameDomain changes a domain's name.
func (s *Store) RenameDomain(ctx context.Context, id int64, name string) (domain.ScientificDomain, error) {
	row, err := s.queryRow(ctx, s.sb.Update("scientific_domains").Set("name", name).Where(sq.Eq{"id": id}).Suffix("RETURNING id, name"))
	if err != nil {
		return domain.ScientificDomain{}, mapError("rename domain", err, nil)
	}
	d, err := scanDomain(row)
	if err != nil {
		return domain.ScientificDomain{}, mapError("rename domain", err, domain.NotFoundf("scientific domain %d not found", id))
	}
	return d, nil
}

// DeleteDomain removes a domain; the schema cascades to articles and progress.
func (s *Store) DeleteDomain(ctx context.Context, id int64) error {
	tag, err := s.exec(ctx, s.sb.Delete("scientific_domains").Where(sq.Eq{"id": id}))
	if err != nil {
		return mapError("delete domain", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("scientific domain %d not found", id)
	}
	return nil
}
