package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ArticleGate/internal/domain"
)

const activateProgressSQL = `
	WITH upserted AS (
		INSERT INTO progress_records (user_id, domain_id, active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (user_id, domain_id) DO UPDATE
		SET active = TRUE,
		    updated_at = NOW()
		RETURNING id, domain_id, active, created_at, updated_at
	)
	SELECT u.id, u.domain_id, d.name, u.active, u.created_at, u.updated_at
	FROM upserted u
	JOIN scientific_domains d ON d.id = u.domain_id`

// EnsureProfile inserts the profile if absent and returns the stored row.
func (s *Store) EnsureProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	_, err := s.exec(ctx, s.sb.Insert("profiles").
		Columns("user_id", "username").
		Values(p.UserID.String(), p.Username).
		Suffix("ON CONFLICT (user_id) DO NOTHING"))
	if err != nil {
		return domain.Profile{}, mapError("ensure profile", err, nil)
	}
	return s.GetProfile(ctx, p.UserID)
}

// GetProfile returns a provisioned profile.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	row, err := s.queryRow(ctx, s.sb.Select("username", "created_at").From("profiles").Where(sq.Eq{"user_id": userID.String()}))
	if err != nil {
		return domain.Profile{}, mapError("get profile", err, nil)
	}
	p := domain.Profile{UserID: userID}
	if err := row.Scan(&p.Username, &p.CreatedAt); err != nil {
		return domain.Profile{}, mapError("get profile", err, domain.NotFoundf("profile for user %s not found", userID))
	}
	return p, nil
}

func scanProgress(row pgx.Row, userID uuid.UUID) (domain.ProgressRecord, error) {
	rec := domain.ProgressRecord{UserID: userID}
	err := row.Scan(&rec.ID, &rec.DomainID, &rec.DomainName, &rec.Active, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func (s *Store) selectProgress(userID uuid.UUID) sq.SelectBuilder {
	return s.sb.Select("p.id", "p.domain_id", "d.name", "p.active", "p.created_at", "p.updated_at").
		From("progress_records p").
		Join("scientific_domains d ON d.id = p.domain_id").
		Where(sq.Eq{"p.user_id": userID.String()})
}

// ListProgress returns the user's records ordered by ID.
func (s *Store) ListProgress(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.ProgressRecord, error) {
	b := s.selectProgress(userID).OrderBy("p.id")
	if activeOnly {
		b = b.Where(sq.Eq{"p.active": true})
	}

	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, mapError("list progress", err, nil)
	}
	records, err := collect(rows, func(r pgx.Rows) (domain.ProgressRecord, error) { return scanProgress(r, userID) })
	if err != nil {
		return nil, mapError("list progress", err, nil)
	}
	return records, nil
}

// GetProgress returns the (user, domain) record, active or not.
func (s *Store) GetProgress(ctx context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error) {
	row, err := s.queryRow(ctx, s.selectProgress(userID).Where(sq.Eq{"p.domain_id": domainID}))
	if err != nil {
		return domain.ProgressRecord{}, mapError("get progress", err, nil)
	}
	rec, err := scanProgress(row, userID)
	if err != nil {
		return domain.ProgressRecord{}, mapError("get progress", err, domain.NotFoundf("no progress for domain %d", domainID))
	}
	return rec, nil
}

// ActivateProgress creates or reactivates the record in one conditional upsert.
func (s *Store) ActivateProgress(ctx context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error) {
	row := s.conn(ctx).QueryRow(ctx, activateProgressSQL, userID.String(), domainID)
	rec, err := scanProgress(row, userID)
	if err != nil {
		return domain.ProgressRecord{}, mapError("activate progress", err, nil)
	}
	return rec, nil
}

// DeactivateProgress soft-deletes the listed records.
func (s *Store) DeactivateProgress(ctx context.Context, userID uuid.UUID, domainIDs []int64) error {
	if len(domainIDs) == 0 {
		return nil
	}
	_, err := s.exec(ctx, s.sb.Update("progress_records").
		Set("active", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID.String(), "domain_id": domainIDs}))
	return mapError("deactivate progress", err, nil)
}

// PurgeProgress hard-deletes the record.
func (s *Store) PurgeProgress(ctx context.Context, userID uuid.UUID, domainID int64) error {
	tag, err := s.exec(ctx, s.sb.Delete("progress_records").Where(sq.Eq{"user_id": userID.String(), "domain_id": domainID}))
	if err != nil {
		return mapError("purge progress", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("no progress for domain %d", domainID)
	}
	return nil
}
