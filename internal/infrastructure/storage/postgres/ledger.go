package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ArticleGate/internal/domain"
)

// createReadingStateSQL inserts the record or, when it already exists, selects
// the stored one in the same statement so concurrent creates never duplicate.
const createReadingStateSQL = `
	WITH inserted AS (
		INSERT INTO reading_states (user_id, article_id, status, page_left_off)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, article_id) DO NOTHING
		RETURNING id, status, page_left_off, created_at, updated_at, TRUE AS created
	)
	SELECT id, status, page_left_off, created_at, updated_at, created FROM inserted
	UNION ALL
	SELECT id, status, page_left_off, created_at, updated_at, FALSE
	FROM reading_states
	WHERE user_id = $1 AND article_id = $2 AND NOT EXISTS (SELECT 1 FROM inserted)`

const upsertReviewSQL = `
	INSERT INTO reviews (user_id, article_id, score)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, article_id) DO UPDATE
	SET score = EXCLUDED.score,
	    updated_at = NOW()
	RETURNING id, created_at, updated_at`

func finishedStatusValues() []string {
	statuses := domain.FinishedStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// SumPoints aggregates finished articles per domain in one grouped query.
func (s *Store) SumPoints(ctx context.Context, userID uuid.UUID, domainIDs []int64) (map[int64]int, error) {
	totals := make(map[int64]int, len(domainIDs))
	if len(domainIDs) == 0 {
		return totals, nil
	}
	for _, id := range domainIDs {
		totals[id] = 0
	}

	rows, err := s.query(ctx, s.sb.Select("a.domain_id", "COALESCE(SUM(a.points), 0)").
		From("reading_states rs").
		Join("articles a ON a.id = rs.article_id").
		Where(sq.Eq{
			"rs.user_id":  userID.String(),
			"rs.status":   finishedStatusValues(),
			"a.domain_id": domainIDs,
		}).
		GroupBy("a.domain_id"))
	if err != nil {
		return nil, mapError("sum points", err, nil)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			domainID int64
			sum      int64
		)
		if err := rows.Scan(&domainID, &sum); err != nil {
			return nil, mapError("sum points", err, nil)
		}
		totals[domainID] = int(sum)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("sum points", err, nil)
	}
	return totals, nil
}

func scanReadingState(row pgx.Row, rs *domain.ReadingState, extra ...any) error {
	var status string
	dest := append([]any{&rs.ID, &status, &rs.PageLeftOff, &rs.CreatedAt, &rs.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	rs.Status = domain.ReadingStatus(status)
	return nil
}

// CreateReadingState inserts the record unless one exists for (user, article).
func (s *Store) CreateReadingState(ctx context.Context, rs domain.ReadingState) (domain.ReadingState, bool, error) {
	row := s.conn(ctx).QueryRow(ctx, createReadingStateSQL, rs.UserID.String(), rs.ArticleID, string(rs.Status), rs.PageLeftOff)

	out := domain.ReadingState{UserID: rs.UserID, ArticleID: rs.ArticleID}
	var created bool
	err := scanReadingState(row, &out, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		// The conflicting row was deleted between the insert and the select.
		existing, getErr := s.GetReadingState(ctx, rs.UserID, rs.ArticleID)
		return existing, false, getErr
	}
	if err != nil {
		return domain.ReadingState{}, false, mapError("create reading state", err, nil)
	}
	return out, created, nil
}

func (s *Store) selectReadingStates(userID uuid.UUID) sq.SelectBuilder {
	return s.sb.Select("id", "status", "page_left_off", "created_at", "updated_at", "article_id").
		From("reading_states").
		Where(sq.Eq{"user_id": userID.String()})
}

// GetReadingState returns the (user, article) record.
func (s *Store) GetReadingState(ctx context.Context, userID uuid.UUID, articleID int64) (domain.ReadingState, error) {
	row, err := s.queryRow(ctx, s.selectReadingStates(userID).Where(sq.Eq{"article_id": articleID}))
	if err != nil {
		return domain.ReadingState{}, mapError("get reading state", err, nil)
	}
	rs := domain.ReadingState{UserID: userID}
	if err := scanReadingState(row, &rs, &rs.ArticleID); err != nil {
		return domain.ReadingState{}, mapError("get reading state", err, domain.NotFoundf("no reading state for article %d", articleID))
	}
	return rs, nil
}

// ListReadingStates returns the user's records ordered by ID.
func (s *Store) ListReadingStates(ctx context.Context, userID uuid.UUID) ([]domain.ReadingState, error) {
	rows, err := s.query(ctx, s.selectReadingStates(userID).OrderBy("id"))
	if err != nil {
		return nil, mapError("list reading states", err, nil)
	}
	states, err := collect(rows, func(r pgx.Rows) (domain.ReadingState, error) {
		rs := domain.ReadingState{UserID: userID}
		err := scanReadingState(r, &rs, &rs.ArticleID)
		return rs, err
	})
	if err != nil {
		return nil, mapError("list reading states", err, nil)
	}
	return states, nil
}

// UpdateReadingState persists status and position.
func (s *Store) UpdateReadingState(ctx context.Context, rs domain.ReadingState) (domain.ReadingState, error) {
	row, err := s.queryRow(ctx, s.sb.Update("reading_states").
		Set("status", string(rs.Status)).
		Set("page_left_off", rs.PageLeftOff).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": rs.UserID.String(), "article_id": rs.ArticleID}).
		Suffix("RETURNING id, status, page_left_off, created_at, updated_at"))
	if err != nil {
		return domain.ReadingState{}, mapError("update reading state", err, nil)
	}
	out := domain.ReadingState{UserID: rs.UserID, ArticleID: rs.ArticleID}
	if err := scanReadingState(row, &out); err != nil {
		return domain.ReadingState{}, mapError("update reading state", err, domain.NotFoundf("no reading state for article %d", rs.ArticleID))
	}
	return out, nil
}

// DeleteReadingState removes the (user, article) record.
func (s *Store) DeleteReadingState(ctx context.Context, userID uuid.UUID, articleID int64) error {
	tag, err := s.exec(ctx, s.sb.Delete("reading_states").Where(sq.Eq{"user_id": userID.String(), "article_id": articleID}))
	if err != nil {
		return mapError("delete reading state", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("no reading state for article %d", articleID)
	}
	return nil
}

// UpsertReview inserts or overwrites the score for (user, article).
func (s *Store) UpsertReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	row := s.conn(ctx).QueryRow(ctx, upsertReviewSQL, r.UserID.String(), r.ArticleID, r.Score)
	out := domain.Review{UserID: r.UserID, ArticleID: r.ArticleID, Score: r.Score}
	if err := row.Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.Review{}, mapError("upsert review", err, nil)
	}
	return out, nil
}

func (s *Store) selectReviews(userID uuid.UUID) sq.SelectBuilder {
	return s.sb.Select("id", "article_id", "score", "created_at", "updated_at").
		From("reviews").
		Where(sq.Eq{"user_id": userID.String()})
}

func scanReview(row pgx.Row, userID uuid.UUID) (domain.Review, error) {
	r := domain.Review{UserID: userID}
	err := row.Scan(&r.ID, &r.ArticleID, &r.Score, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// GetReview returns the (user, article) review.
func (s *Store) GetReview(ctx context.Context, userID uuid.UUID, articleID int64) (domain.Review, error) {
	row, err := s.queryRow(ctx, s.selectReviews(userID).Where(sq.Eq{"article_id": articleID}))
	if err != nil {
		return domain.Review{}, mapError("get review", err, nil)
	}
	r, err := scanReview(row, userID)
	if err != nil {
		return domain.Review{}, mapError("get review", err, domain.NotFoundf("no review for article %d", articleID))
	}
	return r, nil
}

// ListReviews returns the user's reviews ordered by ID.
func (s *Store) ListReviews(ctx context.Context, userID uuid.UUID) ([]domain.Review, error) {
	rows, err := s.query(ctx, s.selectReviews(userID).OrderBy("id"))
	if err != nil {
		return nil, mapError("list reviews", err, nil)
	}
	reviews, err := collect(rows, func(r pgx.Rows) (domain.Review, error) { return scanReview(r, userID) })
	if err != nil {
		return nil, mapError("list reviews", err, nil)
	}
	return reviews, nil
}

// DeleteReview removes the (user, article) review.
func (s *Store) DeleteReview(ctx context.Context, userID uuid.UUID, articleID int64) error {
	tag, err := s.exec(ctx, s.sb.Delete("reviews").Where(sq.Eq{"user_id": userID.String(), "article_id": articleID}))
	if err != nil {
		return mapError("delete review", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("no review for article %d", articleID)
	}
	return nil
}
