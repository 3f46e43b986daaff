package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

// ProgressDeps wires the tracker's driven adapters.
type ProgressDeps struct {
	Tx       ports.Transactor
	Domains  *DomainRegistry
	Profiles ports.ProfileRepository
	Progress ports.ProgressRepository
	Points   ports.PointsReader
	Logger   *slog.Logger
}

// ProgressTracker owns the per (user, domain) progress lifecycle and the derived point totals.
type ProgressTracker struct {
	tx       ports.Transactor
	domains  *DomainRegistry
	profiles ports.ProfileRepository
	progress ports.ProgressRepository
	points   ports.PointsReader
	logger   *slog.Logger
}

// NewProgressTracker constructs the tracker.
func NewProgressTracker(deps ProgressDeps) *ProgressTracker {
	return &ProgressTracker{
		tx:       deps.Tx,
		domains:  deps.Domains,
		profiles: deps.Profiles,
		progress: deps.Progress,
		points:   deps.Points,
		logger:   orDiscard(deps.Logger),
	}
}

// EnsureProfile provisions the core profile for a newly registered identity. Idempotent.
func (t *ProgressTracker) EnsureProfile(ctx context.Context, userID uuid.UUID, username string) (domain.Profile, error) {
	if userID == uuid.Nil {
		return domain.Profile{}, domain.Validationf("user id is required")
	}
	profile, err := t.profiles.EnsureProfile(ctx, domain.Profile{UserID: userID, Username: strings.TrimSpace(username)})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ensure profile: %w", err)
	}
	return profile, nil
}

// SetInterests replaces the user's active domain set. Named domains are created or
// reactivated (historical reads keep counting); active domains missing from the set
// are deactivated. The whole replacement commits atomically.
func (t *ProgressTracker) SetInterests(ctx context.Context, userID uuid.UUID, domainNames []string) ([]domain.DomainProgress, error) {
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := t.profiles.GetProfile(ctx, userID); err != nil {
			return err
		}
		return t.replaceInterests(ctx, userID, domainNames)
	})
	if err != nil {
		return nil, err
	}

	return t.ListActive(ctx, userID)
}

// Register provisions the profile and its initial interests in one transaction.
// An unknown domain name leaves no profile behind.
func (t *ProgressTracker) Register(ctx context.Context, userID uuid.UUID, username string, domainNames []string) (domain.ProfileView, error) {
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := t.domains.Resolve(ctx, domainNames); err != nil {
			return err
		}
		if _, err := t.EnsureProfile(ctx, userID, username); err != nil {
			return err
		}
		return t.replaceInterests(ctx, userID, domainNames)
	})
	if err != nil {
		return domain.ProfileView{}, err
	}

	t.logger.Info("user registered", "user_id", userID)
	return t.Profile(ctx, userID)
}

func (t *ProgressTracker) replaceInterests(ctx context.Context, userID uuid.UUID, domainNames []string) error {
	wanted, err := t.domains.Resolve(ctx, domainNames)
	if err != nil {
		return err
	}

	current, err := t.progress.ListProgress(ctx, userID, true)
	if err != nil {
		return fmt.Errorf("list active progress: %w", err)
	}

	keep := make(map[int64]struct{}, len(wanted))
	for _, d := range wanted {
		keep[d.ID] = struct{}{}
		if _, err := t.progress.ActivateProgress(ctx, userID, d.ID); err != nil {
			return fmt.Errorf("activate domain %s: %w", d.Name, err)
		}
	}

	var drop []int64
	for _, rec := range current {
		if _, ok := keep[rec.DomainID]; !ok {
			drop = append(drop, rec.DomainID)
		}
	}
	if len(drop) > 0 {
		if err := t.progress.DeactivateProgress(ctx, userID, drop); err != nil {
			return fmt.Errorf("deactivate domains: %w", err)
		}
	}

	t.logger.Debug("interests replaced", "user_id", userID, "active", len(wanted), "deactivated", len(drop))
	return nil
}

// CurrentPoints sums the points of finished articles in the domain. Always recomputed.
func (t *ProgressTracker) CurrentPoints(ctx context.Context, userID uuid.UUID, domainID int64) (int, error) {
	totals, err := t.points.SumPoints(ctx, userID, []int64{domainID})
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return totals[domainID], nil
}

// ListActive returns the user's active domains with their current points.
func (t *ProgressTracker) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.DomainProgress, error) {
	records, err := t.progress.ListProgress(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list active progress: %w", err)
	}
	return t.withPoints(ctx, userID, records)
}

// ActivePoints maps each active domain to the user's current points in it.
func (t *ProgressTracker) ActivePoints(ctx context.Context, userID uuid.UUID) (map[int64]int, error) {
	active, err := t.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	points := make(map[int64]int, len(active))
	for _, p := range active {
		points[p.Domain.ID] = p.CurrentPoints
	}
	return points, nil
}

// Profile assembles the profile surface: active interests and every progress record.
func (t *ProgressTracker) Profile(ctx context.Context, userID uuid.UUID) (domain.ProfileView, error) {
	profile, err := t.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.ProfileView{}, err
	}

	records, err := t.progress.ListProgress(ctx, userID, false)
	if err != nil {
		return domain.ProfileView{}, fmt.Errorf("list progress: %w", err)
	}

	progress, err := t.withPoints(ctx, userID, records)
	if err != nil {
		return domain.ProfileView{}, err
	}

	interests := make([]string, 0, len(progress))
	for _, p := range progress {
		if p.Active {
			interests = append(interests, p.Domain.Name)
		}
	}

	return domain.ProfileView{Profile: profile, Interests: interests, Progress: progress}, nil
}

// Deactivate soft-deletes the record; history and points stay intact.
func (t *ProgressTracker) Deactivate(ctx context.Context, userID uuid.UUID, domainID int64) error {
	if _, err := t.progress.GetProgress(ctx, userID, domainID); err != nil {
		return err
	}
	return t.progress.DeactivateProgress(ctx, userID, []int64{domainID})
}

// Purge hard-deletes the record. Reading history is untouched.
func (t *ProgressTracker) Purge(ctx context.Context, userID uuid.UUID, domainID int64) error {
	if err := t.progress.PurgeProgress(ctx, userID, domainID); err != nil {
		return err
	}
	t.logger.Info("progress purged", "user_id", userID, "domain_id", domainID)
	return nil
}

func (t *ProgressTracker) withPoints(ctx context.Context, userID uuid.UUID, records []domain.ProgressRecord) ([]domain.DomainProgress, error) {
	if len(records) == 0 {
		return []domain.DomainProgress{}, nil
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.DomainID
	}

	totals, err := t.points.SumPoints(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("sum points: %w", err)
	}

	out := make([]domain.DomainProgress, len(records))
	for i, rec := range records {
		out[i] = domain.DomainProgress{
			Domain:        domain.ScientificDomain{ID: rec.DomainID, Name: rec.DomainName},
			CurrentPoints: totals[rec.DomainID],
			Active:        rec.Active,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain.Name < out[j].Domain.Name })
	return out, nil
}
