package ports

import (
	"context"

	"github.com/google/uuid"

	"ArticleGate/internal/domain"
)

// Transactor runs a unit of work atomically; repositories called with the
// callback's context join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DomainRepository stores the scientific domain registry.
type DomainRepository interface {
	ListDomains(ctx context.Context) ([]domain.ScientificDomain, error)
	GetDomain(ctx context.Context, id int64) (domain.ScientificDomain, error)
	FindDomainsByName(ctx context.Context, names []string) ([]domain.ScientificDomain, error)
	CreateDomain(ctx context.Context, name string) (domain.ScientificDomain, error)
	RenameDomain(ctx context.Context, id int64, name string) (domain.ScientificDomain, error)
	DeleteDomain(ctx context.Context, id int64) error
}

// ArticleRepository stores the article catalog.
type ArticleRepository interface {
	GetArticle(ctx context.Context, id int64) (domain.Article, error)
	ListArticles(ctx context.Context, query domain.CatalogQuery) ([]domain.Article, error)
	CreateArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	UpdateArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
}

// ProfileRepository stores the core's view of provisioned users.
type ProfileRepository interface {
	EnsureProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
}

// ProgressRepository stores per (user, domain) progress records.
type ProgressRepository interface {
	ListProgress(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.ProgressRecord, error)
	GetProgress(ctx context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error)
	// ActivateProgress creates the record or reactivates a soft-deleted one.
	ActivateProgress(ctx context.Context, userID uuid.UUID, domainID int64) (domain.ProgressRecord, error)
	DeactivateProgress(ctx context.Context, userID uuid.UUID, domainIDs []int64) error
	PurgeProgress(ctx context.Context, userID uuid.UUID, domainID int64) error
}

// PointsReader aggregates finished articles into per-domain point totals.
type PointsReader interface {
	// SumPoints returns a total for every requested domain, zero included.
	SumPoints(ctx context.Context, userID uuid.UUID, domainIDs []int64) (map[int64]int, error)
}

// LedgerRepository stores reading states and reviews.
type LedgerRepository interface {
	PointsReader

	// CreateReadingState inserts the record unless one exists; the stored
	// record is returned either way along with whether it was created.
	CreateReadingState(ctx context.Context, state domain.ReadingState) (domain.ReadingState, bool, error)
	GetReadingState(ctx context.Context, userID uuid.UUID, articleID int64) (domain.ReadingState, error)
	ListReadingStates(ctx context.Context, userID uuid.UUID) ([]domain.ReadingState, error)
	UpdateReadingState(ctx context.Context, state domain.ReadingState) (domain.ReadingState, error)
	DeleteReadingState(ctx context.Context, userID uuid.UUID, articleID int64) error

	UpsertReview(ctx context.Context, review domain.Review) (domain.Review, error)
	GetReview(ctx context.Context, userID uuid.UUID, articleID int64) (domain.Review, error)
	ListReviews(ctx context.Context, userID uuid.UUID) ([]domain.Review, error)
	DeleteReview(ctx context.Context, userID uuid.UUID, articleID int64) error
}

// Store bundles every repository an adapter provides.
type Store interface {
	Transactor
	DomainRepository
	ArticleRepository
	ProfileRepository
	ProgressRepository
	LedgerRepository
}

// BlobResolver turns an article's opaque file reference into a retrievable URL.
type BlobResolver interface {
	Resolve(ref string) (string, error)
}

// ContentPolicy cleans article bodies and derives plain-text previews.
type ContentPolicy interface {
	Sanitize(content string) string
	Excerpt(content string) string
}

// Authenticator verifies identity tokens issued by the external auth collaborator.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// EligibilityMetrics records access decisions and catalog sizes.
type EligibilityMetrics interface {
	ObserveAccess(allowed bool)
	ObserveCatalog(mode domain.CatalogMode, size int)
}
