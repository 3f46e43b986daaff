package domain

import "time"

// ScientificDomain is a subject area that groups articles and tracks points.
type ScientificDomain struct {
	ID   int64
	Name string
}

// Article is a catalog entry gated by the reader's points in its domain.
type Article struct {
	ID            int64
	DomainID      int64
	DomainName    string
	Title         string
	Content       string
	PageCount     int
	Points        int
	MinimumPoints *int
	FileRef       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnlockedAt reports whether the article is open to a reader holding points in its domain.
func (a Article) UnlockedAt(points int) bool {
	return a.MinimumPoints == nil || *a.MinimumPoints <= points
}

// LockedAt is the "upcoming" predicate: a threshold exists and is not yet met.
func (a Article) LockedAt(points int) bool {
	return a.MinimumPoints != nil && *a.MinimumPoints > points
}

// Validate checks the non-negativity rules for article fields.
func (a Article) Validate() error {
	switch {
	case a.Title == "":
		return Validationf("title is required")
	case len(a.Title) > 200:
		return Validationf("title must be at most 200 characters")
	case a.PageCount < 0:
		return Validationf("number_of_pages must be non-negative")
	case a.Points < 0:
		return Validationf("points must be non-negative")
	case a.MinimumPoints != nil && *a.MinimumPoints < 0:
		return Validationf("minimum_points must be non-negative")
	}
	return nil
}

// CatalogMode selects which side of the per-domain threshold a catalog query
// returns. The zero value applies no filter.
type CatalogMode string

const (
	CatalogUnlocked CatalogMode = "unlocked"
	CatalogLocked   CatalogMode = "locked"
)

// CatalogQuery filters the article catalog against per-domain point totals in a single pass.
// Points maps domain ID to the reader's current points; it is ignored when Mode is empty.
type CatalogQuery struct {
	Mode   CatalogMode
	Points map[int64]int
}

// Matches evaluates the query predicate for one article.
func (q CatalogQuery) Matches(a Article) bool {
	if q.Mode == "" {
		return true
	}
	points, ok := q.Points[a.DomainID]
	if !ok {
		return false
	}
	if q.Mode == CatalogLocked {
		return a.LockedAt(points)
	}
	return a.UnlockedAt(points)
}
