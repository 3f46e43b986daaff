package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReadingStatus enumerates reading milestones in their forward order.
type ReadingStatus string

const (
	StatusReading  ReadingStatus = "reading"
	StatusRead     ReadingStatus = "read"
	StatusReviewed ReadingStatus = "reviewed"
)

const (
	MinReviewScore = 0
	MaxReviewScore = 10
)

// ParseReadingStatus validates a raw status value.
func ParseReadingStatus(raw string) (ReadingStatus, error) {
	status := ReadingStatus(raw)
	if status.rank() < 0 {
		return "", Validationf("%q is not a valid status", raw)
	}
	return status, nil
}

func (s ReadingStatus) rank() int {
	switch s {
	case StatusReading:
		return 0
	case StatusRead:
		return 1
	case StatusReviewed:
		return 2
	default:
		return -1
	}
}

// Finished reports whether the status earns the article's points.
func (s ReadingStatus) Finished() bool {
	return s.rank() >= StatusRead.rank()
}

// CanAdvanceTo enforces the forward-only transition policy; staying put is allowed.
func (s ReadingStatus) CanAdvanceTo(next ReadingStatus) bool {
	return next.rank() >= s.rank() && next.rank() >= 0
}

// FinishedStatuses lists the statuses that count toward current points.
func FinishedStatuses() []ReadingStatus {
	return []ReadingStatus{StatusRead, StatusReviewed}
}

// ReadingState is the per (user, article) reading record.
type ReadingState struct {
	ID          int64
	UserID      uuid.UUID
	ArticleID   int64
	Status      ReadingStatus
	PageLeftOff int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Review is the per (user, article) score.
type Review struct {
	ID        int64
	UserID    uuid.UUID
	ArticleID int64
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateScore checks the review score range.
func ValidateScore(score int) error {
	if score < MinReviewScore || score > MaxReviewScore {
		return Validationf("score must be between %d and %d", MinReviewScore, MaxReviewScore)
	}
	return nil
}
