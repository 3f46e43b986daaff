package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the core's record of an externally authenticated user.
type Profile struct {
	UserID    uuid.UUID
	Username  string
	CreatedAt time.Time
}

// ProgressRecord marks a user's pursuit of a domain. Points are never stored here.
type ProgressRecord struct {
	ID         int64
	UserID     uuid.UUID
	DomainID   int64
	DomainName string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DomainProgress pairs a progress record with its derived point total.
type DomainProgress struct {
	Domain        ScientificDomain
	CurrentPoints int
	Active        bool
}

// ProfileView is the profile surface: interests plus per-domain progress.
type ProfileView struct {
	Profile   Profile
	Interests []string
	Progress  []DomainProgress
}

// Principal is the identity supplied by the auth collaborator.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Admin    bool
}

// Anonymous is the principal for callers without an identity.
var Anonymous = Principal{}

// Authenticated reports whether the principal carries a user identity.
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}
