// Package sharelink holds the CalendarShareLink aggregate — token
// issuance/hashing lives in internal/sharelink (the service package);
// this package only models the row and its resolution/revocation rules
// (spec §3, §4.7).
package sharelink

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Permission string

const (
	PermissionView           Permission = "VIEW"
	PermissionViewAndComment Permission = "VIEW_AND_COMMENT"
)

type ResolveStatus string

const (
	ResolveValid   ResolveStatus = "valid"
	ResolveInvalid ResolveStatus = "invalid"
	ResolveRevoked ResolveStatus = "revoked"
	ResolveExpired ResolveStatus = "expired"
)

var ErrAlreadyRevoked = errors.New("sharelink: already revoked")

type ShareLink struct {
	id             uuid.UUID
	calendarID     uuid.UUID
	tokenHash      string
	permission     Permission
	label          *string
	expiresAt      *time.Time
	isActive       bool
	revokedAt      *time.Time
	lastAccessedAt *time.Time
	accessCount    int
	createdAt      time.Time
}

func NewShareLink(calendarID uuid.UUID, tokenHash string, permission Permission, label *string, expiresAt *time.Time) *ShareLink {
	return &ShareLink{
		id: uuid.New(), calendarID: calendarID, tokenHash: tokenHash,
		permission: permission, label: label, expiresAt: expiresAt,
		isActive: true, createdAt: time.Now().UTC(),
	}
}

func Reconstruct(id, calendarID uuid.UUID, tokenHash string, permission Permission, label *string, expiresAt *time.Time, isActive bool, revokedAt, lastAccessedAt *time.Time, accessCount int, createdAt time.Time) *ShareLink {
	return &ShareLink{
		id: id, calendarID: calendarID, tokenHash: tokenHash, permission: permission,
		label: label, expiresAt: expiresAt, isActive: isActive, revokedAt: revokedAt,
		lastAccessedAt: lastAccessedAt, accessCount: accessCount, createdAt: createdAt,
	}
}

func (s *ShareLink) ID() uuid.UUID              { return s.id }
func (s *ShareLink) CalendarID() uuid.UUID      { return s.calendarID }
func (s *ShareLink) TokenHash() string          { return s.tokenHash }
func (s *ShareLink) Permission() Permission     { return s.permission }
func (s *ShareLink) Label() *string             { return s.label }
func (s *ShareLink) ExpiresAt() *time.Time      { return s.expiresAt }
func (s *ShareLink) IsActive() bool             { return s.isActive }
func (s *ShareLink) RevokedAt() *time.Time      { return s.revokedAt }
func (s *ShareLink) LastAccessedAt() *time.Time { return s.lastAccessedAt }
func (s *ShareLink) AccessCount() int           { return s.accessCount }
func (s *ShareLink) CreatedAt() time.Time       { return s.createdAt }

// Resolve implements spec §4.7's resolve() status ladder, given "now".
func (s *ShareLink) Resolve(now time.Time) ResolveStatus {
	if !s.isActive || s.revokedAt != nil {
		return ResolveRevoked
	}
	if s.expiresAt != nil && !s.expiresAt.After(now) {
		return ResolveExpired
	}
	return ResolveValid
}

// ShouldDebounceAccess reports whether a resolve should update
// lastAccessedAt/accessCount, per spec §4.7 step 6: only if lastAccessedAt
// is null or more than one minute old.
func (s *ShareLink) ShouldDebounceAccess(now time.Time) bool {
	if s.lastAccessedAt == nil {
		return true
	}
	return now.Sub(*s.lastAccessedAt) > time.Minute
}

func (s *ShareLink) RecordAccess(now time.Time) {
	s.lastAccessedAt = &now
	s.accessCount++
}

func (s *ShareLink) Revoke(now time.Time) error {
	if !s.isActive || s.revokedAt != nil {
		return ErrAlreadyRevoked
	}
	s.isActive = false
	s.revokedAt = &now
	return nil
}
