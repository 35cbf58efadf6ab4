// Package sharelink implements the Share-Link Service (spec §4.7):
// token issuance, resolution, revocation, regeneration, and a periodic
// sweeper. The "crypto/rand then encode" idiom is grounded on the
// teacher's internal/social/encryption.go TokenEncryption, generalized
// from AES-GCM encryption to a SHA-256-hashed bearer token.
package sharelink

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/sharelink"
	"github.com/techappsUT/planer/internal/store"
)

type Service struct {
	links store.ShareLinkStore
}

func NewService(links store.ShareLinkStore) *Service {
	return &Service{links: links}
}

// IssuedToken carries the one-time raw token alongside the persisted row.
type IssuedToken struct {
	Link     *sharelink.ShareLink
	RawToken string
}

// Create issues a new share link: 256 random bits encoded as URL-safe
// base64 (no padding) is the raw token, returned exactly once; only its
// SHA-256 hash is persisted (spec §4.7).
func (s *Service) Create(ctx context.Context, calendarID uuid.UUID, permission sharelink.Permission, label *string, expiresAt *time.Time) (*IssuedToken, error) {
	rawToken, hash, err := newToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	link := sharelink.NewShareLink(calendarID, hash, permission, label, expiresAt)
	if err := s.links.Create(ctx, link); err != nil {
		return nil, apperr.Internal(err)
	}
	return &IssuedToken{Link: link, RawToken: rawToken}, nil
}

// Resolve implements spec §4.7's resolution ladder and access-stats
// debounce.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*sharelink.ShareLink, sharelink.ResolveStatus, error) {
	hash := hashToken(rawToken)
	link, err := s.links.FindByTokenHash(ctx, hash)
	if err != nil {
		return nil, sharelink.ResolveInvalid, nil
	}

	now := time.Now().UTC()
	status := link.Resolve(now)
	if status != sharelink.ResolveValid {
		return link, status, nil
	}

	if link.ShouldDebounceAccess(now) {
		if err := s.links.UpdateAccessStats(ctx, link.ID(), now, link.AccessCount()+1); err != nil {
			return link, status, apperr.Internal(err)
		}
	}
	return link, status, nil
}

// Get loads a link scoped to its owning calendar, for handlers that must
// verify tenant ownership before revoking or regenerating it.
func (s *Service) Get(ctx context.Context, calendarID, id uuid.UUID) (*sharelink.ShareLink, error) {
	link, err := s.links.FindByID(ctx, calendarID, id)
	if err != nil {
		return nil, apperr.NotFound("share link not found")
	}
	return link, nil
}

func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.links.Revoke(ctx, id, time.Now().UTC()); err != nil {
		if err == sharelink.ErrAlreadyRevoked {
			return apperr.BadRequest("share link is already revoked")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Regenerate revokes the old link and issues a new one with the same
// permission/label/expiresAt, atomically (spec §4.7).
func (s *Service) Regenerate(ctx context.Context, old *sharelink.ShareLink) (*IssuedToken, error) {
	rawToken, hash, err := newToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	newLink := sharelink.NewShareLink(old.CalendarID(), hash, old.Permission(), old.Label(), old.ExpiresAt())
	if err := s.links.Regenerate(ctx, old.ID(), time.Now().UTC(), newLink); err != nil {
		if err == sharelink.ErrAlreadyRevoked {
			return nil, apperr.BadRequest("share link is already revoked")
		}
		return nil, apperr.Internal(err)
	}
	return &IssuedToken{Link: newLink, RawToken: rawToken}, nil
}

// Sweep is the periodic optimization task (spec §4.7): resolve already
// re-checks expiry on every call, so this is not required for
// correctness, only to keep rows tidy.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.links.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func newToken() (rawToken, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("sharelink: generate token: %w", err)
	}
	rawToken = base64.RawURLEncoding.EncodeToString(buf)
	return rawToken, hashToken(rawToken), nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
