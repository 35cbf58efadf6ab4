package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/sharelink"
)

type ShareLinkStore struct {
	db *sql.DB
}

func NewShareLinkStore(db *sql.DB) *ShareLinkStore { return &ShareLinkStore{db: db} }

func (s *ShareLinkStore) Create(ctx context.Context, link *sharelink.ShareLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_share_links (
			id, calendar_id, token_hash, permission, label, expires_at,
			is_active, revoked_at, last_accessed_at, access_count, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		link.ID(), link.CalendarID(), link.TokenHash(), string(link.Permission()), link.Label(),
		link.ExpiresAt(), link.IsActive(), link.RevokedAt(), link.LastAccessedAt(), link.AccessCount(), link.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert share link: %w", err)
	}
	return nil
}

func (s *ShareLinkStore) FindByTokenHash(ctx context.Context, tokenHash string) (*sharelink.ShareLink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, token_hash, permission, label, expires_at,
		       is_active, revoked_at, last_accessed_at, access_count, created_at
		FROM calendar_share_links WHERE token_hash=$1`, tokenHash)
	return scanShareLink(row)
}

func (s *ShareLinkStore) FindByID(ctx context.Context, calendarID, id uuid.UUID) (*sharelink.ShareLink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, calendar_id, token_hash, permission, label, expires_at,
		       is_active, revoked_at, last_accessed_at, access_count, created_at
		FROM calendar_share_links WHERE id=$1 AND calendar_id=$2`, id, calendarID)
	return scanShareLink(row)
}

func (s *ShareLinkStore) UpdateAccessStats(ctx context.Context, id uuid.UUID, lastAccessedAt time.Time, accessCount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE calendar_share_links SET last_accessed_at=$1, access_count=$2 WHERE id=$3`,
		lastAccessedAt, accessCount, id)
	if err != nil {
		return fmt.Errorf("postgres: update share link access stats: %w", err)
	}
	return nil
}

func (s *ShareLinkStore) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE calendar_share_links SET is_active=false, revoked_at=$1
		WHERE id=$2 AND is_active=true AND revoked_at IS NULL`, revokedAt, id)
	if err != nil {
		return fmt.Errorf("postgres: revoke share link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sharelink.ErrAlreadyRevoked
	}
	return nil
}

// Regenerate revokes the old link and inserts the new one atomically
// (spec §4.7).
func (s *ShareLinkStore) Regenerate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, newLink *sharelink.ShareLink) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin regenerate tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE calendar_share_links SET is_active=false, revoked_at=$1
		WHERE id=$2 AND is_active=true AND revoked_at IS NULL`, revokedAt, oldID)
	if err != nil {
		return fmt.Errorf("postgres: revoke old link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sharelink.ErrAlreadyRevoked
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO calendar_share_links (
			id, calendar_id, token_hash, permission, label, expires_at,
			is_active, revoked_at, last_accessed_at, access_count, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		newLink.ID(), newLink.CalendarID(), newLink.TokenHash(), string(newLink.Permission()), newLink.Label(),
		newLink.ExpiresAt(), newLink.IsActive(), newLink.RevokedAt(), newLink.LastAccessedAt(), newLink.AccessCount(), newLink.CreatedAt(),
	); err != nil {
		return fmt.Errorf("postgres: insert regenerated link: %w", err)
	}

	return tx.Commit()
}

// SweepExpired implements the periodic Share-Link Sweeper (spec §4.7):
// bulk-deactivate all active, expired rows. Idempotent — a second run
// with no new data affects zero rows.
func (s *ShareLinkStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE calendar_share_links SET is_active=false
		WHERE is_active=true AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("postgres: sweep expired share links: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanShareLink(row scannable) (*sharelink.ShareLink, error) {
	var (
		id, calendarID uuid.UUID
		tokenHash, permission string
		label                 sql.NullString
		expiresAt              sql.NullTime
		isActive                bool
		revokedAt, lastAccessedAt sql.NullTime
		accessCount             int
		createdAt               time.Time
	)
	if err := row.Scan(&id, &calendarID, &tokenHash, &permission, &label, &expiresAt,
		&isActive, &revokedAt, &lastAccessedAt, &accessCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan share link: %w", err)
	}
	var lbl *string
	if label.Valid {
		lbl = &label.String
	}
	var exp *time.Time
	if expiresAt.Valid {
		exp = &expiresAt.Time
	}
	var rev, last *time.Time
	if revokedAt.Valid {
		rev = &revokedAt.Time
	}
	if lastAccessedAt.Valid {
		last = &lastAccessedAt.Time
	}
	return sharelink.Reconstruct(id, calendarID, tokenHash, sharelink.Permission(permission), lbl, exp, isActive, rev, last, accessCount, createdAt), nil
}
