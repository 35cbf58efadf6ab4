package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/socialaccount"
)

type SocialAccountStore struct {
	db *sql.DB
}

func NewSocialAccountStore(db *sql.DB) *SocialAccountStore { return &SocialAccountStore{db: db} }

func (s *SocialAccountStore) FindByID(ctx context.Context, clientID, id uuid.UUID) (*socialaccount.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, platform, platform_user_id, username,
		       access_token, refresh_token, expires_at, is_active, disconnected_at
		FROM social_accounts WHERE id=$1 AND client_id=$2`, id, clientID)
	return scanAccount(row)
}

// UpdateTokens persists the refreshed access/refresh pair after the
// TikTok refresh-and-retry wrapper exchanges the old refresh token
// (spec §4.5 step 2).
func (s *SocialAccountStore) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	at, err := encryptToken(accessToken)
	if err != nil {
		return err
	}
	rt, err := encryptToken(refreshToken)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE social_accounts SET access_token=$1, refresh_token=$2, expires_at=$3
		WHERE id=$4`, at, rt, expiresAt, id)
	if err != nil {
		return fmt.Errorf("postgres: update account tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
