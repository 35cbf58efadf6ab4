// Package socialaccount holds the SocialAccount aggregate: a tenant's
// connected credential for one external platform. Grounded on the
// teacher's internal/domain/social/account.go shape (Platform, Status,
// token fields) generalized to the platform set this spec requires.
package socialaccount

import (
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformX         Platform = "X"
)

// Account is the SocialAccount entity from spec §3. Uniqueness
// (clientId, platform, platformUserId) is enforced by the store, not here.
type Account struct {
	id             uuid.UUID
	userID         uuid.UUID
	clientID       uuid.UUID
	platform       Platform
	platformUserID string
	username       string
	accessToken    string
	refreshToken   string
	expiresAt      *time.Time
	isActive       bool
	disconnectedAt *time.Time
}

func NewAccount(userID, clientID uuid.UUID, platform Platform, platformUserID, username, accessToken, refreshToken string, expiresAt *time.Time) *Account {
	return &Account{
		id:             uuid.New(),
		userID:         userID,
		clientID:       clientID,
		platform:       platform,
		platformUserID: platformUserID,
		username:       username,
		accessToken:    accessToken,
		refreshToken:   refreshToken,
		expiresAt:      expiresAt,
		isActive:       true,
	}
}

func Reconstruct(id, userID, clientID uuid.UUID, platform Platform, platformUserID, username, accessToken, refreshToken string, expiresAt *time.Time, isActive bool, disconnectedAt *time.Time) *Account {
	return &Account{
		id: id, userID: userID, clientID: clientID, platform: platform,
		platformUserID: platformUserID, username: username,
		accessToken: accessToken, refreshToken: refreshToken,
		expiresAt: expiresAt, isActive: isActive, disconnectedAt: disconnectedAt,
	}
}

func (a *Account) ID() uuid.UUID             { return a.id }
func (a *Account) UserID() uuid.UUID         { return a.userID }
func (a *Account) ClientID() uuid.UUID       { return a.clientID }
func (a *Account) Platform() Platform        { return a.platform }
func (a *Account) PlatformUserID() string    { return a.platformUserID }
func (a *Account) Username() string          { return a.username }
func (a *Account) AccessToken() string       { return a.accessToken }
func (a *Account) RefreshToken() string      { return a.refreshToken }
func (a *Account) ExpiresAt() *time.Time     { return a.expiresAt }
func (a *Account) IsActive() bool            { return a.isActive }
func (a *Account) DisconnectedAt() *time.Time { return a.disconnectedAt }

// EligibleForPublishing mirrors spec §3: "isActive=false implies the
// account is ineligible for publishing."
func (a *Account) EligibleForPublishing() bool {
	return a.isActive && a.disconnectedAt == nil && a.accessToken != ""
}

func (a *Account) Disconnect() {
	now := time.Now().UTC()
	a.isActive = false
	a.disconnectedAt = &now
	a.accessToken = ""
	a.refreshToken = ""
	a.expiresAt = nil
}

// ApplyRefreshedTokens records a new access/refresh pair after the
// TikTok refresh-and-retry wrapper exchanges the old refresh token
// (spec §4.5 step 2: "persists the new access/refresh tokens and new
// expiresAt on the SocialAccount row").
func (a *Account) ApplyRefreshedTokens(accessToken, refreshToken string, expiresAt time.Time) {
	a.accessToken = accessToken
	a.refreshToken = refreshToken
	a.expiresAt = &expiresAt
}
