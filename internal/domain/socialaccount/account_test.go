package socialaccount

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAccount(t *testing.T) {
	userID, clientID := uuid.New(), uuid.New()
	a := NewAccount(userID, clientID, PlatformInstagram, "ig-123", "example", "at", "rt", nil)

	assert.Equal(t, userID, a.UserID())
	assert.Equal(t, clientID, a.ClientID())
	assert.Equal(t, PlatformInstagram, a.Platform())
	assert.Equal(t, "ig-123", a.PlatformUserID())
	assert.Equal(t, "example", a.Username())
	assert.Equal(t, "at", a.AccessToken())
	assert.Equal(t, "rt", a.RefreshToken())
	assert.True(t, a.IsActive())
	assert.Nil(t, a.DisconnectedAt())
}

func TestEligibleForPublishing(t *testing.T) {
	a := NewAccount(uuid.New(), uuid.New(), PlatformTikTok, "tt-1", "u", "at", "rt", nil)
	assert.True(t, a.EligibleForPublishing())

	a.Disconnect()
	assert.False(t, a.EligibleForPublishing())

	noToken := Reconstruct(uuid.New(), uuid.New(), uuid.New(), PlatformFacebook, "fb-1", "u", "", "", nil, true, nil)
	assert.False(t, noToken.EligibleForPublishing())

	inactive := Reconstruct(uuid.New(), uuid.New(), uuid.New(), PlatformX, "x-1", "u", "at", "rt", nil, false, nil)
	assert.False(t, inactive.EligibleForPublishing())
}

func TestDisconnect(t *testing.T) {
	a := NewAccount(uuid.New(), uuid.New(), PlatformInstagram, "ig-1", "u", "at", "rt", nil)
	a.Disconnect()

	assert.False(t, a.IsActive())
	assert.NotNil(t, a.DisconnectedAt())
	assert.Empty(t, a.AccessToken())
	assert.Empty(t, a.RefreshToken())
	assert.Nil(t, a.ExpiresAt())
}

func TestApplyRefreshedTokens(t *testing.T) {
	a := NewAccount(uuid.New(), uuid.New(), PlatformTikTok, "tt-1", "u", "old-at", "old-rt", nil)
	newExpiry := time.Now().Add(time.Hour)
	a.ApplyRefreshedTokens("new-at", "new-rt", newExpiry)

	assert.Equal(t, "new-at", a.AccessToken())
	assert.Equal(t, "new-rt", a.RefreshToken())
	require := a.ExpiresAt()
	if require == nil {
		t.Fatal("expected expiresAt to be set")
	}
	assert.Equal(t, newExpiry, *require)
}
