package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	u := NewUser("sub-123", "user@example.com", "Ada")
	assert.Equal(t, "sub-123", u.ExternalSubject())
	assert.Equal(t, "user@example.com", u.Email())
	assert.Equal(t, "Ada", u.Name())
	assert.Empty(t, u.Avatar())
	assert.False(t, u.CreatedAt().IsZero())
}

func TestUpdateProfile(t *testing.T) {
	u := NewUser("sub-123", "user@example.com", "Ada")
	before := u.UpdatedAt()
	u.UpdateProfile("Ada Lovelace", "https://example.com/a.png")
	assert.Equal(t, "Ada Lovelace", u.Name())
	assert.Equal(t, "https://example.com/a.png", u.Avatar())
	assert.False(t, u.UpdatedAt().Before(before))
}

func TestOwnedBy(t *testing.T) {
	userID := uuid.New()
	c := NewClient(userID, "Acme Co")
	assert.True(t, c.OwnedBy(userID))
	assert.False(t, c.OwnedBy(uuid.New()))
}
