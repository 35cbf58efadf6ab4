package sharelink

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.Now()

	valid := NewShareLink(uuid.New(), "hash", PermissionView, nil, nil)
	assert.Equal(t, ResolveValid, valid.Resolve(now))

	future := now.Add(time.Hour)
	withExpiry := NewShareLink(uuid.New(), "hash", PermissionView, nil, &future)
	assert.Equal(t, ResolveValid, withExpiry.Resolve(now))

	past := now.Add(-time.Hour)
	expired := NewShareLink(uuid.New(), "hash", PermissionView, nil, &past)
	assert.Equal(t, ResolveExpired, expired.Resolve(now))

	revoked := NewShareLink(uuid.New(), "hash", PermissionView, nil, nil)
	require.NoError(t, revoked.Revoke(now))
	assert.Equal(t, ResolveRevoked, revoked.Resolve(now))
}

func TestShouldDebounceAccess(t *testing.T) {
	s := NewShareLink(uuid.New(), "hash", PermissionView, nil, nil)
	now := time.Now()
	assert.True(t, s.ShouldDebounceAccess(now))

	s.RecordAccess(now)
	assert.False(t, s.ShouldDebounceAccess(now.Add(30*time.Second)))
	assert.True(t, s.ShouldDebounceAccess(now.Add(2*time.Minute)))
}

func TestRecordAccess(t *testing.T) {
	s := NewShareLink(uuid.New(), "hash", PermissionView, nil, nil)
	now := time.Now()
	s.RecordAccess(now)
	assert.Equal(t, 1, s.AccessCount())
	require.NotNil(t, s.LastAccessedAt())
	assert.Equal(t, now, *s.LastAccessedAt())
}

func TestRevoke(t *testing.T) {
	s := NewShareLink(uuid.New(), "hash", PermissionView, nil, nil)
	now := time.Now()
	require.NoError(t, s.Revoke(now))
	assert.False(t, s.IsActive())
	assert.NotNil(t, s.RevokedAt())

	assert.ErrorIs(t, s.Revoke(now), ErrAlreadyRevoked)
}
