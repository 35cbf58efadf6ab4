package sharelink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/planer/internal/domain/sharelink"
)

type fakeLinkStore struct {
	byHash      map[string]*sharelink.ShareLink
	byID        map[uuid.UUID]*sharelink.ShareLink
	accessCalls int
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{byHash: map[string]*sharelink.ShareLink{}, byID: map[uuid.UUID]*sharelink.ShareLink{}}
}

func (f *fakeLinkStore) Create(ctx context.Context, link *sharelink.ShareLink) error {
	f.byHash[link.TokenHash()] = link
	f.byID[link.ID()] = link
	return nil
}

func (f *fakeLinkStore) FindByTokenHash(ctx context.Context, tokenHash string) (*sharelink.ShareLink, error) {
	if l, ok := f.byHash[tokenHash]; ok {
		return l, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeLinkStore) FindByID(ctx context.Context, calendarID, id uuid.UUID) (*sharelink.ShareLink, error) {
	if l, ok := f.byID[id]; ok && l.CalendarID() == calendarID {
		return l, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeLinkStore) UpdateAccessStats(ctx context.Context, id uuid.UUID, lastAccessedAt time.Time, accessCount int) error {
	f.accessCalls++
	if l, ok := f.byID[id]; ok {
		l.RecordAccess(lastAccessedAt)
	}
	return nil
}

func (f *fakeLinkStore) Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time) error {
	l, ok := f.byID[id]
	if !ok {
		return errors.New("not found")
	}
	return l.Revoke(revokedAt)
}

func (f *fakeLinkStore) Regenerate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, newLink *sharelink.ShareLink) error {
	old, ok := f.byID[oldID]
	if !ok {
		return errors.New("not found")
	}
	if err := old.Revoke(revokedAt); err != nil {
		return err
	}
	f.byID[newLink.ID()] = newLink
	f.byHash[newLink.TokenHash()] = newLink
	return nil
}

func (f *fakeLinkStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range f.byID {
		if l.Resolve(now) == sharelink.ResolveExpired {
			n++
		}
	}
	return n, nil
}

func TestServiceCreateAndResolve(t *testing.T) {
	store := newFakeLinkStore()
	svc := NewService(store)

	issued, err := svc.Create(context.Background(), uuid.New(), sharelink.PermissionView, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.RawToken)

	link, status, err := svc.Resolve(context.Background(), issued.RawToken)
	require.NoError(t, err)
	assert.Equal(t, sharelink.ResolveValid, status)
	assert.Equal(t, issued.Link.ID(), link.ID())
}

func TestServiceResolveUnknownTokenIsInvalid(t *testing.T) {
	svc := NewService(newFakeLinkStore())
	_, status, err := svc.Resolve(context.Background(), "nonexistent-token")
	require.NoError(t, err)
	assert.Equal(t, sharelink.ResolveInvalid, status)
}

func TestServiceGet(t *testing.T) {
	store := newFakeLinkStore()
	svc := NewService(store)
	calendarID := uuid.New()

	issued, err := svc.Create(context.Background(), calendarID, sharelink.PermissionView, nil, nil)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), calendarID, issued.Link.ID())
	require.NoError(t, err)
	assert.Equal(t, issued.Link.ID(), got.ID())

	_, err = svc.Get(context.Background(), uuid.New(), issued.Link.ID())
	assert.Error(t, err)
}

func TestServiceRevoke(t *testing.T) {
	store := newFakeLinkStore()
	svc := NewService(store)

	issued, err := svc.Create(context.Background(), uuid.New(), sharelink.PermissionView, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), issued.Link.ID()))
	assert.Error(t, svc.Revoke(context.Background(), issued.Link.ID()))
}

func TestServiceRegenerate(t *testing.T) {
	store := newFakeLinkStore()
	svc := NewService(store)

	issued, err := svc.Create(context.Background(), uuid.New(), sharelink.PermissionViewAndComment, nil, nil)
	require.NoError(t, err)

	regen, err := svc.Regenerate(context.Background(), issued.Link)
	require.NoError(t, err)
	assert.NotEqual(t, issued.RawToken, regen.RawToken)
	assert.Equal(t, sharelink.PermissionViewAndComment, regen.Link.Permission())

	_, status, err := svc.Resolve(context.Background(), issued.RawToken)
	require.NoError(t, err)
	assert.Equal(t, sharelink.ResolveRevoked, status)
}
