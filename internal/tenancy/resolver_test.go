package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/identity"
)

type fakeVerifier struct {
	ident *Identity
	err   error
}

func (f fakeVerifier) Verify(ctx context.Context, bearerToken string) (*Identity, error) {
	return f.ident, f.err
}

type fakeTenancyStore struct {
	userBySubject map[string]*identity.User
	clientsByID   map[uuid.UUID]*identity.Client
	earliest      map[uuid.UUID]*identity.Client
	provisioned   bool
}

func (f *fakeTenancyStore) FindUserByExternalSubject(ctx context.Context, subject string) (*identity.User, error) {
	if u, ok := f.userBySubject[subject]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeTenancyStore) ProvisionUser(ctx context.Context, externalSubject, email, name string) (*identity.User, *identity.Client, error) {
	f.provisioned = true
	u := identity.NewUser(externalSubject, email, name)
	c := identity.NewClient(u.ID(), name)
	f.userBySubject[externalSubject] = u
	f.earliest[u.ID()] = c
	return u, c, nil
}

func (f *fakeTenancyStore) FindClientByID(ctx context.Context, id uuid.UUID) (*identity.Client, error) {
	if c, ok := f.clientsByID[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeTenancyStore) EarliestClientForUser(ctx context.Context, userID uuid.UUID) (*identity.Client, error) {
	if c, ok := f.earliest[userID]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func TestResolveVerifierError(t *testing.T) {
	r := NewResolver(fakeVerifier{err: apperr.Unauthorized("bad token")}, &fakeTenancyStore{
		userBySubject: map[string]*identity.User{}, clientsByID: map[uuid.UUID]*identity.Client{}, earliest: map[uuid.UUID]*identity.Client{},
	})
	_, err := r.Resolve(context.Background(), "token", RouteOptions{}, nil)
	assert.Error(t, err)
}

func TestResolveProvisionsNewUser(t *testing.T) {
	store := &fakeTenancyStore{userBySubject: map[string]*identity.User{}, clientsByID: map[uuid.UUID]*identity.Client{}, earliest: map[uuid.UUID]*identity.Client{}}
	r := NewResolver(fakeVerifier{ident: &Identity{Subject: "sub-1", Email: "a@b.com", Name: "Ada"}}, store)

	ctx, err := r.Resolve(context.Background(), "token", RouteOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, store.provisioned)

	user, ok := UserFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "sub-1", user.ExternalSubject())

	clientID, ok := ClientIDFrom(ctx)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, clientID)
}

func TestResolveSkipsClientValidation(t *testing.T) {
	u := identity.NewUser("sub-1", "a@b.com", "Ada")
	store := &fakeTenancyStore{
		userBySubject: map[string]*identity.User{"sub-1": u},
		clientsByID:   map[uuid.UUID]*identity.Client{},
		earliest:      map[uuid.UUID]*identity.Client{},
	}
	r := NewResolver(fakeVerifier{ident: &Identity{Subject: "sub-1"}}, store)

	ctx, err := r.Resolve(context.Background(), "token", RouteOptions{SkipClientValidation: true}, nil)
	require.NoError(t, err)
	_, ok := ClientIDFrom(ctx)
	assert.False(t, ok)
}

func TestResolveRejectsClientHintNotOwned(t *testing.T) {
	u := identity.NewUser("sub-1", "a@b.com", "Ada")
	otherClient := identity.NewClient(uuid.New(), "someone-else's client")
	store := &fakeTenancyStore{
		userBySubject: map[string]*identity.User{"sub-1": u},
		clientsByID:   map[uuid.UUID]*identity.Client{otherClient.ID(): otherClient},
		earliest:      map[uuid.UUID]*identity.Client{},
	}
	r := NewResolver(fakeVerifier{ident: &Identity{Subject: "sub-1"}}, store)

	hint := otherClient.ID()
	_, err := r.Resolve(context.Background(), "token", RouteOptions{}, &hint)
	assert.Error(t, err)
}

func TestResolveAcceptsOwnedClientHint(t *testing.T) {
	u := identity.NewUser("sub-1", "a@b.com", "Ada")
	owned := identity.NewClient(u.ID(), "my client")
	store := &fakeTenancyStore{
		userBySubject: map[string]*identity.User{"sub-1": u},
		clientsByID:   map[uuid.UUID]*identity.Client{owned.ID(): owned},
		earliest:      map[uuid.UUID]*identity.Client{},
	}
	r := NewResolver(fakeVerifier{ident: &Identity{Subject: "sub-1"}}, store)

	hint := owned.ID()
	ctx, err := r.Resolve(context.Background(), "token", RouteOptions{}, &hint)
	require.NoError(t, err)
	clientID, ok := ClientIDFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, owned.ID(), clientID)
}

func TestUnconfiguredVerifierRejects(t *testing.T) {
	_, err := (UnconfiguredVerifier{}).Verify(context.Background(), "anything")
	assert.Error(t, err)
}
