package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

type fakePublicationStore struct {
	mu          sync.Mutex
	claimable   []*store.PublicationForPublish
	published   map[uuid.UUID]bool
	errored     map[uuid.UUID]string
}

func newFakePublicationStore(claimable []*store.PublicationForPublish) *fakePublicationStore {
	return &fakePublicationStore{claimable: claimable, published: map[uuid.UUID]bool{}, errored: map[uuid.UUID]string{}}
}

func (f *fakePublicationStore) Create(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error {
	return nil
}
func (f *fakePublicationStore) FindByID(ctx context.Context, clientID, id uuid.UUID) (*publication.Publication, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePublicationStore) Update(ctx context.Context, p *publication.Publication, media []*publication.PublicationMedia) error {
	return nil
}
func (f *fakePublicationStore) Delete(ctx context.Context, clientID, id uuid.UUID) error { return nil }
func (f *fakePublicationStore) List(ctx context.Context, clientID uuid.UUID, filter store.ListFilter) ([]*publication.Publication, int, error) {
	return nil, 0, nil
}

func (f *fakePublicationStore) ClaimDue(ctx context.Context, now time.Time, batchSize int) ([]*store.PublicationForPublish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claimed := f.claimable
	f.claimable = nil
	return claimed, nil
}

func (f *fakePublicationStore) MarkPublished(ctx context.Context, id uuid.UUID, platformID, link *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[id] = true
	return nil
}

func (f *fakePublicationStore) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored[id] = message
	return nil
}

type fakeDriver struct {
	plat       socialaccount.Platform
	validateFn func(publication.Format, *store.PublicationForPublish) error
	publishFn  func(context.Context, *store.PublicationForPublish) (*platform.PublishOutcome, error)
}

func (d *fakeDriver) Platform() socialaccount.Platform { return d.plat }
func (d *fakeDriver) Validate(format publication.Format, pub *store.PublicationForPublish) error {
	if d.validateFn != nil {
		return d.validateFn(format, pub)
	}
	return nil
}
func (d *fakeDriver) Publish(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
	if d.publishFn != nil {
		return d.publishFn(ctx, pub)
	}
	return &platform.PublishOutcome{PlatformID: "p1"}, nil
}
func (d *fakeDriver) Cancel(ctx context.Context, platformID string, account *socialaccount.Account) error {
	return platform.ErrCancelUnsupported
}

func samplePub(plat socialaccount.Platform) *store.PublicationForPublish {
	pub := publication.NewPublication(uuid.New(), uuid.New(), plat, publication.FormatFeed, time.Now(), nil, nil)
	account := socialaccount.NewAccount(uuid.New(), uuid.New(), plat, "acct-1", "handle", "at", "rt", nil)
	return &store.PublicationForPublish{Publication: pub, Account: account}
}


func TestPublishOneMarksPublishedOnSuccess(t *testing.T) {
	pub := samplePub(socialaccount.PlatformFacebook)
	fstore := newFakePublicationStore(nil)
	registry := platform.NewRegistry()
	registry.Register(&fakeDriver{plat: socialaccount.PlatformFacebook})

	d, err := New(Config{Schedule: "1h"}, fstore, registry, zap.NewNop())
	require.NoError(t, err)

	d.publishOne(context.Background(), pub)

	fstore.mu.Lock()
	defer fstore.mu.Unlock()
	assert.True(t, fstore.published[pub.Publication.ID()])
}

func TestPublishOneMarksErrorOnUnknownPlatform(t *testing.T) {
	pub := samplePub(socialaccount.PlatformX)
	fstore := newFakePublicationStore(nil)
	registry := platform.NewRegistry()

	d, err := New(Config{Schedule: "1h"}, fstore, registry, zap.NewNop())
	require.NoError(t, err)

	d.publishOne(context.Background(), pub)

	fstore.mu.Lock()
	defer fstore.mu.Unlock()
	assert.Contains(t, fstore.errored[pub.Publication.ID()], "no driver registered")
}

func TestPublishOneMarksErrorOnValidateFailure(t *testing.T) {
	pub := samplePub(socialaccount.PlatformFacebook)
	fstore := newFakePublicationStore(nil)
	registry := platform.NewRegistry()
	registry.Register(&fakeDriver{
		plat:       socialaccount.PlatformFacebook,
		validateFn: func(publication.Format, *store.PublicationForPublish) error { return errors.New("bad format") },
	})

	d, err := New(Config{Schedule: "1h"}, fstore, registry, zap.NewNop())
	require.NoError(t, err)

	d.publishOne(context.Background(), pub)

	fstore.mu.Lock()
	defer fstore.mu.Unlock()
	assert.Contains(t, fstore.errored[pub.Publication.ID()], "validation failed")
}

func TestPublishOneMarksErrorOnPublishFailure(t *testing.T) {
	pub := samplePub(socialaccount.PlatformFacebook)
	fstore := newFakePublicationStore(nil)
	registry := platform.NewRegistry()
	registry.Register(&fakeDriver{
		plat: socialaccount.PlatformFacebook,
		publishFn: func(context.Context, *store.PublicationForPublish) (*platform.PublishOutcome, error) {
			return nil, errors.New("upstream rejected")
		},
	})

	d, err := New(Config{Schedule: "1h"}, fstore, registry, zap.NewNop())
	require.NoError(t, err)

	d.publishOne(context.Background(), pub)

	fstore.mu.Lock()
	defer fstore.mu.Unlock()
	assert.Equal(t, "upstream rejected", fstore.errored[pub.Publication.ID()])
}

func TestPublishOneMarksTimeoutOnDeadlineExceeded(t *testing.T) {
	pub := samplePub(socialaccount.PlatformFacebook)
	fstore := newFakePublicationStore(nil)
	registry := platform.NewRegistry()
	registry.Register(&fakeDriver{
		plat: socialaccount.PlatformFacebook,
		publishFn: func(ctx context.Context, pub *store.PublicationForPublish) (*platform.PublishOutcome, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	d, err := New(Config{Schedule: "1h", PublicationTimeout: 10 * time.Millisecond}, fstore, registry, zap.NewNop())
	require.NoError(t, err)

	d.publishOne(context.Background(), pub)

	fstore.mu.Lock()
	defer fstore.mu.Unlock()
	assert.Equal(t, "timeout", fstore.errored[pub.Publication.ID()])
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New(Config{Schedule: "not-a-schedule"}, newFakePublicationStore(nil), platform.NewRegistry(), zap.NewNop())
	assert.Error(t, err)
}

func TestNewAcceptsDurationSchedule(t *testing.T) {
	d, err := New(Config{Schedule: "2s"}, newFakePublicationStore(nil), platform.NewRegistry(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d.interval)
}

func TestNewAcceptsCronSchedule(t *testing.T) {
	d, err := New(Config{Schedule: "*/2 * * * *"}, newFakePublicationStore(nil), platform.NewRegistry(), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, d.cronSched)
}
