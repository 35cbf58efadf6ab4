package publication

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/planer/internal/domain/socialaccount"
)

func newScheduled() *Publication {
	return NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformInstagram, FormatFeed, time.Now().Add(time.Hour), nil, nil)
}

func TestCaptionPrecedence(t *testing.T) {
	custom := "custom caption"
	p := NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformInstagram, FormatFeed, time.Now(), &custom, nil)
	assert.Equal(t, "custom caption", p.Caption("content caption"))

	p2 := NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformInstagram, FormatFeed, time.Now(), nil, nil)
	assert.Equal(t, "content caption", p2.Caption("content caption"))

	empty := ""
	p3 := NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformInstagram, FormatFeed, time.Now(), &empty, nil)
	assert.Equal(t, "content caption", p3.Caption("content caption"))
}

func TestValidatePlatform(t *testing.T) {
	assert.NoError(t, ValidatePlatform(socialaccount.PlatformInstagram, socialaccount.PlatformInstagram))
	assert.ErrorIs(t, ValidatePlatform(socialaccount.PlatformInstagram, socialaccount.PlatformTikTok), ErrPlatformMismatch)
}

func TestStateMachineHappyPath(t *testing.T) {
	p := newScheduled()
	require.NoError(t, p.MarkPublishing())
	assert.Equal(t, StatusPublishing, p.Status())

	platformID, link := "123", "https://instagram.com/p/123"
	require.NoError(t, p.MarkPublished(&platformID, &link))
	assert.Equal(t, StatusPublished, p.Status())
	assert.Nil(t, p.ErrorMessage())
}

func TestMarkPublishingRejectsNonScheduled(t *testing.T) {
	p := newScheduled()
	require.NoError(t, p.MarkPublishing())
	assert.ErrorIs(t, p.MarkPublishing(), ErrNotScheduled)
}

func TestMarkPublishedRejectsNonPublishing(t *testing.T) {
	p := newScheduled()
	platformID := "1"
	assert.ErrorIs(t, p.MarkPublished(&platformID, nil), ErrNotPublishing)
}

func TestMarkErrorSetsMessage(t *testing.T) {
	p := newScheduled()
	require.NoError(t, p.MarkPublishing())
	require.NoError(t, p.MarkError("upstream rejected"))
	assert.Equal(t, StatusError, p.Status())
	require.NotNil(t, p.ErrorMessage())
	assert.Equal(t, "upstream rejected", *p.ErrorMessage())
}

func TestUpdateScheduleRejectsImmutableState(t *testing.T) {
	p := newScheduled()
	require.NoError(t, p.MarkPublishing())
	platformID, link := "1", "l"
	require.NoError(t, p.MarkPublished(&platformID, &link))

	assert.ErrorIs(t, p.UpdateSchedule(time.Now(), nil, nil), ErrImmutableState)
}

func TestCanDelete(t *testing.T) {
	p := newScheduled()
	assert.True(t, p.CanDelete())
	require.NoError(t, p.MarkPublishing())
	assert.False(t, p.CanDelete())
}
