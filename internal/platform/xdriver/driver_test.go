package xdriver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

func newPub() *publication.Publication {
	return publication.NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformX, publication.FormatFeed, time.Now().Add(time.Hour), nil, nil)
}

func TestValidateRejectsOverlongText(t *testing.T) {
	d := New()
	long := strings.Repeat("a", maxTextLength+1)
	err := d.Validate(publication.FormatFeed, &store.PublicationForPublish{Publication: newPub(), ContentCaption: long})
	assert.Error(t, err)
}

func TestValidateRejectsTooManyMedia(t *testing.T) {
	d := New()
	var media []store.OrderedMedia
	for i := 0; i < maxMediaItems+1; i++ {
		m := content.NewMedia(uuid.New(), "https://example.com/a.png", "key", content.MediaImage, "image/png", 1024, i)
		media = append(media, store.OrderedMedia{Media: m, Order: i})
	}

	err := d.Validate(publication.FormatFeed, &store.PublicationForPublish{Publication: newPub(), ContentCaption: "hi", Media: media})
	assert.Error(t, err)
}

func TestValidateAcceptsWithinLimits(t *testing.T) {
	d := New()
	err := d.Validate(publication.FormatFeed, &store.PublicationForPublish{Publication: newPub(), ContentCaption: "hi"})
	assert.NoError(t, err)
}

func TestPublishNotImplemented(t *testing.T) {
	d := New()
	_, err := d.Publish(context.Background(), &store.PublicationForPublish{})
	assert.ErrorIs(t, err, platform.ErrNotImplemented)
}
