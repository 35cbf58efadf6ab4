package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/domain/content"
	"github.com/techappsUT/planer/internal/domain/publication"
	"github.com/techappsUT/planer/internal/domain/socialaccount"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/store"
)

func oneImage() []store.OrderedMedia {
	m := content.NewMedia(uuid.New(), "https://example.com/a.png", "key", content.MediaImage, "image/png", 1024, 0)
	return []store.OrderedMedia{{Media: m, Order: 0}}
}

func accountFixture() *socialaccount.Account {
	return socialaccount.NewAccount(uuid.New(), uuid.New(), socialaccount.PlatformInstagram, "ig-user-1", "handle", "at", "rt", nil)
}

func contextBackground() context.Context { return context.Background() }

func formValues() url.Values {
	return url.Values{"image_url": {"https://example.com/a.png"}, "caption": {"hi"}}
}

func TestValidateFeedRequiresOneMedia(t *testing.T) {
	d := &Driver{}
	assert.Error(t, d.Validate(publication.FormatFeed, &store.PublicationForPublish{}))
	assert.NoError(t, d.Validate(publication.FormatFeed, &store.PublicationForPublish{Media: oneImage()}))
}

func TestValidateCarouselRequiresTwoMedia(t *testing.T) {
	d := &Driver{}
	assert.Error(t, d.Validate(publication.FormatCarousel, &store.PublicationForPublish{Media: oneImage()}))

	two := append(oneImage(), oneImage()...)
	assert.NoError(t, d.Validate(publication.FormatCarousel, &store.PublicationForPublish{Media: two}))
}

func TestValidateRejectsUnsupportedFormat(t *testing.T) {
	d := &Driver{}
	assert.Error(t, d.Validate(publication.Format("UNKNOWN"), &store.PublicationForPublish{Media: oneImage()}))
}

func TestCreateContainerSurfacesGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message":    "Invalid parameter",
				"type":       "OAuthException",
				"code":       100,
				"fbtrace_id": "trace-1",
			},
		})
	}))
	defer server.Close()

	d := New(Config{APIURL: server.URL}, zap.NewNop())
	account := accountFixture()

	_, err := d.createContainer(contextBackground(), account, formValues())

	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.Equal(t, "trace-1", apiErr.TraceID)
}

func TestCreateContainerSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
	}))
	defer server.Close()

	d := New(Config{APIURL: server.URL}, zap.NewNop())
	account := accountFixture()

	id, err := d.createContainer(contextBackground(), account, formValues())
	require.NoError(t, err)
	assert.Equal(t, "container-1", id)
}
