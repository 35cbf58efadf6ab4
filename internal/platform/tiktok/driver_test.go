package tiktok

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func TestChunkPlanSingleChunk(t *testing.T) {
	size, count := chunkPlan(1024)
	assert.Equal(t, int64(1024), size)
	assert.Equal(t, 1, count)
}

func TestChunkPlanMultipleChunks(t *testing.T) {
	videoSize := int64(singleChunkLimit + 1)
	size, count := chunkPlan(videoSize)
	assert.Equal(t, int64(chunkSize), size)
	assert.Equal(t, 7, count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel", truncate("hello", 3))
	assert.Equal(t, "", truncate("hello", 0))
}

func TestIsTokenInvalid(t *testing.T) {
	assert.True(t, isTokenInvalid(&platform.APIError{HTTPStatus: http.StatusUnauthorized}))
	assert.True(t, isTokenInvalid(&platform.APIError{HTTPStatus: http.StatusBadRequest, Code: "access_token_invalid"}))
	assert.False(t, isTokenInvalid(&platform.APIError{HTTPStatus: http.StatusBadRequest, Code: "other"}))
	assert.False(t, isTokenInvalid(assert.AnError))
}

func TestValidateRequiresMedia(t *testing.T) {
	d := &Driver{}
	pub := publication.NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformTikTok, publication.FormatReel, time.Now().Add(time.Hour), nil, nil)

	err := d.Validate(publication.FormatReel, &store.PublicationForPublish{Publication: pub, ContentCaption: "a caption"})
	assert.Error(t, err)
}

func TestValidateRejectsOverlongCaption(t *testing.T) {
	d := &Driver{}
	long := make([]byte, maxCaptionLength+1)
	for i := range long {
		long[i] = 'a'
	}
	pub := publication.NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformTikTok, publication.FormatReel, time.Now().Add(time.Hour), nil, nil)
	media := content.NewMedia(uuid.New(), "https://example.com/v.mp4", "key", content.MediaVideo, "video/mp4", 1024, 0)

	err := d.Validate(publication.FormatReel, &store.PublicationForPublish{
		Publication:    pub,
		ContentCaption: string(long),
		Media:          []store.OrderedMedia{{Media: media, Order: 0}},
	})
	assert.Error(t, err)
}

func TestCreatorInfoTreats200WithFailingEnvelopeAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{},
			"error": map[string]interface{}{
				"code":    "access_token_invalid",
				"message": "The access token is invalid or expired",
				"log_id":  "log-1",
			},
		})
	}))
	defer server.Close()

	d := New(Config{APIURL: server.URL}, zap.NewNop(), nil, nil, nil)
	account := socialaccount.NewAccount(uuid.New(), uuid.New(), socialaccount.PlatformTikTok, "tt-user-1", "handle", "at", "rt", nil)

	_, err := d.creatorInfo(context.Background(), account)
	require.Error(t, err)

	var apiErr *platform.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.HTTPStatus)
	assert.Equal(t, "access_token_invalid", apiErr.Code)
	assert.Equal(t, "log-1", apiErr.TraceID)
	assert.True(t, isTokenInvalid(err))
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	d := &Driver{}
	pub := publication.NewPublication(uuid.New(), uuid.New(), socialaccount.PlatformTikTok, publication.FormatReel, time.Now().Add(time.Hour), nil, nil)
	media := content.NewMedia(uuid.New(), "https://example.com/v.mp4", "key", content.MediaVideo, "video/mp4", 1024, 0)

	err := d.Validate(publication.FormatReel, &store.PublicationForPublish{
		Publication:    pub,
		ContentCaption: "short caption",
		Media:          []store.OrderedMedia{{Media: media, Order: 0}},
	})
	assert.NoError(t, err)
}
