package content

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContent(t *testing.T) {
	userID, clientID, calendarID := uuid.New(), uuid.New(), uuid.New()
	c := NewContent(userID, clientID, &calendarID, "hello world")

	assert.Equal(t, userID, c.UserID())
	assert.Equal(t, clientID, c.ClientID())
	assert.Equal(t, &calendarID, c.CalendarID())
	assert.Equal(t, "hello world", c.Caption())
	assert.False(t, c.CreatedAt().IsZero())
}

func TestValidateCalendarOwnership(t *testing.T) {
	clientID := uuid.New()
	calendarID := uuid.New()

	noCalendar := NewContent(uuid.New(), clientID, nil, "")
	assert.NoError(t, noCalendar.ValidateCalendarOwnership(uuid.New()))

	withCalendar := NewContent(uuid.New(), clientID, &calendarID, "")
	assert.NoError(t, withCalendar.ValidateCalendarOwnership(clientID))
	assert.ErrorIs(t, withCalendar.ValidateCalendarOwnership(uuid.New()), ErrCalendarClientMismatch)
}

func TestValidateMediaPolicy(t *testing.T) {
	tests := []struct {
		name      string
		mediaType MediaType
		mimeType  string
		size      int64
		wantErr   bool
	}{
		{"valid image", MediaImage, "image/png", 1024, false},
		{"oversized image", MediaImage, "image/png", MaxImageSize + 1, true},
		{"unsupported image mime", MediaImage, "image/tiff", 1024, true},
		{"valid video", MediaVideo, "video/mp4", 1024, false},
		{"oversized video", MediaVideo, "video/mp4", MaxVideoSize + 1, true},
		{"unsupported video mime", MediaVideo, "video/avi", 1024, true},
		{"unknown media type", MediaType("AUDIO"), "audio/mp3", 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaPolicy(tt.mediaType, tt.mimeType, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewMedia(t *testing.T) {
	contentID := uuid.New()
	m := NewMedia(contentID, "https://example.com/a.png", "key/a.png", MediaImage, "image/png", 2048, 0)

	assert.Equal(t, contentID, m.ContentID())
	assert.Equal(t, "https://example.com/a.png", m.URL())
	assert.Equal(t, "key/a.png", m.Key())
	assert.Equal(t, MediaImage, m.Type())
	assert.Equal(t, "image/png", m.MimeType())
	assert.Equal(t, int64(2048), m.Size())
	assert.Equal(t, 0, m.Order())
	assert.Nil(t, m.Thumbnail())
	assert.False(t, m.CreatedAt().IsZero())
}

func TestMediaWithDimensions(t *testing.T) {
	m := NewMedia(uuid.New(), "https://example.com/v.mp4", "key/v.mp4", MediaVideo, "video/mp4", 4096, 0)
	width, height, duration, thumb := 1080, 1920, 12.5, "https://example.com/cover.jpg"

	got := m.WithDimensions(&width, &height, &duration, &thumb)

	assert.Same(t, m, got)
	require.NotNil(t, got.Width())
	assert.Equal(t, width, *got.Width())
	require.NotNil(t, got.Height())
	assert.Equal(t, height, *got.Height())
	require.NotNil(t, got.Duration())
	assert.Equal(t, duration, *got.Duration())
	require.NotNil(t, got.Thumbnail())
	assert.Equal(t, thumb, *got.Thumbnail())
}
