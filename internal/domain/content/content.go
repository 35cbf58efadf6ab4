// Package content holds the Content and Media aggregates from spec §3.
package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCalendarClientMismatch = errors.New("content: calendar must belong to the same client")
	ErrMediaOrderTaken        = errors.New("content: media order must be unique within a content")
	ErrTooMuchMedia           = errors.New("content: exceeds MAX_MEDIA_PER_CONTENT")
	ErrMediaInUse             = errors.New("content: media is referenced by a publication and cannot be deleted")
)

type Content struct {
	id         uuid.UUID
	userID     uuid.UUID
	clientID   uuid.UUID
	calendarID *uuid.UUID
	caption    string
	createdAt  time.Time
}

func NewContent(userID, clientID uuid.UUID, calendarID *uuid.UUID, caption string) *Content {
	return &Content{
		id: uuid.New(), userID: userID, clientID: clientID,
		calendarID: calendarID, caption: caption, createdAt: time.Now().UTC(),
	}
}

func ReconstructContent(id, userID, clientID uuid.UUID, calendarID *uuid.UUID, caption string, createdAt time.Time) *Content {
	return &Content{id: id, userID: userID, clientID: clientID, calendarID: calendarID, caption: caption, createdAt: createdAt}
}

func (c *Content) ID() uuid.UUID          { return c.id }
func (c *Content) UserID() uuid.UUID      { return c.userID }
func (c *Content) ClientID() uuid.UUID    { return c.clientID }
func (c *Content) CalendarID() *uuid.UUID { return c.calendarID }
func (c *Content) Caption() string        { return c.caption }
func (c *Content) CreatedAt() time.Time   { return c.createdAt }

// ValidateCalendarOwnership enforces spec §3's ownership invariant:
// "a content's calendarId (when set) must reference a calendar with the
// same clientId."
func (c *Content) ValidateCalendarOwnership(calendarClientID uuid.UUID) error {
	if c.calendarID == nil {
		return nil
	}
	if calendarClientID != c.clientID {
		return ErrCalendarClientMismatch
	}
	return nil
}

type MediaType string

const (
	MediaImage MediaType = "IMAGE"
	MediaVideo MediaType = "VIDEO"
)

type Media struct {
	id        uuid.UUID
	contentID uuid.UUID
	url       string
	key       string
	mediaType MediaType
	mimeType  string
	size      int64
	width     *int
	height    *int
	duration  *float64
	thumbnail *string
	order     int
	createdAt time.Time
}

func NewMedia(contentID uuid.UUID, url, key string, mediaType MediaType, mimeType string, size int64, order int) *Media {
	return &Media{
		id: uuid.New(), contentID: contentID, url: url, key: key,
		mediaType: mediaType, mimeType: mimeType, size: size, order: order,
		createdAt: time.Now().UTC(),
	}
}

func ReconstructMedia(id, contentID uuid.UUID, url, key string, mediaType MediaType, mimeType string, size int64, width, height *int, duration *float64, thumbnail *string, order int, createdAt time.Time) *Media {
	return &Media{
		id: id, contentID: contentID, url: url, key: key, mediaType: mediaType,
		mimeType: mimeType, size: size, width: width, height: height,
		duration: duration, thumbnail: thumbnail, order: order, createdAt: createdAt,
	}
}

func (m *Media) ID() uuid.UUID        { return m.id }
func (m *Media) ContentID() uuid.UUID { return m.contentID }
func (m *Media) URL() string          { return m.url }
func (m *Media) Key() string          { return m.key }
func (m *Media) Type() MediaType      { return m.mediaType }
func (m *Media) MimeType() string     { return m.mimeType }
func (m *Media) Size() int64          { return m.size }
func (m *Media) Width() *int          { return m.width }
func (m *Media) Height() *int         { return m.height }
func (m *Media) Duration() *float64   { return m.duration }
func (m *Media) Thumbnail() *string   { return m.thumbnail }
func (m *Media) Order() int           { return m.order }
func (m *Media) CreatedAt() time.Time { return m.createdAt }

// WithDimensions attaches the client-reported width/height/duration/
// thumbnail to a freshly constructed Media, the only path (besides
// ReconstructMedia, used for rows already in the database) that can
// populate them. Returns the receiver for chaining at the call site.
func (m *Media) WithDimensions(width, height *int, duration *float64, thumbnail *string) *Media {
	m.width = width
	m.height = height
	m.duration = duration
	m.thumbnail = thumbnail
	return m
}

// Allowlists and limits from spec §4.9.
const (
	MaxImageSize = 10 * 1024 * 1024
	MaxVideoSize = 100 * 1024 * 1024
)

var (
	AllowedImageMIME = map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true, "image/gif": true}
	AllowedVideoMIME = map[string]bool{"video/mp4": true, "video/quicktime": true}
)

func ValidateMediaPolicy(mediaType MediaType, mimeType string, size int64) error {
	switch mediaType {
	case MediaImage:
		if !AllowedImageMIME[mimeType] {
			return errors.New("content: unsupported image mime type")
		}
		if size > MaxImageSize {
			return errors.New("content: image exceeds max size")
		}
	case MediaVideo:
		if !AllowedVideoMIME[mimeType] {
			return errors.New("content: unsupported video mime type")
		}
		if size > MaxVideoSize {
			return errors.New("content: video exceeds max size")
		}
	default:
		return errors.New("content: unknown media type")
	}
	return nil
}
